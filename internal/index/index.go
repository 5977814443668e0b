// Package index answers navigation queries over an analysis result: from a
// contract to its implementations and back, at type and method level.
package index

import (
	"fmt"
	"sort"
	"strings"

	"github.com/olehluchkiv/abslens/internal/analyzer"
)

// MethodTarget is a method implementing a contract method.
type MethodTarget struct {
	Type   *analyzer.TypeDef
	Method analyzer.MethodSig
}

// ContractMethod is a contract method implemented by a type's method.
type ContractMethod struct {
	Contract *analyzer.ContractDef
	Method   analyzer.MethodSig
}

// Index is a read-only view of an analysis result keyed for lookups.
type Index struct {
	contracts map[string]*analyzer.ContractDef
	types     map[string]*analyzer.TypeDef

	byContract map[string][]*analyzer.Relation
	byType     map[string][]*analyzer.Relation
	partials   map[string][]*analyzer.Partial

	contractNames map[string][]string // short name -> keys
	typeNames     map[string][]string
}

// New builds an index over result. The result must not be modified afterwards.
func New(result *analyzer.Result) *Index {
	ix := &Index{
		contracts:     make(map[string]*analyzer.ContractDef),
		types:         make(map[string]*analyzer.TypeDef),
		byContract:    make(map[string][]*analyzer.Relation),
		byType:        make(map[string][]*analyzer.Relation),
		partials:      make(map[string][]*analyzer.Partial),
		contractNames: make(map[string][]string),
		typeNames:     make(map[string][]string),
	}

	for i := range result.Contracts {
		ix.addContract(&result.Contracts[i])
	}
	for i := range result.Types {
		ix.addType(&result.Types[i])
	}
	for i := range result.Relations {
		rel := &result.Relations[i]
		// Relations may point at definitions outside the slices above.
		ix.addContract(rel.Contract)
		ix.addType(rel.Type)
		ix.byContract[rel.Contract.Key()] = append(ix.byContract[rel.Contract.Key()], rel)
		ix.byType[rel.Type.Key()] = append(ix.byType[rel.Type.Key()], rel)
	}
	for i := range result.Partials {
		p := &result.Partials[i]
		ix.addContract(p.Contract)
		ix.addType(p.Type)
		ix.partials[p.Contract.Key()] = append(ix.partials[p.Contract.Key()], p)
	}

	for _, rels := range ix.byContract {
		sort.Slice(rels, func(i, j int) bool { return rels[i].Type.Key() < rels[j].Type.Key() })
	}
	for _, rels := range ix.byType {
		sort.Slice(rels, func(i, j int) bool { return rels[i].Contract.Key() < rels[j].Contract.Key() })
	}
	for _, ps := range ix.partials {
		sort.Slice(ps, func(i, j int) bool { return ps[i].Type.Key() < ps[j].Type.Key() })
	}
	return ix
}

func (ix *Index) addContract(c *analyzer.ContractDef) {
	if _, ok := ix.contracts[c.Key()]; ok {
		return
	}
	ix.contracts[c.Key()] = c
	ix.contractNames[c.Name] = append(ix.contractNames[c.Name], c.Key())
}

func (ix *Index) addType(t *analyzer.TypeDef) {
	if _, ok := ix.types[t.Key()]; ok {
		return
	}
	ix.types[t.Key()] = t
	ix.typeNames[t.Name] = append(ix.typeNames[t.Name], t.Key())
}

// Contracts returns every contract sorted by key.
func (ix *Index) Contracts() []*analyzer.ContractDef {
	out := make([]*analyzer.ContractDef, 0, len(ix.contracts))
	for _, c := range ix.contracts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Types returns every type sorted by key.
func (ix *Index) Types() []*analyzer.TypeDef {
	out := make([]*analyzer.TypeDef, 0, len(ix.types))
	for _, t := range ix.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Contract resolves a contract by short name or "pkgpath.Name" key.
func (ix *Index) Contract(name string) (*analyzer.ContractDef, error) {
	key, err := resolve(name, ix.contractNames, ix.contracts, kindContract)
	if err != nil {
		return nil, err
	}
	return ix.contracts[key], nil
}

// Type resolves a type by short name or "pkgpath.Name" key.
func (ix *Index) Type(name string) (*analyzer.TypeDef, error) {
	key, err := resolve(name, ix.typeNames, ix.types, kindType)
	if err != nil {
		return nil, err
	}
	return ix.types[key], nil
}

// ImplementationsOf returns the relations of every type satisfying contract,
// sorted by type key.
func (ix *Index) ImplementationsOf(contract string) ([]*analyzer.Relation, error) {
	c, err := ix.Contract(contract)
	if err != nil {
		return nil, err
	}
	return ix.byContract[c.Key()], nil
}

// MethodImplementations returns the method implementing contract.method on
// every satisfying type.
func (ix *Index) MethodImplementations(contract, method string) ([]MethodTarget, error) {
	c, err := ix.Contract(contract)
	if err != nil {
		return nil, err
	}
	if !hasMethod(c.Methods, method) {
		return nil, notFound(kindMethod, c.Name+"."+method, suggest(method, methodNames(c.Methods)))
	}

	var out []MethodTarget
	for _, rel := range ix.byContract[c.Key()] {
		for _, b := range rel.Methods {
			if b.Contract.Name == method {
				out = append(out, MethodTarget{Type: rel.Type, Method: b.Impl})
			}
		}
	}
	return out, nil
}

// ContractsOf returns the relations of every contract typ satisfies, sorted
// by contract key.
func (ix *Index) ContractsOf(typ string) ([]*analyzer.Relation, error) {
	t, err := ix.Type(typ)
	if err != nil {
		return nil, err
	}
	return ix.byType[t.Key()], nil
}

// ContractMethodsFor returns the contract methods that typ.method implements.
// A method implementing no contract method yields an empty result.
func (ix *Index) ContractMethodsFor(typ, method string) ([]ContractMethod, error) {
	t, err := ix.Type(typ)
	if err != nil {
		return nil, err
	}
	if _, ok := t.Method(method); !ok {
		return nil, notFound(kindMethod, t.Name+"."+method, suggest(method, methodNames(t.Methods)))
	}

	var out []ContractMethod
	for _, rel := range ix.byType[t.Key()] {
		for _, b := range rel.Methods {
			if b.Impl.Name == method {
				out = append(out, ContractMethod{Contract: rel.Contract, Method: b.Contract})
			}
		}
	}
	return out, nil
}

// PartialsOf returns the types that provide only part of contract.
func (ix *Index) PartialsOf(contract string) ([]*analyzer.Partial, error) {
	c, err := ix.Contract(contract)
	if err != nil {
		return nil, err
	}
	return ix.partials[c.Key()], nil
}

// Partials returns every partial conformance sorted by contract then type.
func (ix *Index) Partials() []*analyzer.Partial {
	var out []*analyzer.Partial
	for _, c := range ix.Contracts() {
		out = append(out, ix.partials[c.Key()]...)
	}
	return out
}

func resolve[T any](name string, short map[string][]string, byKey map[string]T, kind string) (string, error) {
	if _, ok := byKey[name]; ok {
		return name, nil
	}
	keys := short[name]
	switch len(keys) {
	case 1:
		return keys[0], nil
	case 0:
		candidates := make([]string, 0, len(short))
		for n := range short {
			candidates = append(candidates, n)
		}
		if strings.Contains(name, ".") {
			for k := range byKey {
				candidates = append(candidates, k)
			}
		}
		return "", notFound(kind, name, suggest(name, candidates))
	default:
		sorted := append([]string(nil), keys...)
		sort.Strings(sorted)
		return "", fmt.Errorf("%s %q is ambiguous, use one of %s: %w",
			kind, name, strings.Join(sorted, ", "), ErrAmbiguous)
	}
}

func hasMethod(methods []analyzer.MethodSig, name string) bool {
	for _, m := range methods {
		if m.Name == name {
			return true
		}
	}
	return false
}

func methodNames(methods []analyzer.MethodSig) []string {
	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = m.Name
	}
	return names
}

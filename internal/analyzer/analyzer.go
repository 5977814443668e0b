package analyzer

import (
	"context"
	"fmt"
	"go/token"
	"go/types"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/types/typeutil"
)

// stdlibPatterns are loaded when stdlib contracts are requested.
var stdlibPatterns = []string{"fmt", "io", "io/fs", "encoding", "encoding/json", "sort", "hash", "context"}

// Analyze loads Go packages from dir and finds every contract, the types
// satisfying each one, and the types that satisfy one only partially.
func Analyze(ctx context.Context, dir string, opts AnalyzeOptions, logger *slog.Logger) (*Result, error) {
	logger = logger.With("component", "analyzer")

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedSyntax |
			packages.NeedTypesInfo | packages.NeedImports,
		Dir:     dir,
		Context: ctx,
	}

	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	if opts.IncludeStdlib {
		stdPkgs, stdErr := packages.Load(cfg, stdlibPatterns...)
		if stdErr != nil {
			logger.Warn("failed to load stdlib packages", "error", stdErr)
		} else {
			pkgs = append(pkgs, stdPkgs...)
		}
	}

	logger.Info("packages loaded", "packages_count", len(pkgs))

	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			logger.Warn("package load error", "package", pkg.PkgPath, "error", e.Msg)
		}
	}

	c := &collector{
		dir:       dir,
		logger:    logger,
		seen:      make(map[string]bool),
		seenTypes: make(map[string]bool),
	}
	for _, pkg := range pkgs {
		if pkg.Types == nil {
			continue
		}
		c.collectScope(pkg.Types.Scope(), pkg.PkgPath, pkg.Name, pkg.Fset, true)

		// Contracts from imported packages, so stdlib matches are possible.
		for _, imp := range pkg.Imports {
			if imp.Types == nil {
				continue
			}
			c.collectScope(imp.Types.Scope(), imp.PkgPath, imp.Name, imp.Fset, false)
		}
	}
	c.addBuiltinError()

	logger.Info("types collected", "contracts", len(c.contracts), "types", len(c.types))

	relations, partials := match(c.contracts, c.types, opts, logger)

	logger.Info("analysis complete", "relations", len(relations), "partials", len(partials))

	return &Result{
		Contracts: c.contracts,
		Types:     c.types,
		Relations: relations,
		Partials:  partials,
		ModuleDir: dir,
	}, nil
}

type collector struct {
	dir       string
	logger    *slog.Logger
	contracts []ContractDef
	types     []TypeDef
	seen      map[string]bool // contract pkgPath.Name dedup
	seenTypes map[string]bool
	methods   typeutil.MethodSetCache
}

func (c *collector) collectScope(scope *types.Scope, pkgPath, pkgName string, fset *token.FileSet, withTypes bool) {
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok {
			continue
		}
		named, ok := tn.Type().(*types.Named)
		if !ok {
			continue
		}
		key := pkgPath + "." + tn.Name()

		if iface, ok := named.Underlying().(*types.Interface); ok {
			if c.seen[key] {
				continue
			}
			c.seen[key] = true
			c.contracts = append(c.contracts, ContractDef{
				Name:    tn.Name(),
				PkgPath: pkgPath,
				PkgName: pkgName,
				Methods: c.contractMethods(iface, fset),
				TypeObj: iface,
				Pos:     resolvePosition(fset, tn.Pos(), c.dir),
			})
			c.logger.Debug("found contract", "name", tn.Name(), "package", pkgPath, "methods", iface.NumMethods())
			continue
		}

		if !withTypes || c.seenTypes[key] {
			continue
		}
		c.seenTypes[key] = true
		methods := c.typeMethods(named, fset)
		c.types = append(c.types, TypeDef{
			Name:     tn.Name(),
			PkgPath:  pkgPath,
			PkgName:  pkgName,
			IsStruct: isStruct(named),
			Methods:  methods,
			TypeObj:  named,
			Pos:      resolvePosition(fset, tn.Pos(), c.dir),
		})
		c.logger.Debug("found type", "name", tn.Name(), "package", pkgPath, "methods", len(methods))
	}
}

func (c *collector) addBuiltinError() {
	tn, ok := types.Universe.Lookup("error").(*types.TypeName)
	if !ok || c.seen["builtin.error"] {
		return
	}
	iface, ok := tn.Type().Underlying().(*types.Interface)
	if !ok {
		return
	}
	c.seen["builtin.error"] = true
	c.contracts = append(c.contracts, ContractDef{
		Name:    "error",
		PkgPath: "builtin",
		PkgName: "builtin",
		Methods: c.contractMethods(iface, nil),
		TypeObj: iface,
	})
}

func (c *collector) contractMethods(iface *types.Interface, fset *token.FileSet) []MethodSig {
	methods := make([]MethodSig, iface.NumMethods())
	for i := 0; i < iface.NumMethods(); i++ {
		methods[i] = methodSig(iface.Method(i), fset, c.dir)
	}
	return methods
}

// typeMethods lists the methods of *T, which includes those of T and any
// promoted through embedding.
func (c *collector) typeMethods(named *types.Named, fset *token.FileSet) []MethodSig {
	mset := c.methods.MethodSet(types.NewPointer(named))
	methods := make([]MethodSig, 0, mset.Len())
	for i := 0; i < mset.Len(); i++ {
		fn, ok := mset.At(i).Obj().(*types.Func)
		if !ok {
			continue
		}
		methods = append(methods, methodSig(fn, fset, c.dir))
	}
	return methods
}

func match(contracts []ContractDef, typeDefs []TypeDef, opts AnalyzeOptions, logger *slog.Logger) ([]Relation, []Partial) {
	var cache typeutil.MethodSetCache
	var relations []Relation
	var partials []Partial

	for i := range typeDefs {
		t := &typeDefs[i]
		valType := t.TypeObj
		ptrType := types.NewPointer(valType)

		for j := range contracts {
			ct := &contracts[j]
			if ct.TypeObj.NumMethods() == 0 {
				continue
			}

			switch {
			case types.Implements(valType, ct.TypeObj):
				relations = append(relations, Relation{
					Type:     t,
					Contract: ct,
					Methods:  bindings(cache.MethodSet(valType), ct, t),
				})
				logger.Debug("match found", "type", t.Name, "contract", ct.Name, "via_pointer", false)
			case types.Implements(ptrType, ct.TypeObj):
				relations = append(relations, Relation{
					Type:       t,
					Contract:   ct,
					ViaPointer: true,
					Methods:    bindings(cache.MethodSet(ptrType), ct, t),
				})
				logger.Debug("match found", "type", t.Name, "contract", ct.Name, "via_pointer", true)
			case !opts.NoPartials:
				if p, ok := partial(cache.MethodSet(ptrType), ct, t); ok {
					partials = append(partials, p)
					logger.Debug("partial conformance", "type", t.Name, "contract", ct.Name, "missing", p.Missing)
				}
			}
		}
	}
	return relations, partials
}

func bindings(mset *types.MethodSet, ct *ContractDef, t *TypeDef) []MethodBinding {
	out := make([]MethodBinding, 0, ct.TypeObj.NumMethods())
	for i := 0; i < ct.TypeObj.NumMethods(); i++ {
		m := ct.TypeObj.Method(i)
		sel := mset.Lookup(m.Pkg(), m.Name())
		if sel == nil {
			continue
		}
		impl, _ := t.Method(m.Name())
		out = append(out, MethodBinding{Contract: ct.Methods[i], Impl: impl})
	}
	return out
}

// partial reports whether the pointer method set provides at least one but
// not all of the contract's methods with identical signatures.
func partial(mset *types.MethodSet, ct *ContractDef, t *TypeDef) (Partial, bool) {
	p := Partial{Type: t, Contract: ct}
	for i := 0; i < ct.TypeObj.NumMethods(); i++ {
		m := ct.TypeObj.Method(i)
		sel := mset.Lookup(m.Pkg(), m.Name())
		if sel != nil && types.Identical(sel.Obj().Type(), m.Type()) {
			p.Provided = append(p.Provided, m.Name())
		} else {
			p.Missing = append(p.Missing, m.Name())
		}
	}
	return p, len(p.Provided) > 0 && len(p.Missing) > 0
}

func methodSig(fn *types.Func, fset *token.FileSet, dir string) MethodSig {
	sig := fn.Type().(*types.Signature)
	ptr := false
	if recv := sig.Recv(); recv != nil {
		_, ptr = recv.Type().(*types.Pointer)
	}
	return MethodSig{
		Name:      fn.Name(),
		Signature: formatSignature(fn),
		Pos:       resolvePosition(fset, fn.Pos(), dir),
		Pointer:   ptr,
	}
}

func formatSignature(fn *types.Func) string {
	sig := fn.Type().(*types.Signature)
	var b strings.Builder
	b.WriteString(fn.Name())
	b.WriteString("(")
	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(shortType(params.At(i).Type()))
	}
	b.WriteString(")")
	results := sig.Results()
	switch results.Len() {
	case 0:
	case 1:
		b.WriteString(" " + shortType(results.At(0).Type()))
	default:
		b.WriteString(" (")
		for i := 0; i < results.Len(); i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(shortType(results.At(i).Type()))
		}
		b.WriteString(")")
	}
	return b.String()
}

func shortType(t types.Type) string {
	return types.TypeString(t, func(pkg *types.Package) string {
		return pkg.Name()
	})
}

func isStruct(named *types.Named) bool {
	_, ok := named.Underlying().(*types.Struct)
	return ok
}

// resolvePosition resolves a token position to a file relative to moduleRoot
// plus its line.
func resolvePosition(fset *token.FileSet, pos token.Pos, moduleRoot string) Position {
	if fset == nil || !pos.IsValid() {
		return Position{}
	}
	position := fset.Position(pos)
	if !position.IsValid() || position.Filename == "" {
		return Position{}
	}
	rel, err := filepath.Rel(moduleRoot, position.Filename)
	if err != nil {
		rel = position.Filename
	}
	return Position{File: filepath.ToSlash(rel), Line: position.Line}
}

package server

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/olehluchkiv/abslens/internal/analyzer"
	"github.com/olehluchkiv/abslens/internal/diagram"
	"github.com/olehluchkiv/abslens/internal/index"
	"github.com/olehluchkiv/abslens/internal/lens"
)

// Snapshot is one analysis run prepared for serving. It is read-only once built.
type Snapshot struct {
	ID        string
	Input     string
	CreatedAt time.Time
	Result    *analyzer.Result
	Index     *index.Index
	Lenses    []lens.Lens
	Mermaid   string
}

// NewSnapshot indexes result and precomputes its lenses and diagram.
func NewSnapshot(input string, result *analyzer.Result, opts diagram.DiagramOptions) *Snapshot {
	ix := index.New(result)
	return &Snapshot{
		ID:        uuid.NewString(),
		Input:     input,
		CreatedAt: time.Now().UTC(),
		Result:    result,
		Index:     ix,
		Lenses:    lens.Build(ix),
		Mermaid:   diagram.GenerateMermaid(result, opts),
	}
}

// Store holds the snapshot currently being served. It is safe for
// concurrent use.
type Store struct {
	cur atomic.Pointer[Snapshot]
}

// NewStore returns a store serving s.
func NewStore(s *Snapshot) *Store {
	st := &Store{}
	st.cur.Store(s)
	return st
}

// Load returns the current snapshot.
func (st *Store) Load() *Snapshot { return st.cur.Load() }

// Swap replaces the current snapshot and returns the previous one.
func (st *Store) Swap(s *Snapshot) *Snapshot { return st.cur.Swap(s) }

type methodJSON struct {
	Name      string `json:"name"`
	Signature string `json:"signature"`
	File      string `json:"file,omitempty"`
	Line      int    `json:"line,omitempty"`
}

type contractJSON struct {
	Key     string       `json:"key"`
	Name    string       `json:"name"`
	Package string       `json:"package"`
	File    string       `json:"file,omitempty"`
	Line    int          `json:"line,omitempty"`
	Methods []methodJSON `json:"methods"`
}

type typeJSON struct {
	Key      string       `json:"key"`
	Name     string       `json:"name"`
	Package  string       `json:"package"`
	IsStruct bool         `json:"is_struct"`
	File     string       `json:"file,omitempty"`
	Line     int          `json:"line,omitempty"`
	Methods  []methodJSON `json:"methods"`
}

type relationJSON struct {
	Type       string `json:"type"`
	Contract   string `json:"contract"`
	ViaPointer bool   `json:"via_pointer"`
}

type partialJSON struct {
	Type     string   `json:"type"`
	Contract string   `json:"contract"`
	Provided []string `json:"provided"`
	Missing  []string `json:"missing"`
}

type methodTargetJSON struct {
	Type   string     `json:"type"`
	Method methodJSON `json:"method"`
}

type contractMethodJSON struct {
	Contract string     `json:"contract"`
	Method   methodJSON `json:"method"`
}

type snapshotJSON struct {
	ID        string         `json:"id"`
	Input     string         `json:"input"`
	ModuleDir string         `json:"module_dir"`
	CreatedAt time.Time      `json:"created_at"`
	Contracts []contractJSON `json:"contracts"`
	Types     []typeJSON     `json:"types"`
	Relations []relationJSON `json:"relations"`
	Partials  []partialJSON  `json:"partials"`
}

func toMethods(methods []analyzer.MethodSig) []methodJSON {
	out := make([]methodJSON, len(methods))
	for i, m := range methods {
		out[i] = toMethod(m)
	}
	return out
}

func toMethod(m analyzer.MethodSig) methodJSON {
	return methodJSON{Name: m.Name, Signature: m.Signature, File: m.Pos.File, Line: m.Pos.Line}
}

func toContracts(cs []*analyzer.ContractDef) []contractJSON {
	out := make([]contractJSON, len(cs))
	for i, c := range cs {
		out[i] = contractJSON{
			Key: c.Key(), Name: c.Name, Package: c.PkgPath,
			File: c.Pos.File, Line: c.Pos.Line, Methods: toMethods(c.Methods),
		}
	}
	return out
}

func toTypes(ts []*analyzer.TypeDef) []typeJSON {
	out := make([]typeJSON, len(ts))
	for i, t := range ts {
		out[i] = typeJSON{
			Key: t.Key(), Name: t.Name, Package: t.PkgPath, IsStruct: t.IsStruct,
			File: t.Pos.File, Line: t.Pos.Line, Methods: toMethods(t.Methods),
		}
	}
	return out
}

func toRelations(rels []*analyzer.Relation) []relationJSON {
	out := make([]relationJSON, len(rels))
	for i, r := range rels {
		out[i] = relationJSON{Type: r.Type.Key(), Contract: r.Contract.Key(), ViaPointer: r.ViaPointer}
	}
	return out
}

func toPartials(ps []*analyzer.Partial) []partialJSON {
	out := make([]partialJSON, len(ps))
	for i, p := range ps {
		out[i] = partialJSON{Type: p.Type.Key(), Contract: p.Contract.Key(), Provided: p.Provided, Missing: p.Missing}
	}
	return out
}

func (s *Snapshot) toJSON() snapshotJSON {
	rels := make([]*analyzer.Relation, len(s.Result.Relations))
	for i := range s.Result.Relations {
		rels[i] = &s.Result.Relations[i]
	}
	return snapshotJSON{
		ID:        s.ID,
		Input:     s.Input,
		ModuleDir: s.Result.ModuleDir,
		CreatedAt: s.CreatedAt,
		Contracts: toContracts(s.Index.Contracts()),
		Types:     toTypes(s.Index.Types()),
		Relations: toRelations(rels),
		Partials:  toPartials(s.Index.Partials()),
	}
}

package analyzer

import "go/types"

// Position is a source location relative to the analyzed module root.
type Position struct {
	File string
	Line int // 1-based, 0 if unknown
}

// IsValid reports whether the position points at a file.
func (p Position) IsValid() bool { return p.File != "" }

// ContractDef represents a discovered Go interface.
type ContractDef struct {
	Name    string
	PkgPath string
	PkgName string
	Methods []MethodSig
	TypeObj *types.Interface
	Pos     Position
}

// Key returns the contract's unique "pkgpath.Name" key.
func (c *ContractDef) Key() string { return c.PkgPath + "." + c.Name }

// TypeDef represents a discovered named Go type.
type TypeDef struct {
	Name     string
	PkgPath  string
	PkgName  string
	IsStruct bool
	Methods  []MethodSig // value and pointer receiver methods
	TypeObj  *types.Named
	Pos      Position
}

// Key returns the type's unique "pkgpath.Name" key.
func (t *TypeDef) Key() string { return t.PkgPath + "." + t.Name }

// Method looks up a declared method by name.
func (t *TypeDef) Method(name string) (MethodSig, bool) {
	for _, m := range t.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return MethodSig{}, false
}

// MethodSig captures a method name, its signature string and where it is declared.
type MethodSig struct {
	Name      string
	Signature string
	Pos       Position
	Pointer   bool // declared with a pointer receiver
}

// MethodBinding links a contract method to the method implementing it.
type MethodBinding struct {
	Contract MethodSig
	Impl     MethodSig
}

// Relation captures that a concrete type satisfies a contract.
type Relation struct {
	Type       *TypeDef
	Contract   *ContractDef
	ViaPointer bool // true if only *T (not T) satisfies the contract
	Methods    []MethodBinding
}

// Partial captures a type that provides some but not all of a contract's
// methods. Provided and Missing hold method names.
type Partial struct {
	Type     *TypeDef
	Contract *ContractDef
	Provided []string
	Missing  []string
}

// Result holds the complete analysis output.
type Result struct {
	Contracts []ContractDef
	Types     []TypeDef
	Relations []Relation
	Partials  []Partial
	ModuleDir string
}

// AnalyzeOptions controls analysis behavior.
type AnalyzeOptions struct {
	Filter            string // package path prefix filter
	IncludeStdlib     bool
	IncludeUnexported bool
	// NoPartials disables partial conformance detection.
	NoPartials bool
}

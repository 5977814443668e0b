package diagram

import (
	"fmt"
	"sort"
	"strings"

	"github.com/olehluchkiv/abslens/internal/analyzer"
)

// DiagramOptions controls Mermaid diagram generation.
type DiagramOptions struct {
	MaxMethodsPerBox int  // default 5, 0 means unlimited
	IncludeInit      bool // include %%{init:}%% directive (for standalone .mmd files)
}

// DefaultDiagramOptions returns sensible defaults for diagram generation.
func DefaultDiagramOptions() DiagramOptions {
	return DiagramOptions{MaxMethodsPerBox: 5}
}

// GenerateMermaid produces a Mermaid classDiagram string from analysis results.
// Satisfied contracts are solid arrows; partial conformances are dashed
// arrows labelled with the missing methods.
func GenerateMermaid(result *analyzer.Result, opts DiagramOptions) string {
	var b strings.Builder

	contracts := make([]analyzer.ContractDef, len(result.Contracts))
	copy(contracts, result.Contracts)
	sort.Slice(contracts, func(i, j int) bool {
		return NodeID(contracts[i].PkgName, contracts[i].Name) < NodeID(contracts[j].PkgName, contracts[j].Name)
	})

	typs := make([]analyzer.TypeDef, len(result.Types))
	copy(typs, result.Types)
	sort.Slice(typs, func(i, j int) bool {
		return NodeID(typs[i].PkgName, typs[i].Name) < NodeID(typs[j].PkgName, typs[j].Name)
	})

	rels := make([]analyzer.Relation, len(result.Relations))
	copy(rels, result.Relations)
	sort.Slice(rels, func(i, j int) bool {
		return edgeLess(rels[i].Type, rels[i].Contract, rels[j].Type, rels[j].Contract)
	})

	partials := make([]analyzer.Partial, len(result.Partials))
	copy(partials, result.Partials)
	sort.Slice(partials, func(i, j int) bool {
		return edgeLess(partials[i].Type, partials[i].Contract, partials[j].Type, partials[j].Contract)
	})

	hasNodes := len(contracts) > 0 || len(typs) > 0

	if opts.IncludeInit {
		b.WriteString("%%{init: {'theme': 'base', 'themeVariables': {'primaryColor': '#ffffff', 'primaryBorderColor': '#cccccc', 'primaryTextColor': '#000000', 'lineColor': '#555555'}}%%\n")
	}
	b.WriteString("classDiagram")
	if hasNodes {
		b.WriteString("\n")
		b.WriteString("    direction LR\n")
		b.WriteString("    classDef contractStyle fill:#2374ab,stroke:#1a5a8a,color:#fff,stroke-width:2px,font-weight:bold\n")
		b.WriteString("    classDef implStyle fill:#4a9c6d,stroke:#357a50,color:#fff,stroke-width:2px")
	}

	for _, c := range contracts {
		b.WriteString("\n")
		writeContractBlock(&b, c, opts)
	}

	if len(contracts) > 0 && len(typs) > 0 {
		b.WriteString("\n")
	}
	for _, typ := range typs {
		b.WriteString("\n")
		writeTypeBlock(&b, typ)
	}

	if hasNodes && len(rels)+len(partials) > 0 {
		b.WriteString("\n")
	}
	for _, rel := range rels {
		b.WriteString("\n")
		fmt.Fprintf(&b, "    %s --|> %s",
			NodeID(rel.Type.PkgName, rel.Type.Name), NodeID(rel.Contract.PkgName, rel.Contract.Name))
	}
	for _, p := range partials {
		b.WriteString("\n")
		fmt.Fprintf(&b, "    %s ..> %s : missing %s",
			NodeID(p.Type.PkgName, p.Type.Name), NodeID(p.Contract.PkgName, p.Contract.Name),
			strings.Join(p.Missing, ", "))
	}

	if hasNodes {
		b.WriteString("\n")
		for _, c := range contracts {
			fmt.Fprintf(&b, "\n    cssClass \"%s\" contractStyle", NodeID(c.PkgName, c.Name))
		}
		for _, typ := range typs {
			fmt.Fprintf(&b, "\n    cssClass \"%s\" implStyle", NodeID(typ.PkgName, typ.Name))
		}
	}

	return b.String()
}

func edgeLess(ti *analyzer.TypeDef, ci *analyzer.ContractDef, tj *analyzer.TypeDef, cj *analyzer.ContractDef) bool {
	a, b := NodeID(ti.PkgName, ti.Name), NodeID(tj.PkgName, tj.Name)
	if a != b {
		return a < b
	}
	return NodeID(ci.PkgName, ci.Name) < NodeID(cj.PkgName, cj.Name)
}

// SanitizeSignature removes characters in method signatures that break Mermaid syntax.
// Mermaid treats {}, <>, and ~ as special in class diagram labels.
func SanitizeSignature(sig string) string {
	sig = strings.ReplaceAll(sig, "<-chan", "chan")
	// "interface" is reserved in browser Mermaid.js, so rewrite before stripping braces.
	sig = strings.ReplaceAll(sig, "interface{}", "any")
	sig = strings.ReplaceAll(sig, "{}", "")
	return sig
}

// NodeID builds a sanitized node ID from pkgName and type/contract name.
func NodeID(pkgName, name string) string {
	r := strings.NewReplacer("/", "_", ".", "_", "-", "_")
	return r.Replace(pkgName + "_" + name)
}

func writeContractBlock(b *strings.Builder, c analyzer.ContractDef, opts DiagramOptions) {
	fmt.Fprintf(b, "    class %s {\n", NodeID(c.PkgName, c.Name))
	b.WriteString("        <<interface>>\n")
	if c.Pos.IsValid() {
		fmt.Fprintf(b, "        %%%% file: %s:%d\n", c.Pos.File, c.Pos.Line)
	}
	writeMethodLines(b, c.Methods, opts)
	b.WriteString("    }")
}

// writeTypeBlock writes a class block for a concrete type. Methods are left
// out since the contract blocks already list them.
func writeTypeBlock(b *strings.Builder, typ analyzer.TypeDef) {
	fmt.Fprintf(b, "    class %s {\n", NodeID(typ.PkgName, typ.Name))
	if typ.Pos.IsValid() {
		fmt.Fprintf(b, "        %%%% file: %s:%d\n", typ.Pos.File, typ.Pos.Line)
	}
	b.WriteString("    }")
}

func writeMethodLines(b *strings.Builder, methods []analyzer.MethodSig, opts DiagramOptions) {
	limit := len(methods)
	truncated := false
	if opts.MaxMethodsPerBox > 0 && limit > opts.MaxMethodsPerBox {
		limit = opts.MaxMethodsPerBox
		truncated = true
	}

	for i := 0; i < limit; i++ {
		fmt.Fprintf(b, "        +%s\n", SanitizeSignature(methods[i].Signature))
	}
	if truncated {
		b.WriteString("        ...\n")
	}
}

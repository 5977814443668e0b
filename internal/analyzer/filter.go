package analyzer

import (
	"go/token"
	"strings"
)

// Filter applies filtering options to the analysis result. Contracts and
// types that take part in no remaining relation or partial are pruned.
func Filter(result *Result, opts AnalyzeOptions) *Result {
	filtered := &Result{ModuleDir: result.ModuleDir}

	contractSet := make(map[string]bool)
	typeSet := make(map[string]bool)

	for _, rel := range result.Relations {
		if !keep(rel.Contract, rel.Type, opts) {
			continue
		}
		filtered.Relations = append(filtered.Relations, rel)
		contractSet[rel.Contract.Key()] = true
		typeSet[rel.Type.Key()] = true
	}

	for _, p := range result.Partials {
		if opts.NoPartials || !keep(p.Contract, p.Type, opts) {
			continue
		}
		filtered.Partials = append(filtered.Partials, p)
		contractSet[p.Contract.Key()] = true
		typeSet[p.Type.Key()] = true
	}

	for i := range result.Contracts {
		ct := &result.Contracts[i]
		if contractSet[ct.Key()] {
			filtered.Contracts = append(filtered.Contracts, *ct)
		}
	}

	for i := range result.Types {
		typ := &result.Types[i]
		if typeSet[typ.Key()] {
			filtered.Types = append(filtered.Types, *typ)
		}
	}

	return filtered
}

func keep(ct *ContractDef, typ *TypeDef, opts AnalyzeOptions) bool {
	if !opts.IncludeStdlib && isStdlib(ct.PkgPath) {
		return false
	}
	if !opts.IncludeUnexported && (isUnexported(ct.Name) || isUnexported(typ.Name)) {
		return false
	}
	if opts.Filter != "" {
		if !strings.HasPrefix(ct.PkgPath, opts.Filter) && !strings.HasPrefix(typ.PkgPath, opts.Filter) {
			return false
		}
	}
	return true
}

func isStdlib(pkgPath string) bool {
	// Stdlib packages have no dot in the first path element
	firstPart, _, _ := strings.Cut(pkgPath, "/")
	return !strings.Contains(firstPart, ".")
}

func isUnexported(name string) bool {
	// error is lowercase but predeclared
	if name == "error" {
		return false
	}
	return !token.IsExported(name)
}

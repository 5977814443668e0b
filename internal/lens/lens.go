// Package lens turns navigation queries into editor-style annotations: one
// per contract, contract method, implementing type and implementing method.
package lens

import (
	"sort"

	"github.com/olehluchkiv/abslens/internal/analyzer"
	"github.com/olehluchkiv/abslens/internal/index"
)

// Command identifies the navigation a lens triggers.
type Command string

const (
	GoToImplementations       Command = "abslens.goToImplementations"
	GoToMethodImplementations Command = "abslens.goToMethodImplementations"
	GoToInterface             Command = "abslens.goToInterface"
	GoToInterfaceMethod       Command = "abslens.goToInterfaceMethod"
)

// Title returns the button label shown for the command.
func (c Command) Title() string {
	switch c {
	case GoToImplementations:
		return "go to impl"
	case GoToMethodImplementations:
		return "go to method impl"
	case GoToInterface:
		return "go to interface"
	case GoToInterfaceMethod:
		return "go to interface method"
	default:
		return string(c)
	}
}

// Target is a location a lens navigates to.
type Target struct {
	Name string `json:"name" yaml:"name"`
	File string `json:"file" yaml:"file"`
	Line int    `json:"line" yaml:"line"`
}

// Lens is an annotation anchored at a source line.
type Lens struct {
	File    string   `json:"file" yaml:"file"`
	Line    int      `json:"line" yaml:"line"`
	Title   string   `json:"title" yaml:"title"`
	Command Command  `json:"command" yaml:"command"`
	Subject string   `json:"subject" yaml:"subject"`
	Targets []Target `json:"targets" yaml:"targets"`
}

type lensKey struct {
	file    string
	line    int
	command Command
}

type builder struct {
	lenses map[lensKey]*Lens
}

// Build creates every lens the index supports. A lens is only created when
// it has at least one target with a known position. Lenses anchored at the
// same line with the same command are merged.
func Build(ix *index.Index) []Lens {
	b := &builder{lenses: make(map[lensKey]*Lens)}

	for _, c := range ix.Contracts() {
		rels, err := ix.ImplementationsOf(c.Key())
		if err != nil {
			continue
		}
		var targets []Target
		for _, rel := range rels {
			targets = appendTarget(targets, rel.Type.Name, rel.Type.Pos)
		}
		b.add(c.Pos, GoToImplementations, c.Name, targets)

		for _, m := range c.Methods {
			impls, err := ix.MethodImplementations(c.Key(), m.Name)
			if err != nil {
				continue
			}
			var targets []Target
			for _, impl := range impls {
				targets = appendTarget(targets, impl.Type.Name+"."+impl.Method.Name, impl.Method.Pos)
			}
			b.add(m.Pos, GoToMethodImplementations, c.Name+"."+m.Name, targets)
		}
	}

	for _, t := range ix.Types() {
		rels, err := ix.ContractsOf(t.Key())
		if err != nil {
			continue
		}
		var targets []Target
		for _, rel := range rels {
			targets = appendTarget(targets, rel.Contract.Name, rel.Contract.Pos)
		}
		b.add(t.Pos, GoToInterface, t.Name, targets)

		for _, m := range t.Methods {
			cms, err := ix.ContractMethodsFor(t.Key(), m.Name)
			if err != nil {
				continue
			}
			var targets []Target
			for _, cm := range cms {
				targets = appendTarget(targets, cm.Contract.Name+"."+cm.Method.Name, cm.Method.Pos)
			}
			b.add(m.Pos, GoToInterfaceMethod, t.Name+"."+m.Name, targets)
		}
	}

	return b.sorted()
}

// ForFile returns the lenses anchored in file.
func ForFile(lenses []Lens, file string) []Lens {
	var out []Lens
	for _, l := range lenses {
		if l.File == file {
			out = append(out, l)
		}
	}
	return out
}

func appendTarget(targets []Target, name string, pos analyzer.Position) []Target {
	if !pos.IsValid() {
		return targets
	}
	return append(targets, Target{Name: name, File: pos.File, Line: pos.Line})
}

func (b *builder) add(pos analyzer.Position, cmd Command, subject string, targets []Target) {
	if !pos.IsValid() || len(targets) == 0 {
		return
	}
	key := lensKey{file: pos.File, line: pos.Line, command: cmd}
	l, ok := b.lenses[key]
	if !ok {
		l = &Lens{File: pos.File, Line: pos.Line, Title: cmd.Title(), Command: cmd, Subject: subject}
		b.lenses[key] = l
	}
	for _, t := range targets {
		if !containsTarget(l.Targets, t) {
			l.Targets = append(l.Targets, t)
		}
	}
}

func containsTarget(targets []Target, t Target) bool {
	for _, have := range targets {
		if have == t {
			return true
		}
	}
	return false
}

func (b *builder) sorted() []Lens {
	out := make([]Lens, 0, len(b.lenses))
	for _, l := range b.lenses {
		sort.Slice(l.Targets, func(i, j int) bool {
			if l.Targets[i].File != l.Targets[j].File {
				return l.Targets[i].File < l.Targets[j].File
			}
			if l.Targets[i].Line != l.Targets[j].Line {
				return l.Targets[i].Line < l.Targets[j].Line
			}
			return l.Targets[i].Name < l.Targets[j].Name
		})
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Command < out[j].Command
	})
	return out
}

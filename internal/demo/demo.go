// Package demo exercises the contract values in process: it registers them,
// checks their conformance and calls every operation.
package demo

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"

	"github.com/olehluchkiv/abslens/internal/contract"
)

// draft claims TestInterface but only provides TestMethod1.
type draft struct{}

func (draft) TestMethod1(param string) string { return param }

// Run registers the corpus values, invokes each of their operations and
// reports the results to w. It also shows that an incomplete value is refused.
func Run(w io.Writer, logger *slog.Logger) error {
	logger = logger.With("component", "demo")
	r := lipgloss.NewRenderer(w)
	heading := r.NewStyle().Bold(true)
	dim := r.NewStyle().Faint(true)

	reg := contract.NewRegistry()
	values := []struct {
		name      string
		value     any
		contracts []contract.Contract
	}{
		{"simple", contract.SimpleImplementation{}, []contract.Contract{contract.Simple}},
		{"test", contract.TestImplementation{}, []contract.Contract{contract.Test}},
		{"another", contract.AnotherImplementation{Out: w}, []contract.Contract{contract.Another}},
		{"multiple", contract.MultipleImplementation{Out: w}, []contract.Contract{contract.Test, contract.Another}},
	}
	for _, v := range values {
		if err := reg.Register(v.name, v.value, v.contracts...); err != nil {
			return fmt.Errorf("registering %s: %w", v.name, err)
		}
		logger.Debug("registered value", "name", v.name, "contracts", len(v.contracts))
	}

	fmt.Fprintln(w, heading.Render("registered"))
	for _, e := range reg.Entries() {
		names := make([]string, len(e.Contracts))
		for i, c := range e.Contracts {
			names[i] = c.Name
		}
		fmt.Fprintf(w, "  %-10s %s\n", e.Name, dim.Render(fmt.Sprint(names)))
	}

	fmt.Fprintln(w, heading.Render(contract.Simple.Name))
	for _, e := range reg.Satisfying(contract.Simple) {
		s, err := contract.As[contract.SimpleInterface](reg, e.Name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s.SimpleMethod() = %q\n", e.Name, s.SimpleMethod())
	}

	fmt.Fprintln(w, heading.Render(contract.Test.Name))
	for _, e := range reg.Satisfying(contract.Test) {
		t, err := contract.As[contract.TestInterface](reg, e.Name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s.TestMethod1(%q) = %q\n", e.Name, "x", t.TestMethod1("x"))
		fmt.Fprintf(w, "  %s.TestMethod2(3, %q) = %d\n", e.Name, "ab", t.TestMethod2(3, "ab"))
	}

	fmt.Fprintln(w, heading.Render(contract.Another.Name))
	for _, e := range reg.Satisfying(contract.Another) {
		a, err := contract.As[contract.AnotherInterface](reg, e.Name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s.AnotherMethod(): ", e.Name)
		a.AnotherMethod()
	}

	fmt.Fprintln(w, heading.Render("incomplete"))
	err := reg.Register("draft", draft{}, contract.Test)
	var ice *contract.IncompleteConformanceError
	if !errors.As(err, &ice) {
		return fmt.Errorf("incomplete value was accepted: %v", err)
	}
	fmt.Fprintf(w, "  rejected: %v\n", err)
	logger.Info("demo finished", "registered", len(reg.Entries()))
	return nil
}

package contract

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Contract describes an interface type as a named set of operations.
type Contract struct {
	Name string
	typ  reflect.Type
}

// Operation is one method a contract requires.
type Operation struct {
	Name      string
	Signature string
}

// Contracts for the interfaces declared in this package.
var (
	Test    = Of[TestInterface]()
	Another = Of[AnotherInterface]()
	Simple  = Of[SimpleInterface]()
)

// Of returns the Contract for interface type T. It panics if T is not an
// interface.
func Of[T any]() Contract {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Interface {
		panic(fmt.Sprintf("contract.Of: %s is not an interface type", t))
	}
	return Contract{Name: t.Name(), typ: t}
}

// Type returns the interface type behind the contract.
func (c Contract) Type() reflect.Type { return c.typ }

// Operations lists the contract's methods in name order.
func (c Contract) Operations() []Operation {
	if c.typ == nil {
		return nil
	}
	ops := make([]Operation, c.typ.NumMethod())
	for i := 0; i < c.typ.NumMethod(); i++ {
		m := c.typ.Method(i)
		ops[i] = Operation{Name: m.Name, Signature: formatFunc(m.Name, m.Type, 0)}
	}
	return ops
}

// IncompleteConformanceError reports a value that does not provide every
// operation of a contract it claims.
type IncompleteConformanceError struct {
	Type       string
	Contract   string
	Missing    []string
	Mismatched []string
	// PointerReceiver lists missing operations that exist on the pointer type.
	PointerReceiver []string
}

func (e *IncompleteConformanceError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Mismatched) > 0 {
		parts = append(parts, "mismatched "+strings.Join(e.Mismatched, ", "))
	}
	if len(e.PointerReceiver) > 0 {
		parts = append(parts, "pointer receiver only "+strings.Join(e.PointerReceiver, ", "))
	}
	return fmt.Sprintf("%s does not satisfy %s: %s", e.Type, e.Contract, strings.Join(parts, "; "))
}

// Conform checks value against every contract independently. It returns nil
// when all are satisfied, otherwise one *IncompleteConformanceError per
// unsatisfied contract joined with errors.Join.
func Conform(value any, contracts ...Contract) error {
	var errs []error
	for _, c := range contracts {
		if err := check(value, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func check(value any, c Contract) error {
	if c.typ == nil {
		return fmt.Errorf("check conformance: contract %q has no interface type", c.Name)
	}
	t := reflect.TypeOf(value)
	if t == nil {
		e := &IncompleteConformanceError{Type: "<nil>", Contract: c.Name}
		for _, op := range c.Operations() {
			e.Missing = append(e.Missing, op.Name)
		}
		return e
	}
	if t.Implements(c.typ) {
		return nil
	}

	e := &IncompleteConformanceError{Type: t.String(), Contract: c.Name}
	for i := 0; i < c.typ.NumMethod(); i++ {
		want := c.typ.Method(i)
		got, ok := t.MethodByName(want.Name)
		if !ok {
			if t.Kind() != reflect.Pointer {
				if _, ok := reflect.PointerTo(t).MethodByName(want.Name); ok {
					e.PointerReceiver = append(e.PointerReceiver, want.Name)
					continue
				}
			}
			e.Missing = append(e.Missing, want.Name)
			continue
		}
		if !sameShape(got.Type, want.Type) {
			e.Mismatched = append(e.Mismatched, want.Name)
		}
	}
	return e
}

// sameShape compares a method value type (receiver first) with an interface
// method type (no receiver).
func sameShape(method, iface reflect.Type) bool {
	if method.NumIn()-1 != iface.NumIn() || method.NumOut() != iface.NumOut() {
		return false
	}
	if method.IsVariadic() != iface.IsVariadic() {
		return false
	}
	for i := 0; i < iface.NumIn(); i++ {
		if method.In(i+1) != iface.In(i) {
			return false
		}
	}
	for i := 0; i < iface.NumOut(); i++ {
		if method.Out(i) != iface.Out(i) {
			return false
		}
	}
	return true
}

func formatFunc(name string, fn reflect.Type, skip int) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteString("(")
	for i := skip; i < fn.NumIn(); i++ {
		if i > skip {
			b.WriteString(", ")
		}
		b.WriteString(fn.In(i).String())
	}
	b.WriteString(")")
	switch fn.NumOut() {
	case 0:
	case 1:
		b.WriteString(" " + fn.Out(0).String())
	default:
		outs := make([]string, fn.NumOut())
		for i := range outs {
			outs[i] = fn.Out(i).String()
		}
		b.WriteString(" (" + strings.Join(outs, ", ") + ")")
	}
	return b.String()
}

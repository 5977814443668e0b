package contract

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	ErrNotRegistered = errors.New("not registered")
	ErrDuplicate     = errors.New("already registered")
)

// Entry is a registered value and the contracts it claims.
type Entry struct {
	Name      string
	Value     any
	Contracts []Contract
}

// Claims reports whether the entry claims contract c.
func (e Entry) Claims(c Contract) bool {
	for _, have := range e.Contracts {
		if have.typ == c.typ {
			return true
		}
	}
	return false
}

// Registry holds named values that passed the conformance check for every
// contract they claim. A value that fails the check is never stored.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register checks value against contracts and stores it under name.
func (r *Registry) Register(name string, value any, contracts ...Contract) error {
	if len(contracts) == 0 {
		return fmt.Errorf("register %q: no contracts claimed", name)
	}
	if err := Conform(value, contracts...); err != nil {
		return fmt.Errorf("register %q: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; ok {
		return fmt.Errorf("register %q: %w", name, ErrDuplicate)
	}
	claimed := make([]Contract, len(contracts))
	copy(claimed, contracts)
	r.entries[name] = Entry{Name: name, Value: value, Contracts: claimed}
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("lookup %q: %w", name, ErrNotRegistered)
	}
	return e, nil
}

// Entries returns all entries in registration order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name])
	}
	return out
}

// Satisfying returns the entries claiming c, in registration order.
func (r *Registry) Satisfying(c Contract) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Claims(c) {
			out = append(out, e)
		}
	}
	return out
}

// As returns the value registered under name as contract type T.
func As[T any](r *Registry, name string) (T, error) {
	var zero T
	e, err := r.Lookup(name)
	if err != nil {
		return zero, err
	}
	v, ok := e.Value.(T)
	if !ok && reflect.TypeFor[T]().Kind() != reflect.Interface {
		return zero, fmt.Errorf("lookup %q: value is %T, not %s", name, e.Value, reflect.TypeFor[T]())
	}
	if !ok {
		return zero, fmt.Errorf("lookup %q: %w", name, &IncompleteConformanceError{
			Type:     fmt.Sprintf("%T", e.Value),
			Contract: Of[T]().Name,
			Missing:  missingNames(e.Value, Of[T]()),
		})
	}
	return v, nil
}

func missingNames(value any, c Contract) []string {
	var ice *IncompleteConformanceError
	if errors.As(check(value, c), &ice) {
		return append(append(ice.Missing, ice.Mismatched...), ice.PointerReceiver...)
	}
	return nil
}

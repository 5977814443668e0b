package index

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

var (
	ErrUnknownContract = errors.New("unknown contract")
	ErrUnknownType     = errors.New("unknown type")
	ErrUnknownMethod   = errors.New("unknown method")
	ErrAmbiguous       = errors.New("ambiguous name")
)

const (
	kindContract = "contract"
	kindType     = "type"
	kindMethod   = "method"
)

// NotFoundError reports a name that is not in the index. Suggestion holds
// the closest known name, if one is close enough.
type NotFoundError struct {
	Kind       string
	Name       string
	Suggestion string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

func (e *NotFoundError) Unwrap() error {
	switch e.Kind {
	case kindContract:
		return ErrUnknownContract
	case kindType:
		return ErrUnknownType
	default:
		return ErrUnknownMethod
	}
}

func notFound(kind, name, suggestion string) error {
	return &NotFoundError{Kind: kind, Name: name, Suggestion: suggestion}
}

// suggest returns the candidate closest to name by edit distance, or "" when
// none is within half of name's length. Ties go to the lexically first.
func suggest(name string, candidates []string) string {
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	best, bestDist := "", -1
	lower := strings.ToLower(name)
	for _, c := range sorted {
		d := levenshtein.ComputeDistance(lower, strings.ToLower(c))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	limit := len([]rune(name)) / 2
	if limit < 1 {
		limit = 1
	}
	if bestDist < 0 || bestDist > limit {
		return ""
	}
	return best
}

// Package trigger decides when a generator must be re-run as the search term changes.
package trigger

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/NikitaCOEUR/autosuggest/internal/derrors"
)

// Kind identifies a trigger policy variant
type Kind int

const (
	// None is the absent policy: only argument changes and debounced arguments re-run the generator
	None Kind = iota
	// Substring re-runs when the rightmost index of a literal substring moves
	Substring
	// Predicate delegates the decision to a user function
	Predicate
	// Threshold re-runs once when the term length reaches a limit from below
	Threshold
	// Match re-runs when the term moves between members of a literal set
	Match
	// Change re-runs on any term change
	Change
)

// String returns the config name of the kind
func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Substring:
		return "substring"
	case Predicate:
		return "predicate"
	case Threshold:
		return "threshold"
	case Match:
		return "match"
	case Change:
		return "change"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// PredicateFunc decides from the previous and current search terms.
// Returning an error (or panicking) counts as "trigger".
type PredicateFunc func(previous, current string) (bool, error)

// Policy is a closed variant; only the fields of its Kind are meaningful.
// The zero value is the absent policy.
type Policy struct {
	Kind      Kind
	Substring string
	Length    int
	Strings   []string
	Func      PredicateFunc
}

// OnSubstring triggers when the user crosses a new occurrence of s (e.g. "/")
func OnSubstring(s string) Policy {
	return Policy{Kind: Substring, Substring: s}
}

// OnPredicate triggers according to fn
func OnPredicate(fn PredicateFunc) Policy {
	return Policy{Kind: Predicate, Func: fn}
}

// OnThreshold triggers once when the term grows to length n
func OnThreshold(n int) Policy {
	return Policy{Kind: Threshold, Length: n}
}

// OnMatch triggers when the term enters, leaves or switches between the given strings
func OnMatch(strs ...string) Policy {
	return Policy{Kind: Match, Strings: strs}
}

// OnChange triggers on every change of the term
func OnChange() Policy {
	return Policy{Kind: Change}
}

// IsZero reports whether p is the absent policy
func (p Policy) IsZero() bool {
	return p.Kind == None
}

// String renders the policy for logs and the status view
func (p Policy) String() string {
	switch p.Kind {
	case Substring:
		return fmt.Sprintf("substring(%q)", p.Substring)
	case Threshold:
		return fmt.Sprintf("threshold(%d)", p.Length)
	case Match:
		return fmt.Sprintf("match(%s)", strings.Join(p.Strings, "|"))
	default:
		return p.Kind.String()
	}
}

// ShouldTrigger reports whether a term change from previous to current must re-run the generator
func ShouldTrigger(previous, current string, p Policy, debounced bool) bool {
	ok, _ := Evaluate(previous, current, p, debounced)
	return ok
}

// Evaluate is ShouldTrigger that also returns the predicate failure that forced a trigger
func Evaluate(previous, current string, p Policy, debounced bool) (bool, error) {
	switch p.Kind {
	case None:
		return debounced, nil
	case Substring:
		return strings.LastIndex(previous, p.Substring) != strings.LastIndex(current, p.Substring), nil
	case Predicate:
		return callPredicate(p.Func, previous, current)
	case Threshold:
		return utf8.RuneCountInString(current) >= p.Length && utf8.RuneCountInString(previous) < p.Length, nil
	case Match:
		return indexOf(p.Strings, previous) != indexOf(p.Strings, current), nil
	case Change:
		return previous != current, nil
	default:
		return previous != current, nil
	}
}

// Decide applies the unconditional rules before consulting the policy:
// a changed argument or a slot without prior state always triggers.
func Decide(argumentChanged, hasPrevious bool, previous, current string, p Policy, debounced bool) (bool, error) {
	if argumentChanged || !hasPrevious {
		return true, nil
	}
	return Evaluate(previous, current, p, debounced)
}

// callPredicate runs fn, resolving errors and panics to "trigger"
func callPredicate(fn PredicateFunc, previous, current string) (triggered bool, err error) {
	if fn == nil {
		return true, derrors.NewTriggerError(previous, current, fmt.Errorf("nil predicate"))
	}

	defer func() {
		if r := recover(); r != nil {
			triggered = true
			err = derrors.NewTriggerError(previous, current, fmt.Errorf("panic: %v", r))
		}
	}()

	ok, callErr := fn(previous, current)
	if callErr != nil {
		return true, derrors.NewTriggerError(previous, current, callErr)
	}
	return ok, nil
}

func indexOf(set []string, term string) int {
	for i, s := range set {
		if s == term {
			return i
		}
	}
	return -1
}

// Package scheduler keeps one state per generator of the current argument and
// decides, on every keystroke, which generators to run, defer or leave alone.
package scheduler

import (
	"time"

	"github.com/NikitaCOEUR/autosuggest/internal/generator"
	"github.com/NikitaCOEUR/autosuggest/internal/trigger"
	"github.com/google/uuid"
)

// DefaultDebounce delays debounced runs whose generator sets no positive delay
const DefaultDebounce = 200 * time.Millisecond

// Argument is the argument being completed, as produced by the parser.
// Two inputs refer to the same argument only if they share the pointer.
type Argument struct {
	Name        string
	Generators  []*generator.Descriptor
	Debounce    bool
	IsDangerous bool
}

// Input is one parser evaluation
type Input struct {
	Argument *Argument
	Context  generator.Context
}

// State is the state of one generator slot. States are values: every change
// produces a new slice, so a snapshot never changes under its reader.
type State struct {
	Generator *generator.Descriptor
	Context   generator.Context
	Result    []generator.Suggestion
	Loading   bool
	// Request identifies the outstanding run; empty unless Loading
	Request string
	// Version is unique per run; zero means the slot has never run
	Version uint64
	// Identity is assigned when the slot is created and kept while it is
	// carried over; a slot rebuilt after leaving the argument gets a new one
	Identity uint64
}

// Store is the full scheduling state
type Store struct {
	Argument *Argument
	States   []State
	// Seq is the last version handed out
	Seq uint64
	// Slots is the last slot identity handed out
	Slots uint64
}

// Run is a generator execution decided by Next or Fire
type Run struct {
	Slot      int
	Argument  *Argument
	Generator *generator.Descriptor
	Context   generator.Context
	// Delay is positive for debounced runs that have not started yet
	Delay   time.Duration
	Version uint64
	Request string
	// Identity of the slot the run was decided for
	Identity uint64
}

// Settings tunes scheduling decisions
type Settings struct {
	DebounceDefault time.Duration
	// RequestID generates request identifiers; uuid when nil
	RequestID func() string
}

func (s Settings) delay(d *generator.Descriptor) time.Duration {
	if d.Debounce > 0 {
		return d.Debounce
	}
	if s.DebounceDefault > 0 {
		return s.DebounceDefault
	}
	return DefaultDebounce
}

func (s Settings) requestID() string {
	if s.RequestID != nil {
		return s.RequestID()
	}
	return uuid.NewString()
}

// Next computes the store that follows prev for a new parser input, and the
// runs to start. Deferred runs carry a positive Delay and must go through
// Fire once it elapses. Next does not touch prev.
func Next(prev Store, in Input, s Settings) (Store, []Run) {
	next := Store{Argument: in.Argument, Seq: prev.Seq, Slots: prev.Slots}
	if in.Argument == nil {
		return next, nil
	}

	argumentChanged := prev.Argument != in.Argument
	gctx := in.Context
	gctx.IsDangerous = gctx.IsDangerous || in.Argument.IsDangerous

	var runs []Run
	next.States = make([]State, len(in.Argument.Generators))
	for i, g := range in.Argument.Generators {
		previous, hasPrevious := slot(prev, i, g, argumentChanged)
		identity := previous.Identity
		if !hasPrevious {
			next.Slots++
			identity = next.Slots
		}

		triggered, _ := trigger.Decide(argumentChanged, hasPrevious,
			previous.Context.SearchTerm, gctx.SearchTerm, g.Trigger, in.Argument.Debounce)
		if !triggered {
			next.States[i] = previous
			continue
		}

		if in.Argument.Debounce {
			if hasPrevious {
				next.States[i] = previous
			} else {
				next.States[i] = State{Generator: g, Context: gctx, Result: []generator.Suggestion{}, Identity: identity}
			}
			runs = append(runs, Run{
				Slot:      i,
				Argument:  in.Argument,
				Generator: g,
				Context:   gctx,
				Delay:     s.delay(g),
				Identity:  identity,
			})
			continue
		}

		next.Seq++
		run := Run{
			Slot:      i,
			Argument:  in.Argument,
			Generator: g,
			Context:   gctx,
			Version:   next.Seq,
			Request:   s.requestID(),
			Identity:  identity,
		}
		next.States[i] = loading(previous, run)
		runs = append(runs, run)
	}
	return next, runs
}

// Fire starts a deferred run if it is still relevant: the argument, slot
// generator and slot identity are unchanged and the trigger still holds
// between the live slot and the context captured when the run was deferred.
func Fire(store Store, run Run, s Settings) (Store, Run, bool) {
	if store.Argument != run.Argument || run.Slot >= len(store.States) {
		return store, Run{}, false
	}
	live := store.States[run.Slot]
	if live.Generator != run.Generator || live.Identity != run.Identity {
		return store, Run{}, false
	}

	debounced := run.Argument != nil && run.Argument.Debounce
	triggered, _ := trigger.Decide(false, live.Version != 0,
		live.Context.SearchTerm, run.Context.SearchTerm, run.Generator.Trigger, debounced)
	if !triggered {
		return store, Run{}, false
	}

	next := Store{Argument: store.Argument, Seq: store.Seq + 1, Slots: store.Slots}
	run.Delay = 0
	run.Version = next.Seq
	run.Request = s.requestID()

	next.States = append([]State(nil), store.States...)
	next.States[run.Slot] = loading(live, run)
	return next, run, true
}

// Complete stores the result of the run with the given version. It reports
// false, leaving the store untouched, when that run has been superseded.
func Complete(store Store, version uint64, result []generator.Suggestion) (Store, bool) {
	for i, st := range store.States {
		if st.Version != version || !st.Loading {
			continue
		}

		next := Store{Argument: store.Argument, Seq: store.Seq, Slots: store.Slots}
		next.States = append([]State(nil), store.States...)
		st.Loading = false
		st.Request = ""
		st.Result = result
		next.States[i] = st
		return next, true
	}
	return store, false
}

// Flatten concatenates slot results in slot order for display
func Flatten(states []State) []generator.Suggestion {
	var out []generator.Suggestion
	for _, st := range states {
		out = append(out, st.Result...)
	}
	return out
}

// Loading reports whether any slot has a run outstanding
func Loading(states []State) bool {
	for _, st := range states {
		if st.Loading {
			return true
		}
	}
	return false
}

// slot returns the previous state for position i if it still belongs to g
func slot(prev Store, i int, g *generator.Descriptor, argumentChanged bool) (State, bool) {
	if argumentChanged || i >= len(prev.States) || prev.States[i].Generator != g {
		return State{}, false
	}
	return prev.States[i], true
}

// loading builds the state of a slot whose run has just started; the previous
// result keeps being served until the run completes
func loading(previous State, run Run) State {
	result := previous.Result
	if result == nil {
		result = []generator.Suggestion{}
	}
	return State{
		Generator: run.Generator,
		Context:   run.Context,
		Result:    result,
		Loading:   true,
		Request:   run.Request,
		Version:   run.Version,
		Identity:  run.Identity,
	}
}

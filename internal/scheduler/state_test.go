package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/NikitaCOEUR/autosuggest/internal/generator"
	"github.com/NikitaCOEUR/autosuggest/internal/trigger"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequentialIDs returns deterministic request identifiers
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("req-%d", n)
	}
}

func testSettings() Settings {
	return Settings{DebounceDefault: DefaultDebounce, RequestID: sequentialIDs()}
}

func descriptor(name string, p trigger.Policy) *generator.Descriptor {
	return &generator.Descriptor{Name: name, Kind: generator.KindCustom, Trigger: p}
}

func input(arg *Argument, term string) Input {
	return Input{Argument: arg, Context: generator.Context{
		WorkingDir: "/work",
		Tokens:     []string{"git", "checkout", term},
		SearchTerm: term,
	}}
}

// settle completes every outstanding run of store with a result naming its term
func settle(t *testing.T, store Store) Store {
	t.Helper()
	for _, st := range store.States {
		if !st.Loading {
			continue
		}
		var ok bool
		store, ok = Complete(store, st.Version, []generator.Suggestion{{Name: st.Context.SearchTerm}})
		require.True(t, ok)
	}
	return store
}

// descriptors compare by identity; the function fields they hold are not comparable
var stateCmp = cmp.Options{
	cmp.Comparer(func(a, b *generator.Descriptor) bool { return a == b }),
	cmpopts.EquateEmpty(),
}

func TestNext_FirstEvaluationRunsEverySlot(t *testing.T) {
	branches := descriptor("branches", trigger.Policy{})
	tags := descriptor("tags", trigger.OnChange())
	arg := &Argument{Name: "ref", Generators: []*generator.Descriptor{branches, tags}}

	store, runs := Next(Store{}, input(arg, ""), testSettings())

	require.Len(t, runs, 2)
	require.Len(t, store.States, 2)
	for i, st := range store.States {
		assert.True(t, st.Loading)
		assert.Equal(t, uint64(i+1), st.Version)
		assert.Equal(t, fmt.Sprintf("req-%d", i+1), st.Request)
		assert.Empty(t, st.Result)
		assert.Equal(t, i, runs[i].Slot)
		assert.Zero(t, runs[i].Delay)
	}
	assert.Equal(t, uint64(2), store.Seq)
}

func TestNext_Idempotent(t *testing.T) {
	arg := &Argument{Generators: []*generator.Descriptor{
		descriptor("absent", trigger.Policy{}),
		descriptor("slash", trigger.OnSubstring("/")),
		descriptor("change", trigger.OnChange()),
	}}
	s := testSettings()

	store, _ := Next(Store{}, input(arg, "src/"), s)
	store = settle(t, store)

	again, runs := Next(store, input(arg, "src/"), s)

	assert.Empty(t, runs)
	if diff := cmp.Diff(store, again, stateCmp); diff != "" {
		t.Errorf("store changed on unchanged input (-want +got):\n%s", diff)
	}
}

func TestNext_AbsentPolicyIgnoresTermChanges(t *testing.T) {
	d := descriptor("absent", trigger.Policy{})
	arg := &Argument{Generators: []*generator.Descriptor{d}}
	s := testSettings()

	store, _ := Next(Store{}, input(arg, ""), s)
	store = settle(t, store)

	for _, term := range []string{"m", "ma", "mai", "main", ""} {
		var runs []Run
		store, runs = Next(store, input(arg, term), s)
		assert.Empty(t, runs, "term %q", term)
	}
	assert.Equal(t, "", store.States[0].Context.SearchTerm)
	assert.Equal(t, []generator.Suggestion{{Name: ""}}, store.States[0].Result)
}

func TestNext_SubstringPolicy(t *testing.T) {
	d := descriptor("paths", trigger.OnSubstring("/"))
	arg := &Argument{Generators: []*generator.Descriptor{d}}
	s := testSettings()

	store, _ := Next(Store{}, input(arg, "a/b"), s)
	store = settle(t, store)

	_, runs := Next(store, input(arg, "a/bc"), s)
	assert.Empty(t, runs)

	next, runs := Next(store, input(arg, "a/b/c"), s)
	require.Len(t, runs, 1)
	assert.True(t, next.States[0].Loading)
	assert.Equal(t, "a/b/c", runs[0].Context.SearchTerm)
	assert.Equal(t, []generator.Suggestion{{Name: "a/b"}}, next.States[0].Result, "previous result is kept while loading")
}

func TestNext_ArgumentChangeRefreshesEverything(t *testing.T) {
	d := descriptor("absent", trigger.Policy{})
	first := &Argument{Generators: []*generator.Descriptor{d}}
	second := &Argument{Generators: []*generator.Descriptor{d}}
	s := testSettings()

	store, _ := Next(Store{}, input(first, "x"), s)
	store = settle(t, store)

	next, runs := Next(store, input(second, "x"), s)

	require.Len(t, runs, 1)
	assert.Same(t, second, next.Argument)
	assert.Empty(t, next.States[0].Result, "results of another argument are not carried over")
}

func TestNext_SlotReassignedToOtherGenerator(t *testing.T) {
	a := descriptor("a", trigger.Policy{})
	b := descriptor("b", trigger.Policy{})
	arg := &Argument{Generators: []*generator.Descriptor{a}}
	s := testSettings()

	store, _ := Next(Store{}, input(arg, ""), s)
	store = settle(t, store)

	arg.Generators = []*generator.Descriptor{b}
	_, runs := Next(store, input(arg, ""), s)

	require.Len(t, runs, 1)
	assert.Same(t, b, runs[0].Generator)
}

func TestNext_NilArgument(t *testing.T) {
	store, runs := Next(Store{Seq: 4}, Input{}, testSettings())

	assert.Empty(t, runs)
	assert.Nil(t, store.States)
	assert.Equal(t, uint64(4), store.Seq)
}

func TestNext_DangerousArgument(t *testing.T) {
	arg := &Argument{IsDangerous: true, Generators: []*generator.Descriptor{descriptor("rm", trigger.Policy{})}}

	_, runs := Next(Store{}, input(arg, ""), testSettings())

	require.Len(t, runs, 1)
	assert.True(t, runs[0].Context.IsDangerous)
}

func TestNext_DebouncedDefers(t *testing.T) {
	quick := descriptor("quick", trigger.Policy{})
	quick.Debounce = 50 * time.Millisecond
	plain := descriptor("plain", trigger.Policy{})
	arg := &Argument{Debounce: true, Generators: []*generator.Descriptor{quick, plain}}
	s := testSettings()

	store, runs := Next(Store{}, input(arg, "a"), s)

	require.Len(t, runs, 2)
	assert.Equal(t, 50*time.Millisecond, runs[0].Delay)
	assert.Equal(t, DefaultDebounce, runs[1].Delay)
	for _, st := range store.States {
		assert.False(t, st.Loading)
		assert.Zero(t, st.Version)
	}
	assert.Zero(t, store.Seq, "deferred runs get a version when they fire")
}

func TestFire(t *testing.T) {
	d := descriptor("match", trigger.OnMatch("add"))
	arg := &Argument{Debounce: true, Generators: []*generator.Descriptor{d}}
	s := testSettings()

	store, runs := Next(Store{}, input(arg, ""), s)
	require.Len(t, runs, 1)
	store, started, ok := Fire(store, runs[0], s)
	require.True(t, ok, "a slot that never ran always fires")
	store = settle(t, store)
	assert.Equal(t, started.Version, store.States[0].Version)

	store, runs = Next(store, input(arg, "add"), s)
	require.Len(t, runs, 1)
	deferred := runs[0]

	// a later keystroke that would not trigger on its own
	store, runs = Next(store, input(arg, "addx"), s)
	assert.Empty(t, runs)

	fired, started, ok := Fire(store, deferred, s)
	require.True(t, ok)
	assert.Equal(t, "add", started.Context.SearchTerm, "the captured context is used")
	assert.True(t, fired.States[0].Loading)
	assert.Equal(t, []generator.Suggestion{{Name: ""}}, fired.States[0].Result)

	t.Run("argument changed", func(t *testing.T) {
		other, _ := Next(store, input(&Argument{Generators: []*generator.Descriptor{d}}, "add"), s)
		_, _, ok := Fire(other, deferred, s)
		assert.False(t, ok)
	})

	t.Run("trigger no longer holds", func(t *testing.T) {
		settled := settle(t, fired)
		_, _, ok := Fire(settled, deferred, s)
		assert.False(t, ok)
	})
}

func TestFire_SlotRebuiltAfterLeavingArgument(t *testing.T) {
	d := descriptor("absent", trigger.Policy{})
	argA := &Argument{Debounce: true, Generators: []*generator.Descriptor{d}}
	argB := &Argument{Generators: []*generator.Descriptor{descriptor("other", trigger.Policy{})}}
	s := testSettings()

	store, runs := Next(Store{}, input(argA, "x"), s)
	store, _, ok := Fire(store, runs[0], s)
	require.True(t, ok)
	store = settle(t, store)

	store, _ = Next(store, input(argA, "xy"), s)
	store, runs = Next(store, input(argA, "xyz"), s)
	require.Len(t, runs, 1)
	old := runs[0]

	store, _ = Next(store, input(argB, ""), s)
	store = settle(t, store)
	store, runs = Next(store, input(argA, ""), s)
	require.Len(t, runs, 1)
	assert.NotEqual(t, old.Identity, store.States[0].Identity)

	after, _, ok := Fire(store, old, s)
	assert.False(t, ok, "a timer from the previous visit must not start on the rebuilt slot")
	if diff := cmp.Diff(store, after, stateCmp); diff != "" {
		t.Errorf("rejected run modified the store (-want +got):\n%s", diff)
	}

	_, started, ok := Fire(store, runs[0], s)
	require.True(t, ok)
	assert.Equal(t, "", started.Context.SearchTerm)
}

func TestNext_CarriedSlotKeepsIdentity(t *testing.T) {
	d := descriptor("change", trigger.OnChange())
	arg := &Argument{Generators: []*generator.Descriptor{d}}
	s := testSettings()

	store, _ := Next(Store{}, input(arg, "a"), s)
	first := store.States[0].Identity
	require.NotZero(t, first)

	store, _ = Next(settle(t, store), input(arg, "ab"), s)
	assert.Equal(t, first, store.States[0].Identity)
	assert.Equal(t, uint64(1), store.Slots)
}

func TestFire_WhileLoadingSupersedes(t *testing.T) {
	d := descriptor("absent", trigger.Policy{})
	arg := &Argument{Debounce: true, Generators: []*generator.Descriptor{d}}
	s := testSettings()

	store, runs := Next(Store{}, input(arg, "a"), s)
	store, first, ok := Fire(store, runs[0], s)
	require.True(t, ok)

	store, runs = Next(store, input(arg, "ab"), s)
	store, second, ok := Fire(store, runs[0], s)
	require.True(t, ok)
	assert.Greater(t, second.Version, first.Version)

	_, ok = Complete(store, first.Version, []generator.Suggestion{{Name: "a"}})
	assert.False(t, ok, "the superseded request is discarded")

	store, ok = Complete(store, second.Version, []generator.Suggestion{{Name: "ab"}})
	require.True(t, ok)
	assert.Equal(t, "ab", store.States[0].Result[0].Name)
}

func TestComplete_StaleResultDiscarded(t *testing.T) {
	d := descriptor("change", trigger.OnChange())
	arg := &Argument{Generators: []*generator.Descriptor{d}}
	s := testSettings()

	store, _ := Next(Store{}, input(arg, ""), s)
	store = settle(t, store)

	store, runs := Next(store, input(arg, "a"), s)
	older := runs[0]
	store, runs = Next(store, input(arg, "ab"), s)
	newer := runs[0]

	store, ok := Complete(store, newer.Version, []generator.Suggestion{{Name: "ab"}})
	require.True(t, ok)

	after, ok := Complete(store, older.Version, []generator.Suggestion{{Name: "a"}})
	assert.False(t, ok)
	if diff := cmp.Diff(store, after, stateCmp); diff != "" {
		t.Errorf("stale completion modified the store (-want +got):\n%s", diff)
	}
	assert.False(t, after.States[0].Loading)
	assert.Empty(t, after.States[0].Request)
}

func TestFlatten(t *testing.T) {
	states := []State{
		{Result: []generator.Suggestion{{Name: "a"}, {Name: "b"}}},
		{Result: nil, Loading: true},
		{Result: []generator.Suggestion{{Name: "c"}}},
	}

	got := Flatten(states)

	assert.Equal(t, []generator.Suggestion{{Name: "a"}, {Name: "b"}, {Name: "c"}}, got)
	assert.True(t, Loading(states))
	assert.False(t, Loading(states[:1]))
}

package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/NikitaCOEUR/autosuggest/internal/generator"
	"github.com/NikitaCOEUR/autosuggest/internal/logger"
	"github.com/NikitaCOEUR/autosuggest/internal/trace"
)

// Runner executes one generator. Implementations must not fail: errors
// resolve to an empty list. *generator.Executor satisfies it.
type Runner interface {
	Run(ctx context.Context, d *generator.Descriptor, gctx generator.Context) []generator.Suggestion
}

// RunnerFunc adapts a function to Runner
type RunnerFunc func(ctx context.Context, d *generator.Descriptor, gctx generator.Context) []generator.Suggestion

// Run calls f
func (f RunnerFunc) Run(ctx context.Context, d *generator.Descriptor, gctx generator.Context) []generator.Suggestion {
	return f(ctx, d, gctx)
}

// Options configures a Scheduler
type Options struct {
	Runner Runner
	Logger *logger.Logger
	// DebounceDefault applies to debounced generators without their own delay
	DebounceDefault time.Duration
	// OnChange receives a snapshot after every store replacement. It is
	// called without locks held, possibly from several goroutines.
	OnChange func([]State)
	// RequestID overrides request identifier generation
	RequestID func() string
}

// Scheduler owns the live store for the argument being completed
type Scheduler struct {
	mu       sync.Mutex
	store    Store
	settings Settings
	runner   Runner
	log      *logger.Logger
	onChange func([]State)

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	timers  map[*time.Timer]struct{}
	changed chan struct{}
	closed  bool
}

// New creates a scheduler
func New(opts Options) *Scheduler {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.DebounceDefault <= 0 {
		opts.DebounceDefault = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		settings: Settings{DebounceDefault: opts.DebounceDefault, RequestID: opts.RequestID},
		runner:   opts.Runner,
		log:      opts.Logger.WithComponent("scheduler"),
		onChange: opts.OnChange,
		ctx:      ctx,
		cancel:   cancel,
		timers:   make(map[*time.Timer]struct{}),
		changed:  make(chan struct{}),
	}
}

// Update evaluates a new parser input: generators whose trigger fires are
// started or deferred, the others keep serving their last result.
func (s *Scheduler) Update(in Input) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	next, runs := Next(s.store, in, s.settings)
	s.store = next
	for _, run := range runs {
		if run.Delay > 0 {
			s.deferLocked(run)
		} else {
			s.startLocked(run)
		}
	}
	snapshot := s.store.States
	s.broadcastLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

// States returns the current snapshot
func (s *Scheduler) States() []State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.States
}

// Suggestions flattens the current snapshot
func (s *Scheduler) Suggestions() []generator.Suggestion {
	return Flatten(s.States())
}

// Wait blocks until no run is outstanding and no deferred run is pending
func (s *Scheduler) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.closed || (len(s.timers) == 0 && !Loading(s.store.States)) {
			s.mu.Unlock()
			return nil
		}
		changed := s.changed
		s.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops deferred runs, cancels outstanding ones and waits for them
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for t := range s.timers {
		if t.Stop() {
			s.wg.Done()
		}
		delete(s.timers, t)
	}
	s.cancel()
	s.broadcastLocked()
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Scheduler) startLocked(run Run) {
	s.log.Debug().
		Str("generator", run.Generator.Label()).
		Int("slot", run.Slot).
		Uint64("version", run.Version).
		Str("request", run.Request).
		Str("term", run.Context.SearchTerm).
		Msg("Starting generator")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		result := s.runner.Run(s.ctx, run.Generator, run.Context)
		s.complete(run, attribute(result, run.Generator))
	}()
}

func (s *Scheduler) deferLocked(run Run) {
	s.log.Debug().
		Str("generator", run.Generator.Label()).
		Int("slot", run.Slot).
		Dur("delay", run.Delay).
		Str("term", run.Context.SearchTerm).
		Msg("Deferring generator")

	s.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(run.Delay, func() { s.fire(&t, run) })
	s.timers[t] = struct{}{}
}

// fire reads the timer only under the lock, after deferLocked has stored it
func (s *Scheduler) fire(t **time.Timer, run Run) {
	defer s.wg.Done()

	s.mu.Lock()
	delete(s.timers, *t)
	if s.closed {
		s.mu.Unlock()
		return
	}

	next, started, ok := Fire(s.store, run, s.settings)
	if !ok {
		s.log.Debug().
			Str("generator", run.Generator.Label()).
			Int("slot", run.Slot).
			Str("term", run.Context.SearchTerm).
			Msg("Dropping deferred generator, no longer relevant")
		s.broadcastLocked()
		s.mu.Unlock()
		return
	}

	s.store = next
	s.startLocked(started)
	snapshot := s.store.States
	s.broadcastLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *Scheduler) complete(run Run, result []generator.Suggestion) {
	s.mu.Lock()
	next, ok := Complete(s.store, run.Version, result)
	if !ok {
		s.mu.Unlock()
		s.log.Debug().
			Str("generator", run.Generator.Label()).
			Int("slot", run.Slot).
			Uint64("version", run.Version).
			Str("request", run.Request).
			Msg("Discarding stale generator result")
		trace.Log(s.ctx, "scheduler", "stale result from "+run.Generator.Label())
		return
	}

	s.store = next
	snapshot := s.store.States
	s.broadcastLocked()
	s.mu.Unlock()

	s.log.Debug().
		Str("generator", run.Generator.Label()).
		Int("slot", run.Slot).
		Uint64("version", run.Version).
		Int("suggestions", len(result)).
		Msg("Generator result stored")
	s.notify(snapshot)
}

// broadcastLocked wakes Wait callers
func (s *Scheduler) broadcastLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Scheduler) notify(states []State) {
	if s.onChange != nil {
		s.onChange(states)
	}
}

// attribute makes sure every suggestion points back at its generator.
// *generator.Executor already does this; it covers other Runner implementations.
func attribute(in []generator.Suggestion, d *generator.Descriptor) []generator.Suggestion {
	out := make([]generator.Suggestion, len(in))
	for i, sg := range in {
		sg.Generator = d
		out[i] = sg
	}
	return out
}

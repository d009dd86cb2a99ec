package generator

import (
	"context"
	"fmt"
	"text/template"
	"time"

	"github.com/NikitaCOEUR/autosuggest/internal/cache"
	"github.com/NikitaCOEUR/autosuggest/internal/derrors"
	"github.com/NikitaCOEUR/autosuggest/internal/logger"
	"github.com/NikitaCOEUR/autosuggest/internal/timing"
	"github.com/NikitaCOEUR/autosuggest/internal/trace"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultScriptTimeout bounds script generators when no setting overrides it
	DefaultScriptTimeout = 5000 * time.Millisecond
	// MaxOutputSize is the maximum size of script output kept (1MB)
	MaxOutputSize = 1024 * 1024
)

// CommandRunner runs argv in dir with env and returns its stdout
type CommandRunner func(ctx context.Context, dir string, env []string, argv []string) ([]byte, error)

// Options configures an Executor
type Options struct {
	// ScriptTimeout applies to every script generator; <= 0 means DefaultScriptTimeout
	ScriptTimeout time.Duration
	// Registry receives the executor's caches; a private registry is used when nil
	Registry *cache.Registry
	Logger   *logger.Logger
	// Runner replaces process execution, mainly for tests
	Runner CommandRunner
}

// Executor runs generator descriptors of any kind
type Executor struct {
	timeout   time.Duration
	log       *logger.Logger
	run       CommandRunner
	scripts   *cache.Cache[string, string]
	templates *cache.Cache[string, *template.Template]
	flight    singleflight.Group
}

// NewExecutor creates an executor
func NewExecutor(opts Options) *Executor {
	if opts.ScriptTimeout <= 0 {
		opts.ScriptTimeout = DefaultScriptTimeout
	}
	if opts.Registry == nil {
		opts.Registry = cache.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Runner == nil {
		opts.Runner = execCommand
	}

	return &Executor{
		timeout:   opts.ScriptTimeout,
		log:       opts.Logger.WithComponent("executor"),
		run:       opts.Runner,
		scripts:   cache.Create[string, string](opts.Registry, "script-output"),
		templates: cache.Create[string, *template.Template](opts.Registry, "templates"),
	}
}

// ScriptTimeout returns the timeout applied to script generators
func (e *Executor) ScriptTimeout() time.Duration {
	return e.timeout
}

// Run executes d against gctx. It never fails: any error, timeout or panic
// yields an empty list. Every returned suggestion points back at d.
func (e *Executor) Run(ctx context.Context, d *Descriptor, gctx Context) []Suggestion {
	timer := timing.NewTimer()

	var (
		out []Suggestion
		err error
	)
	trace.WithRegion(ctx, "generator."+d.Kind.String(), func() {
		out, err = e.dispatch(ctx, d, gctx)
	})
	timer.Mark("run")

	if err != nil {
		e.log.Debug().
			Str("generator", d.Label()).
			Str("kind", d.Kind.String()).
			Str("code", derrors.CodeOf(err)).
			Err(err).
			Dur("took", timer.Elapsed()).
			Msg("Generator failed, returning no suggestions")
		return []Suggestion{}
	}

	e.log.Debug().
		Str("generator", d.Label()).
		Str("kind", d.Kind.String()).
		Int("suggestions", len(out)).
		Dur("took", timer.Elapsed()).
		Msg("Generator finished")

	return attribute(out, d)
}

func (e *Executor) dispatch(ctx context.Context, d *Descriptor, gctx Context) (out []Suggestion, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = derrors.NewGeneratorError(d.Label(), "generator panicked", fmt.Errorf("%v", r))
		}
	}()

	switch d.Kind {
	case KindTemplate:
		return e.runTemplate(d, gctx)
	case KindScript:
		return e.runScript(ctx, d, gctx)
	case KindCustom:
		return runCustom(ctx, d, gctx)
	default:
		return nil, derrors.NewGeneratorError(d.Label(), fmt.Sprintf("unknown generator kind %d", int(d.Kind)), nil)
	}
}

// attribute copies suggestions and sets their back-reference to d
func attribute(in []Suggestion, d *Descriptor) []Suggestion {
	out := make([]Suggestion, len(in))
	for i, s := range in {
		s.Generator = d
		out[i] = s
	}
	return out
}

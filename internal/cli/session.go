package cli

import (
	"fmt"
	"time"

	"github.com/NikitaCOEUR/autosuggest/internal/cache"
	"github.com/NikitaCOEUR/autosuggest/internal/config"
	"github.com/NikitaCOEUR/autosuggest/internal/derrors"
	"github.com/NikitaCOEUR/autosuggest/internal/generator"
	"github.com/NikitaCOEUR/autosuggest/internal/logger"
	"github.com/NikitaCOEUR/autosuggest/internal/resolve"
	"github.com/NikitaCOEUR/autosuggest/internal/scheduler"
	"github.com/NikitaCOEUR/autosuggest/internal/shellstate"
)

// SessionParams locates the settings and completion spec of a session
type SessionParams struct {
	LogLevel     string
	SettingsPath string
	SpecPath     string
	// ScriptTimeout overrides the settings file when > 0
	ScriptTimeout time.Duration
	// Provider replaces the OS shell state, mainly for tests
	Provider shellstate.Provider
}

// session holds initialized autosuggest components
type session struct {
	settings *config.Settings
	log      *logger.Logger
	registry *cache.Registry
	executor *generator.Executor
	catalog  *resolve.Catalog
	tracker  *shellstate.Tracker
}

// openSession loads settings and the completion spec and wires the components
func openSession(params SessionParams) (*session, error) {
	settings := config.DefaultSettings()
	settingsPath := params.SettingsPath
	if settingsPath == "" {
		settingsPath = config.FindSettings()
	}
	if settingsPath != "" {
		loaded, err := config.LoadSettings(settingsPath)
		if err != nil {
			return nil, err
		}
		settings = loaded
	}

	if params.LogLevel != "" {
		settings.LogLevel = params.LogLevel
	}
	if params.ScriptTimeout > 0 {
		settings.ScriptTimeoutMs = int(params.ScriptTimeout / time.Millisecond)
	}
	log := logger.New(settings.LogLevel, nil)

	specPath := params.SpecPath
	if specPath == "" {
		specPath = settings.Spec
	}
	if specPath == "" {
		specPath = config.FindSpec()
	}
	if specPath == "" {
		dir, _ := config.ConfigDir()
		return nil, derrors.NewNotFoundError("completion spec",
			fmt.Sprintf("no completion spec given and none found in %s", dir))
	}

	spec, err := config.LoadSpec(specPath)
	if err != nil {
		return nil, err
	}
	catalog, err := spec.Compile()
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("spec", specPath).
		Strs("commands", catalog.Names()).
		Dur("script_timeout", settings.ScriptTimeout()).
		Msg("Session opened")

	provider := params.Provider
	if provider == nil {
		provider = shellstate.OS{}
	}

	registry := cache.NewRegistry()
	return &session{
		settings: settings,
		log:      log,
		registry: registry,
		executor: generator.NewExecutor(generator.Options{
			ScriptTimeout: settings.ScriptTimeout(),
			Registry:      registry,
			Logger:        log,
		}),
		catalog: catalog,
		tracker: shellstate.NewTracker(provider, registry, log),
	}, nil
}

// scheduler creates a scheduler running this session's generators
func (s *session) scheduler(onChange func([]scheduler.State)) *scheduler.Scheduler {
	return scheduler.New(scheduler.Options{
		Runner:          s.executor,
		Logger:          s.log,
		DebounceDefault: s.settings.DebounceDefault(),
		OnChange:        onChange,
	})
}

// input resolves a command line against the current shell state
func (s *session) input(line string) (scheduler.Input, resolve.Result, shellstate.State) {
	state := s.tracker.Observe()
	res := s.catalog.Resolve(line)
	return res.Input(state.Context()), res, state
}

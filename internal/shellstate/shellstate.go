// Package shellstate provides the working directory, process name and
// environment that generators run against, and resets caches when the
// session moves to another directory.
package shellstate

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/NikitaCOEUR/autosuggest/internal/cache"
	"github.com/NikitaCOEUR/autosuggest/internal/generator"
	"github.com/NikitaCOEUR/autosuggest/internal/logger"
)

// State is a snapshot of the shell session
type State struct {
	WorkingDir  string
	ProcessName string
	Env         map[string]string
}

// Context folds the snapshot into a generator context
func (s State) Context() generator.Context {
	return generator.Context{
		WorkingDir:  s.WorkingDir,
		ProcessName: s.ProcessName,
		Env:         s.Env,
	}
}

// Provider returns the current shell state
type Provider interface {
	Snapshot() State
}

// OS reads the state of the current process
type OS struct{}

// Snapshot implements Provider
func (OS) Snapshot() State {
	wd, err := os.Getwd()
	if err != nil {
		wd = os.Getenv("PWD")
	}
	return State{
		WorkingDir:  wd,
		ProcessName: ProcessName(os.Getenv("SHELL")),
		Env:         Environ(os.Environ()),
	}
}

// Static always returns the same state
type Static State

// Snapshot implements Provider
func (s Static) Snapshot() State {
	return State(s)
}

// ProcessName returns the base name of a shell path ("/bin/zsh" -> "zsh")
func ProcessName(shell string) string {
	if shell == "" {
		return "sh"
	}
	return strings.TrimPrefix(filepath.Base(shell), "-")
}

// Environ turns KEY=VALUE pairs into a map; later pairs win
func Environ(pairs []string) map[string]string {
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}

// LeftDirectory reports whether moving from previous to current leaves the
// previous directory tree. Moving into a subdirectory does not.
func LeftDirectory(previous, current string) bool {
	if previous == "" || previous == current {
		return false
	}

	rel, err := filepath.Rel(previous, current)
	if err != nil {
		return true
	}
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Tracker observes the shell state and clears every registered cache when
// the session leaves the directory it was in
type Tracker struct {
	mu       sync.Mutex
	provider Provider
	registry *cache.Registry
	log      *logger.Logger
	last     string
}

// NewTracker creates a tracker
func NewTracker(provider Provider, registry *cache.Registry, log *logger.Logger) *Tracker {
	if log == nil {
		log = logger.Nop()
	}
	return &Tracker{provider: provider, registry: registry, log: log.WithComponent("shellstate")}
}

// Observe takes a snapshot, resetting caches on a directory change
func (t *Tracker) Observe() State {
	state := t.provider.Snapshot()

	t.mu.Lock()
	defer t.mu.Unlock()

	if LeftDirectory(t.last, state.WorkingDir) {
		t.log.Debug().
			Str("from", t.last).
			Str("to", state.WorkingDir).
			Int("caches", t.registry.Len()).
			Msg("Directory changed, resetting caches")
		t.registry.ResetAll()
	}
	t.last = state.WorkingDir
	return state
}

package shellstate

import (
	"sync"
	"testing"

	"github.com/NikitaCOEUR/autosuggest/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessName(t *testing.T) {
	assert.Equal(t, "zsh", ProcessName("/bin/zsh"))
	assert.Equal(t, "bash", ProcessName("-bash"))
	assert.Equal(t, "fish", ProcessName("/usr/local/bin/fish"))
	assert.Equal(t, "sh", ProcessName(""))
}

func TestEnviron(t *testing.T) {
	env := Environ([]string{"HOME=/home/me", "EMPTY=", "EQ=a=b", "broken", "=nokey", "HOME=/root"})

	assert.Equal(t, map[string]string{
		"HOME":  "/root",
		"EMPTY": "",
		"EQ":    "a=b",
	}, env)
}

func TestLeftDirectory(t *testing.T) {
	tests := []struct {
		name     string
		previous string
		current  string
		want     bool
	}{
		{name: "no previous", previous: "", current: "/a", want: false},
		{name: "same", previous: "/a", current: "/a", want: false},
		{name: "subdirectory", previous: "/a", current: "/a/b", want: false},
		{name: "dotted subdirectory", previous: "/a", current: "/a/..b", want: false},
		{name: "parent", previous: "/a/b", current: "/a", want: true},
		{name: "sibling", previous: "/a/b", current: "/a/c", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LeftDirectory(tt.previous, tt.current))
		})
	}
}

func TestState_Context(t *testing.T) {
	s := State{WorkingDir: "/w", ProcessName: "zsh", Env: map[string]string{"A": "1"}}

	gctx := s.Context()

	assert.Equal(t, "/w", gctx.WorkingDir)
	assert.Equal(t, "zsh", gctx.ProcessName)
	assert.Equal(t, "1", gctx.Env["A"])
	assert.Empty(t, gctx.SearchTerm)
}

func TestOS_Snapshot(t *testing.T) {
	t.Setenv("SHELL", "/bin/fish")
	t.Setenv("AUTOSUGGEST_TEST_VAR", "present")

	s := OS{}.Snapshot()

	assert.NotEmpty(t, s.WorkingDir)
	assert.Equal(t, "fish", s.ProcessName)
	assert.Equal(t, "present", s.Env["AUTOSUGGEST_TEST_VAR"])
}

// movingProvider returns the directories in order, then repeats the last one
type movingProvider struct {
	mu   sync.Mutex
	dirs []string
}

func (m *movingProvider) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	dir := m.dirs[0]
	if len(m.dirs) > 1 {
		m.dirs = m.dirs[1:]
	}
	return State{WorkingDir: dir}
}

func TestTracker_ResetsCachesOnDirectoryChange(t *testing.T) {
	registry := cache.NewRegistry()
	paths := cache.Create[string, []string](registry, "paths")
	provider := &movingProvider{dirs: []string{"/repo", "/repo/src", "/other"}}
	tracker := NewTracker(provider, registry, nil)

	assert.Equal(t, "/repo", tracker.Observe().WorkingDir)
	paths.Set("src/", []string{"main.go"})

	assert.Equal(t, "/repo/src", tracker.Observe().WorkingDir)
	require.Equal(t, 1, paths.Len(), "entering a subdirectory keeps caches")

	assert.Equal(t, "/other", tracker.Observe().WorkingDir)
	assert.Equal(t, 0, paths.Len())
	assert.Equal(t, 1, registry.Len())
}

func TestStatic(t *testing.T) {
	s := Static{WorkingDir: "/fixed"}
	assert.Equal(t, "/fixed", s.Snapshot().WorkingDir)
}

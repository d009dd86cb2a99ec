package generator

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NikitaCOEUR/autosuggest/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records invocations and returns canned output
type fakeRunner struct {
	mu     sync.Mutex
	calls  [][]string
	dirs   []string
	envs   [][]string
	output string
	err    error
}

func (f *fakeRunner) run(_ context.Context, dir string, env []string, argv []string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, argv)
	f.dirs = append(f.dirs, dir)
	f.envs = append(f.envs, env)
	return []byte(f.output), f.err
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestScript_DefaultSplit(t *testing.T) {
	runner := &fakeRunner{output: "main\n  develop  \n\nfeature/x\tWork in progress\n"}
	e := NewExecutor(Options{Runner: runner.run})
	d := &Descriptor{Name: "branches", Kind: KindScript, Script: []string{"git", "branch"}}

	got := e.Run(context.Background(), d, Context{WorkingDir: "/repo", Env: map[string]string{"B": "2", "A": "1"}})

	require.Len(t, got, 3)
	assert.Equal(t, "main", got[0].Name)
	assert.Equal(t, "develop", got[1].Name)
	assert.Equal(t, "feature/x", got[2].Name)
	assert.Equal(t, "Work in progress", got[2].Description)
	assert.Equal(t, "arg", got[2].Type)

	assert.Equal(t, [][]string{{"git", "branch"}}, runner.calls)
	assert.Equal(t, []string{"/repo"}, runner.dirs)
	assert.Equal(t, []string{"A=1", "B=2"}, runner.envs[0])
}

func TestScript_EmptyEnvInherits(t *testing.T) {
	runner := &fakeRunner{output: "x"}
	e := NewExecutor(Options{Runner: runner.run})
	e.Run(context.Background(), &Descriptor{Kind: KindScript, Script: []string{"ls"}}, Context{})

	require.Len(t, runner.envs, 1)
	assert.Nil(t, runner.envs[0])
}

func TestScript_SplitOn(t *testing.T) {
	runner := &fakeRunner{output: "a,b,,c"}
	e := NewExecutor(Options{Runner: runner.run})
	d := &Descriptor{Kind: KindScript, Script: []string{"list"}, SplitOn: ","}

	got := e.Run(context.Background(), d, Context{})

	names := make([]string, 0, len(got))
	for _, s := range got {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestScript_PostProcess(t *testing.T) {
	runner := &fakeRunner{output: "web:running\ndb:exited"}
	e := NewExecutor(Options{Runner: runner.run})
	d := &Descriptor{
		Kind:   KindScript,
		Script: []string{"docker", "ps"},
		PostProcess: func(output string, tokens []string) []Suggestion {
			var out []Suggestion
			for _, line := range strings.Split(output, "\n") {
				parts := strings.SplitN(line, ":", 2)
				out = append(out, Suggestion{Name: parts[0], Description: parts[1] + " via " + tokens[0]})
			}
			return out
		},
	}

	got := e.Run(context.Background(), d, Context{Tokens: []string{"docker", "stop", ""}})

	require.Len(t, got, 2)
	assert.Equal(t, "web", got[0].Name)
	assert.Equal(t, "running via docker", got[0].Description)
	assert.Same(t, d, got[1].Generator)
}

func TestScript_Placeholders(t *testing.T) {
	runner := &fakeRunner{output: "ok"}
	e := NewExecutor(Options{Runner: runner.run})
	d := &Descriptor{
		Kind:   KindScript,
		Script: []string{"kubectl", "get", "{{ index .Tokens 2 }}", "-n", `{{ .Env.NS | default "default" }}`},
	}

	e.Run(context.Background(), d, Context{Tokens: []string{"kubectl", "get", "pods", ""}})

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"kubectl", "get", "pods", "-n", "default"}, runner.calls[0])
}

func TestScript_BadPlaceholderFailsClosed(t *testing.T) {
	runner := &fakeRunner{output: "ok"}
	e := NewExecutor(Options{Runner: runner.run})
	d := &Descriptor{Kind: KindScript, Script: []string{"echo", "{{ .Tokens"}}

	assert.Empty(t, e.Run(context.Background(), d, Context{}))
	assert.Equal(t, 0, runner.count())
}

func TestScript_Timeout(t *testing.T) {
	e := NewExecutor(Options{
		ScriptTimeout: 20 * time.Millisecond,
		Runner: func(ctx context.Context, _ string, _ []string, _ []string) ([]byte, error) {
			<-ctx.Done()
			return []byte("too late"), ctx.Err()
		},
	})

	got := e.Run(context.Background(), &Descriptor{Kind: KindScript, Script: []string{"slow"}}, Context{})
	assert.Empty(t, got)
}

func TestScript_Cache(t *testing.T) {
	reg := cache.NewRegistry()
	runner := &fakeRunner{output: "v1"}
	e := NewExecutor(Options{Runner: runner.run, Registry: reg})
	d := &Descriptor{Kind: KindScript, Script: []string{"versions"}, Cache: &ScriptCache{TTL: time.Minute}}

	first := e.Run(context.Background(), d, Context{WorkingDir: "/a"})
	runner.output = "v2"
	second := e.Run(context.Background(), d, Context{WorkingDir: "/b"})

	assert.Equal(t, 1, runner.count(), "cache is shared across directories by default")
	assert.Equal(t, first, second)

	reg.ResetAll()
	third := e.Run(context.Background(), d, Context{WorkingDir: "/a"})
	assert.Equal(t, 2, runner.count())
	require.Len(t, third, 1)
	assert.Equal(t, "v2", third[0].Name)
}

func TestScript_CacheByDirectory(t *testing.T) {
	runner := &fakeRunner{output: "x"}
	e := NewExecutor(Options{Runner: runner.run})
	d := &Descriptor{Kind: KindScript, Script: []string{"ls"}, Cache: &ScriptCache{CacheByDirectory: true}}

	e.Run(context.Background(), d, Context{WorkingDir: "/a"})
	e.Run(context.Background(), d, Context{WorkingDir: "/b"})
	e.Run(context.Background(), d, Context{WorkingDir: "/a"})

	assert.Equal(t, 2, runner.count())
}

func TestScript_NoCacheRunsEveryTime(t *testing.T) {
	runner := &fakeRunner{output: "x"}
	e := NewExecutor(Options{Runner: runner.run})
	d := &Descriptor{Kind: KindScript, Script: []string{"ls"}}

	e.Run(context.Background(), d, Context{})
	e.Run(context.Background(), d, Context{})

	assert.Equal(t, 2, runner.count())
}

func TestScript_ConcurrentRunsShareProcess(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	e := NewExecutor(Options{
		Runner: func(context.Context, string, []string, []string) ([]byte, error) {
			if calls.Add(1) == 1 {
				close(started)
			}
			<-release
			return []byte("shared"), nil
		},
	})
	d := &Descriptor{Kind: KindScript, Script: []string{"slow"}}

	results := make(chan []Suggestion, 2)
	go func() { results <- e.Run(context.Background(), d, Context{}) }()
	<-started
	go func() { results <- e.Run(context.Background(), d, Context{}) }()

	time.Sleep(50 * time.Millisecond)
	close(release)

	for i := 0; i < 2; i++ {
		got := <-results
		require.Len(t, got, 1)
		assert.Equal(t, "shared", got[0].Name)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestParseLine(t *testing.T) {
	s, ok := parseLine("  checkout\tSwitch branches ")
	require.True(t, ok)
	assert.Equal(t, "checkout", s.Name)
	assert.Equal(t, "checkout", s.Insert)
	assert.Equal(t, "Switch branches", s.Description)

	_, ok = parseLine("   ")
	assert.False(t, ok)
}

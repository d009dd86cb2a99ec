package generator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/NikitaCOEUR/autosuggest/internal/derrors"
)

func (e *Executor) runScript(ctx context.Context, d *Descriptor, gctx Context) ([]Suggestion, error) {
	argv, err := e.renderScript(d.Script, gctx)
	if err != nil {
		return nil, derrors.NewGeneratorError(d.Label(), "failed to render script", err)
	}
	if len(argv) == 0 {
		return nil, derrors.NewGeneratorError(d.Label(), "script generator without command", nil)
	}

	commandLine := strings.Join(argv, " ")
	flightKey := scriptKey(argv, gctx.WorkingDir)
	cacheKey := commandLine
	if d.Cache != nil && d.Cache.CacheByDirectory {
		cacheKey = flightKey
	}

	if d.Cache != nil {
		if output, ok := e.scripts.Get(cacheKey); ok {
			e.log.Debug().Str("command", commandLine).Msg("Script output served from cache")
			return processOutput(d, output, gctx.Tokens), nil
		}
	}

	// Identical commands in flight at the same time share one process
	v, err, shared := e.flight.Do(flightKey, func() (interface{}, error) {
		runCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		output, err := e.run(runCtx, gctx.WorkingDir, envList(gctx.Env), argv)
		if err != nil {
			if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
				return nil, derrors.NewTimeoutError(commandLine, e.timeout, err)
			}
			return nil, derrors.NewExecutionError(commandLine, "script failed", err)
		}
		if len(output) > MaxOutputSize {
			output = output[:MaxOutputSize]
		}
		return string(output), nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		e.log.Debug().Str("command", commandLine).Msg("Script output shared with a concurrent run")
	}

	output := v.(string)
	if d.Cache != nil {
		e.scripts.SetWithTTL(cacheKey, output, d.Cache.TTL)
	}
	return processOutput(d, output, gctx.Tokens), nil
}

// renderScript expands {{ }} placeholders in each argv element
func (e *Executor) renderScript(script []string, gctx Context) ([]string, error) {
	argv := make([]string, 0, len(script))
	for _, arg := range script {
		if !strings.Contains(arg, "{{") {
			argv = append(argv, arg)
			continue
		}
		rendered, err := e.expand(arg, gctx)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", arg, err)
		}
		argv = append(argv, rendered)
	}
	return argv, nil
}

func scriptKey(argv []string, dir string) string {
	return dir + "\x00" + strings.Join(argv, "\x00")
}

// envList renders the context environment; nil means inherit the process environment
func envList(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	list := make([]string, 0, len(env))
	for k, v := range env {
		list = append(list, k+"="+v)
	}
	sort.Strings(list)
	return list
}

// execCommand runs argv and returns its stdout
func execCommand(ctx context.Context, dir string, env []string, argv []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	if env != nil {
		cmd.Env = env
	}
	return cmd.Output()
}

// processOutput turns script output into suggestions, via PostProcess when set
func processOutput(d *Descriptor, output string, tokens []string) []Suggestion {
	if d.PostProcess != nil {
		return d.PostProcess(output, tokens)
	}

	splitOn := d.SplitOn
	if splitOn == "" {
		splitOn = "\n"
	}

	var suggestions []Suggestion
	if splitOn == "\n" {
		scanner := bufio.NewScanner(strings.NewReader(output))
		scanner.Buffer(make([]byte, 0, 64*1024), MaxOutputSize)
		for scanner.Scan() {
			if s, ok := parseLine(scanner.Text()); ok {
				suggestions = append(suggestions, s)
			}
		}
		return suggestions
	}

	for _, item := range strings.Split(output, splitOn) {
		if s, ok := parseLine(item); ok {
			suggestions = append(suggestions, s)
		}
	}
	return suggestions
}

// parseLine parses "value" or "value<TAB>description"
func parseLine(line string) (Suggestion, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Suggestion{}, false
	}

	parts := strings.SplitN(line, "\t", 2)
	s := Suggestion{
		Name:   strings.TrimSpace(parts[0]),
		Insert: strings.TrimSpace(parts[0]),
		Type:   "arg",
	}
	if len(parts) > 1 {
		s.Description = strings.TrimSpace(parts[1])
	}
	return s, true
}

//go:build dev

// Package trace records generator runs with runtime/trace in dev builds.
//
//	AUTOSUGGEST_TRACE=trace.out autosuggest suggest 'git checkout '
//	go tool trace trace.out
package trace

import (
	"context"
	"fmt"
	"os"
	rtrace "runtime/trace"
	"sync/atomic"
)

var active atomic.Bool

// Init starts tracing into $AUTOSUGGEST_TRACE and returns the function stopping it
func Init() func() {
	path := os.Getenv("AUTOSUGGEST_TRACE")
	if path == "" || active.Load() {
		return func() {}
	}

	out, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "autosuggest: trace disabled: %v\n", err)
		return func() {}
	}
	if err := rtrace.Start(out); err != nil {
		fmt.Fprintf(os.Stderr, "autosuggest: trace disabled: %v\n", err)
		_ = out.Close()
		return func() {}
	}
	active.Store(true)

	return func() {
		if active.CompareAndSwap(true, false) {
			rtrace.Stop()
			_ = out.Close()
		}
	}
}

// Region opens a trace region and returns the function closing it
func Region(ctx context.Context, name string) func() {
	if !active.Load() {
		return func() {}
	}
	return rtrace.StartRegion(ctx, name).End
}

// Log records an event such as a discarded stale completion
func Log(ctx context.Context, category, message string) {
	if active.Load() {
		rtrace.Log(ctx, category, message)
	}
}

// WithRegion runs f inside a trace region
func WithRegion(ctx context.Context, name string, f func()) {
	defer Region(ctx, name)()
	f()
}

// IsEnabled reports whether a trace is being recorded
func IsEnabled() bool {
	return active.Load()
}

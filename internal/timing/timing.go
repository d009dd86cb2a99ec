// Package timing measures the phases of a generator run for debug logs.
package timing

import (
	"fmt"
	"strings"
	"time"
)

// Phase is a labelled checkpoint relative to the timer start
type Phase struct {
	Label string
	At    time.Duration
}

// Timer tracks execution time of a generator run
type Timer struct {
	start  time.Time
	phases []Phase
	now    func() time.Time
}

// NewTimer creates a new timer started now
func NewTimer() *Timer {
	return newTimerWithClock(time.Now)
}

func newTimerWithClock(now func() time.Time) *Timer {
	return &Timer{start: now(), now: now}
}

// Mark records a checkpoint with a label and returns the elapsed time
func (t *Timer) Mark(label string) time.Duration {
	elapsed := t.now().Sub(t.start)
	t.phases = append(t.phases, Phase{Label: label, At: elapsed})
	return elapsed
}

// Elapsed returns total elapsed time since timer creation
func (t *Timer) Elapsed() time.Duration {
	return t.now().Sub(t.start)
}

// Get returns the duration recorded for the last mark with label
func (t *Timer) Get(label string) (time.Duration, bool) {
	for i := len(t.phases) - 1; i >= 0; i-- {
		if t.phases[i].Label == label {
			return t.phases[i].At, true
		}
	}
	return 0, false
}

// Phases returns the recorded checkpoints in order
func (t *Timer) Phases() []Phase {
	out := make([]Phase, len(t.phases))
	copy(out, t.phases)
	return out
}

// Summary returns a formatted summary of all timings
func (t *Timer) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "total=%s", formatMs(t.Elapsed()))
	for _, p := range t.phases {
		fmt.Fprintf(&b, " %s=%s", p.Label, formatMs(p.At))
	}
	return b.String()
}

func formatMs(d time.Duration) string {
	return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000.0)
}

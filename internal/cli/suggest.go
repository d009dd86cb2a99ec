package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/NikitaCOEUR/autosuggest/internal/view"
)

// SuggestParams contains parameters for the Suggest command
type SuggestParams struct {
	SessionParams
	Line string
	// Wait bounds how long to wait for generators; 0 prints what is ready
	Wait time.Duration
	// Pretty renders the lipgloss view instead of tab separated lines
	Pretty bool
	Out    io.Writer
}

// Suggest evaluates one command line and prints its suggestions
func Suggest(ctx context.Context, params SuggestParams) error {
	sess, err := openSession(params.SessionParams)
	if err != nil {
		return err
	}
	out := params.Out
	if out == nil {
		out = os.Stdout
	}

	sched := sess.scheduler(nil)
	defer sched.Close()

	in, res, state := sess.input(params.Line)
	sched.Update(in)

	if params.Wait > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, params.Wait)
		defer cancel()
		if err := sched.Wait(waitCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		} else if err != nil {
			sess.log.Warn().Dur("wait", params.Wait).Msg("Generators still running, printing partial results")
		}
	}

	states := sched.States()
	if !params.Pretty {
		_, err := fmt.Fprint(out, view.Plain(states))
		return err
	}

	data := &view.Data{
		Line:           params.Line,
		WorkingDir:     state.WorkingDir,
		States:         states,
		ShowGenerators: true,
	}
	if res.Argument != nil {
		data.Argument = res.Argument.Name
		data.Dangerous = res.Argument.IsDangerous
	}
	_, err = fmt.Fprintln(out, view.Render(data))
	return err
}

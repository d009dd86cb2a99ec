package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/NikitaCOEUR/autosuggest/internal/cache"
	"github.com/olekukonko/tablewriter"
)

// CachesParams contains parameters for the caches commands
type CachesParams struct {
	SessionParams
	// Lines are evaluated first so the session caches hold something to show
	Lines []string
	Wait  time.Duration
	// Reset clears every cache before listing
	Reset bool
	Out   io.Writer
}

// Caches lists the session cache registry, optionally after resetting it
func Caches(ctx context.Context, params CachesParams) error {
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

	for _, line := range params.Lines {
		in, _, _ := sess.input(line)
		sched.Update(in)

		waitCtx, cancel := context.WithTimeout(ctx, params.Wait)
		err := sched.Wait(waitCtx)
		cancel()
		if err != nil {
			sess.log.Warn().Str("line", line).Err(err).Msg("Generators did not settle")
		}
	}

	if params.Reset {
		sess.registry.ResetAll()
		sess.log.Info().Int("caches", sess.registry.Len()).Msg("Caches reset")
	}

	renderCaches(out, sess.registry.List())
	return nil
}

func renderCaches(out io.Writer, infos []cache.Info) {
	if len(infos) == 0 {
		_, _ = fmt.Fprintln(out, "No caches registered")
		return
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Cache", "Entries", "Keys"})
	table.SetBorder(true)
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT})

	for _, info := range infos {
		table.Append([]string{info.Name, strconv.Itoa(info.Entries), previewKeys(info.Keys, 3)})
	}
	table.Render()
}

// previewKeys joins at most n keys
func previewKeys(keys []string, n int) string {
	if len(keys) <= n {
		return strings.Join(keys, ", ")
	}
	return fmt.Sprintf("%s, … (+%d)", strings.Join(keys[:n], ", "), len(keys)-n)
}

package cli

import (
	"fmt"

	"github.com/NikitaCOEUR/autosuggest/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
)

// Interactive runs the suggestion prompt until the user quits
func Interactive(params SessionParams) error {
	sess, err := openSession(params)
	if err != nil {
		return err
	}

	changes := tui.NewChanges()
	sched := sess.scheduler(changes.Notify)
	defer sched.Close()

	model := tui.New(tui.Options{
		Catalog:   sess.catalog,
		Scheduler: sched,
		Tracker:   sess.tracker,
		Registry:  sess.registry,
		Changes:   changes,
	})

	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("failed to run interactive prompt: %w", err)
	}
	return nil
}

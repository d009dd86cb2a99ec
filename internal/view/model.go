// Package view renders scheduler state for the terminal.
package view

import (
	"github.com/NikitaCOEUR/autosuggest/internal/scheduler"
)

// Data contains everything a suggestion view displays
type Data struct {
	// Header
	Line       string
	WorkingDir string

	// Argument under the cursor; empty when nothing can be suggested
	Argument  string
	Dangerous bool

	States []scheduler.State

	// Limit caps the suggestions listed; 0 lists all
	Limit int
	// ShowGenerators adds the per-generator section
	ShowGenerators bool
}

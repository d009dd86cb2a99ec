package view

import (
	"fmt"
	"strings"

	"github.com/NikitaCOEUR/autosuggest/internal/scheduler"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors and styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Render renders the suggestion data to a string
func Render(data *Data) string {
	var b strings.Builder

	b.WriteString(renderHeader(data))
	b.WriteString("\n")

	if data.ShowGenerators && len(data.States) > 0 {
		b.WriteString(renderGenerators(data.States))
		b.WriteString("\n")
	}

	b.WriteString(renderSuggestions(data))
	return b.String()
}

func renderHeader(data *Data) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("❯ ") + valueStyle.Render(data.Line))
	if data.WorkingDir != "" {
		b.WriteString("  " + subtleStyle.Render(data.WorkingDir))
	}

	if data.Argument != "" {
		b.WriteString("\n   " + keyStyle.Render("Argument: ") + valueStyle.Render(data.Argument))
		if data.Dangerous {
			b.WriteString(" " + errorStyle.Render("⚠ dangerous"))
		}
	}
	return b.String()
}

func renderGenerators(states []scheduler.State) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("⚙️  Generators:") + "\n")

	for i, st := range states {
		status := successStyle.Render("✓ idle")
		if st.Loading {
			status = warningStyle.Render("⏳ loading")
		} else if st.Version == 0 {
			status = subtleStyle.Render("… pending")
		}

		b.WriteString(fmt.Sprintf("   %d. %s %s %s %s\n",
			i+1,
			valueStyle.Render(st.Generator.Label()),
			subtleStyle.Render("("+st.Generator.Kind.String()+", "+st.Generator.Trigger.String()+")"),
			status,
			keyStyle.Render(fmt.Sprintf("%d results", len(st.Result)))))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func renderSuggestions(data *Data) string {
	var b strings.Builder
	header := "💡 Suggestions:"
	if scheduler.Loading(data.States) {
		header += " " + warningStyle.Render("(refreshing)")
	}
	b.WriteString(sectionStyle.Render(header) + "\n")

	suggestions := scheduler.Flatten(data.States)
	if len(suggestions) == 0 {
		b.WriteString("   " + subtleStyle.Render("No suggestions"))
		return b.String()
	}

	shown := suggestions
	if data.Limit > 0 && len(shown) > data.Limit {
		shown = shown[:data.Limit]
	}

	for _, s := range shown {
		line := "   " + valueStyle.Render(s.Name)
		if s.Description != "" {
			line += "  " + subtleStyle.Render(truncateString(s.Description, 60))
		}
		b.WriteString(line + "\n")
	}

	if hidden := len(suggestions) - len(shown); hidden > 0 {
		b.WriteString("   " + subtleStyle.Render(fmt.Sprintf("… %d more", hidden)) + "\n")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Plain renders suggestions one per line, for scripts and shell integration
func Plain(states []scheduler.State) string {
	var b strings.Builder
	for _, s := range scheduler.Flatten(states) {
		b.WriteString(s.Name)
		if s.Description != "" {
			b.WriteString("\t" + s.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func truncateString(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen-3] + "..."
	}
	return s
}

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// categoryColors maps the symbolic category colors to ANSI 256 codes
var categoryColors = map[string]string{
	"red":    "196",
	"orange": "208",
	"yellow": "226",
	"green":  "42",
	"blue":   "39",
	"purple": "141",
	"pink":   "205",
	"teal":   "37",
	"gray":   "245",
}

func categoryStyle(color string) lipgloss.Style {
	code, ok := categoryColors[strings.ToLower(color)]
	if !ok {
		code = categoryColors["gray"]
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(code))
}

func checkbox(done bool) string {
	if done {
		return doneStyle.Render("[x]")
	}
	return "[ ]"
}

package ui

import "github.com/charmbracelet/lipgloss"

// Styles holds the Lip Gloss styles for terminal output. Colors are hex codes
// and degrade to plain text when the writer is not a terminal.
type Styles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Comment lipgloss.Style
	Code    lipgloss.Style
}

// NewStyles binds the palette to renderer so color support is detected per
// output stream.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Success: r.NewStyle().
			Foreground(lipgloss.Color("#00ff5f")).
			Bold(true),
		Error: r.NewStyle().
			Foreground(lipgloss.Color("#ff005f")).
			Bold(true),
		Warning: r.NewStyle().
			Foreground(lipgloss.Color("#ffaf00")),
		Info: r.NewStyle().
			Foreground(lipgloss.Color("#5fd7ff")),
		Comment: r.NewStyle().
			Faint(true).
			Foreground(lipgloss.Color("#a8a8a8")),
		Code: r.NewStyle().
			Foreground(lipgloss.Color("#ffffff")),
	}
}

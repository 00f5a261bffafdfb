package render

import "github.com/charmbracelet/lipgloss"

// Theme carries every style the renderer uses. It is passed explicitly to the
// projection and the live driver; there is no process-global styled sink.
type Theme struct {
	Header  lipgloss.Style // section headers and tool labels
	Info    lipgloss.Style // in-progress plan steps, spinner
	Success lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Tool    lipgloss.Style // pending/in-progress tool marker
	Thought lipgloss.Style
	Branch  lipgloss.Style // indent/branch glyphs
}

// DefaultTheme mirrors the palette the session UI shipped with.
func DefaultTheme() Theme {
	return Theme{
		Header:  lipgloss.NewStyle().Bold(true),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Muted:   lipgloss.NewStyle().Faint(true),
		Tool:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Faint(true),
		Thought: lipgloss.NewStyle().Faint(true).Italic(true),
		Branch:  lipgloss.NewStyle().Faint(true),
	}
}

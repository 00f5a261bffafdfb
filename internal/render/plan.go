package render

import (
	"strings"

	"factotum-cli/internal/events"

	"github.com/charmbracelet/lipgloss"
)

// RenderPlanPanel renders the current plan snapshot as a header plus an
// indented step list. Returns nil when the plan is empty.
func RenderPlanPanel(theme Theme, entries []events.PlanEntry, width int) []Line {
	if len(entries) == 0 {
		return nil
	}
	if width <= 0 {
		width = 80
	}

	lines := []Line{{Spans: []Span{
		{Text: "• ", Style: theme.Branch},
		{Text: "Plan", Style: theme.Header},
	}}}

	indented := make([]Line, 0, len(entries))
	for _, entry := range entries {
		indented = append(indented, renderPlanStep(theme, entry, width)...)
	}
	indented = PrefixLines(
		indented,
		Span{Text: "  └ ", Style: theme.Branch},
		Span{Text: "    ", Style: lipgloss.Style{}},
	)
	return append(lines, indented...)
}

func renderPlanStep(theme Theme, entry events.PlanEntry, width int) []Line {
	// Unrecognized statuses fall back to the pending visual.
	icon := "○ "
	style := theme.Muted
	switch strings.TrimSpace(entry.Status) {
	case "in_progress":
		icon = "→ "
		style = theme.Info
	case "completed":
		icon = "✓ "
		style = theme.Success
	}

	wrapWidth := width - 4 - len(icon)
	if wrapWidth < 1 {
		wrapWidth = 1
	}
	parts := wrapText(strings.TrimSpace(entry.Content), wrapWidth)
	stepLines := make([]Line, 0, len(parts))
	for _, p := range parts {
		stepLines = append(stepLines, TextLine(p, style))
	}
	return PrefixLines(
		stepLines,
		Span{Text: icon, Style: style},
		Span{Text: "  ", Style: lipgloss.Style{}},
	)
}

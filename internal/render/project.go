package render

import (
	"strings"

	"factotum-cli/internal/timeline"

	"github.com/charmbracelet/lipgloss"
)

// ProjectTranscript projects a timeline snapshot into styled lines: the plan
// panel first, then the ordered entries with a blank separator wherever
// consecutive entries change type, then the still-open text accumulation.
// It is a pure function of its inputs; projecting the same snapshot twice
// yields identical lines.
func ProjectTranscript(theme Theme, snap timeline.Snapshot, width int) []Line {
	if width <= 0 {
		width = 80
	}
	var out []Line

	if plan := RenderPlanPanel(theme, snap.Plan, width); len(plan) > 0 {
		out = append(out, plan...)
		out = append(out, BlankLine())
	}

	prev := timeline.EntryType("")
	for _, entry := range snap.Entries {
		var lines []Line
		switch entry.Type {
		case timeline.EntryText:
			lines = renderTextBlock(entry.Text, width)
		case timeline.EntryTool:
			rec, ok := snap.Tools[entry.ToolID]
			if !ok {
				continue
			}
			lines = RenderToolLine(theme, rec)
		}
		if len(lines) == 0 {
			// Filtered planning tools leave no trace, not even spacing.
			continue
		}
		if prev != "" && prev != entry.Type {
			out = append(out, BlankLine())
		}
		out = append(out, lines...)
		prev = entry.Type
	}

	if strings.TrimSpace(snap.OpenText) != "" {
		if prev == timeline.EntryTool {
			out = append(out, BlankLine())
		}
		out = append(out, renderTextBlock(snap.OpenText, width)...)
	}
	return out
}

// ProjectThoughts renders the buffered internal reasoning as a clearly
// delineated block, shown only after the live phase ends. Returns nil when
// the buffer is blank.
func ProjectThoughts(theme Theme, snap timeline.Snapshot, width int) []Line {
	text := strings.TrimSpace(snap.Thoughts)
	if text == "" {
		return nil
	}
	if width <= 0 {
		width = 80
	}

	lines := []Line{{Spans: []Span{
		{Text: "• ", Style: theme.Branch},
		{Text: "Reasoning", Style: theme.Muted},
	}}}
	wrapWidth := width - 4
	if wrapWidth < 1 {
		wrapWidth = 1
	}
	body := make([]Line, 0, 8)
	for _, part := range wrapText(text, wrapWidth) {
		body = append(body, TextLine(part, theme.Thought))
	}
	body = PrefixLines(
		body,
		Span{Text: "  └ ", Style: theme.Branch},
		Span{Text: "    ", Style: lipgloss.Style{}},
	)
	return append(lines, body...)
}

func renderTextBlock(text string, width int) []Line {
	text = strings.TrimRight(text, "\n")
	parts := wrapText(text, width)
	lines := make([]Line, 0, len(parts))
	for _, p := range parts {
		lines = append(lines, TextLine(p, lipgloss.Style{}))
	}
	return lines
}

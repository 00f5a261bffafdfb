package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Span is a run of text with one style.
type Span struct {
	Text  string
	Style lipgloss.Style
}

// Line is a single terminal row composed of spans.
type Line struct {
	Spans []Span
}

// TextLine builds a single-span line.
func TextLine(text string, style lipgloss.Style) Line {
	return Line{Spans: []Span{{Text: text, Style: style}}}
}

// BlankLine is the visual separator between entry types.
func BlankLine() Line {
	return Line{}
}

// LinesToStrings renders styled lines into ANSI strings.
func LinesToStrings(lines []Line) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		segments := make([]string, 0, len(line.Spans))
		for _, sp := range line.Spans {
			segments = append(segments, sp.Style.Render(sp.Text))
		}
		out = append(out, strings.Join(segments, ""))
	}
	return out
}

// LinesToPlainStrings drops styling, for tests and logs.
func LinesToPlainStrings(lines []Line) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		var sb strings.Builder
		for _, sp := range line.Spans {
			sb.WriteString(sp.Text)
		}
		out = append(out, sb.String())
	}
	return out
}

// PrefixLines prepends a span to the first line and a continuation span to
// the rest.
func PrefixLines(lines []Line, initial Span, subsequent Span) []Line {
	out := make([]Line, 0, len(lines))
	for i, l := range lines {
		spans := make([]Span, 0, len(l.Spans)+1)
		if i == 0 {
			spans = append(spans, initial)
		} else {
			spans = append(spans, subsequent)
		}
		spans = append(spans, l.Spans...)
		out = append(out, Line{Spans: spans})
	}
	return out
}

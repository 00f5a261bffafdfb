package render

import (
	"fmt"
	"strings"

	"factotum-cli/internal/events"
	"factotum-cli/internal/timeline"

	"github.com/charmbracelet/lipgloss"
)

// kindLabels maps tool kinds to their display labels.
var kindLabels = map[events.ToolKind]string{
	events.ToolRead:       "Read",
	events.ToolEdit:       "Write",
	events.ToolExecute:    "Bash",
	events.ToolFetch:      "Fetch",
	events.ToolSearch:     "Search",
	events.ToolThink:      "Task",
	events.ToolSwitchMode: "Mode",
}

// kindFields lists, per kind, the rawInput fields to probe for display
// content, in precedence order. First present field wins.
var kindFields = map[events.ToolKind][]string{
	events.ToolFetch:   {"url", "query"},
	events.ToolSearch:  {"query", "pattern", "path", "command"},
	events.ToolEdit:    {"file_path", "path"},
	events.ToolRead:    {"file_path", "absolute_path", "path"},
	events.ToolExecute: {"command"},
	events.ToolOther:   {"command", "query", "file_path", "path", "instruction"},
}

// IsPlanTool reports whether a tool is internal planning bookkeeping. Those
// calls are excluded from the transcript; the plan panel is the sole
// rendering of planning state.
func IsPlanTool(title string) bool {
	switch title {
	case "write_todos", "TodoWrite":
		return true
	}
	return strings.Contains(strings.ToLower(title), "todo")
}

// ToolLabel returns the display label for a kind, or false when the tool's
// own title should serve as the label.
func ToolLabel(kind events.ToolKind) (string, bool) {
	label, ok := kindLabels[kind]
	return label, ok
}

// ToolContent extracts the most meaningful display content from a record's
// rawInput, falling back to the title and finally to the id so the line is
// never blank.
func ToolContent(rec timeline.ToolRecord) string {
	fields, ok := kindFields[rec.Kind]
	if !ok {
		fields = kindFields[events.ToolOther]
	}
	for _, field := range fields {
		if val, present := rec.RawInput[field]; present {
			if s := strings.TrimSpace(fmt.Sprint(val)); s != "" && val != nil {
				return s
			}
		}
	}
	if strings.TrimSpace(rec.Title) != "" {
		return rec.Title
	}
	return rec.ID
}

// statusMarkerStyle is total over arbitrary status strings.
func statusMarkerStyle(theme Theme, status events.ToolStatus) lipgloss.Style {
	switch status {
	case events.StatusPending, events.StatusInProgress:
		return theme.Tool
	case events.StatusCompleted:
		return theme.Success
	case events.StatusFailed:
		return theme.Error
	default:
		return theme.Muted
	}
}

// RenderToolLine renders one tool call as a marker plus Label(content).
// Returns nil for filtered planning tools.
func RenderToolLine(theme Theme, rec timeline.ToolRecord) []Line {
	if IsPlanTool(rec.Title) {
		return nil
	}

	content := strings.Trim(ToolContent(rec), "`")
	label, known := ToolLabel(rec.Kind)
	if !known {
		label = strings.TrimSpace(rec.Title)
		if label == "" {
			label = rec.ID
		}
	} else if prefix := label + " "; len(content) > len(prefix) &&
		strings.EqualFold(content[:len(prefix)], prefix) {
		// Drop a redundant leading repetition of the label, e.g. a read
		// titled "Read /path" under the "Read" label.
		content = content[len(prefix):]
	}

	return []Line{{Spans: []Span{
		{Text: "● ", Style: statusMarkerStyle(theme, rec.Status)},
		{Text: label + "(", Style: theme.Header},
		{Text: content, Style: theme.Muted},
		{Text: ")", Style: theme.Header},
	}}}
}

package render

import (
	"strings"
	"testing"

	"factotum-cli/internal/events"
	"factotum-cli/internal/timeline"
)

func toolRecord(kind events.ToolKind, title string, raw map[string]any) timeline.ToolRecord {
	return timeline.ToolRecord{
		ID:       "call-1",
		Title:    title,
		Kind:     kind,
		Status:   events.StatusPending,
		RawInput: raw,
	}
}

func renderedToolText(t *testing.T, rec timeline.ToolRecord) string {
	t.Helper()
	lines := RenderToolLine(DefaultTheme(), rec)
	if len(lines) == 0 {
		t.Fatalf("expected a rendered line for %#v", rec)
	}
	return strings.Join(LinesToPlainStrings(lines), "\n")
}

func TestToolContent_KindPrecedence(t *testing.T) {
	cases := []struct {
		name string
		rec  timeline.ToolRecord
		want string
	}{
		{
			name: "execute command",
			rec:  toolRecord(events.ToolExecute, "shell", map[string]any{"command": "ls -la"}),
			want: "ls -la",
		},
		{
			name: "fetch url over query",
			rec:  toolRecord(events.ToolFetch, "web", map[string]any{"query": "x", "url": "http://x"}),
			want: "http://x",
		},
		{
			name: "search falls through to pattern",
			rec:  toolRecord(events.ToolSearch, "grep", map[string]any{"pattern": "func main"}),
			want: "func main",
		},
		{
			name: "read prefers file_path",
			rec:  toolRecord(events.ToolRead, "read", map[string]any{"path": "b.go", "file_path": "a.go"}),
			want: "a.go",
		},
		{
			name: "unknown kind probes common fields",
			rec:  toolRecord(events.ToolOther, "mcp_tool", map[string]any{"instruction": "do the thing"}),
			want: "do the thing",
		},
		{
			name: "missing fields fall back to title",
			rec:  toolRecord(events.ToolExecute, "run_script", nil),
			want: "run_script",
		},
		{
			name: "empty title falls back to id",
			rec:  toolRecord(events.ToolOther, "", nil),
			want: "call-1",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ToolContent(tc.rec); got != tc.want {
				t.Fatalf("ToolContent() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRenderToolLine_LabelAndContent(t *testing.T) {
	got := renderedToolText(t, toolRecord(events.ToolExecute, "shell", map[string]any{"command": "ls -la"}))
	if !strings.Contains(got, "Bash(ls -la)") {
		t.Fatalf("expected Bash(ls -la), got %q", got)
	}

	got = renderedToolText(t, toolRecord(events.ToolFetch, "web", map[string]any{"url": "http://x"}))
	if !strings.Contains(got, "Fetch(http://x)") {
		t.Fatalf("expected Fetch(http://x), got %q", got)
	}
}

func TestRenderToolLine_StripsBackticksAndRedundantLabel(t *testing.T) {
	got := renderedToolText(t, toolRecord(events.ToolRead, "read", map[string]any{"file_path": "`Read /tmp/a.txt`"}))
	if !strings.Contains(got, "Read(/tmp/a.txt)") {
		t.Fatalf("expected redundant label and backticks stripped, got %q", got)
	}
}

func TestRenderToolLine_UnknownKindUsesTitleAsLabel(t *testing.T) {
	got := renderedToolText(t, toolRecord(events.ToolOther, "chrome_navigate", map[string]any{"query": "example.com"}))
	if !strings.Contains(got, "chrome_navigate(example.com)") {
		t.Fatalf("expected title label for unknown kind, got %q", got)
	}
}

func TestRenderToolLine_FiltersPlanTools(t *testing.T) {
	for _, title := range []string{"write_todos", "TodoWrite", "manage_todo_list"} {
		rec := toolRecord(events.ToolThink, title, nil)
		rec.Status = events.StatusCompleted
		if lines := RenderToolLine(DefaultTheme(), rec); lines != nil {
			t.Fatalf("expected %q to be filtered, got %#v", title, lines)
		}
	}
}

func TestStatusMarkerStyle_TotalOverUnknownStatuses(t *testing.T) {
	theme := DefaultTheme()
	for _, status := range []events.ToolStatus{
		events.StatusPending,
		events.StatusInProgress,
		events.StatusCompleted,
		events.StatusFailed,
		events.ToolStatus("cancelled"),
		events.ToolStatus(""),
	} {
		// Must not panic, whatever the status string.
		_ = statusMarkerStyle(theme, status)
	}
}

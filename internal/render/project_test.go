package render

import (
	"reflect"
	"strings"
	"testing"

	"factotum-cli/internal/events"
	"factotum-cli/internal/timeline"
)

func buildSnapshot(evts ...events.Event) timeline.Snapshot {
	tl := timeline.New()
	for _, evt := range evts {
		tl.Apply(evt)
	}
	return tl.Snapshot()
}

func plainTranscript(snap timeline.Snapshot) []string {
	return LinesToPlainStrings(ProjectTranscript(DefaultTheme(), snap, 80))
}

func TestProjectTranscript_InterleavesTextAndTools(t *testing.T) {
	snap := buildSnapshot(
		events.Event{Kind: events.KindMessageChunk, Payload: events.MessageChunk{Text: "Let me check."}},
		events.Event{Kind: events.KindToolInvoked, Payload: events.ToolInvoked{
			ID: "1", Title: "shell", Tool: events.ToolExecute, Status: events.StatusCompleted,
			RawInput: map[string]any{"command": "ls"},
		}},
		events.Event{Kind: events.KindMessageChunk, Payload: events.MessageChunk{Text: "Done."}},
	)

	lines := plainTranscript(snap)
	text := strings.Join(lines, "\n")

	checkOrder := []string{"Let me check.", "Bash(ls)", "Done."}
	last := -1
	for _, want := range checkOrder {
		idx := strings.Index(text, want)
		if idx < 0 {
			t.Fatalf("missing %q in transcript:\n%s", want, text)
		}
		if idx <= last {
			t.Fatalf("%q out of order in transcript:\n%s", want, text)
		}
		last = idx
	}
}

func TestProjectTranscript_SeparatorOnEntryTypeChange(t *testing.T) {
	snap := buildSnapshot(
		events.Event{Kind: events.KindMessageChunk, Payload: events.MessageChunk{Text: "intro"}},
		events.Event{Kind: events.KindToolInvoked, Payload: events.ToolInvoked{
			ID: "1", Title: "shell", Tool: events.ToolExecute, RawInput: map[string]any{"command": "ls"},
		}},
		events.Event{Kind: events.KindToolInvoked, Payload: events.ToolInvoked{
			ID: "2", Title: "shell", Tool: events.ToolExecute, RawInput: map[string]any{"command": "pwd"},
		}},
	)

	lines := plainTranscript(snap)
	// intro, blank, Bash(ls), Bash(pwd): one separator, none between tools.
	want := []string{"intro", "", "● Bash(ls)", "● Bash(pwd)"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("unexpected transcript lines:\nwant %#v\ngot  %#v", want, lines)
	}
}

func TestProjectTranscript_PlanPanelFirstAndTodoToolsHidden(t *testing.T) {
	snap := buildSnapshot(
		events.Event{Kind: events.KindToolInvoked, Payload: events.ToolInvoked{
			ID: "todo-1", Title: "write_todos", Tool: events.ToolThink, Status: events.StatusCompleted,
		}},
		events.Event{Kind: events.KindPlanUpdated, Payload: events.PlanUpdated{Entries: []events.PlanEntry{
			{Content: "research", Status: "completed"},
			{Content: "implement", Status: "in_progress"},
			{Content: "verify", Status: "pending"},
		}}},
	)

	lines := plainTranscript(snap)
	text := strings.Join(lines, "\n")
	if strings.Contains(text, "write_todos") {
		t.Fatalf("todo tool leaked into transcript:\n%s", text)
	}
	if !strings.Contains(lines[0], "Plan") {
		t.Fatalf("expected plan panel first, got %q", lines[0])
	}
	for _, want := range []string{"✓ research", "→ implement", "○ verify"} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing plan step %q in:\n%s", want, text)
		}
	}
}

func TestProjectTranscript_UnknownPlanStatusRendersAsPending(t *testing.T) {
	snap := buildSnapshot(
		events.Event{Kind: events.KindPlanUpdated, Payload: events.PlanUpdated{Entries: []events.PlanEntry{
			{Content: "step", Status: "someday"},
		}}},
	)
	text := strings.Join(plainTranscript(snap), "\n")
	if !strings.Contains(text, "○ step") {
		t.Fatalf("expected pending visual for unknown status, got:\n%s", text)
	}
}

func TestProjectTranscript_OpenTextShownWhileStreaming(t *testing.T) {
	snap := buildSnapshot(
		events.Event{Kind: events.KindToolInvoked, Payload: events.ToolInvoked{
			ID: "1", Title: "shell", Tool: events.ToolExecute, RawInput: map[string]any{"command": "ls"},
		}},
		events.Event{Kind: events.KindMessageChunk, Payload: events.MessageChunk{Text: "partial answ"}},
	)
	lines := plainTranscript(snap)
	if lines[len(lines)-1] != "partial answ" {
		t.Fatalf("expected trailing open text, got %#v", lines)
	}
	// Separator between the tool line and the open text.
	if lines[len(lines)-2] != "" {
		t.Fatalf("expected separator before open text, got %#v", lines)
	}
}

func TestProjectTranscript_Deterministic(t *testing.T) {
	snap := buildSnapshot(
		events.Event{Kind: events.KindMessageChunk, Payload: events.MessageChunk{Text: "a"}},
		events.Event{Kind: events.KindToolInvoked, Payload: events.ToolInvoked{
			ID: "1", Title: "read", Tool: events.ToolRead, RawInput: map[string]any{"file_path": "x.go"},
		}},
		events.Event{Kind: events.KindPlanUpdated, Payload: events.PlanUpdated{Entries: []events.PlanEntry{
			{Content: "step", Status: "pending"},
		}}},
	)
	theme := DefaultTheme()
	first := ProjectTranscript(theme, snap, 72)
	second := ProjectTranscript(theme, snap, 72)
	if !reflect.DeepEqual(LinesToPlainStrings(first), LinesToPlainStrings(second)) {
		t.Fatal("projection is not deterministic for an unmutated snapshot")
	}
}

func TestProjectThoughts(t *testing.T) {
	empty := buildSnapshot()
	if got := ProjectThoughts(DefaultTheme(), empty, 80); got != nil {
		t.Fatalf("expected nil for empty thought buffer, got %#v", got)
	}

	snap := buildSnapshot(
		events.Event{Kind: events.KindThoughtChunk, Payload: events.ThoughtChunk{Text: "I should list files first."}},
	)
	text := strings.Join(LinesToPlainStrings(ProjectThoughts(DefaultTheme(), snap, 80)), "\n")
	if !strings.Contains(text, "Reasoning") || !strings.Contains(text, "list files first") {
		t.Fatalf("unexpected thoughts block:\n%s", text)
	}
}

func TestWrapText_WidthAware(t *testing.T) {
	lines := wrapText("alpha beta gamma delta", 11)
	want := []string{"alpha beta", "gamma delta"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("wrapText() = %#v, want %#v", lines, want)
	}

	long := wrapText("abcdefghij", 4)
	if len(long) != 3 || long[0] != "abcd" {
		t.Fatalf("expected hard break of long word, got %#v", long)
	}
}

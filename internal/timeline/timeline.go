package timeline

import (
	"strings"
	"sync"

	"factotum-cli/internal/events"
	"factotum-cli/internal/logger"
)

var log = logger.Named("timeline")

// EntryType distinguishes the two kinds of committed timeline entries.
type EntryType string

const (
	// EntryText is a finalized block of assistant prose.
	EntryText EntryType = "text"
	// EntryTool references a tool record by id.
	EntryTool EntryType = "tool"
)

// Entry is one committed element of the ordered timeline. Entries are
// immutable once appended; only the open text accumulation still changes.
type Entry struct {
	Type   EntryType
	Text   string // EntryText only
	ToolID string // EntryTool only
}

// ToolRecord tracks one tool call across announcements and status updates.
type ToolRecord struct {
	ID       string
	Title    string
	Kind     events.ToolKind
	Status   events.ToolStatus
	RawInput map[string]any
}

// Snapshot is an immutable copy of timeline state, safe to project from any
// goroutine while events keep mutating the timeline.
type Snapshot struct {
	Entries  []Entry
	Tools    map[string]ToolRecord
	Plan     []events.PlanEntry
	OpenText string
	Thoughts string
}

// Timeline ingests session events and maintains the ordered view of one
// conversational turn: committed entries, per-tool records, the current plan,
// the open (still streaming) text accumulation, and the thought buffer.
//
// The renderer owns the timeline exclusively; events mutate it from the
// subscription goroutine while the live display projects snapshots from its
// own goroutine, so state is guarded by a mutex.
type Timeline struct {
	mu       sync.Mutex
	entries  []Entry
	tools    map[string]ToolRecord
	plan     []events.PlanEntry
	open     strings.Builder
	thoughts strings.Builder
}

func New() *Timeline {
	return &Timeline{tools: map[string]ToolRecord{}}
}

// Reset clears all state for a new turn.
func (t *Timeline) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = nil
	t.tools = map[string]ToolRecord{}
	t.plan = nil
	t.open.Reset()
	t.thoughts.Reset()
}

// Apply ingests one event. Malformed payloads are absorbed as no-ops; Apply
// never fails and never panics.
func (t *Timeline) Apply(evt events.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch evt.Kind {
	case events.KindMessageChunk:
		if chunk, ok := evt.Payload.(events.MessageChunk); ok {
			t.open.WriteString(chunk.Text)
		}
	case events.KindThoughtChunk:
		if chunk, ok := evt.Payload.(events.ThoughtChunk); ok {
			t.thoughts.WriteString(chunk.Text)
		}
	case events.KindToolInvoked:
		if call, ok := evt.Payload.(events.ToolInvoked); ok {
			t.applyToolInvoked(call)
		}
	case events.KindToolStatus:
		if change, ok := evt.Payload.(events.ToolStatusChanged); ok {
			t.applyToolStatus(change)
		}
	case events.KindPlanUpdated:
		if plan, ok := evt.Payload.(events.PlanUpdated); ok {
			t.plan = append([]events.PlanEntry(nil), plan.Entries...)
		}
	case events.KindIgnored:
		// Dropped without effect.
	default:
	}
}

func (t *Timeline) applyToolInvoked(call events.ToolInvoked) {
	// Commit the open prose first so the transcript preserves the true
	// interleaving of text and tool calls.
	t.commitOpenLocked()

	_, known := t.tools[call.ID]
	t.tools[call.ID] = ToolRecord{
		ID:       call.ID,
		Title:    call.Title,
		Kind:     call.Tool,
		Status:   call.Status,
		RawInput: call.RawInput,
	}
	// A re-announcement refreshes the record in place; only a new id earns a
	// timeline position.
	if !known {
		t.entries = append(t.entries, Entry{Type: EntryTool, ToolID: call.ID})
	}
}

func (t *Timeline) applyToolStatus(change events.ToolStatusChanged) {
	rec, ok := t.tools[change.ID]
	if !ok {
		log.WithField("tool_id", change.ID).Debug("status update for unknown tool id")
		return
	}
	rec.Status = change.Status
	t.tools[change.ID] = rec
}

func (t *Timeline) commitOpenLocked() {
	text := t.open.String()
	if strings.TrimSpace(text) != "" {
		t.entries = append(t.entries, Entry{Type: EntryText, Text: text})
	}
	t.open.Reset()
}

// Snapshot returns a deep copy of current state.
func (t *Timeline) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	tools := make(map[string]ToolRecord, len(t.tools))
	for id, rec := range t.tools {
		if rec.RawInput != nil {
			raw := make(map[string]any, len(rec.RawInput))
			for k, v := range rec.RawInput {
				raw[k] = v
			}
			rec.RawInput = raw
		}
		tools[id] = rec
	}
	return Snapshot{
		Entries:  append([]Entry(nil), t.entries...),
		Tools:    tools,
		Plan:     append([]events.PlanEntry(nil), t.plan...),
		OpenText: t.open.String(),
		Thoughts: t.thoughts.String(),
	}
}

// Entries returns the committed entries in order.
func (t *Timeline) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Entry(nil), t.entries...)
}

// Tool looks up a tool record by id.
func (t *Timeline) Tool(id string) (ToolRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.tools[id]
	return rec, ok
}

// ToolCount reports the number of tracked tool records.
func (t *Timeline) ToolCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tools)
}

// Plan returns the current plan snapshot.
func (t *Timeline) Plan() []events.PlanEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]events.PlanEntry(nil), t.plan...)
}

// OpenText returns the still-streaming text accumulation.
func (t *Timeline) OpenText() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open.String()
}

// Thoughts returns the accumulated internal reasoning.
func (t *Timeline) Thoughts() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.thoughts.String()
}

package events

import "time"

// Kind identifies the payload carried by an Event.
type Kind string

const (
	// KindMessageChunk carries an incremental fragment of the assistant's
	// visible reply.
	KindMessageChunk Kind = "message.chunk"
	// KindThoughtChunk carries a fragment of internal reasoning. It is
	// buffered separately and never enters the main timeline.
	KindThoughtChunk Kind = "thought.chunk"
	// KindToolInvoked announces (or re-announces) a tool call.
	KindToolInvoked Kind = "tool.invoked"
	// KindToolStatus is a status transition for a previously invoked tool.
	KindToolStatus Kind = "tool.status"
	// KindPlanUpdated replaces the full ordered plan snapshot.
	KindPlanUpdated Kind = "plan.updated"
	// KindIgnored covers notification types the renderer drops without
	// effect (user echo and other agent-specific noise).
	KindIgnored Kind = "ignored"
)

// Event is the single message format delivered to renderer subscribers.
// Payload structure is determined by Kind.
type Event struct {
	Kind      Kind
	SessionID string
	Timestamp time.Time
	Payload   any
}

// MessageChunk is the payload for KindMessageChunk.
type MessageChunk struct {
	Text string
}

// ThoughtChunk is the payload for KindThoughtChunk.
type ThoughtChunk struct {
	Text string
}

// ToolKind is the small open enumeration of tool categories. Unknown wire
// values normalize to ToolOther.
type ToolKind string

const (
	ToolRead       ToolKind = "read"
	ToolEdit       ToolKind = "edit"
	ToolExecute    ToolKind = "execute"
	ToolFetch      ToolKind = "fetch"
	ToolSearch     ToolKind = "search"
	ToolThink      ToolKind = "think"
	ToolSwitchMode ToolKind = "switch_mode"
	ToolOther      ToolKind = "other"
)

// NormalizeToolKind maps a wire kind onto the known set, defaulting to
// ToolOther.
func NormalizeToolKind(raw string) ToolKind {
	switch ToolKind(raw) {
	case ToolRead, ToolEdit, ToolExecute, ToolFetch, ToolSearch, ToolThink, ToolSwitchMode:
		return ToolKind(raw)
	default:
		return ToolOther
	}
}

// ToolStatus is the tool lifecycle status: pending → in_progress →
// (completed | failed). Unrecognized wire values pass through; rendering
// maps them totally.
type ToolStatus string

const (
	StatusPending    ToolStatus = "pending"
	StatusInProgress ToolStatus = "in_progress"
	StatusCompleted  ToolStatus = "completed"
	StatusFailed     ToolStatus = "failed"
)

// ToolInvoked is the payload for KindToolInvoked. RawInput is an untyped
// key/value mapping whose shape depends on the tool kind.
type ToolInvoked struct {
	ID       string
	Title    string
	Tool     ToolKind
	Status   ToolStatus
	RawInput map[string]any
}

// ToolStatusChanged is the payload for KindToolStatus.
type ToolStatusChanged struct {
	ID     string
	Status ToolStatus
}

// PlanEntry is one step of the agent's communicated plan.
type PlanEntry struct {
	Content string
	Status  string // pending|in_progress|completed
}

// PlanUpdated is the payload for KindPlanUpdated. The entry list entirely
// supersedes the previous plan; it is never merged.
type PlanUpdated struct {
	Entries []PlanEntry
}

package runtime

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"factotum-cli/internal/events"

	"github.com/go-viper/mapstructure/v2"
	"github.com/hashicorp/go-retryablehttp"
)

// maxNotificationBytes bounds a single NDJSON line from the gateway.
const maxNotificationBytes = 1 << 20

// wireNotification is the loosely-typed session update envelope the gateway
// streams. Fields beyond the sessionUpdate discriminator are populated per
// update type; absent fields default.
type wireNotification struct {
	SessionUpdate string          `mapstructure:"sessionUpdate"`
	Content       wireContent     `mapstructure:"content"`
	ToolCallID    string          `mapstructure:"toolCallId"`
	Title         string          `mapstructure:"title"`
	Kind          string          `mapstructure:"kind"`
	Status        string          `mapstructure:"status"`
	RawInput      map[string]any  `mapstructure:"rawInput"`
	Entries       []wirePlanEntry `mapstructure:"entries"`
}

type wireContent struct {
	Type string `mapstructure:"type"`
	Text string `mapstructure:"text"`
}

type wirePlanEntry struct {
	Content string `mapstructure:"content"`
	Status  string `mapstructure:"status"`
}

// Subscribe opens the session's event stream and invokes onEvent for every
// notification, in arrival order, until the stream ends or ctx is canceled.
// Decode anomalies degrade to ignored events; they never fail the stream.
func (c *Client) Subscribe(ctx context.Context, sessionID string, onEvent func(events.Event)) error {
	path := fmt.Sprintf("/v1/sessions/%s/events", sessionID)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build subscribe request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("subscribe: gateway responded %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), maxNotificationBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		evt := decodeNotificationLine(sessionID, []byte(line))
		if onEvent != nil {
			onEvent(evt)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("event stream: %w", err)
	}
	return ctx.Err()
}

func decodeNotificationLine(sessionID string, line []byte) events.Event {
	var raw map[string]any
	if err := json.Unmarshal(line, &raw); err != nil {
		log.WithField("error", err).Debug("dropping undecodable notification line")
		return ignored(sessionID)
	}
	return DecodeNotification(sessionID, raw)
}

// DecodeNotification maps one loosely-typed gateway notification onto the
// renderer's event union. Unknown update types (user echo among them) and
// malformed payloads become ignored events; this function never fails.
func DecodeNotification(sessionID string, raw map[string]any) events.Event {
	var n wireNotification
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &n,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return ignored(sessionID)
	}
	if err := dec.Decode(raw); err != nil {
		log.WithField("error", err).Debug("dropping malformed notification")
		return ignored(sessionID)
	}

	evt := events.Event{SessionID: sessionID, Timestamp: time.Now()}
	switch n.SessionUpdate {
	case "agent_message_chunk":
		if n.Content.Type != "text" {
			return ignored(sessionID)
		}
		evt.Kind = events.KindMessageChunk
		evt.Payload = events.MessageChunk{Text: n.Content.Text}
	case "agent_thought_chunk":
		if n.Content.Type != "text" {
			return ignored(sessionID)
		}
		evt.Kind = events.KindThoughtChunk
		evt.Payload = events.ThoughtChunk{Text: n.Content.Text}
	case "tool_call":
		title := n.Title
		if strings.TrimSpace(title) == "" {
			title = n.ToolCallID
		}
		status := events.ToolStatus(n.Status)
		if status == "" {
			status = events.StatusPending
		}
		evt.Kind = events.KindToolInvoked
		evt.Payload = events.ToolInvoked{
			ID:       n.ToolCallID,
			Title:    title,
			Tool:     events.NormalizeToolKind(n.Kind),
			Status:   status,
			RawInput: n.RawInput,
		}
	case "tool_call_update":
		evt.Kind = events.KindToolStatus
		evt.Payload = events.ToolStatusChanged{
			ID:     n.ToolCallID,
			Status: events.ToolStatus(n.Status),
		}
	case "plan":
		entries := make([]events.PlanEntry, 0, len(n.Entries))
		for _, e := range n.Entries {
			entries = append(entries, events.PlanEntry{Content: e.Content, Status: e.Status})
		}
		evt.Kind = events.KindPlanUpdated
		evt.Payload = events.PlanUpdated{Entries: entries}
	default:
		return ignored(sessionID)
	}
	return evt
}

func ignored(sessionID string) events.Event {
	return events.Event{Kind: events.KindIgnored, SessionID: sessionID, Timestamp: time.Now()}
}

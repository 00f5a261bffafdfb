package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"factotum-cli/internal/logger"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

var log = logger.Named("runtime")

// Client talks to the remote session gateway. The gateway owns the agent,
// the model, and the sandbox; this client only starts turns, moves files,
// and observes the event side-channel.
type Client struct {
	baseURL string
	token   string
	agent   string
	timeout time.Duration
	http    *retryablehttp.Client
}

// ClientOptions configure a gateway client.
type ClientOptions struct {
	BaseURL        string
	Token          string
	Agent          string // claude|codex|gemini
	SandboxTimeout time.Duration
}

// OutputFile is a file the agent produced during a session.
type OutputFile struct {
	Name    string `json:"name"`
	Content []byte `json:"content"`
}

func NewClient(opts ClientOptions) *Client {
	hc := retryablehttp.NewClient()
	hc.RetryMax = 3
	hc.Logger = log
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		agent:   opts.Agent,
		timeout: opts.SandboxTimeout,
		http:    hc,
	}
}

// CreateSession provisions a remote session and returns its id.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	body := map[string]any{
		"agent":       c.agent,
		"session_tag": "factotum-cli-" + uuid.NewString(),
	}
	if c.timeout > 0 {
		body["timeout_ms"] = c.timeout.Milliseconds()
	}
	var out struct {
		SessionID string `json:"session_id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/sessions", body, &out); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	if out.SessionID == "" {
		return "", fmt.Errorf("create session: gateway returned no session id")
	}
	return out.SessionID, nil
}

// RunTurn submits a prompt and blocks until the turn resolves. Progress
// arrives on the Subscribe stream, not here.
func (c *Client) RunTurn(ctx context.Context, sessionID, prompt string) error {
	path := fmt.Sprintf("/v1/sessions/%s/turns", sessionID)
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]any{"prompt": prompt}, nil); err != nil {
		return fmt.Errorf("run turn: %w", err)
	}
	return nil
}

// UploadContext pushes local input files into the session's working
// directory before a turn. A nil or empty map is a no-op.
func (c *Client) UploadContext(ctx context.Context, sessionID string, files map[string][]byte) error {
	if len(files) == 0 {
		return nil
	}
	path := fmt.Sprintf("/v1/sessions/%s/files", sessionID)
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]any{"files": files}, nil); err != nil {
		return fmt.Errorf("upload context: %w", err)
	}
	return nil
}

// OutputFiles fetches the files the agent created during the session.
func (c *Client) OutputFiles(ctx context.Context, sessionID string) ([]OutputFile, error) {
	var out struct {
		Files []OutputFile `json:"files"`
	}
	path := fmt.Sprintf("/v1/sessions/%s/files", sessionID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("output files: %w", err)
	}
	return out.Files, nil
}

// Kill terminates the remote session.
func (c *Client) Kill(ctx context.Context, sessionID string) error {
	path := fmt.Sprintf("/v1/sessions/%s", sessionID)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("kill session: %w", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(raw)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("gateway responded %d: %s", resp.StatusCode, msg)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

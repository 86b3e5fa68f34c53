package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tharos-ai/superintendent-go/internal/config"
	"github.com/tharos-ai/superintendent-go/internal/logger"
)

// ErrNotFound is returned when the backend answers 404, e.g. for a stale
// conversation id.
var ErrNotFound = errors.New("not found")

// Client talks to the SuperIntendent API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new API client.
func NewClient(cfg config.BackendConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if cfg.TimeoutSeconds <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Chat sends one chat turn and returns the assistant's reply.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "backend reported failure without detail"
		}
		return nil, fmt.Errorf("chat failed: %s", msg)
	}
	return &resp, nil
}

// GetConversation fetches a persisted conversation for replay.
func (c *Client) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	var conv Conversation
	if err := c.do(ctx, http.MethodGet, "/api/conversations/"+id, nil, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// TogglePersonality tells the backend which persona to use. Callers
// treat it as best-effort.
func (c *Client) TogglePersonality(ctx context.Context, personality string) error {
	req := PersonalityToggleRequest{Personality: personality}
	return c.do(ctx, http.MethodPost, "/api/personality/toggle", req, nil)
}

// do runs one JSON round trip. Non-2xx responses become errors carrying
// the body's error detail when the backend provided one.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	logger.L.Debug("backend request", "method", method, "path", path, "request_id", requestID)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, errorDetail(resp.Body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorDetail extracts a human-readable message from an error body.
// FastAPI uses {"detail": ...}; chat failures may carry {"error": ...}.
func errorDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return "no detail"
	}
	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return string(data)
}

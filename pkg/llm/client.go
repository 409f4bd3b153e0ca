package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// LLM requests can be slow, especially on CPU-only hosts
	chatTimeout = 2 * time.Minute

	// Probe of /api/tags should come back fast or not at all
	pingTimeout = 5 * time.Second
)

// UnreachableError wraps transport-level failures talking to the model
// endpoint, so callers can distinguish "Ollama is down" from a bad response.
type UnreachableError struct {
	Err error
}

func (e *UnreachableError) Error() string {
	return "llm endpoint unreachable: " + e.Err.Error()
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// Client talks to an Ollama-compatible chat endpoint.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a chat client for the given base URL and model.
// apiKey may be empty; when set it is sent as a bearer token.
func NewClient(baseURL, model, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		model:   model,
		apiKey:  apiKey,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: chatTimeout,
		},
	}
}

// Model returns the model name this client sends with every request.
func (c *Client) Model() string { return c.model }

// Chat sends a non-streaming chat request and returns the parsed response.
func (c *Client) Chat(ctx context.Context, messages []Message, opts *Options) (*ChatResponse, error) {
	streaming := false
	req := &ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   &streaming,
		Options:  opts,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(httpReq)

	c.logger.Debug("sending chat request",
		zap.String("model", c.model),
		zap.Int("message_count", len(messages)),
	)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &UnreachableError{Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat endpoint returned %d: %s", httpResp.StatusCode, string(respBody))
	}

	var resp ChatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &resp, nil
}

// ChatWithSystem prepends a system prompt and optional history to the current
// user message, then performs a non-streaming chat call. It returns the
// assistant's text.
func (c *Client) ChatWithSystem(ctx context.Context, system, user string, history []Message, temperature float64) (string, error) {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: system})
	messages = append(messages, history...)
	messages = append(messages, Message{Role: RoleUser, Content: user})

	resp, err := c.Chat(ctx, messages, WithTemperature(temperature))
	if err != nil {
		return "", err
	}

	return resp.Message.Content, nil
}

// Stream sends a streaming chat request and returns the raw NDJSON body.
// The caller owns the returned reader and must close it.
func (c *Client) Stream(ctx context.Context, messages []Message, opts *Options) (io.ReadCloser, error) {
	streaming := true
	req := &ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   &streaming,
		Options:  opts,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(httpReq)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &UnreachableError{Err: err}
	}

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		httpResp.Body.Close()
		return nil, fmt.Errorf("chat endpoint returned %d: %s", httpResp.StatusCode, string(respBody))
	}

	return httpResp.Body, nil
}

// Ping checks that the model endpoint is up by listing its models.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(httpReq)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &UnreachableError{Err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("tags endpoint returned %d", httpResp.StatusCode)
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

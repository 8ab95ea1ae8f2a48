package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Provider is one model-serving backend profile: an OpenAI-compatible
// chat-completions endpoint plus the model to request from it. Profiles are
// resolved once at startup and never switched at runtime.
type Provider struct {
	Name    string
	BaseURL string
	APIKey  string
	Model   string
}

// Client issues completion requests against a single provider profile.
// It is safe for concurrent use; all configuration is immutable.
type Client struct {
	provider   Provider
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a client bound to one provider profile.
func NewClient(provider Provider, logger *zap.Logger) *Client {
	return &Client{
		provider:   provider,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

// Provider returns the immutable profile this client is bound to.
func (c *Client) Provider() Provider { return c.provider }

// Option adjusts per-request model settings.
type Option func(*chatRequest)

// WithTemperature sets the sampling temperature for one request.
func WithTemperature(t float64) Option {
	return func(r *chatRequest) { r.Temperature = &t }
}

// WithMaxTokens bounds the completion length for one request.
func WithMaxTokens(n int) Option {
	return func(r *chatRequest) { r.MaxTokens = n }
}

// ToolSpec declares a single callable tool to the model.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// ToolCall is the model's request to invoke a declared tool.
type ToolCall struct {
	Name      string
	Arguments json.RawMessage
}

// ToolTurn is one model round in a tool-enabled conversation: either plain
// text or a single tool call (parallel tool calls are disabled on the wire).
type ToolTurn struct {
	Text     string
	ToolCall *ToolCall
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string                 `json:"type"`
	JSONSchema map[string]interface{} `json:"json_schema,omitempty"`
}

type toolFunction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters"`
}

type toolWire struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type chatRequest struct {
	Model             string          `json:"model"`
	Messages          []chatMessage   `json:"messages"`
	Temperature       *float64        `json:"temperature,omitempty"`
	MaxTokens         int             `json:"max_tokens,omitempty"`
	ResponseFormat    *responseFormat `json:"response_format,omitempty"`
	Tools             []toolWire      `json:"tools,omitempty"`
	ParallelToolCalls *bool           `json:"parallel_tool_calls,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Function struct {
					Name      string          `json:"name"`
					Arguments json.RawMessage `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

// CompleteStructured runs one completion constrained to the given schema and
// unmarshals the validated JSON into out. A response that cannot be parsed
// into the schema yields a SchemaViolationError; transport and HTTP errors
// are returned as-is for the caller to propagate.
func (c *Client) CompleteStructured(ctx context.Context, instructions, input string, schema *Schema, out interface{}, opts ...Option) error {
	req := chatRequest{
		Model: c.provider.Model,
		Messages: []chatMessage{
			{Role: "system", Content: instructions},
			{Role: "user", Content: input},
		},
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: map[string]interface{}{
				"name":   schema.Name,
				"schema": schema.Definition,
			},
		},
	}
	for _, opt := range opts {
		opt(&req)
	}

	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("llm %s: empty completion response", c.provider.Name)
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)
	if err := schema.Validate([]byte(content)); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return &SchemaViolationError{Schema: schema.Name, Detail: err.Error()}
	}
	return nil
}

// CompleteWithTool runs one completion with a single declared tool and
// parallel tool calls disabled. The model either calls the tool once or
// answers in text; the caller decides what happens next.
func (c *Client) CompleteWithTool(ctx context.Context, instructions, input string, tool ToolSpec, opts ...Option) (*ToolTurn, error) {
	noParallel := false
	req := chatRequest{
		Model: c.provider.Model,
		Messages: []chatMessage{
			{Role: "system", Content: instructions},
			{Role: "user", Content: input},
		},
		Tools: []toolWire{{
			Type: "function",
			Function: toolFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		}},
		ParallelToolCalls: &noParallel,
	}
	for _, opt := range opts {
		opt(&req)
	}

	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("llm %s: empty completion response", c.provider.Name)
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		call := msg.ToolCalls[0]
		return &ToolTurn{ToolCall: &ToolCall{
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		}}, nil
	}
	return &ToolTurn{Text: strings.TrimSpace(msg.Content)}, nil
}

func (c *Client) send(ctx context.Context, req chatRequest) (*chatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	url := strings.TrimRight(c.provider.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.provider.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.provider.APIKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call %s completion endpoint: %w", c.provider.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("llm %s returned status %d: %s", c.provider.Name, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode completion response: %w", err)
	}

	c.logger.Debug("Completion round finished",
		zap.String("provider", c.provider.Name),
		zap.String("model", c.provider.Model),
		zap.Duration("duration", time.Since(start)),
	)
	return &parsed, nil
}

// stripCodeFence unwraps a ```json fenced block when a model ignores the
// structured-output contract but still returns valid JSON inside a fence.
func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

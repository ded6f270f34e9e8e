package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/hazriqpedia/waybill/pkg/domain"
	"github.com/hazriqpedia/waybill/pkg/ports"
)

// Client handles communication with the chat completions API.
type Client struct {
	config     Config
	httpClient *http.Client
}

var _ ports.CompletionClient = (*Client)(nil)

// New creates a new API client with the given configuration.
func New(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.HTTPTimeout},
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.config.Model
}

// Complete sends the conversation to the API and returns the next step.
// Only the first tool call of a reply is honoured.
func (c *Client) Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return domain.Completion{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return domain.Completion{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return domain.Completion{}, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return domain.Completion{}, fmt.Errorf("decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return domain.Completion{}, ErrNoChoices
	}

	msg := chatResp.Choices[0].Message
	if len(msg.ToolCalls) == 0 {
		return domain.Completion{Text: msg.Content}, nil
	}

	tc := msg.ToolCalls[0]
	call := &domain.ToolCall{
		ID:   tc.ID,
		Name: tc.Function.Name,
		Args: decodeArguments(tc.Function.Arguments),
	}
	if call.ID == "" {
		call.ID = "call_" + uuid.NewString()
	}
	return domain.Completion{Text: msg.Content, ToolCall: call}, nil
}

// decodeArguments tolerates empty or malformed argument strings; the registry
// reports the missing arguments back to the model.
func decodeArguments(raw string) map[string]any {
	args := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return args
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]any{}
	}
	return args
}

func (c *Client) buildRequest(req domain.CompletionRequest) chatRequest {
	out := chatRequest{
		Model:       c.config.Model,
		Messages:    toMessages(req),
		Temperature: c.config.Temperature,
	}
	for _, t := range req.Tools {
		out.Tools = append(out.Tools, tool{
			Type: "function",
			Function: toolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.JSONSchema(),
			},
		})
	}
	if len(out.Tools) > 0 {
		out.ToolChoice = "auto"
	}
	return out
}

// toMessages maps system, history and trace onto chat messages, in that order.
func toMessages(req domain.CompletionRequest) []message {
	turns := req.Turns()
	msgs := make([]message, 0, len(turns)+1)
	if req.System != "" {
		msgs = append(msgs, message{Role: "system", Content: req.System})
	}

	// Calls without an ID get one here so the paired result can reference it.
	lastID := map[string]string{}

	for _, t := range turns {
		switch t.Kind {
		case domain.TurnUser:
			msgs = append(msgs, message{Role: "user", Content: t.Text})
		case domain.TurnFinal:
			msgs = append(msgs, message{Role: "assistant", Content: t.Text})
		case domain.TurnToolCall:
			id := t.CallID
			if id == "" {
				id = "call_" + uuid.NewString()
			}
			lastID[t.ToolName] = id

			args, err := json.Marshal(t.Args)
			if err != nil || t.Args == nil {
				args = []byte("{}")
			}
			msgs = append(msgs, message{
				Role: "assistant",
				ToolCalls: []toolCall{{
					ID:   id,
					Type: "function",
					Function: functionCall{
						Name:      t.ToolName,
						Arguments: string(args),
					},
				}},
			})
		case domain.TurnToolResult:
			id := t.CallID
			if id == "" {
				id = lastID[t.ToolName]
			}
			msgs = append(msgs, message{
				Role:       "tool",
				Content:    t.Text,
				ToolCallID: id,
				Name:       t.ToolName,
			})
		}
	}
	return msgs
}

package openaichat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/nimec77/tandem/pkg/model"
)

// Complete performs a blocking chat-completion call.
func (c *Client) Complete(ctx context.Context, messages []model.Message) (model.Message, error) {
	return c.complete(ctx, messages, nil)
}

// CompleteWithTools advertises tools as nested function schemas; the response
// may carry tool calls, surfaced as ToolCalls on the returned message.
func (c *Client) CompleteWithTools(ctx context.Context, messages []model.Message, tools []model.ToolDefinition) (model.Message, error) {
	return c.complete(ctx, messages, tools)
}

// Stream invokes the streaming endpoint and relays incremental chunks.
func (c *Client) Stream(ctx context.Context, messages []model.Message) (*model.Stream, error) {
	return c.stream(ctx, messages, nil)
}

// StreamWithTools streams with tools advertised; tool-call fragments are
// reassembled by index and delivered on the terminal event.
func (c *Client) StreamWithTools(ctx context.Context, messages []model.Message, tools []model.ToolDefinition) (*model.Stream, error) {
	return c.stream(ctx, messages, tools)
}

func (c *Client) complete(ctx context.Context, messages []model.Message, tools []model.ToolDefinition) (model.Message, error) {
	payload := c.buildPayload(messages, tools, false)
	resp, err := c.doRequest(ctx, payload)
	if err != nil {
		return model.Message{}, model.TransportError(c.vendor, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Message{}, c.readAPIError(resp)
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return model.Message{}, model.ParseError(c.vendor, fmt.Errorf("decode response: %w", err))
	}
	if len(chatResp.Choices) == 0 {
		return model.Message{}, model.ParseError(c.vendor, fmt.Errorf("response has no choices"))
	}

	return c.convertMessage(chatResp.Choices[0].Message)
}

func (c *Client) buildPayload(messages []model.Message, tools []model.ToolDefinition, stream bool) ChatRequest {
	payload := ChatRequest{
		Model:     c.model,
		Messages:  toWireMessages(messages),
		MaxTokens: c.maxTokens,
		Stream:    stream,
	}
	for _, t := range tools {
		payload.Tools = append(payload.Tools, ToolParam{
			Type: "function",
			Function: FunctionDef{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.InputSchema,
			},
		})
	}
	return payload
}

func (c *Client) doRequest(ctx context.Context, payload ChatRequest) (*http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(c.authHeader, c.authValue)

	return c.client.Do(req)
}

func (c *Client) readAPIError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.HTTPError(c.vendor, resp.StatusCode, "")
	}
	body = bytes.TrimSpace(body)

	var apiErr ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return model.HTTPError(c.vendor, resp.StatusCode, apiErr.Error.Message)
	}
	return model.HTTPError(c.vendor, resp.StatusCode, string(body))
}

func (c *Client) convertMessage(wire ChatMessage) (model.Message, error) {
	msg := model.Message{Role: model.RoleAssistant, Content: wire.Content}
	for _, call := range wire.ToolCalls {
		args, err := decodeArguments(call.Function.Arguments)
		if err != nil {
			return model.Message{}, model.ParseError(c.vendor,
				fmt.Errorf("decode tool call %s arguments: %w", call.ID, err))
		}
		msg.ToolCalls = append(msg.ToolCalls, model.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: args,
		})
	}
	return msg, nil
}

// decodeArguments turns the vendor's JSON-encoded arguments string into the
// structured input value. An empty string means no arguments.
func decodeArguments(raw string) (map[string]any, error) {
	args := map[string]any{}
	if raw == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	return args, nil
}

// toWireMessages maps the uniform conversation onto the flat wire shape.
// System messages stay inline in their original position; tool messages map
// directly with an explicit tool_call_id.
func toWireMessages(messages []model.Message) []ChatMessage {
	out := make([]ChatMessage, 0, len(messages))
	for _, msg := range messages {
		wire := ChatMessage{
			Role:       string(msg.Role),
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
		}
		for _, call := range msg.ToolCalls {
			args, err := json.Marshal(call.Arguments)
			if err != nil {
				args = []byte("{}")
			}
			wire.ToolCalls = append(wire.ToolCalls, ToolCallParam{
				ID:   call.ID,
				Type: "function",
				Function: FunctionCall{
					Name:      call.Name,
					Arguments: string(args),
				},
			})
		}
		out = append(out, wire)
	}
	return out
}

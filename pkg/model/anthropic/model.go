package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nimec77/tandem/pkg/model"
)

// Complete performs a blocking Messages API call.
func (c *Client) Complete(ctx context.Context, messages []model.Message) (model.Message, error) {
	return c.complete(ctx, messages, nil)
}

// CompleteWithTools advertises tools to the API; the response may carry
// tool_use blocks, surfaced as ToolCalls on the returned message.
func (c *Client) CompleteWithTools(ctx context.Context, messages []model.Message, tools []model.ToolDefinition) (model.Message, error) {
	return c.complete(ctx, messages, tools)
}

// Stream invokes the streaming endpoint (SSE) and relays incremental chunks.
func (c *Client) Stream(ctx context.Context, messages []model.Message) (*model.Stream, error) {
	return c.stream(ctx, messages, nil)
}

// StreamWithTools streams with tools advertised; tool_use input fragments are
// reassembled and delivered on the terminal event.
func (c *Client) StreamWithTools(ctx context.Context, messages []model.Message, tools []model.ToolDefinition) (*model.Stream, error) {
	return c.stream(ctx, messages, tools)
}

func (c *Client) complete(ctx context.Context, messages []model.Message, tools []model.ToolDefinition) (model.Message, error) {
	payload := c.buildPayload(messages, tools, false)
	resp, err := c.doRequest(ctx, payload)
	if err != nil {
		return model.Message{}, model.TransportError(vendorName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Message{}, readAPIError(resp)
	}

	var msgResp MessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return model.Message{}, model.ParseError(vendorName, fmt.Errorf("decode response: %w", err))
	}

	return convertResponse(msgResp), nil
}

func (c *Client) buildPayload(messages []model.Message, tools []model.ToolDefinition, stream bool) MessageRequest {
	systemText, chatMessages := toWireMessages(messages)
	payload := MessageRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  chatMessages,
		System:    systemText,
		Stream:    stream,
	}
	for _, t := range tools {
		payload.Tools = append(payload.Tools, Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	return payload
}

func (c *Client) doRequest(ctx context.Context, payload MessageRequest) (*http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	endpoint := c.baseURL + messagesPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	return c.client.Do(req)
}

func readAPIError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.HTTPError(vendorName, resp.StatusCode, "")
	}
	body = bytes.TrimSpace(body)

	var apiErr ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return model.HTTPError(vendorName, resp.StatusCode, apiErr.Error.Message)
	}
	return model.HTTPError(vendorName, resp.StatusCode, string(body))
}

func convertResponse(resp MessageResponse) model.Message {
	msg := model.Message{Role: model.RoleAssistant}
	var text strings.Builder
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			input := block.Input
			if input == nil {
				input = map[string]any{}
			}
			msg.ToolCalls = append(msg.ToolCalls, model.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: input,
			})
		}
	}
	msg.Content = text.String()
	return msg
}

// toWireMessages translates the uniform conversation into the Anthropic
// shape: system turns are extracted, in original order, into the dedicated
// field joined by a blank line; tool turns become user-role wrappers carrying
// a tool_result block keyed by the call ID.
func toWireMessages(messages []model.Message) (string, []MessageParam) {
	var systemParts []string
	out := make([]MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			if msg.Content != "" {
				systemParts = append(systemParts, msg.Content)
			}
		case model.RoleTool:
			out = append(out, MessageParam{
				Role: "user",
				Content: []ContentBlock{{
					Type:      "tool_result",
					ToolUseID: msg.ToolCallID,
					Content:   msg.Content,
				}},
			})
		case model.RoleAssistant:
			blocks := make([]ContentBlock, 0, 1+len(msg.ToolCalls))
			if msg.Content != "" {
				blocks = append(blocks, ContentBlock{Type: "text", Text: msg.Content})
			}
			for _, call := range msg.ToolCalls {
				blocks = append(blocks, ContentBlock{
					Type:  "tool_use",
					ID:    call.ID,
					Name:  call.Name,
					Input: call.Arguments,
				})
			}
			if len(blocks) == 0 {
				blocks = append(blocks, ContentBlock{Type: "text", Text: ""})
			}
			out = append(out, MessageParam{Role: "assistant", Content: blocks})
		default:
			out = append(out, MessageParam{
				Role:    "user",
				Content: []ContentBlock{{Type: "text", Text: msg.Content}},
			})
		}
	}
	return strings.Join(systemParts, "\n\n"), out
}

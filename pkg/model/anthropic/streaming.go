package anthropic

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nimec77/tandem/pkg/model"
)

func (c *Client) stream(ctx context.Context, messages []model.Message, tools []model.ToolDefinition) (*model.Stream, error) {
	ctx, cancel := context.WithCancel(ctx)

	payload := c.buildPayload(messages, tools, true)
	resp, err := c.doRequest(ctx, payload)
	if err != nil {
		cancel()
		return nil, model.TransportError(vendorName, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		defer cancel()
		return nil, readAPIError(resp)
	}

	st := model.NewStream(cancel)
	go func() {
		defer resp.Body.Close()
		defer cancel()
		pumpEvents(ctx, resp.Body, st)
	}()
	return st, nil
}

// pumpEvents relays SSE payloads into st. It guarantees exactly one terminal
// event: message_stop yields Done, a transport or decode failure yields
// Error, and a connection closed without message_stop still yields Done.
func pumpEvents(ctx context.Context, body io.Reader, st *model.Stream) {
	var acc toolAccumulator
	stopped := false

	err := consumeSSE(ctx, body, func(_ string, data string) error {
		data = strings.TrimSpace(data)
		if data == "" {
			return nil
		}

		var envelope StreamEventEnvelope
		if err := json.Unmarshal([]byte(data), &envelope); err != nil {
			return model.ParseError(vendorName, fmt.Errorf("decode stream envelope: %w", err))
		}

		switch envelope.Type {
		case "content_block_start":
			var start ContentBlockStartEvent
			if err := json.Unmarshal([]byte(data), &start); err != nil {
				return model.ParseError(vendorName, fmt.Errorf("decode block start: %w", err))
			}
			if start.ContentBlock.Type == "tool_use" {
				acc.open(start.ContentBlock.ID, start.ContentBlock.Name)
			}
			return nil
		case "content_block_delta":
			var delta ContentBlockDeltaEvent
			if err := json.Unmarshal([]byte(data), &delta); err != nil {
				return model.ParseError(vendorName, fmt.Errorf("decode delta: %w", err))
			}
			switch delta.Delta.Type {
			case "text_delta":
				if !st.SendText(delta.Delta.Text) {
					return errStreamAbandoned
				}
			case "input_json_delta":
				acc.appendJSON(delta.Delta.PartialJSON)
			}
			return nil
		case "content_block_stop":
			acc.closeBlock()
			return nil
		case "message_stop":
			stopped = true
			return errStreamComplete
		default:
			// message_start, message_delta, ping and future event types
			// carry nothing we surface.
			return nil
		}
	})

	switch {
	case err == errStreamAbandoned:
		// Consumer closed the stream; nothing left to deliver.
	case err == nil || err == errStreamComplete || stopped:
		st.SendDone(acc.calls()...)
	default:
		if _, ok := err.(*model.Error); !ok {
			err = model.TransportError(vendorName, err)
		}
		st.SendError(err)
	}
}

var (
	errStreamComplete  = fmt.Errorf("anthropic: stream complete")
	errStreamAbandoned = fmt.Errorf("anthropic: stream abandoned")
)

// toolAccumulator reassembles tool_use blocks whose input arrives as
// incremental JSON fragments. Calls become visible only after their block is
// closed, so a truncated stream never yields a half-built call.
type toolAccumulator struct {
	done    []model.ToolCall
	pending *model.ToolCall
	input   strings.Builder
}

func (a *toolAccumulator) open(id, name string) {
	a.pending = &model.ToolCall{ID: id, Name: name}
	a.input.Reset()
}

func (a *toolAccumulator) appendJSON(fragment string) {
	if a.pending != nil {
		a.input.WriteString(fragment)
	}
}

func (a *toolAccumulator) closeBlock() {
	if a.pending == nil {
		return
	}
	args := map[string]any{}
	if raw := a.input.String(); raw != "" {
		// Malformed input JSON leaves the arguments empty rather than
		// aborting the whole stream.
		_ = json.Unmarshal([]byte(raw), &args)
	}
	a.pending.Arguments = args
	a.done = append(a.done, *a.pending)
	a.pending = nil
	a.input.Reset()
}

func (a *toolAccumulator) calls() []model.ToolCall {
	return a.done
}

// consumeSSE parses a Server-Sent Events stream, invoking fn for each event.
func consumeSSE(ctx context.Context, r io.Reader, fn func(event, data string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var eventName string
	var dataBuf strings.Builder
	flush := func() error {
		if dataBuf.Len() == 0 {
			eventName = ""
			return nil
		}
		payload := dataBuf.String()
		dataBuf.Reset()
		return fn(eventName, payload)
	}

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := scanner.Text()
		if line == "" {
			if err := flush(); err != nil {
				return err
			}
			eventName = ""
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		if strings.HasPrefix(line, "event:") {
			eventName = strings.TrimSpace(line[6:])
			continue
		}
		if strings.HasPrefix(line, "data:") {
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(strings.TrimSpace(line[5:]))
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return flush()
}

package openaichat

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/nimec77/tandem/pkg/model"
)

func (c *Client) stream(ctx context.Context, messages []model.Message, tools []model.ToolDefinition) (*model.Stream, error) {
	ctx, cancel := context.WithCancel(ctx)

	payload := c.buildPayload(messages, tools, true)
	resp, err := c.doRequest(ctx, payload)
	if err != nil {
		cancel()
		return nil, model.TransportError(c.vendor, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		defer cancel()
		return nil, c.readAPIError(resp)
	}

	st := model.NewStream(cancel)
	go func() {
		defer resp.Body.Close()
		defer cancel()
		c.pumpChunks(ctx, resp.Body, st)
	}()
	return st, nil
}

// pumpChunks reads the line-oriented event stream: each event is a
// "data: <json>" line followed by a blank line, closed by the literal
// "data: [DONE]" sentinel. A transport that closes without the sentinel still
// yields Done so the sequence never ends ambiguously.
func (c *Client) pumpChunks(ctx context.Context, body io.Reader, st *model.Stream) {
	var acc chunkAccumulator

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			st.SendDone(acc.calls()...)
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(line[len("data:"):])
		if data == doneSentinel {
			st.SendDone(acc.calls()...)
			return
		}

		var chunk ChunkResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			st.SendError(model.ParseError(c.vendor, fmt.Errorf("decode stream chunk: %w", err)))
			return
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta
		acc.add(delta.ToolCalls)
		if !st.SendText(delta.Content) {
			return
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		st.SendError(model.TransportError(c.vendor, err))
		return
	}
	st.SendDone(acc.calls()...)
}

// chunkAccumulator reassembles tool calls whose id, name, and arguments
// string arrive split across fragments sharing an index.
type chunkAccumulator struct {
	byIndex map[int]*partialCall
}

type partialCall struct {
	id   string
	name string
	args strings.Builder
}

func (a *chunkAccumulator) add(fragments []ChunkToolCall) {
	for _, frag := range fragments {
		if a.byIndex == nil {
			a.byIndex = map[int]*partialCall{}
		}
		p := a.byIndex[frag.Index]
		if p == nil {
			p = &partialCall{}
			a.byIndex[frag.Index] = p
		}
		if frag.ID != "" {
			p.id = frag.ID
		}
		if frag.Function.Name != "" {
			p.name = frag.Function.Name
		}
		p.args.WriteString(frag.Function.Arguments)
	}
}

// calls finalizes the accumulated fragments in index order.
func (a *chunkAccumulator) calls() []model.ToolCall {
	if len(a.byIndex) == 0 {
		return nil
	}
	indexes := make([]int, 0, len(a.byIndex))
	for idx := range a.byIndex {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	out := make([]model.ToolCall, 0, len(indexes))
	for _, idx := range indexes {
		p := a.byIndex[idx]
		args, err := decodeArguments(p.args.String())
		if err != nil {
			args = map[string]any{}
		}
		out = append(out, model.ToolCall{ID: p.id, Name: p.name, Arguments: args})
	}
	return out
}

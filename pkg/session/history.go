package session

import (
	"sync"

	"github.com/nimec77/tandem/pkg/model"
)

// defaultMaxMessages bounds how much context a history carries into each
// turn before old exchanges are dropped.
const defaultMaxMessages = 100

// History is the minimal read/write contract callers use to carry
// conversation context between turns. The engine itself never persists
// anything; what survives a turn is decided by whoever owns the History.
type History struct {
	mu          sync.Mutex
	maxMessages int
	messages    []model.Message
}

// NewHistory constructs an empty history. max <= 0 selects the default cap.
func NewHistory(max int) *History {
	if max <= 0 {
		max = defaultMaxMessages
	}
	return &History{maxMessages: max}
}

// Append records messages at the end of the transcript, trimming the oldest
// exchanges once the cap is exceeded. A leading system message survives
// trimming so standing instructions are never silently lost.
func (h *History) Append(msgs ...model.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, msg := range msgs {
		h.messages = append(h.messages, cloneMessage(msg))
	}
	if len(h.messages) <= h.maxMessages {
		return
	}

	keepSystem := h.messages[0].Role == model.RoleSystem
	overflow := len(h.messages) - h.maxMessages
	if keepSystem {
		head := h.messages[0]
		h.messages = append([]model.Message{head}, h.messages[1+overflow:]...)
	} else {
		h.messages = append([]model.Message(nil), h.messages[overflow:]...)
	}
}

// Messages returns a snapshot of the transcript safe for the caller to
// mutate.
func (h *History) Messages() []model.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]model.Message, len(h.messages))
	for i, msg := range h.messages {
		out[i] = cloneMessage(msg)
	}
	return out
}

// Len reports the number of stored messages.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// Clear discards the transcript.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}

func cloneMessage(msg model.Message) model.Message {
	cloned := msg
	if len(msg.ToolCalls) > 0 {
		cloned.ToolCalls = make([]model.ToolCall, len(msg.ToolCalls))
		for i, call := range msg.ToolCalls {
			cloned.ToolCalls[i] = cloneToolCall(call)
		}
	}
	return cloned
}

func cloneToolCall(call model.ToolCall) model.ToolCall {
	cloned := call
	if call.Arguments != nil {
		args := make(map[string]any, len(call.Arguments))
		for k, v := range call.Arguments {
			args[k] = v
		}
		cloned.Arguments = args
	}
	return cloned
}

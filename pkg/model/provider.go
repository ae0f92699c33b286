package model

import "context"

// Provider is the uniform capability contract every vendor adapter satisfies.
// Each method performs exactly one wire exchange; re-asking after a tool
// round trip is the orchestrator's job, never the adapter's.
type Provider interface {
	// Complete performs a single blocking round trip with no tool awareness.
	Complete(ctx context.Context, messages []Message) (Message, error)

	// CompleteWithTools advertises tools to the vendor; the returned message
	// may carry ToolCalls instead of a final answer.
	CompleteWithTools(ctx context.Context, messages []Message, tools []ToolDefinition) (Message, error)

	// Stream is the token-incremental version of Complete.
	Stream(ctx context.Context, messages []Message) (*Stream, error)

	// StreamWithTools is the token-incremental version of CompleteWithTools.
	StreamWithTools(ctx context.Context, messages []Message, tools []ToolDefinition) (*Stream, error)
}

// Completer is the minimal surface a text-only backend implements.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (Message, error)
	Stream(ctx context.Context, messages []Message) (*Stream, error)
}

// Extend promotes a Completer to a full Provider. The tool-aware operations
// ignore the advertised tools and delegate to the plain ones; the
// orchestrator inspects the returned message for tool calls, not the
// adapter's declared capability.
func Extend(c Completer) Provider {
	return extended{c}
}

type extended struct {
	Completer
}

func (e extended) CompleteWithTools(ctx context.Context, messages []Message, _ []ToolDefinition) (Message, error) {
	return e.Complete(ctx, messages)
}

func (e extended) StreamWithTools(ctx context.Context, messages []Message, _ []ToolDefinition) (*Stream, error) {
	return e.Stream(ctx, messages)
}

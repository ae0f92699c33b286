package agent

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nimec77/tandem/pkg/model"
)

// maxIterations caps provider round trips per turn. When the model is still
// requesting tools after this many calls, the turn fails with
// ErrMaxIterations instead of asking again.
const maxIterations = 10

// ToolClient is the surface the orchestrator needs from a tool-execution
// client. A nil client means tool-free operation.
type ToolClient interface {
	HasTools() bool
	ToolDefinitions() []model.ToolDefinition
	Invoke(ctx context.Context, name string, args map[string]any) (string, error)
}

// Config assembles an Agent from one provider adapter and an optional tool
// client.
type Config struct {
	Provider model.Provider
	Tools    ToolClient
	Logger   *slog.Logger
}

// Agent composes a provider adapter and an optional tool client into the
// bounded detect-execute-inject-reask loop. It holds no mutable state beyond
// the conversation scoped to one in-flight call, so a single Agent serves
// concurrent turns.
type Agent struct {
	provider model.Provider
	tools    ToolClient
	log      *slog.Logger
}

// New validates cfg and builds the orchestrator.
func New(cfg Config) (*Agent, error) {
	if cfg.Provider == nil {
		return nil, errors.New("agent: provider is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{provider: cfg.Provider, tools: cfg.Tools, log: logger}, nil
}

// Complete runs one turn to completion: the supplied history (ending in the
// new user message) in, the final assistant answer out. Intermediate
// tool-call and tool-result messages stay internal to the turn; persisting
// any of it is the caller's decision.
func (a *Agent) Complete(ctx context.Context, history []model.Message) (model.Message, error) {
	conv := append([]model.Message(nil), history...)

	if !a.toolsAvailable() {
		msg, err := a.provider.Complete(ctx, conv)
		if err != nil {
			return model.Message{}, &Error{Subsystem: SubsystemProvider, Err: err}
		}
		return msg, nil
	}

	return a.runToolLoop(ctx, conv)
}

// Stream runs one turn and surfaces the final answer as an event sequence.
// With no tools the provider streams natively; after tool iterations the
// final text, already complete, arrives as a single delta followed by Done.
// Intermediate machine-to-machine exchanges are never streamed.
func (a *Agent) Stream(ctx context.Context, history []model.Message) (*model.Stream, error) {
	conv := append([]model.Message(nil), history...)

	if !a.toolsAvailable() {
		st, err := a.provider.Stream(ctx, conv)
		if err != nil {
			return nil, &Error{Subsystem: SubsystemProvider, Err: err}
		}
		return st, nil
	}

	final, err := a.runToolLoop(ctx, conv)
	if err != nil {
		return nil, err
	}
	return model.NewTextStream(final.Content), nil
}

func (a *Agent) toolsAvailable() bool {
	return a.tools != nil && a.tools.HasTools()
}

func (a *Agent) runToolLoop(ctx context.Context, conv []model.Message) (model.Message, error) {
	tools := a.tools.ToolDefinitions()

	for i := 0; i < maxIterations; i++ {
		resp, err := a.provider.CompleteWithTools(ctx, conv, tools)
		if err != nil {
			return model.Message{}, &Error{Subsystem: SubsystemProvider, Err: err}
		}

		if len(resp.ToolCalls) == 0 {
			a.log.Debug("turn complete", "iterations", i+1)
			return resp, nil
		}

		a.log.Debug("model requested tools", "iteration", i+1, "calls", len(resp.ToolCalls))
		conv = append(conv, resp)

		// Execute sequentially, in the order received; each result echoes
		// the call ID so the vendor can correlate it.
		for _, call := range resp.ToolCalls {
			out, err := a.tools.Invoke(ctx, call.Name, call.Arguments)
			if err != nil {
				return model.Message{}, &Error{Subsystem: SubsystemTool, Err: err}
			}
			conv = append(conv, model.Message{
				Role:       model.RoleTool,
				Content:    out,
				ToolCallID: call.ID,
			})
		}
	}

	return model.Message{}, &Error{Subsystem: SubsystemLoop, Err: ErrMaxIterations}
}

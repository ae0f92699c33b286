package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nimec77/tandem/pkg/model"
)

// scriptedProvider returns canned responses in order and records every
// conversation it was shown.
type scriptedProvider struct {
	responses []model.Message
	err       error
	calls     int
	seen      [][]model.Message
}

func (p *scriptedProvider) next(messages []model.Message) (model.Message, error) {
	p.calls++
	p.seen = append(p.seen, append([]model.Message(nil), messages...))
	if p.err != nil {
		return model.Message{}, p.err
	}
	if len(p.responses) == 0 {
		return model.Message{Role: model.RoleAssistant, Content: "out of script"}, nil
	}
	resp := p.responses[0]
	if len(p.responses) > 1 {
		p.responses = p.responses[1:]
	}
	return resp, nil
}

func (p *scriptedProvider) Complete(_ context.Context, messages []model.Message) (model.Message, error) {
	return p.next(messages)
}

func (p *scriptedProvider) CompleteWithTools(_ context.Context, messages []model.Message, _ []model.ToolDefinition) (model.Message, error) {
	return p.next(messages)
}

func (p *scriptedProvider) Stream(_ context.Context, messages []model.Message) (*model.Stream, error) {
	msg, err := p.next(messages)
	if err != nil {
		return nil, err
	}
	return model.NewTextStream(msg.Content), nil
}

func (p *scriptedProvider) StreamWithTools(ctx context.Context, messages []model.Message, _ []model.ToolDefinition) (*model.Stream, error) {
	return p.Stream(ctx, messages)
}

// fakeTools implements ToolClient in memory.
type fakeTools struct {
	defs        []model.ToolDefinition
	invocations []string
	result      string
	err         error
}

func (f *fakeTools) HasTools() bool { return len(f.defs) > 0 }

func (f *fakeTools) ToolDefinitions() []model.ToolDefinition { return f.defs }

func (f *fakeTools) Invoke(_ context.Context, name string, _ map[string]any) (string, error) {
	f.invocations = append(f.invocations, name)
	if f.err != nil {
		return "", f.err
	}
	return f.result, nil
}

func listDirTools() *fakeTools {
	return &fakeTools{
		defs: []model.ToolDefinition{{
			Name:        "list_directory",
			Description: "List a directory",
			InputSchema: map[string]any{"type": "object"},
		}},
		result: "file1\nfile2",
	}
}

func TestPlainQuestionSkipsToolMachinery(t *testing.T) {
	provider := &scriptedProvider{
		responses: []model.Message{{Role: model.RoleAssistant, Content: "4"}},
	}
	ag, err := New(Config{Provider: provider})
	require.NoError(t, err)

	got, err := ag.Complete(context.Background(), []model.Message{
		{Role: model.RoleUser, Content: "What is 2+2?"},
	})
	require.NoError(t, err)
	require.Equal(t, "4", got.Content)
	require.Equal(t, 1, provider.calls)
}

func TestToolLoopExecutesAndReasks(t *testing.T) {
	provider := &scriptedProvider{
		responses: []model.Message{
			{Role: model.RoleAssistant, ToolCalls: []model.ToolCall{
				{ID: "call_1", Name: "list_directory", Arguments: map[string]any{"path": "/tmp"}},
			}},
			{Role: model.RoleAssistant, Content: "The directory holds file1 and file2."},
		},
	}
	tools := listDirTools()
	ag, err := New(Config{Provider: provider, Tools: tools})
	require.NoError(t, err)

	got, err := ag.Complete(context.Background(), []model.Message{
		{Role: model.RoleUser, Content: "What is in /tmp?"},
	})
	require.NoError(t, err)
	require.Equal(t, "The directory holds file1 and file2.", got.Content)
	require.Equal(t, 2, provider.calls)
	require.Equal(t, []string{"list_directory"}, tools.invocations)

	// The second provider call must see the assistant's tool request plus a
	// tool result echoing the call ID.
	second := provider.seen[1]
	require.Len(t, second, 3)
	require.Equal(t, model.RoleAssistant, second[1].Role)
	require.Len(t, second[1].ToolCalls, 1)
	toolMsg := second[2]
	require.Equal(t, model.RoleTool, toolMsg.Role)
	require.Equal(t, "call_1", toolMsg.ToolCallID)
	require.Equal(t, "file1\nfile2", toolMsg.Content)
}

func TestToolLoopHitsIterationCeiling(t *testing.T) {
	// A model that never stops asking for tools.
	provider := &scriptedProvider{
		responses: []model.Message{{Role: model.RoleAssistant, ToolCalls: []model.ToolCall{
			{ID: "call_x", Name: "list_directory", Arguments: map[string]any{}},
		}}},
	}
	tools := listDirTools()
	ag, err := New(Config{Provider: provider, Tools: tools})
	require.NoError(t, err)

	_, err = ag.Complete(context.Background(), []model.Message{
		{Role: model.RoleUser, Content: "loop forever"},
	})
	require.ErrorIs(t, err, ErrMaxIterations)

	var agErr *Error
	require.ErrorAs(t, err, &agErr)
	require.Equal(t, SubsystemLoop, agErr.Subsystem)
	require.Equal(t, 10, provider.calls)
	require.Len(t, tools.invocations, 10)
}

func TestToolFailureAbortsTurn(t *testing.T) {
	provider := &scriptedProvider{
		responses: []model.Message{
			{Role: model.RoleAssistant, ToolCalls: []model.ToolCall{
				{ID: "call_1", Name: "list_directory", Arguments: map[string]any{}},
			}},
			{Role: model.RoleAssistant, Content: "never reached"},
		},
	}
	tools := listDirTools()
	tools.err = fmt.Errorf("server exploded")
	ag, err := New(Config{Provider: provider, Tools: tools})
	require.NoError(t, err)

	_, err = ag.Complete(context.Background(), []model.Message{
		{Role: model.RoleUser, Content: "go"},
	})
	var agErr *Error
	require.ErrorAs(t, err, &agErr)
	require.Equal(t, SubsystemTool, agErr.Subsystem)
	require.Equal(t, 1, provider.calls)
	require.Len(t, tools.invocations, 1)
}

func TestProviderFailureIsClassified(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("connection refused")}
	ag, err := New(Config{Provider: provider})
	require.NoError(t, err)

	_, err = ag.Complete(context.Background(), []model.Message{
		{Role: model.RoleUser, Content: "hi"},
	})
	var agErr *Error
	require.ErrorAs(t, err, &agErr)
	require.Equal(t, SubsystemProvider, agErr.Subsystem)
}

func TestStreamWithoutToolsIsNative(t *testing.T) {
	provider := &scriptedProvider{
		responses: []model.Message{{Role: model.RoleAssistant, Content: "streamed answer"}},
	}
	ag, err := New(Config{Provider: provider})
	require.NoError(t, err)

	st, err := ag.Stream(context.Background(), []model.Message{
		{Role: model.RoleUser, Content: "hi"},
	})
	require.NoError(t, err)
	text, err := st.Collect()
	require.NoError(t, err)
	require.Equal(t, "streamed answer", text)
}

func TestStreamAfterToolsDeliversFinalAnswer(t *testing.T) {
	provider := &scriptedProvider{
		responses: []model.Message{
			{Role: model.RoleAssistant, ToolCalls: []model.ToolCall{
				{ID: "call_1", Name: "list_directory", Arguments: map[string]any{}},
			}},
			{Role: model.RoleAssistant, Content: "file1 and file2"},
		},
	}
	tools := listDirTools()
	ag, err := New(Config{Provider: provider, Tools: tools})
	require.NoError(t, err)

	st, err := ag.Stream(context.Background(), []model.Message{
		{Role: model.RoleUser, Content: "what is in /tmp?"},
	})
	require.NoError(t, err)

	var events []model.StreamEvent
	for evt := range st.Events() {
		events = append(events, evt)
	}
	require.Len(t, events, 2)
	require.Equal(t, model.EventTextDelta, events[0].Type)
	require.Equal(t, "file1 and file2", events[0].Text)
	require.Equal(t, model.EventDone, events[1].Type)
	require.Equal(t, []string{"list_directory"}, tools.invocations)
}

func TestHistoryIsNotMutated(t *testing.T) {
	provider := &scriptedProvider{
		responses: []model.Message{
			{Role: model.RoleAssistant, ToolCalls: []model.ToolCall{
				{ID: "call_1", Name: "list_directory", Arguments: map[string]any{}},
			}},
			{Role: model.RoleAssistant, Content: "done"},
		},
	}
	ag, err := New(Config{Provider: provider, Tools: listDirTools()})
	require.NoError(t, err)

	history := []model.Message{{Role: model.RoleUser, Content: "go"}}
	_, err = ag.Complete(context.Background(), history)
	require.NoError(t, err)
	require.Len(t, history, 1, "intermediate messages must stay internal to the turn")
}

func TestNewRequiresProvider(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

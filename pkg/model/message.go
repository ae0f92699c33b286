package model

// Role identifies the author of a conversational turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message represents a single conversational turn exchanged with a model.
// ToolCalls is only ever populated on assistant messages; ToolCallID is set
// exactly when Role is RoleTool and echoes the ID of the call it answers.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// ToolCall captures a tool invocation emitted by an assistant message. ID is
// opaque and vendor-assigned; it must be returned unchanged in the matching
// tool message so the vendor can correlate the result.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolDefinition is a provider-agnostic description of a callable tool.
// InputSchema holds a JSON-Schema object describing the tool's arguments.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

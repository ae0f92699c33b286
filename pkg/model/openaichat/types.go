package openaichat

const (
	openAIBaseURL   = "https://api.openai.com/v1"
	deepSeekBaseURL = "https://api.deepseek.com"

	chatCompletionsPath = "/chat/completions"

	defaultOpenAIModel   = "gpt-4o"
	defaultDeepSeekModel = "deepseek-chat"

	defaultMaxTokens = 4096
	defaultTimeout   = 120 // seconds

	defaultAuthHeader = "Authorization"
	defaultAuthScheme = "Bearer"

	doneSentinel = "[DONE]"
)

// ChatRequest follows the OpenAI-compatible chat-completion contract. System
// messages stay inline in Messages, in their original position.
type ChatRequest struct {
	Model     string        `json:"model"`
	Messages  []ChatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
	Tools     []ToolParam   `json:"tools,omitempty"`
	Stream    bool          `json:"stream,omitempty"`
}

// ChatMessage is a single wire-level turn. ToolCallID is set on tool-role
// messages to correlate results with the originating call.
type ChatMessage struct {
	Role       string          `json:"role"`
	Content    string          `json:"content"`
	ToolCalls  []ToolCallParam `json:"tool_calls,omitempty"`
	ToolCallID string          `json:"tool_call_id,omitempty"`
}

// ToolParam wraps a function schema the way the wire format nests it.
type ToolParam struct {
	Type     string      `json:"type"`
	Function FunctionDef `json:"function"`
}

// FunctionDef carries the function name, description, and JSON-Schema
// parameters.
type FunctionDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolCallParam is a tool invocation as it appears on assistant messages.
type ToolCallParam struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall holds the function name and its JSON-encoded arguments string.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatResponse is the batch response envelope; only the first choice is used.
type ChatResponse struct {
	Choices []Choice `json:"choices"`
}

// Choice pairs a response message with its finish reason.
type Choice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ErrorResponse models the error payload shared by both vendor instances.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody drills into the API error object.
type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ChunkResponse is one streaming fragment.
type ChunkResponse struct {
	Choices []ChunkChoice `json:"choices"`
}

// ChunkChoice carries the delta for one choice index.
type ChunkChoice struct {
	Index        int        `json:"index"`
	Delta        ChunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason"`
}

// ChunkDelta holds the incremental payload. The first fragment of a response
// often carries only role metadata with an empty content string.
type ChunkDelta struct {
	Role      string          `json:"role,omitempty"`
	Content   string          `json:"content,omitempty"`
	ToolCalls []ChunkToolCall `json:"tool_calls,omitempty"`
}

// ChunkToolCall is a tool-call fragment; the arguments string arrives split
// across fragments sharing the same index.
type ChunkToolCall struct {
	Index    int          `json:"index"`
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type,omitempty"`
	Function FunctionCall `json:"function"`
}

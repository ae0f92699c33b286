package mcp

import (
	"errors"
	"fmt"
)

// ErrUnknownTool marks an invocation of a name absent from the registry.
// This is a caller contract violation, not a retryable fault.
var ErrUnknownTool = errors.New("unknown tool")

// ToolError wraps a tool-server failure with the tool name that triggered it.
type ToolError struct {
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

package agent

import (
	"errors"
	"fmt"
)

// Subsystem tags which collaborator failed during a turn, so callers can
// tell a model-backend failure from a tool failure from loop exhaustion
// without inspecting nested causes.
type Subsystem string

const (
	SubsystemProvider Subsystem = "provider"
	SubsystemTool     Subsystem = "tool"
	SubsystemLoop     Subsystem = "loop"
)

// ErrMaxIterations is the safety valve against a model that never stops
// requesting tools.
var ErrMaxIterations = errors.New("tool loop exceeded maximum iterations")

// Error wraps any provider or tool error that aborted a turn.
type Error struct {
	Subsystem Subsystem
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("agent: %s: %v", e.Subsystem, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

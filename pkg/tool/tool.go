package tool

import (
	"context"

	"github.com/nimec77/tandem/pkg/model"
)

// Tool is one locally executed capability. Implementations run in-process,
// unlike server-hosted tools which live behind the mcp package.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]any
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// Client is the invocation surface shared by every tool source: the local
// registry, the MCP client, and the mux that joins them.
type Client interface {
	HasTools() bool
	ToolDefinitions() []model.ToolDefinition
	Invoke(ctx context.Context, name string, args map[string]any) (string, error)
}

package tool

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nimec77/tandem/pkg/model"
)

// Registry keeps the mapping between tool names and local implementations.
// It satisfies the same invocation surface as the MCP client, so the
// orchestrator treats both identically.
type Registry struct {
	mu        sync.RWMutex
	tools     map[string]Tool
	validator Validator
}

var _ Client = (*Registry)(nil)

// NewRegistry creates a registry backed by the default validator.
func NewRegistry() *Registry {
	return &Registry{
		tools:     make(map[string]Tool),
		validator: DefaultValidator{},
	}
}

// Register inserts a tool when its name is not in use.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return fmt.Errorf("tool is nil")
	}
	name := t.Name()
	if name == "" {
		return fmt.Errorf("tool name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}

	r.tools[name] = t
	return nil
}

// SetValidator swaps the validator instance used before execution.
func (r *Registry) SetValidator(v Validator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validator = v
}

// HasTools reports whether anything is registered.
func (r *Registry) HasTools() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools) > 0
}

// ToolDefinitions produces the registry flattened into provider-facing
// definitions, sorted by name.
func (r *Registry) ToolDefinitions() []model.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]model.ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Invoke runs a registered tool after schema validation.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	r.mu.RLock()
	t, exists := r.tools[name]
	validator := r.validator
	r.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("tool %s not found", name)
	}
	if validator != nil {
		if err := validator.Validate(args, t.InputSchema()); err != nil {
			return "", fmt.Errorf("tool %s validation failed: %w", name, err)
		}
	}
	return t.Execute(ctx, args)
}

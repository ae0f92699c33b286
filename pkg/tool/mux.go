package tool

import (
	"context"
	"fmt"

	"github.com/nimec77/tandem/pkg/model"
)

// Mux joins several tool sources behind one invocation surface, letting
// local builtins and server-hosted tools coexist in a single turn. Names
// resolve to the earliest source that advertises them.
type Mux struct {
	clients []Client
}

var _ Client = (*Mux)(nil)

// NewMux composes clients in priority order. Nil entries are skipped.
func NewMux(clients ...Client) *Mux {
	m := &Mux{}
	for _, c := range clients {
		if c != nil {
			m.clients = append(m.clients, c)
		}
	}
	return m
}

// HasTools reports whether any source advertises tools.
func (m *Mux) HasTools() bool {
	for _, c := range m.clients {
		if c.HasTools() {
			return true
		}
	}
	return false
}

// ToolDefinitions merges all sources; on a name collision the earlier source
// wins and the later definition is dropped.
func (m *Mux) ToolDefinitions() []model.ToolDefinition {
	seen := map[string]bool{}
	var defs []model.ToolDefinition
	for _, c := range m.clients {
		for _, def := range c.ToolDefinitions() {
			if seen[def.Name] {
				continue
			}
			seen[def.Name] = true
			defs = append(defs, def)
		}
	}
	return defs
}

// Invoke routes to the first source that advertises the name.
func (m *Mux) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	for _, c := range m.clients {
		for _, def := range c.ToolDefinitions() {
			if def.Name == name {
				return c.Invoke(ctx, name, args)
			}
		}
	}
	return "", fmt.Errorf("tool %s not found", name)
}

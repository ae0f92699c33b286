package tool

import (
	"context"
	"strings"
	"testing"
)

type echoTool struct {
	name   string
	schema map[string]any
}

func (t *echoTool) Name() string        { return t.name }
func (t *echoTool) Description() string { return "echo" }

func (t *echoTool) InputSchema() map[string]any {
	if t.schema != nil {
		return t.schema
	}
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func (t *echoTool) Execute(_ context.Context, args map[string]any) (string, error) {
	if v, ok := args["value"].(string); ok {
		return v, nil
	}
	return "echo", nil
}

func TestRegistryRegisterAndInvoke(t *testing.T) {
	r := NewRegistry()
	if r.HasTools() {
		t.Fatal("empty registry should report no tools")
	}
	if err := r.Register(&echoTool{name: "echo"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&echoTool{name: "echo"}); err == nil {
		t.Fatal("duplicate registration must fail")
	}

	out, err := r.Invoke(context.Background(), "echo", map[string]any{"value": "hi"})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if out != "hi" {
		t.Fatalf("unexpected output: %q", out)
	}

	if _, err := r.Invoke(context.Background(), "missing", nil); err == nil {
		t.Fatal("unknown tool must fail")
	}
}

func TestRegistryValidatesArguments(t *testing.T) {
	r := NewRegistry()
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"value": map[string]any{"type": "string"},
		},
		"required": []any{"value"},
	}
	if err := r.Register(&echoTool{name: "strict", schema: schema}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := r.Invoke(context.Background(), "strict", nil); err == nil ||
		!strings.Contains(err.Error(), "missing required field") {
		t.Fatalf("expected required-field failure, got %v", err)
	}
	if _, err := r.Invoke(context.Background(), "strict", map[string]any{"value": 7}); err == nil ||
		!strings.Contains(err.Error(), "expected string") {
		t.Fatalf("expected type failure, got %v", err)
	}
	if _, err := r.Invoke(context.Background(), "strict", map[string]any{"value": "ok"}); err != nil {
		t.Fatalf("valid arguments should pass: %v", err)
	}
}

func TestRegistryDefinitionsSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(&echoTool{name: name}); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}
	defs := r.ToolDefinitions()
	if len(defs) != 3 || defs[0].Name != "alpha" || defs[2].Name != "zeta" {
		t.Fatalf("definitions not sorted: %+v", defs)
	}
}

func TestMuxRoutesByPriority(t *testing.T) {
	first := NewRegistry()
	if err := first.Register(&echoTool{name: "shared"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	second := NewRegistry()
	if err := second.Register(&echoTool{name: "shared"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := second.Register(&echoTool{name: "only_second"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	m := NewMux(first, nil, second)
	if !m.HasTools() {
		t.Fatal("mux should report tools")
	}

	defs := m.ToolDefinitions()
	if len(defs) != 2 {
		t.Fatalf("collision should keep one definition: %+v", defs)
	}

	if _, err := m.Invoke(context.Background(), "only_second", nil); err != nil {
		t.Fatalf("routing to later source failed: %v", err)
	}
	if _, err := m.Invoke(context.Background(), "nowhere", nil); err == nil {
		t.Fatal("unknown tool must fail")
	}
}

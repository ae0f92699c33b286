package model

import (
	"context"
	"strings"
	"testing"
)

type nopProvider struct{}

func (nopProvider) Complete(context.Context, []Message) (Message, error) {
	return Message{Role: RoleAssistant}, nil
}
func (nopProvider) CompleteWithTools(context.Context, []Message, []ToolDefinition) (Message, error) {
	return Message{Role: RoleAssistant}, nil
}
func (nopProvider) Stream(context.Context, []Message) (*Stream, error) {
	return NewTextStream(""), nil
}
func (nopProvider) StreamWithTools(context.Context, []Message, []ToolDefinition) (*Stream, error) {
	return NewTextStream(""), nil
}

func TestFactoryBuildsRegisteredProvider(t *testing.T) {
	f := NewFactory()
	var gotCfg Config
	f.Register("stub", func(cfg Config) (Provider, error) {
		gotCfg = cfg
		return nopProvider{}, nil
	})

	p, err := f.New(Config{Provider: "stub", Model: "stub-1", APIKey: "key"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if p == nil {
		t.Fatal("expected a provider instance")
	}
	if gotCfg.Model != "stub-1" || gotCfg.APIKey != "key" {
		t.Fatalf("config not passed through: %+v", gotCfg)
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	f := NewFactory()
	if _, err := f.New(Config{Provider: "nope"}); err == nil || !strings.Contains(err.Error(), "not registered") {
		t.Fatalf("expected unregistered provider error, got %v", err)
	}
	if _, err := f.New(Config{}); err == nil {
		t.Fatal("expected error for missing provider name")
	}
}

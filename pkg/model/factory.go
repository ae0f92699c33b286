package model

import (
	"fmt"
	"net/http"
	"sync"
)

// Config captures the settings shared by all vendor adapters. Zero values
// fall back to each adapter's defaults (endpoint, model, token budget).
type Config struct {
	Provider   string
	Model      string
	BaseURL    string
	APIKey     string
	MaxTokens  int
	HTTPClient *http.Client
}

// Builder constructs a Provider from a Config.
type Builder func(cfg Config) (Provider, error)

// Factory holds the registered provider builders and creates adapters on
// demand by name.
type Factory struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewFactory constructs an empty factory.
func NewFactory() *Factory {
	return &Factory{builders: make(map[string]Builder)}
}

// Register attaches or replaces the builder for a provider name.
func (f *Factory) Register(name string, b Builder) {
	if name == "" || b == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.builders == nil {
		f.builders = map[string]Builder{}
	}
	f.builders[name] = b
}

// New builds a provider through the builder registered for cfg.Provider.
func (f *Factory) New(cfg Config) (Provider, error) {
	if cfg.Provider == "" {
		return nil, fmt.Errorf("model provider not specified")
	}

	f.mu.RLock()
	builder := f.builders[cfg.Provider]
	f.mu.RUnlock()
	if builder == nil {
		return nil, fmt.Errorf("model provider %q is not registered", cfg.Provider)
	}

	return builder(cfg)
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration for the tandem CLI. Every field
// can be set in the YAML file and overridden by flags or environment.
type Config struct {
	Provider     string    `yaml:"provider"`
	Model        string    `yaml:"model"`
	MaxTokens    int       `yaml:"max_tokens"`
	SystemPrompt string    `yaml:"system_prompt"`
	MCPConfig    string    `yaml:"mcp_config"`
	BuiltinTools bool      `yaml:"builtin_tools"`
	HistorySize  int       `yaml:"history_size"`
	Verbose      bool      `yaml:"verbose"`
	API          APIConfig `yaml:"api"`
}

// APIConfig groups the per-vendor credentials and endpoint overrides.
type APIConfig struct {
	AnthropicKey string `yaml:"anthropic_key"`
	OpenAIKey    string `yaml:"openai_key"`
	DeepSeekKey  string `yaml:"deepseek_key"`
	BaseURL      string `yaml:"base_url"`
}

// Default returns the configuration used when no file or flags are given.
func Default() *Config {
	return &Config{
		Provider:    "anthropic",
		MaxTokens:   4096,
		HistorySize: 100,
	}
}

// Load overlays the YAML file at path onto the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the selected provider is known and has a credential.
func (c *Config) Validate() error {
	switch c.Provider {
	case "anthropic", "openai", "deepseek":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.APIKey() == "" {
		return fmt.Errorf("no API key configured for provider %q", c.Provider)
	}
	return nil
}

// APIKey returns the credential for the selected provider.
func (c *Config) APIKey() string {
	switch c.Provider {
	case "anthropic":
		return c.API.AnthropicKey
	case "openai":
		return c.API.OpenAIKey
	case "deepseek":
		return c.API.DeepSeekKey
	default:
		return ""
	}
}

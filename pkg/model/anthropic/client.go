package anthropic

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/nimec77/tandem/pkg/model"
)

// Ensure Client satisfies the provider contract at compile time.
var _ model.Provider = (*Client)(nil)

// Client speaks the Anthropic Messages API. It holds only immutable
// configuration plus a reusable HTTP client and is safe to share across
// concurrently executing turns.
type Client struct {
	client    *http.Client
	baseURL   string
	model     string
	maxTokens int
	headers   map[string]string
}

// New builds an Anthropic-backed provider from cfg. The API key is required;
// endpoint, model, and token budget fall back to defaults.
func New(cfg model.Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("anthropic api key is required")
	}

	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		modelName = defaultModel
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout * time.Second}
	}

	return &Client{
		client:    client,
		baseURL:   sanitizeBaseURL(cfg.BaseURL),
		model:     modelName,
		maxTokens: maxTokens,
		headers:   buildDefaultHeaders(apiKey),
	}, nil
}

func sanitizeBaseURL(base string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return defaultBaseURL
	}
	return trimmed
}

func buildDefaultHeaders(apiKey string) map[string]string {
	return map[string]string{
		"X-API-Key":         apiKey,
		"Anthropic-Version": anthropicVersion,
		"Content-Type":      "application/json",
		"User-Agent":        userAgent,
	}
}

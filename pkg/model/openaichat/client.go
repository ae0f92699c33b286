package openaichat

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/nimec77/tandem/pkg/model"
)

// Ensure Client satisfies the provider contract at compile time.
var _ model.Provider = (*Client)(nil)

// Config parameterizes the shared chat-completion implementation. The two
// vendor instances differ only in endpoint, credential header, and default
// model; everything else is identical wire logic.
type Config struct {
	Vendor     string
	BaseURL    string
	APIKey     string
	Model      string
	MaxTokens  int
	AuthHeader string // defaults to "Authorization"
	AuthScheme string // defaults to "Bearer"; empty scheme sends the bare key
	HTTPClient *http.Client
}

// Client speaks the OpenAI-compatible chat-completion wire format. It holds
// only immutable configuration plus a reusable HTTP client and is safe to
// share across concurrently executing turns.
type Client struct {
	client     *http.Client
	vendor     string
	endpoint   string
	model      string
	maxTokens  int
	authHeader string
	authValue  string
}

// New builds a chat-completion client from cfg. Vendor, BaseURL, APIKey, and
// Model are required.
func New(cfg Config) (*Client, error) {
	if cfg.Vendor == "" {
		return nil, errors.New("openaichat: vendor name is required")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New(cfg.Vendor + " api key is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("openaichat: base URL is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("openaichat: model name is required")
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	authHeader := cfg.AuthHeader
	if authHeader == "" {
		authHeader = defaultAuthHeader
	}
	authValue := apiKey
	scheme := cfg.AuthScheme
	if cfg.AuthHeader == "" && scheme == "" {
		scheme = defaultAuthScheme
	}
	if scheme != "" {
		authValue = scheme + " " + apiKey
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout * time.Second}
	}

	return &Client{
		client:     client,
		vendor:     cfg.Vendor,
		endpoint:   baseURL + chatCompletionsPath,
		model:      cfg.Model,
		maxTokens:  maxTokens,
		authHeader: authHeader,
		authValue:  authValue,
	}, nil
}

// NewOpenAI instantiates the shared implementation against the OpenAI
// endpoint. It has the model.Builder signature for factory registration.
func NewOpenAI(cfg model.Config) (model.Provider, error) {
	return New(Config{
		Vendor:     "openai",
		BaseURL:    firstNonEmpty(cfg.BaseURL, openAIBaseURL),
		APIKey:     cfg.APIKey,
		Model:      firstNonEmpty(cfg.Model, defaultOpenAIModel),
		MaxTokens:  cfg.MaxTokens,
		HTTPClient: cfg.HTTPClient,
	})
}

// NewDeepSeek instantiates the shared implementation against the DeepSeek
// endpoint, which exposes the same wire format.
func NewDeepSeek(cfg model.Config) (model.Provider, error) {
	return New(Config{
		Vendor:     "deepseek",
		BaseURL:    firstNonEmpty(cfg.BaseURL, deepSeekBaseURL),
		APIKey:     cfg.APIKey,
		Model:      firstNonEmpty(cfg.Model, defaultDeepSeekModel),
		MaxTokens:  cfg.MaxTokens,
		HTTPClient: cfg.HTTPClient,
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

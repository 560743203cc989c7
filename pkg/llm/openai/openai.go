// Package openai provides an llm.Provider for OpenAI-compatible chat
// completion APIs.
//
// The same implementation serves both backends: OpenAI itself and Gemini
// through its OpenAI-compatible endpoint.
//
// Example usage:
//
//	gemini := openai.NewProvider(
//	    openai.WithName("Gemini"),
//	    openai.WithBaseURL(openai.GeminiBaseURL),
//	    openai.WithModel(openai.GeminiModel),
//	)
//
//	text, err := gemini.Complete(ctx, "Say hello", os.Getenv("GEMINI_API_KEY"))
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/entrhq/sectionforge/pkg/llm"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultBaseURL is the default OpenAI API base URL
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is the model used when none is configured
	DefaultModel = "gpt-4o"

	// GeminiBaseURL is Gemini's OpenAI-compatible endpoint
	GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

	// GeminiModel is the default Gemini model
	GeminiModel = "gemini-flash-latest"
)

// ErrEmptyResponse is returned when the API answers without any choice.
var ErrEmptyResponse = errors.New("provider returned no choices")

// Provider implements llm.Provider on the openai-go SDK.
type Provider struct {
	name       string
	baseURL    string
	model      string
	httpClient *http.Client
}

var _ llm.Provider = (*Provider)(nil)

// ProviderOption is a function that configures a Provider.
type ProviderOption func(*Provider)

// WithModel sets the model to use for completions.
func WithModel(model string) ProviderOption {
	return func(p *Provider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithBaseURL sets a custom base URL for OpenAI-compatible APIs.
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		if baseURL != "" {
			p.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets the HTTP client used for API requests.
func WithHTTPClient(c *http.Client) ProviderOption {
	return func(p *Provider) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// WithName sets the display name used in logs and errors.
func WithName(name string) ProviderOption {
	return func(p *Provider) {
		p.name = name
	}
}

// NewProvider creates a Provider. Without options it targets OpenAI's gpt-4o.
func NewProvider(opts ...ProviderOption) *Provider {
	p := &Provider{
		name:       "OpenAI",
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Complete sends prompt as a single user message and returns the content of
// the first choice. The SDK's automatic retries are disabled.
func (p *Provider) Complete(ctx context.Context, prompt, apiKey string) (string, error) {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(p.baseURL),
		option.WithHTTPClient(p.httpClient),
		option.WithMaxRetries(0),
	)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: %w", p.name, ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

// Name returns the display name.
func (p *Provider) Name() string {
	return p.name
}

// Model returns the model name being used.
func (p *Provider) Model() string {
	return p.model
}

// BaseURL returns the base URL being used.
func (p *Provider) BaseURL() string {
	return p.baseURL
}

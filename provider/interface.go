// Package provider implements model.Provider for the supported LLM backends.
//
// Every adapter translates the provider-agnostic conversation log into its
// wire format, performs one non-streaming round-trip, and translates the
// reply back into ordered model.OutputItem values. Adapters that own a remote
// file store also implement model.FileStore.
//
// # Variants
//
//   - OpenAIProvider uses the OpenAI Responses API and Files API
//   - GrokProvider uses xAI's chat completions endpoint and Files API
//   - AnthropicProvider uses the Anthropic Messages API
//   - OllamaProvider uses a local Ollama server
//
// # Usage
//
//	p, err := provider.NewProvider(provider.Config{
//	    Type:   provider.ProviderTypeOpenAI,
//	    Model:  "gpt-5-mini",
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	})
//	if err != nil {
//	    // handle error
//	}
//	items, err := p.Send(ctx, messages)
package provider

import (
	"net/http"
	"time"
)

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOpenAI    ProviderType = "openai"
	ProviderTypeGrok      ProviderType = "grok"
	ProviderTypeAnthropic ProviderType = "anthropic"
	ProviderTypeOllama    ProviderType = "ollama"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // unused for Ollama

	// RequestTimeout bounds a single round-trip. Zero means no limit beyond
	// the caller's context.
	RequestTimeout time.Duration

	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client
}

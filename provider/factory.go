package provider

import (
	"fmt"

	"teros/model"
)

// NewProvider creates the provider selected by cfg.Type.
//
// Returns an error if the type is unknown or the provider-specific
// constructor rejects the configuration (for example a missing API key).
func NewProvider(cfg Config) (model.Provider, error) {
	switch cfg.Type {
	case ProviderTypeOpenAI:
		return NewOpenAIProvider(cfg)
	case ProviderTypeGrok:
		return NewGrokProvider(cfg)
	case ProviderTypeAnthropic:
		return NewAnthropicProvider(cfg)
	case ProviderTypeOllama:
		return NewOllamaProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

// MapProviderIDToType converts a config provider id to a ProviderType.
//
// "xai" is accepted as an alias for grok. Unknown ids are passed through and
// rejected by NewProvider.
func MapProviderIDToType(id string) ProviderType {
	switch id {
	case "openai":
		return ProviderTypeOpenAI
	case "grok", "xai":
		return ProviderTypeGrok
	case "anthropic":
		return ProviderTypeAnthropic
	case "ollama":
		return ProviderTypeOllama
	default:
		return ProviderType(id)
	}
}

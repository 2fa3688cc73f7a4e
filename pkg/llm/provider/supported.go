package provider

import (
	"fmt"

	"github.com/papercomputeco/aiterm/pkg/llm/provider/anthropic"
	"github.com/papercomputeco/aiterm/pkg/llm/provider/gemini"
	"github.com/papercomputeco/aiterm/pkg/llm/provider/ollama"
	"github.com/papercomputeco/aiterm/pkg/llm/provider/openai"
)

// Supported provider type constants
const (
	Gemini    = "gemini"
	OpenAI    = "openai"
	Ollama    = "ollama"
	Anthropic = "anthropic"
)

// Default is the provider used when none is configured.
const Default = Gemini

// SupportedProviders returns the list of all supported provider type names.
func SupportedProviders() []string {
	return []string{Gemini, OpenAI, Ollama, Anthropic}
}

// New creates a new Provider instance for the given provider type.
// Returns an error if the provider type is not recognized.
func New(providerType string) (Provider, error) {
	switch providerType {
	case Gemini:
		return gemini.New(), nil
	case OpenAI:
		return openai.New(), nil
	case Ollama:
		return ollama.New(), nil
	case Anthropic:
		return anthropic.New(), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %q (supported: %v)", providerType, SupportedProviders())
	}
}

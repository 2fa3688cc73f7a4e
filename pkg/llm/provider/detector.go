package provider

import (
	"github.com/papercomputeco/aiterm/pkg/llm/provider/anthropic"
	"github.com/papercomputeco/aiterm/pkg/llm/provider/gemini"
	"github.com/papercomputeco/aiterm/pkg/llm/provider/ollama"
	"github.com/papercomputeco/aiterm/pkg/llm/provider/openai"
)

// Detector picks a provider for a response payload of unknown origin, such as
// the raw body a relay mirrors back from whichever upstream it is wired to.
type Detector struct {
	providers []Provider
}

// NewDetector creates a new Detector with the default set of providers.
// Providers are checked in order: Gemini, OpenAI, Anthropic, then Ollama.
func NewDetector() *Detector {
	return &Detector{
		providers: []Provider{
			gemini.New(),
			openai.New(),
			anthropic.New(),
			ollama.New(),
		},
	}
}

// Detect returns the first provider that reports it can handle the payload.
// The boolean is false when no provider matches.
func (d *Detector) Detect(payload []byte) (Provider, bool) {
	for _, p := range d.providers {
		if p.CanHandle(payload) {
			return p, true
		}
	}
	return nil, false
}

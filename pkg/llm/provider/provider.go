package provider

import (
	"net/http"

	"github.com/papercomputeco/aiterm/pkg/llm"
)

// Provider defines the interface for building and parsing one provider's
// generative-text API. Each implementation knows its endpoint layout, how a
// credential is attached and how the reply text is nested in the response.
type Provider interface {
	// Name returns the canonical provider name (e.g., "gemini", "openai", "ollama", "anthropic")
	Name() string

	// DefaultUpstream returns the base URL used when none is configured.
	DefaultUpstream() string

	// DefaultModel returns the model used when none is configured.
	DefaultModel() string

	// RequiresAPIKey reports whether requests must carry a credential.
	RequiresAPIKey() bool

	// Endpoint returns the full URL for a non-streaming generation call.
	Endpoint(upstream, model string) string

	// Authorize attaches the API key to an outgoing request.
	Authorize(req *http.Request, apiKey string)

	// CanHandle returns true if a response payload appears to come from this provider.
	CanHandle(payload []byte) bool

	// BuildRequest converts the internal request into the provider's wire format.
	BuildRequest(req *llm.ChatRequest) ([]byte, error)

	// ParseResponse converts a provider-specific response into the internal format.
	// A response without reply text parses successfully with an empty message.
	ParseResponse(payload []byte) (*llm.ChatResponse, error)
}

package client

import (
	"log/slog"
	"net/http"
	"time"
)

// DefaultRelayPath is the relay route the client posts to.
const DefaultRelayPath = "/api/chat"

// DefaultTimeout bounds one exchange. LLM responses can be slow.
const DefaultTimeout = 5 * time.Minute

// Config is the client-side configuration for both exchangers.
type Config struct {
	// RelayTarget is the relay base URL (e.g., "http://localhost:8080").
	// Empty means same-origin relative paths, which only make sense with a
	// custom HTTPClient transport.
	RelayTarget string

	// RelayPath is the relay chat route (default "/api/chat")
	RelayPath string

	// Provider names the provider API format. For the relay client it selects
	// the parser for mirrored provider responses (empty means detect); for the
	// direct client it selects the API to call (empty means gemini).
	Provider string

	// ProviderURL overrides the provider base URL for direct calls
	ProviderURL string

	// APIKey is the credential for direct provider calls
	APIKey string

	// ModelName overrides the provider's default model for direct calls
	ModelName string

	// SystemInstruction is sent with every direct call when set
	SystemInstruction string

	// HTTPClient overrides the HTTP client. Defaults to one with DefaultTimeout.
	HTTPClient *http.Client

	// Logger receives debug records for each exchange. Defaults to a no-op logger.
	Logger *slog.Logger
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: DefaultTimeout}
}

func (c Config) relayURL() string {
	path := c.RelayPath
	if path == "" {
		path = DefaultRelayPath
	}
	return c.RelayTarget + path
}

package relay

import (
	"errors"
	"fmt"
)

// Relay modes.
const (
	// ModeForward sends each message to the configured provider and mirrors
	// the provider's response.
	ModeForward = "forward"

	// ModeEcho answers every message locally with "AI response: <message>".
	ModeEcho = "echo"
)

// DefaultPath is the route the relay answers on.
const DefaultPath = "/api/chat"

// ErrUnknownMode is returned by New for a mode other than forward or echo.
var ErrUnknownMode = errors.New("unknown relay mode")

// Config is the relay server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// Path is the chat route (default "/api/chat")
	Path string

	// Mode is ModeForward (default) or ModeEcho
	Mode string

	// ProviderType selects the upstream API format (default "gemini")
	ProviderType string

	// UpstreamURL overrides the provider's base URL (e.g., "http://localhost:11434")
	UpstreamURL string

	// Model overrides the provider's default model
	Model string

	// SystemInstruction is sent alongside every message when set
	SystemInstruction string

	// Generation holds optional sampling settings for upstream requests
	Generation Generation

	// Keys supplies the server-held API key. It is consulted on every request
	// so a rotated key takes effect without a restart.
	Keys KeySource
}

// Generation is the optional sampling configuration applied to every
// upstream request. Nil fields are left to the provider.
type Generation struct {
	MaxTokens   *int
	Temperature *float64
}

// KeySource supplies the API key used for upstream calls. An empty key means
// no credential is configured.
type KeySource interface {
	APIKey() string
}

// StaticKey is a KeySource that always returns the same key.
type StaticKey string

// APIKey returns the key itself.
func (k StaticKey) APIKey() string { return string(k) }

func (c *Config) setDefaults() error {
	if c.Path == "" {
		c.Path = DefaultPath
	}
	if c.Mode == "" {
		c.Mode = ModeForward
	}
	if c.Mode != ModeForward && c.Mode != ModeEcho {
		return fmt.Errorf("%w: %q (supported: %s, %s)", ErrUnknownMode, c.Mode, ModeForward, ModeEcho)
	}
	return nil
}

package config

const (
	defaultRelayListen = ":8080"
	defaultRelayPath   = "/api/chat"
	defaultRelayMode   = "forward"
	defaultProvider    = "gemini"

	defaultClientRelayTarget = "http://localhost:8080"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values. Upstream and model
// stay empty so each provider's own defaults apply.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Relay: RelayConfig{
			Listen:   defaultRelayListen,
			Path:     defaultRelayPath,
			Mode:     defaultRelayMode,
			Provider: defaultProvider,
		},
		Client: ClientConfig{
			RelayTarget: defaultClientRelayTarget,
			RelayPath:   defaultRelayPath,
			Provider:    defaultProvider,
		},
	}
}

package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent aiterm configuration stored as config.toml
// in the .aiterm/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int          `toml:"version"`
	Relay   RelayConfig  `toml:"relay"`
	Client  ClientConfig `toml:"client"`
}

// RelayConfig holds relay server settings.
type RelayConfig struct {
	Listen            string `toml:"listen,omitempty"`
	Path              string `toml:"path,omitempty"`
	Mode              string `toml:"mode,omitempty"`
	Provider          string `toml:"provider,omitempty"`
	Upstream          string `toml:"upstream,omitempty"`
	Model             string `toml:"model,omitempty"`
	SystemInstruction string `toml:"system_instruction,omitempty"`

	// MaxTokens caps the reply length; 0 leaves it to the provider.
	MaxTokens int `toml:"max_tokens,omitempty"`

	// Temperature is sent only when set.
	Temperature *float64 `toml:"temperature,omitempty"`
}

// ClientConfig holds settings for "aiterm chat". RelayTarget is a full URL
// (scheme + host + port). Provider, Model and SystemInstruction apply to
// direct mode; Provider also selects the parser for relayed responses.
type ClientConfig struct {
	RelayTarget       string `toml:"relay_target,omitempty"`
	RelayPath         string `toml:"relay_path,omitempty"`
	Provider          string `toml:"provider,omitempty"`
	Model             string `toml:"model,omitempty"`
	SystemInstruction string `toml:"system_instruction,omitempty"`
	Direct            bool   `toml:"direct,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"relay.listen": {
		get: func(c *Config) string { return c.Relay.Listen },
		set: func(c *Config, v string) error { c.Relay.Listen = v; return nil },
	},
	"relay.path": {
		get: func(c *Config) string { return c.Relay.Path },
		set: func(c *Config, v string) error { c.Relay.Path = v; return nil },
	},
	"relay.mode": {
		get: func(c *Config) string { return c.Relay.Mode },
		set: func(c *Config, v string) error {
			if v != "forward" && v != "echo" {
				return fmt.Errorf("invalid value for relay.mode: %q (expected forward or echo)", v)
			}
			c.Relay.Mode = v
			return nil
		},
	},
	"relay.provider": {
		get: func(c *Config) string { return c.Relay.Provider },
		set: func(c *Config, v string) error { c.Relay.Provider = v; return nil },
	},
	"relay.upstream": {
		get: func(c *Config) string { return c.Relay.Upstream },
		set: func(c *Config, v string) error { c.Relay.Upstream = v; return nil },
	},
	"relay.model": {
		get: func(c *Config) string { return c.Relay.Model },
		set: func(c *Config, v string) error { c.Relay.Model = v; return nil },
	},
	"relay.system_instruction": {
		get: func(c *Config) string { return c.Relay.SystemInstruction },
		set: func(c *Config, v string) error { c.Relay.SystemInstruction = v; return nil },
	},
	"relay.max_tokens": {
		get: func(c *Config) string {
			if c.Relay.MaxTokens == 0 {
				return ""
			}
			return strconv.Itoa(c.Relay.MaxTokens)
		},
		set: func(c *Config, v string) error {
			n, err := ParseMaxTokens(v)
			if err != nil {
				return err
			}
			c.Relay.MaxTokens = 0
			if n != nil {
				c.Relay.MaxTokens = *n
			}
			return nil
		},
	},
	"relay.temperature": {
		get: func(c *Config) string {
			if c.Relay.Temperature == nil {
				return ""
			}
			return strconv.FormatFloat(*c.Relay.Temperature, 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			t, err := ParseTemperature(v)
			if err != nil {
				return err
			}
			c.Relay.Temperature = t
			return nil
		},
	},
	"client.relay_target": {
		get: func(c *Config) string { return c.Client.RelayTarget },
		set: func(c *Config, v string) error { c.Client.RelayTarget = v; return nil },
	},
	"client.relay_path": {
		get: func(c *Config) string { return c.Client.RelayPath },
		set: func(c *Config, v string) error { c.Client.RelayPath = v; return nil },
	},
	"client.provider": {
		get: func(c *Config) string { return c.Client.Provider },
		set: func(c *Config, v string) error { c.Client.Provider = v; return nil },
	},
	"client.model": {
		get: func(c *Config) string { return c.Client.Model },
		set: func(c *Config, v string) error { c.Client.Model = v; return nil },
	},
	"client.system_instruction": {
		get: func(c *Config) string { return c.Client.SystemInstruction },
		set: func(c *Config, v string) error { c.Client.SystemInstruction = v; return nil },
	},
	"client.direct": {
		get: func(c *Config) string { return strconv.FormatBool(c.Client.Direct) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for client.direct: %w", err)
			}
			c.Client.Direct = b
			return nil
		},
	},
}

// orderedKeys lists configKeys in TOML section order.
var orderedKeys = []string{
	"relay.listen",
	"relay.path",
	"relay.mode",
	"relay.provider",
	"relay.upstream",
	"relay.model",
	"relay.system_instruction",
	"relay.max_tokens",
	"relay.temperature",
	"client.relay_target",
	"client.relay_path",
	"client.provider",
	"client.model",
	"client.system_instruction",
	"client.direct",
}

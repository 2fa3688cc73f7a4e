package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --relay-target
// on both "aiterm chat" and "aiterm status").
type Flag struct {
	// Name is the long flag name (e.g. "upstream").
	Name string

	// Shorthand is the one-letter short flag (e.g. "u"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "relay.upstream").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag registry keys to Flag structs.
type FlagSet map[string]Flag

// Flag registry keys.
const (
	FlagListen            = "listen"
	FlagRelayPath         = "path"
	FlagMode              = "mode"
	FlagProvider          = "provider"
	FlagUpstream          = "upstream"
	FlagModel             = "model"
	FlagSystemInstruction = "system"
	FlagMaxTokens         = "max-tokens"
	FlagTemperature       = "temperature"

	FlagRelayTarget       = "relay-target"
	FlagClientRelayPath   = "relay-path"
	FlagClientProvider    = "client-provider"
	FlagClientModel       = "client-model"
	FlagClientInstruction = "client-system"
	FlagDirect            = "direct"
)

// RelayFlags are the flags of the relay server commands.
var RelayFlags = FlagSet{
	FlagListen:            {Name: "listen", Shorthand: "l", ViperKey: "relay.listen", Description: "Address for the relay to listen on"},
	FlagRelayPath:         {Name: "path", ViperKey: "relay.path", Description: "Route the relay answers chat requests on"},
	FlagMode:              {Name: "mode", ViperKey: "relay.mode", Description: "Relay mode: forward or echo"},
	FlagProvider:          {Name: "provider", Shorthand: "p", ViperKey: "relay.provider", Description: "Upstream provider type (gemini, openai, ollama, anthropic)"},
	FlagUpstream:          {Name: "upstream", Shorthand: "u", ViperKey: "relay.upstream", Description: "Upstream provider base URL (default: the provider's public API)"},
	FlagModel:             {Name: "model", Shorthand: "m", ViperKey: "relay.model", Description: "Model name (default: the provider's default model)"},
	FlagSystemInstruction: {Name: "system", ViperKey: "relay.system_instruction", Description: "System instruction sent with every message"},
	FlagMaxTokens:         {Name: "max-tokens", ViperKey: "relay.max_tokens", Description: "Maximum reply tokens (default: the provider's limit)"},
	FlagTemperature:       {Name: "temperature", ViperKey: "relay.temperature", Description: "Sampling temperature, 0 to 2 (default: the provider's)"},
}

// ClientFlags are the flags of commands that talk to a relay or provider.
var ClientFlags = FlagSet{
	FlagRelayTarget:       {Name: "relay-target", Shorthand: "r", ViperKey: "client.relay_target", Description: "Relay URL"},
	FlagClientRelayPath:   {Name: "relay-path", ViperKey: "client.relay_path", Description: "Relay chat route"},
	FlagClientProvider:    {Name: "provider", Shorthand: "p", ViperKey: "client.provider", Description: "Provider type for direct mode and relayed responses"},
	FlagClientModel:       {Name: "model", Shorthand: "m", ViperKey: "client.model", Description: "Model name for direct mode"},
	FlagClientInstruction: {Name: "system", ViperKey: "client.system_instruction", Description: "System instruction for direct mode"},
	FlagDirect:            {Name: "direct", ViperKey: "client.direct", Description: "Call the provider directly instead of the relay"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultBool returns the default bool value for a viper key from NewDefaultConfig.
func defaultBool(viperKey string) bool {
	v := viper.New()
	setViperDefaults(v)
	return v.GetBool(viperKey)
}

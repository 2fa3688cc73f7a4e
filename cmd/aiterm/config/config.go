// Package configcmder provides the config command for managing persistent
// aiterm configuration stored in the .aiterm/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent aiterm configuration.

Configuration is stored as config.toml in the .aiterm/ directory and provides
default values for command flags. CLI flags and AITERM_* environment variables
take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  relay.listen, relay.path, relay.mode, relay.provider, relay.upstream,
  relay.model, relay.system_instruction, relay.max_tokens, relay.temperature,
  client.relay_target, client.relay_path, client.provider, client.model,
  client.system_instruction, client.direct

Use subcommands to get, set, or list configuration values:
  aiterm config set <key> <value>    Set a configuration value
  aiterm config get <key>            Get a configuration value
  aiterm config list                 List all configuration values

Examples:
  aiterm config set relay.provider openai
  aiterm config set relay.mode echo
  aiterm config get client.relay_target
  aiterm config list`

const configShortDesc string = "Manage persistent aiterm configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

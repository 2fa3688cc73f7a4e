// Package aitermcmder
package aitermcmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/aiterm/cmd/aiterm/auth"
	chatcmder "github.com/papercomputeco/aiterm/cmd/aiterm/chat"
	configcmder "github.com/papercomputeco/aiterm/cmd/aiterm/config"
	initcmder "github.com/papercomputeco/aiterm/cmd/aiterm/init"
	servecmder "github.com/papercomputeco/aiterm/cmd/aiterm/serve"
	statuscmder "github.com/papercomputeco/aiterm/cmd/aiterm/status"
	versioncmder "github.com/papercomputeco/aiterm/cmd/version"
)

const aitermLongDesc string = `aiterm is a terminal-styled chat client for LLMs and the relay it talks to.

Run the relay and chat with it:
  aiterm serve         Run the relay server
  aiterm chat          Open the terminal chat UI
  aiterm chat --direct Chat with the provider without a relay`

const aitermShortDesc string = "aiterm - terminal LLM chat"

func NewAitermCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "aiterm",
		Short:         aitermShortDesc,
		Long:          aitermLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .aiterm/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}

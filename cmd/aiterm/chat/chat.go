// Package chatcmder provides the chat command: a terminal-styled chat UI that
// talks to the aiterm relay, or straight to a provider with --direct.
package chatcmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/aiterm/pkg/chat"
	"github.com/papercomputeco/aiterm/pkg/client"
	"github.com/papercomputeco/aiterm/pkg/config"
	"github.com/papercomputeco/aiterm/pkg/credentials"
	"github.com/papercomputeco/aiterm/pkg/dotdir"
	"github.com/papercomputeco/aiterm/pkg/logger"
)

const chatLogFile = "chat.log"

type chatCommander struct {
	relayTarget string
	relayPath   string
	provider    string
	model       string
	system      string
	direct      bool
	plain       bool

	// parseAs is the provider format relayed responses are parsed with.
	// Empty means detect it from the response.
	parseAs string

	debug     bool
	configDir string

	in     io.Reader
	out    io.Writer
	logger *slog.Logger
}

const chatLongDesc string = `Start an interactive chat session.

By default messages go to the aiterm relay ("aiterm serve"), which holds the
provider API key. With --direct the chat calls the provider itself using the
key stored by "aiterm auth" or the provider's API key environment variable.

The full-screen terminal UI is used when stdout is a terminal. --plain (or a
non-terminal stdout) switches to a line-oriented prompt.

Examples:
  aiterm chat
  aiterm chat --relay-target http://relay.internal:8080
  aiterm chat --direct --provider gemini --model gemini-2.0-flash
  echo "hello" | aiterm chat --plain`

const chatShortDesc string = "Interactive LLM chat in the terminal"

var chatFlagKeys = []string{
	config.FlagRelayTarget,
	config.FlagClientRelayPath,
	config.FlagClientProvider,
	config.FlagClientModel,
	config.FlagClientInstruction,
	config.FlagDirect,
}

func NewChatCmd() *cobra.Command {
	return newChatCmd(&chatCommander{in: os.Stdin, out: os.Stdout})
}

func newChatCmd(cmder *chatCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.ClientFlags, chatFlagKeys)

			cmder.relayTarget = v.GetString("client.relay_target")
			cmder.relayPath = v.GetString("client.relay_path")
			cmder.provider = v.GetString("client.provider")
			cmder.model = v.GetString("client.model")
			cmder.system = v.GetString("client.system_instruction")
			cmder.direct = v.GetBool("client.direct")

			// The relay may forward to any provider; only trust the provider
			// setting for parsing when the user picked it for this run.
			if cmd.Flags().Changed("provider") {
				cmder.parseAs = cmder.provider
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.ClientFlags, config.FlagRelayTarget, &cmder.relayTarget)
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagClientRelayPath, &cmder.relayPath)
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagClientProvider, &cmder.provider)
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagClientModel, &cmder.model)
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagClientInstruction, &cmder.system)
	config.AddBoolFlag(cmd, config.ClientFlags, config.FlagDirect, &cmder.direct)
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Use a line-oriented prompt instead of the full-screen UI")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	closeLog, err := c.setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	ex, target, err := c.exchanger()
	if err != nil {
		return err
	}

	c.logger.Debug("starting chat", "target", target, "direct", c.direct)
	session := chat.NewSession(ex, chat.WithLogger(c.logger))

	if c.plain || !isTerminal(c.out) {
		return runPlain(ctx, session, c.in, c.out, target)
	}
	return runTUI(ctx, session, target)
}

// exchanger builds the client for the configured mode and a short description
// of where messages go.
func (c *chatCommander) exchanger() (chat.Exchanger, string, error) {
	if !c.direct {
		rc, err := client.NewRelayClient(client.Config{
			RelayTarget: c.relayTarget,
			RelayPath:   c.relayPath,
			Provider:    c.parseAs,
			Logger:      c.logger,
		})
		if err != nil {
			return nil, "", err
		}
		return rc, rc.URL(), nil
	}

	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return nil, "", fmt.Errorf("loading credentials: %w", err)
	}
	apiKey, err := mgr.ResolveKey(c.provider)
	if err != nil {
		return nil, "", fmt.Errorf("loading credentials: %w", err)
	}

	dc, err := client.NewDirectClient(client.Config{
		Provider:          c.provider,
		APIKey:            apiKey,
		ModelName:         c.model,
		SystemInstruction: c.system,
		Logger:            c.logger,
	})
	if err != nil {
		return nil, "", err
	}
	return dc, dc.Provider() + "/" + dc.Model(), nil
}

// setupLogger writes debug records to chat.log in the .aiterm/ directory when
// --debug is set. The terminal belongs to the chat, so nothing is logged there.
func (c *chatCommander) setupLogger() (func(), error) {
	if !c.debug {
		c.logger = logger.Nop()
		return func() {}, nil
	}

	dir, err := dotdir.NewManager().Target(c.configDir)
	if err != nil {
		return nil, err
	}

	f, err := logger.OpenFile(filepath.Join(dir, chatLogFile))
	if err != nil {
		return nil, err
	}

	c.logger = logger.New(
		logger.WithDebug(true),
		logger.WithJSON(true),
		logger.WithPrefix("chat"),
		logger.WithWriter(f),
	)
	return func() { _ = f.Close() }, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

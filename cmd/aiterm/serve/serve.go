// Package servecmder provides the serve command that runs the relay server.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/aiterm/pkg/config"
	"github.com/papercomputeco/aiterm/pkg/credentials"
	"github.com/papercomputeco/aiterm/pkg/llm/provider"
	"github.com/papercomputeco/aiterm/pkg/logger"
	"github.com/papercomputeco/aiterm/relay"
)

type serveCommander struct {
	listen       string
	path         string
	mode         string
	providerType string
	upstream     string
	model        string
	system       string
	maxTokens    string
	temperature  string
	logFile      string

	generation relay.Generation

	debug     bool
	configDir string

	logger *slog.Logger
}

const serveLongDesc string = `Run the aiterm relay server.

The relay accepts POST {"message": "..."} on its chat route. In forward mode it
sends the message to the configured provider with the API key stored by
"aiterm auth" (or the provider's API key environment variable) and returns the
provider's JSON untouched. In echo mode it answers {"reply": "AI response: ..."}
without calling anything.

Supported provider types: gemini, openai, anthropic, ollama

Flags override AITERM_* environment variables, which override config.toml.`

const serveShortDesc string = "Run the aiterm relay server"

// relayFlagKeys are the registry keys serve binds into viper.
var relayFlagKeys = []string{
	config.FlagListen,
	config.FlagRelayPath,
	config.FlagMode,
	config.FlagProvider,
	config.FlagUpstream,
	config.FlagModel,
	config.FlagSystemInstruction,
	config.FlagMaxTokens,
	config.FlagTemperature,
}

func NewServeCmd() *cobra.Command {
	return newServeCmd(&serveCommander{})
}

func newServeCmd(cmder *serveCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.RelayFlags, relayFlagKeys)

			cmder.listen = v.GetString("relay.listen")
			cmder.path = v.GetString("relay.path")
			cmder.mode = v.GetString("relay.mode")
			cmder.providerType = v.GetString("relay.provider")
			cmder.upstream = v.GetString("relay.upstream")
			cmder.model = v.GetString("relay.model")
			cmder.system = v.GetString("relay.system_instruction")
			cmder.maxTokens = v.GetString("relay.max_tokens")
			cmder.temperature = v.GetString("relay.temperature")

			cmder.generation.MaxTokens, err = config.ParseMaxTokens(cmder.maxTokens)
			if err != nil {
				return err
			}
			cmder.generation.Temperature, err = config.ParseTemperature(cmder.temperature)
			if err != nil {
				return err
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

	for _, key := range relayFlagKeys {
		var target *string
		switch key {
		case config.FlagListen:
			target = &cmder.listen
		case config.FlagRelayPath:
			target = &cmder.path
		case config.FlagMode:
			target = &cmder.mode
		case config.FlagProvider:
			target = &cmder.providerType
		case config.FlagUpstream:
			target = &cmder.upstream
		case config.FlagModel:
			target = &cmder.model
		case config.FlagSystemInstruction:
			target = &cmder.system
		case config.FlagMaxTokens:
			target = &cmder.maxTokens
		case config.FlagTemperature:
			target = &cmder.temperature
		}
		config.AddStringFlag(cmd, config.RelayFlags, key, target)
	}
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	closeLog, err := c.setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keys, err := c.keySource(ctx)
	if err != nil {
		return err
	}

	r, err := relay.New(relay.Config{
		ListenAddr:        c.listen,
		Path:              c.path,
		Mode:              c.mode,
		ProviderType:      c.providerType,
		UpstreamURL:       c.upstream,
		Model:             c.model,
		SystemInstruction: c.system,
		Generation:        c.generation,
		Keys:              keys,
	}, c.logger)
	if err != nil {
		return fmt.Errorf("creating relay: %w", err)
	}
	defer r.Close()

	errChan := make(chan error, 1)
	go func() {
		if err := r.Run(); err != nil {
			errChan <- fmt.Errorf("relay error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		return nil
	case <-ctx.Done():
		return nil
	}
}

// setupLogger builds the terminal logger and, with --log-file, fans records
// out to a JSON log file as well.
func (c *serveCommander) setupLogger() (func(), error) {
	term := logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(true),
		logger.WithPrefix("relay"),
		logger.WithWriter(os.Stderr),
	)

	if c.logFile == "" {
		c.logger = term
		return func() {}, nil
	}

	f, err := logger.OpenFile(c.logFile)
	if err != nil {
		return nil, err
	}

	file := logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(true),
		logger.WithWriter(f),
	)
	c.logger = logger.Multi(term, file)

	return func() { _ = f.Close() }, nil
}

// keySource returns the relay's credential source. Echo mode and keyless
// providers need none. Otherwise the key comes from the provider's env var or
// credentials.toml, which is watched for changes while the relay runs.
func (c *serveCommander) keySource(ctx context.Context) (relay.KeySource, error) {
	if c.mode == relay.ModeEcho {
		return nil, nil
	}

	providerType := c.providerType
	if providerType == "" {
		providerType = provider.Default
	}
	prov, err := provider.New(providerType)
	if err != nil {
		return nil, fmt.Errorf("could not create new provider: %w", err)
	}
	if !prov.RequiresAPIKey() {
		return nil, nil
	}

	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	src, err := credentials.NewSource(mgr, providerType, c.logger)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	if src.APIKey() == "" {
		c.logger.Warn("no API key configured, chat requests will fail until one is stored",
			"provider", providerType,
			"env", credentials.EnvVarForProvider(providerType),
		)
	}

	go func() {
		if err := src.Watch(ctx); err != nil {
			c.logger.Warn("credentials watcher stopped", "error", err)
		}
	}()

	return src, nil
}

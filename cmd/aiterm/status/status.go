// Package statuscmder provides the status command: relay reachability plus a
// summary of the effective configuration and stored credentials.
package statuscmder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/aiterm/pkg/cliui"
	"github.com/papercomputeco/aiterm/pkg/config"
	"github.com/papercomputeco/aiterm/pkg/credentials"
	"github.com/papercomputeco/aiterm/pkg/llm"
	"github.com/papercomputeco/aiterm/pkg/utils"
)

const pingTimeout = 5 * time.Second

const statusLongDesc string = `Show whether the relay is reachable and which settings are in effect.

Pings the relay at --relay-target, asks its chat route for status, and lists
the resolved relay and client settings along with the providers that have
stored credentials.

Examples:
  aiterm status
  aiterm status --relay-target http://relay.internal:8080`

const statusShortDesc string = "Show relay reachability and effective config"

type statusCommander struct {
	relayTarget string
	relayPath   string
	configDir   string

	settings []setting
}

type setting struct {
	key   string
	value string
}

func NewStatusCmd() *cobra.Command {
	cmder := &statusCommander{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.ClientFlags, []string{config.FlagRelayTarget, config.FlagClientRelayPath})

			cmder.relayTarget = strings.TrimRight(v.GetString("client.relay_target"), "/")
			cmder.relayPath = v.GetString("client.relay_path")

			cmder.settings = cmder.settings[:0]
			for _, key := range config.ValidConfigKeys() {
				cmder.settings = append(cmder.settings, setting{key: key, value: v.GetString(key)})
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd.OutOrStdout())
		},
	}

	config.AddStringFlag(cmd, config.ClientFlags, config.FlagRelayTarget, &cmder.relayTarget)
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagClientRelayPath, &cmder.relayPath)

	return cmd
}

func (c *statusCommander) run(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	client := &http.Client{Timeout: pingTimeout}

	fmt.Fprintf(out, "\n  %s %s\n", cliui.KeyStyle.Render("aiterm:"), cliui.DimStyle.Render(utils.BuildInfo()))
	fmt.Fprintf(out, "  %s %s\n\n", cliui.KeyStyle.Render("Relay:"), cliui.NameStyle.Render(c.relayTarget))

	var reachable bool
	_ = cliui.Step(out, "ping "+c.relayTarget+"/ping", func() error {
		err := ping(ctx, client, c.relayTarget+"/ping")
		reachable = err == nil
		return err
	})

	if reachable {
		msg, err := chatStatus(ctx, client, c.relayTarget+c.relayPath)
		if err != nil {
			fmt.Fprintf(out, "  %s %s %s\n", cliui.FailMark, c.relayPath, cliui.DimStyle.Render(utils.Truncate(err.Error(), 72)))
		} else {
			fmt.Fprintf(out, "  %s %s %s\n", cliui.SuccessMark, c.relayPath, cliui.DimStyle.Render(msg))
		}
	} else {
		fmt.Fprintf(out, "  %s Start one with %s\n", cliui.WarnStyle.Render("!"), cliui.NameStyle.Render("aiterm serve"))
	}

	fmt.Fprintf(out, "\n  %s\n\n", cliui.HeaderStyle.Render("Settings"))
	maxLen := 0
	for _, s := range c.settings {
		maxLen = max(maxLen, len(s.key))
	}
	for _, s := range c.settings {
		value := cliui.ValueStyle.Render(s.value)
		if s.value == "" {
			value = cliui.DimStyle.Render("<not set>")
		}
		fmt.Fprintf(out, "  %s  %s\n", cliui.KeyStyle.Render(fmt.Sprintf("%-*s", maxLen, s.key)), value)
	}

	fmt.Fprintf(out, "\n  %s\n\n", cliui.HeaderStyle.Render("Credentials"))
	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}
	stored, err := mgr.ListProviders()
	if err != nil {
		return err
	}
	for _, p := range credentials.SupportedProviders() {
		env := credentials.EnvVarForProvider(p)
		key, err := mgr.ResolveKey(p)
		if err != nil {
			return err
		}
		switch {
		case key == "":
			fmt.Fprintf(out, "  %s  %s  %s\n", cliui.DimStyle.Render("-"), cliui.NameStyle.Render(p), cliui.DimStyle.Render("not configured"))
		case slices.Contains(stored, p):
			fmt.Fprintf(out, "  %s  %s  %s\n", cliui.SuccessMark, cliui.NameStyle.Render(p), cliui.DimStyle.Render("credentials.toml"))
		default:
			fmt.Fprintf(out, "  %s  %s  %s\n", cliui.SuccessMark, cliui.NameStyle.Render(p), cliui.DimStyle.Render(env))
		}
	}
	fmt.Fprintln(out)

	return nil
}

func ping(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("relay returned status %d", resp.StatusCode)
	}
	return nil
}

// chatStatus GETs the chat route, which answers {"message": "API working"}.
func chatStatus(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		if msg := llm.ErrorMessage(body); msg != "" {
			return "", errors.New(msg)
		}
		return "", fmt.Errorf("relay returned status %d", resp.StatusCode)
	}

	var status llm.StatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return "", fmt.Errorf("decoding status: %w", err)
	}
	return status.Message, nil
}

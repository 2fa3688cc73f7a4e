// Package initcmder provides the init command for initializing a local .aiterm
// directory in the current working directory.
package initcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/aiterm/pkg/cliui"
	"github.com/papercomputeco/aiterm/pkg/config"
)

const (
	dirName    = ".aiterm"
	configFile = "config.toml"

	fetchTimeout = 30 * time.Second
)

const initLongDesc string = `Initialize a new .aiterm/ directory in the current working directory.

Creates a local .aiterm/ directory that takes precedence over the default
~/.aiterm/ directory for configuration and credentials, and writes a
config.toml with default values unless one already exists.

--preset selects a provider preset (gemini, openai, anthropic, ollama, echo)
or an http(s) URL to fetch a config.toml from. A preset always replaces an
existing config.toml.

Examples:
  aiterm init
  aiterm init --preset openai
  aiterm init --preset echo
  aiterm init --preset https://example.com/aiterm/config.toml`

const initShortDesc string = "Initialize a local .aiterm/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), cmd.OutOrStdout(), preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Provider preset or URL of a config.toml to start from")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, preset string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating .aiterm directory: %w", err)
	}

	path := filepath.Join(dir, configFile)
	_, statErr := os.Stat(path)
	exists := statErr == nil
	if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
		return fmt.Errorf("reading config: %w", statErr)
	}

	if preset == "" && exists {
		fmt.Fprintf(out, "Already initialized: %s\n", dir)
		return nil
	}

	data, err := presetData(ctx, preset)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(out, "  %s Initialized %s\n", cliui.SuccessMark, cliui.NameStyle.Render(dir))
	if preset != "" {
		fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("Preset:"), cliui.ValueStyle.Render(preset))
	}
	return nil
}

// presetData returns the config.toml contents for preset: defaults when empty,
// a named preset, or the validated body of a remote config.
func presetData(ctx context.Context, preset string) ([]byte, error) {
	if strings.HasPrefix(preset, "http://") || strings.HasPrefix(preset, "https://") {
		data, err := fetchRemoteConfig(ctx, preset)
		if err != nil {
			return nil, err
		}
		if _, err := config.ParseConfigTOML(data); err != nil {
			return nil, err
		}
		return data, nil
	}

	cfg := config.NewDefaultConfig()
	if preset != "" {
		var err error
		cfg, err = config.PresetConfig(preset)
		if err != nil {
			return nil, err
		}
	}

	return encode(cfg)
}

func fetchRemoteConfig(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	return data, nil
}

package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/papercomputeco/aiterm/pkg/llm"
	"github.com/papercomputeco/aiterm/pkg/llm/provider"
	"github.com/papercomputeco/aiterm/pkg/logger"
)

// DirectClient calls a provider API without a relay, holding the API key
// locally.
type DirectClient struct {
	provider   provider.Provider
	upstream   string
	model      string
	system     string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewDirectClient creates a DirectClient for cfg.Provider (default gemini).
func NewDirectClient(cfg Config) (*DirectClient, error) {
	name := cfg.Provider
	if name == "" {
		name = provider.Default
	}
	prov, err := provider.New(name)
	if err != nil {
		return nil, err
	}

	model := cfg.ModelName
	if model == "" {
		model = prov.DefaultModel()
	}
	upstream := cfg.ProviderURL
	if upstream == "" {
		upstream = prov.DefaultUpstream()
	}

	l := cfg.Logger
	if l == nil {
		l = logger.Nop()
	}

	return &DirectClient{
		provider:   prov,
		upstream:   upstream,
		model:      model,
		system:     cfg.SystemInstruction,
		apiKey:     cfg.APIKey,
		httpClient: cfg.httpClient(),
		logger:     l,
	}, nil
}

// Model returns the model requests are sent to.
func (c *DirectClient) Model() string {
	return c.model
}

// Provider returns the provider name.
func (c *DirectClient) Provider() string {
	return c.provider.Name()
}

// Exchange sends message to the provider and returns the reply text.
func (c *DirectClient) Exchange(ctx context.Context, message string) (string, error) {
	if c.apiKey == "" && c.provider.RequiresAPIKey() {
		return "", ErrMissingAPIKey
	}

	body, err := c.provider.BuildRequest(llm.NewPrompt(c.model, message, c.system))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	endpoint := c.provider.Endpoint(c.upstream, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.provider.Authorize(httpReq, c.apiKey)

	c.logger.Debug("sending message to provider",
		"provider", c.provider.Name(),
		"model", c.model,
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending request to %s: %w", c.provider.Name(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newStatusError(resp.StatusCode, llm.ErrorMessage(respBody))
	}

	return ExtractText(respBody, c.provider)
}

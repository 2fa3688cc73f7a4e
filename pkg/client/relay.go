// Package client implements the two ways the chat session reaches a model:
// through the relay, or directly against a provider API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/papercomputeco/aiterm/pkg/llm"
	"github.com/papercomputeco/aiterm/pkg/llm/provider"
	"github.com/papercomputeco/aiterm/pkg/logger"
)

// RelayClient sends each message to the relay as {"message": "..."}.
type RelayClient struct {
	url        string
	provider   provider.Provider
	httpClient *http.Client
	logger     *slog.Logger
}

// NewRelayClient creates a RelayClient. It fails only for an unknown provider.
func NewRelayClient(cfg Config) (*RelayClient, error) {
	var prov provider.Provider
	if cfg.Provider != "" {
		var err error
		prov, err = provider.New(cfg.Provider)
		if err != nil {
			return nil, err
		}
	}

	l := cfg.Logger
	if l == nil {
		l = logger.Nop()
	}

	return &RelayClient{
		url:        cfg.relayURL(),
		provider:   prov,
		httpClient: cfg.httpClient(),
		logger:     l,
	}, nil
}

// URL returns the relay endpoint messages are posted to.
func (c *RelayClient) URL() string {
	return c.url
}

// Exchange posts message to the relay and returns the reply text.
func (c *RelayClient) Exchange(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(llm.RelayRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	c.logger.Debug("sending message to relay", "url", c.url, "length", len(message))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq)
}

func (c *RelayClient) do(httpReq *http.Request) (string, error) {
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending request to relay: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	c.logger.Debug("relay responded", "status", resp.StatusCode, "bytes", len(respBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newStatusError(resp.StatusCode, llm.ErrorMessage(respBody))
	}

	return ExtractText(respBody, c.provider)
}

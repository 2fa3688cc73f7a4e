// Package anthropic
package anthropic

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/papercomputeco/aiterm/pkg/llm"
)

const (
	defaultUpstream  = "https://api.anthropic.com"
	defaultModel     = "claude-3-5-haiku-latest"
	defaultMaxTokens = 1024
	apiVersion       = "2023-06-01"
)

// provider implements the Provider interface for Anthropic's Messages API.
type provider struct{}

// New
func New() *provider { return &provider{} }

// Name
func (p *provider) Name() string {
	return "anthropic"
}

func (p *provider) DefaultUpstream() string { return defaultUpstream }

func (p *provider) DefaultModel() string { return defaultModel }

func (p *provider) RequiresAPIKey() bool { return true }

func (p *provider) Endpoint(upstream, _ string) string {
	if upstream == "" {
		upstream = defaultUpstream
	}
	return strings.TrimRight(upstream, "/") + "/v1/messages"
}

func (p *provider) Authorize(req *http.Request, apiKey string) {
	req.Header.Set("anthropic-version", apiVersion)
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
}

func (p *provider) CanHandle(payload []byte) bool {
	var shape struct {
		Model      string `json:"model"`
		Type       string `json:"type"`
		StopReason string `json:"stop_reason"`
	}

	if err := json.Unmarshal(payload, &shape); err != nil {
		return false
	}

	// Check for Claude model names
	if strings.HasPrefix(shape.Model, "claude-") {
		return true
	}

	// Check for Anthropic response structure
	return shape.Type == "message" && shape.StopReason != ""
}

func (p *provider) BuildRequest(req *llm.ChatRequest) ([]byte, error) {
	model := req.Model
	if model == "" {
		model = defaultModel
	}

	// max_tokens is required by the Messages API
	maxTokens := defaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	out := anthropicRequest{
		Model:       model,
		Messages:    make([]anthropicMessage, 0, len(req.Messages)),
		System:      req.System,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}
	for _, msg := range req.Messages {
		out.Messages = append(out.Messages, anthropicMessage{Role: msg.Role, Content: msg.GetText()})
	}

	return json.Marshal(out)
}

func (p *provider) ParseResponse(payload []byte) (*llm.ChatResponse, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, err
	}

	content := make([]llm.ContentBlock, 0, len(resp.Content))
	for _, block := range resp.Content {
		if block.Type == "text" {
			content = append(content, llm.ContentBlock{Type: "text", Text: block.Text})
		}
	}

	var usage *llm.Usage
	if resp.Usage != nil {
		usage = &llm.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		}
	}

	return &llm.ChatResponse{
		Model: resp.Model,
		Message: llm.Message{
			Role:    llm.RoleAssistant,
			Content: content,
		},
		StopReason:  resp.StopReason,
		Usage:       usage,
		RawResponse: payload,
	}, nil
}

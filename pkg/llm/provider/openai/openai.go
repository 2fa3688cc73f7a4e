// Package openai
package openai

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/aiterm/pkg/llm"
)

const (
	defaultUpstream = "https://api.openai.com"
	defaultModel    = "gpt-4o-mini"
)

// provider implements the Provider interface for OpenAI's Chat Completions API.
type provider struct{}

func New() *provider { return &provider{} }

func (o *provider) Name() string {
	return "openai"
}

func (o *provider) DefaultUpstream() string { return defaultUpstream }

func (o *provider) DefaultModel() string { return defaultModel }

func (o *provider) RequiresAPIKey() bool { return true }

func (o *provider) Endpoint(upstream, _ string) string {
	if upstream == "" {
		upstream = defaultUpstream
	}
	return strings.TrimRight(upstream, "/") + "/v1/chat/completions"
}

func (o *provider) Authorize(req *http.Request, apiKey string) {
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
}

func (o *provider) CanHandle(payload []byte) bool {
	var shape struct {
		Object  string          `json:"object"`
		Choices json.RawMessage `json:"choices"`
	}
	if err := json.Unmarshal(payload, &shape); err != nil {
		return false
	}
	return strings.HasPrefix(shape.Object, "chat.completion") || len(shape.Choices) > 0
}

func (o *provider) BuildRequest(req *llm.ChatRequest) ([]byte, error) {
	model := req.Model
	if model == "" {
		model = defaultModel
	}

	out := openaiRequest{
		Model:       model,
		Messages:    make([]openaiMessage, 0, len(req.Messages)+1),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	if req.System != "" {
		out.Messages = append(out.Messages, openaiMessage{Role: llm.RoleSystem, Content: req.System})
	}
	for _, msg := range req.Messages {
		out.Messages = append(out.Messages, openaiMessage{Role: msg.Role, Content: msg.GetText()})
	}

	return json.Marshal(out)
}

func (o *provider) ParseResponse(payload []byte) (*llm.ChatResponse, error) {
	var resp openaiResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, err
	}

	result := &llm.ChatResponse{
		Model:       resp.Model,
		Message:     llm.Message{Role: llm.RoleAssistant},
		RawResponse: payload,
	}
	if resp.Created > 0 {
		result.CreatedAt = time.Unix(resp.Created, 0)
	}

	if resp.Usage != nil {
		result.Usage = &llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	if len(resp.Choices) == 0 {
		return result, nil
	}

	choice := resp.Choices[0]
	result.StopReason = choice.FinishReason

	// Convert message content
	switch c := choice.Message.Content.(type) {
	case string:
		result.Message.Content = []llm.ContentBlock{{Type: "text", Text: c}}
	case []any:
		for _, item := range c {
			if part, ok := item.(map[string]any); ok {
				cb := llm.ContentBlock{}
				if t, ok := part["type"].(string); ok {
					cb.Type = t
				}
				if text, ok := part["text"].(string); ok {
					cb.Text = text
				}
				result.Message.Content = append(result.Message.Content, cb)
			}
		}
	}

	return result, nil
}

// Package gemini implements the Provider interface for Google's Gemini
// generateContent API.
package gemini

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/papercomputeco/aiterm/pkg/llm"
)

const (
	defaultUpstream = "https://generativelanguage.googleapis.com"
	defaultModel    = "gemini-2.0-flash"
)

// provider implements the Provider interface for Gemini.
type provider struct{}

func New() *provider { return &provider{} }

func (p *provider) Name() string {
	return "gemini"
}

func (p *provider) DefaultUpstream() string { return defaultUpstream }

func (p *provider) DefaultModel() string { return defaultModel }

func (p *provider) RequiresAPIKey() bool { return true }

func (p *provider) Endpoint(upstream, model string) string {
	if upstream == "" {
		upstream = defaultUpstream
	}
	if model == "" {
		model = defaultModel
	}
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", strings.TrimRight(upstream, "/"), url.PathEscape(model))
}

// Authorize sets the API key as the "key" query parameter.
func (p *provider) Authorize(req *http.Request, apiKey string) {
	if apiKey == "" {
		return
	}
	q := req.URL.Query()
	q.Set("key", apiKey)
	req.URL.RawQuery = q.Encode()
}

func (p *provider) CanHandle(payload []byte) bool {
	var shape struct {
		Candidates    json.RawMessage `json:"candidates"`
		UsageMetadata json.RawMessage `json:"usageMetadata"`
	}
	if err := json.Unmarshal(payload, &shape); err != nil {
		return false
	}
	return len(shape.Candidates) > 0 || len(shape.UsageMetadata) > 0
}

func (p *provider) BuildRequest(req *llm.ChatRequest) ([]byte, error) {
	out := geminiRequest{
		Contents: make([]geminiContent, 0, len(req.Messages)),
	}

	for _, msg := range req.Messages {
		role := msg.Role
		if role == llm.RoleAssistant {
			role = "model"
		}
		out.Contents = append(out.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.GetText()}},
		})
	}

	if req.System != "" {
		out.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.System}},
		}
	}

	if req.MaxTokens != nil || req.Temperature != nil {
		out.GenerationConfig = &geminiGenerationConfig{
			MaxOutputTokens: req.MaxTokens,
			Temperature:     req.Temperature,
		}
	}

	return json.Marshal(out)
}

// ParseResponse reads candidates[0].content.parts[0].text. A response with no
// candidate or no parts yields an empty message rather than an error.
func (p *provider) ParseResponse(payload []byte) (*llm.ChatResponse, error) {
	var resp geminiResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, err
	}

	result := &llm.ChatResponse{
		Model:       resp.ModelVersion,
		Message:     llm.Message{Role: llm.RoleAssistant},
		RawResponse: payload,
	}

	if len(resp.Candidates) > 0 {
		candidate := resp.Candidates[0]
		result.StopReason = candidate.FinishReason
		if len(candidate.Content.Parts) > 0 {
			result.Message.Content = []llm.ContentBlock{
				{Type: "text", Text: candidate.Content.Parts[0].Text},
			}
		}
	}

	if resp.UsageMetadata != nil {
		result.Usage = &llm.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}

	return result, nil
}

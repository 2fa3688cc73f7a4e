package ollama

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/papercomputeco/aiterm/pkg/llm"
)

const (
	defaultUpstream = "http://localhost:11434"
	defaultModel    = "llama3.2"
)

// provider implements the Provider interface for Ollama's chat API.
type provider struct{}

func New() *provider { return &provider{} }

func (o *provider) Name() string {
	return "ollama"
}

func (o *provider) DefaultUpstream() string { return defaultUpstream }

func (o *provider) DefaultModel() string { return defaultModel }

// RequiresAPIKey is false: a local Ollama server takes no credential.
func (o *provider) RequiresAPIKey() bool { return false }

func (o *provider) Endpoint(upstream, _ string) string {
	if upstream == "" {
		upstream = defaultUpstream
	}
	return strings.TrimRight(upstream, "/") + "/api/chat"
}

// Authorize sets a bearer token when one is configured, for Ollama servers
// running behind an authenticating reverse proxy.
func (o *provider) Authorize(req *http.Request, apiKey string) {
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
}

func (o *provider) CanHandle(payload []byte) bool {
	var shape struct {
		Message       *ollamaMessage `json:"message"`
		Done          *bool          `json:"done"`
		TotalDuration int64          `json:"total_duration"`
		EvalCount     int            `json:"eval_count"`
	}

	if err := json.Unmarshal(payload, &shape); err != nil {
		return false
	}

	if shape.TotalDuration > 0 || shape.EvalCount > 0 {
		return true
	}

	return shape.Message != nil && shape.Done != nil
}

func (o *provider) BuildRequest(req *llm.ChatRequest) ([]byte, error) {
	model := req.Model
	if model == "" {
		model = defaultModel
	}

	out := ollamaRequest{
		Model:    model,
		Messages: make([]ollamaMessage, 0, len(req.Messages)+1),
	}

	if req.System != "" {
		out.Messages = append(out.Messages, ollamaMessage{Role: llm.RoleSystem, Content: req.System})
	}
	for _, msg := range req.Messages {
		out.Messages = append(out.Messages, ollamaMessage{Role: msg.Role, Content: msg.GetText()})
	}

	if req.MaxTokens != nil || req.Temperature != nil {
		out.Options = &ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		}
	}

	return json.Marshal(out)
}

func (o *provider) ParseResponse(payload []byte) (*llm.ChatResponse, error) {
	var resp ollamaResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, err
	}

	result := &llm.ChatResponse{
		Model:       resp.Model,
		CreatedAt:   resp.CreatedAt,
		Message:     llm.Message{Role: llm.RoleAssistant},
		StopReason:  resp.DoneReason,
		RawResponse: payload,
	}

	if resp.Message != nil {
		result.Message.Content = []llm.ContentBlock{{Type: "text", Text: resp.Message.Content}}
	}

	// Map Ollama metrics to common Usage format
	if resp.PromptEvalCount > 0 || resp.EvalCount > 0 {
		result.Usage = &llm.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		}
	}

	return result, nil
}

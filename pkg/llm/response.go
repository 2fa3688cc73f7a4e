package llm

import (
	"encoding/json"
	"time"
)

// ChatResponse represents a provider-agnostic chat completion response.
// This is the internal representation used after parsing provider-specific
// response formats.
type ChatResponse struct {
	// Model that generated the response
	Model string `json:"model"`

	// Response timestamp
	CreatedAt time.Time `json:"created_at,omitzero"`

	// The assistant's response message
	Message Message `json:"message"`

	// Stop reason (e.g., "stop", "STOP", "length", "MAX_TOKENS")
	StopReason string `json:"stop_reason,omitempty"`

	// Token usage
	Usage *Usage `json:"usage,omitempty"`

	// RawResponse preserves the original response payload.
	RawResponse json.RawMessage `json:"raw_response,omitempty"`
}

// Text returns the display text of the response: the first text part of the
// first candidate. It is "" when the provider returned no candidate text.
func (r *ChatResponse) Text() string {
	if r == nil {
		return ""
	}
	return r.Message.GetText()
}

// Usage contains token counts.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

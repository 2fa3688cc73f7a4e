package llm

// ChatRequest represents a provider-agnostic, single-message chat request.
// Providers turn it into their own wire format with BuildRequest.
type ChatRequest struct {
	// Model name (e.g., "gemini-2.0-flash", "gpt-4o-mini", "llama3.2")
	Model string `json:"model"`

	// Conversation messages. The relay and the chat client only ever send
	// one user message; earlier turns are never replayed.
	Messages []Message `json:"messages"`

	// System instruction (some providers handle this separately from messages)
	System string `json:"system,omitempty"`

	// Generation parameters (unified across providers)
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// NewPrompt builds a ChatRequest carrying a single user message.
func NewPrompt(model, prompt, system string) *ChatRequest {
	return &ChatRequest{
		Model:    model,
		Messages: []Message{NewTextMessage(RoleUser, prompt)},
		System:   system,
	}
}

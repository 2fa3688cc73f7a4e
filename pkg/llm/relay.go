package llm

import (
	"encoding/json"
	"strings"
)

// RelayRequest is the body the chat client POSTs to the relay.
type RelayRequest struct {
	Message string `json:"message"`
}

// RelayResponse is the synthetic body returned by the relay in echo mode.
type RelayResponse struct {
	Reply string `json:"reply"`
}

// StatusResponse is returned by the relay for non-POST requests.
type StatusResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the error envelope returned by the relay.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorMessage extracts a human readable error from a JSON error body.
// It understands the flat relay/Ollama shape ({"error": "msg"}) and the
// nested Gemini/OpenAI shape ({"error": {"message": "msg"}}). It returns ""
// when the body carries no recognizable error.
func ErrorMessage(body []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return ""
	}

	var flat string
	if err := json.Unmarshal(envelope.Error, &flat); err == nil {
		return strings.TrimSpace(flat)
	}

	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &nested); err == nil {
		return strings.TrimSpace(nested.Message)
	}

	return ""
}

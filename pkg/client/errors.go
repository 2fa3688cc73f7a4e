package client

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned by the direct client when the provider needs a
// key and none is configured. No request is sent.
var ErrMissingAPIKey = errors.New("API key not configured")

// StatusError is returned when the relay or provider answers with a non-2xx
// status. Message is the error text from the body, or a generic one.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return e.Message
}

func newStatusError(code int, message string) *StatusError {
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", code)
	}
	return &StatusError{StatusCode: code, Message: message}
}

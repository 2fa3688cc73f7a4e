package config

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxTemperature is the highest sampling temperature accepted. Gemini and
// OpenAI allow up to 2; Anthropic clamps above 1 on its side.
const MaxTemperature = 2.0

// ParseMaxTokens parses relay.max_tokens. An empty value means unset and
// returns nil; anything else must be a positive integer.
func ParseMaxTokens(v string) (*int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("invalid value for relay.max_tokens: %q (expected a positive integer)", v)
	}
	return &n, nil
}

// ParseTemperature parses relay.temperature. An empty value means unset and
// returns nil; anything else must lie in [0, MaxTemperature].
func ParseTemperature(v string) (*float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := strconv.ParseFloat(v, 64)
	if err != nil || t < 0 || t > MaxTemperature {
		return nil, fmt.Errorf("invalid value for relay.temperature: %q (expected 0 to %g)", v, MaxTemperature)
	}
	return &t, nil
}

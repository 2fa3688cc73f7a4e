package client

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/papercomputeco/aiterm/pkg/llm/provider"
)

// ExtractText pulls the display text out of a successful response body.
//
// An echo relay answers {"reply": "..."}; a forwarding relay mirrors the
// provider's raw JSON, which is parsed with prov, or with whichever provider
// the detector recognizes when prov is nil. Any well-formed JSON body without
// reply text, including arrays and scalars, yields "". Only a body that is not
// JSON at all is an error.
func ExtractText(body []byte, prov provider.Provider) (string, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return "", nil
		}
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if raw, ok := envelope["reply"]; ok {
		var reply string
		if err := json.Unmarshal(raw, &reply); err == nil {
			return reply, nil
		}
	}

	if prov == nil {
		detected, ok := provider.NewDetector().Detect(body)
		if !ok {
			return "", nil
		}
		prov = detected
	}

	resp, err := prov.ParseResponse(body)
	if err != nil {
		// The body is valid JSON but not in the provider's shape.
		return "", nil
	}
	return resp.Text(), nil
}

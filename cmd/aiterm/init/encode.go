package initcmder

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/aiterm/pkg/config"
)

func encode(cfg *config.Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}

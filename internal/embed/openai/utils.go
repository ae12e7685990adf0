package openai

import (
	"encoding/json"
	"fmt"
)

func decodeJSON(raw []byte, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode embeddings response: %w", err)
	}
	return nil
}

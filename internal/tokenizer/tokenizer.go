// Package tokenizer wraps tiktoken for model-specific token counting.
package tokenizer

import (
	"fmt"

	"starry-api/internal/logger"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Counter counts tokens for budget accounting.
type Counter interface {
	Count(text string) int
}

// Tiktoken implements Counter using the model's BPE encoding.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken creates a Counter for the given model, falling back to the
// cl100k_base encoding when the model is unknown to tiktoken.
func NewTiktoken(model string) (*Tiktoken, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		logger.Log.WithField("model", model).Warn("Unknown model for tokenizer, falling back to cl100k_base")
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("error loading tokenizer encoding: %w", err)
		}
	}
	return &Tiktoken{enc: enc}, nil
}

// Count returns the number of tokens in text
func (t *Tiktoken) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

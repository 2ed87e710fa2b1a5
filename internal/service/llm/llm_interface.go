package llm

import (
	"context"

	"starry-api/internal/tokenizer"
)

// Message is one chat-completion message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completion is the provider's reply to a chat request. Tokens is the
// reported token count for the exchange (prompt plus completion).
type Completion struct {
	Message string
	Tokens  int
}

// Provider defines the interface for LLM providers
type Provider interface {
	// ChatCompletion sends the message list and returns the assistant
	// reply with its token count.
	ChatCompletion(ctx context.Context, messages []Message, temperature float64, maxTokens int) (*Completion, error)

	// GenerateTitle derives a short chat title from the first message.
	GenerateTitle(ctx context.Context, firstMessage string) (string, error)
}

// messageOverheadTokens is the per-message framing overhead the model
// adds on top of role and content tokens.
const messageOverheadTokens = 4

// MessageTokens counts the tokens a message list consumes when sent to
// the model: role plus content plus framing overhead per message.
func MessageTokens(counter tokenizer.Counter, messages []Message) int {
	total := 0
	for _, msg := range messages {
		total += counter.Count(msg.Role)
		total += counter.Count(msg.Content)
		total += messageOverheadTokens
	}
	return total
}

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"starry-api/internal/config"
	"starry-api/internal/logger"
	"starry-api/internal/tokenizer"

	"github.com/sirupsen/logrus"
)

const openAIURL = "https://api.openai.com/v1/chat/completions"

const titleSystemPrompt = "Generate a short, descriptive title (max 50 characters) for an astrology chat based on the user's first message. Make it engaging and specific to their query."

// Ensure OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)

// OpenAIProvider implements Provider using direct OpenAI API calls
type OpenAIProvider struct {
	config  *config.OpenAIConfig
	counter tokenizer.Counter
	client  *http.Client
	baseURL string
}

// NewOpenAIProvider creates a new OpenAI provider with config
func NewOpenAIProvider(openAIConfig *config.OpenAIConfig, counter tokenizer.Counter) *OpenAIProvider {
	return &OpenAIProvider{
		config:  openAIConfig,
		counter: counter,
		client:  &http.Client{},
		baseURL: openAIURL,
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type responseUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage *responseUsage `json:"usage,omitempty"`
}

// ChatCompletion sends a chat request and returns the assistant reply
// with its reported token count. When the API omits usage data the
// count falls back to the local tokenizer.
func (p *OpenAIProvider) ChatCompletion(ctx context.Context, messages []Message, temperature float64, maxTokens int) (*Completion, error) {
	chatResp, err := p.call(ctx, chatRequest{
		Model:       p.config.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, err
	}

	content := chatResp.Choices[0].Message.Content

	var tokens int
	if chatResp.Usage != nil {
		tokens = chatResp.Usage.TotalTokens
	} else {
		tokens = MessageTokens(p.counter, messages) + p.counter.Count(content)
	}

	logger.Log.WithFields(logrus.Fields{
		"content_length": len(content),
		"tokens":         tokens,
	}).Debug("Extracted content from response")

	return &Completion{Message: content, Tokens: tokens}, nil
}

// GenerateTitle asks the cheaper title model for a short chat title
func (p *OpenAIProvider) GenerateTitle(ctx context.Context, firstMessage string) (string, error) {
	chatResp, err := p.call(ctx, chatRequest{
		Model: p.config.TitleModel,
		Messages: []Message{
			{Role: "system", Content: titleSystemPrompt},
			{Role: "user", Content: firstMessage},
		},
		Temperature: 0.8,
		MaxTokens:   20,
	})
	if err != nil {
		return "", err
	}

	title := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if title == "" {
		return "", fmt.Errorf("empty title from API")
	}
	return title, nil
}

// call executes one chat-completions request
func (p *OpenAIProvider) call(ctx context.Context, reqBody chatRequest) (*chatResponse, error) {
	apiKey := p.config.APIKey
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not configured")
	}

	logger.Log.WithFields(logrus.Fields{
		"model":         reqBody.Model,
		"temperature":   reqBody.Temperature,
		"message_count": len(reqBody.Messages),
	}).Info("Calling OpenAI API")

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("no response from API")
	}

	return &chatResp, nil
}

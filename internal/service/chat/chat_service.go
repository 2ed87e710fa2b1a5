// Package chat implements the chat-turn orchestration: budget
// enforcement, title generation, prompt assembly and persistence.
package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"starry-api/internal/apperr"
	"starry-api/internal/config"
	"starry-api/internal/logger"
	"starry-api/internal/repository/db"
	"starry-api/internal/service/llm"
	"starry-api/internal/service/prompt"
	"starry-api/internal/tokenizer"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultChatTitle names an empty or freshly cleared chat.
	DefaultChatTitle = "New Astrology Chat"

	// FallbackTitle is used when title generation fails; the turn
	// still completes.
	FallbackTitle = "Astrology Chat"

	// historyLimit bounds how many prior messages are replayed to the
	// model on each turn.
	historyLimit = 20

	// maxTitleRunes caps generated titles.
	maxTitleRunes = 50
)

// Service orchestrates chat turns for the single chat each user owns
type Service struct {
	db       db.Database
	provider llm.Provider
	counter  tokenizer.Counter
	chatCfg  *config.ChatConfig
	llmCfg   *config.OpenAIConfig

	// Per-user locks serialize turns so concurrent requests cannot
	// interleave their read-modify-write of totals and caps.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a new chat Service
func NewService(database db.Database, provider llm.Provider, counter tokenizer.Counter,
	chatCfg *config.ChatConfig, llmCfg *config.OpenAIConfig) *Service {
	return &Service{
		db:       database,
		provider: provider,
		counter:  counter,
		chatCfg:  chatCfg,
		llmCfg:   llmCfg,
		locks:    make(map[string]*sync.Mutex),
	}
}

// SendMessageResponse is the result of one completed turn
type SendMessageResponse struct {
	Message         string
	TotalTokens     int
	RemainingTokens int
	MessagesCount   int
	MaxMessages     int
	ChatTitle       string // set only when this turn generated a title
}

// ChatView is the client-facing snapshot of a chat
type ChatView struct {
	Title           string
	Messages        []db.Message
	TotalTokens     int
	RemainingTokens int
	MessagesCount   int
	MaxMessages     int
	CreatedAt       time.Time
	LastUpdated     time.Time
}

// Stats summarizes chat usage, tolerating a missing chat as zeros
type Stats struct {
	TotalTokens     int
	RemainingTokens int
	MessagesCount   int
	MaxMessages     int
	MaxTokens       int
	LastActivity    *time.Time
}

// SendMessage runs one chat turn: enforce budgets, generate a title for
// the first message, call the model and persist the exchange. The chat
// is left untouched when the turn is rejected or the provider fails.
func (s *Service) SendMessage(ctx context.Context, user *db.User, message string, chatCtx *prompt.ChatContext) (*SendMessageResponse, error) {
	lock := s.userLock(user.ID)
	lock.Lock()
	defer lock.Unlock()

	chat, err := s.getOrCreateChat(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get/create chat: %w", err)
	}

	history, err := s.db.GetChatMessages(chat.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve chat history: %w", err)
	}

	// Budget checks happen before any mutation. Only the incoming user
	// message counts against the cap; the reply may overshoot it.
	incomingTokens := s.counter.Count(message)

	if chat.TotalTokens+incomingTokens > s.chatCfg.MaxTokensPerChat {
		return nil, apperr.QuotaExceeded("Chat has reached maximum token limit. Please start a new conversation.")
	}
	if len(history) >= s.chatCfg.MaxMessagesPerChat {
		return nil, apperr.QuotaExceeded("Chat has reached maximum message limit. Please start a new conversation.")
	}

	// First message derives a title; failure downgrades to the fixed
	// fallback instead of failing the turn.
	var newTitle *string
	if len(history) == 0 {
		title, err := s.provider.GenerateTitle(ctx, message)
		if err != nil {
			logger.Log.WithError(err).Warn("Title generation failed, using fallback")
			title = FallbackTitle
		}
		title = truncateRunes(title, maxTitleRunes)
		newTitle = &title
	}

	messages := s.buildMessages(user, chatCtx, history, message)

	logger.Log.WithFields(logrus.Fields{
		"chat_id":       chat.ID,
		"message_count": len(messages),
	}).Debug("Prepared for LLM call")

	completion, err := s.provider.ChatCompletion(ctx, messages, s.llmCfg.Temperature, s.llmCfg.MaxTokens)
	if err != nil {
		// Nothing has been persisted yet; the turn is aborted whole.
		logger.Log.WithError(err).Error("LLM call failed")
		return nil, apperr.Provider(err)
	}

	now := time.Now().UTC()
	userMsg := db.Message{Role: "user", Content: message, Tokens: incomingTokens, CreatedAt: now}
	assistantMsg := db.Message{Role: "assistant", Content: completion.Message, Tokens: completion.Tokens, CreatedAt: now}
	totalTokens := chat.TotalTokens + incomingTokens + completion.Tokens

	if err := s.db.AppendTurn(chat.ID, newTitle, userMsg, assistantMsg, totalTokens); err != nil {
		return nil, fmt.Errorf("failed to save chat turn: %w", err)
	}

	resp := &SendMessageResponse{
		Message:         completion.Message,
		TotalTokens:     totalTokens,
		RemainingTokens: s.chatCfg.MaxTokensPerChat - totalTokens,
		MessagesCount:   len(history) + 2,
		MaxMessages:     s.chatCfg.MaxMessagesPerChat,
	}
	if newTitle != nil {
		resp.ChatTitle = *newTitle
	}
	return resp, nil
}

// History returns the chat snapshot, synthesizing an empty view when no
// chat exists yet.
func (s *Service) History(user *db.User) (*ChatView, error) {
	chat, err := s.db.GetChatByUser(user.ID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return s.emptyView(), nil
		}
		return nil, fmt.Errorf("failed to retrieve chat: %w", err)
	}

	messages, err := s.db.GetChatMessages(chat.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve messages: %w", err)
	}

	return &ChatView{
		Title:           chat.Title,
		Messages:        messages,
		TotalTokens:     chat.TotalTokens,
		RemainingTokens: s.chatCfg.MaxTokensPerChat - chat.TotalTokens,
		MessagesCount:   len(messages),
		MaxMessages:     s.chatCfg.MaxMessagesPerChat,
		CreatedAt:       chat.CreatedAt,
		LastUpdated:     chat.UpdatedAt,
	}, nil
}

// Clear resets the chat to empty with the default title. Clearing a
// user without a chat is a no-op; the post-clear view is returned
// either way.
func (s *Service) Clear(user *db.User) (*ChatView, error) {
	lock := s.userLock(user.ID)
	lock.Lock()
	defer lock.Unlock()

	chat, err := s.db.GetChatByUser(user.ID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to retrieve chat: %w", err)
	}

	if chat != nil {
		if err := s.db.ResetChat(chat.ID, DefaultChatTitle); err != nil {
			return nil, fmt.Errorf("failed to reset chat: %w", err)
		}
	}

	return s.emptyView(), nil
}

// UsageStats returns the token/message usage summary
func (s *Service) UsageStats(user *db.User) (*Stats, error) {
	stats := &Stats{
		MaxMessages:     s.chatCfg.MaxMessagesPerChat,
		MaxTokens:       s.chatCfg.MaxTokensPerChat,
		RemainingTokens: s.chatCfg.MaxTokensPerChat,
	}

	chat, err := s.db.GetChatByUser(user.ID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return stats, nil
		}
		return nil, fmt.Errorf("failed to retrieve chat: %w", err)
	}

	messages, err := s.db.GetChatMessages(chat.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve messages: %w", err)
	}

	lastActivity := chat.UpdatedAt
	stats.TotalTokens = chat.TotalTokens
	stats.RemainingTokens = s.chatCfg.MaxTokensPerChat - chat.TotalTokens
	stats.MessagesCount = len(messages)
	stats.LastActivity = &lastActivity
	return stats, nil
}

// getOrCreateChat resolves the user's single chat, creating it lazily
// when registration predates the chats table link.
func (s *Service) getOrCreateChat(userID string) (*db.Chat, error) {
	chat, err := s.db.GetChatByUser(userID)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}
	return s.db.CreateChat(userID, DefaultChatTitle)
}

// buildMessages assembles system prompt, bounded history and the new
// user message for the provider call.
func (s *Service) buildMessages(user *db.User, chatCtx *prompt.ChatContext, history []db.Message, message string) []llm.Message {
	systemPrompt := prompt.BuildSystemPrompt(user, chatCtx)

	recent := history
	if len(recent) > historyLimit {
		recent = recent[len(recent)-historyLimit:]
	}

	messages := make([]llm.Message, 0, len(recent)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})
	for _, msg := range recent {
		messages = append(messages, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, llm.Message{Role: "user", Content: message})
	return messages
}

func (s *Service) emptyView() *ChatView {
	now := time.Now().UTC()
	return &ChatView{
		Title:           DefaultChatTitle,
		Messages:        []db.Message{},
		TotalTokens:     0,
		RemainingTokens: s.chatCfg.MaxTokensPerChat,
		MessagesCount:   0,
		MaxMessages:     s.chatCfg.MaxMessagesPerChat,
		CreatedAt:       now,
		LastUpdated:     now,
	}
}

// userLock returns the mutex serializing turns for one user's chat
func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return s
}

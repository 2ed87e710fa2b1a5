package testutil

import (
	"context"
	"errors"
	"strings"

	"starry-api/internal/repository/db"
	"starry-api/internal/service/llm"
)

// MockDatabase is a mock implementation of db.Database for testing
type MockDatabase struct {
	// User mocks
	GetUserByHandleFunc   func(handle string) (*db.User, error)
	GetUserByIDFunc       func(id string) (*db.User, error)
	CreateUserFunc        func(handle, name, email, passwordHash string, birth *db.BirthData, profile *db.AstrologyProfile) (*db.User, error)
	UpdateUserProfileFunc func(userID string, update db.ProfileUpdate) (*db.User, error)

	// Chat mocks
	GetChatByUserFunc   func(userID string) (*db.Chat, error)
	CreateChatFunc      func(userID, title string) (*db.Chat, error)
	GetChatMessagesFunc func(chatID string) ([]db.Message, error)
	AppendTurnFunc      func(chatID string, title *string, userMsg, assistantMsg db.Message, totalTokens int) error
	ResetChatFunc       func(chatID, title string) error
}

func (m *MockDatabase) GetUserByHandle(handle string) (*db.User, error) {
	if m.GetUserByHandleFunc != nil {
		return m.GetUserByHandleFunc(handle)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetUserByID(id string) (*db.User, error) {
	if m.GetUserByIDFunc != nil {
		return m.GetUserByIDFunc(id)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) CreateUser(handle, name, email, passwordHash string, birth *db.BirthData, profile *db.AstrologyProfile) (*db.User, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(handle, name, email, passwordHash, birth, profile)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) UpdateUserProfile(userID string, update db.ProfileUpdate) (*db.User, error) {
	if m.UpdateUserProfileFunc != nil {
		return m.UpdateUserProfileFunc(userID, update)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetChatByUser(userID string) (*db.Chat, error) {
	if m.GetChatByUserFunc != nil {
		return m.GetChatByUserFunc(userID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) CreateChat(userID, title string) (*db.Chat, error) {
	if m.CreateChatFunc != nil {
		return m.CreateChatFunc(userID, title)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetChatMessages(chatID string) ([]db.Message, error) {
	if m.GetChatMessagesFunc != nil {
		return m.GetChatMessagesFunc(chatID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) AppendTurn(chatID string, title *string, userMsg, assistantMsg db.Message, totalTokens int) error {
	if m.AppendTurnFunc != nil {
		return m.AppendTurnFunc(chatID, title, userMsg, assistantMsg, totalTokens)
	}
	return errors.New("not implemented")
}

func (m *MockDatabase) ResetChat(chatID, title string) error {
	if m.ResetChatFunc != nil {
		return m.ResetChatFunc(chatID, title)
	}
	return errors.New("not implemented")
}

func (m *MockDatabase) Close() error { return nil }

// MockProvider is a mock implementation of llm.Provider for testing
type MockProvider struct {
	ChatCompletionFunc func(ctx context.Context, messages []llm.Message, temperature float64, maxTokens int) (*llm.Completion, error)
	GenerateTitleFunc  func(ctx context.Context, firstMessage string) (string, error)
}

func (m *MockProvider) ChatCompletion(ctx context.Context, messages []llm.Message, temperature float64, maxTokens int) (*llm.Completion, error) {
	if m.ChatCompletionFunc != nil {
		return m.ChatCompletionFunc(ctx, messages, temperature, maxTokens)
	}
	return nil, errors.New("not implemented")
}

func (m *MockProvider) GenerateTitle(ctx context.Context, firstMessage string) (string, error) {
	if m.GenerateTitleFunc != nil {
		return m.GenerateTitleFunc(ctx, firstMessage)
	}
	return "", errors.New("not implemented")
}

// MockCounter counts whitespace-separated words so tests stay
// independent of the real BPE encoding.
type MockCounter struct {
	CountFunc func(text string) int
}

func (m *MockCounter) Count(text string) int {
	if m.CountFunc != nil {
		return m.CountFunc(text)
	}
	return len(strings.Fields(text))
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"starry-api/internal/config"
	"starry-api/internal/repository/db"
	"starry-api/internal/service/chat"
	"starry-api/internal/service/llm"
	"starry-api/internal/service/prompt"
	"starry-api/internal/testutil"
)

func newChatHandlers(mockDB *testutil.MockDatabase, mockLLM *testutil.MockProvider) *ChatHandlers {
	service := chat.NewService(mockDB, mockLLM, &testutil.MockCounter{},
		&config.ChatConfig{MaxTokensPerChat: 100, MaxMessagesPerChat: 10},
		&config.OpenAIConfig{Temperature: 0.7, MaxTokens: 1000},
	)
	return NewChatHandlers(service)
}

func chatUser() *db.User {
	return &db.User{ID: "user-1", TelegramHandle: "stargazer"}
}

func jsonBody(t *testing.T, body any) io.Reader {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(payload)
}

func TestMessageHandler_Success(t *testing.T) {
	mockDB := &testutil.MockDatabase{}
	mockLLM := &testutil.MockProvider{}

	mockDB.GetChatByUserFunc = func(userID string) (*db.Chat, error) {
		return &db.Chat{ID: "chat-1", UserID: userID, Title: "Existing", TotalTokens: 10}, nil
	}
	mockDB.GetChatMessagesFunc = func(chatID string) ([]db.Message, error) {
		return []db.Message{
			{Role: "user", Content: "Hi", Tokens: 5},
			{Role: "assistant", Content: "Hello", Tokens: 5},
		}, nil
	}
	mockLLM.ChatCompletionFunc = func(ctx context.Context, messages []llm.Message, temperature float64, maxTokens int) (*llm.Completion, error) {
		return &llm.Completion{Message: "Mercury is in retrograde.", Tokens: 8}, nil
	}
	mockDB.AppendTurnFunc = func(chatID string, title *string, userMsg, assistantMsg db.Message, totalTokens int) error {
		return nil
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chat/message", jsonBody(t, MessageRequest{Message: "What about Mercury?"}))
	newChatHandlers(mockDB, mockLLM).MessageHandler(rec, req, chatUser())

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp MessageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Message != "Mercury is in retrograde." {
		t.Errorf("Unexpected reply: %q", resp.Message)
	}
	if resp.MessagesCount != 4 {
		t.Errorf("Expected messagesCount 4, got %d", resp.MessagesCount)
	}
	if resp.TotalTokens+resp.RemainingTokens != 100 {
		t.Errorf("Expected totals to sum to the budget, got %d + %d", resp.TotalTokens, resp.RemainingTokens)
	}
}

func TestMessageHandler_EmptyMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chat/message", jsonBody(t, MessageRequest{Message: "   "}))
	newChatHandlers(&testutil.MockDatabase{}, &testutil.MockProvider{}).MessageHandler(rec, req, chatUser())

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestMessageHandler_BadRequestType(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chat/message", jsonBody(t, MessageRequest{
		Message: "Hello",
		Context: &prompt.ChatContext{RequestType: "horoscope"},
	}))
	newChatHandlers(&testutil.MockDatabase{}, &testutil.MockProvider{}).MessageHandler(rec, req, chatUser())

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestMessageHandler_QuotaExceeded(t *testing.T) {
	mockDB := &testutil.MockDatabase{}

	mockDB.GetChatByUserFunc = func(userID string) (*db.Chat, error) {
		return &db.Chat{ID: "chat-1", UserID: userID, TotalTokens: 100}, nil
	}
	mockDB.GetChatMessagesFunc = func(chatID string) ([]db.Message, error) {
		return []db.Message{{Role: "user", Content: "old", Tokens: 100}}, nil
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chat/message", jsonBody(t, MessageRequest{Message: "One more"}))
	newChatHandlers(mockDB, &testutil.MockProvider{}).MessageHandler(rec, req, chatUser())

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 on quota rejection, got %d", rec.Code)
	}
}

func TestHistoryHandler_EmptyChat(t *testing.T) {
	mockDB := &testutil.MockDatabase{}
	mockDB.GetChatByUserFunc = func(userID string) (*db.Chat, error) {
		return nil, db.ErrNotFound
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/chat/history", nil)
	newChatHandlers(mockDB, &testutil.MockProvider{}).HistoryHandler(rec, req, chatUser())

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp struct {
		Chat ChatView `json:"chat"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Chat.Title != "New Astrology Chat" {
		t.Errorf("Expected default title, got %q", resp.Chat.Title)
	}
	if len(resp.Chat.Messages) != 0 || resp.Chat.TotalTokens != 0 {
		t.Errorf("Expected empty chat view, got %+v", resp.Chat)
	}
}

func TestClearHandler(t *testing.T) {
	mockDB := &testutil.MockDatabase{}
	mockDB.GetChatByUserFunc = func(userID string) (*db.Chat, error) {
		return &db.Chat{ID: "chat-1", UserID: userID, Title: "Old Title", TotalTokens: 50}, nil
	}

	resetCalled := false
	mockDB.ResetChatFunc = func(chatID, title string) error {
		resetCalled = true
		return nil
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/chat/clear", nil)
	newChatHandlers(mockDB, &testutil.MockProvider{}).ClearHandler(rec, req, chatUser())

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !resetCalled {
		t.Error("Expected chat to be reset")
	}
}

func TestStatsHandler(t *testing.T) {
	mockDB := &testutil.MockDatabase{}
	mockDB.GetChatByUserFunc = func(userID string) (*db.Chat, error) {
		return nil, db.ErrNotFound
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/chat/stats", nil)
	newChatHandlers(mockDB, &testutil.MockProvider{}).StatsHandler(rec, req, chatUser())

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.MaxTokens != 100 || resp.MaxMessages != 10 {
		t.Errorf("Expected configured maxima, got %+v", resp)
	}
	if resp.RemainingTokens != 100 {
		t.Errorf("Expected full budget remaining, got %d", resp.RemainingTokens)
	}
}

package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"starry-api/internal/logger"
	"starry-api/internal/repository/db"
	"starry-api/internal/service/chat"
	"starry-api/internal/service/prompt"
	"starry-api/pkg/validation"
)

// ChatHandlers exposes the chat message, history, clear and stats
// endpoints.
type ChatHandlers struct {
	chatService *chat.Service
	validator   *validation.ChatRequestValidator
}

// NewChatHandlers creates a new ChatHandlers
func NewChatHandlers(chatService *chat.Service) *ChatHandlers {
	return &ChatHandlers{
		chatService: chatService,
		validator:   validation.NewChatRequestValidator(),
	}
}

type MessageRequest struct {
	Message string              `json:"message"`
	Context *prompt.ChatContext `json:"context,omitempty"`
}

type MessageResponse struct {
	Message         string `json:"message"`
	TotalTokens     int    `json:"totalTokens"`
	RemainingTokens int    `json:"remainingTokens"`
	MessagesCount   int    `json:"messagesCount"`
	MaxMessages     int    `json:"maxMessages"`
	ChatTitle       string `json:"chatTitle,omitempty"`
}

type StatsResponse struct {
	TotalTokens     int        `json:"totalTokens"`
	RemainingTokens int        `json:"remainingTokens"`
	MessagesCount   int        `json:"messagesCount"`
	MaxMessages     int        `json:"maxMessages"`
	MaxTokens       int        `json:"maxTokens"`
	LastActivity    *time.Time `json:"lastActivity"`
}

// MessageHandler runs one chat turn for the authenticated user
func (h *ChatHandlers) MessageHandler(w http.ResponseWriter, r *http.Request, user *db.User) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	requestType := ""
	if req.Context != nil {
		requestType = req.Context.RequestType
	}
	if err := h.validator.ValidateChatRequest(req.Message, requestType); err != nil {
		sendValidationError(w, err)
		return
	}

	logger.Log.WithField("handle", user.TelegramHandle).Info("Chat message received")

	resp, err := h.chatService.SendMessage(r.Context(), user, req.Message, req.Context)
	if err != nil {
		sendError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, MessageResponse{
		Message:         resp.Message,
		TotalTokens:     resp.TotalTokens,
		RemainingTokens: resp.RemainingTokens,
		MessagesCount:   resp.MessagesCount,
		MaxMessages:     resp.MaxMessages,
		ChatTitle:       resp.ChatTitle,
	})
}

// HistoryHandler returns the chat snapshot, empty defaults included
func (h *ChatHandlers) HistoryHandler(w http.ResponseWriter, r *http.Request, user *db.User) {
	view, err := h.chatService.History(user)
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{"chat": newChatView(view)})
}

// ClearHandler resets the chat and returns the post-clear view
func (h *ChatHandlers) ClearHandler(w http.ResponseWriter, r *http.Request, user *db.User) {
	view, err := h.chatService.Clear(user)
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{
		"message": "Chat cleared successfully",
		"chat":    newChatView(view),
	})
}

// StatsHandler returns the usage summary
func (h *ChatHandlers) StatsHandler(w http.ResponseWriter, r *http.Request, user *db.User) {
	stats, err := h.chatService.UsageStats(user)
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, StatsResponse{
		TotalTokens:     stats.TotalTokens,
		RemainingTokens: stats.RemainingTokens,
		MessagesCount:   stats.MessagesCount,
		MaxMessages:     stats.MaxMessages,
		MaxTokens:       stats.MaxTokens,
		LastActivity:    stats.LastActivity,
	})
}

package db

import "errors"

// Sentinel errors returned by Database implementations.
var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateHandle = errors.New("telegram handle already exists")
)

// Database defines the interface for all database operations.
// This allows for easier testing through mocking and decouples the
// services from the specific database implementation.
type Database interface {
	// Users
	GetUserByHandle(handle string) (*User, error)
	GetUserByID(id string) (*User, error)
	CreateUser(handle, name, email, passwordHash string, birth *BirthData, profile *AstrologyProfile) (*User, error)
	UpdateUserProfile(userID string, update ProfileUpdate) (*User, error)

	// Chats
	GetChatByUser(userID string) (*Chat, error)
	CreateChat(userID, title string) (*Chat, error)
	GetChatMessages(chatID string) ([]Message, error)

	// AppendTurn persists one full exchange atomically: an optional
	// title update, the user and assistant messages, and the new
	// running token total. Nothing is written if any step fails.
	AppendTurn(chatID string, title *string, userMsg, assistantMsg Message, totalTokens int) error

	// ResetChat empties the chat and restores the default title.
	ResetChat(chatID, title string) error

	Close() error
}

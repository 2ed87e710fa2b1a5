package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"starry-api/internal/logger"
	"starry-api/internal/repository/db"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// GetChatByUser retrieves the single chat owned by a user
func (p *PostgresDB) GetChatByUser(userID string) (*db.Chat, error) {
	var chat db.Chat
	query := `SELECT id, user_id, title, total_tokens, created_at, updated_at
	FROM chats WHERE user_id = $1`

	err := p.conn.QueryRow(query, userID).Scan(&chat.ID, &chat.UserID, &chat.Title,
		&chat.TotalTokens, &chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("error retrieving chat: %w", err)
	}
	return &chat, nil
}

// CreateChat creates an empty chat for a user
func (p *PostgresDB) CreateChat(userID, title string) (*db.Chat, error) {
	chatID := uuid.New().String()
	var chat db.Chat

	query := `
	INSERT INTO chats (id, user_id, title)
	VALUES ($1, $2, $3)
	RETURNING id, user_id, title, total_tokens, created_at, updated_at`

	err := p.conn.QueryRow(query, chatID, userID, title).Scan(&chat.ID, &chat.UserID,
		&chat.Title, &chat.TotalTokens, &chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating chat: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"chat_id": chatID, "user_id": userID}).Info("Created new chat")
	return &chat, nil
}

// GetChatMessages returns the chat's messages in append order
func (p *PostgresDB) GetChatMessages(chatID string) ([]db.Message, error) {
	query := `SELECT id, chat_id, role, content, tokens, created_at
	FROM messages WHERE chat_id = $1 ORDER BY seq`

	rows, err := p.conn.Query(query, chatID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving messages: %w", err)
	}
	defer rows.Close()

	var messages []db.Message
	for rows.Next() {
		var msg db.Message
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Role, &msg.Content, &msg.Tokens, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// AppendTurn persists one user/assistant exchange in a single
// transaction so the totals invariant holds even on failure.
func (p *PostgresDB) AppendTurn(chatID string, title *string, userMsg, assistantMsg db.Message, totalTokens int) error {
	tx, err := p.conn.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	insertMsg := `INSERT INTO messages (id, chat_id, role, content, tokens, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

	for _, msg := range []db.Message{userMsg, assistantMsg} {
		id := msg.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := tx.Exec(insertMsg, id, chatID, msg.Role, msg.Content, msg.Tokens, msg.CreatedAt); err != nil {
			return fmt.Errorf("error inserting %s message: %w", msg.Role, err)
		}
	}

	if title != nil {
		if _, err := tx.Exec(`UPDATE chats SET title = $2, total_tokens = $3, updated_at = now() WHERE id = $1`,
			chatID, *title, totalTokens); err != nil {
			return fmt.Errorf("error updating chat: %w", err)
		}
	} else {
		if _, err := tx.Exec(`UPDATE chats SET total_tokens = $2, updated_at = now() WHERE id = $1`,
			chatID, totalTokens); err != nil {
			return fmt.Errorf("error updating chat: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing turn: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"chat_id": chatID, "total_tokens": totalTokens}).Debug("Appended chat turn")
	return nil
}

// ResetChat deletes all messages and restores the default title
func (p *PostgresDB) ResetChat(chatID, title string) error {
	tx, err := p.conn.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages WHERE chat_id = $1`, chatID); err != nil {
		return fmt.Errorf("error deleting messages: %w", err)
	}

	if _, err := tx.Exec(`UPDATE chats SET title = $2, total_tokens = 0, updated_at = now() WHERE id = $1`,
		chatID, title); err != nil {
		return fmt.Errorf("error resetting chat: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing reset: %w", err)
	}

	logger.Log.WithField("chat_id", chatID).Info("Chat cleared")
	return nil
}

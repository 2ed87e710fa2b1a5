package validation

import (
	"errors"
	"fmt"
	"strings"
)

const maxMessageLength = 2000

// ChatRequestValidator validates chat-related requests
type ChatRequestValidator struct{}

// NewChatRequestValidator creates a new ChatRequestValidator
func NewChatRequestValidator() *ChatRequestValidator {
	return &ChatRequestValidator{}
}

// ValidateMessage validates a chat message
func (v *ChatRequestValidator) ValidateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return errors.New("message is required")
	}
	if len(message) > maxMessageLength {
		return fmt.Errorf("message too long (max %d characters)", maxMessageLength)
	}
	return nil
}

// ValidateRequestType validates the optional context request type
func (v *ChatRequestValidator) ValidateRequestType(requestType string) error {
	if requestType == "" {
		return nil
	}

	validTypes := map[string]bool{
		"general":       true,
		"compatibility": true,
	}

	if !validTypes[requestType] {
		return fmt.Errorf("requestType must be one of: general, compatibility; got %s", requestType)
	}
	return nil
}

// ValidateChatRequest validates a complete chat message request
func (v *ChatRequestValidator) ValidateChatRequest(message, requestType string) error {
	if err := v.ValidateMessage(message); err != nil {
		return err
	}
	return v.ValidateRequestType(requestType)
}

package validation

import (
	"errors"
	"fmt"
	"regexp"
)

// handlePattern matches a telegram handle with an optional leading "@".
var handlePattern = regexp.MustCompile(`^@?[a-zA-Z0-9_]{5,32}$`)

const minPasswordLength = 6

// AuthRequestValidator validates auth-related requests
type AuthRequestValidator struct{}

// NewAuthRequestValidator creates a new AuthRequestValidator
func NewAuthRequestValidator() *AuthRequestValidator {
	return &AuthRequestValidator{}
}

// ValidateHandle validates the telegram handle format
func (v *AuthRequestValidator) ValidateHandle(handle string) error {
	if handle == "" {
		return errors.New("telegram handle is required")
	}
	if !handlePattern.MatchString(handle) {
		return errors.New("invalid telegram handle format")
	}
	return nil
}

// ValidatePassword validates the password strength
func (v *AuthRequestValidator) ValidatePassword(password string) error {
	if password == "" {
		return errors.New("password is required")
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	return nil
}

// ValidateRegisterRequest validates a complete registration request
func (v *AuthRequestValidator) ValidateRegisterRequest(handle, name, password string) error {
	if handle == "" || name == "" || password == "" {
		return errors.New("telegram handle, name, and password are required")
	}
	if err := v.ValidatePassword(password); err != nil {
		return err
	}
	return v.ValidateHandle(handle)
}

// ValidateLoginRequest validates a login request
func (v *AuthRequestValidator) ValidateLoginRequest(handle, password string) error {
	if handle == "" || password == "" {
		return errors.New("telegram handle and password are required")
	}
	return nil
}

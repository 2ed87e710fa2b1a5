// Package auth issues and validates credentials and resolves bearer
// tokens to user records.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"starry-api/internal/apperr"
	"starry-api/internal/config"
	"starry-api/internal/logger"
	"starry-api/internal/repository/db"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// welcomeChatTitle names the chat created eagerly at registration.
const welcomeChatTitle = "Welcome to Starry"

// Claims are the JWT claims carried by an access token
type Claims struct {
	UserID         string `json:"userId"`
	TelegramHandle string `json:"telegramHandle"`
	jwt.RegisteredClaims
}

// Service handles registration, login and token verification
type Service struct {
	db  db.Database
	cfg *config.AuthConfig
}

// NewService creates a new auth Service
func NewService(database db.Database, cfg *config.AuthConfig) *Service {
	return &Service{db: database, cfg: cfg}
}

// RegisterRequest carries the fields needed to create an account
type RegisterRequest struct {
	TelegramHandle string
	Name           string
	Email          string
	Password       string
	BirthData      *db.BirthData
}

// NormalizeHandle strips a leading "@" and lowercases the handle. All
// lookups and storage use the normalized form.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

// Register creates a user plus their initial chat and returns a signed
// token. Fails with Conflict when the handle is taken.
func (s *Service) Register(req RegisterRequest) (*db.User, string, error) {
	handle := NormalizeHandle(req.TelegramHandle)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("error hashing password: %w", err)
	}

	user, err := s.db.CreateUser(handle, req.Name, req.Email, string(hashedPassword), req.BirthData, nil)
	if err != nil {
		if errors.Is(err, db.ErrDuplicateHandle) {
			return nil, "", apperr.Conflict("User with this telegram handle already exists")
		}
		return nil, "", fmt.Errorf("error creating user: %w", err)
	}

	// Initial chat is created eagerly so the 1:1 link exists up front
	if _, err := s.db.CreateChat(user.ID, welcomeChatTitle); err != nil {
		return nil, "", fmt.Errorf("error creating initial chat: %w", err)
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("error generating token: %w", err)
	}

	logger.Log.WithField("handle", handle).Info("User registered successfully")
	return user, token, nil
}

// Login verifies a handle/password pair and returns a signed token.
// Unknown handles and bad passwords are indistinguishable to the caller.
func (s *Service) Login(telegramHandle, password string) (*db.User, string, error) {
	handle := NormalizeHandle(telegramHandle)

	user, err := s.db.GetUserByHandle(handle)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			logger.Log.WithField("handle", handle).Info("Login failed: user not found")
			return nil, "", apperr.Unauthorized("Invalid credentials")
		}
		return nil, "", fmt.Errorf("error retrieving user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		logger.Log.WithField("handle", handle).Info("Login failed: invalid password")
		return nil, "", apperr.Unauthorized("Invalid credentials")
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("error generating token: %w", err)
	}

	logger.Log.WithField("handle", handle).Info("User logged in successfully")
	return user, token, nil
}

// GenerateToken signs a new access token for the user
func (s *Service) GenerateToken(user *db.User) (string, error) {
	claims := Claims{
		UserID:         user.ID,
		TelegramHandle: user.TelegramHandle,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.cfg.TokenExpiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.cfg.JWTSecret)
}

// VerifyToken validates a bearer token and resolves it to the user it
// was issued for.
func (s *Service) VerifyToken(tokenString string) (*db.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.cfg.JWTSecret, nil
	})
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	user, err := s.db.GetUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	return user, nil
}

// UpdateProfile applies a profile update. Handle and password stay
// immutable through this path.
func (s *Service) UpdateProfile(userID string, update db.ProfileUpdate) (*db.User, error) {
	user, err := s.db.UpdateUserProfile(userID, update)
	if err != nil {
		return nil, fmt.Errorf("error updating profile: %w", err)
	}
	return user, nil
}

package handlers

import (
	"encoding/json"
	"net/http"

	"starry-api/internal/auth"
	"starry-api/internal/repository/db"
	"starry-api/pkg/validation"
)

// AuthHandlers exposes the registration, login and profile endpoints
type AuthHandlers struct {
	authService *auth.Service
	validator   *validation.AuthRequestValidator
}

// NewAuthHandlers creates a new AuthHandlers
func NewAuthHandlers(authService *auth.Service) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		validator:   validation.NewAuthRequestValidator(),
	}
}

type RegisterRequest struct {
	TelegramHandle string         `json:"telegramHandle"`
	Name           string         `json:"name"`
	Email          string         `json:"email,omitempty"`
	Password       string         `json:"password"`
	BirthData      *BirthDataView `json:"birthData,omitempty"`
}

type LoginRequest struct {
	TelegramHandle string `json:"telegramHandle"`
	Password       string `json:"password"`
}

type AuthResponse struct {
	Message string    `json:"message"`
	User    *UserView `json:"user"`
	Token   string    `json:"token"`
}

type UpdateProfileRequest struct {
	Name             *string               `json:"name,omitempty"`
	Email            *string               `json:"email,omitempty"`
	BirthData        *BirthDataView        `json:"birthData,omitempty"`
	AstrologyProfile *AstrologyProfileView `json:"astrologyProfile,omitempty"`
}

// RegisterHandler creates a new user account
func (h *AuthHandlers) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.validator.ValidateRegisterRequest(req.TelegramHandle, req.Name, req.Password); err != nil {
		sendValidationError(w, err)
		return
	}

	user, token, err := h.authService.Register(auth.RegisterRequest{
		TelegramHandle: req.TelegramHandle,
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		BirthData:      birthDataFromView(req.BirthData),
	})
	if err != nil {
		sendError(w, err)
		return
	}

	sendJSON(w, http.StatusCreated, AuthResponse{
		Message: "User registered successfully",
		User:    newUserView(user),
		Token:   token,
	})
}

// LoginHandler authenticates a user and returns a token
func (h *AuthHandlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.validator.ValidateLoginRequest(req.TelegramHandle, req.Password); err != nil {
		sendValidationError(w, err)
		return
	}

	user, token, err := h.authService.Login(req.TelegramHandle, req.Password)
	if err != nil {
		sendError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, AuthResponse{
		Message: "Login successful",
		User:    newUserView(user),
		Token:   token,
	})
}

// ProfileHandler returns the authenticated user's profile
func (h *AuthHandlers) ProfileHandler(w http.ResponseWriter, r *http.Request, user *db.User) {
	sendJSON(w, http.StatusOK, map[string]any{"user": newUserView(user)})
}

// UpdateProfileHandler applies profile updates. Handle and password are
// immutable via this path and silently ignored if sent.
func (h *AuthHandlers) UpdateProfileHandler(w http.ResponseWriter, r *http.Request, user *db.User) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	updated, err := h.authService.UpdateProfile(user.ID, db.ProfileUpdate{
		Name:             req.Name,
		Email:            req.Email,
		BirthData:        birthDataFromView(req.BirthData),
		AstrologyProfile: astrologyProfileFromView(req.AstrologyProfile),
	})
	if err != nil {
		sendError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    newUserView(updated),
	})
}

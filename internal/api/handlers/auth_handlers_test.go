package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"starry-api/internal/auth"
	"starry-api/internal/config"
	"starry-api/internal/repository/db"
	"starry-api/internal/testutil"
)

func newAuthHandlers(mockDB *testutil.MockDatabase) *AuthHandlers {
	service := auth.NewService(mockDB, &config.AuthConfig{
		JWTSecret:       []byte("test-secret-key-that-is-long-enough-123"),
		TokenExpiration: time.Hour,
	})
	return NewAuthHandlers(service)
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegisterHandler_Success(t *testing.T) {
	mockDB := &testutil.MockDatabase{}
	mockDB.CreateUserFunc = func(handle, name, email, passwordHash string, birth *db.BirthData, profile *db.AstrologyProfile) (*db.User, error) {
		return &db.User{ID: "user-1", TelegramHandle: handle, Name: name}, nil
	}
	mockDB.CreateChatFunc = func(userID, title string) (*db.Chat, error) {
		return &db.Chat{ID: "chat-1", UserID: userID, Title: title}, nil
	}

	rec := postJSON(t, newAuthHandlers(mockDB).RegisterHandler, "/api/auth/register", RegisterRequest{
		TelegramHandle: "@stargazer",
		Name:           "Star Gazer",
		Password:       "secret1",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Token == "" {
		t.Error("Expected a token in the response")
	}
	if resp.User == nil || resp.User.TelegramHandle != "stargazer" {
		t.Errorf("Expected normalized user view, got %+v", resp.User)
	}
}

func TestRegisterHandler_ValidationError(t *testing.T) {
	rec := postJSON(t, newAuthHandlers(&testutil.MockDatabase{}).RegisterHandler, "/api/auth/register", RegisterRequest{
		TelegramHandle: "@stargazer",
		Name:           "Star Gazer",
		Password:       "short",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestRegisterHandler_DuplicateHandle(t *testing.T) {
	mockDB := &testutil.MockDatabase{}
	mockDB.CreateUserFunc = func(handle, name, email, passwordHash string, birth *db.BirthData, profile *db.AstrologyProfile) (*db.User, error) {
		return nil, db.ErrDuplicateHandle
	}

	rec := postJSON(t, newAuthHandlers(mockDB).RegisterHandler, "/api/auth/register", RegisterRequest{
		TelegramHandle: "@stargazer",
		Name:           "Star Gazer",
		Password:       "secret1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == "" {
		t.Error("Expected error message in body")
	}
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	mockDB := &testutil.MockDatabase{}
	mockDB.GetUserByHandleFunc = func(handle string) (*db.User, error) {
		return nil, db.ErrNotFound
	}

	rec := postJSON(t, newAuthHandlers(mockDB).LoginHandler, "/api/auth/login", LoginRequest{
		TelegramHandle: "nobody",
		Password:       "whatever",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}

func TestLoginHandler_InvalidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	newAuthHandlers(&testutil.MockDatabase{}).LoginHandler(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestProfileHandler_OmitsPasswordHash(t *testing.T) {
	user := &db.User{ID: "user-1", TelegramHandle: "stargazer", Name: "Star Gazer", PasswordHash: "supersecret"}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	rec := httptest.NewRecorder()
	newAuthHandlers(&testutil.MockDatabase{}).ProfileHandler(rec, req, user)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("supersecret")) {
		t.Error("Expected password hash to be absent from the profile view")
	}
}

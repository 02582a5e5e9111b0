package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ksfraser/WealthSystem-sub002/api/middleware"
	"github.com/ksfraser/WealthSystem-sub002/db"
	"github.com/ksfraser/WealthSystem-sub002/internal/appconfig"
	"github.com/ksfraser/WealthSystem-sub002/internal/authn"
	"github.com/ksfraser/WealthSystem-sub002/models"
)

func newTestService(store *MockStore, mailer *MockMailer) *Service {
	return &Service{
		Config: &appconfig.Config{
			Server: appconfig.ServerConfig{PortalURL: "https://portal.example.com"},
			Auth: appconfig.AuthConfig{
				SessionSecret:   "test-secret",
				SessionTTLHours: 24,
				InviteTTLHours:  24 * 7,
			},
		},
		DB:     store,
		Mailer: mailer,
	}
}

func withClaims(r *http.Request, claims authn.Claims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, claims))
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewBuffer(data)
}

func TestLoginService_Success(t *testing.T) {
	mockStore := new(MockStore)
	svc := newTestService(mockStore, new(MockMailer))

	hash, err := authn.HashPassword("s3cret-pass")
	assert.NoError(t, err)

	user := &models.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
	}
	session := &models.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}

	mockStore.On("GetUserByUsername", "alice").Return(user, nil)
	mockStore.On("CreateSession", user.ID, 24*time.Hour).Return(session, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		jsonBody(t, models.LoginRequest{Username: "alice", Password: "s3cret-pass"}))
	w := httptest.NewRecorder()

	LoginService(svc, w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success int                  `json:"success"`
		Data    models.LoginResponse `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Success)
	assert.NotEmpty(t, resp.Data.Token)
	assert.Equal(t, "alice", resp.Data.User.Username)

	// The token round-trips with the configured secret.
	claims, err := authn.ParseClaims(resp.Data.Token, []byte("test-secret"))
	assert.NoError(t, err)
	assert.Equal(t, session.ID, claims.SessionID)

	// The session cookie is set.
	cookies := w.Result().Cookies()
	assert.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	assert.Equal(t, resp.Data.Token, cookies[0].Value)

	mockStore.AssertExpectations(t)
}

func TestLoginService_WrongPassword(t *testing.T) {
	mockStore := new(MockStore)
	svc := newTestService(mockStore, new(MockMailer))

	hash, err := authn.HashPassword("s3cret-pass")
	assert.NoError(t, err)

	mockStore.On("GetUserByUsername", "alice").
		Return(&models.User{ID: uuid.New(), Username: "alice", PasswordHash: hash}, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		jsonBody(t, models.LoginRequest{Username: "alice", Password: "wrong"}))
	w := httptest.NewRecorder()

	LoginService(svc, w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockStore.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func TestLoginService_UnknownUser(t *testing.T) {
	mockStore := new(MockStore)
	svc := newTestService(mockStore, new(MockMailer))

	mockStore.On("GetUserByUsername", "nobody").Return(nil, db.ErrUserNotFound)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		jsonBody(t, models.LoginRequest{Username: "nobody", Password: "whatever1"}))
	w := httptest.NewRecorder()

	LoginService(svc, w, req)

	// Indistinguishable from a wrong password.
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginService_InvalidPayload(t *testing.T) {
	svc := newTestService(new(MockStore), new(MockMailer))

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()

	LoginService(svc, w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutService(t *testing.T) {
	mockStore := new(MockStore)
	svc := newTestService(mockStore, new(MockMailer))

	sessionID := uuid.New()
	mockStore.On("RevokeSession", sessionID).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req = withClaims(req, authn.Claims{Username: "alice", SessionID: sessionID})
	w := httptest.NewRecorder()

	LogoutService(svc, w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)

	cookies := w.Result().Cookies()
	assert.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	mockStore.AssertExpectations(t)
}

func TestLogoutService_MissingClaims(t *testing.T) {
	svc := newTestService(new(MockStore), new(MockMailer))

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	w := httptest.NewRecorder()

	LogoutService(svc, w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCurrentUserService_ActiveSession(t *testing.T) {
	mockStore := new(MockStore)
	svc := newTestService(mockStore, new(MockMailer))

	userID := uuid.New()
	sessionID := uuid.New()

	mockStore.On("GetSession", sessionID).Return(&models.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	mockStore.On("GetUserByID", userID).
		Return(&models.User{ID: userID, Username: "alice"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req = withClaims(req, authn.Claims{Username: "alice", SessionID: sessionID})
	w := httptest.NewRecorder()

	CurrentUserService(svc, w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockStore.AssertExpectations(t)
}

func TestCurrentUserService_RevokedSession(t *testing.T) {
	mockStore := new(MockStore)
	svc := newTestService(mockStore, new(MockMailer))

	sessionID := uuid.New()
	revokedAt := time.Now().Add(-time.Minute)

	mockStore.On("GetSession", sessionID).Return(&models.Session{
		ID:        sessionID,
		UserID:    uuid.New(),
		ExpiresAt: time.Now().Add(time.Hour),
		RevokedAt: &revokedAt,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req = withClaims(req, authn.Claims{Username: "alice", SessionID: sessionID})
	w := httptest.NewRecorder()

	CurrentUserService(svc, w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockStore.AssertNotCalled(t, "GetUserByID", mock.Anything)
}

func TestCurrentUserService_ExpiredSession(t *testing.T) {
	mockStore := new(MockStore)
	svc := newTestService(mockStore, new(MockMailer))

	sessionID := uuid.New()
	mockStore.On("GetSession", sessionID).Return(&models.Session{
		ID:        sessionID,
		UserID:    uuid.New(),
		ExpiresAt: time.Now().Add(-time.Minute),
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req = withClaims(req, authn.Claims{Username: "alice", SessionID: sessionID})
	w := httptest.NewRecorder()

	CurrentUserService(svc, w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPopFlashService(t *testing.T) {
	mockStore := new(MockStore)
	svc := newTestService(mockStore, new(MockMailer))

	sessionID := uuid.New()
	mockStore.On("PopFlashes", sessionID).Return([]models.FlashMessage{
		{SessionID: sessionID, Level: models.FlashSuccess, Message: "Profile updated successfully."},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/flash", nil)
	req = withClaims(req, authn.Claims{Username: "alice", SessionID: sessionID})
	w := httptest.NewRecorder()

	PopFlashService(svc, w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data models.FlashResponse `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Len(t, resp.Data.Messages, 1)
	assert.Equal(t, models.FlashSuccess, resp.Data.Messages[0].Level)
	mockStore.AssertExpectations(t)
}

func TestPopFlashService_Empty(t *testing.T) {
	mockStore := new(MockStore)
	svc := newTestService(mockStore, new(MockMailer))

	sessionID := uuid.New()
	mockStore.On("PopFlashes", sessionID).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/flash", nil)
	req = withClaims(req, authn.Claims{Username: "alice", SessionID: sessionID})
	w := httptest.NewRecorder()

	PopFlashService(svc, w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data models.FlashResponse `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotNil(t, resp.Data.Messages)
	assert.Empty(t, resp.Data.Messages)
}

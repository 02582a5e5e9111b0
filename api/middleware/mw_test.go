package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ksfraser/WealthSystem-sub002/internal/authn"
	"github.com/ksfraser/WealthSystem-sub002/models"
)

var testSecret = []byte("test-secret")

// fakeSessionStore serves the sessions it has been seeded with.
type fakeSessionStore struct {
	sessions map[uuid.UUID]*models.Session
}

func (s *fakeSessionStore) GetSession(id uuid.UUID) (*models.Session, error) {
	if session, ok := s.sessions[id]; ok {
		return session, nil
	}
	return nil, errors.New("session not found")
}

func newSessionStore(sessions ...*models.Session) *fakeSessionStore {
	store := &fakeSessionStore{sessions: map[uuid.UUID]*models.Session{}}
	for _, s := range sessions {
		store.sessions[s.ID] = s
	}
	return store
}

func activeSession() *models.Session {
	return &models.Session{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func signedToken(t *testing.T, username string, sessionID uuid.UUID) string {
	t.Helper()
	claims := authn.Claims{
		Username:  username,
		SessionID: sessionID,
	}
	token, err := authn.SignClaims(claims, testSecret, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestJWTMiddleware_ValidBearerToken(t *testing.T) {
	session := activeSession()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(ClaimsKey).(authn.Claims)
		assert.True(t, ok)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, session.ID, claims.SessionID)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Add("Authorization", "Bearer "+signedToken(t, "alice", session.ID))

	w := httptest.NewRecorder()
	JWTMiddleware(testSecret, newSessionStore(session))(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTMiddleware_SessionCookie(t *testing.T) {
	session := activeSession()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(ClaimsKey).(authn.Claims)
		assert.True(t, ok)
		assert.Equal(t, "bob", claims.Username)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: signedToken(t, "bob", session.ID)})

	w := httptest.NewRecorder()
	JWTMiddleware(testSecret, newSessionStore(session))(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTMiddleware_InvalidToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("expected request to be blocked")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Add("Authorization", "Bearer not-a-token")

	w := httptest.NewRecorder()
	JWTMiddleware(testSecret, newSessionStore())(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddleware_WrongSecret(t *testing.T) {
	session := activeSession()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("expected request to be blocked")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Add("Authorization", "Bearer "+signedToken(t, "mallory", session.ID))

	w := httptest.NewRecorder()
	JWTMiddleware([]byte("other-secret"), newSessionStore(session))(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddleware_MissingToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("expected request to be blocked")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	w := httptest.NewRecorder()
	JWTMiddleware(testSecret, newSessionStore())(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// A valid, unexpired token whose backing session row has been revoked must
// be rejected before any handler runs. Logout is immediate on every
// authenticated route.
func TestJWTMiddleware_RevokedSession(t *testing.T) {
	session := activeSession()
	revokedAt := time.Now().Add(-time.Minute)
	session.RevokedAt = &revokedAt

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("expected request to be blocked")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Add("Authorization", "Bearer "+signedToken(t, "alice", session.ID))

	w := httptest.NewRecorder()
	JWTMiddleware(testSecret, newSessionStore(session))(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddleware_ExpiredSession(t *testing.T) {
	session := activeSession()
	session.ExpiresAt = time.Now().Add(-time.Minute)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("expected request to be blocked")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Add("Authorization", "Bearer "+signedToken(t, "alice", session.ID))

	w := httptest.NewRecorder()
	JWTMiddleware(testSecret, newSessionStore(session))(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddleware_UnknownSession(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("expected request to be blocked")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Add("Authorization", "Bearer "+signedToken(t, "alice", uuid.New()))

	w := httptest.NewRecorder()
	JWTMiddleware(testSecret, newSessionStore())(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Flash message levels.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Session represents a server-side login session.
type Session struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"userId"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
}

// IsActive reports whether the session can still be used.
func (s *Session) IsActive() bool {
	return s.RevokedAt == nil && time.Now().Before(s.ExpiresAt)
}

// FlashMessage is a one-time user-facing notice tied to a session. It is
// deleted when popped.
type FlashMessage struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"sessionId"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// FlashResponse holds the flash messages popped for a session.
type FlashResponse struct {
	Messages []FlashMessage `json:"messages"`
}

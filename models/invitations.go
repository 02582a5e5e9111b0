package models

import (
	"time"

	"github.com/google/uuid"
)

// Invitation represents a one-time use invitation for account creation.
type Invitation struct {
	ID         uuid.UUID  `json:"id"`
	Token      string     `json:"token"`
	Email      string     `json:"email"`
	IsAdmin    bool       `json:"isAdmin"`
	InvitedBy  string     `json:"invitedBy"`
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  time.Time  `json:"expiresAt"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
	AcceptedBy string     `json:"acceptedBy,omitempty"`
}

// IsValid reports whether the invitation can still be accepted.
func (i *Invitation) IsValid() bool {
	return i.AcceptedAt == nil && time.Now().Before(i.ExpiresAt)
}

// InvitationsResponse holds a list of invitations.
type InvitationsResponse struct {
	Invitations []Invitation `json:"invitations"`
}

// InvitationResponse represents a response with a single invitation.
type InvitationResponse struct {
	Invitation Invitation `json:"invitation"`
}

type CreateInvitationRequest struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

type AcceptInvitationRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

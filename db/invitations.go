package db

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ksfraser/WealthSystem-sub002/models"
)

var (
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInvitationExpired  = errors.New("invitation has expired")
	ErrInvitationUsed     = errors.New("invitation has already been accepted")
	ErrUsernameTaken      = errors.New("username already taken")
)

// isDuplicateKey reports whether the error is a unique constraint violation
// from either supported driver.
func isDuplicateKey(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return false
}

// NewInvitationToken returns a 64-character hex token.
func NewInvitationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("error generating invitation token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

const invitationColumns = `id, token, email, is_admin, invited_by, created_at, expires_at, accepted_at, accepted_by`

func scanInvitation(row interface{ Scan(...interface{}) error }) (*models.Invitation, error) {
	var inv models.Invitation
	var acceptedAt sql.NullTime
	var acceptedBy sql.NullString
	if err := row.Scan(
		&inv.ID,
		&inv.Token,
		&inv.Email,
		&inv.IsAdmin,
		&inv.InvitedBy,
		&inv.CreatedAt,
		&inv.ExpiresAt,
		&acceptedAt,
		&acceptedBy); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("error scanning invitation: %w", err)
	}
	if acceptedAt.Valid {
		t := acceptedAt.Time
		inv.AcceptedAt = &t
	}
	inv.AcceptedBy = acceptedBy.String
	return &inv, nil
}

// CreateInvitation inserts a new invitation, generating its token.
func (p *PortalDB) CreateInvitation(inv *models.Invitation) (*models.Invitation, error) {
	token, err := NewInvitationToken()
	if err != nil {
		return nil, err
	}

	tx, err := p.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	inv.ID = uuid.New()
	inv.Token = token
	inv.CreatedAt = time.Now().UTC()

	err = p.execQuery(tx, `
		INSERT INTO invitations (id, token, email, is_admin, invited_by, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		inv.ID.String(), inv.Token, inv.Email, inv.IsAdmin, inv.InvitedBy, inv.CreatedAt, inv.ExpiresAt)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := p.CommitTransaction(tx); err != nil {
		return nil, err
	}
	return inv, nil
}

// GetInvitationByToken retrieves a single invitation by its token.
func (p *PortalDB) GetInvitationByToken(token string) (*models.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token = $1`
	return scanInvitation(p.DB.QueryRow(p.rebind(query), token))
}

// ListInvitations retrieves all invitations, newest first.
func (p *PortalDB) ListInvitations() ([]models.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations ORDER BY created_at DESC`
	rows, err := p.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error retrieving invitations: %w", err)
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, *inv)
	}
	return invitations, rows.Err()
}

// AcceptInvitation atomically marks the invitation accepted and creates the
// user. The conditional update guards against double acceptance.
func (p *PortalDB) AcceptInvitation(token, username, passwordHash string) (*models.User, error) {
	inv, err := p.GetInvitationByToken(token)
	if err != nil {
		return nil, err
	}
	if inv.AcceptedAt != nil {
		return nil, ErrInvitationUsed
	}
	if !inv.IsValid() {
		return nil, ErrInvitationExpired
	}

	tx, err := p.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	now := time.Now().UTC()
	res, err := tx.Exec(p.rebind(`
		UPDATE invitations SET accepted_at = $1, accepted_by = $2
		WHERE token = $3 AND accepted_at IS NULL`),
		now, username, token)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("error accepting invitation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("error accepting invitation: %w", err)
	}
	if affected == 0 {
		tx.Rollback()
		return nil, ErrInvitationUsed
	}

	user := models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        inv.Email,
		PasswordHash: passwordHash,
		IsAdmin:      inv.IsAdmin,
		CreatedAt:    now,
	}
	err = p.execQuery(tx, `
		INSERT INTO users (id, username, email, password_hash, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID.String(), user.Username, user.Email, user.PasswordHash, user.IsAdmin, user.CreatedAt)
	if err != nil {
		tx.Rollback()
		if isDuplicateKey(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	if err := p.CommitTransaction(tx); err != nil {
		return nil, err
	}
	return &user, nil
}

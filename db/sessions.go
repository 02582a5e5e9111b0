package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ksfraser/WealthSystem-sub002/models"
)

// ErrSessionNotFound is returned when no session matches the lookup.
var ErrSessionNotFound = errors.New("session not found")

// CreateSession inserts a new login session for the user.
func (p *PortalDB) CreateSession(userID uuid.UUID, ttl time.Duration) (*models.Session, error) {
	tx, err := p.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	now := time.Now().UTC()
	session := models.Session{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	err = p.execQuery(tx, `
		INSERT INTO sessions (id, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)`,
		session.ID.String(), session.UserID.String(), session.CreatedAt, session.ExpiresAt)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := p.CommitTransaction(tx); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSession retrieves a session by id.
func (p *PortalDB) GetSession(id uuid.UUID) (*models.Session, error) {
	query := `SELECT id, user_id, created_at, expires_at, revoked_at FROM sessions WHERE id = $1`

	var s models.Session
	var revokedAt sql.NullTime
	if err := p.DB.QueryRow(p.rebind(query), id.String()).Scan(
		&s.ID,
		&s.UserID,
		&s.CreatedAt,
		&s.ExpiresAt,
		&revokedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("error scanning session: %w", err)
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		s.RevokedAt = &t
	}
	return &s, nil
}

// RevokeSession marks the session revoked. Revoking an already revoked
// session is a no-op.
func (p *PortalDB) RevokeSession(id uuid.UUID) error {
	tx, err := p.DB.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	err = p.execQuery(tx, `
		UPDATE sessions SET revoked_at = $1 WHERE id = $2 AND revoked_at IS NULL`,
		time.Now().UTC(), id.String())
	if err != nil {
		tx.Rollback()
		return err
	}

	return p.CommitTransaction(tx)
}

// AddFlash queues a one-time flash message on the session.
func (p *PortalDB) AddFlash(sessionID uuid.UUID, level, message string) error {
	tx, err := p.DB.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	err = p.execQuery(tx, `
		INSERT INTO flash_messages (id, session_id, level, message, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), sessionID.String(), level, message, time.Now().UTC())
	if err != nil {
		tx.Rollback()
		return err
	}

	return p.CommitTransaction(tx)
}

// PopFlashes returns and deletes the session's queued flash messages in one
// transaction, so each message is delivered at most once.
func (p *PortalDB) PopFlashes(sessionID uuid.UUID) ([]models.FlashMessage, error) {
	tx, err := p.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	rows, err := tx.Query(p.rebind(`
		SELECT id, session_id, level, message, created_at FROM flash_messages
		WHERE session_id = $1 ORDER BY created_at`),
		sessionID.String())
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("error retrieving flash messages: %w", err)
	}

	var messages []models.FlashMessage
	for rows.Next() {
		var m models.FlashMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Level, &m.Message, &m.CreatedAt); err != nil {
			rows.Close()
			tx.Rollback()
			return nil, fmt.Errorf("error scanning flash message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		tx.Rollback()
		return nil, err
	}
	rows.Close()

	err = p.execQuery(tx, `DELETE FROM flash_messages WHERE session_id = $1`, sessionID.String())
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := p.CommitTransaction(tx); err != nil {
		return nil, err
	}
	return messages, nil
}

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ksfraser/WealthSystem-sub002/models"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

const userColumns = `id, username, email, password_hash, is_admin, created_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.IsAdmin,
		&u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error scanning user: %w", err)
	}
	return &u, nil
}

// GetUserByUsername retrieves a single user by username.
func (p *PortalDB) GetUserByUsername(username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(p.DB.QueryRow(p.rebind(query), username))
}

// GetUserByID retrieves a single user by id.
func (p *PortalDB) GetUserByID(id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(p.DB.QueryRow(p.rebind(query), id.String()))
}

// ListUsers retrieves all users ordered by creation time.
func (p *PortalDB) ListUsers() ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	rows, err := p.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error retrieving users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// CreateUser inserts a new user.
func (p *PortalDB) CreateUser(user *models.User) (*models.User, error) {
	tx, err := p.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()

	err = p.execQuery(tx, `
		INSERT INTO users (id, username, email, password_hash, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID.String(), user.Username, user.Email, user.PasswordHash, user.IsAdmin, user.CreatedAt)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := p.CommitTransaction(tx); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUserEmail updates a user's email address.
func (p *PortalDB) UpdateUserEmail(id uuid.UUID, email string) (*models.User, error) {
	tx, err := p.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	err = p.execQuery(tx, `UPDATE users SET email = $1 WHERE id = $2`, email, id.String())
	if err != nil {
		tx.Rollback()
		p.Log.Error().Err(err).Msg("error updating user email")
		return nil, fmt.Errorf("error updating user email: %w", err)
	}

	if err := p.CommitTransaction(tx); err != nil {
		return nil, err
	}

	return p.GetUserByID(id)
}

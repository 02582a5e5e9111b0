package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ksfraser/WealthSystem-sub002/internal/appconfig"
	"github.com/ksfraser/WealthSystem-sub002/internal/mailer"
	"github.com/ksfraser/WealthSystem-sub002/models"
)

// Store is the database surface the services depend on. *db.PortalDB is the
// production implementation; tests use the mocks in this package.
type Store interface {
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(id uuid.UUID) (*models.User, error)
	ListUsers() ([]models.User, error)
	UpdateUserEmail(id uuid.UUID, email string) (*models.User, error)

	CreateInvitation(inv *models.Invitation) (*models.Invitation, error)
	GetInvitationByToken(token string) (*models.Invitation, error)
	ListInvitations() ([]models.Invitation, error)
	AcceptInvitation(token, username, passwordHash string) (*models.User, error)

	CreateSession(userID uuid.UUID, ttl time.Duration) (*models.Session, error)
	GetSession(id uuid.UUID) (*models.Session, error)
	RevokeSession(id uuid.UUID) error
	AddFlash(sessionID uuid.UUID, level, message string) error
	PopFlashes(sessionID uuid.UUID) ([]models.FlashMessage, error)

	UpsertPosition(pos *models.Position) (*models.Position, error)
	ListPositions(date string) ([]models.Position, error)
	InsertTrade(trade *models.Trade) (*models.Trade, error)
	ListTrades(symbol string, limit int) ([]models.Trade, error)
	GetHistoricalPrices(symbol, from, to string) ([]models.HistoricalPrice, error)

	Ping(ctx context.Context) error
	Close() error
}

// Service contains all shared dependencies for handlers.
type Service struct {
	Config *appconfig.Config
	DB     Store
	Mailer mailer.Mailer
}

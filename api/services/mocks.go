package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ksfraser/WealthSystem-sub002/models"
)

type MockStore struct {
	mock.Mock
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendInvitation(ctx context.Context, to, acceptURL string) error {
	args := m.Called(ctx, to, acceptURL)
	return args.Error(0)
}

func (m *MockStore) GetUserByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockStore) GetUserByID(id uuid.UUID) (*models.User, error) {
	args := m.Called(id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockStore) ListUsers() ([]models.User, error) {
	args := m.Called()
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *MockStore) UpdateUserEmail(id uuid.UUID, email string) (*models.User, error) {
	args := m.Called(id, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockStore) CreateInvitation(inv *models.Invitation) (*models.Invitation, error) {
	args := m.Called(inv)
	invitation, _ := args.Get(0).(*models.Invitation)
	return invitation, args.Error(1)
}

func (m *MockStore) GetInvitationByToken(token string) (*models.Invitation, error) {
	args := m.Called(token)
	invitation, _ := args.Get(0).(*models.Invitation)
	return invitation, args.Error(1)
}

func (m *MockStore) ListInvitations() ([]models.Invitation, error) {
	args := m.Called()
	invitations, _ := args.Get(0).([]models.Invitation)
	return invitations, args.Error(1)
}

func (m *MockStore) AcceptInvitation(token, username, passwordHash string) (*models.User, error) {
	args := m.Called(token, username, passwordHash)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockStore) CreateSession(userID uuid.UUID, ttl time.Duration) (*models.Session, error) {
	args := m.Called(userID, ttl)
	session, _ := args.Get(0).(*models.Session)
	return session, args.Error(1)
}

func (m *MockStore) GetSession(id uuid.UUID) (*models.Session, error) {
	args := m.Called(id)
	session, _ := args.Get(0).(*models.Session)
	return session, args.Error(1)
}

func (m *MockStore) RevokeSession(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStore) AddFlash(sessionID uuid.UUID, level, message string) error {
	args := m.Called(sessionID, level, message)
	return args.Error(0)
}

func (m *MockStore) PopFlashes(sessionID uuid.UUID) ([]models.FlashMessage, error) {
	args := m.Called(sessionID)
	messages, _ := args.Get(0).([]models.FlashMessage)
	return messages, args.Error(1)
}

func (m *MockStore) UpsertPosition(pos *models.Position) (*models.Position, error) {
	args := m.Called(pos)
	position, _ := args.Get(0).(*models.Position)
	return position, args.Error(1)
}

func (m *MockStore) ListPositions(date string) ([]models.Position, error) {
	args := m.Called(date)
	positions, _ := args.Get(0).([]models.Position)
	return positions, args.Error(1)
}

func (m *MockStore) InsertTrade(trade *models.Trade) (*models.Trade, error) {
	args := m.Called(trade)
	saved, _ := args.Get(0).(*models.Trade)
	return saved, args.Error(1)
}

func (m *MockStore) ListTrades(symbol string, limit int) ([]models.Trade, error) {
	args := m.Called(symbol, limit)
	trades, _ := args.Get(0).([]models.Trade)
	return trades, args.Error(1)
}

func (m *MockStore) GetHistoricalPrices(symbol, from, to string) ([]models.HistoricalPrice, error) {
	args := m.Called(symbol, from, to)
	prices, _ := args.Get(0).([]models.HistoricalPrice)
	return prices, args.Error(1)
}

func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

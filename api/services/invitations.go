package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/ksfraser/WealthSystem-sub002/api/middleware"
	"github.com/ksfraser/WealthSystem-sub002/db"
	"github.com/ksfraser/WealthSystem-sub002/internal/authn"
	"github.com/ksfraser/WealthSystem-sub002/models"
)

// CreateInvitationService creates a new invitation and emails the accept
// link. Mail failure does not fail the request; the admin can resend.
func CreateInvitationService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		logger.Warn().Msg("Unauthorized request: missing claims")
		HandleErrResponse(w, http.StatusUnauthorized, errors.New("unauthorized: invalid claims"))
		return
	}

	var payload models.CreateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Warn().Err(err).Msg("Invalid request payload")
		HandleErrResponse(w, http.StatusBadRequest, errors.New("invalid request payload"))
		return
	}
	if !strings.Contains(payload.Email, "@") {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("a valid email address is required"))
		return
	}

	invitation := models.Invitation{
		Email:     payload.Email,
		IsAdmin:   payload.IsAdmin,
		InvitedBy: claims.Username,
		ExpiresAt: time.Now().UTC().Add(time.Duration(svc.Config.Auth.InviteTTLHours) * time.Hour),
	}

	created, err := svc.DB.CreateInvitation(&invitation)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create invitation")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}

	acceptURL := fmt.Sprintf("%s/accept-invitation?token=%s", svc.Config.Server.PortalURL, created.Token)
	if err := svc.Mailer.SendInvitation(r.Context(), created.Email, acceptURL); err != nil {
		logger.Warn().Err(err).Str("email", created.Email).Msg("Failed to send invitation email")
	}

	logger.Info().Str("email", created.Email).Msg("Invitation created")
	HandleSuccessResponse(w, http.StatusCreated, nil, models.Response{
		Success: 1,
		Data:    models.InvitationResponse{Invitation: *created},
	})
}

// ListInvitationsService retrieves all invitations.
func ListInvitationsService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	invitations, err := svc.DB.ListInvitations()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to retrieve invitations")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}
	if invitations == nil {
		invitations = []models.Invitation{}
	}

	HandleSuccessResponse(w, http.StatusOK, nil, models.Response{
		Success: 1,
		Data:    models.InvitationsResponse{Invitations: invitations},
	})
}

// GetInvitationService returns the invitation behind a token so the accept
// page can show who is being invited. The token itself is the capability;
// no authentication is required.
func GetInvitationService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	token := mux.Vars(r)["token"]
	invitation, err := svc.DB.GetInvitationByToken(token)
	if err != nil {
		if errors.Is(err, db.ErrInvitationNotFound) {
			HandleErrResponse(w, http.StatusNotFound, err)
			return
		}
		logger.Error().Err(err).Msg("Failed to retrieve invitation")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}

	HandleSuccessResponse(w, http.StatusOK, nil, models.Response{
		Success: 1,
		Data:    models.InvitationResponse{Invitation: *invitation},
	})
}

// AcceptInvitationService accepts an invitation and creates the user. Each
// invitation can be accepted at most once.
func AcceptInvitationService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	token := mux.Vars(r)["token"]

	var payload models.AcceptInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Warn().Err(err).Msg("Invalid request payload")
		HandleErrResponse(w, http.StatusBadRequest, errors.New("invalid request payload"))
		return
	}
	if len(payload.Username) < 3 {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("username must be at least 3 characters"))
		return
	}
	if len(payload.Password) < 8 {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("password must be at least 8 characters"))
		return
	}

	passwordHash, err := authn.HashPassword(payload.Password)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to hash password")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}

	user, err := svc.DB.AcceptInvitation(token, payload.Username, passwordHash)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrInvitationNotFound):
			HandleErrResponse(w, http.StatusNotFound, err)
		case errors.Is(err, db.ErrInvitationExpired):
			HandleErrResponse(w, http.StatusGone, err)
		case errors.Is(err, db.ErrInvitationUsed):
			HandleErrResponse(w, http.StatusConflict, err)
		case errors.Is(err, db.ErrUsernameTaken):
			HandleErrResponse(w, http.StatusConflict, err)
		default:
			logger.Error().Err(err).Msg("Failed to accept invitation")
			HandleErrResponse(w, http.StatusInternalServerError, err)
		}
		return
	}

	logger.Info().Str("username", user.Username).Msg("Invitation accepted, user created")
	HandleSuccessResponse(w, http.StatusCreated, nil, models.Response{
		Success: 1,
		Data:    models.UserResponse{User: *user},
	})
}

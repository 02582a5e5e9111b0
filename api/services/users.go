package services

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ksfraser/WealthSystem-sub002/api/middleware"
	"github.com/ksfraser/WealthSystem-sub002/internal/authn"
	"github.com/ksfraser/WealthSystem-sub002/models"
)

// ListUsersService retrieves all users.
func ListUsersService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	users, err := svc.DB.ListUsers()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to retrieve users")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	HandleSuccessResponse(w, http.StatusOK, nil, models.Response{
		Success: 1,
		Data:    models.UsersResponse{Users: users},
	})
}

// UpdateProfileService updates the authenticated user's email address.
func UpdateProfileService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		logger.Warn().Msg("Unauthorized request: missing claims")
		HandleErrResponse(w, http.StatusUnauthorized, errors.New("unauthorized: invalid claims"))
		return
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		HandleErrResponse(w, http.StatusUnauthorized, errors.New("unauthorized: invalid subject"))
		return
	}

	var payload models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Warn().Err(err).Msg("Invalid request payload")
		HandleErrResponse(w, http.StatusBadRequest, errors.New("invalid request payload"))
		return
	}
	if !strings.Contains(payload.Email, "@") {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("a valid email address is required"))
		return
	}

	user, err := svc.DB.UpdateUserEmail(userID, payload.Email)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to update profile")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}

	if err := svc.DB.AddFlash(claims.SessionID, models.FlashSuccess, "Profile updated successfully."); err != nil {
		logger.Warn().Err(err).Msg("Failed to queue flash message")
	}

	logger.Info().Str("username", user.Username).Msg("Profile updated")
	HandleSuccessResponse(w, http.StatusOK, nil, models.Response{
		Success: 1,
		Data:    models.UserResponse{User: *user},
	})
}

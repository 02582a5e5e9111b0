package services

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ksfraser/WealthSystem-sub002/api/middleware"
	"github.com/ksfraser/WealthSystem-sub002/db"
	"github.com/ksfraser/WealthSystem-sub002/internal/authn"
	"github.com/ksfraser/WealthSystem-sub002/models"
)

const timeFormat = "2006-01-02T15:04:05Z"

// LoginService verifies credentials, opens a session and returns the signed
// session token. Credential failures are reported without distinguishing
// unknown users from wrong passwords.
func LoginService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var payload models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Warn().Err(err).Msg("Invalid request payload")
		HandleErrResponse(w, http.StatusBadRequest, errors.New("invalid request payload"))
		return
	}

	user, err := svc.DB.GetUserByUsername(payload.Username)
	if err != nil && !errors.Is(err, db.ErrUserNotFound) {
		logger.Error().Err(err).Msg("Failed to look up user")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}
	if user == nil || !authn.CheckPassword(user.PasswordHash, payload.Password) {
		logger.Warn().Str("username", payload.Username).Msg("Login failed")
		HandleErrResponse(w, http.StatusUnauthorized, errors.New("invalid username or password"))
		return
	}

	ttl := time.Duration(svc.Config.Auth.SessionTTLHours) * time.Hour
	session, err := svc.DB.CreateSession(user.ID, ttl)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create session")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}

	claims := authn.Claims{
		Username:  user.Username,
		IsAdmin:   user.IsAdmin,
		SessionID: session.ID,
	}
	claims.Subject = user.ID.String()

	token, err := authn.SignClaims(claims, []byte(svc.Config.Auth.SessionSecret), session.ExpiresAt)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to sign session token")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	logger.Info().Str("username", user.Username).Msg("User logged in")
	HandleSuccessResponse(w, http.StatusOK, nil, models.Response{
		Success: 1,
		Data: models.LoginResponse{
			Token:  token,
			Expiry: session.ExpiresAt.UTC().Format(timeFormat),
			User:   *user,
		},
	})
}

// LogoutService revokes the session behind the presented token and clears
// the session cookie.
func LogoutService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		logger.Warn().Msg("Unauthorized request: missing claims")
		HandleErrResponse(w, http.StatusUnauthorized, errors.New("unauthorized: invalid claims"))
		return
	}

	if err := svc.DB.RevokeSession(claims.SessionID); err != nil {
		logger.Error().Err(err).Msg("Failed to revoke session")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	logger.Info().Str("username", claims.Username).Msg("User logged out")
	w.WriteHeader(http.StatusNoContent)
}

// CurrentUserService returns the authenticated user, rejecting tokens whose
// backing session is revoked or expired.
func CurrentUserService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		logger.Warn().Msg("Unauthorized request: missing claims")
		HandleErrResponse(w, http.StatusUnauthorized, errors.New("unauthorized: invalid claims"))
		return
	}

	session, err := svc.DB.GetSession(claims.SessionID)
	if err != nil {
		if errors.Is(err, db.ErrSessionNotFound) {
			HandleErrResponse(w, http.StatusUnauthorized, err)
			return
		}
		logger.Error().Err(err).Msg("Failed to look up session")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}
	if !session.IsActive() {
		HandleErrResponse(w, http.StatusUnauthorized, errors.New("session is no longer active"))
		return
	}

	user, err := svc.DB.GetUserByID(session.UserID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to look up user")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}

	HandleSuccessResponse(w, http.StatusOK, nil, models.Response{
		Success: 1,
		Data:    models.UserResponse{User: *user},
	})
}

// PopFlashService returns and clears the session's queued flash messages.
func PopFlashService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		logger.Warn().Msg("Unauthorized request: missing claims")
		HandleErrResponse(w, http.StatusUnauthorized, errors.New("unauthorized: invalid claims"))
		return
	}

	messages, err := svc.DB.PopFlashes(claims.SessionID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to pop flash messages")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}
	if messages == nil {
		messages = []models.FlashMessage{}
	}

	HandleSuccessResponse(w, http.StatusOK, nil, models.Response{
		Success: 1,
		Data:    models.FlashResponse{Messages: messages},
	})
}

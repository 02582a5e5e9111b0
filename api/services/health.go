package services

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ksfraser/WealthSystem-sub002/models"
)

// HealthService reports whether the database connection is alive.
func HealthService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := svc.DB.Ping(ctx); err != nil {
		logger.Error().Err(err).Msg("Database ping failed")
		HandleErrResponse(w, http.StatusServiceUnavailable, err)
		return
	}

	HandleSuccessResponse(w, http.StatusOK, nil, models.Response{
		Success: 1,
		Data:    map[string]string{"status": "ok"},
	})
}

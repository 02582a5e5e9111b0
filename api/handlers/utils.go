package handlers

import (
	"net/http"

	"github.com/ksfraser/WealthSystem-sub002/api/middleware"
	"github.com/ksfraser/WealthSystem-sub002/internal/authn"
)

// isAdmin reports whether the request claims carry the admin flag.
func isAdmin(r *http.Request) bool {
	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	return ok && claims.IsAdmin
}

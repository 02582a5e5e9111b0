package handlers

import (
	"errors"
	"net/http"

	services "github.com/ksfraser/WealthSystem-sub002/api/services"
)

// ListUsers is restricted to administrators.
func ListUsers(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !isAdmin(r) {
			services.HandleErrResponse(w, http.StatusForbidden, errors.New("forbidden: administrator use only"))
			return
		}
		services.ListUsersService(svc, w, r)
	}
}

func UpdateProfile(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.UpdateProfileService(svc, w, r)
	}
}

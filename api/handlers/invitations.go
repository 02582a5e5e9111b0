package handlers

import (
	"errors"
	"net/http"

	services "github.com/ksfraser/WealthSystem-sub002/api/services"
)

// CreateInvitation is restricted to administrators.
func CreateInvitation(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !isAdmin(r) {
			services.HandleErrResponse(w, http.StatusForbidden, errors.New("forbidden: administrator use only"))
			return
		}
		services.CreateInvitationService(svc, w, r)
	}
}

// ListInvitations is restricted to administrators.
func ListInvitations(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !isAdmin(r) {
			services.HandleErrResponse(w, http.StatusForbidden, errors.New("forbidden: administrator use only"))
			return
		}
		services.ListInvitationsService(svc, w, r)
	}
}

// GetInvitation is public; the token is the capability.
func GetInvitation(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.GetInvitationService(svc, w, r)
	}
}

// AcceptInvitation is public; the token is the capability.
func AcceptInvitation(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.AcceptInvitationService(svc, w, r)
	}
}

package handlers

import (
	"net/http"

	services "github.com/ksfraser/WealthSystem-sub002/api/services"
)

func Login(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.LoginService(svc, w, r)
	}
}

func Logout(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.LogoutService(svc, w, r)
	}
}

func CurrentUser(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.CurrentUserService(svc, w, r)
	}
}

func PopFlash(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.PopFlashService(svc, w, r)
	}
}

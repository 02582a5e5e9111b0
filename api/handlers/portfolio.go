package handlers

import (
	"net/http"

	services "github.com/ksfraser/WealthSystem-sub002/api/services"
)

func UpsertPosition(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.UpsertPositionService(svc, w, r)
	}
}

func ListPositions(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.ListPositionsService(svc, w, r)
	}
}

func InsertTrade(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.InsertTradeService(svc, w, r)
	}
}

func ListTrades(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.ListTradesService(svc, w, r)
	}
}

func GetHistoricalPrices(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.GetHistoricalPricesService(svc, w, r)
	}
}

func Health(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.HealthService(svc, w, r)
	}
}

package services

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/ksfraser/WealthSystem-sub002/models"
)

const dateFormat = "2006-01-02"
const defaultTradeLimit = 100
const maxTradeLimit = 1000

func validDate(date string) bool {
	_, err := time.Parse(dateFormat, date)
	return err == nil
}

// UpsertPositionService records a portfolio snapshot for a symbol and date.
func UpsertPositionService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var pos models.Position
	if err := json.NewDecoder(r.Body).Decode(&pos); err != nil {
		logger.Warn().Err(err).Msg("Invalid request payload")
		HandleErrResponse(w, http.StatusBadRequest, errors.New("invalid request payload"))
		return
	}

	pos.Symbol = strings.ToUpper(strings.TrimSpace(pos.Symbol))
	if pos.Symbol == "" || len(pos.Symbol) > 10 {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("symbol is required and must be at most 10 characters"))
		return
	}
	if !validDate(pos.Date) {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("date must be formatted YYYY-MM-DD"))
		return
	}

	// Derive value fields when the client omits them.
	if pos.MarketValue == 0 {
		pos.MarketValue = pos.PositionSize * pos.CurrentPrice
	}
	if pos.UnrealizedPnL == 0 {
		pos.UnrealizedPnL = (pos.CurrentPrice - pos.AvgCost) * pos.PositionSize
	}

	saved, err := svc.DB.UpsertPosition(&pos)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to save position")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}

	HandleSuccessResponse(w, http.StatusOK, nil, models.Response{
		Success: 1,
		Data:    models.PositionResponse{Position: *saved},
	})
}

// ListPositionsService retrieves positions, optionally for one date
// (?date=YYYY-MM-DD).
func ListPositionsService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	date := r.URL.Query().Get("date")
	if date != "" && !validDate(date) {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("date must be formatted YYYY-MM-DD"))
		return
	}

	positions, err := svc.DB.ListPositions(date)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to retrieve positions")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}
	if positions == nil {
		positions = []models.Position{}
	}

	HandleSuccessResponse(w, http.StatusOK, nil, models.Response{
		Success: 1,
		Data:    models.PositionsResponse{Positions: positions},
	})
}

// InsertTradeService appends a BUY or SELL entry to the trade log.
func InsertTradeService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var trade models.Trade
	if err := json.NewDecoder(r.Body).Decode(&trade); err != nil {
		logger.Warn().Err(err).Msg("Invalid request payload")
		HandleErrResponse(w, http.StatusBadRequest, errors.New("invalid request payload"))
		return
	}

	trade.Symbol = strings.ToUpper(strings.TrimSpace(trade.Symbol))
	trade.Action = strings.ToUpper(strings.TrimSpace(trade.Action))
	if trade.Symbol == "" || len(trade.Symbol) > 10 {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("symbol is required and must be at most 10 characters"))
		return
	}
	if trade.Action != models.TradeBuy && trade.Action != models.TradeSell {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("action must be BUY or SELL"))
		return
	}
	if !validDate(trade.Date) {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("date must be formatted YYYY-MM-DD"))
		return
	}
	if trade.Quantity <= 0 {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("quantity must be positive"))
		return
	}
	if trade.Price < 0 {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("price cannot be negative"))
		return
	}
	if trade.Amount == 0 {
		trade.Amount = trade.Quantity * trade.Price
	}

	saved, err := svc.DB.InsertTrade(&trade)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to record trade")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}

	logger.Info().Str("symbol", saved.Symbol).Str("action", saved.Action).Msg("Trade recorded")
	HandleSuccessResponse(w, http.StatusCreated, nil, models.Response{
		Success: 1,
		Data:    models.TradeResponse{Trade: *saved},
	})
}

// ListTradesService retrieves trade log entries (?symbol=&limit=).
func ListTradesService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	symbol := strings.ToUpper(r.URL.Query().Get("symbol"))
	limit := defaultTradeLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxTradeLimit {
			HandleErrResponse(w, http.StatusBadRequest, errors.New("limit must be between 1 and 1000"))
			return
		}
		limit = parsed
	}

	trades, err := svc.DB.ListTrades(symbol, limit)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to retrieve trades")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}
	if trades == nil {
		trades = []models.Trade{}
	}

	HandleSuccessResponse(w, http.StatusOK, nil, models.Response{
		Success: 1,
		Data:    models.TradesResponse{Trades: trades},
	})
}

// GetHistoricalPricesService retrieves OHLCV bars for one symbol
// (?from=&to=).
func GetHistoricalPricesService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	symbol := strings.ToUpper(mux.Vars(r)["symbol"])
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if (from != "" && !validDate(from)) || (to != "" && !validDate(to)) {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("from and to must be formatted YYYY-MM-DD"))
		return
	}

	prices, err := svc.DB.GetHistoricalPrices(symbol, from, to)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to retrieve historical prices")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}
	if prices == nil {
		prices = []models.HistoricalPrice{}
	}

	HandleSuccessResponse(w, http.StatusOK, nil, models.Response{
		Success: 1,
		Data:    models.PricesResponse{Symbol: symbol, Prices: prices},
	})
}

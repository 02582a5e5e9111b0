package models

import (
	"time"

	"github.com/google/uuid"
)

// Trade actions.
const (
	TradeBuy  = "BUY"
	TradeSell = "SELL"
)

// Position is a portfolio holding snapshot for a symbol on a date.
// Symbol and date are unique together.
type Position struct {
	ID            uuid.UUID `json:"id"`
	Symbol        string    `json:"symbol"`
	Date          string    `json:"date"`
	PositionSize  float64   `json:"positionSize"`
	AvgCost       float64   `json:"avgCost"`
	CurrentPrice  float64   `json:"currentPrice"`
	MarketValue   float64   `json:"marketValue"`
	UnrealizedPnL float64   `json:"unrealizedPnl"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Trade is an executed BUY or SELL entry in the trade log.
type Trade struct {
	ID        uuid.UUID `json:"id"`
	Symbol    string    `json:"symbol"`
	Date      string    `json:"date"`
	Action    string    `json:"action"`
	Quantity  float64   `json:"quantity"`
	Price     float64   `json:"price"`
	Amount    float64   `json:"amount"`
	Reasoning string    `json:"reasoning,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// HistoricalPrice is one OHLCV bar for a symbol on a date.
type HistoricalPrice struct {
	ID       uuid.UUID `json:"id"`
	Symbol   string    `json:"symbol"`
	Date     string    `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjClose"`
	Volume   int64     `json:"volume"`
}

// PositionsResponse holds a list of portfolio positions.
type PositionsResponse struct {
	Positions []Position `json:"positions"`
}

// PositionResponse represents a response with a single position.
type PositionResponse struct {
	Position Position `json:"position"`
}

// TradesResponse holds a list of trade log entries.
type TradesResponse struct {
	Trades []Trade `json:"trades"`
}

// TradeResponse represents a response with a single trade.
type TradeResponse struct {
	Trade Trade `json:"trade"`
}

// PricesResponse holds historical prices for one symbol.
type PricesResponse struct {
	Symbol string            `json:"symbol"`
	Prices []HistoricalPrice `json:"prices"`
}

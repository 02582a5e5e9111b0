package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ksfraser/WealthSystem-sub002/models"
)

const dateFormat = "2006-01-02"

// UpsertPosition inserts or updates the portfolio snapshot for the
// position's symbol and date.
func (p *PortalDB) UpsertPosition(pos *models.Position) (*models.Position, error) {
	tx, err := p.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	now := time.Now().UTC()
	res, err := tx.Exec(p.rebind(`
		UPDATE portfolio_data
		SET position_size = $1, avg_cost = $2, current_price = $3,
			market_value = $4, unrealized_pnl = $5, updated_at = $6
		WHERE symbol = $7 AND date = $8`),
		pos.PositionSize, pos.AvgCost, pos.CurrentPrice,
		pos.MarketValue, pos.UnrealizedPnL, now,
		pos.Symbol, pos.Date)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("error updating position: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("error updating position: %w", err)
	}

	if affected == 0 {
		pos.ID = uuid.New()
		pos.CreatedAt = now
		err = p.execQuery(tx, `
			INSERT INTO portfolio_data (id, symbol, date, position_size, avg_cost,
				current_price, market_value, unrealized_pnl, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			pos.ID.String(), pos.Symbol, pos.Date, pos.PositionSize, pos.AvgCost,
			pos.CurrentPrice, pos.MarketValue, pos.UnrealizedPnL, now, now)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	pos.UpdatedAt = now

	if err := p.CommitTransaction(tx); err != nil {
		return nil, err
	}
	return pos, nil
}

// ListPositions retrieves positions, optionally filtered to one date.
func (p *PortalDB) ListPositions(date string) ([]models.Position, error) {
	query := `SELECT id, symbol, date, position_size, avg_cost, current_price,
		market_value, unrealized_pnl, created_at, updated_at
		FROM portfolio_data`
	args := []interface{}{}
	if date != "" {
		query += ` WHERE date = $1`
		args = append(args, date)
	}
	query += ` ORDER BY date DESC, symbol`

	rows, err := p.DB.Query(p.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("error retrieving positions: %w", err)
	}
	defer rows.Close()

	var positions []models.Position
	for rows.Next() {
		var pos models.Position
		var d time.Time
		if err := rows.Scan(&pos.ID, &pos.Symbol, &d, &pos.PositionSize, &pos.AvgCost,
			&pos.CurrentPrice, &pos.MarketValue, &pos.UnrealizedPnL,
			&pos.CreatedAt, &pos.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning position: %w", err)
		}
		pos.Date = d.Format(dateFormat)
		positions = append(positions, pos)
	}
	return positions, rows.Err()
}

// InsertTrade appends a trade to the trade log.
func (p *PortalDB) InsertTrade(trade *models.Trade) (*models.Trade, error) {
	tx, err := p.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	trade.ID = uuid.New()
	trade.CreatedAt = time.Now().UTC()

	err = p.execQuery(tx, `
		INSERT INTO trade_log (id, symbol, date, action, quantity, price, amount, reasoning, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		trade.ID.String(), trade.Symbol, trade.Date, trade.Action,
		trade.Quantity, trade.Price, trade.Amount, trade.Reasoning, trade.CreatedAt)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := p.CommitTransaction(tx); err != nil {
		return nil, err
	}
	return trade, nil
}

// ListTrades retrieves trade log entries, newest first. An empty symbol
// matches all symbols.
func (p *PortalDB) ListTrades(symbol string, limit int) ([]models.Trade, error) {
	query := `SELECT id, symbol, date, action, quantity, price, amount, reasoning, created_at
		FROM trade_log`
	args := []interface{}{}
	if symbol != "" {
		query += ` WHERE symbol = $1`
		args = append(args, symbol)
	}
	query += fmt.Sprintf(` ORDER BY date DESC, created_at DESC LIMIT %d`, limit)

	rows, err := p.DB.Query(p.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("error retrieving trades: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var t models.Trade
		var d time.Time
		var reasoning sql.NullString
		if err := rows.Scan(&t.ID, &t.Symbol, &d, &t.Action, &t.Quantity,
			&t.Price, &t.Amount, &reasoning, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning trade: %w", err)
		}
		t.Date = d.Format(dateFormat)
		t.Reasoning = reasoning.String
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// UpsertHistoricalPrice inserts or replaces the OHLCV bar for the price's
// symbol and date.
func (p *PortalDB) UpsertHistoricalPrice(price *models.HistoricalPrice) error {
	tx, err := p.DB.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	res, err := tx.Exec(p.rebind(`
		UPDATE historical_prices
		SET open = $1, high = $2, low = $3, close = $4, adj_close = $5, volume = $6
		WHERE symbol = $7 AND date = $8`),
		price.Open, price.High, price.Low, price.Close, price.AdjClose, price.Volume,
		price.Symbol, price.Date)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("error updating historical price: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("error updating historical price: %w", err)
	}

	if affected == 0 {
		price.ID = uuid.New()
		err = p.execQuery(tx, `
			INSERT INTO historical_prices (id, symbol, date, open, high, low, close, adj_close, volume, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			price.ID.String(), price.Symbol, price.Date, price.Open, price.High,
			price.Low, price.Close, price.AdjClose, price.Volume, time.Now().UTC())
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return p.CommitTransaction(tx)
}

// GetHistoricalPrices retrieves bars for a symbol, oldest first. Empty from
// and to bounds are ignored.
func (p *PortalDB) GetHistoricalPrices(symbol, from, to string) ([]models.HistoricalPrice, error) {
	query := `SELECT id, symbol, date, open, high, low, close, adj_close, volume
		FROM historical_prices WHERE symbol = $1`
	args := []interface{}{symbol}
	if from != "" {
		args = append(args, from)
		query += fmt.Sprintf(` AND date >= $%d`, len(args))
	}
	if to != "" {
		args = append(args, to)
		query += fmt.Sprintf(` AND date <= $%d`, len(args))
	}
	query += ` ORDER BY date`

	rows, err := p.DB.Query(p.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("error retrieving historical prices: %w", err)
	}
	defer rows.Close()

	var prices []models.HistoricalPrice
	for rows.Next() {
		var hp models.HistoricalPrice
		var d time.Time
		if err := rows.Scan(&hp.ID, &hp.Symbol, &d, &hp.Open, &hp.High,
			&hp.Low, &hp.Close, &hp.AdjClose, &hp.Volume); err != nil {
			return nil, fmt.Errorf("error scanning historical price: %w", err)
		}
		hp.Date = d.Format(dateFormat)
		prices = append(prices, hp)
	}
	return prices, rows.Err()
}

package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ksfraser/WealthSystem-sub002/models"
)

type fakePriceStore struct {
	prices []*models.HistoricalPrice
	err    error
}

func (s *fakePriceStore) UpsertHistoricalPrice(price *models.HistoricalPrice) error {
	if s.err != nil {
		return s.err
	}
	s.prices = append(s.prices, price)
	return nil
}

func TestImportPrices(t *testing.T) {
	csv := "symbol,date,open,high,low,close,adj_close,volume\n" +
		"abeo,2025-08-28,5.00,6.10,4.90,6.00,6.00,125000\n" +
		"CADL,2025-08-28,1.50,1.60,1.45,1.55,1.55,98000\n"

	store := &fakePriceStore{}
	imported, err := importPrices(strings.NewReader(csv), store)

	assert.NoError(t, err)
	assert.Equal(t, 2, imported)
	assert.Len(t, store.prices, 2)
	assert.Equal(t, "ABEO", store.prices[0].Symbol)
	assert.Equal(t, "2025-08-28", store.prices[0].Date)
	assert.Equal(t, 6.0, store.prices[0].Close)
	assert.Equal(t, int64(98000), store.prices[1].Volume)
}

func TestImportPrices_NoHeader(t *testing.T) {
	csv := "ABEO,2025-08-28,5.00,6.10,4.90,6.00,6.00,125000\n"

	store := &fakePriceStore{}
	imported, err := importPrices(strings.NewReader(csv), store)

	assert.NoError(t, err)
	assert.Equal(t, 1, imported)
}

func TestImportPrices_ReportsFailingLine(t *testing.T) {
	csv := "symbol,date,open,high,low,close,adj_close,volume\n" +
		"ABEO,2025-08-28,5.00,6.10,4.90,6.00,6.00,125000\n" +
		"CADL,2025-08-28,not-a-number,1.60,1.45,1.55,1.55,98000\n"

	store := &fakePriceStore{}
	imported, err := importPrices(strings.NewReader(csv), store)

	assert.Error(t, err)
	// The bad record is the third physical line of the file.
	assert.Contains(t, err.Error(), "line 3")
	assert.Equal(t, 1, imported)
}

func TestImportPrices_ColumnCount(t *testing.T) {
	csv := "ABEO,2025-08-28,5.00\n"

	store := &fakePriceStore{}
	_, err := importPrices(strings.NewReader(csv), store)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ksfraser/WealthSystem-sub002/models"
)

// CSV column order matches the historical export files:
// symbol,date,open,high,low,close,adj_close,volume
const priceColumns = 8

// priceStore is the slice of the database the importer needs.
type priceStore interface {
	UpsertHistoricalPrice(price *models.HistoricalPrice) error
}

var importPricesCmd = &cobra.Command{
	Use:   "import-prices [file]",
	Short: "Import historical prices from a CSV file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		commonSetUp()
		defer portalDB.Close()

		f, err := os.Open(args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open CSV file")
		}
		defer f.Close()

		imported, err := importPrices(f, portalDB)
		if err != nil {
			log.Fatal().Err(err).Msg("price import failed")
		}

		fmt.Printf("Imported %d price records\n", imported)
	},
}

// importPrices reads price records from CSV and stores them. Errors name the
// offending line, counting from 1.
func importPrices(r io.Reader, store priceStore) (int, error) {
	reader := csv.NewReader(r)
	imported := 0
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("line %d: failed to read CSV: %w", line, err)
		}

		// Skip the header row
		if line == 1 && strings.EqualFold(record[0], "symbol") {
			continue
		}
		if len(record) != priceColumns {
			return imported, fmt.Errorf("line %d: expected %d columns, got %d", line, priceColumns, len(record))
		}

		price, err := parsePriceRecord(record)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}

		if err := store.UpsertHistoricalPrice(price); err != nil {
			return imported, fmt.Errorf("line %d: failed to store price: %w", line, err)
		}
		imported++
	}
	return imported, nil
}

func parsePriceRecord(record []string) (*models.HistoricalPrice, error) {
	price := models.HistoricalPrice{
		Symbol: strings.ToUpper(strings.TrimSpace(record[0])),
		Date:   strings.TrimSpace(record[1]),
	}
	if price.Symbol == "" {
		return nil, fmt.Errorf("symbol is empty")
	}

	floats := []struct {
		name  string
		value string
		dst   *float64
	}{
		{"open", record[2], &price.Open},
		{"high", record[3], &price.High},
		{"low", record[4], &price.Low},
		{"close", record[5], &price.Close},
		{"adj_close", record[6], &price.AdjClose},
	}
	for _, f := range floats {
		v, err := strconv.ParseFloat(strings.TrimSpace(f.value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", f.name, f.value, err)
		}
		*f.dst = v
	}

	volume, err := strconv.ParseInt(strings.TrimSpace(record[7]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid volume value %q: %w", record[7], err)
	}
	price.Volume = volume

	return &price, nil
}

func init() {
	rootCmd.AddCommand(importPricesCmd)
}

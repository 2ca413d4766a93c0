package feed

import (
	"fmt"
	"os"
	"time"

	"stockbacktest/internal/domain"

	"github.com/gocarina/gocsv"
)

type barRow struct {
	Symbol string  `csv:"symbol"`
	Date   string  `csv:"date"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume"`
}

type metaRow struct {
	Symbol      string  `csv:"symbol"`
	Name        string  `csv:"name"`
	MarketCap   float64 `csv:"market_cap"`
	ListingDate string  `csv:"listing_date"`
}

// LoadFromCSV builds a MemoryFeed from a daily bar file and an optional
// stock metadata file (pass "" to skip).
func LoadFromCSV(barsPath, metaPath string) (*MemoryFeed, error) {
	f, err := os.Open(barsPath)
	if err != nil {
		return nil, fmt.Errorf("could not open bars file: %w", err)
	}
	defer f.Close()

	rows := []barRow{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse bars file %s: %w", barsPath, err)
	}

	barsBySymbol := map[string][]Bar{}
	for _, row := range rows {
		date, err := time.Parse(time.DateOnly, row.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q in bars file: %w", row.Date, err)
		}
		barsBySymbol[row.Symbol] = append(barsBySymbol[row.Symbol], Bar{
			Date:   date,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}

	metaBySymbol := map[string]domain.StockInfo{}
	if metaPath != "" {
		mf, err := os.Open(metaPath)
		if err != nil {
			return nil, fmt.Errorf("could not open metadata file: %w", err)
		}
		defer mf.Close()

		metaRows := []metaRow{}
		if err := gocsv.UnmarshalFile(mf, &metaRows); err != nil {
			return nil, fmt.Errorf("failed to parse metadata file %s: %w", metaPath, err)
		}
		for _, row := range metaRows {
			listed, err := time.Parse(time.DateOnly, row.ListingDate)
			if err != nil {
				return nil, fmt.Errorf("invalid listing date %q for %s: %w", row.ListingDate, row.Symbol, err)
			}
			metaBySymbol[row.Symbol] = domain.StockInfo{
				Symbol:      row.Symbol,
				Name:        row.Name,
				MarketCap:   row.MarketCap,
				ListingDate: listed,
			}
		}
	}

	return NewMemoryFeed(barsBySymbol, metaBySymbol), nil
}

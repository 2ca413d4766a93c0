package internal

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"
)

// RatingWeights control the composite strategy rating. They must sum
// to 1; the split between return/risk/sharpe/winrate is configuration,
// not logic.
type RatingWeights struct {
	Return  float64 `json:"return"`
	Risk    float64 `json:"risk"`
	Sharpe  float64 `json:"sharpe"`
	WinRate float64 `json:"winrate"`
}

type Config struct {
	InitialCapital float64 `json:"initialCapital"`
	MaxPositions   int     `json:"maxPositions"`

	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	RebalanceFreq string `json:"rebalanceFreq"`

	CommissionRate float64 `json:"commissionRate"`
	StampTax       float64 `json:"stampTax"`
	MinCommission  float64 `json:"minCommission"`

	MinMarketCap   float64 `json:"minMarketCap"`
	MinDataDays    int     `json:"minDataDays"`
	PriceGraceDays int     `json:"priceGraceDays"`

	RatingWeights RatingWeights `json:"ratingWeights"`
}

func DefaultConfig() Config {
	return Config{
		InitialCapital: 1_000_000,
		MaxPositions:   6,
		StartDate:      "2021-01-01",
		EndDate:        "2024-01-01",
		RebalanceFreq:  "quarterly",
		CommissionRate: 0.0003,
		StampTax:       0.001,
		MinCommission:  5,
		MinMarketCap:   5_000_000_000,
		MinDataDays:    100,
		PriceGraceDays: 5,
		RatingWeights: RatingWeights{
			Return:  0.35,
			Risk:    0.25,
			Sharpe:  0.2,
			WinRate: 0.2,
		},
	}
}

// LoadConfig reads a JSON config file over the defaults. A missing
// field keeps its default value.
func LoadConfig(path string) (*Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open config file %s: %w", path, err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(f, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c Config) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be positive, got %f", c.InitialCapital)
	}
	if c.MaxPositions < 1 {
		return fmt.Errorf("max positions must be >= 1, got %d", c.MaxPositions)
	}
	if c.MinDataDays < 0 || c.PriceGraceDays < 0 {
		return fmt.Errorf("minDataDays and priceGraceDays must be non-negative")
	}

	start, end, err := c.DateRange()
	if err != nil {
		return err
	}
	if start.After(end) {
		return fmt.Errorf("start date %s is after end date %s", c.StartDate, c.EndDate)
	}

	w := c.RatingWeights
	sum := w.Return + w.Risk + w.Sharpe + w.WinRate
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("rating weights must sum to 1, got %f", sum)
	}

	return nil
}

func (c Config) DateRange() (time.Time, time.Time, error) {
	start, err := time.Parse(time.DateOnly, c.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", c.StartDate, err)
	}
	end, err := time.Parse(time.DateOnly, c.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", c.EndDate, err)
	}
	return start, end, nil
}

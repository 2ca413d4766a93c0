package strategy

import (
	"math"

	"stockbacktest/internal/domain"
)

type ValueConfig struct {
	MaxRSI           float64
	MinPricePosition float64
	MaxPricePosition float64
	MinBBPosition    float64
	MaxBBPosition    float64
	MaxVolatility    float64
	MinVolumeRatio   float64
}

func DefaultValueConfig() ValueConfig {
	return ValueConfig{
		MaxRSI:           70,
		MinPricePosition: 0.1,
		MaxPricePosition: 0.6,
		MinBBPosition:    0.1,
		MaxBBPosition:    0.5,
		MaxVolatility:    0.4,
		MinVolumeRatio:   0.3,
	}
}

// Value tilts toward stocks trading in the lower part of their recent
// range while still above their long moving average.
type Value struct {
	cfg ValueConfig
}

func NewValue(cfg ValueConfig) Value {
	return Value{cfg: cfg}
}

func (s Value) Name() string { return "value" }

func (s Value) IsQualified(ind map[string]float64, info domain.StockInfo) bool {
	return ind["price_position"] >= s.cfg.MinPricePosition &&
		ind["price_position"] <= s.cfg.MaxPricePosition &&

		ind["rsi"] <= s.cfg.MaxRSI &&

		ind["bb_position"] >= s.cfg.MinBBPosition &&
		ind["bb_position"] <= s.cfg.MaxBBPosition &&

		ind["price"] > ind["ma60"] &&

		ind["volatility"] <= s.cfg.MaxVolatility &&
		ind["volume_ratio"] > s.cfg.MinVolumeRatio
}

func (s Value) Score(ind map[string]float64, info domain.StockInfo) float64 {
	longTrend := 0.0
	if ind["ma60"] != 0 {
		longTrend = ind["price"]/ind["ma60"] - 1
	}

	return (1-ind["price_position"])*30 +
		(1-ind["bb_position"])*20 +
		math.Max(0, 70-ind["rsi"])*0.5 +
		(1-ind["volatility"])*10 +
		longTrend*15 +
		ind["volume_ratio"]*10
}

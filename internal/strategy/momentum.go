package strategy

import (
	"math"

	"stockbacktest/internal/domain"
)

// MomentumConfig holds the qualification thresholds; zero value is not
// useful, use DefaultMomentumConfig.
type MomentumConfig struct {
	MinRSI           float64
	MaxRSI           float64
	MinMomentum5d    float64
	MinMomentum20d   float64
	MaxVolatility    float64
	MinVolumeRatio   float64
	MinPricePosition float64
	MinBBPosition    float64
	MaxBBPosition    float64
}

func DefaultMomentumConfig() MomentumConfig {
	return MomentumConfig{
		MinRSI:           20,
		MaxRSI:           75,
		MinMomentum5d:    -0.05,
		MinMomentum20d:   -0.15,
		MaxVolatility:    0.5,
		MinVolumeRatio:   0.5,
		MinPricePosition: 0.3,
		MinBBPosition:    0.2,
		MaxBBPosition:    0.8,
	}
}

// Momentum selects stocks in established uptrends: aligned moving
// averages, positive MACD and acceptable momentum.
type Momentum struct {
	cfg MomentumConfig
}

func NewMomentum(cfg MomentumConfig) Momentum {
	return Momentum{cfg: cfg}
}

func (s Momentum) Name() string { return "momentum" }

func (s Momentum) IsQualified(ind map[string]float64, info domain.StockInfo) bool {
	return ind["price"] > ind["ma20"] &&
		ind["ma5"] > ind["ma10"] &&
		ind["ma10"] > ind["ma20"] &&
		ind["ma20"] > ind["ma60"] &&

		ind["rsi"] >= s.cfg.MinRSI && ind["rsi"] <= s.cfg.MaxRSI &&

		ind["momentum_5d"] > s.cfg.MinMomentum5d &&
		ind["momentum_20d"] > s.cfg.MinMomentum20d &&

		ind["macd"] > ind["macd_signal"] &&
		ind["macd_hist"] > 0 &&

		ind["bb_position"] >= s.cfg.MinBBPosition &&
		ind["bb_position"] <= s.cfg.MaxBBPosition &&

		ind["volatility"] < s.cfg.MaxVolatility &&
		ind["volume_ratio"] > s.cfg.MinVolumeRatio &&
		ind["price_position"] > s.cfg.MinPricePosition
}

func (s Momentum) Score(ind map[string]float64, info domain.StockInfo) float64 {
	relativeStrength := 0.0
	if ind["ma20"] != 0 {
		relativeStrength = ind["price"]/ind["ma20"] - 1
	}

	return ind["momentum_5d"]*20 +
		ind["momentum_10d"]*15 +
		ind["momentum_20d"]*5 +
		relativeStrength*25 +
		(80-math.Abs(ind["rsi"]-50))*0.3 +
		ind["macd_hist"]*100 +
		ind["price_position"]*10
}

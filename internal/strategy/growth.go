package strategy

import (
	"stockbacktest/internal/domain"
)

type GrowthConfig struct {
	MinMomentum20d   float64
	MinMomentum60d   float64
	MinRSI           float64
	MaxRSI           float64
	MinVolumeRatio   float64
	MinPricePosition float64
	MaxVolatility    float64
}

func DefaultGrowthConfig() GrowthConfig {
	return GrowthConfig{
		MinMomentum20d:   0.05,
		MinMomentum60d:   0.10,
		MinRSI:           45,
		MaxRSI:           80,
		MinVolumeRatio:   1.2,
		MinPricePosition: 0.4,
		MaxVolatility:    0.6,
	}
}

// growthFactorWeights is the multi-factor score blend: each factor is
// normalized to 0-100 then weighted.
var growthFactorWeights = map[string]float64{
	"momentum_20d":   0.30,
	"momentum_60d":   0.25,
	"rsi":            0.20,
	"volume_ratio":   0.15,
	"price_position": 0.10,
}

// Growth chases breakouts: strong medium and long momentum on rising
// volume, priced near the top of the recent range.
type Growth struct {
	cfg GrowthConfig
}

func NewGrowth(cfg GrowthConfig) Growth {
	return Growth{cfg: cfg}
}

func (s Growth) Name() string { return "growth" }

func (s Growth) IsQualified(ind map[string]float64, info domain.StockInfo) bool {
	return ind["momentum_20d"] >= s.cfg.MinMomentum20d &&
		ind["momentum_60d"] >= s.cfg.MinMomentum60d &&

		ind["rsi"] >= s.cfg.MinRSI && ind["rsi"] <= s.cfg.MaxRSI &&

		ind["volume_ratio"] >= s.cfg.MinVolumeRatio &&
		ind["price_position"] >= s.cfg.MinPricePosition &&

		ind["price"] > ind["ma20"] &&
		ind["ma20"] > ind["ma60"] &&

		ind["macd_hist"] > 0 &&

		ind["volatility"] <= s.cfg.MaxVolatility
}

func (s Growth) Score(ind map[string]float64, info domain.StockInfo) float64 {
	totalScore := 0.0
	totalWeight := 0.0
	for factor, weight := range growthFactorWeights {
		totalScore += s.factorScore(factor, ind) * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0
	}
	return totalScore / totalWeight
}

func (s Growth) factorScore(factor string, ind map[string]float64) float64 {
	switch factor {
	case "momentum_20d":
		// 50% momentum scores 100
		return clamp(ind["momentum_20d"]*200, 0, 100)
	case "momentum_60d":
		// 100% momentum scores 100
		return clamp(ind["momentum_60d"]*100, 0, 100)
	case "rsi":
		rsi := ind["rsi"]
		if rsi < 50 {
			return 0
		}
		if rsi > 80 {
			return clamp(100-(rsi-80)*5, 0, 100)
		}
		return (rsi - 50) / 30 * 100
	case "volume_ratio":
		// 2x average volume scores 100
		return clamp((ind["volume_ratio"]-1)*50, 0, 100)
	case "price_position":
		return ind["price_position"] * 100
	}
	return 0
}

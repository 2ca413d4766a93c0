// Package strategy defines the stock-selection capability set the
// simulator consumes. A strategy is two pure functions over the
// indicator mapping and static stock info; the engine never inspects
// which variant it is holding.
package strategy

import (
	"stockbacktest/internal/domain"
)

type Strategy interface {
	Name() string
	IsQualified(indicators map[string]float64, info domain.StockInfo) bool
	Score(indicators map[string]float64, info domain.StockInfo) float64
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

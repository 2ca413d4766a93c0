// Package calculator derives the performance report from a completed
// run's snapshot sequence and trade ledger.
package calculator

import (
	"math"

	"stockbacktest/internal"
	"stockbacktest/internal/domain"
	"stockbacktest/internal/schedule"
	"stockbacktest/internal/util"

	"github.com/montanaflynn/stats"
)

// rating normalization ceilings: the annualized return / sharpe /
// drawdown levels that earn a full score for their component
const (
	fullScoreReturn   = 0.30
	fullScoreSharpe   = 3.0
	fullScoreDrawdown = 0.50
)

type AnalyzeInput struct {
	StrategyName string
	Status       string
	Snapshots    []domain.Snapshot
	Trades       []domain.Trade
}

// Analyze computes the full report. It never fails: degenerate inputs
// (no snapshots, a single snapshot, zero variance) produce zeroed
// metrics and a nil Sharpe rather than errors.
func Analyze(in AnalyzeInput, cfg internal.Config) *domain.PerformanceReport {
	report := &domain.PerformanceReport{
		StrategyName:   in.StrategyName,
		Status:         in.Status,
		InitialCapital: cfg.InitialCapital,
		FinalValue:     cfg.InitialCapital,
		PeriodReturns:  []float64{},
	}

	for _, trade := range in.Trades {
		report.TradeCount++
		if trade.Side == domain.TradeSide_Buy {
			report.BuyCount++
		} else {
			report.SellCount++
		}
		report.TotalFees += trade.Fee.InexactFloat64()
	}

	if len(in.Snapshots) > 0 {
		first := in.Snapshots[0]
		last := in.Snapshots[len(in.Snapshots)-1]

		report.FinalValue = last.TotalValue.InexactFloat64()
		report.Days = int(last.Date.Sub(first.Date).Hours() / 24)
		report.Periods = len(in.Snapshots)
		report.TotalReturn = report.FinalValue/cfg.InitialCapital - 1

		if report.Days > 0 {
			report.AnnualizedReturn = math.Pow(1+report.TotalReturn, 365/float64(report.Days)) - 1
		}

		report.PeriodReturns = periodReturns(in.Snapshots)
		report.MaxDrawdown = maxDrawdown(in.Snapshots)
		report.WinRate = winRate(report.PeriodReturns)
		report.MaxLossStreak = maxLossStreak(report.PeriodReturns)

		periodsPerYear := 1.0
		if freq, err := schedule.ParseFrequency(cfg.RebalanceFreq); err == nil {
			periodsPerYear = freq.PeriodsPerYear()
		}

		if len(report.PeriodReturns) >= 2 {
			stdev, err := stats.StandardDeviationSample(report.PeriodReturns)
			if err == nil && stdev > 0 {
				report.Volatility = stdev * math.Sqrt(periodsPerYear)
				mean, _ := stats.Mean(report.PeriodReturns)
				report.SharpeRatio = util.FloatPointer(mean / stdev * math.Sqrt(periodsPerYear))
			}
		}
	}

	report.Rating = rating(report, cfg.RatingWeights)
	report.Grade = grade(report.Rating)

	return report
}

func periodReturns(snapshots []domain.Snapshot) []float64 {
	returns := []float64{}
	for i := 1; i < len(snapshots); i++ {
		prev := snapshots[i-1].TotalValue.InexactFloat64()
		if prev == 0 {
			continue
		}
		returns = append(returns, snapshots[i].TotalValue.InexactFloat64()/prev-1)
	}
	return returns
}

// maxDrawdown is the largest peak-to-trough decline, peak tracked
// forward-only. Reported as a positive fraction.
func maxDrawdown(snapshots []domain.Snapshot) float64 {
	maxDD := 0.0
	peak := snapshots[0].TotalValue.InexactFloat64()
	for _, snapshot := range snapshots {
		value := snapshot.TotalValue.InexactFloat64()
		if value > peak {
			peak = value
		}
		if peak > 0 {
			if dd := (peak - value) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

func winRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	wins := 0
	for _, r := range returns {
		if r >= 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns))
}

func maxLossStreak(returns []float64) int {
	longest := 0
	current := 0
	for _, r := range returns {
		if r < 0 {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return longest
}

// rating blends the normalized components with the configured weights.
func rating(report *domain.PerformanceReport, weights internal.RatingWeights) float64 {
	normReturn := clamp01(report.AnnualizedReturn / fullScoreReturn)
	normDrawdown := clamp01(report.MaxDrawdown / fullScoreDrawdown)
	normSharpe := 0.0
	if report.SharpeRatio != nil {
		normSharpe = clamp01(*report.SharpeRatio / fullScoreSharpe)
	}

	return 100 * (weights.Return*normReturn +
		weights.Risk*(1-normDrawdown) +
		weights.Sharpe*normSharpe +
		weights.WinRate*report.WinRate)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func grade(rating float64) string {
	switch {
	case rating >= 85:
		return "excellent"
	case rating >= 70:
		return "good"
	case rating >= 55:
		return "average"
	case rating >= 40:
		return "fair"
	case rating >= 25:
		return "poor"
	}
	return "failing"
}

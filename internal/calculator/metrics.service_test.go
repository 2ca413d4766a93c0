package calculator

import (
	"math"
	"testing"
	"time"

	"stockbacktest/internal"
	"stockbacktest/internal/domain"
	"stockbacktest/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func snapshotSeries(start time.Time, stepDays int, values ...float64) []domain.Snapshot {
	snapshots := []domain.Snapshot{}
	for i, v := range values {
		snapshots = append(snapshots, domain.Snapshot{
			Date:       start.AddDate(0, 0, i*stepDays),
			TotalValue: decimal.NewFromFloat(v),
		})
	}
	return snapshots
}

func analyzerConfig() internal.Config {
	cfg := internal.DefaultConfig()
	cfg.InitialCapital = 100
	cfg.RebalanceFreq = "quarterly"
	return cfg
}

func TestAnalyze_KnownSeries(t *testing.T) {
	// 100 -> 110 -> 99 -> 105 over three quarters
	snapshots := snapshotSeries(util.NewDate(2021, 1, 4), 91, 100, 110, 99, 105)

	report := Analyze(AnalyzeInput{
		StrategyName: "test",
		Status:       "completed",
		Snapshots:    snapshots,
	}, analyzerConfig())

	require.Equal(t, "test", report.StrategyName)
	require.Equal(t, 4, report.Periods)
	require.Equal(t, 273, report.Days)
	require.InDelta(t, 0.05, report.TotalReturn, 1e-12)
	require.InDelta(t, math.Pow(1.05, 365.0/273)-1, report.AnnualizedReturn, 1e-12)
	require.InDelta(t, 105.0, report.FinalValue, 1e-12)

	// peak 110, trough 99
	require.InDelta(t, (110.0-99)/110, report.MaxDrawdown, 1e-12)

	require.Len(t, report.PeriodReturns, 3)
	require.InDelta(t, 0.10, report.PeriodReturns[0], 1e-12)
	require.InDelta(t, 99.0/110-1, report.PeriodReturns[1], 1e-12)
	require.InDelta(t, 105.0/99-1, report.PeriodReturns[2], 1e-12)

	// two non-negative periods out of three
	require.InDelta(t, 2.0/3, report.WinRate, 1e-12)
	require.Equal(t, 1, report.MaxLossStreak)
	require.NotNil(t, report.SharpeRatio)
	require.Positive(t, report.Rating)
	require.NotEmpty(t, report.Grade)
}

func TestAnalyze_SingleSnapshot(t *testing.T) {
	snapshots := snapshotSeries(util.NewDate(2021, 1, 4), 91, 100)

	report := Analyze(AnalyzeInput{StrategyName: "test", Snapshots: snapshots}, analyzerConfig())

	require.Equal(t, 0, report.Days)
	require.Zero(t, report.TotalReturn)
	require.Zero(t, report.AnnualizedReturn)
	require.Zero(t, report.MaxDrawdown)
	require.Nil(t, report.SharpeRatio)
	require.Empty(t, report.PeriodReturns)
	require.Zero(t, report.WinRate)
	// rating is still computed from what exists
	require.NotEmpty(t, report.Grade)
}

func TestAnalyze_NoSnapshots(t *testing.T) {
	report := Analyze(AnalyzeInput{StrategyName: "test"}, analyzerConfig())

	require.InDelta(t, 100.0, report.FinalValue, 1e-12)
	require.Zero(t, report.TotalReturn)
	require.Nil(t, report.SharpeRatio)
	require.Equal(t, "failing", report.Grade)
}

func TestAnalyze_ZeroVarianceReturnsNilSharpe(t *testing.T) {
	snapshots := snapshotSeries(util.NewDate(2021, 1, 4), 91, 100, 100, 100)

	report := Analyze(AnalyzeInput{StrategyName: "test", Snapshots: snapshots}, analyzerConfig())

	require.Nil(t, report.SharpeRatio)
	require.Zero(t, report.Volatility)
	require.InDelta(t, 1.0, report.WinRate, 1e-12)
}

func TestAnalyze_TradeTally(t *testing.T) {
	trades := []domain.Trade{
		{Side: domain.TradeSide_Buy, Fee: decimal.NewFromInt(30)},
		{Side: domain.TradeSide_Buy, Fee: decimal.NewFromInt(5)},
		{Side: domain.TradeSide_Sell, Fee: decimal.NewFromInt(130)},
	}

	report := Analyze(AnalyzeInput{StrategyName: "test", Trades: trades}, analyzerConfig())

	require.Equal(t, 3, report.TradeCount)
	require.Equal(t, 2, report.BuyCount)
	require.Equal(t, 1, report.SellCount)
	require.InDelta(t, 165.0, report.TotalFees, 1e-12)
}

func TestAnalyze_RatingWeightSensitivity(t *testing.T) {
	snapshots := snapshotSeries(util.NewDate(2021, 1, 4), 91, 100, 110, 99, 105)

	allWinRate := analyzerConfig()
	allWinRate.RatingWeights = internal.RatingWeights{WinRate: 1}
	report := Analyze(AnalyzeInput{StrategyName: "test", Snapshots: snapshots}, allWinRate)
	require.InDelta(t, 100*2.0/3, report.Rating, 1e-9)

	allRisk := analyzerConfig()
	allRisk.RatingWeights = internal.RatingWeights{Risk: 1}
	report = Analyze(AnalyzeInput{StrategyName: "test", Snapshots: snapshots}, allRisk)
	dd := (110.0 - 99) / 110
	require.InDelta(t, 100*(1-dd/0.50), report.Rating, 1e-9)
}

func TestMaxLossStreak(t *testing.T) {
	require.Equal(t, 0, maxLossStreak(nil))
	require.Equal(t, 0, maxLossStreak([]float64{0.1, 0, 0.2}))
	require.Equal(t, 3, maxLossStreak([]float64{-0.1, -0.1, -0.1, 0.2, -0.1}))
	require.Equal(t, 2, maxLossStreak([]float64{-0.1, 0.2, -0.1, -0.1}))
}

func TestGradeBoundaries(t *testing.T) {
	require.Equal(t, "excellent", grade(85))
	require.Equal(t, "good", grade(84.9))
	require.Equal(t, "good", grade(70))
	require.Equal(t, "average", grade(55))
	require.Equal(t, "fair", grade(40))
	require.Equal(t, "poor", grade(25))
	require.Equal(t, "failing", grade(24.9))
}

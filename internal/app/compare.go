package app

import (
	"context"
	"sort"
	"sync"

	"stockbacktest/internal"
	"stockbacktest/internal/calculator"
	"stockbacktest/internal/cost"
	"stockbacktest/internal/domain"
	"stockbacktest/internal/feed"
	"stockbacktest/internal/strategy"
)

// ComparisonEntry pairs one strategy's run with its report.
type ComparisonEntry struct {
	Result *Result
	Report *domain.PerformanceReport
}

// CompareStrategies backtests each strategy over the same feed and
// returns entries sorted by rating, best first. Runs share nothing but
// the read-only feed, so they execute concurrently without locking.
func CompareStrategies(
	ctx context.Context,
	market MarketData,
	cal feed.TradingCalendar,
	strategies []strategy.Strategy,
	costModel cost.Model,
	cfg internal.Config,
) ([]ComparisonEntry, error) {
	entries := make([]ComparisonEntry, len(strategies))
	errs := make([]error, len(strategies))

	var wg sync.WaitGroup
	for i, strat := range strategies {
		wg.Add(1)
		go func(i int, strat strategy.Strategy) {
			defer wg.Done()

			sim := NewSimulator(market, cal, strat, costModel, cfg)
			result, err := sim.Run(ctx)
			if err != nil {
				errs[i] = err
				return
			}

			entries[i] = ComparisonEntry{
				Result: result,
				Report: calculator.Analyze(toAnalyzerInput(result), cfg),
			}
		}(i, strat)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Report.Rating > entries[j].Report.Rating
	})

	return entries, nil
}

func toAnalyzerInput(result *Result) calculator.AnalyzeInput {
	return calculator.AnalyzeInput{
		StrategyName: result.StrategyName,
		Status:       string(result.Status),
		Snapshots:    result.Snapshots,
		Trades:       result.Trades,
	}
}

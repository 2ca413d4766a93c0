// Package app drives the backtest: the time-stepped rebalancing loop
// that owns portfolio state and produces the snapshot sequence and
// trade ledger.
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"stockbacktest/internal"
	"stockbacktest/internal/cost"
	"stockbacktest/internal/domain"
	"stockbacktest/internal/feed"
	"stockbacktest/internal/logger"
	"stockbacktest/internal/schedule"
	"stockbacktest/internal/strategy"
	"stockbacktest/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	Status_Uninitialized Status = "uninitialized"
	Status_Running       Status = "running"
	Status_Completed     Status = "completed"
	Status_Failed        Status = "failed"
)

// MarketData is everything the simulator needs from the feed. The feed
// is loaded before simulation starts; lookups are synchronous reads.
type MarketData interface {
	feed.IndicatorSource
	feed.PriceSource
	Symbols() []string
}

// Result is the complete output of one run. Snapshots and trades are
// append-only during simulation and immutable afterwards; on failure
// the sequence up to the last valid date is retained.
type Result struct {
	RunID        uuid.UUID
	StrategyName string
	Status       Status

	Snapshots []domain.Snapshot
	Trades    []domain.Trade
	Decisions []domain.RebalanceDecision

	FailureReason string
	FailedAt      *time.Time
}

type Simulator struct {
	Feed      MarketData
	Calendar  feed.TradingCalendar
	Strategy  strategy.Strategy
	CostModel cost.Model
	Config    internal.Config

	status    Status
	portfolio *domain.Portfolio
	result    *Result
}

func NewSimulator(market MarketData, cal feed.TradingCalendar, strat strategy.Strategy, costModel cost.Model, cfg internal.Config) *Simulator {
	return &Simulator{
		Feed:      market,
		Calendar:  cal,
		Strategy:  strat,
		CostModel: costModel,
		Config:    cfg,
		status:    Status_Uninitialized,
	}
}

// Run executes the full simulation. Setup errors (bad range, unknown
// frequency) are returned immediately and nothing runs. Data-gap
// failures mid-run do not return an error: the result comes back with
// Status_Failed and the partial snapshot sequence.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	if s.status != Status_Uninitialized {
		return nil, fmt.Errorf("simulator has already run (status %s)", s.status)
	}

	log := logger.FromContext(ctx)

	start, end, err := s.Config.DateRange()
	if err != nil {
		return nil, err
	}
	freq, err := schedule.ParseFrequency(s.Config.RebalanceFreq)
	if err != nil {
		return nil, err
	}
	rebalanceDates, err := schedule.Generate(start, end, freq, s.Calendar)
	if err != nil {
		return nil, err
	}

	s.status = Status_Running
	s.portfolio = domain.NewPortfolio(decimal.NewFromFloat(s.Config.InitialCapital))
	s.result = &Result{
		RunID:        uuid.New(),
		StrategyName: s.Strategy.Name(),
		Status:       s.status,
		Snapshots:    []domain.Snapshot{},
		Trades:       []domain.Trade{},
		Decisions:    []domain.RebalanceDecision{},
	}

	log.Infow("starting backtest",
		"strategy", s.Strategy.Name(),
		"start", start.Format(time.DateOnly),
		"end", end.Format(time.DateOnly),
		"rebalances", len(rebalanceDates),
	)

	for _, date := range rebalanceDates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := s.rebalance(date); err != nil {
			var stale domain.StaleUniverseError
			if errors.As(err, &stale) {
				s.status = Status_Failed
				s.result.Status = s.status
				s.result.FailureReason = stale.Error()
				s.result.FailedAt = util.TimePointer(date)
				log.Warnw("backtest failed",
					"strategy", s.Strategy.Name(),
					"date", date.Format(time.DateOnly),
					"reason", stale.Error(),
				)
				return s.result, nil
			}
			return nil, fmt.Errorf("rebalance on %s: %w", date.Format(time.DateOnly), err)
		}
	}

	s.status = Status_Completed
	s.result.Status = s.status

	finalValue := decimal.Zero
	if len(s.result.Snapshots) > 0 {
		finalValue = s.result.Snapshots[len(s.result.Snapshots)-1].TotalValue
	}
	log.Infow("backtest completed",
		"strategy", s.Strategy.Name(),
		"trades", len(s.result.Trades),
		"finalValue", finalValue.InexactFloat64(),
	)

	return s.result, nil
}

// rebalance advances the portfolio through one rebalance date: select
// targets, sell down, buy up, snapshot.
func (s *Simulator) rebalance(date time.Time) error {
	decision := s.selectCandidates(date)

	targets := decision.Candidates
	if len(targets) > s.Config.MaxPositions {
		targets = targets[:s.Config.MaxPositions]
	}
	targetSet := map[string]domain.ScoredStock{}
	for _, candidate := range targets {
		targetSet[candidate.Symbol] = candidate
	}

	// every held symbol must be priceable: we cannot value, let alone
	// liquidate, a position without a tradable price
	priceMap := map[string]decimal.Decimal{}
	for _, symbol := range s.portfolio.HeldSymbols() {
		price, ok := s.Feed.PriceAsOf(symbol, date, s.Config.PriceGraceDays)
		if !ok {
			return domain.StaleUniverseError{Symbol: symbol, Date: date}
		}
		priceMap[symbol] = price
	}
	for _, candidate := range targets {
		priceMap[candidate.Symbol] = candidate.Price
	}

	portfolioValue, err := s.portfolio.TotalValue(priceMap)
	if err != nil {
		return err
	}

	targetShares := map[string]int64{}
	if len(targets) > 0 {
		targetNotional := portfolioValue.Div(decimal.NewFromInt(int64(len(targets))))
		for _, candidate := range targets {
			targetShares[candidate.Symbol] = targetNotional.Div(candidate.Price).IntPart()
		}
	}

	// sells first so proceeds fund this date's purchases
	for _, symbol := range s.portfolio.HeldSymbols() {
		position := s.portfolio.Positions[symbol]
		sellShares := int64(0)
		if _, kept := targetSet[symbol]; !kept {
			sellShares = position.Shares
		} else if position.Shares > targetShares[symbol] {
			sellShares = position.Shares - targetShares[symbol]
		}
		if sellShares == 0 {
			continue
		}
		if err := s.executeSell(date, symbol, sellShares, priceMap[symbol]); err != nil {
			return err
		}
	}

	// buys in rank order
	for _, candidate := range targets {
		position := s.portfolio.Positions[candidate.Symbol]
		held := int64(0)
		if position != nil {
			held = position.Shares
		}
		if held >= targetShares[candidate.Symbol] {
			continue
		}
		if err := s.executeBuy(date, candidate.Symbol, targetShares[candidate.Symbol]-held, candidate.Price); err != nil {
			return err
		}
	}

	totalValue, err := s.portfolio.TotalValue(priceMap)
	if err != nil {
		return err
	}

	s.result.Snapshots = append(s.result.Snapshots, domain.Snapshot{
		Date:       date,
		Cash:       s.portfolio.Cash,
		Positions:  s.portfolio.DeepCopy().Positions,
		TotalValue: totalValue,
	})
	s.result.Decisions = append(s.result.Decisions, decision)

	return nil
}

// selectCandidates filters the universe, applies the strategy and
// returns the ranked qualifying stocks. Data gaps on candidates are
// recoverable: the stock is skipped with a note.
func (s *Simulator) selectCandidates(date time.Time) domain.RebalanceDecision {
	decision := domain.RebalanceDecision{Date: date}

	// candidate data gaps surface as InsufficientDataError and are
	// absorbed here into skip notes
	absorb := func(err domain.InsufficientDataError) {
		decision.Skipped = append(decision.Skipped, domain.SkipNote{
			Symbol: err.Symbol,
			Reason: err.Reason,
		})
	}

	for _, symbol := range s.Feed.Symbols() {
		if s.Feed.HistoryLen(symbol, date) < s.Config.MinDataDays {
			continue
		}
		info, ok := s.Feed.Meta(symbol)
		if !ok {
			absorb(domain.InsufficientDataError{Symbol: symbol, Date: date, Reason: "missing stock metadata"})
			continue
		}
		if info.MarketCap < s.Config.MinMarketCap {
			continue
		}

		indicators, ok := s.Feed.Indicators(symbol, date)
		if !ok {
			absorb(domain.InsufficientDataError{Symbol: symbol, Date: date, Reason: "insufficient history for indicators"})
			continue
		}
		if !s.Strategy.IsQualified(indicators, info) {
			continue
		}

		price, ok := s.Feed.PriceAsOf(symbol, date, s.Config.PriceGraceDays)
		if !ok || !price.IsPositive() {
			absorb(domain.InsufficientDataError{Symbol: symbol, Date: date, Reason: "no tradable price"})
			continue
		}

		decision.Candidates = append(decision.Candidates, domain.ScoredStock{
			Symbol: symbol,
			Score:  s.Strategy.Score(indicators, info),
			Price:  price,
		})
	}

	// rank by score, ties broken by symbol for determinism
	sort.Slice(decision.Candidates, func(i, j int) bool {
		if decision.Candidates[i].Score != decision.Candidates[j].Score {
			return decision.Candidates[i].Score > decision.Candidates[j].Score
		}
		return decision.Candidates[i].Symbol < decision.Candidates[j].Symbol
	})

	return decision
}

func (s *Simulator) executeSell(date time.Time, symbol string, shares int64, price decimal.Decimal) error {
	notional := price.Mul(decimal.NewFromInt(shares))
	fee, err := s.CostModel.Fee(domain.TradeSide_Sell, notional)
	if err != nil {
		return err
	}

	// sells are mandatory, so unlike buys they cannot be trimmed to
	// fit. On a dust position the minimum commission can exceed the
	// sale notional; cap the settled fee at available cash plus
	// proceeds so cash stays non-negative.
	if available := s.portfolio.Cash.Add(notional); fee.GreaterThan(available) {
		fee = available
	}

	position := s.portfolio.Positions[symbol]
	remaining := position.Shares - shares
	if remaining == 0 {
		delete(s.portfolio.Positions, symbol)
	} else {
		// reduce cost basis proportionally
		position.CostBasis = position.CostBasis.
			Mul(decimal.NewFromInt(remaining)).
			Div(decimal.NewFromInt(position.Shares))
		position.Shares = remaining
	}

	s.portfolio.Cash = s.portfolio.Cash.Add(notional).Sub(fee)
	s.result.Trades = append(s.result.Trades, domain.Trade{
		Date:   date,
		Symbol: symbol,
		Side:   domain.TradeSide_Sell,
		Shares: shares,
		Price:  price,
		Fee:    fee,
	})

	return nil
}

func (s *Simulator) executeBuy(date time.Time, symbol string, shares int64, price decimal.Decimal) error {
	shares, notional, fee, err := s.affordableBuy(shares, price)
	if err != nil {
		return err
	}
	if shares == 0 {
		return nil
	}

	totalCost := notional.Add(fee)
	s.portfolio.Cash = s.portfolio.Cash.Sub(totalCost)

	if position, ok := s.portfolio.Positions[symbol]; ok {
		position.Shares += shares
		position.CostBasis = position.CostBasis.Add(totalCost)
	} else {
		s.portfolio.Positions[symbol] = &domain.Position{
			Symbol:    symbol,
			Shares:    shares,
			CostBasis: totalCost,
		}
	}

	s.result.Trades = append(s.result.Trades, domain.Trade{
		Date:   date,
		Symbol: symbol,
		Side:   domain.TradeSide_Buy,
		Shares: shares,
		Price:  price,
		Fee:    fee,
	})

	return nil
}

// affordableBuy clamps a desired buy so cash never goes negative after
// fees. The equal-weight target already fits within portfolio value;
// the clamp only trims the few shares the fee would push over.
func (s *Simulator) affordableBuy(desired int64, price decimal.Decimal) (int64, decimal.Decimal, decimal.Decimal, error) {
	shares := desired
	if maxByCash := s.portfolio.Cash.Div(price).IntPart(); shares > maxByCash {
		shares = maxByCash
	}

	for shares > 0 {
		notional := price.Mul(decimal.NewFromInt(shares))
		fee, err := s.CostModel.Fee(domain.TradeSide_Buy, notional)
		if err != nil {
			return 0, decimal.Zero, decimal.Zero, err
		}
		if notional.Add(fee).LessThanOrEqual(s.portfolio.Cash) {
			return shares, notional, fee, nil
		}
		shares--
	}

	return 0, decimal.Zero, decimal.Zero, nil
}

package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type TradeSide string

const (
	TradeSide_Buy  TradeSide = "buy"
	TradeSide_Sell TradeSide = "sell"
)

// Position is a single holding. Shares are always whole; a position
// that reaches 0 shares is removed from the portfolio, never kept.
type Position struct {
	Symbol    string
	Shares    int64
	CostBasis decimal.Decimal
}

func (p Position) DeepCopy() *Position {
	return &Position{
		Symbol:    p.Symbol,
		Shares:    p.Shares,
		CostBasis: p.CostBasis,
	}
}

type Portfolio struct {
	Positions map[string]*Position
	Cash      decimal.Decimal
}

func NewPortfolio(cash decimal.Decimal) *Portfolio {
	return &Portfolio{
		Positions: map[string]*Position{},
		Cash:      cash,
	}
}

func (p Portfolio) HeldSymbols() []string {
	symbols := []string{}
	for symbol := range p.Positions {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

func (p Portfolio) DeepCopy() *Portfolio {
	newPortfolio := &Portfolio{
		Cash:      p.Cash,
		Positions: map[string]*Position{},
	}
	for symbol, position := range p.Positions {
		newPortfolio.Positions[symbol] = position.DeepCopy()
	}

	return newPortfolio
}

func (p Portfolio) TotalValue(priceMap map[string]decimal.Decimal) (decimal.Decimal, error) {
	totalValue := p.Cash
	for symbol, position := range p.Positions {
		price, ok := priceMap[symbol]
		if !ok {
			return decimal.Zero, fmt.Errorf("cannot compute portfolio total value: price map missing %s", symbol)
		}
		totalValue = totalValue.Add(price.Mul(decimal.NewFromInt(position.Shares)))
	}

	return totalValue, nil
}

// Snapshot is the portfolio state recorded after a rebalance. The
// snapshot sequence is strictly ordered by date and append-only.
type Snapshot struct {
	Date       time.Time
	Cash       decimal.Decimal
	Positions  map[string]*Position
	TotalValue decimal.Decimal
}

// Trade is immutable once recorded; the ledger is append-only.
type Trade struct {
	Date   time.Time
	Symbol string
	Side   TradeSide
	Shares int64
	Price  decimal.Decimal
	Fee    decimal.Decimal
}

func (t Trade) Notional() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Shares))
}

// StockInfo is static metadata about a listed stock, supplied by the
// indicator feed.
type StockInfo struct {
	Symbol      string
	Name        string
	MarketCap   float64
	ListingDate time.Time
}

// ScoredStock is one ranked candidate from a strategy at a rebalance date.
type ScoredStock struct {
	Symbol string
	Score  float64
	Price  decimal.Decimal
}

// SkipNote records a candidate excluded for a recoverable data gap.
type SkipNote struct {
	Symbol string
	Reason string
}

// RebalanceDecision is the per-date strategy output: the ranked
// qualifying candidates and any stocks skipped for missing data.
type RebalanceDecision struct {
	Date       time.Time
	Candidates []ScoredStock
	Skipped    []SkipNote
}

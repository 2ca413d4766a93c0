// Package feed holds the historical market data a backtest runs
// against. Data is loaded once up front; lookups during simulation are
// pure in-memory reads, so the feed can be shared read-only across
// concurrent runs.
package feed

import (
	"sort"
	"time"

	"stockbacktest/internal/domain"

	"github.com/shopspring/decimal"
)

// Bar is one daily OHLCV record.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// IndicatorSource yields the precomputed indicator mapping for a
// (symbol, date), or false when history is insufficient.
type IndicatorSource interface {
	Indicators(symbol string, date time.Time) (map[string]float64, bool)
	Meta(symbol string) (domain.StockInfo, bool)
}

// PriceSource resolves tradable prices. PriceAsOf walks back at most
// graceDays trading days from date.
type PriceSource interface {
	PriceAsOf(symbol string, date time.Time, graceDays int) (decimal.Decimal, bool)
	HistoryLen(symbol string, date time.Time) int
}

// TradingCalendar resolves calendar dates to trading dates.
type TradingCalendar interface {
	NextTradingDayOnOrAfter(t time.Time) (time.Time, bool)
}

// MemoryFeed implements IndicatorSource, PriceSource and
// TradingCalendar over in-memory bar history.
type MemoryFeed struct {
	barsBySymbol map[string][]Bar
	metaBySymbol map[string]domain.StockInfo
	tradingDays  []time.Time
}

func NewMemoryFeed(barsBySymbol map[string][]Bar, metaBySymbol map[string]domain.StockInfo) *MemoryFeed {
	daySet := map[time.Time]struct{}{}
	for symbol := range barsBySymbol {
		bars := barsBySymbol[symbol]
		sort.Slice(bars, func(i, j int) bool {
			return bars[i].Date.Before(bars[j].Date)
		})
		barsBySymbol[symbol] = bars
		for _, bar := range bars {
			daySet[bar.Date] = struct{}{}
		}
	}

	tradingDays := make([]time.Time, 0, len(daySet))
	for d := range daySet {
		tradingDays = append(tradingDays, d)
	}
	sort.Slice(tradingDays, func(i, j int) bool {
		return tradingDays[i].Before(tradingDays[j])
	})

	if metaBySymbol == nil {
		metaBySymbol = map[string]domain.StockInfo{}
	}

	return &MemoryFeed{
		barsBySymbol: barsBySymbol,
		metaBySymbol: metaBySymbol,
		tradingDays:  tradingDays,
	}
}

func (f *MemoryFeed) Symbols() []string {
	symbols := make([]string, 0, len(f.barsBySymbol))
	for symbol := range f.barsBySymbol {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

func (f *MemoryFeed) Meta(symbol string) (domain.StockInfo, bool) {
	info, ok := f.metaBySymbol[symbol]
	return info, ok
}

// historyThrough returns all bars for symbol dated on or before date.
func (f *MemoryFeed) historyThrough(symbol string, date time.Time) []Bar {
	bars := f.barsBySymbol[symbol]
	n := sort.Search(len(bars), func(i int) bool {
		return bars[i].Date.After(date)
	})
	return bars[:n]
}

func (f *MemoryFeed) HistoryLen(symbol string, date time.Time) int {
	return len(f.historyThrough(symbol, date))
}

func (f *MemoryFeed) PriceAsOf(symbol string, date time.Time, graceDays int) (decimal.Decimal, bool) {
	bars := f.historyThrough(symbol, date)
	if len(bars) == 0 {
		return decimal.Zero, false
	}

	last := bars[len(bars)-1]
	if last.Date.Equal(date) {
		return decimal.NewFromFloat(last.Close), true
	}

	// the last print is older than the requested date; accept it only
	// if it is within the grace window of trading days
	elapsed := f.tradingDaysBetween(last.Date, date)
	if elapsed > graceDays {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(last.Close), true
}

// tradingDaysBetween counts trading days after from, up to and
// including to.
func (f *MemoryFeed) tradingDaysBetween(from, to time.Time) int {
	lo := sort.Search(len(f.tradingDays), func(i int) bool {
		return f.tradingDays[i].After(from)
	})
	hi := sort.Search(len(f.tradingDays), func(i int) bool {
		return f.tradingDays[i].After(to)
	})
	return hi - lo
}

func (f *MemoryFeed) NextTradingDayOnOrAfter(t time.Time) (time.Time, bool) {
	i := sort.Search(len(f.tradingDays), func(i int) bool {
		return !f.tradingDays[i].Before(t)
	})
	if i == len(f.tradingDays) {
		return time.Time{}, false
	}
	return f.tradingDays[i], true
}

func (f *MemoryFeed) Indicators(symbol string, date time.Time) (map[string]float64, bool) {
	bars := f.historyThrough(symbol, date)
	return computeIndicators(bars)
}

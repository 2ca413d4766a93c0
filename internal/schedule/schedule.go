// Package schedule generates the ordered rebalance date sequence for a
// backtest range.
package schedule

import (
	"fmt"
	"time"

	"stockbacktest/internal/domain"
	"stockbacktest/internal/feed"
	"stockbacktest/internal/util"
)

type Frequency string

const (
	Frequency_Monthly   Frequency = "monthly"
	Frequency_Quarterly Frequency = "quarterly"
	Frequency_Yearly    Frequency = "yearly"
)

func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case Frequency_Monthly, Frequency_Quarterly, Frequency_Yearly:
		return Frequency(s), nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFrequency, s)
}

func (f Frequency) PeriodsPerYear() float64 {
	switch f {
	case Frequency_Monthly:
		return 12
	case Frequency_Quarterly:
		return 4
	}
	return 1
}

func (f Frequency) next(t time.Time) time.Time {
	switch f {
	case Frequency_Monthly:
		return t.AddDate(0, 1, 0)
	case Frequency_Quarterly:
		return t.AddDate(0, 3, 0)
	}
	return t.AddDate(1, 0, 0)
}

// periodStart snaps t back to the calendar boundary of its period.
func (f Frequency) periodStart(t time.Time) time.Time {
	switch f {
	case Frequency_Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case Frequency_Quarterly:
		return util.QuarterStart(t)
	}
	return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
}

// Generate produces the ordered rebalance dates in [start, end]. The
// first boundary is start itself; subsequent boundaries are calendar
// period starts. Each boundary lands on the nearest trading day at or
// after it; a boundary that resolves past end is dropped. Identical
// inputs always yield identical sequences.
func Generate(start, end time.Time, freq Frequency, cal feed.TradingCalendar) ([]time.Time, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s > %s", domain.ErrInvalidRange,
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	if _, err := ParseFrequency(string(freq)); err != nil {
		return nil, err
	}

	dates := []time.Time{}
	boundary := start
	for util.DateLte(boundary, end) {
		resolved, ok := cal.NextTradingDayOnOrAfter(boundary)
		if ok && !resolved.After(end) {
			if len(dates) == 0 || resolved.After(dates[len(dates)-1]) {
				dates = append(dates, resolved)
			}
		}
		boundary = freq.next(freq.periodStart(boundary))
	}

	return dates, nil
}

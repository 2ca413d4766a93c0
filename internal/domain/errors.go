package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidRange is returned by the scheduler when start > end.
	ErrInvalidRange = errors.New("invalid date range: start is after end")

	// ErrUnsupportedFrequency is returned by the scheduler for an
	// unrecognized rebalance frequency.
	ErrUnsupportedFrequency = errors.New("unsupported rebalance frequency")

	// ErrInvalidNotional is returned by the cost model for a negative
	// notional. It indicates an upstream sizing bug.
	ErrInvalidNotional = errors.New("invalid notional: must be non-negative")
)

// InsufficientDataError marks a recoverable gap: a candidate stock is
// missing data at a rebalance date and is skipped, not aborted on.
type InsufficientDataError struct {
	Symbol string
	Date   time.Time
	Reason string
}

func (e InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s on %s: %s", e.Symbol, e.Date.Format(time.DateOnly), e.Reason)
}

// StaleUniverseError marks a fatal gap: an already-held position has no
// tradable price, so it can neither be valued nor liquidated.
type StaleUniverseError struct {
	Symbol string
	Date   time.Time
}

func (e StaleUniverseError) Error() string {
	return fmt.Sprintf("no tradable price for held position %s on %s", e.Symbol, e.Date.Format(time.DateOnly))
}

// Package cost prices trade execution: commission with a minimum
// floor, plus a sell-side stamp tax.
package cost

import (
	"fmt"

	"stockbacktest/internal/domain"

	"github.com/shopspring/decimal"
)

type Model struct {
	CommissionRate decimal.Decimal
	StampTax       decimal.Decimal
	MinCommission  decimal.Decimal
}

func NewModel(commissionRate, stampTax, minCommission float64) Model {
	return Model{
		CommissionRate: decimal.NewFromFloat(commissionRate),
		StampTax:       decimal.NewFromFloat(stampTax),
		MinCommission:  decimal.NewFromFloat(minCommission),
	}
}

// Fee computes the cash-settled fee for a trade of the given notional.
// Pure and deterministic; fails only for negative notionals, which
// indicate an upstream sizing bug.
func (m Model) Fee(side domain.TradeSide, notional decimal.Decimal) (decimal.Decimal, error) {
	if notional.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrInvalidNotional, notional.String())
	}

	commission := notional.Mul(m.CommissionRate)
	if commission.LessThan(m.MinCommission) {
		commission = m.MinCommission
	}

	if side == domain.TradeSide_Sell {
		return commission.Add(notional.Mul(m.StampTax)), nil
	}
	return commission, nil
}

package cost

import (
	"errors"
	"testing"

	"stockbacktest/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFee(t *testing.T) {
	model := NewModel(0.0003, 0.001, 5)

	t.Run("buy commission", func(t *testing.T) {
		fee, err := model.Fee(domain.TradeSide_Buy, decimal.NewFromInt(100_000))
		require.NoError(t, err)
		require.True(t, fee.Equal(decimal.NewFromInt(30)), "got %s", fee)
	})

	t.Run("minimum commission floor", func(t *testing.T) {
		fee, err := model.Fee(domain.TradeSide_Buy, decimal.NewFromInt(1000))
		require.NoError(t, err)
		require.True(t, fee.Equal(decimal.NewFromInt(5)), "got %s", fee)
	})

	t.Run("sell adds stamp tax", func(t *testing.T) {
		fee, err := model.Fee(domain.TradeSide_Sell, decimal.NewFromInt(100_000))
		require.NoError(t, err)
		// 30 commission + 100 stamp tax
		require.True(t, fee.Equal(decimal.NewFromInt(130)), "got %s", fee)
	})

	t.Run("sell fee is never below buy fee", func(t *testing.T) {
		for _, notional := range []int64{1, 100, 10_000, 1_000_000} {
			n := decimal.NewFromInt(notional)
			buyFee, err := model.Fee(domain.TradeSide_Buy, n)
			require.NoError(t, err)
			sellFee, err := model.Fee(domain.TradeSide_Sell, n)
			require.NoError(t, err)
			require.True(t, sellFee.GreaterThanOrEqual(buyFee), "notional %d", notional)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		n := decimal.NewFromFloat(123_456.78)
		first, err := model.Fee(domain.TradeSide_Sell, n)
		require.NoError(t, err)
		second, err := model.Fee(domain.TradeSide_Sell, n)
		require.NoError(t, err)
		require.True(t, first.Equal(second))
	})

	t.Run("negative notional", func(t *testing.T) {
		_, err := model.Fee(domain.TradeSide_Buy, decimal.NewFromInt(-1))
		require.True(t, errors.Is(err, domain.ErrInvalidNotional))
	})
}

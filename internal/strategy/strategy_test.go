package strategy

import (
	"testing"

	"stockbacktest/internal/domain"

	"github.com/stretchr/testify/require"
)

// uptrendIndicators is a healthy uptrend fixture that qualifies for
// momentum with room below every default threshold.
func uptrendIndicators() map[string]float64 {
	return map[string]float64{
		"price":          105,
		"ma5":            104,
		"ma10":           102,
		"ma20":           100,
		"ma60":           95,
		"rsi":            60,
		"momentum_5d":    0.02,
		"momentum_10d":   0.04,
		"momentum_20d":   0.08,
		"momentum_60d":   0.15,
		"macd":           1.2,
		"macd_signal":    0.8,
		"macd_hist":      0.4,
		"bb_position":    0.6,
		"volatility":     0.25,
		"volume_ratio":   1.5,
		"price_position": 0.7,
	}
}

func TestMomentum_Qualification(t *testing.T) {
	s := NewMomentum(DefaultMomentumConfig())
	info := domain.StockInfo{Symbol: "AAA"}

	require.True(t, s.IsQualified(uptrendIndicators(), info))

	t.Run("broken ma alignment", func(t *testing.T) {
		ind := uptrendIndicators()
		ind["ma10"] = 105 // ma5 no longer above ma10
		require.False(t, s.IsQualified(ind, info))
	})

	t.Run("overbought rsi", func(t *testing.T) {
		ind := uptrendIndicators()
		ind["rsi"] = 80
		require.False(t, s.IsQualified(ind, info))
	})

	t.Run("negative macd histogram", func(t *testing.T) {
		ind := uptrendIndicators()
		ind["macd_hist"] = -0.1
		require.False(t, s.IsQualified(ind, info))
	})

	t.Run("too volatile", func(t *testing.T) {
		ind := uptrendIndicators()
		ind["volatility"] = 0.6
		require.False(t, s.IsQualified(ind, info))
	})
}

func TestMomentum_ScoreOrdersByStrength(t *testing.T) {
	s := NewMomentum(DefaultMomentumConfig())
	info := domain.StockInfo{Symbol: "AAA"}

	weak := uptrendIndicators()
	strong := uptrendIndicators()
	strong["momentum_5d"] = 0.05
	strong["momentum_10d"] = 0.08
	strong["macd_hist"] = 0.9

	require.Greater(t, s.Score(strong, info), s.Score(weak, info))
}

func TestValue_Qualification(t *testing.T) {
	s := NewValue(DefaultValueConfig())
	info := domain.StockInfo{Symbol: "AAA"}

	// pullback within a long uptrend
	ind := map[string]float64{
		"price":          100,
		"ma60":           95,
		"rsi":            45,
		"bb_position":    0.3,
		"price_position": 0.35,
		"volatility":     0.2,
		"volume_ratio":   0.8,
	}
	require.True(t, s.IsQualified(ind, info))

	t.Run("below long average", func(t *testing.T) {
		broke := map[string]float64{}
		for k, v := range ind {
			broke[k] = v
		}
		broke["ma60"] = 105
		require.False(t, s.IsQualified(broke, info))
	})

	t.Run("too extended", func(t *testing.T) {
		extended := map[string]float64{}
		for k, v := range ind {
			extended[k] = v
		}
		extended["price_position"] = 0.9
		require.False(t, s.IsQualified(extended, info))
	})
}

func TestValue_ScorePrefersDeeperPullback(t *testing.T) {
	s := NewValue(DefaultValueConfig())
	info := domain.StockInfo{Symbol: "AAA"}

	shallow := map[string]float64{
		"price": 100, "ma60": 95, "rsi": 55,
		"bb_position": 0.4, "price_position": 0.5,
		"volatility": 0.2, "volume_ratio": 0.8,
	}
	deep := map[string]float64{
		"price": 100, "ma60": 95, "rsi": 40,
		"bb_position": 0.15, "price_position": 0.15,
		"volatility": 0.2, "volume_ratio": 0.8,
	}

	require.Greater(t, s.Score(deep, info), s.Score(shallow, info))
}

func TestGrowth_Qualification(t *testing.T) {
	s := NewGrowth(DefaultGrowthConfig())
	info := domain.StockInfo{Symbol: "AAA"}

	breakout := map[string]float64{
		"price":          120,
		"ma20":           110,
		"ma60":           100,
		"rsi":            65,
		"momentum_20d":   0.10,
		"momentum_60d":   0.25,
		"macd_hist":      0.5,
		"volume_ratio":   1.8,
		"price_position": 0.85,
		"volatility":     0.4,
	}
	require.True(t, s.IsQualified(breakout, info))

	t.Run("weak long momentum", func(t *testing.T) {
		weak := map[string]float64{}
		for k, v := range breakout {
			weak[k] = v
		}
		weak["momentum_60d"] = 0.05
		require.False(t, s.IsQualified(weak, info))
	})

	t.Run("thin volume", func(t *testing.T) {
		thin := map[string]float64{}
		for k, v := range breakout {
			thin[k] = v
		}
		thin["volume_ratio"] = 1.0
		require.False(t, s.IsQualified(thin, info))
	})
}

func TestGrowth_FactorScores(t *testing.T) {
	s := NewGrowth(DefaultGrowthConfig())

	require.InDelta(t, 100.0, s.factorScore("momentum_20d", map[string]float64{"momentum_20d": 0.5}), 1e-9)
	require.InDelta(t, 50.0, s.factorScore("momentum_20d", map[string]float64{"momentum_20d": 0.25}), 1e-9)
	require.InDelta(t, 100.0, s.factorScore("momentum_60d", map[string]float64{"momentum_60d": 1.5}), 1e-9)

	// rsi below 50 earns nothing, 65 is mid-band, above 80 decays
	require.Zero(t, s.factorScore("rsi", map[string]float64{"rsi": 40}))
	require.InDelta(t, 50.0, s.factorScore("rsi", map[string]float64{"rsi": 65}), 1e-9)
	require.InDelta(t, 75.0, s.factorScore("rsi", map[string]float64{"rsi": 85}), 1e-9)

	require.InDelta(t, 50.0, s.factorScore("volume_ratio", map[string]float64{"volume_ratio": 2}), 1e-9)
	require.InDelta(t, 85.0, s.factorScore("price_position", map[string]float64{"price_position": 0.85}), 1e-9)
}

func TestExpression_Strategy(t *testing.T) {
	s, err := NewExpression("custom", "rsi < 70 && price > ma20", "momentum_20d * 100 + max(rsi, 50)")
	require.NoError(t, err)
	require.Equal(t, "custom", s.Name())

	info := domain.StockInfo{Symbol: "AAA", MarketCap: 1e10}
	ind := map[string]float64{"rsi": 60.0, "price": 105.0, "ma20": 100.0, "momentum_20d": 0.1}

	require.True(t, s.IsQualified(ind, info))
	require.InDelta(t, 70.0, s.Score(ind, info), 1e-9)

	t.Run("not qualified", func(t *testing.T) {
		hot := map[string]float64{"rsi": 75.0, "price": 105.0, "ma20": 100.0}
		require.False(t, s.IsQualified(hot, info))
	})

	t.Run("market cap variable", func(t *testing.T) {
		s, err := NewExpression("big", "marketCap > 5000000000.0", "1.0")
		require.NoError(t, err)
		require.True(t, s.IsQualified(map[string]float64{}, info))
		require.False(t, s.IsQualified(map[string]float64{}, domain.StockInfo{MarketCap: 100}))
	})

	t.Run("bad expression fails closed", func(t *testing.T) {
		s, err := NewExpression("broken", "nonsense ++ syntax", "also (bad")
		require.NoError(t, err)
		require.False(t, s.IsQualified(ind, info))
		require.Zero(t, s.Score(ind, info))
	})

	t.Run("empty expressions rejected", func(t *testing.T) {
		_, err := NewExpression("x", "", "1")
		require.Error(t, err)
	})
}

func TestBuiltinRegistry(t *testing.T) {
	for _, name := range []string{"momentum", "value", "growth"} {
		s, err := Builtin(name)
		require.NoError(t, err)
		require.Equal(t, name, s.Name())
	}

	_, err := Builtin("arbitrage")
	require.Error(t, err)

	require.Len(t, Builtins(), 3)
}

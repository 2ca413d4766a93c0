package feed

import (
	"math"

	"github.com/montanaflynn/stats"
)

const (
	lookbackBars = 61 // 60d momentum needs one bar beyond the window

	rsiPeriod  = 14
	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9
	bbPeriod   = 20
	bbStd      = 2.0
)

// computeIndicators derives the per-date indicator mapping from bar
// history ending at the evaluation date. Returns false when history is
// too short for the full indicator set.
func computeIndicators(bars []Bar) (map[string]float64, bool) {
	if len(bars) < lookbackBars {
		return nil, false
	}

	closes := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
		highs[i] = bar.High
		lows[i] = bar.Low
		volumes[i] = bar.Volume
	}

	price := closes[len(closes)-1]

	indicators := map[string]float64{
		"price": price,

		"ma5":  meanOfTail(closes, 5),
		"ma10": meanOfTail(closes, 10),
		"ma20": meanOfTail(closes, 20),
		"ma60": meanOfTail(closes, 60),

		"rsi": rsi(closes, rsiPeriod),

		"momentum_5d":  momentum(closes, 5),
		"momentum_10d": momentum(closes, 10),
		"momentum_20d": momentum(closes, 20),
		"momentum_60d": momentum(closes, 60),

		"volatility":     annualizedVolatility(closes, 20),
		"price_position": pricePosition(closes, highs, lows, 60),
		"volume_ratio":   volumeRatio(volumes, 20),
	}

	macdLine, signalLine := macd(closes)
	indicators["macd"] = macdLine
	indicators["macd_signal"] = signalLine
	indicators["macd_hist"] = macdLine - signalLine

	upper, middle, lower := bollinger(closes)
	indicators["bb_upper"] = upper
	indicators["bb_middle"] = middle
	indicators["bb_lower"] = lower
	if upper != lower {
		indicators["bb_position"] = (price - lower) / (upper - lower)
	} else {
		indicators["bb_position"] = 0.5
	}

	return indicators, true
}

func meanOfTail(values []float64, n int) float64 {
	mean, err := stats.Mean(values[len(values)-n:])
	if err != nil {
		return 0
	}
	return mean
}

func momentum(closes []float64, n int) float64 {
	prev := closes[len(closes)-1-n]
	if prev == 0 {
		return 0
	}
	return closes[len(closes)-1]/prev - 1
}

func rsi(closes []float64, period int) float64 {
	gains := 0.0
	losses := 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}
	if losses == 0 {
		return 100
	}
	rs := gains / losses
	return 100 - 100/(1+rs)
}

func ema(values []float64, span int) []float64 {
	alpha := 2.0 / (float64(span) + 1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

func macd(closes []float64) (float64, float64) {
	fast := ema(closes, macdFast)
	slow := ema(closes, macdSlow)
	macdSeries := make([]float64, len(closes))
	for i := range closes {
		macdSeries[i] = fast[i] - slow[i]
	}
	signalSeries := ema(macdSeries, macdSignal)
	return macdSeries[len(macdSeries)-1], signalSeries[len(signalSeries)-1]
}

func bollinger(closes []float64) (float64, float64, float64) {
	window := closes[len(closes)-bbPeriod:]
	middle, _ := stats.Mean(window)
	stdev, err := stats.StandardDeviationSample(window)
	if err != nil {
		stdev = 0
	}
	return middle + bbStd*stdev, middle, middle - bbStd*stdev
}

func annualizedVolatility(closes []float64, period int) float64 {
	returns := make([]float64, 0, period)
	for i := len(closes) - period; i < len(closes); i++ {
		if closes[i-1] != 0 {
			returns = append(returns, closes[i]/closes[i-1]-1)
		}
	}
	stdev, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return 0
	}
	return stdev * math.Sqrt(252)
}

func pricePosition(closes, highs, lows []float64, period int) float64 {
	high := highs[len(highs)-period]
	low := lows[len(lows)-period]
	for i := len(highs) - period; i < len(highs); i++ {
		high = math.Max(high, highs[i])
		low = math.Min(low, lows[i])
	}
	if high == low {
		return 0.5
	}
	return (closes[len(closes)-1] - low) / (high - low)
}

// volumeRatio compares recent volume (5d average) against the baseline
// average over period.
func volumeRatio(volumes []float64, period int) float64 {
	avg := meanOfTail(volumes, period)
	if avg == 0 {
		return 0
	}
	return meanOfTail(volumes, 5) / avg
}

// Package indicator computes technical indicators over ordered series of
// closing prices. All functions are pure; the boolean return reports
// whether the series was long enough to compute the value.
package indicator

import "math"

const (
	DefaultRSIPeriod  = 14
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
)

// RSI returns the relative strength index over the trailing period deltas.
// Needs at least period+1 prices. When the average loss is zero it returns
// 100 for a rising series and 50 for a flat one.
func RSI(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period+1 {
		return 0, false
	}

	var avgGain, avgLoss float64
	for i := len(prices) - period; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		if avgGain > 0 {
			return 100, true
		}
		return 50, true
	}

	rs := avgGain / avgLoss
	return round2(100 - 100/(1+rs)), true
}

// EMA seeds with the simple average of the first period prices, then applies
// the 2/(period+1) smoothing recurrence over the rest of the series.
func EMA(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period {
		return 0, false
	}

	multiplier := 2 / float64(period+1)
	var ema float64
	for _, p := range prices[:period] {
		ema += p
	}
	ema /= float64(period)

	for _, p := range prices[period:] {
		ema = (p-ema)*multiplier + ema
	}

	return round2(ema), true
}

// MACD returns the MACD line, signal line and histogram. The signal line is
// the simple average of MACD values recomputed over each trailing sub-window
// rather than a smoothed EMA of the MACD series. That diverges from the
// textbook definition but is kept on purpose; changing it silently would
// shift every downstream snapshot.
func MACD(prices []float64, fast, slow, signal int) (line, sig, hist float64, ok bool) {
	if len(prices) < slow+signal {
		return 0, 0, 0, false
	}

	emaFast, okFast := EMA(prices, fast)
	emaSlow, okSlow := EMA(prices, slow)
	if !okFast || !okSlow {
		return 0, 0, 0, false
	}
	line = emaFast - emaSlow

	macdValues := make([]float64, 0, len(prices)-slow+1)
	for i := 0; i <= len(prices)-slow; i++ {
		window := prices[:i+slow]
		f, okF := EMA(window, fast)
		s, okS := EMA(window, slow)
		if okF && okS {
			macdValues = append(macdValues, f-s)
		}
	}
	if len(macdValues) < signal {
		return 0, 0, 0, false
	}

	var sum float64
	for _, v := range macdValues[len(macdValues)-signal:] {
		sum += v
	}
	sig = sum / float64(signal)
	hist = line - sig

	return round4(line), round4(sig), round4(hist), true
}

// PeriodChange returns the percent change from the first to the last close,
// 0 for an empty series or a zero first price.
func PeriodChange(prices []float64) float64 {
	if len(prices) == 0 || prices[0] == 0 {
		return 0
	}
	return round2((prices[len(prices)-1] - prices[0]) / prices[0] * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

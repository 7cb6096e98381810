package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rising(n int) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	return prices
}

func constant(n int, v float64) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = v
	}
	return prices
}

func TestRSI(t *testing.T) {
	t.Run("unavailable below period+1 points", func(t *testing.T) {
		for n := 0; n < 15; n++ {
			_, ok := RSI(rising(n), DefaultRSIPeriod)
			assert.False(t, ok, "n=%d", n)
		}
	})

	t.Run("monotonically increasing series is fully bullish", func(t *testing.T) {
		v, ok := RSI(rising(15), DefaultRSIPeriod)
		require.True(t, ok)
		assert.Equal(t, 100.0, v)

		v, ok = RSI(rising(60), DefaultRSIPeriod)
		require.True(t, ok)
		assert.Equal(t, 100.0, v)
	})

	t.Run("flat series is neutral", func(t *testing.T) {
		v, ok := RSI(constant(20, 50), DefaultRSIPeriod)
		require.True(t, ok)
		assert.Equal(t, 50.0, v)
	})

	t.Run("falling series is near zero", func(t *testing.T) {
		prices := make([]float64, 20)
		for i := range prices {
			prices[i] = 200 - float64(i)
		}
		v, ok := RSI(prices, DefaultRSIPeriod)
		require.True(t, ok)
		assert.Equal(t, 0.0, v)
	})

	t.Run("mixed series stays within bounds", func(t *testing.T) {
		prices := []float64{10, 11, 10.5, 11.2, 10.8, 11.5, 11.1, 11.9,
			11.4, 12.0, 11.7, 12.3, 12.1, 12.6, 12.2, 12.8}
		v, ok := RSI(prices, DefaultRSIPeriod)
		require.True(t, ok)
		assert.Greater(t, v, 0.0)
		assert.Less(t, v, 100.0)
	})
}

func TestEMA(t *testing.T) {
	t.Run("unavailable below period points", func(t *testing.T) {
		_, ok := EMA(rising(49), 50)
		assert.False(t, ok)
	})

	t.Run("constant series equals the constant", func(t *testing.T) {
		v, ok := EMA(constant(80, 42.5), 50)
		require.True(t, ok)
		assert.Equal(t, 42.5, v)
	})

	t.Run("exact length uses the simple average seed", func(t *testing.T) {
		v, ok := EMA([]float64{1, 2, 3, 4}, 4)
		require.True(t, ok)
		assert.Equal(t, 2.5, v)
	})

	t.Run("tracks a trending series between min and max", func(t *testing.T) {
		v, ok := EMA(rising(100), 50)
		require.True(t, ok)
		assert.Greater(t, v, 100.0)
		assert.Less(t, v, 199.0)
	})
}

func TestMACD(t *testing.T) {
	t.Run("unavailable below slow+signal points", func(t *testing.T) {
		_, _, _, ok := MACD(rising(34), DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
		assert.False(t, ok)
	})

	t.Run("constant series is all zeros", func(t *testing.T) {
		line, sig, hist, ok := MACD(constant(60, 77), DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
		require.True(t, ok)
		assert.Equal(t, 0.0, line)
		assert.Equal(t, 0.0, sig)
		assert.Equal(t, 0.0, hist)
	})

	t.Run("histogram is line minus signal", func(t *testing.T) {
		prices := make([]float64, 60)
		for i := range prices {
			prices[i] = 100 + float64(i)*0.7
		}
		line, sig, hist, ok := MACD(prices, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
		require.True(t, ok)
		assert.InDelta(t, line-sig, hist, 0.0002)
	})

	t.Run("uptrend keeps the fast EMA above the slow", func(t *testing.T) {
		line, _, _, ok := MACD(rising(60), DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
		require.True(t, ok)
		assert.Greater(t, line, 0.0)
	})
}

func TestPeriodChange(t *testing.T) {
	assert.Equal(t, 0.0, PeriodChange(nil))
	assert.Equal(t, 0.0, PeriodChange([]float64{0, 10}))
	assert.Equal(t, 50.0, PeriodChange([]float64{100, 120, 150}))
	assert.Equal(t, -25.0, PeriodChange([]float64{200, 180, 150}))
}

package market

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantarena/agent-league/internal/logger"
)

type fakeSource struct {
	mu      sync.Mutex
	fetches map[string]int
	bars    map[string][]Bar
	quotes  map[string]float64
	fail    map[string]bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		fetches: make(map[string]int),
		bars:    make(map[string][]Bar),
		quotes:  make(map[string]float64),
		fail:    make(map[string]bool),
	}
}

func (f *fakeSource) History(ctx context.Context, symbol string, days int) ([]Bar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches[symbol]++
	if f.fail[symbol] {
		return nil, fmt.Errorf("upstream unavailable for %s", symbol)
	}
	return f.bars[symbol], nil
}

func (f *fakeSource) Quote(ctx context.Context, symbol string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[symbol] {
		return 0, fmt.Errorf("upstream unavailable for %s", symbol)
	}
	q, ok := f.quotes[symbol]
	if !ok {
		return 0, fmt.Errorf("no quote for %s", symbol)
	}
	return q, nil
}

func (f *fakeSource) historyFetches(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[symbol]
}

func dailyBars(closes []float64) []Bar {
	bars := make([]Bar, len(closes))
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = Bar{Time: start.AddDate(0, 0, i), Close: c, Volume: 1000 + int64(i)}
	}
	return bars
}

func trendingCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5
	}
	return closes
}

func newTestCache(src Source) *Cache {
	return NewCache(src, time.Minute, 90, 4, logger.New("error"))
}

func TestCacheGet(t *testing.T) {
	t.Run("computes indicators from history", func(t *testing.T) {
		src := newFakeSource()
		src.bars["AAPL"] = dailyBars(trendingCloses(60))
		src.quotes["AAPL"] = 131.5

		c := newTestCache(src)
		snap, err := c.Get(context.Background(), "aapl")
		require.NoError(t, err)

		assert.Equal(t, "AAPL", snap.Ticker)
		assert.Equal(t, 131.5, snap.Price)
		require.NotNil(t, snap.RSI14)
		assert.Equal(t, 100.0, *snap.RSI14)
		require.NotNil(t, snap.EMA50)
		assert.Nil(t, snap.EMA200, "only 60 bars, EMA 200 unavailable")
		require.NotNil(t, snap.MACDLine)
		assert.Equal(t, int64(1059), snap.Volume)
	})

	t.Run("serves the cached entry within the TTL", func(t *testing.T) {
		src := newFakeSource()
		src.bars["MSFT"] = dailyBars(trendingCloses(30))
		src.quotes["MSFT"] = 400

		c := newTestCache(src)
		_, err := c.Get(context.Background(), "MSFT")
		require.NoError(t, err)
		_, err = c.Get(context.Background(), "MSFT")
		require.NoError(t, err)

		assert.Equal(t, 1, src.historyFetches("MSFT"))
	})

	t.Run("refetches after expiry", func(t *testing.T) {
		src := newFakeSource()
		src.bars["MSFT"] = dailyBars(trendingCloses(30))
		src.quotes["MSFT"] = 400

		c := newTestCache(src)
		now := time.Now()
		c.now = func() time.Time { return now }

		_, err := c.Get(context.Background(), "MSFT")
		require.NoError(t, err)

		now = now.Add(2 * time.Minute)
		_, err = c.Get(context.Background(), "MSFT")
		require.NoError(t, err)

		assert.Equal(t, 2, src.historyFetches("MSFT"))
	})

	t.Run("falls back to last close when the quote fails", func(t *testing.T) {
		src := newFakeSource()
		closes := trendingCloses(30)
		src.bars["NVDA"] = dailyBars(closes)

		c := newTestCache(src)
		snap, err := c.Get(context.Background(), "NVDA")
		require.NoError(t, err)
		assert.Equal(t, closes[len(closes)-1], snap.Price)
	})

	t.Run("empty history with a live quote yields price only", func(t *testing.T) {
		src := newFakeSource()
		src.quotes["IPO"] = 25

		c := newTestCache(src)
		snap, err := c.Get(context.Background(), "IPO")
		require.NoError(t, err)
		assert.Equal(t, 25.0, snap.Price)
		assert.Nil(t, snap.RSI14)
		assert.Nil(t, snap.MACDLine)
	})

	t.Run("fails when both history and quote are unavailable", func(t *testing.T) {
		src := newFakeSource()
		c := newTestCache(src)
		_, err := c.Get(context.Background(), "NOPE")
		assert.Error(t, err)
	})
}

func TestCacheGetMany(t *testing.T) {
	src := newFakeSource()
	src.bars["AAPL"] = dailyBars(trendingCloses(40))
	src.quotes["AAPL"] = 130
	src.bars["MSFT"] = dailyBars(trendingCloses(40))
	src.quotes["MSFT"] = 400
	src.fail["TSLA"] = true

	c := newTestCache(src)
	results := c.GetMany(context.Background(), []string{"AAPL", "MSFT", "TSLA"})

	require.Len(t, results, 3)
	assert.NotNil(t, results["AAPL"])
	assert.NotNil(t, results["MSFT"])
	assert.Nil(t, results["TSLA"], "a failing ticker yields a nil entry, not a batch failure")
}

func TestCacheGetManyConcurrentSameTicker(t *testing.T) {
	src := newFakeSource()
	src.bars["AAPL"] = dailyBars(trendingCloses(40))
	src.quotes["AAPL"] = 130

	c := newTestCache(src)
	var done atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Get(context.Background(), "AAPL"); err == nil {
				done.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(8), done.Load())
}

func TestFormatSnapshot(t *testing.T) {
	rsi := 65.2
	s := &Snapshot{Ticker: "AAPL", Price: 150.25, ChangePct3Mo: 12.5, RSI14: &rsi, Volume: 12345}

	out := FormatSnapshot(s)
	assert.Contains(t, out, "Stock: AAPL")
	assert.Contains(t, out, "Price: $150.25")
	assert.Contains(t, out, "RSI (14): 65.20")
	assert.Contains(t, out, "EMA 50: N/A")
	assert.Contains(t, out, "MACD Line: N/A")

	assert.Equal(t, "No data available", FormatSnapshot(nil))

	many := FormatSnapshots(map[string]*Snapshot{"AAPL": s, "TSLA": nil}, []string{"AAPL", "TSLA"})
	assert.Contains(t, many, "Stock: AAPL")
	assert.False(t, strings.Contains(many, "TSLA"))
}

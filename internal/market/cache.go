package market

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/quantarena/agent-league/internal/indicator"
	"github.com/quantarena/agent-league/internal/logger"
)

// Cache serves ticker snapshots with a lazy TTL. Entries are recomputed on
// read once they age past the TTL; there is no background sweep. A lost
// update between two concurrent fetches of the same ticker is harmless,
// both writers store an equally fresh snapshot.
type Cache struct {
	source      Source
	ttl         time.Duration
	historyDays int
	concurrency int
	logger      *logger.Logger

	mu      sync.RWMutex
	entries map[string]cacheEntry

	now func() time.Time
}

type cacheEntry struct {
	snap      *Snapshot
	fetchedAt time.Time
}

func NewCache(source Source, ttl time.Duration, historyDays, concurrency int, log *logger.Logger) *Cache {
	if concurrency <= 0 {
		concurrency = 10
	}
	return &Cache{
		source:      source,
		ttl:         ttl,
		historyDays: historyDays,
		concurrency: concurrency,
		logger:      log,
		entries:     make(map[string]cacheEntry),
		now:         time.Now,
	}
}

// Get returns a live snapshot for ticker, fetching a fresh one when the
// cached entry is missing or expired.
func (c *Cache) Get(ctx context.Context, ticker string) (*Snapshot, error) {
	ticker = strings.ToUpper(ticker)

	c.mu.RLock()
	entry, ok := c.entries[ticker]
	c.mu.RUnlock()
	if ok && c.now().Sub(entry.fetchedAt) <= c.ttl {
		return entry.snap, nil
	}

	snap, err := c.fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[ticker] = cacheEntry{snap: snap, fetchedAt: c.now()}
	c.mu.Unlock()

	return snap, nil
}

// GetMany fetches snapshots for all tickers with bounded concurrency. A
// failing ticker maps to a nil snapshot; it never aborts the batch.
func (c *Cache) GetMany(ctx context.Context, tickers []string) map[string]*Snapshot {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, c.concurrency)
	)
	results := make(map[string]*Snapshot, len(tickers))

	for _, ticker := range tickers {
		wg.Add(1)
		sem <- struct{}{}

		go func(t string) {
			defer wg.Done()
			defer func() { <-sem }()

			snap, err := c.Get(ctx, t)
			if err != nil {
				c.logger.Warn("fetch snapshot", "ticker", t, "error", err)
				snap = nil
			}

			mu.Lock()
			results[strings.ToUpper(t)] = snap
			mu.Unlock()
		}(ticker)
	}

	wg.Wait()
	return results
}

// Price returns the current price for ticker from the cached snapshot.
func (c *Cache) Price(ctx context.Context, ticker string) (float64, error) {
	snap, err := c.Get(ctx, ticker)
	if err != nil {
		return 0, err
	}
	if snap.Price <= 0 {
		return 0, fmt.Errorf("no price for %s", ticker)
	}
	return snap.Price, nil
}

func (c *Cache) fetch(ctx context.Context, ticker string) (*Snapshot, error) {
	bars, err := c.source.History(ctx, ticker, c.historyDays)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", ticker, err)
	}

	price, qerr := c.source.Quote(ctx, ticker)

	snap := &Snapshot{
		Ticker:     ticker,
		Price:      price,
		ComputedAt: c.now().UTC(),
	}

	if len(bars) == 0 {
		if qerr != nil {
			return nil, fmt.Errorf("quote %s: %w", ticker, qerr)
		}
		c.logger.Warn("no history, indicators unavailable", "ticker", ticker)
		return snap, nil
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	if qerr != nil || snap.Price <= 0 {
		snap.Price = closes[len(closes)-1]
	}
	snap.Volume = bars[len(bars)-1].Volume
	snap.ChangePct3Mo = indicator.PeriodChange(closes)

	if v, ok := indicator.RSI(closes, indicator.DefaultRSIPeriod); ok {
		snap.RSI14 = &v
	}
	if v, ok := indicator.EMA(closes, 50); ok {
		snap.EMA50 = &v
	}
	if v, ok := indicator.EMA(closes, 200); ok {
		snap.EMA200 = &v
	}
	if line, sig, hist, ok := indicator.MACD(closes,
		indicator.DefaultMACDFast, indicator.DefaultMACDSlow, indicator.DefaultMACDSignal); ok {
		snap.MACDLine = &line
		snap.MACDSignal = &sig
		snap.MACDHistogram = &hist
	}

	return snap, nil
}

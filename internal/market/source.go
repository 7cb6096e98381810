package market

import "context"

// Source provides prices from an external market-data backend. An empty
// history is not an error; callers treat it as "indicators unavailable".
type Source interface {
	// History returns up to days of daily bars for symbol, oldest first.
	History(ctx context.Context, symbol string, days int) ([]Bar, error)
	// Quote returns the last traded price for symbol.
	Quote(ctx context.Context, symbol string) (float64, error)
}

package market

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"

	"github.com/quantarena/agent-league/internal/logger"
)

// YahooSource fetches quotes and daily history from Yahoo Finance.
type YahooSource struct {
	logger *logger.Logger
}

func NewYahooSource(log *logger.Logger) *YahooSource {
	return &YahooSource{logger: log}
}

func (y *YahooSource) Quote(ctx context.Context, symbol string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	q, err := quote.Get(symbol)
	if err != nil {
		return 0, fmt.Errorf("get quote %s: %w", symbol, err)
	}
	if q == nil {
		return 0, fmt.Errorf("get quote %s: empty response", symbol)
	}
	return q.RegularMarketPrice, nil
}

func (y *YahooSource) History(ctx context.Context, symbol string, days int) ([]Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	iter := chart.Get(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})

	var bars []Bar
	for iter.Next() {
		b := iter.Bar()
		bars = append(bars, Bar{
			Time:   time.Unix(int64(b.Timestamp), 0),
			Close:  b.Close.InexactFloat64(),
			Volume: int64(b.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("get history %s: %w", symbol, err)
	}

	y.logger.Debug("history fetched", "symbol", symbol, "bars", len(bars))
	return bars, nil
}

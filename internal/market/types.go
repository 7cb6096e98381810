package market

import "time"

// Bar is one daily candle of the external price history.
type Bar struct {
	Time   time.Time
	Close  float64
	Volume int64
}

// Snapshot is the cached, indicator-enriched view of one ticker. Indicator
// fields are nil when the history was too short to compute them.
type Snapshot struct {
	Ticker        string    `json:"ticker"`
	Price         float64   `json:"price"`
	ChangePct3Mo  float64   `json:"change_pct_3mo"`
	RSI14         *float64  `json:"rsi14"`
	EMA50         *float64  `json:"ema50"`
	EMA200        *float64  `json:"ema200"`
	MACDLine      *float64  `json:"macd_line"`
	MACDSignal    *float64  `json:"macd_signal"`
	MACDHistogram *float64  `json:"macd_histogram"`
	Volume        int64     `json:"volume"`
	ComputedAt    time.Time `json:"computed_at"`
}

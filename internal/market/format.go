package market

import (
	"fmt"
	"strings"
)

// FormatSnapshot renders one snapshot as the market-data block agents see
// in their prompts. Unavailable indicators render as N/A.
func FormatSnapshot(s *Snapshot) string {
	if s == nil {
		return "No data available"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Stock: %s\n", s.Ticker)
	fmt.Fprintf(&sb, "Price: $%.2f\n", s.Price)
	fmt.Fprintf(&sb, "3-Month Change: %.2f%%\n", s.ChangePct3Mo)
	fmt.Fprintf(&sb, "RSI (14): %s\n", fmtIndicator(s.RSI14, 2))
	fmt.Fprintf(&sb, "EMA 50: %s\n", fmtDollar(s.EMA50))
	fmt.Fprintf(&sb, "EMA 200: %s\n", fmtDollar(s.EMA200))
	fmt.Fprintf(&sb, "MACD Line: %s\n", fmtIndicator(s.MACDLine, 4))
	fmt.Fprintf(&sb, "MACD Signal: %s\n", fmtIndicator(s.MACDSignal, 4))
	fmt.Fprintf(&sb, "MACD Histogram: %s\n", fmtIndicator(s.MACDHistogram, 4))
	fmt.Fprintf(&sb, "Volume: %d\n", s.Volume)
	return sb.String()
}

// FormatSnapshots renders the whole universe, skipping tickers whose fetch
// failed during the batch.
func FormatSnapshots(snaps map[string]*Snapshot, order []string) string {
	var sb strings.Builder
	for _, ticker := range order {
		snap, ok := snaps[strings.ToUpper(ticker)]
		if !ok || snap == nil {
			continue
		}
		sb.WriteString(FormatSnapshot(snap))
		sb.WriteString("\n")
	}
	if sb.Len() == 0 {
		return "No data available"
	}
	return sb.String()
}

func fmtIndicator(v *float64, decimals int) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.*f", decimals, *v)
}

func fmtDollar(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", *v)
}

// Package scoring reconstructs realized and unrealized P&L from the trade
// ledger using average-cost accounting and produces league standings.
package scoring

import (
	"math"
	"sort"

	"github.com/quantarena/agent-league/internal/engine"
)

const tradingDaysPerYear = 252

// Position is the remaining open book for one ticker after a replay.
type Position struct {
	Quantity int     `json:"quantity"`
	AvgCost  float64 `json:"avg_cost"`
}

// Report is the outcome of replaying one agent's ordered trade ledger.
type Report struct {
	RealizedPnL   float64             `json:"realized_pnl"`
	UnrealizedPnL float64             `json:"unrealized_pnl"`
	TotalPnL      float64             `json:"total_pnl"`
	NumTrades     int                 `json:"num_trades"`
	BuyTrades     int                 `json:"buy_trades"`
	SellTrades    int                 `json:"sell_trades"`
	WinningSells  int                 `json:"winning_sells"`
	WinRate       float64             `json:"win_rate"`
	Positions     map[string]Position `json:"positions"`
}

// ScoreEntry is one row of the league standings.
type ScoreEntry struct {
	Rank          int     `json:"rank"`
	AgentID       uint    `json:"agent_id"`
	ModelName     string  `json:"model_name"`
	StyleName     string  `json:"style_name"`
	RealizedPnL   float64 `json:"realized_pnl"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
	TotalPnL      float64 `json:"total_pnl"`
	PnLPct        float64 `json:"pnl_pct"`
	CurrentCash   float64 `json:"current_cash"`
	NumTrades     int     `json:"num_trades"`
	WinRate       float64 `json:"win_rate"`
}

type book struct {
	quantity int
	cost     float64
}

// Replay walks the ordered trade ledger with a running (quantity, cost)
// book per ticker. Buys add cost, sells realize against the average cost
// at the moment of sale and shrink the book proportionally. A sell counts
// as a win when its price exceeds that average cost. Open positions are
// marked to the supplied prices; tickers without a price contribute no
// unrealized P&L.
func Replay(trades []engine.Trade, prices map[string]float64) Report {
	books := make(map[string]*book)
	report := Report{Positions: make(map[string]Position)}

	for _, t := range trades {
		if !t.Executed {
			continue
		}
		b, ok := books[t.Ticker]
		if !ok {
			b = &book{}
			books[t.Ticker] = b
		}

		switch t.Action {
		case "buy":
			report.BuyTrades++
			b.cost += t.EntryPrice * float64(t.Quantity)
			b.quantity += t.Quantity
		case "sell":
			report.SellTrades++
			if b.quantity <= 0 {
				continue
			}
			qty := t.Quantity
			if qty > b.quantity {
				qty = b.quantity
			}
			avgCost := b.cost / float64(b.quantity)
			report.RealizedPnL += (t.EntryPrice - avgCost) * float64(qty)
			if t.EntryPrice > avgCost {
				report.WinningSells++
			}
			b.cost -= avgCost * float64(qty)
			b.quantity -= qty
		}
	}

	for ticker, b := range books {
		if b.quantity <= 0 {
			continue
		}
		avgCost := b.cost / float64(b.quantity)
		report.Positions[ticker] = Position{Quantity: b.quantity, AvgCost: avgCost}
		if price, ok := prices[ticker]; ok && price > 0 {
			report.UnrealizedPnL += (price - avgCost) * float64(b.quantity)
		}
	}

	report.NumTrades = report.BuyTrades + report.SellTrades
	report.TotalPnL = report.RealizedPnL + report.UnrealizedPnL
	if report.SellTrades > 0 {
		report.WinRate = float64(report.WinningSells) / float64(report.SellTrades)
	}
	return report
}

// Score builds one standings row from a replay. Rank is assigned later
// by Rank.
func Score(agentID uint, modelName, styleName string, startingCapital, currentCash float64, report Report) ScoreEntry {
	entry := ScoreEntry{
		AgentID:       agentID,
		ModelName:     modelName,
		StyleName:     styleName,
		RealizedPnL:   report.RealizedPnL,
		UnrealizedPnL: report.UnrealizedPnL,
		TotalPnL:      report.TotalPnL,
		CurrentCash:   currentCash,
		NumTrades:     report.NumTrades,
		WinRate:       report.WinRate,
	}
	if startingCapital > 0 {
		entry.PnLPct = report.TotalPnL / startingCapital * 100
	}
	return entry
}

// Rank sorts entries by total P&L descending and assigns 1-based ranks.
// The sort is stable, so ties keep their input order.
func Rank(entries []ScoreEntry) []ScoreEntry {
	ranked := make([]ScoreEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalPnL > ranked[j].TotalPnL
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// SharpeRatio annualizes the mean excess daily return over its standard
// deviation. Fewer than two observations or zero variance yield 0.
func SharpeRatio(dailyReturns []float64, riskFree float64) float64 {
	if len(dailyReturns) < 2 {
		return 0
	}
	dailyRiskFree := riskFree / tradingDaysPerYear

	var sum float64
	for _, r := range dailyReturns {
		sum += r - dailyRiskFree
	}
	mean := sum / float64(len(dailyReturns))

	var variance float64
	for _, r := range dailyReturns {
		d := r - dailyRiskFree - mean
		variance += d * d
	}
	variance /= float64(len(dailyReturns) - 1)
	if variance == 0 {
		return 0
	}
	return mean / math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear)
}

// MaxDrawdown returns the largest peak-to-trough decline of a portfolio
// value series, as a positive percentage of the peak.
func MaxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	peak := values[0]
	var maxDD float64
	for _, v := range values[1:] {
		if v > peak {
			peak = v
			continue
		}
		if peak > 0 {
			if dd := (peak - v) / peak * 100; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

package ai

import (
	"fmt"
	"sort"
	"strings"
)

// BuildUserPrompt assembles the user-visible message from the formatted
// market snapshot and the account's current state.
func BuildUserPrompt(marketData, accountState string) string {
	var sb strings.Builder
	sb.WriteString("Current Market Data:\n")
	sb.WriteString(marketData)
	sb.WriteString("\nAccount State:\n")
	sb.WriteString(accountState)
	sb.WriteString("\nBased on the above, what is your trading decision? Respond with valid JSON only.")
	return sb.String()
}

// FormatAccountState renders cash and open positions for a prompt.
// Tickers are sorted so identical accounts produce identical prompts.
func FormatAccountState(cash float64, positions map[string]int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Cash: $%.2f\n", cash)

	if len(positions) == 0 {
		sb.WriteString("Positions: none\n")
		return sb.String()
	}

	tickers := make([]string, 0, len(positions))
	for t := range positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	sb.WriteString("Positions:\n")
	for _, t := range tickers {
		fmt.Fprintf(&sb, "- %s: %d shares\n", t, positions[t])
	}
	return sb.String()
}

package ai

const (
	ActionBuy  = "buy"
	ActionSell = "sell"
	ActionHold = "hold"
)

// Decision is the parsed output of one model call. It is consumed
// immediately by the execution engine and never stored as-is.
type Decision struct {
	Action      string  `json:"action"`
	Ticker      string  `json:"ticker,omitempty"`
	Quantity    int     `json:"quantity,omitempty"`
	Confidence  float64 `json:"confidence"`
	Reasoning   string  `json:"reasoning"`
	RawResponse string  `json:"-"`
}

// DecisionRequest carries everything needed to ask one agent for a decision.
type DecisionRequest struct {
	AgentID      uint
	ModelName    string
	SystemPrompt string
	MarketData   string
	AccountState string
}

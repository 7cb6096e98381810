package engine

import "time"

// Account is the mutable paper-trading state for one (agent, league) pair.
// Positions never contain zero or negative quantities.
type Account struct {
	AgentID         uint
	LeagueID        uint
	StartingCapital float64
	CurrentCash     float64
	Positions       map[string]int
}

// Clone returns a deep copy, used to validate without touching the
// original until the whole decision is accepted.
func (a *Account) Clone() *Account {
	positions := make(map[string]int, len(a.Positions))
	for t, q := range a.Positions {
		positions[t] = q
	}
	return &Account{
		AgentID:         a.AgentID,
		LeagueID:        a.LeagueID,
		StartingCapital: a.StartingCapital,
		CurrentCash:     a.CurrentCash,
		Positions:       positions,
	}
}

// Trade is one append-only ledger entry. Trades are created only by the
// execution engine and never mutated afterwards; the scoring engine
// reconstructs all P&L from them.
type Trade struct {
	ID         uint
	AgentID    uint
	LeagueID   uint
	Timestamp  time.Time
	Action     string
	Ticker     string
	Quantity   int
	EntryPrice float64
	Reasoning  string
	Executed   bool
}

// Ledger is the persistence boundary for trades and account state.
type Ledger interface {
	RecordTrade(trade *Trade) error
	LoadAccount(agentID, leagueID uint) (*Account, error)
	SaveAccount(account *Account) error
}

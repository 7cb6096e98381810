// Package engine executes parsed trading decisions against simulated
// brokerage accounts under fixed risk constraints.
package engine

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/quantarena/agent-league/internal/ai"
	"github.com/quantarena/agent-league/internal/logger"
)

const (
	DefaultMaxPositions   = 5
	DefaultMaxPositionPct = 0.30
)

// Result is the terminal outcome of one decision. A hold is accepted with
// no trade; a rejection carries a human-readable reason and leaves the
// account untouched.
type Result struct {
	Accepted bool
	Trade    *Trade
	Reason   string
}

// Engine validates and applies decisions. Each (agent, league) account is
// single-writer: the read-validate-mutate sequence runs under a per-account
// mutex so two concurrent trades can never both pass a cash or position
// check against the same stale snapshot.
type Engine struct {
	ledger         Ledger
	maxPositions   int
	maxPositionPct float64
	logger         *logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(ledger Ledger, maxPositions int, maxPositionPct float64, log *logger.Logger) *Engine {
	if maxPositions <= 0 {
		maxPositions = DefaultMaxPositions
	}
	if maxPositionPct <= 0 {
		maxPositionPct = DefaultMaxPositionPct
	}
	return &Engine{
		ledger:         ledger,
		maxPositions:   maxPositions,
		maxPositionPct: maxPositionPct,
		logger:         log,
		locks:          make(map[string]*sync.Mutex),
	}
}

// Execute applies one decision at the given price. Rejections are reported
// in the Result; the error return is reserved for ledger failures.
func (e *Engine) Execute(decision ai.Decision, agentID, leagueID uint, price float64) (*Result, error) {
	lock := e.accountLock(agentID, leagueID)
	lock.Lock()
	defer lock.Unlock()

	account, err := e.ledger.LoadAccount(agentID, leagueID)
	if err != nil {
		return nil, fmt.Errorf("load account %d/%d: %w", agentID, leagueID, err)
	}

	switch decision.Action {
	case ai.ActionHold:
		return &Result{Accepted: true}, nil
	case ai.ActionBuy, ai.ActionSell:
	default:
		return &Result{Reason: fmt.Sprintf("invalid action: %s", decision.Action)}, nil
	}

	ticker := strings.ToUpper(strings.TrimSpace(decision.Ticker))
	if ticker == "" {
		return &Result{Reason: "no ticker provided"}, nil
	}

	quantity := decision.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return &Result{Reason: "quantity must be positive"}, nil
	}
	if price <= 0 {
		return &Result{Reason: fmt.Sprintf("no price available for %s", ticker)}, nil
	}

	// Validate against a copy; the stored account mutates only on success.
	next := account.Clone()
	var reason string
	if decision.Action == ai.ActionBuy {
		reason = e.applyBuy(next, ticker, quantity, price)
	} else {
		reason = e.applySell(next, ticker, quantity, price)
	}
	if reason != "" {
		return &Result{Reason: reason}, nil
	}

	trade := &Trade{
		AgentID:    agentID,
		LeagueID:   leagueID,
		Timestamp:  time.Now().UTC(),
		Action:     decision.Action,
		Ticker:     ticker,
		Quantity:   quantity,
		EntryPrice: price,
		Reasoning:  decision.Reasoning,
		Executed:   true,
	}
	if err := e.ledger.RecordTrade(trade); err != nil {
		return nil, fmt.Errorf("record trade: %w", err)
	}
	if err := e.ledger.SaveAccount(next); err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}

	e.logger.Info("trade executed",
		"agent_id", agentID, "league_id", leagueID,
		"action", decision.Action, "ticker", ticker,
		"quantity", quantity, "price", price, "cash", next.CurrentCash)

	return &Result{Accepted: true, Trade: trade}, nil
}

func (e *Engine) applyBuy(account *Account, ticker string, quantity int, price float64) string {
	orderValue := price * float64(quantity)
	if orderValue > account.CurrentCash {
		return fmt.Sprintf("insufficient cash: need %.2f, have %.2f", orderValue, account.CurrentCash)
	}

	resultingValue := float64(account.Positions[ticker]+quantity) * price
	maxValue := account.StartingCapital * e.maxPositionPct
	if resultingValue > maxValue {
		return fmt.Sprintf("position too large: %.2f exceeds limit %.2f", resultingValue, maxValue)
	}

	if _, held := account.Positions[ticker]; !held && len(account.Positions) >= e.maxPositions {
		return fmt.Sprintf("max %d positions reached", e.maxPositions)
	}

	account.CurrentCash -= orderValue
	account.Positions[ticker] += quantity
	return ""
}

func (e *Engine) applySell(account *Account, ticker string, quantity int, price float64) string {
	held := account.Positions[ticker]
	if held < quantity {
		return fmt.Sprintf("insufficient position: hold %d %s, tried to sell %d", held, ticker, quantity)
	}

	account.CurrentCash += price * float64(quantity)
	if held == quantity {
		delete(account.Positions, ticker)
	} else {
		account.Positions[ticker] = held - quantity
	}
	return ""
}

func (e *Engine) accountLock(agentID, leagueID uint) *sync.Mutex {
	key := fmt.Sprintf("%d/%d", agentID, leagueID)

	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[key] = lock
	}
	return lock
}

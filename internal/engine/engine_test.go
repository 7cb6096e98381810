package engine

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantarena/agent-league/internal/ai"
	"github.com/quantarena/agent-league/internal/logger"
)

type memLedger struct {
	mu       sync.Mutex
	accounts map[string]*Account
	trades   []Trade
	nextID   uint
}

func newMemLedger() *memLedger {
	return &memLedger{accounts: make(map[string]*Account), nextID: 1}
}

func (m *memLedger) key(agentID, leagueID uint) string {
	return fmt.Sprintf("%d/%d", agentID, leagueID)
}

func (m *memLedger) RecordTrade(trade *Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	trade.ID = m.nextID
	m.nextID++
	m.trades = append(m.trades, *trade)
	return nil
}

func (m *memLedger) LoadAccount(agentID, leagueID uint) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[m.key(agentID, leagueID)]
	if !ok {
		return nil, fmt.Errorf("account %d/%d not found", agentID, leagueID)
	}
	return a.Clone(), nil
}

func (m *memLedger) SaveAccount(account *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[m.key(account.AgentID, account.LeagueID)] = account.Clone()
	return nil
}

func (m *memLedger) account(agentID, leagueID uint) *Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[m.key(agentID, leagueID)].Clone()
}

func (m *memLedger) tradeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.trades)
}

func seed(l *memLedger, cash float64, positions map[string]int) {
	if positions == nil {
		positions = map[string]int{}
	}
	l.accounts[l.key(1, 1)] = &Account{
		AgentID: 1, LeagueID: 1,
		StartingCapital: 10000, CurrentCash: cash, Positions: positions,
	}
}

func newTestEngine(l Ledger) *Engine {
	return New(l, DefaultMaxPositions, DefaultMaxPositionPct, logger.New("error"))
}

func TestExecuteHold(t *testing.T) {
	l := newMemLedger()
	seed(l, 10000, nil)
	e := newTestEngine(l)

	res, err := e.Execute(ai.Decision{Action: ai.ActionHold}, 1, 1, 150)
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Nil(t, res.Trade)
	assert.Zero(t, l.tradeCount())
}

func TestExecuteBuy(t *testing.T) {
	t.Run("accepted buy moves cash into the position", func(t *testing.T) {
		l := newMemLedger()
		seed(l, 10000, nil)
		e := newTestEngine(l)

		res, err := e.Execute(ai.Decision{
			Action: ai.ActionBuy, Ticker: "AAPL", Quantity: 10, Reasoning: "breakout",
		}, 1, 1, 150)
		require.NoError(t, err)
		require.True(t, res.Accepted)
		require.NotNil(t, res.Trade)
		assert.Equal(t, "AAPL", res.Trade.Ticker)
		assert.Equal(t, 150.0, res.Trade.EntryPrice)
		assert.True(t, res.Trade.Executed)

		acct := l.account(1, 1)
		assert.Equal(t, 8500.0, acct.CurrentCash)
		assert.Equal(t, map[string]int{"AAPL": 10}, acct.Positions)
	})

	t.Run("missing ticker is rejected", func(t *testing.T) {
		l := newMemLedger()
		seed(l, 10000, nil)
		e := newTestEngine(l)

		res, err := e.Execute(ai.Decision{Action: ai.ActionBuy}, 1, 1, 150)
		require.NoError(t, err)
		assert.False(t, res.Accepted)
		assert.Equal(t, "no ticker provided", res.Reason)
	})

	t.Run("quantity defaults to one", func(t *testing.T) {
		l := newMemLedger()
		seed(l, 10000, nil)
		e := newTestEngine(l)

		res, err := e.Execute(ai.Decision{Action: ai.ActionBuy, Ticker: "V"}, 1, 1, 200)
		require.NoError(t, err)
		require.True(t, res.Accepted)
		assert.Equal(t, 1, res.Trade.Quantity)
		assert.Equal(t, 9800.0, l.account(1, 1).CurrentCash)
	})

	t.Run("negative quantity is rejected", func(t *testing.T) {
		l := newMemLedger()
		seed(l, 10000, nil)
		e := newTestEngine(l)

		res, err := e.Execute(ai.Decision{Action: ai.ActionBuy, Ticker: "V", Quantity: -3}, 1, 1, 200)
		require.NoError(t, err)
		assert.False(t, res.Accepted)
		assert.Contains(t, res.Reason, "quantity must be positive")
	})

	t.Run("insufficient cash leaves the account untouched", func(t *testing.T) {
		l := newMemLedger()
		seed(l, 1000, map[string]int{"MSFT": 2})
		e := newTestEngine(l)
		before := l.account(1, 1)

		res, err := e.Execute(ai.Decision{
			Action: ai.ActionBuy, Ticker: "AAPL", Quantity: 10,
		}, 1, 1, 150)
		require.NoError(t, err)
		assert.False(t, res.Accepted)
		assert.Contains(t, res.Reason, "insufficient cash")
		assert.Equal(t, before, l.account(1, 1))
		assert.Zero(t, l.tradeCount())
	})

	t.Run("position above 30 percent of starting capital is rejected", func(t *testing.T) {
		l := newMemLedger()
		seed(l, 10000, nil)
		e := newTestEngine(l)

		res, err := e.Execute(ai.Decision{
			Action: ai.ActionBuy, Ticker: "AAPL", Quantity: 21,
		}, 1, 1, 150) // 3150 > 3000
		require.NoError(t, err)
		assert.False(t, res.Accepted)
		assert.Contains(t, res.Reason, "position too large")
	})

	t.Run("topping up an existing position counts the whole position", func(t *testing.T) {
		l := newMemLedger()
		seed(l, 7000, map[string]int{"AAPL": 15})
		e := newTestEngine(l)

		res, err := e.Execute(ai.Decision{
			Action: ai.ActionBuy, Ticker: "AAPL", Quantity: 10,
		}, 1, 1, 150) // 25 * 150 = 3750 > 3000
		require.NoError(t, err)
		assert.False(t, res.Accepted)
		assert.Contains(t, res.Reason, "position too large")
	})

	t.Run("sixth distinct ticker is rejected", func(t *testing.T) {
		l := newMemLedger()
		seed(l, 5000, map[string]int{"AAPL": 1, "MSFT": 1, "GOOGL": 1, "AMZN": 1, "NVDA": 1})
		e := newTestEngine(l)
		before := l.account(1, 1)

		res, err := e.Execute(ai.Decision{
			Action: ai.ActionBuy, Ticker: "TSLA", Quantity: 1,
		}, 1, 1, 100)
		require.NoError(t, err)
		assert.False(t, res.Accepted)
		assert.Contains(t, res.Reason, "max 5 positions reached")
		assert.Equal(t, before, l.account(1, 1))
	})

	t.Run("adding to a held ticker is allowed at the position cap", func(t *testing.T) {
		l := newMemLedger()
		seed(l, 5000, map[string]int{"AAPL": 1, "MSFT": 1, "GOOGL": 1, "AMZN": 1, "NVDA": 1})
		e := newTestEngine(l)

		res, err := e.Execute(ai.Decision{
			Action: ai.ActionBuy, Ticker: "NVDA", Quantity: 1,
		}, 1, 1, 100)
		require.NoError(t, err)
		assert.True(t, res.Accepted)
	})
}

func TestExecuteSell(t *testing.T) {
	t.Run("accepted sell returns cash and shrinks the position", func(t *testing.T) {
		l := newMemLedger()
		seed(l, 8500, map[string]int{"AAPL": 10})
		e := newTestEngine(l)

		res, err := e.Execute(ai.Decision{
			Action: ai.ActionSell, Ticker: "AAPL", Quantity: 5,
		}, 1, 1, 160)
		require.NoError(t, err)
		require.True(t, res.Accepted)

		acct := l.account(1, 1)
		assert.Equal(t, 9300.0, acct.CurrentCash)
		assert.Equal(t, map[string]int{"AAPL": 5}, acct.Positions)
	})

	t.Run("selling out removes the position entry", func(t *testing.T) {
		l := newMemLedger()
		seed(l, 8500, map[string]int{"AAPL": 10})
		e := newTestEngine(l)

		res, err := e.Execute(ai.Decision{
			Action: ai.ActionSell, Ticker: "AAPL", Quantity: 10,
		}, 1, 1, 150)
		require.NoError(t, err)
		require.True(t, res.Accepted)
		assert.Empty(t, l.account(1, 1).Positions)
	})

	t.Run("selling more than held is rejected", func(t *testing.T) {
		l := newMemLedger()
		seed(l, 8500, map[string]int{"AAPL": 3})
		e := newTestEngine(l)
		before := l.account(1, 1)

		res, err := e.Execute(ai.Decision{
			Action: ai.ActionSell, Ticker: "AAPL", Quantity: 5,
		}, 1, 1, 160)
		require.NoError(t, err)
		assert.False(t, res.Accepted)
		assert.Contains(t, res.Reason, "insufficient position")
		assert.Equal(t, before, l.account(1, 1))
	})

	t.Run("selling an unheld ticker is rejected", func(t *testing.T) {
		l := newMemLedger()
		seed(l, 10000, nil)
		e := newTestEngine(l)

		res, err := e.Execute(ai.Decision{
			Action: ai.ActionSell, Ticker: "TSLA", Quantity: 1,
		}, 1, 1, 250)
		require.NoError(t, err)
		assert.False(t, res.Accepted)
		assert.Contains(t, res.Reason, "insufficient position")
	})
}

func TestExecuteInvalidAction(t *testing.T) {
	l := newMemLedger()
	seed(l, 10000, nil)
	e := newTestEngine(l)

	res, err := e.Execute(ai.Decision{Action: "short", Ticker: "AAPL"}, 1, 1, 150)
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Contains(t, res.Reason, "invalid action")
}

func TestBuyThenSellRoundTrip(t *testing.T) {
	l := newMemLedger()
	seed(l, 10000, nil)
	e := newTestEngine(l)

	_, err := e.Execute(ai.Decision{Action: ai.ActionBuy, Ticker: "AAPL", Quantity: 10}, 1, 1, 150)
	require.NoError(t, err)
	_, err = e.Execute(ai.Decision{Action: ai.ActionSell, Ticker: "AAPL", Quantity: 10}, 1, 1, 150)
	require.NoError(t, err)

	acct := l.account(1, 1)
	assert.Equal(t, 10000.0, acct.CurrentCash, "same-price round trip restores cash")
	assert.Empty(t, acct.Positions)
	assert.Equal(t, 2, l.tradeCount())
}

func TestConcurrentBuysCannotOverdraw(t *testing.T) {
	l := newMemLedger()
	seed(l, 1000, nil)
	e := newTestEngine(l)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.Execute(ai.Decision{Action: ai.ActionBuy, Ticker: "AAPL", Quantity: 2}, 1, 1, 300)
		}()
	}
	wg.Wait()

	acct := l.account(1, 1)
	assert.GreaterOrEqual(t, acct.CurrentCash, 0.0, "cash never goes negative")
	assert.Equal(t, 1000.0-float64(acct.Positions["AAPL"])*300, acct.CurrentCash)
}

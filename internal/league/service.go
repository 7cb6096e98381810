// Package league runs the decision cycle that ties the market cache, the
// decision orchestrator, the execution engine and the scoring engine
// together for every agent enrolled in a league.
package league

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/quantarena/agent-league/internal/ai"
	"github.com/quantarena/agent-league/internal/engine"
	"github.com/quantarena/agent-league/internal/logger"
	"github.com/quantarena/agent-league/internal/market"
	"github.com/quantarena/agent-league/internal/scoring"
	"github.com/quantarena/agent-league/internal/storage"
)

// Notifier receives trade and cycle events. The telegram notifier
// satisfies it; a nil-safe no-op is used when notifications are off.
type Notifier interface {
	NotifyTrade(agentName string, trade *engine.Trade)
	NotifyCycle(leagueName string, executed, rejected, holds int)
	NotifyError(context string, err error)
}

// CycleSummary is the outcome of one full decision cycle.
type CycleSummary struct {
	LeagueID uint `json:"league_id"`
	Agents   int  `json:"agents"`
	Executed int  `json:"executed"`
	Rejected int  `json:"rejected"`
	Holds    int  `json:"holds"`
	Errors   int  `json:"errors"`
}

type Service struct {
	repo     *storage.Repository
	cache    *market.Cache
	orch     *ai.Orchestrator
	engine   *engine.Engine
	universe []string
	notifier Notifier
	logger   *logger.Logger
}

func NewService(repo *storage.Repository, cache *market.Cache, orch *ai.Orchestrator,
	eng *engine.Engine, universe []string, notifier Notifier, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		orch:     orch,
		engine:   eng,
		universe: universe,
		notifier: notifier,
		logger:   log,
	}
}

// RunCycle fetches one shared market snapshot, fans the decision out to
// every agent in the league in parallel and executes the results. A
// single agent's provider failure or rejected trade never aborts the
// cycle.
func (s *Service) RunCycle(ctx context.Context, leagueID uint) (*CycleSummary, error) {
	league, err := s.repo.GetLeague(leagueID)
	if err != nil {
		return nil, fmt.Errorf("get league %d: %w", leagueID, err)
	}
	if league.Status != storage.LeagueStatusActive {
		return nil, fmt.Errorf("league %d is %s", leagueID, league.Status)
	}

	agents, err := s.repo.ListAgents()
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}

	snaps := s.cache.GetMany(ctx, s.universe)
	marketData := market.FormatSnapshots(snaps, s.universe)

	reqs := make([]ai.DecisionRequest, 0, len(agents))
	accounts := make(map[uint]*engine.Account, len(agents))
	for _, a := range agents {
		account, err := s.repo.LoadAccount(a.ID, leagueID)
		if err != nil {
			s.logger.Error("load account", "agent_id", a.ID, "league_id", leagueID, "error", err)
			continue
		}
		accounts[a.ID] = account
		reqs = append(reqs, ai.DecisionRequest{
			AgentID:      a.ID,
			ModelName:    a.ModelName,
			SystemPrompt: a.SystemPrompt,
			MarketData:   marketData,
			AccountState: ai.FormatAccountState(account.CurrentCash, account.Positions),
		})
	}

	decisions := s.orch.DecideBatch(ctx, reqs)

	summary := &CycleSummary{LeagueID: leagueID, Agents: len(reqs)}
	for _, a := range agents {
		if _, ok := accounts[a.ID]; !ok {
			continue
		}
		decision, ok := decisions[a.ID]
		if !ok {
			continue
		}
		s.applyDecision(ctx, a, league, decision, summary)
	}

	if s.notifier != nil {
		s.notifier.NotifyCycle(league.Name, summary.Executed, summary.Rejected, summary.Holds)
	}
	s.logger.Info("cycle complete",
		"league_id", leagueID, "agents", summary.Agents,
		"executed", summary.Executed, "rejected", summary.Rejected,
		"holds", summary.Holds, "errors", summary.Errors)
	return summary, nil
}

// RunAgentCycle runs the decision cycle for a single agent. Returns the
// executed trade, or nil for a hold or rejection.
func (s *Service) RunAgentCycle(ctx context.Context, agentID, leagueID uint) (*engine.Trade, error) {
	league, err := s.repo.GetLeague(leagueID)
	if err != nil {
		return nil, fmt.Errorf("get league %d: %w", leagueID, err)
	}
	if league.Status != storage.LeagueStatusActive {
		return nil, fmt.Errorf("league %d is %s", leagueID, league.Status)
	}
	a, err := s.repo.GetAgent(agentID)
	if err != nil {
		return nil, fmt.Errorf("get agent %d: %w", agentID, err)
	}
	account, err := s.repo.LoadAccount(agentID, leagueID)
	if err != nil {
		return nil, fmt.Errorf("load account %d/%d: %w", agentID, leagueID, err)
	}

	snaps := s.cache.GetMany(ctx, s.universe)
	decision, err := s.orch.Decide(ctx, ai.DecisionRequest{
		AgentID:      agentID,
		ModelName:    a.ModelName,
		SystemPrompt: a.SystemPrompt,
		MarketData:   market.FormatSnapshots(snaps, s.universe),
		AccountState: ai.FormatAccountState(account.CurrentCash, account.Positions),
	})
	if err != nil {
		return nil, err
	}

	summary := &CycleSummary{LeagueID: leagueID}
	s.applyDecision(ctx, *a, league, decision, summary)
	if summary.Executed == 0 {
		return nil, nil
	}
	trades, err := s.repo.TradesForAgent(agentID, leagueID)
	if err != nil || len(trades) == 0 {
		return nil, err
	}
	return &trades[len(trades)-1], nil
}

func (s *Service) applyDecision(ctx context.Context, a storage.Agent, league *storage.League,
	decision ai.Decision, summary *CycleSummary) {

	price := s.decisionPrice(ctx, decision)
	result, err := s.engine.Execute(decision, a.ID, league.ID, price)

	log := &storage.CycleLog{
		LeagueID:    league.ID,
		AgentID:     a.ID,
		ModelName:   a.ModelName,
		RawResponse: decision.RawResponse,
	}
	if decisionJSON, jerr := json.Marshal(decision); jerr == nil {
		log.DecisionJSON = string(decisionJSON)
	}

	switch {
	case err != nil:
		summary.Errors++
		log.Error = err.Error()
		s.logger.Error("execute decision", "agent_id", a.ID, "error", err)
		if s.notifier != nil {
			s.notifier.NotifyError("execute", err)
		}
	case result.Trade != nil:
		summary.Executed++
		if s.notifier != nil {
			s.notifier.NotifyTrade(agentName(a), result.Trade)
		}
	case result.Accepted:
		summary.Holds++
	default:
		summary.Rejected++
		log.Error = result.Reason
		s.logger.Info("decision rejected",
			"agent_id", a.ID, "action", decision.Action,
			"ticker", decision.Ticker, "reason", result.Reason)
	}

	if err := s.repo.SaveCycleLog(log); err != nil {
		s.logger.Error("save cycle log", "agent_id", a.ID, "error", err)
	}
}

// decisionPrice resolves the execution price for a buy/sell decision.
// Returns 0 when no price is available; the engine rejects on that.
func (s *Service) decisionPrice(ctx context.Context, decision ai.Decision) float64 {
	if decision.Action == ai.ActionHold || decision.Ticker == "" {
		return 0
	}
	price, err := s.cache.Price(ctx, decision.Ticker)
	if err != nil {
		s.logger.Error("price lookup", "ticker", decision.Ticker, "error", err)
		return 0
	}
	return price
}

// Standings replays every agent's ledger at current prices and returns
// ranked score entries.
func (s *Service) Standings(ctx context.Context, leagueID uint) ([]scoring.ScoreEntry, error) {
	league, err := s.repo.GetLeague(leagueID)
	if err != nil {
		return nil, fmt.Errorf("get league %d: %w", leagueID, err)
	}
	accounts, err := s.repo.AccountsForLeague(leagueID)
	if err != nil {
		return nil, fmt.Errorf("accounts for league %d: %w", leagueID, err)
	}
	agents, err := s.repo.ListAgents()
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	byID := make(map[uint]storage.Agent, len(agents))
	for _, a := range agents {
		byID[a.ID] = a
	}

	prices := s.openPositionPrices(ctx, accounts)

	entries := make([]scoring.ScoreEntry, 0, len(accounts))
	for _, account := range accounts {
		a, ok := byID[account.AgentID]
		if !ok {
			continue
		}
		trades, err := s.repo.TradesForAgent(account.AgentID, leagueID)
		if err != nil {
			return nil, fmt.Errorf("trades for agent %d: %w", account.AgentID, err)
		}
		report := scoring.Replay(trades, prices)
		entries = append(entries, scoring.Score(
			a.ID, a.ModelName, a.StyleName,
			league.StartingCapital, account.CurrentCash, report))
	}
	return scoring.Rank(entries), nil
}

// AgentPnL replays one agent's ledger at current prices.
func (s *Service) AgentPnL(ctx context.Context, agentID, leagueID uint) (scoring.Report, error) {
	trades, err := s.repo.TradesForAgent(agentID, leagueID)
	if err != nil {
		return scoring.Report{}, fmt.Errorf("trades for agent %d: %w", agentID, err)
	}
	account, err := s.repo.LoadAccount(agentID, leagueID)
	if err != nil {
		return scoring.Report{}, fmt.Errorf("load account %d/%d: %w", agentID, leagueID, err)
	}

	tickers := make([]string, 0, len(account.Positions))
	for t := range account.Positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	prices := make(map[string]float64, len(tickers))
	for _, snap := range s.cache.GetMany(ctx, tickers) {
		if snap != nil {
			prices[snap.Ticker] = snap.Price
		}
	}
	return scoring.Replay(trades, prices), nil
}

// SnapshotStandings archives the current standings for later review.
func (s *Service) SnapshotStandings(ctx context.Context, leagueID uint) error {
	entries, err := s.Standings(ctx, leagueID)
	if err != nil {
		return err
	}
	standingsJSON, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode standings: %w", err)
	}
	return s.repo.SaveStandingsSnapshot(&storage.StandingsSnapshot{
		LeagueID:      leagueID,
		StandingsJSON: string(standingsJSON),
	})
}

// openPositionPrices fetches a price for every ticker held by any
// account in the league.
func (s *Service) openPositionPrices(ctx context.Context, accounts []storage.Account) map[string]float64 {
	seen := make(map[string]bool)
	var tickers []string
	for _, account := range accounts {
		positions := make(map[string]int)
		if err := json.Unmarshal([]byte(account.PositionsJSON), &positions); err != nil {
			continue
		}
		for t := range positions {
			if !seen[t] {
				seen[t] = true
				tickers = append(tickers, t)
			}
		}
	}
	sort.Strings(tickers)

	prices := make(map[string]float64, len(tickers))
	for _, snap := range s.cache.GetMany(ctx, tickers) {
		if snap != nil {
			prices[snap.Ticker] = snap.Price
		}
	}
	return prices
}

func agentName(a storage.Agent) string {
	return fmt.Sprintf("%s (%s)", a.ModelName, a.StyleName)
}

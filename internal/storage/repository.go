package storage

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/quantarena/agent-league/internal/agent"
	"github.com/quantarena/agent-league/internal/engine"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Agents

// SyncAgentCatalog inserts any catalog entries missing from the agents
// table and returns the full persisted catalog. Existing rows keep their
// IDs, so agent identity is stable across restarts.
func (r *Repository) SyncAgentCatalog(catalog []agent.Agent) ([]Agent, error) {
	for _, a := range catalog {
		var existing Agent
		err := r.db.Where("model_name = ? AND style_name = ?", a.ModelName, a.StyleName).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("lookup agent %s/%s: %w", a.ModelName, a.StyleName, err)
		}
		row := Agent{
			ModelName:    a.ModelName,
			StyleName:    a.StyleName,
			SystemPrompt: a.SystemPrompt,
			CostTier:     a.CostTier,
			Description:  a.Description,
		}
		if err := r.db.Create(&row).Error; err != nil {
			return nil, fmt.Errorf("create agent %s/%s: %w", a.ModelName, a.StyleName, err)
		}
	}
	return r.ListAgents()
}

func (r *Repository) ListAgents() ([]Agent, error) {
	var agents []Agent
	err := r.db.Order("id").Find(&agents).Error
	return agents, err
}

func (r *Repository) GetAgent(id uint) (*Agent, error) {
	var a Agent
	if err := r.db.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// Leagues

// CreateLeague creates a league and one fresh account per agent at the
// league's starting capital, all in one transaction.
func (r *Repository) CreateLeague(name string, startingCapital float64, agents []Agent) (*League, error) {
	league := &League{Name: name, Status: LeagueStatusActive, StartingCapital: startingCapital}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(league).Error; err != nil {
			return err
		}
		for _, a := range agents {
			account := Account{
				AgentID:         a.ID,
				LeagueID:        league.ID,
				StartingCapital: startingCapital,
				CurrentCash:     startingCapital,
				PositionsJSON:   "{}",
			}
			if err := tx.Create(&account).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create league %q: %w", name, err)
	}
	return league, nil
}

func (r *Repository) GetLeague(id uint) (*League, error) {
	var league League
	if err := r.db.First(&league, id).Error; err != nil {
		return nil, err
	}
	return &league, nil
}

func (r *Repository) ListActiveLeagues() ([]League, error) {
	var leagues []League
	err := r.db.Where("status = ?", LeagueStatusActive).Order("id").Find(&leagues).Error
	return leagues, err
}

func (r *Repository) CloseLeague(id uint) error {
	return r.db.Model(&League{}).Where("id = ?", id).Update("status", LeagueStatusClosed).Error
}

// Accounts and trades (engine.Ledger)

func (r *Repository) RecordTrade(trade *engine.Trade) error {
	row := Trade{
		AgentID:    trade.AgentID,
		LeagueID:   trade.LeagueID,
		Timestamp:  trade.Timestamp,
		Action:     trade.Action,
		Ticker:     trade.Ticker,
		Quantity:   trade.Quantity,
		EntryPrice: trade.EntryPrice,
		Reasoning:  trade.Reasoning,
		Executed:   trade.Executed,
	}
	if err := r.db.Create(&row).Error; err != nil {
		return err
	}
	trade.ID = row.ID
	return nil
}

func (r *Repository) LoadAccount(agentID, leagueID uint) (*engine.Account, error) {
	var row Account
	err := r.db.Where("agent_id = ? AND league_id = ?", agentID, leagueID).First(&row).Error
	if err != nil {
		return nil, err
	}
	positions := make(map[string]int)
	if row.PositionsJSON != "" {
		if err := json.Unmarshal([]byte(row.PositionsJSON), &positions); err != nil {
			return nil, fmt.Errorf("decode positions for account %d/%d: %w", agentID, leagueID, err)
		}
	}
	return &engine.Account{
		AgentID:         row.AgentID,
		LeagueID:        row.LeagueID,
		StartingCapital: row.StartingCapital,
		CurrentCash:     row.CurrentCash,
		Positions:       positions,
	}, nil
}

func (r *Repository) SaveAccount(account *engine.Account) error {
	positions, err := json.Marshal(account.Positions)
	if err != nil {
		return fmt.Errorf("encode positions: %w", err)
	}
	return r.db.Model(&Account{}).
		Where("agent_id = ? AND league_id = ?", account.AgentID, account.LeagueID).
		Updates(map[string]interface{}{
			"current_cash":   account.CurrentCash,
			"positions_json": string(positions),
		}).Error
}

func (r *Repository) AccountsForLeague(leagueID uint) ([]Account, error) {
	var accounts []Account
	err := r.db.Where("league_id = ?", leagueID).Order("agent_id").Find(&accounts).Error
	return accounts, err
}

func (r *Repository) TradesForAgent(agentID, leagueID uint) ([]engine.Trade, error) {
	var rows []Trade
	err := r.db.Where("agent_id = ? AND league_id = ?", agentID, leagueID).
		Order("timestamp, id").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toEngineTrades(rows), nil
}

func (r *Repository) TradesForLeague(leagueID uint) ([]engine.Trade, error) {
	var rows []Trade
	err := r.db.Where("league_id = ?", leagueID).Order("timestamp, id").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toEngineTrades(rows), nil
}

func toEngineTrades(rows []Trade) []engine.Trade {
	trades := make([]engine.Trade, 0, len(rows))
	for _, row := range rows {
		trades = append(trades, engine.Trade{
			ID:         row.ID,
			AgentID:    row.AgentID,
			LeagueID:   row.LeagueID,
			Timestamp:  row.Timestamp,
			Action:     row.Action,
			Ticker:     row.Ticker,
			Quantity:   row.Quantity,
			EntryPrice: row.EntryPrice,
			Reasoning:  row.Reasoning,
			Executed:   row.Executed,
		})
	}
	return trades
}

// ResetLeagueAccounts restores every account in the league to its
// starting capital with no open positions. Returns the number of
// accounts reset. Trades are kept as history.
func (r *Repository) ResetLeagueAccounts(leagueID uint) (int, error) {
	var count int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Account{}).
			Where("league_id = ?", leagueID).
			Updates(map[string]interface{}{
				"current_cash":   gorm.Expr("starting_capital"),
				"positions_json": "{}",
			})
		if res.Error != nil {
			return res.Error
		}
		count = res.RowsAffected
		return nil
	})
	return int(count), err
}

// Cycle logs and standings snapshots

func (r *Repository) SaveCycleLog(log *CycleLog) error {
	return r.db.Create(log).Error
}

func (r *Repository) SaveStandingsSnapshot(snapshot *StandingsSnapshot) error {
	return r.db.Create(snapshot).Error
}

func (r *Repository) LatestStandingsSnapshot(leagueID uint) (*StandingsSnapshot, error) {
	var snapshot StandingsSnapshot
	err := r.db.Where("league_id = ?", leagueID).Order("created_at DESC, id DESC").First(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

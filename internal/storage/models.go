package storage

import "time"

const (
	LeagueStatusActive = "active"
	LeagueStatusClosed = "closed"
)

type Agent struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ModelName    string `gorm:"uniqueIndex:idx_model_style;not null" json:"model_name"`
	StyleName    string `gorm:"uniqueIndex:idx_model_style;not null" json:"style_name"`
	SystemPrompt string `gorm:"type:text" json:"-"`
	CostTier     string `json:"cost_tier"`
	Description  string `json:"description"`
}

type League struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name            string  `gorm:"not null" json:"name"`
	Status          string  `gorm:"not null;default:'active'" json:"status"` // active, closed
	StartingCapital float64 `gorm:"not null" json:"starting_capital"`
}

type Account struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	AgentID         uint    `gorm:"uniqueIndex:idx_agent_league;not null" json:"agent_id"`
	LeagueID        uint    `gorm:"uniqueIndex:idx_agent_league;not null" json:"league_id"`
	StartingCapital float64 `gorm:"not null" json:"starting_capital"`
	CurrentCash     float64 `gorm:"not null" json:"current_cash"`
	PositionsJSON   string  `gorm:"type:text;not null;default:'{}'" json:"positions_json"`
}

type Trade struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	AgentID    uint      `gorm:"index;not null" json:"agent_id"`
	LeagueID   uint      `gorm:"index;not null" json:"league_id"`
	Timestamp  time.Time `gorm:"index;not null" json:"timestamp"`
	Action     string    `gorm:"not null" json:"action"` // buy, sell
	Ticker     string    `gorm:"index;not null" json:"ticker"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	EntryPrice float64   `gorm:"not null" json:"entry_price"`
	Reasoning  string    `gorm:"type:text" json:"reasoning"`
	Executed   bool      `gorm:"not null" json:"executed"`
}

type CycleLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	LeagueID     uint   `gorm:"index" json:"league_id"`
	AgentID      uint   `gorm:"index" json:"agent_id"`
	ModelName    string `json:"model_name"`
	RawResponse  string `gorm:"type:text" json:"raw_response"`
	DecisionJSON string `gorm:"type:text" json:"decision_json"`
	Error        string `json:"error"`
}

type StandingsSnapshot struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	LeagueID      uint   `gorm:"index;not null" json:"league_id"`
	StandingsJSON string `gorm:"type:text" json:"standings_json"`
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Providers ProvidersConfig `yaml:"providers"`
	Agents    AgentsConfig    `yaml:"agents"`
	Trading   TradingConfig   `yaml:"trading"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Web       WebConfig       `yaml:"web"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ProvidersConfig struct {
	OpenAI         ProviderConfig `yaml:"openai"`
	Anthropic      ProviderConfig `yaml:"anthropic"`
	DeepSeek       ProviderConfig `yaml:"deepseek"`
	TimeoutSeconds int            `yaml:"timeout_seconds"`
}

type ProviderConfig struct {
	APIKey string `yaml:"api_key"`
}

type AgentsConfig struct {
	Models []ModelConfig `yaml:"models"`
}

type ModelConfig struct {
	Name     string `yaml:"name"`
	CostTier string `yaml:"cost_tier"`
}

type TradingConfig struct {
	Interval         string   `yaml:"interval"`
	StartingCapital  float64  `yaml:"starting_capital"`
	MaxPositions     int      `yaml:"max_positions"`
	MaxPositionPct   float64  `yaml:"max_position_pct"`
	CacheTTLSeconds  int      `yaml:"cache_ttl_seconds"`
	HistoryDays      int      `yaml:"history_days"`
	FetchConcurrency int      `yaml:"fetch_concurrency"`
	Universe         []string `yaml:"universe"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type WebConfig struct {
	Port int `yaml:"port"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Tickers traded when the config does not list a universe. A liquid
// S&P 500 subset keeps prompts small enough for cheap models.
var defaultUniverse = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA",
	"META", "TSLA", "BRK-B", "JNJ", "V",
	"WMT", "PG", "MA", "HD", "DIS",
	"PYPL", "NFLX", "INTC", "AMD", "CRM",
	"ADBE", "CSCO", "AVGO", "COST", "ABT",
}

var defaultModels = []ModelConfig{
	{Name: "gpt-4.1", CostTier: "expensive"},
	{Name: "gpt-3.5-turbo-1106", CostTier: "cheap"},
	{Name: "claude-3-5-sonnet", CostTier: "medium"},
	{Name: "claude-3-haiku", CostTier: "cheap"},
	{Name: "deepseek-chat", CostTier: "cheap"},
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Providers.OpenAI.APIKey == "" {
		cfg.Providers.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Providers.Anthropic.APIKey == "" {
		cfg.Providers.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.Providers.DeepSeek.APIKey == "" {
		cfg.Providers.DeepSeek.APIKey = os.Getenv("DEEPSEEK_API_KEY")
	}
	if cfg.Providers.TimeoutSeconds == 0 {
		cfg.Providers.TimeoutSeconds = 60
	}
	if len(cfg.Agents.Models) == 0 {
		cfg.Agents.Models = defaultModels
	}
	if cfg.Trading.Interval == "" {
		cfg.Trading.Interval = "1h"
	}
	if cfg.Trading.StartingCapital == 0 {
		cfg.Trading.StartingCapital = 10000
	}
	if cfg.Trading.MaxPositions == 0 {
		cfg.Trading.MaxPositions = 5
	}
	if cfg.Trading.MaxPositionPct == 0 {
		cfg.Trading.MaxPositionPct = 0.30
	}
	if cfg.Trading.CacheTTLSeconds == 0 {
		cfg.Trading.CacheTTLSeconds = 60
	}
	if cfg.Trading.HistoryDays == 0 {
		cfg.Trading.HistoryDays = 90
	}
	if cfg.Trading.FetchConcurrency == 0 {
		cfg.Trading.FetchConcurrency = 10
	}
	if len(cfg.Trading.Universe) == 0 {
		cfg.Trading.Universe = defaultUniverse
	}
	if cfg.Web.Port == 0 {
		cfg.Web.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func (c *Config) Validate() error {
	if c.Providers.OpenAI.APIKey == "" &&
		c.Providers.Anthropic.APIKey == "" &&
		c.Providers.DeepSeek.APIKey == "" {
		return fmt.Errorf("at least one provider api_key is required")
	}
	if _, err := time.ParseDuration(c.Trading.Interval); err != nil {
		return fmt.Errorf("invalid trading.interval %q: %w", c.Trading.Interval, err)
	}
	if c.Trading.StartingCapital < 0 {
		return fmt.Errorf("trading.starting_capital must be positive")
	}
	if c.Trading.MaxPositionPct <= 0 || c.Trading.MaxPositionPct > 1 {
		return fmt.Errorf("trading.max_position_pct must be in (0, 1]")
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}
	return nil
}

func (c *Config) MarketLocation() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.FixedZone("EST", -5*60*60)
	}
	return loc
}

func (c *Config) TradingInterval() time.Duration {
	d, _ := time.ParseDuration(c.Trading.Interval)
	return d
}

func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Providers.TimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Trading.CacheTTLSeconds) * time.Second
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/quantarena/agent-league/internal/agent"
	"github.com/quantarena/agent-league/internal/ai"
	"github.com/quantarena/agent-league/internal/config"
	"github.com/quantarena/agent-league/internal/engine"
	"github.com/quantarena/agent-league/internal/league"
	"github.com/quantarena/agent-league/internal/logger"
	"github.com/quantarena/agent-league/internal/market"
	"github.com/quantarena/agent-league/internal/scheduler"
	"github.com/quantarena/agent-league/internal/storage"
	"github.com/quantarena/agent-league/internal/telegram"
	"github.com/quantarena/agent-league/internal/web"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dbPath := flag.String("db", "data/agent-league.db", "path to SQLite database")
	flag.Parse()

	// Provider keys may live in a local .env during development
	_ = godotenv.Load()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Init logger
	log := logger.New(cfg.Logging.Level)
	log.Info("starting agent-league")

	// Init database
	db, err := storage.NewDatabase(*dbPath)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	repo := storage.NewRepository(db)

	// Sync the model x style agent catalog
	agents, err := repo.SyncAgentCatalog(agent.BuildCatalog(cfg.Agents.Models))
	if err != nil {
		log.Error("agent catalog sync failed", "error", err)
		os.Exit(1)
	}
	log.Info("agent catalog ready", "agents", len(agents))

	// Context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init services
	source := market.NewYahooSource(log)
	cache := market.NewCache(source, cfg.CacheTTL(), cfg.Trading.HistoryDays, cfg.Trading.FetchConcurrency, log)
	orch := ai.NewOrchestrator(ai.ProvidersFromConfig(cfg), cfg.ProviderTimeout(), log)
	eng := engine.New(repo, cfg.Trading.MaxPositions, cfg.Trading.MaxPositionPct, log)
	notifier := telegram.NewNotifier(cfg, log)
	service := league.NewService(repo, cache, orch, eng, cfg.Trading.Universe, notifier, log)
	sched := scheduler.NewScheduler(service, repo, notifier, cfg, log)
	webServer := web.NewServer(web.NewHandler(repo, service, cache, log), cfg, log)

	// Start scheduler in goroutine
	go sched.Run(ctx)

	// Start web server in goroutine
	go func() {
		if err := webServer.Start(); err != nil {
			log.Error("web server error", "error", err)
		}
	}()

	notifier.NotifyStatus("🤖 agent-league started")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutdown signal received", "signal", sig.String())

	// Graceful shutdown
	cancel() // stop scheduler

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := webServer.Shutdown(shutdownCtx); err != nil {
		log.Error("web server shutdown error", "error", err)
	}

	notifier.NotifyStatus("🛑 agent-league stopped")
	log.Info("agent-league stopped")
}

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/quantarena/agent-league/internal/storage"
)

func main() {
	dbPath := flag.String("db", "data/agent-league.db", "path to SQLite database")
	leagueID := flag.Uint("league", 0, "league ID to reset")
	dryRun := flag.Bool("dry-run", false, "show accounts without resetting")
	flag.Parse()

	if *leagueID == 0 {
		fmt.Fprintln(os.Stderr, "usage: resetleague -league <id> [-db path] [-dry-run]")
		os.Exit(1)
	}

	db, err := storage.NewDatabase(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database error: %v\n", err)
		os.Exit(1)
	}
	repo := storage.NewRepository(db)

	league, err := repo.GetLeague(uint(*leagueID))
	if err != nil {
		fmt.Fprintf(os.Stderr, "league %d not found: %v\n", *leagueID, err)
		os.Exit(1)
	}

	accounts, err := repo.AccountsForLeague(league.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list accounts error: %v\n", err)
		os.Exit(1)
	}
	if len(accounts) == 0 {
		fmt.Printf("League %q has no accounts.\n", league.Name)
		return
	}

	fmt.Printf("League %q (%s), %d account(s):\n\n", league.Name, league.Status, len(accounts))
	for _, a := range accounts {
		positions := make(map[string]int)
		_ = json.Unmarshal([]byte(a.PositionsJSON), &positions)
		fmt.Printf("  agent %d: cash $%.2f, %d open position(s)\n",
			a.AgentID, a.CurrentCash, len(positions))
	}
	fmt.Println()

	if *dryRun {
		fmt.Println("Dry run — nothing reset.")
		return
	}

	n, err := repo.ResetLeagueAccounts(league.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reset error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Done: %d account(s) reset to $%.2f.\n", n, league.StartingCapital)
}

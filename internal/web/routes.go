package web

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Agents
	api.HandleFunc("/agents", handler.ListAgents).Methods("GET")
	api.HandleFunc("/agents/{id}/pnl", handler.GetAgentPnL).Methods("GET")

	// Leagues
	api.HandleFunc("/leagues", handler.ListLeagues).Methods("GET")
	api.HandleFunc("/leagues", handler.CreateLeague).Methods("POST")
	api.HandleFunc("/leagues/{id}", handler.GetLeague).Methods("GET")
	api.HandleFunc("/leagues/{id}/close", handler.CloseLeague).Methods("POST")
	api.HandleFunc("/leagues/{id}/standings", handler.GetStandings).Methods("GET")
	api.HandleFunc("/leagues/{id}/trades", handler.GetLeagueTrades).Methods("GET")
	api.HandleFunc("/leagues/{id}/cycle", handler.RunCycle).Methods("POST")

	// Market data
	api.HandleFunc("/market/{ticker}", handler.GetMarketSnapshot).Methods("GET")

	return r
}

package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/quantarena/agent-league/internal/league"
	"github.com/quantarena/agent-league/internal/logger"
	"github.com/quantarena/agent-league/internal/market"
	"github.com/quantarena/agent-league/internal/storage"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	repo    *storage.Repository
	service *league.Service
	cache   *market.Cache
	logger  *logger.Logger
}

func NewHandler(repo *storage.Repository, service *league.Service, cache *market.Cache, log *logger.Logger) *Handler {
	return &Handler{
		repo:    repo,
		service: service,
		cache:   cache,
		logger:  log,
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ListAgents handles GET /api/v1/agents
func (h *Handler) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.repo.ListAgents()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, agents)
}

// GetAgentPnL handles GET /api/v1/agents/{id}/pnl?league={leagueID}
func (h *Handler) GetAgentPnL(w http.ResponseWriter, r *http.Request) {
	agentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	leagueID, err := strconv.ParseUint(r.URL.Query().Get("league"), 10, 32)
	if err != nil {
		http.Error(w, "league query parameter is required", http.StatusBadRequest)
		return
	}

	report, err := h.service.AgentPnL(r.Context(), agentID, uint(leagueID))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// ListLeagues handles GET /api/v1/leagues
func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	leagues, err := h.repo.ListActiveLeagues()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, leagues)
}

// CreateLeague handles POST /api/v1/leagues
func (h *Handler) CreateLeague(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string  `json:"name"`
		StartingCapital float64 `json:"starting_capital"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if req.StartingCapital <= 0 {
		http.Error(w, "starting_capital must be positive", http.StatusBadRequest)
		return
	}

	agents, err := h.repo.ListAgents()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	created, err := h.repo.CreateLeague(req.Name, req.StartingCapital, agents)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// GetLeague handles GET /api/v1/leagues/{id}
func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	l, err := h.repo.GetLeague(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, l)
}

// CloseLeague handles POST /api/v1/leagues/{id}/close
func (h *Handler) CloseLeague(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.repo.GetLeague(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err := h.repo.CloseLeague(id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetStandings handles GET /api/v1/leagues/{id}/standings
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	entries, err := h.service.Standings(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// GetLeagueTrades handles GET /api/v1/leagues/{id}/trades
func (h *Handler) GetLeagueTrades(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	trades, err := h.repo.TradesForLeague(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, trades)
}

// RunCycle handles POST /api/v1/leagues/{id}/cycle
func (h *Handler) RunCycle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	summary, err := h.service.RunCycle(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// GetMarketSnapshot handles GET /api/v1/market/{ticker}
func (h *Handler) GetMarketSnapshot(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	snapshot, err := h.cache.Get(r.Context(), ticker)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	if err != nil {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return uint(id), true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

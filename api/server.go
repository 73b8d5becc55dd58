package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/wricardo/mcp-training/crazyeights/game/engine"
	"github.com/wricardo/mcp-training/crazyeights/game/rules"
	"github.com/wricardo/mcp-training/crazyeights/game/service"
	"github.com/wricardo/mcp-training/crazyeights/game/session"
	"github.com/wricardo/mcp-training/crazyeights/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// API routes with clean REST patterns
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Player lifecycle
	api.HandleFunc("/sessions/{id}/join", s.handleJoin).Methods("POST")
	api.HandleFunc("/sessions/{id}/leave", s.handleLeave).Methods("POST")

	// Game operations
	api.HandleFunc("/sessions/{id}/start", s.handleStart).Methods("POST")
	api.HandleFunc("/sessions/{id}/restart", s.handleRestart).Methods("POST")
	api.HandleFunc("/sessions/{id}/play", s.handlePlay).Methods("POST")
	api.HandleFunc("/sessions/{id}/draw", s.handleDraw).Methods("POST")
	api.HandleFunc("/sessions/{id}/state", s.handleGetState).Methods("GET")

	// Rule presets
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	// Health
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Static files (if needed)
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir("./static/")))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondGameError maps domain errors to HTTP status codes. Unknown
// errors become 500s.
func respondGameError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, engine.ErrPlayerNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrSessionFull),
		errors.Is(err, engine.ErrSessionAlreadyStarted),
		errors.Is(err, session.ErrSessionAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrNotYourTurn),
		errors.Is(err, engine.ErrInvalidCardIndex),
		errors.Is(err, engine.ErrIllegalPlay),
		errors.Is(err, engine.ErrGameNotStarted),
		errors.Is(err, engine.ErrGameFinished):
		status = http.StatusUnprocessableEntity
	}
	respondError(w, status, err.Error())
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSessionRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	info, err := s.service.CreateSession(r.Context(), req)
	if err != nil {
		respondGameError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Parse query parameters
	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	// Set defaults
	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	// Sort sessions
	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else { // "accessed"
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj) // desc
	})

	// Apply limit if specified
	limit := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			limit = l
		}
	}
	sessions = sessions[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	info, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondGameError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondGameError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Player Lifecycle Handlers

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		PlayerName string `json:"player_name"`
		PlayerID   string `json:"player_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PlayerName == "" {
		respondError(w, http.StatusBadRequest, "player_name is required")
		return
	}

	result, err := s.service.Join(r.Context(), sessionID, req.PlayerName, req.PlayerID)
	if err != nil {
		respondGameError(w, err)
		return
	}

	fmt.Printf("[JOIN] session=%s player=%s rejoined=%t\n", sessionID, req.PlayerName, result.Rejoined)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		PlayerID string `json:"player_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.Leave(r.Context(), sessionID, req.PlayerID); err != nil {
		respondGameError(w, err)
		return
	}

	fmt.Printf("[LEAVE] session=%s player=%s\n", sessionID, req.PlayerID)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Left session"})
}

// Game Operation Handlers

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		PlayerID string `json:"player_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.Start(r.Context(), sessionID, req.PlayerID); err != nil {
		respondGameError(w, err)
		return
	}

	state, err := s.service.GetState(r.Context(), sessionID, req.PlayerID)
	if err != nil {
		respondGameError(w, err)
		return
	}

	fmt.Printf("[START] session=%s players=%d\n", sessionID, len(state.Players))
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		PlayerID string `json:"player_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.Restart(r.Context(), sessionID, req.PlayerID); err != nil {
		respondGameError(w, err)
		return
	}

	state, err := s.service.GetState(r.Context(), sessionID, req.PlayerID)
	if err != nil {
		respondGameError(w, err)
		return
	}

	fmt.Printf("[RESTART] session=%s players=%d\n", sessionID, len(state.Players))
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		PlayerID  string `json:"player_id"`
		CardIndex int    `json:"card_index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Play(r.Context(), sessionID, req.PlayerID, req.CardIndex)
	if err != nil {
		fmt.Printf("[PLAY] session=%s player=%s idx=%d status=REJECTED reason=%v\n",
			sessionID, req.PlayerID, req.CardIndex, err)
		respondGameError(w, err)
		return
	}

	// Compact server log for observability
	card := ""
	if result.Action != nil && result.Action.Card != nil {
		card = result.Action.Card.String()
	}
	fmt.Printf("[PLAY] session=%s player=%s card=%s winner=%q status=OK\n",
		sessionID, req.PlayerID, card, result.Winner)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleDraw(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		PlayerID string `json:"player_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Draw(r.Context(), sessionID, req.PlayerID)
	if err != nil {
		fmt.Printf("[DRAW] session=%s player=%s status=REJECTED reason=%v\n", sessionID, req.PlayerID, err)
		respondGameError(w, err)
		return
	}

	fmt.Printf("[DRAW] session=%s player=%s deck=%d status=OK\n",
		sessionID, req.PlayerID, result.GameState.DeckCount)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	playerID := r.URL.Query().Get("player_id")

	state, err := s.service.GetState(r.Context(), sessionID, playerID)
	if err != nil {
		respondGameError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := mux.Vars(r)["name"]

	// Remove .json extension if present
	configName = strings.TrimSuffix(configName, ".json")

	ruleSet, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, ruleSet)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var ruleSet rules.Rules
	if err := json.NewDecoder(r.Body).Decode(&ruleSet); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Validate required fields
	if ruleSet.Name == "" {
		respondError(w, http.StatusBadRequest, "Rule set name is required")
		return
	}
	if err := ruleSet.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.service.SaveConfig(r.Context(), ruleSet.Name, ruleSet); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save rule set: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Rule set saved successfully",
		"config_id": ruleSet.Name,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Connections are anonymous until they send a join command, so no
	// session check happens here.
	s.hub.ServeWS(w, r)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

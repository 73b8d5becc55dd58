package service

import (
	"time"

	"github.com/wricardo/mcp-training/crazyeights/game/engine"
)

// Outbound event types, delivered through the Notifier.
const (
	EventJoined         = "joined"
	EventRejoined       = "rejoined"
	EventPlayerList     = "playerListChanged"
	EventStarted        = "started"
	EventUpdated        = "updated"
	EventOver           = "over"
	EventPlayerLeft     = "playerLeft"
	EventActionRejected = "actionRejected"
)

// Event is one outbound notification. GameState is always the
// recipient's own projection, never a shared object.
type Event struct {
	Type       string                 `json:"type"`
	SessionID  string                 `json:"session_id"`
	GameState  *engine.GameView       `json:"game_state,omitempty"`
	Action     *engine.Action         `json:"action,omitempty"`
	Winner     string                 `json:"winner,omitempty"`
	PlayerName string                 `json:"player_name,omitempty"`
	Players    []engine.PlayerSummary `json:"players,omitempty"`
	Reason     string                 `json:"reason,omitempty"`
}

// CreateSessionRequest describes a new session. Zero values fall back
// to the default capacity and the default rule preset. SessionID is
// normally left empty so a room code is generated.
type CreateSessionRequest struct {
	SessionID  string `json:"session_id,omitempty"`
	MaxPlayers int    `json:"max_players,omitempty"`
	RuleSet    string `json:"rule_set,omitempty"`
}

// SessionInfo provides registry-level information about a session.
type SessionInfo struct {
	ID             string                 `json:"id"`
	RuleSet        string                 `json:"rule_set"`
	MaxPlayers     int                    `json:"max_players"`
	PlayerCount    int                    `json:"player_count"`
	Started        bool                   `json:"started"`
	GameOver       bool                   `json:"game_over"`
	Winner         string                 `json:"winner,omitempty"`
	Players        []engine.PlayerSummary `json:"players"`
	CreatedAt      time.Time              `json:"created_at"`
	LastAccessedAt time.Time              `json:"last_accessed_at"`
}

// JoinResult is returned to the joining connection. PlayerID is the
// volatile connection identifier the caller must present on subsequent
// commands; clients may cache it alongside the name for rejoin.
type JoinResult struct {
	SessionID  string           `json:"session_id"`
	PlayerID   string           `json:"player_id"`
	PlayerName string           `json:"player_name"`
	Rejoined   bool             `json:"rejoined"`
	GameState  *engine.GameView `json:"game_state"`
}

// ActionResult is returned to the acting connection after a successful
// play or draw. GameState is the actor's own projection.
type ActionResult struct {
	Action    *engine.Action   `json:"action"`
	Winner    string           `json:"winner,omitempty"`
	GameState *engine.GameView `json:"game_state"`
}

// ConfigInfo provides information about a rule preset.
type ConfigInfo struct {
	Filename        string `json:"filename"`
	ConfigID        string `json:"config_id"` // The identifier to use for session creation
	Name            string `json:"name"`      // Display name
	Description     string `json:"description"`
	InitialHandSize int    `json:"initial_hand_size"`
	MaxPlayers      int    `json:"max_players"`
}

package engine

import "github.com/wricardo/mcp-training/crazyeights/game/cards"

// Player is one seat in a session. ID is the volatile connection
// identifier assigned by the transport and overwritten on rejoin; Name
// is the stable identity used for game logic and rejoin matching.
type Player struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Hand      []cards.Card `json:"hand"`
	Connected bool         `json:"connected"`
}

// PlayerSummary is the public projection of a player: everything except
// the hand contents.
type PlayerSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CardCount int    `json:"card_count"`
	Connected bool   `json:"connected"`
}

// GameView is a per-viewer projection of session state. Only the
// viewer's own hand is revealed; every other player appears as a
// card count. This is the only shape that leaves the engine.
type GameView struct {
	SessionID       string          `json:"session_id"`
	MaxPlayers      int             `json:"max_players"`
	Started         bool            `json:"started"`
	GameOver        bool            `json:"game_over"`
	Winner          string          `json:"winner,omitempty"`
	Players         []PlayerSummary `json:"players"`
	YourHand        []cards.Card    `json:"your_hand"`
	TopCard         *cards.Card     `json:"top_card,omitempty"`
	CurrentPlayerID string          `json:"current_player_id,omitempty"`
	DeckCount       int             `json:"deck_count"`
}

// Action describes a successful state transition for broadcasting.
type Action struct {
	Type   string      `json:"type"` // "play" or "draw"
	Player string      `json:"player"`
	Card   *cards.Card `json:"card,omitempty"`
}

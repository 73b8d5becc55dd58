// Package engine provides the authoritative game session engine for
// the Crazy Eights server.
//
// The engine package implements:
//   - The Lobby -> Playing -> Finished state machine for one session
//   - Turn order enforcement and play legality via game/rules
//   - Dealing, drawing, and discard-pile reshuffling
//   - Rejoin-by-name with volatile connection IDs
//   - Per-viewer state projection with hidden hands
//
// Core Types:
//
// Game is the single owner of one session's deck, discard pile, hands,
// and turn cursor. GameView is the per-viewer projection produced by
// StateFor and is the only shape that crosses the engine boundary.
// Action describes a successful play or draw for broadcasting.
//
// Error Handling:
//
// Rule violations (wrong turn, illegal card, out-of-range index) are
// sentinel errors returned inline, never panics. Every failed
// operation leaves the game state unchanged.
//
// Concurrency:
//
// Game performs no locking. Each session's commands must be applied
// through one serialized stream; the service layer holds a per-session
// mutex for the duration of each validate-mutate-respond sequence.
//
// Usage:
//
//	g := engine.NewGame("ab12cd", 4, rules.Default())
//	g.AddPlayer(connID, "Ann")
//	g.Start()
//
//	action, err := g.PlayCard(connID, 2)
//	if err != nil {
//		// rejected, state unchanged
//	}
//	view := g.StateFor(connID)
package engine

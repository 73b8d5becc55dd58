// Package websocket provides the real-time WebSocket transport for the
// Crazy Eights server.
//
// The websocket package implements:
//   - Real-time bidirectional communication
//   - Inbound command parsing and dispatch to the game service
//   - Targeted event delivery with per-player state projections
//   - Connection lifecycle management with disconnect reporting
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a dedicated
// goroutine pair that manages reading, writing, and cleanup. The Hub
// implements service.Notifier, so the game service pushes events through
// it without knowing about connections.
//
// Message Protocol:
//
// Messages are JSON-encoded with the following structure:
//   - Incoming: {type: "play", card_index: 2} (session and player are
//     bound at join time: {type: "join", session_id: "A1B2C3", player_name: "alice"})
//   - Outgoing: service.Event payloads, each carrying the recipient's own
//     projection of the game state
//
// Session Integration:
//
// A connection is anonymous until it sends a join or rejoin command. On
// success the hub binds the connection to the session and the player ID
// the service assigned, and all subsequent commands act on that seat.
// Closing the connection reports a disconnect to the service, which holds
// the seat for a grace period before removing it.
//
// Usage:
//
//	hub := websocket.NewHub(gameService)
//	gameService.SetNotifier(hub)
//	http.HandleFunc("/ws", hub.ServeWS)
//
// Concurrency:
//
// The hub and client handlers are designed for concurrent operation.
// Multiple clients can connect, disconnect, and send commands
// simultaneously without blocking each other; per-session ordering is
// enforced by the service layer, not here.
package websocket

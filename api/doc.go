// Package api provides HTTP REST API handlers for the Crazy Eights server.
//
// The api package implements:
//   - RESTful endpoints for game operations
//   - Session management endpoints
//   - Rule preset listing and creation
//   - WebSocket upgrade handling
//   - Static file serving
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session (optional rule_set, max_players)
//   - GET /api/sessions - List all sessions (sort, order, limit)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Player Lifecycle:
//   - POST /api/sessions/{id}/join - Join (or rejoin by name)
//   - POST /api/sessions/{id}/leave - Leave immediately
//
// Game Operations:
//   - POST /api/sessions/{id}/start - Deal and start the game
//   - POST /api/sessions/{id}/restart - Redeal with the same roster
//   - POST /api/sessions/{id}/play - Play a card by hand index
//   - POST /api/sessions/{id}/draw - Draw a card and end the turn
//   - GET /api/sessions/{id}/state?player_id=X - Viewer-specific state
//
// Rule Presets:
//   - GET /api/configs - List available rule presets
//   - POST /api/configs - Save a rule preset
//   - GET /api/configs/{name} - Get a specific preset
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Player-facing operations carry
// the acting player's ID in the request body:
//
//	{
//	  "player_id": "8f6f...",
//	  "card_index": 2
//	}
//
// The state endpoint hides every hand except the requesting player's;
// other players appear as card counts only.
//
// Usage:
//
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "not your turn"
//	}
//
// 404 for unknown sessions or players, 409 for full or already-started
// sessions, 422 for rejected game actions, 400 for malformed requests.
package api

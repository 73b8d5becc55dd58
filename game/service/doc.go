// Package service provides the business logic layer for the Crazy Eights server.
//
// The service package implements:
//   - Multi-session game management
//   - Rule preset loading and management
//   - Player join, rejoin, and disconnect handling
//   - Turn action processing (play and draw)
//   - Event fan-out to connected transports
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages rule preset loading and validation.
// Notifier is implemented by transports that can push events to players.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine, providing session isolation, rule preset management, and
// business logic orchestration. Each session maintains its own game engine
// instance behind its own mutex, so commands against different sessions run
// in parallel while commands against the same session serialize.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	// Create a new session
//	info, err := gameService.CreateSession(ctx, service.CreateSessionRequest{RuleSet: "classic"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Join and play
//	join, err := gameService.Join(ctx, info.ID, "alice", "")
//	err = gameService.Start(ctx, info.ID, join.PlayerID)
//	result, err := gameService.Play(ctx, info.ID, join.PlayerID, 0)
//
// Disconnects:
//
// When a transport reports a disconnect, the seat is marked disconnected and a
// grace timer is scheduled. A player who rejoins with the same name before the
// timer fires keeps their seat and hand; otherwise the timer re-checks the
// live connected flag and removes the seat only if it is still disconnected.
// Sessions whose roster empties out are deleted from the registry.
package service

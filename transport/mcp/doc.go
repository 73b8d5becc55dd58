// Package mcp provides the Model Context Protocol server for the Crazy
// Eights game.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for room and game operations
//   - A thin proxy onto the REST API
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - create_session: Create a new game room with rule set selection
//   - list_sessions: List all active rooms
//   - get_session: Get specific room details
//   - join_game: Join (or rejoin by name) a room
//   - start_game: Deal and start the game
//   - play_card: Play a card from your hand by index
//   - draw_card: Draw a card and end your turn
//   - restart_game: Redeal with the same roster
//   - leave_game: Leave the room
//   - game_state: Get your view of the game
//   - list_rule_sets: List available rule presets
//   - game_instructions: Get comprehensive game instructions
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: HTTP endpoint for remote MCP integration
//
// Identity:
//
// join_game returns a player_id which every subsequent game action
// requires. An agent that loses its player_id can rejoin with the same
// player name to reclaim the seat and receive a fresh one.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// AI Integration:
//
// The MCP interface enables AI agents to:
//   - Play full games against humans or other agents
//   - Manage multiple rooms independently
//   - Reason about legal plays from the formatted state output
package mcp

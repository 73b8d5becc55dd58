package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/crazyeights/game/engine"
	"github.com/wricardo/mcp-training/crazyeights/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Crazy Eights Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Crazy Eights Card Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Be the first player to empty your hand. Play a card matching the top of the
discard pile by suit or rank; jokers match anything. If you cannot play, draw
a card and your turn ends.

AVAILABLE TOOLS:
- create_session: Create a new game room (returns the room code)
- list_sessions: List all active rooms
- get_session: Get room details
- join_game: Join a room by name (same name rejoins your seat)
- start_game: Deal and start the game
- play_card: Play a card from your hand by index
- draw_card: Draw a card and end your turn
- restart_game: Redeal with the same players
- leave_game: Leave the room
- game_state: Get your view of the game (only your own hand is visible)
- list_rule_sets: List available rule presets
- game_instructions: Get comprehensive game instructions and rules

NOTE: Keep the player_id returned by join_game - every game action requires it.`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game room with optional rule set selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"rule_set": map[string]interface{}{
					"type":        "string",
					"description": "Name of the rule set to use (optional)",
				},
				"max_players": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of players (optional, default 4)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game rooms",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Room code to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Player lifecycle
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "join_game",
		Description: "Join a room by player name. Joining with a name already in the room reclaims that seat and hand.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Room code",
				},
				"player_name": map[string]interface{}{
					"type":        "string",
					"description": "Your player name",
				},
			},
			Required: []string{"session_id", "player_name"},
		},
	}, c.handleJoinGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "leave_game",
		Description: "Leave the room immediately",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Room code",
				},
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Your player ID from join_game",
				},
			},
			Required: []string{"session_id", "player_id"},
		},
	}, c.handleLeaveGame)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Deal seven cards to each player and start the game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Room code",
				},
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Your player ID from join_game",
				},
			},
			Required: []string{"session_id", "player_id"},
		},
	}, c.handleStartGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart_game",
		Description: "Redeal and restart the game with the same players",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Room code",
				},
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Your player ID from join_game",
				},
			},
			Required: []string{"session_id", "player_id"},
		},
	}, c.handleRestartGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "play_card",
		Description: "Play a card from your hand by its index (0-based, as shown by game_state)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Room code",
				},
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Your player ID from join_game",
				},
				"card_index": map[string]interface{}{
					"type":        "integer",
					"description": "Index of the card in your hand (0-based)",
				},
			},
			Required: []string{"session_id", "player_id", "card_index"},
		},
	}, c.handlePlayCard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "draw_card",
		Description: "Draw a card from the deck and end your turn",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Room code",
				},
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Your player ID from join_game",
				},
			},
			Required: []string{"session_id", "player_id"},
		},
	}, c.handleDrawCard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get your view of the game. Only your own hand is visible; other players appear as card counts.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Room code",
				},
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Your player ID from join_game",
				},
			},
			Required: []string{"session_id", "player_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rule_sets",
		Description: "List available game rule presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRuleSets)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	ruleSet, _ := args["rule_set"].(string)

	body := map[string]interface{}{}
	if ruleSet != "" {
		body["rule_set"] = ruleSet
	}
	if maxPlayers, ok := args["max_players"].(float64); ok {
		body["max_players"] = int(maxPlayers)
	}

	var info service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &info)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created room: %s\nRule set: %s\nMax players: %d\n\nShare the room code with other players so they can join.",
		info.ID, info.RuleSet, info.MaxPlayers)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Rooms (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		phase := "waiting"
		if s.GameOver {
			phase = "finished"
		} else if s.Started {
			phase = "playing"
		}
		result += fmt.Sprintf("- %s (%s, %d/%d players, rules: %s)\n",
			s.ID, phase, s.PlayerCount, s.MaxPlayers, s.RuleSet)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var info service.SessionInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &info)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleJoinGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	playerName, _ := args["player_name"].(string)

	var result service.JoinResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/join", sessionID),
		map[string]string{"player_name": playerName}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	verb := "Joined"
	if result.Rejoined {
		verb = "Rejoined"
	}
	response := fmt.Sprintf("%s room %s as %s\nYour player ID: %s (keep this - every game action requires it)\n\n%s",
		verb, result.SessionID, result.PlayerName, result.PlayerID, formatGameView(result.GameState))
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleLeaveGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	playerID, _ := args["player_id"].(string)

	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/leave", sessionID),
		map[string]string{"player_id": playerID}, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Left room %s", sessionID)), nil
}

func (c *Client) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	playerID, _ := args["player_id"].(string)

	var state engine.GameView
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/start", sessionID),
		map[string]string{"player_id": playerID}, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Game started!\n\n" + formatGameView(&state)), nil
}

func (c *Client) handleRestartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	playerID, _ := args["player_id"].(string)

	var state engine.GameView
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/restart", sessionID),
		map[string]string{"player_id": playerID}, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Game restarted with a fresh deal.\n\n" + formatGameView(&state)), nil
}

func (c *Client) handlePlayCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	playerID, _ := args["player_id"].(string)
	cardIndex := 0
	if idx, ok := args["card_index"].(float64); ok {
		cardIndex = int(idx)
	}

	var result service.ActionResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/play", sessionID),
		map[string]interface{}{"player_id": playerID, "card_index": cardIndex}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleDrawCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	playerID, _ := args["player_id"].(string)

	var result service.ActionResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/draw", sessionID),
		map[string]string{"player_id": playerID}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	playerID, _ := args["player_id"].(string)

	var state engine.GameView
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state?player_id=%s", sessionID, playerID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameView(&state)), nil
}

func (c *Client) handleListRuleSets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	err := c.apiCall("GET", "/api/configs", nil, &configs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Rule Sets:\n\n"
	for _, config := range configs {
		result += fmt.Sprintf("• %s\n  %s\n  Hand size: %d, max players: %d\n\n",
			config.ConfigID, config.Description, config.InitialHandSize, config.MaxPlayers)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🃏 Crazy Eights - Complete Instructions

GAME OBJECTIVE:
Be the first player to play every card in your hand.

THE DECK:
Two standard 52-card decks plus two jokers (108 cards total). Each player is
dealt seven cards; one card is flipped to seed the discard pile.

TURN STRUCTURE:
Play proceeds clockwise through the seat order. On your turn you either:
• Play a card matching the top of the discard pile by SUIT or RANK
• Play a joker (matches anything; anything can be played on a joker)
• Draw one card from the deck, which ends your turn

MATCHING EXAMPLES:
• Top card 7♥: play any heart, or any 7, or a joker
• Top card Joker: play anything

DECK EXHAUSTION:
When the deck runs out, the discard pile (minus its top card) is shuffled
back in as the new deck. The top card stays as the discard pile.

WINNING:
The moment your last card is played, you win and the game ends. Use
restart_game to redeal with the same players.

SESSION MANAGEMENT:
- Rooms are identified by a 6-character code (e.g. A1B2C3)
- Create a room, share its code, and have everyone join by name
- Joining with a name already in the room reclaims that seat and hand,
  which is how you return after a disconnect
- A disconnected player's seat is held for 30 seconds before removal

TOOL WORKFLOW:
1. create_session → note the room code
2. join_game (each player) → note your player_id
3. start_game → seven cards each
4. game_state → see your hand with indices
5. play_card (by index) or draw_card on your turn
6. restart_game for another round

IMPORTANT FOR AI AGENTS:
- Card indices are 0-based positions in YOUR hand as shown by game_state
- Your hand shifts left after each play - re-check game_state before playing
- You can only see your own cards; other players appear as card counts
- Actions out of turn or illegal plays are rejected without changing the game

Good luck at the table! 🃏`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(info *service.SessionInfo) string {
	phase := "waiting for players"
	if info.GameOver {
		phase = fmt.Sprintf("finished, winner: %s", info.Winner)
	} else if info.Started {
		phase = "playing"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Room: %s\nRule set: %s\nPhase: %s\nPlayers: %d/%d\nCreated: %s\n",
		info.ID, info.RuleSet, phase, info.PlayerCount, info.MaxPlayers,
		info.CreatedAt.Format("2006-01-02 15:04:05")))

	for _, p := range info.Players {
		conn := "connected"
		if !p.Connected {
			conn = "disconnected"
		}
		b.WriteString(fmt.Sprintf("- %s (%d cards, %s)\n", p.Name, p.CardCount, conn))
	}

	return b.String()
}

func formatGameView(state *engine.GameView) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder

	if !state.Started {
		b.WriteString(fmt.Sprintf("Room %s - waiting for players to start\n\nPlayers:\n", state.SessionID))
		for _, p := range state.Players {
			b.WriteString(fmt.Sprintf("- %s\n", p.Name))
		}
		return b.String()
	}

	if state.TopCard != nil {
		b.WriteString(fmt.Sprintf("Top card: %s\n", state.TopCard.String()))
	}
	b.WriteString(fmt.Sprintf("Deck: %d cards remaining\n\n", state.DeckCount))

	b.WriteString("Players:\n")
	for _, p := range state.Players {
		marker := " "
		if p.ID == state.CurrentPlayerID {
			marker = "▶"
		}
		conn := ""
		if !p.Connected {
			conn = " (disconnected)"
		}
		b.WriteString(fmt.Sprintf("%s %s: %d cards%s\n", marker, p.Name, p.CardCount, conn))
	}

	if len(state.YourHand) > 0 {
		b.WriteString("\nYour hand:\n")
		for i, card := range state.YourHand {
			b.WriteString(fmt.Sprintf("  [%d] %s\n", i, card.String()))
		}
	}

	if state.GameOver {
		b.WriteString(fmt.Sprintf("\n🎉 Game over - %s wins!", state.Winner))
	}

	return b.String()
}

func formatActionResult(result *service.ActionResult) string {
	var b strings.Builder

	if result.Action != nil {
		switch result.Action.Type {
		case "play":
			card := ""
			if result.Action.Card != nil {
				card = result.Action.Card.String()
			}
			b.WriteString(fmt.Sprintf("✓ Played %s\n", card))
		case "draw":
			b.WriteString("✓ Drew a card - your turn is over\n")
		default:
			b.WriteString(fmt.Sprintf("✓ %s\n", result.Action.Type))
		}
	}

	if result.Winner != "" {
		b.WriteString(fmt.Sprintf("\n🎉 %s wins the game!\n", result.Winner))
	}

	b.WriteString("\n")
	b.WriteString(formatGameView(result.GameState))
	return b.String()
}

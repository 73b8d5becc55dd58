package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/mcp-training/crazyeights/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Command is one inbound message from a client.
type Command struct {
	Type       string `json:"type"`
	SessionID  string `json:"session_id,omitempty"`
	PlayerName string `json:"player_name,omitempty"`
	CardIndex  int    `json:"card_index,omitempty"`
}

// Inbound command types.
const (
	CmdJoin    = "join"
	CmdRejoin  = "rejoin"
	CmdStart   = "start"
	CmdRestart = "restart"
	CmdPlay    = "play"
	CmdDraw    = "draw"
	CmdLeave   = "leave"
	CmdState   = "state"
)

// Client represents a WebSocket client. sessionID and playerID are
// empty until the client joins a session.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	sessionID string
	playerID  string
}

// Hub maintains the set of active clients and routes game events to
// them. It implements service.Notifier.
type Hub struct {
	service service.GameService

	// Registered clients by session ID, guarded by mu. SendTo is
	// called from service goroutines as well as client readPumps.
	mu       sync.RWMutex
	sessions map[string]map[*Client]bool
}

// NewHub creates a new WebSocket hub
func NewHub(svc service.GameService) *Hub {
	return &Hub{
		service:  svc,
		sessions: make(map[string]map[*Client]bool),
	}
}

// ServeWS handles WebSocket requests from clients
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// SendTo delivers an event to the connection identified by
// connectionID within a session. Events for connections that are not
// attached to this hub are dropped; other transports poll instead.
func (h *Hub) SendTo(sessionID, connectionID string, event *service.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal WebSocket event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.sessions[sessionID] {
		if client.playerID != connectionID {
			continue
		}
		select {
		case client.send <- data:
		default:
			// Client's send buffer is full; the writePump will tear
			// the connection down when its deadline expires.
			log.Printf("Dropping event for slow client %s in session %s", connectionID, sessionID)
		}
	}
}

// registerClient attaches a joined client to its session.
func (h *Hub) registerClient(client *Client, sessionID, playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// A rejoin may switch sessions on an existing connection.
	h.detachLocked(client)

	client.sessionID = sessionID
	client.playerID = playerID
	if h.sessions[sessionID] == nil {
		h.sessions[sessionID] = make(map[*Client]bool)
	}
	h.sessions[sessionID][client] = true

	log.Printf("Client registered for session %s (total clients: %d)",
		sessionID, len(h.sessions[sessionID]))
}

// unregisterClient removes a client from its session.
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(client)
}

func (h *Hub) detachLocked(client *Client) {
	clients, ok := h.sessions[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)

	// Clean up empty sessions
	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
	}

	log.Printf("Client unregistered from session %s (remaining clients: %d)",
		client.sessionID, len(clients))
}

// readPump pumps commands from the WebSocket connection into the
// game service.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregisterClient(c)
		if c.playerID != "" {
			c.hub.service.Disconnect(c.sessionID, c.playerID)
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.reject("", "invalid command: "+err.Error())
			continue
		}

		if done := c.dispatch(&cmd); done {
			break
		}
	}
}

// dispatch executes one command, sending the result or a rejection
// back to this client. It returns true when the connection should
// close.
func (c *Client) dispatch(cmd *Command) bool {
	ctx := context.Background()
	svc := c.hub.service

	// Commands after join act on the joined session.
	sessionID := c.sessionID
	if sessionID == "" {
		sessionID = cmd.SessionID
	}

	switch cmd.Type {
	case CmdJoin, CmdRejoin:
		result, err := svc.Join(ctx, cmd.SessionID, cmd.PlayerName, c.playerID)
		if err != nil {
			c.reject(cmd.SessionID, err.Error())
			return false
		}
		c.hub.registerClient(c, result.SessionID, result.PlayerID)
		eventType := service.EventJoined
		if result.Rejoined {
			eventType = service.EventRejoined
		}
		c.sendEvent(&service.Event{
			Type:       eventType,
			SessionID:  result.SessionID,
			PlayerName: result.PlayerName,
			GameState:  result.GameState,
		})

	case CmdStart:
		if err := svc.Start(ctx, sessionID, c.playerID); err != nil {
			c.reject(sessionID, err.Error())
		}

	case CmdRestart:
		if err := svc.Restart(ctx, sessionID, c.playerID); err != nil {
			c.reject(sessionID, err.Error())
		}

	case CmdPlay:
		if _, err := svc.Play(ctx, sessionID, c.playerID, cmd.CardIndex); err != nil {
			c.reject(sessionID, err.Error())
		}

	case CmdDraw:
		if _, err := svc.Draw(ctx, sessionID, c.playerID); err != nil {
			c.reject(sessionID, err.Error())
		}

	case CmdLeave:
		if err := svc.Leave(ctx, sessionID, c.playerID); err != nil {
			c.reject(sessionID, err.Error())
			return false
		}
		c.hub.unregisterClient(c)
		c.sessionID = ""
		c.playerID = ""
		return true

	case CmdState:
		view, err := svc.GetState(ctx, sessionID, c.playerID)
		if err != nil {
			c.reject(sessionID, err.Error())
			return false
		}
		c.sendEvent(&service.Event{
			Type:      service.EventUpdated,
			SessionID: sessionID,
			GameState: view,
		})

	default:
		c.reject(sessionID, "unknown command type: "+cmd.Type)
	}

	return false
}

// reject sends an actionRejected event to this client only. The game
// state other players see is untouched.
func (c *Client) reject(sessionID, reason string) {
	c.sendEvent(&service.Event{
		Type:      service.EventActionRejected,
		SessionID: sessionID,
		Reason:    reason,
	})
}

func (c *Client) sendEvent(event *service.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal WebSocket event: %v", err)
		return
	}

	select {
	case c.send <- data:
	default:
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

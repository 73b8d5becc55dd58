package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/mcp-training/crazyeights/game/config"
	"github.com/wricardo/mcp-training/crazyeights/game/service"
	"github.com/wricardo/mcp-training/crazyeights/game/session"
)

func newTestHub(t *testing.T) (*Hub, service.GameService) {
	t.Helper()

	configMgr, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}

	svc := service.NewGameService(session.NewManager(), configMgr)
	hub := NewHub(svc)
	svc.SetNotifier(hub)
	return hub, svc
}

func TestNewHub(t *testing.T) {
	hub, _ := newTestHub(t)

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}

	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}

	if hub.service == nil {
		t.Error("Hub service is nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub, _ := newTestHub(t)

	client := &Client{
		hub:  hub,
		send: make(chan []byte, 256),
	}

	hub.registerClient(client, "test-session", "player-1")

	if client.sessionID != "test-session" || client.playerID != "player-1" {
		t.Errorf("Client not bound to session/player: %s/%s", client.sessionID, client.playerID)
	}

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}

	if len(hub.sessions["test-session"]) != 1 {
		t.Errorf("Expected 1 client in session, got %d", len(hub.sessions["test-session"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub, _ := newTestHub(t)

	client := &Client{
		hub:  hub,
		send: make(chan []byte, 256),
	}

	// Register then unregister
	hub.registerClient(client, "test-session", "player-1")
	hub.unregisterClient(client)

	// Check if session was cleaned up
	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
}

func TestHubRegisterSwitchesSession(t *testing.T) {
	hub, _ := newTestHub(t)

	client := &Client{
		hub:  hub,
		send: make(chan []byte, 256),
	}

	hub.registerClient(client, "first", "p1")
	hub.registerClient(client, "second", "p2")

	if _, exists := hub.sessions["first"]; exists {
		t.Error("Client should have been detached from first session")
	}

	if !hub.sessions["second"][client] {
		t.Error("Client should be registered in second session")
	}
}

func TestHubSendTo(t *testing.T) {
	hub, _ := newTestHub(t)
	sessionID := "sendto-test"

	alice := &Client{hub: hub, send: make(chan []byte, 256)}
	bob := &Client{hub: hub, send: make(chan []byte, 256)}
	hub.registerClient(alice, sessionID, "alice-conn")
	hub.registerClient(bob, sessionID, "bob-conn")

	hub.SendTo(sessionID, "alice-conn", &service.Event{
		Type:      service.EventStarted,
		SessionID: sessionID,
	})

	select {
	case data := <-alice.send:
		var event service.Event
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("Failed to unmarshal event: %v", err)
		}
		if event.Type != service.EventStarted {
			t.Errorf("Expected event %q, got %q", service.EventStarted, event.Type)
		}
		if event.SessionID != sessionID {
			t.Errorf("Expected sessionID %s, got %s", sessionID, event.SessionID)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No event received within timeout")
	}

	select {
	case <-bob.send:
		t.Error("Event addressed to alice was delivered to bob")
	default:
	}
}

// dialTestServer connects a WebSocket client to a hub-backed test server.
func dialTestServer(t *testing.T, hub *Hub) (*websocket.Conn, func()) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r)
	}))

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		server.Close()
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}

	return conn, func() {
		conn.Close()
		server.Close()
	}
}

// readEvent reads messages until one of the wanted type arrives.
func readEvent(t *testing.T, conn *websocket.Conn, eventType string) *service.Event {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read WebSocket message waiting for %q: %v", eventType, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			var event service.Event
			if err := json.Unmarshal([]byte(line), &event); err != nil {
				t.Fatalf("Failed to unmarshal event: %v", err)
			}
			if event.Type == eventType {
				return &event
			}
		}
	}
}

func TestWebSocketJoinFlow(t *testing.T) {
	hub, svc := newTestHub(t)

	info, err := svc.CreateSession(context.Background(), service.CreateSessionRequest{})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	conn, cleanup := dialTestServer(t, hub)
	defer cleanup()

	join := Command{Type: CmdJoin, SessionID: info.ID, PlayerName: "alice"}
	if err := conn.WriteJSON(join); err != nil {
		t.Fatalf("Failed to send join command: %v", err)
	}

	event := readEvent(t, conn, service.EventJoined)
	if event.SessionID != info.ID {
		t.Errorf("Expected sessionID %s, got %s", info.ID, event.SessionID)
	}
	if event.PlayerName != "alice" {
		t.Errorf("Expected player name alice, got %s", event.PlayerName)
	}
	if event.GameState == nil {
		t.Fatal("Joined event carries no game state")
	}
	if len(event.GameState.Players) != 1 {
		t.Errorf("Expected 1 player in state, got %d", len(event.GameState.Players))
	}
}

func TestWebSocketStartAndPlayRejection(t *testing.T) {
	hub, svc := newTestHub(t)

	info, err := svc.CreateSession(context.Background(), service.CreateSessionRequest{})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	conn, cleanup := dialTestServer(t, hub)
	defer cleanup()

	conn.WriteJSON(Command{Type: CmdJoin, SessionID: info.ID, PlayerName: "alice"})
	readEvent(t, conn, service.EventJoined)

	conn.WriteJSON(Command{Type: CmdStart})
	started := readEvent(t, conn, service.EventStarted)
	if started.GameState == nil || !started.GameState.Started {
		t.Fatal("Started event does not carry a started game state")
	}
	if len(started.GameState.YourHand) != 7 {
		t.Errorf("Expected 7 cards dealt, got %d", len(started.GameState.YourHand))
	}

	// Out-of-range index is rejected without touching game state.
	conn.WriteJSON(Command{Type: CmdPlay, CardIndex: 42})
	rejected := readEvent(t, conn, service.EventActionRejected)
	if rejected.Reason == "" {
		t.Error("Rejection carries no reason")
	}

	conn.WriteJSON(Command{Type: CmdState})
	state := readEvent(t, conn, service.EventUpdated)
	if len(state.GameState.YourHand) != 7 {
		t.Errorf("Hand changed after rejected play: %d cards", len(state.GameState.YourHand))
	}
}

func TestWebSocketDisconnectReportsToService(t *testing.T) {
	hub, svc := newTestHub(t)

	info, err := svc.CreateSession(context.Background(), service.CreateSessionRequest{})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	conn, cleanup := dialTestServer(t, hub)
	defer cleanup()

	conn.WriteJSON(Command{Type: CmdJoin, SessionID: info.ID, PlayerName: "alice"})
	readEvent(t, conn, service.EventJoined)

	conn.Close()

	// The seat is held through the grace period, so the player stays in
	// the roster marked disconnected.
	deadline := time.Now().Add(time.Second)
	for {
		sess, err := svc.GetSession(context.Background(), info.ID)
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if len(sess.Players) == 1 && !sess.Players[0].Connected {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Player was never marked disconnected")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

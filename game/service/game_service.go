package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/crazyeights/game/engine"
	"github.com/wricardo/mcp-training/crazyeights/game/rules"
)

// GameService defines all game-related operations. Player-facing
// operations are addressed by session ID plus the acting player's
// connection ID.
type GameService interface {
	// Session management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Player lifecycle
	Join(ctx context.Context, sessionID, playerName, connectionID string) (*JoinResult, error)
	Rejoin(ctx context.Context, sessionID, playerName, connectionID string) (*JoinResult, error)
	Leave(ctx context.Context, sessionID, connectionID string) error
	Disconnect(sessionID, connectionID string)

	// Game actions
	Start(ctx context.Context, sessionID, connectionID string) error
	Restart(ctx context.Context, sessionID, connectionID string) error
	Play(ctx context.Context, sessionID, connectionID string, cardIndex int) (*ActionResult, error)
	Draw(ctx context.Context, sessionID, connectionID string) (*ActionResult, error)

	// State
	GetState(ctx context.Context, sessionID, connectionID string) (*engine.GameView, error)

	// Rule sets
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, name string) (rules.Rules, error)
	SaveConfig(ctx context.Context, name string, r rules.Rules) error

	// SetNotifier wires the outbound event channel. Without one, events
	// are dropped; command results still return to the caller.
	SetNotifier(n Notifier)
}

// SessionManager defines session registry operations.
type SessionManager interface {
	Create(id string, maxPlayers int, r rules.Rules, ruleSet string) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, maxPlayers int, r rules.Rules, ruleSet string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles rule-preset loading.
type ConfigManager interface {
	LoadConfig(name string) (rules.Rules, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() rules.Rules
	DefaultName() string
	SaveConfig(name string, r rules.Rules) error
}

// Notifier delivers an event to one connected client. The service
// fans out per-viewer projections through it; recipients never share
// an event payload.
type Notifier interface {
	SendTo(sessionID, connectionID string, event *Event)
}

// Session is one live game plus its registry metadata. Its mutex
// serializes every validate-mutate-respond sequence against the game;
// sessions lock independently, so commands against different sessions
// proceed in parallel.
type Session struct {
	ID        string
	Game      *engine.Game
	RuleSet   string
	CreatedAt time.Time

	mu           sync.Mutex
	lastAccessed time.Time
}

// Do runs fn with exclusive access to the session's game.
func (s *Session) Do(fn func(g *engine.Game) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.Game)
}

// Touch records the session as accessed now. The timestamp shares the
// session mutex so readers never see a torn time value.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastAccessed = time.Now()
	s.mu.Unlock()
}

// LastAccessed returns when the session was last touched.
func (s *Session) LastAccessed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccessed
}

package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wricardo/mcp-training/crazyeights/game/engine"
	"github.com/wricardo/mcp-training/crazyeights/game/rules"
)

// DefaultGracePeriod is how long a disconnected player's seat is held
// for a rejoin before being removed from the roster.
const DefaultGracePeriod = 30 * time.Second

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager

	notifier    Notifier
	gracePeriod time.Duration

	// One outstanding removal timer per (session, player name);
	// repeated disconnects cancel and replace.
	timerMu     sync.Mutex
	graceTimers map[string]*time.Timer
}

// NewGameService creates a new game service instance.
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions:    sessions,
		configs:     configs,
		gracePeriod: DefaultGracePeriod,
		graceTimers: make(map[string]*time.Timer),
	}
}

// SetNotifier wires the outbound event channel.
func (s *gameServiceImpl) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetGracePeriod overrides the disconnect grace window. Used by tests;
// production keeps DefaultGracePeriod.
func (s *gameServiceImpl) SetGracePeriod(d time.Duration) {
	s.gracePeriod = d
}

// CreateSession creates a new session from a rule preset.
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	r, ruleSet, err := s.resolveRules(req.RuleSet)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Create(req.SessionID, req.MaxPlayers, r, ruleSet)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Printf("Session created: %s (rule set: %s, max players: %d)", sess.ID, ruleSet, sess.Game.MaxPlayers())
	return makeSessionInfo(sess), nil
}

// GetSession retrieves session information.
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return makeSessionInfo(sess), nil
}

// ListSessions returns all active sessions.
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, makeSessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session.
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(sessionID)
}

// Join adds a player to a session, or rejoins their existing seat when
// the exact name is already in the roster. An empty connectionID gets
// a generated one.
func (s *gameServiceImpl) Join(ctx context.Context, sessionID, playerName, connectionID string) (*JoinResult, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	if connectionID == "" {
		connectionID = uuid.NewString()
	}

	var result *JoinResult
	err = sess.Do(func(g *engine.Game) error {
		rejoined, err := g.AddPlayer(connectionID, playerName)
		if err != nil {
			return err
		}

		result = &JoinResult{
			SessionID:  sess.ID,
			PlayerID:   connectionID,
			PlayerName: playerName,
			Rejoined:   rejoined,
			GameState:  g.StateFor(connectionID),
		}

		s.fanOut(g, sess.ID, &Event{Type: EventPlayerList, PlayerName: playerName, Players: g.Players()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// A rejoin within the grace window keeps the seat.
	s.cancelGraceTimer(sess.ID, playerName)
	s.sessions.UpdateLastAccessed(sessionID)

	if result.Rejoined {
		log.Printf("%s rejoined session %s", playerName, sess.ID)
	} else {
		log.Printf("%s joined session %s", playerName, sess.ID)
	}
	return result, nil
}

// Rejoin is Join for a returning connection. The engine treats any
// join with a known name as a rejoin, so this only exists to keep the
// inbound command surface explicit.
func (s *gameServiceImpl) Rejoin(ctx context.Context, sessionID, playerName, connectionID string) (*JoinResult, error) {
	return s.Join(ctx, sessionID, playerName, connectionID)
}

// Leave drops a player from the roster immediately, with no grace
// period, and deletes the session once the roster is empty.
func (s *gameServiceImpl) Leave(ctx context.Context, sessionID, connectionID string) error {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}

	var name string
	var empty bool
	err = sess.Do(func(g *engine.Game) error {
		var removed bool
		name, removed = g.RemovePlayer(connectionID)
		if !removed {
			return engine.ErrPlayerNotFound
		}
		empty = g.IsEmpty()
		if !empty {
			s.fanOut(g, sess.ID, &Event{Type: EventPlayerLeft, PlayerName: name, Players: g.Players()})
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cancelGraceTimer(sess.ID, name)
	log.Printf("%s left session %s", name, sess.ID)

	if empty {
		s.dropSession(sess.ID)
	}
	return nil
}

// Disconnect marks a player's seat as disconnected and schedules a
// removal check after the grace period. The check re-reads live state
// when it fires, so a rejoin in the meantime makes it a no-op.
func (s *gameServiceImpl) Disconnect(sessionID, connectionID string) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return
	}

	var name string
	var ok bool
	sess.Do(func(g *engine.Game) error {
		name, ok = g.MarkDisconnected(connectionID)
		return nil
	})
	if !ok {
		return
	}

	log.Printf("%s disconnected from session %s, waiting for reconnection...", name, sess.ID)

	key := timerKey(sess.ID, name)
	s.timerMu.Lock()
	if t, exists := s.graceTimers[key]; exists {
		t.Stop()
	}
	s.graceTimers[key] = time.AfterFunc(s.gracePeriod, func() {
		s.reapDisconnected(sess.ID, name)
	})
	s.timerMu.Unlock()
}

// Start deals the game. Rejected once the game has started; use
// Restart for a redeal.
func (s *gameServiceImpl) Start(ctx context.Context, sessionID, connectionID string) error {
	return s.deal(sessionID, connectionID, false)
}

// Restart redeals a started game, keeping the roster.
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID, connectionID string) error {
	return s.deal(sessionID, connectionID, true)
}

func (s *gameServiceImpl) deal(sessionID, connectionID string, restart bool) error {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}

	err = sess.Do(func(g *engine.Game) error {
		if !g.HasPlayer(connectionID) {
			return engine.ErrPlayerNotFound
		}
		if restart {
			if !g.IsStarted() {
				return engine.ErrGameNotStarted
			}
			g.Restart()
		} else {
			if g.IsStarted() {
				return engine.ErrSessionAlreadyStarted
			}
			g.Start()
		}

		s.fanOut(g, sess.ID, &Event{Type: EventStarted})
		return nil
	})
	if err != nil {
		return err
	}

	s.sessions.UpdateLastAccessed(sessionID)
	log.Printf("Game started: %s", sess.ID)
	return nil
}

// Play plays a card from the acting player's hand.
func (s *gameServiceImpl) Play(ctx context.Context, sessionID, connectionID string, cardIndex int) (*ActionResult, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	var result *ActionResult
	err = sess.Do(func(g *engine.Game) error {
		action, err := g.PlayCard(connectionID, cardIndex)
		if err != nil {
			return err
		}

		result = &ActionResult{
			Action:    action,
			Winner:    g.Winner(),
			GameState: g.StateFor(connectionID),
		}

		s.fanOut(g, sess.ID, &Event{Type: EventUpdated, Action: action})
		if g.IsOver() {
			s.fanOut(g, sess.ID, &Event{Type: EventOver, Winner: g.Winner()})
			log.Printf("Game over in session %s: %s wins", sess.ID, g.Winner())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return result, nil
}

// Draw draws a card for the acting player and ends their turn.
func (s *gameServiceImpl) Draw(ctx context.Context, sessionID, connectionID string) (*ActionResult, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	var result *ActionResult
	err = sess.Do(func(g *engine.Game) error {
		action, err := g.DrawCard(connectionID)
		if err != nil {
			return err
		}

		result = &ActionResult{
			Action:    action,
			GameState: g.StateFor(connectionID),
		}

		s.fanOut(g, sess.ID, &Event{Type: EventUpdated, Action: action})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return result, nil
}

// GetState returns the viewer's projection of the session.
func (s *gameServiceImpl) GetState(ctx context.Context, sessionID, connectionID string) (*engine.GameView, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	var view *engine.GameView
	sess.Do(func(g *engine.Game) error {
		view = g.StateFor(connectionID)
		return nil
	})

	s.sessions.UpdateLastAccessed(sessionID)
	return view, nil
}

// ListConfigs returns available rule presets.
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific rule preset.
func (s *gameServiceImpl) LoadConfig(ctx context.Context, name string) (rules.Rules, error) {
	return s.configs.LoadConfig(name)
}

// SaveConfig saves a rule preset to disk.
func (s *gameServiceImpl) SaveConfig(ctx context.Context, name string, r rules.Rules) error {
	return s.configs.SaveConfig(name, r)
}

// resolveRules loads the named preset, or the default when name is "".
func (s *gameServiceImpl) resolveRules(name string) (rules.Rules, string, error) {
	if name == "" {
		return s.configs.GetDefault(), s.configs.DefaultName(), nil
	}

	r, err := s.configs.LoadConfig(name)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			if available, listErr := s.configs.ListConfigs(); listErr == nil && len(available) > 0 {
				ids := make([]string, 0, len(available))
				for _, cfg := range available {
					ids = append(ids, cfg.ConfigID)
				}
				return rules.Rules{}, "", fmt.Errorf("rule set '%s' not found. Available rule sets: %v", name, ids)
			}
		}
		return rules.Rules{}, "", fmt.Errorf("failed to load rule set %s: %w", name, err)
	}
	return r, name, nil
}

// fanOut delivers one event to every seat in the roster, projecting
// the game state freshly for each recipient. Callers hold the session
// lock, so every projection is from the same consistent state.
func (s *gameServiceImpl) fanOut(g *engine.Game, sessionID string, base *Event) {
	if s.notifier == nil {
		return
	}
	for _, p := range g.Players() {
		ev := *base
		ev.SessionID = sessionID
		ev.GameState = g.StateFor(p.ID)
		s.notifier.SendTo(sessionID, p.ID, &ev)
	}
}

// reapDisconnected is the grace-timer body. It re-validates the
// player's connected status against live state before acting, making
// duplicate or stale timers harmless.
func (s *gameServiceImpl) reapDisconnected(sessionID, name string) {
	s.timerMu.Lock()
	delete(s.graceTimers, timerKey(sessionID, name))
	s.timerMu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return
	}

	var removed, empty bool
	sess.Do(func(g *engine.Game) error {
		removed = g.RemoveIfDisconnected(name)
		if removed {
			empty = g.IsEmpty()
			if !empty {
				s.fanOut(g, sess.ID, &Event{Type: EventPlayerLeft, PlayerName: name, Players: g.Players()})
			}
		}
		return nil
	})
	if !removed {
		return
	}

	log.Printf("%s removed from session %s after grace period", name, sess.ID)
	if empty {
		s.dropSession(sess.ID)
	}
}

func (s *gameServiceImpl) cancelGraceTimer(sessionID, name string) {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	key := timerKey(sessionID, name)
	if t, exists := s.graceTimers[key]; exists {
		t.Stop()
		delete(s.graceTimers, key)
	}
}

func (s *gameServiceImpl) dropSession(sessionID string) {
	if err := s.sessions.Delete(sessionID); err == nil {
		log.Printf("Session %s deleted (no players)", sessionID)
	}
}

func makeSessionInfo(sess *Session) *SessionInfo {
	info := &SessionInfo{
		ID:             sess.ID,
		RuleSet:        sess.RuleSet,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessed(),
	}
	sess.Do(func(g *engine.Game) error {
		info.MaxPlayers = g.MaxPlayers()
		info.PlayerCount = g.PlayerCount()
		info.Started = g.IsStarted()
		info.GameOver = g.IsOver()
		info.Winner = g.Winner()
		info.Players = g.Players()
		return nil
	})
	return info
}

func timerKey(sessionID, name string) string {
	return sessionID + "/" + name
}

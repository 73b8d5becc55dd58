package engine

import (
	"errors"

	"github.com/wricardo/mcp-training/crazyeights/game/cards"
	"github.com/wricardo/mcp-training/crazyeights/game/rules"
)

// Rule-violation errors. All are ordinary expected outcomes returned
// inline; the engine never panics on bad input.
var (
	ErrSessionFull           = errors.New("session is full")
	ErrSessionAlreadyStarted = errors.New("game already in progress")
	ErrGameNotStarted        = errors.New("game has not started")
	ErrGameFinished          = errors.New("game is over")
	ErrNotYourTurn           = errors.New("not your turn")
	ErrInvalidCardIndex      = errors.New("invalid card")
	ErrIllegalPlay           = errors.New("cannot play this card")
	ErrPlayerNotFound        = errors.New("player not found")
)

// DefaultMaxPlayers is the roster capacity used when none is given.
const DefaultMaxPlayers = 4

// Game is the authoritative state machine for one session. It owns the
// deck, discard pile, every hand, and the turn cursor, and is the only
// code allowed to mutate them. Callers must serialize access (see
// game/service); Game itself performs no locking.
//
// State machine: Lobby (players join) -> Playing (play/draw) ->
// Finished (winner set). Restart returns a Finished game to Playing
// with the roster retained.
type Game struct {
	sessionID  string
	maxPlayers int
	players    []*Player
	deck       []cards.Card
	discard    []cards.Card
	current    int
	started    bool
	gameOver   bool
	winner     string
	rules      rules.Rules

	shuffle func([]cards.Card) []cards.Card
}

// NewGame creates an empty game in the Lobby phase. The capacity is
// capped at what the rule set can deal from a full deck, so a full
// roster can always be dealt hands plus the seed card.
func NewGame(sessionID string, maxPlayers int, r rules.Rules) *Game {
	if maxPlayers < 1 {
		maxPlayers = DefaultMaxPlayers
	}
	if capacity := r.MaxPlayers(); capacity > 0 && maxPlayers > capacity {
		maxPlayers = capacity
	}
	return &Game{
		sessionID:  sessionID,
		maxPlayers: maxPlayers,
		rules:      r,
		shuffle:    cards.Shuffle,
	}
}

// SessionID returns the session identifier this game belongs to.
func (g *Game) SessionID() string { return g.sessionID }

// MaxPlayers returns the roster capacity.
func (g *Game) MaxPlayers() int { return g.maxPlayers }

// Rules returns the rule configuration the game was started with.
func (g *Game) Rules() rules.Rules { return g.rules }

// IsStarted reports whether the game has left the Lobby phase.
func (g *Game) IsStarted() bool { return g.started }

// IsOver reports whether the game has finished.
func (g *Game) IsOver() bool { return g.gameOver }

// Winner returns the winning player's name, or "" while the game runs.
func (g *Game) Winner() string { return g.winner }

// IsFull reports whether the roster is at capacity.
func (g *Game) IsFull() bool { return len(g.players) >= g.maxPlayers }

// IsEmpty reports whether the roster is empty.
func (g *Game) IsEmpty() bool { return len(g.players) == 0 }

// PlayerCount returns the roster size.
func (g *Game) PlayerCount() int { return len(g.players) }

// DeckCount returns the number of undrawn cards.
func (g *Game) DeckCount() int { return len(g.deck) }

// DiscardCount returns the size of the discard pile.
func (g *Game) DiscardCount() int { return len(g.discard) }

// TotalCards returns deck + discard + all hands. While a game is in
// progress this is always exactly cards.DeckSize.
func (g *Game) TotalCards() int {
	total := len(g.deck) + len(g.discard)
	for _, p := range g.players {
		total += len(p.Hand)
	}
	return total
}

// TopCard returns the top of the discard pile, if any.
func (g *Game) TopCard() (cards.Card, bool) {
	if len(g.discard) == 0 {
		return cards.Card{}, false
	}
	return g.discard[len(g.discard)-1], true
}

// CurrentPlayer returns the player whose turn it is, or nil for an
// empty roster.
func (g *Game) CurrentPlayer() *Player {
	if len(g.players) == 0 {
		return nil
	}
	return g.players[g.current%len(g.players)]
}

// HasPlayer reports whether a player with the given connection ID is
// in the roster.
func (g *Game) HasPlayer(id string) bool {
	return g.findByID(id) != nil
}

// PlayerName returns the name for a connection ID.
func (g *Game) PlayerName(id string) (string, bool) {
	if p := g.findByID(id); p != nil {
		return p.Name, true
	}
	return "", false
}

// Players returns public summaries of the roster in join order.
func (g *Game) Players() []PlayerSummary {
	summaries := make([]PlayerSummary, 0, len(g.players))
	for _, p := range g.players {
		summaries = append(summaries, PlayerSummary{
			ID:        p.ID,
			Name:      p.Name,
			CardCount: len(p.Hand),
			Connected: p.Connected,
		})
	}
	return summaries
}

// AddPlayer adds a player to the roster, or rejoins an existing seat.
//
// A player whose exact name is already in the roster is treated as
// rejoining: the seat's connection ID is overwritten, the seat is
// marked connected, and the hand is untouched. Rejoin is accepted in
// every phase. New names are rejected once the game has started
// (the roster is frozen) or when the roster is at capacity.
func (g *Game) AddPlayer(id, name string) (rejoined bool, err error) {
	if p := g.findByName(name); p != nil {
		p.ID = id
		p.Connected = true
		return true, nil
	}

	if g.started {
		return false, ErrSessionAlreadyStarted
	}
	if g.IsFull() {
		return false, ErrSessionFull
	}

	g.players = append(g.players, &Player{
		ID:        id,
		Name:      name,
		Hand:      []cards.Card{},
		Connected: true,
	})
	return false, nil
}

// RemovePlayer drops the player with the given connection ID from the
// roster and re-derives the turn cursor over the remaining seats.
func (g *Game) RemovePlayer(id string) (name string, removed bool) {
	for i, p := range g.players {
		if p.ID == id {
			g.players = append(g.players[:i], g.players[i+1:]...)
			g.clampTurn()
			return p.Name, true
		}
	}
	return "", false
}

// MarkDisconnected flags the player with the given connection ID as
// disconnected, keeping the seat for a possible rejoin.
func (g *Game) MarkDisconnected(id string) (name string, ok bool) {
	if p := g.findByID(id); p != nil {
		p.Connected = false
		return p.Name, true
	}
	return "", false
}

// RemoveIfDisconnected drops the named player only if they are still
// marked disconnected. It re-reads live state, so a grace-period timer
// that fires after a rejoin becomes a no-op.
func (g *Game) RemoveIfDisconnected(name string) bool {
	p := g.findByName(name)
	if p == nil || p.Connected {
		return false
	}
	_, removed := g.RemovePlayer(p.ID)
	return removed
}

// Start deals a fresh game: a newly shuffled 108-card deck, an
// InitialHandSize hand to each player in join order from the deck's
// front, and one seed card moved to the discard pile. The turn cursor
// returns to the first player.
//
// Starting with zero players is a defined degenerate case: no hands
// are dealt but the game still flips to Playing.
func (g *Game) Start() {
	g.deck = g.shuffle(cards.BuildDeck())
	g.discard = nil

	handSize := g.rules.InitialHandSize
	for _, p := range g.players {
		// The capacity cap in NewGame keeps a full roster dealable;
		// if a hand still cannot be covered while reserving the seed
		// card, the seat gets an empty hand instead of a fault.
		if len(g.deck) <= handSize {
			p.Hand = []cards.Card{}
			continue
		}
		p.Hand = append([]cards.Card{}, g.deck[:handSize]...)
		g.deck = g.deck[handSize:]
	}

	// Seed the discard pile from the deck's end.
	seed := g.deck[len(g.deck)-1]
	g.deck = g.deck[:len(g.deck)-1]
	g.discard = append(g.discard, seed)

	g.started = true
	g.gameOver = false
	g.winner = ""
	g.current = 0
}

// Restart redeals while preserving the roster. It is the same
// transition as Start; the split exists so callers can gate the two
// differently.
func (g *Game) Restart() {
	g.Start()
}

// PlayCard plays the card at cardIndex from the acting player's hand
// onto the discard pile.
//
// Validation order: phase -> player exists -> turn -> index ->
// playability. Any failure leaves the game byte-for-byte unchanged.
// A play that empties the hand finishes the game without advancing the
// turn; otherwise the turn advances by one.
func (g *Game) PlayCard(playerID string, cardIndex int) (*Action, error) {
	if !g.started {
		return nil, ErrGameNotStarted
	}
	if g.gameOver {
		return nil, ErrGameFinished
	}

	p := g.findByID(playerID)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	if g.CurrentPlayer() != p {
		return nil, ErrNotYourTurn
	}
	if cardIndex < 0 || cardIndex >= len(p.Hand) {
		return nil, ErrInvalidCardIndex
	}

	card := p.Hand[cardIndex]
	top, _ := g.TopCard()
	if !g.rules.Playable(card, top) {
		return nil, ErrIllegalPlay
	}

	p.Hand = append(p.Hand[:cardIndex], p.Hand[cardIndex+1:]...)
	g.discard = append(g.discard, card)

	action := &Action{Type: "play", Player: p.Name, Card: &card}

	if len(p.Hand) == 0 {
		g.gameOver = true
		g.winner = p.Name
		return action, nil
	}

	g.advanceTurn()
	return action, nil
}

// DrawCard moves one card from the deck's end into the acting player's
// hand and ends their turn.
//
// An empty deck is replenished by shuffling the discard pile minus its
// top card, which stays behind as the new one-card discard pile. If no
// card exists anywhere to draw, the turn still ends without dealing;
// that is a defined degenerate case, not an error.
func (g *Game) DrawCard(playerID string) (*Action, error) {
	if !g.started {
		return nil, ErrGameNotStarted
	}
	if g.gameOver {
		return nil, ErrGameFinished
	}

	p := g.findByID(playerID)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	if g.CurrentPlayer() != p {
		return nil, ErrNotYourTurn
	}

	if len(g.deck) == 0 && len(g.discard) > 0 {
		top := g.discard[len(g.discard)-1]
		g.deck = g.shuffle(g.discard[:len(g.discard)-1])
		g.discard = []cards.Card{top}
	}

	if len(g.deck) > 0 {
		card := g.deck[len(g.deck)-1]
		g.deck = g.deck[:len(g.deck)-1]
		p.Hand = append(p.Hand, card)
	}

	g.advanceTurn()
	return &Action{Type: "draw", Player: p.Name}, nil
}

// StateFor produces the per-viewer projection of the game. Every
// player's card count is public; only the viewer's own hand is
// revealed. An unknown viewer sees an empty hand.
func (g *Game) StateFor(viewerID string) *GameView {
	view := &GameView{
		SessionID:  g.sessionID,
		MaxPlayers: g.maxPlayers,
		Started:    g.started,
		GameOver:   g.gameOver,
		Winner:     g.winner,
		Players:    g.Players(),
		YourHand:   []cards.Card{},
		DeckCount:  len(g.deck),
	}

	if p := g.findByID(viewerID); p != nil {
		view.YourHand = append([]cards.Card{}, p.Hand...)
	}
	if top, ok := g.TopCard(); ok {
		view.TopCard = &top
	}
	if cp := g.CurrentPlayer(); cp != nil {
		view.CurrentPlayerID = cp.ID
	}

	return view
}

func (g *Game) findByID(id string) *Player {
	for _, p := range g.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *Game) findByName(name string) *Player {
	for _, p := range g.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (g *Game) advanceTurn() {
	g.current = (g.current + 1) % len(g.players)
}

// clampTurn re-derives the turn cursor after a roster change so it
// stays a valid index into the remaining seats.
func (g *Game) clampTurn() {
	if len(g.players) == 0 {
		g.current = 0
		return
	}
	g.current = g.current % len(g.players)
}

package engine

import (
	"errors"
	"testing"

	"github.com/wricardo/mcp-training/crazyeights/game/cards"
	"github.com/wricardo/mcp-training/crazyeights/game/rules"
)

// identityShuffle keeps deck order deterministic for tests.
func identityShuffle(deck []cards.Card) []cards.Card {
	out := make([]cards.Card, len(deck))
	copy(out, deck)
	return out
}

func newTestGame(t *testing.T, playerNames ...string) *Game {
	t.Helper()
	g := NewGame("TEST01", 4, rules.Default())
	g.shuffle = identityShuffle
	for i, name := range playerNames {
		if _, err := g.AddPlayer(playerID(i), name); err != nil {
			t.Fatalf("AddPlayer(%s): %v", name, err)
		}
	}
	return g
}

func playerID(i int) string {
	return string(rune('a'+i)) + "-conn"
}

func TestNewGameDefaults(t *testing.T) {
	g := NewGame("ROOM42", 0, rules.Default())

	if g.MaxPlayers() != DefaultMaxPlayers {
		t.Errorf("Expected default capacity %d, got %d", DefaultMaxPlayers, g.MaxPlayers())
	}
	if g.SessionID() != "ROOM42" {
		t.Errorf("Expected session ID ROOM42, got %s", g.SessionID())
	}
	if g.IsStarted() || g.IsOver() {
		t.Error("New game should be in the lobby phase")
	}
	if !g.IsEmpty() {
		t.Error("New game should have an empty roster")
	}
}

func TestAddPlayer(t *testing.T) {
	g := newTestGame(t)

	rejoined, err := g.AddPlayer("conn-1", "alice")
	if err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	if rejoined {
		t.Error("First join should not count as a rejoin")
	}
	if g.PlayerCount() != 1 {
		t.Errorf("Expected 1 player, got %d", g.PlayerCount())
	}
	if !g.HasPlayer("conn-1") {
		t.Error("Expected roster to contain conn-1")
	}
	if name, ok := g.PlayerName("conn-1"); !ok || name != "alice" {
		t.Errorf("PlayerName = %q, %v", name, ok)
	}
}

func TestAddPlayerSessionFull(t *testing.T) {
	g := NewGame("TEST01", 2, rules.Default())
	g.shuffle = identityShuffle
	g.AddPlayer("c1", "alice")
	g.AddPlayer("c2", "bob")

	_, err := g.AddPlayer("c3", "carol")
	if !errors.Is(err, ErrSessionFull) {
		t.Errorf("Expected ErrSessionFull, got %v", err)
	}

	// A rejoin by name still works at capacity
	rejoined, err := g.AddPlayer("c4", "alice")
	if err != nil || !rejoined {
		t.Errorf("Expected rejoin at capacity, got rejoined=%v err=%v", rejoined, err)
	}
}

func TestRosterFrozenAfterStart(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	g.Start()

	_, err := g.AddPlayer("new-conn", "carol")
	if !errors.Is(err, ErrSessionAlreadyStarted) {
		t.Errorf("Expected ErrSessionAlreadyStarted, got %v", err)
	}
}

func TestRejoinPreservesHand(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	g.Start()

	before := g.StateFor(playerID(0)).YourHand
	if len(before) != 7 {
		t.Fatalf("Expected 7 cards before rejoin, got %d", len(before))
	}

	g.MarkDisconnected(playerID(0))
	rejoined, err := g.AddPlayer("fresh-conn", "alice")
	if err != nil {
		t.Fatalf("Rejoin: %v", err)
	}
	if !rejoined {
		t.Error("Expected rejoin to be reported")
	}

	// Hand follows the name to the new connection ID
	after := g.StateFor("fresh-conn").YourHand
	if len(after) != 7 {
		t.Fatalf("Expected 7 cards after rejoin, got %d", len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("Hand changed at index %d after rejoin", i)
		}
	}
	if g.HasPlayer(playerID(0)) {
		t.Error("Old connection ID should be replaced on rejoin")
	}
}

func TestStartDealsHands(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	g.Start()

	if !g.IsStarted() {
		t.Fatal("Expected game to be started")
	}
	for _, p := range g.Players() {
		if p.CardCount != 7 {
			t.Errorf("Player %s: expected 7 cards, got %d", p.Name, p.CardCount)
		}
	}
	if g.DiscardCount() != 1 {
		t.Errorf("Expected 1 seed card in discard, got %d", g.DiscardCount())
	}
	if g.DeckCount() != 93 { // 108 - 14 - 1
		t.Errorf("Expected 93 cards left in deck, got %d", g.DeckCount())
	}
	if g.TotalCards() != cards.DeckSize {
		t.Errorf("Expected %d total cards, got %d", cards.DeckSize, g.TotalCards())
	}
	if cp := g.CurrentPlayer(); cp == nil || cp.Name != "alice" {
		t.Error("Expected first joiner to act first")
	}
}

func TestStartWithZeroPlayers(t *testing.T) {
	g := newTestGame(t)
	g.Start()

	if !g.IsStarted() {
		t.Error("Expected game to start even with no players")
	}
	if g.DiscardCount() != 1 {
		t.Errorf("Expected seed card, got %d in discard", g.DiscardCount())
	}
	if g.DeckCount() != 107 {
		t.Errorf("Expected 107 cards in deck, got %d", g.DeckCount())
	}
}

func TestPlayCardValidationOrder(t *testing.T) {
	g := newTestGame(t, "alice", "bob")

	// Phase gate comes first
	if _, err := g.PlayCard(playerID(0), 0); !errors.Is(err, ErrGameNotStarted) {
		t.Errorf("Expected ErrGameNotStarted, got %v", err)
	}

	g.Start()

	// Unknown player
	if _, err := g.PlayCard("ghost", 0); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("Expected ErrPlayerNotFound, got %v", err)
	}

	// Out of turn; even with a bad index, turn is checked first
	if _, err := g.PlayCard(playerID(1), 999); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("Expected ErrNotYourTurn, got %v", err)
	}

	// Bad index for the current player
	if _, err := g.PlayCard(playerID(0), 7); !errors.Is(err, ErrInvalidCardIndex) {
		t.Errorf("Expected ErrInvalidCardIndex, got %v", err)
	}
	if _, err := g.PlayCard(playerID(0), -1); !errors.Is(err, ErrInvalidCardIndex) {
		t.Errorf("Expected ErrInvalidCardIndex, got %v", err)
	}
}

func TestPlayCardIllegalLeavesStateUnchanged(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	g.Start()

	// Force a known top card that matches nothing in alice's hand.
	// Alice holds A-7 of hearts with the identity shuffle.
	g.discard = []cards.Card{cards.NewRegular(cards.Spades, "K")}

	handBefore := append([]cards.Card{}, g.players[0].Hand...)
	deckBefore := g.DeckCount()
	discardBefore := g.DiscardCount()
	turnBefore := g.CurrentPlayer().Name

	_, err := g.PlayCard(playerID(0), 0) // A♥ on K♠
	if !errors.Is(err, ErrIllegalPlay) {
		t.Fatalf("Expected ErrIllegalPlay, got %v", err)
	}

	if len(g.players[0].Hand) != len(handBefore) {
		t.Error("Rejected play must not change the hand")
	}
	for i := range handBefore {
		if g.players[0].Hand[i] != handBefore[i] {
			t.Errorf("Hand changed at index %d after rejected play", i)
		}
	}
	if g.DeckCount() != deckBefore || g.DiscardCount() != discardBefore {
		t.Error("Rejected play must not move cards")
	}
	if g.CurrentPlayer().Name != turnBefore {
		t.Error("Rejected play must not advance the turn")
	}
}

func TestPlayCardSuccess(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	g.Start()

	// Seed is the black joker with the identity shuffle, so any card plays.
	played := g.players[0].Hand[2]
	action, err := g.PlayCard(playerID(0), 2)
	if err != nil {
		t.Fatalf("PlayCard: %v", err)
	}

	if action.Type != "play" || action.Player != "alice" {
		t.Errorf("Unexpected action: %+v", action)
	}
	if action.Card == nil || *action.Card != played {
		t.Errorf("Expected action card %s", played)
	}
	if top, _ := g.TopCard(); top != played {
		t.Errorf("Expected %s on top of discard, got %s", played, top)
	}
	if len(g.players[0].Hand) != 6 {
		t.Errorf("Expected 6 cards left, got %d", len(g.players[0].Hand))
	}
	if g.CurrentPlayer().Name != "bob" {
		t.Error("Expected turn to pass to bob")
	}
	if g.TotalCards() != cards.DeckSize {
		t.Errorf("Card conservation violated: %d total", g.TotalCards())
	}
}

func TestPlayLastCardWins(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	g.Start()

	// Trim alice down to one playable card.
	g.players[0].Hand = g.players[0].Hand[:1]
	g.discard = []cards.Card{cards.NewJoker(cards.Red)}

	action, err := g.PlayCard(playerID(0), 0)
	if err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	if action == nil {
		t.Fatal("Expected winning action")
	}

	if !g.IsOver() {
		t.Error("Expected game over after last card")
	}
	if g.Winner() != "alice" {
		t.Errorf("Expected alice to win, got %q", g.Winner())
	}
	// Turn cursor freezes on the winner
	if g.CurrentPlayer().Name != "alice" {
		t.Error("Winning play must not advance the turn")
	}

	// The table is frozen for further actions
	if _, err := g.PlayCard(playerID(1), 0); !errors.Is(err, ErrGameFinished) {
		t.Errorf("Expected ErrGameFinished, got %v", err)
	}
	if _, err := g.DrawCard(playerID(1)); !errors.Is(err, ErrGameFinished) {
		t.Errorf("Expected ErrGameFinished, got %v", err)
	}
}

func TestDrawCard(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	g.Start()

	deckBefore := g.DeckCount()
	expected := g.deck[len(g.deck)-1]

	action, err := g.DrawCard(playerID(0))
	if err != nil {
		t.Fatalf("DrawCard: %v", err)
	}
	if action.Type != "draw" || action.Player != "alice" {
		t.Errorf("Unexpected action: %+v", action)
	}
	if action.Card != nil {
		t.Error("Draw actions must not reveal the drawn card")
	}

	if g.DeckCount() != deckBefore-1 {
		t.Errorf("Expected deck to shrink by one, got %d", g.DeckCount())
	}
	hand := g.players[0].Hand
	if len(hand) != 8 || hand[len(hand)-1] != expected {
		t.Error("Expected drawn card appended to the hand")
	}
	if g.CurrentPlayer().Name != "bob" {
		t.Error("Expected draw to end the turn")
	}
	if g.TotalCards() != cards.DeckSize {
		t.Errorf("Card conservation violated: %d total", g.TotalCards())
	}
}

func TestDrawCardValidation(t *testing.T) {
	g := newTestGame(t, "alice", "bob")

	if _, err := g.DrawCard(playerID(0)); !errors.Is(err, ErrGameNotStarted) {
		t.Errorf("Expected ErrGameNotStarted, got %v", err)
	}

	g.Start()

	if _, err := g.DrawCard("ghost"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("Expected ErrPlayerNotFound, got %v", err)
	}
	if _, err := g.DrawCard(playerID(1)); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("Expected ErrNotYourTurn, got %v", err)
	}
}

func TestDrawReshufflesDiscard(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	g.Start()

	// Exhaust the deck and pile up a discard.
	top := cards.NewRegular(cards.Hearts, "3")
	g.deck = nil
	g.discard = []cards.Card{
		cards.NewRegular(cards.Spades, "9"),
		cards.NewRegular(cards.Clubs, "J"),
		top,
	}

	if _, err := g.DrawCard(playerID(0)); err != nil {
		t.Fatalf("DrawCard: %v", err)
	}

	// Top card stays; the two below it become the new deck, minus the draw.
	if got, _ := g.TopCard(); got != top {
		t.Errorf("Reshuffle must keep the top card, got %s", got)
	}
	if g.DiscardCount() != 1 {
		t.Errorf("Expected discard reduced to top card, got %d", g.DiscardCount())
	}
	if g.DeckCount() != 1 {
		t.Errorf("Expected 1 card left in deck after reshuffle+draw, got %d", g.DeckCount())
	}
	if len(g.players[0].Hand) != 8 {
		t.Errorf("Expected drawn card in hand, got %d cards", len(g.players[0].Hand))
	}
}

func TestDrawFromEmptyTableStillEndsTurn(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	g.Start()

	// Nothing anywhere to draw: empty deck, only the top card in discard.
	g.deck = nil
	g.discard = []cards.Card{cards.NewRegular(cards.Hearts, "3")}

	handBefore := len(g.players[0].Hand)
	action, err := g.DrawCard(playerID(0))
	if err != nil {
		t.Fatalf("DrawCard: %v", err)
	}
	if action == nil {
		t.Fatal("Expected a draw action even with no card dealt")
	}
	if len(g.players[0].Hand) != handBefore {
		t.Error("Expected no card dealt from an empty table")
	}
	if g.CurrentPlayer().Name != "bob" {
		t.Error("Degenerate draw must still end the turn")
	}
}

func TestRestart(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	g.Start()

	// Finish the game
	g.players[0].Hand = g.players[0].Hand[:1]
	g.discard = []cards.Card{cards.NewJoker(cards.Red)}
	if _, err := g.PlayCard(playerID(0), 0); err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	if !g.IsOver() {
		t.Fatal("Expected game over")
	}

	g.Restart()

	if g.IsOver() {
		t.Error("Restart should clear game over")
	}
	if g.Winner() != "" {
		t.Errorf("Restart should clear the winner, got %q", g.Winner())
	}
	if g.PlayerCount() != 2 {
		t.Errorf("Restart should keep the roster, got %d players", g.PlayerCount())
	}
	for _, p := range g.Players() {
		if p.CardCount != 7 {
			t.Errorf("Player %s: expected a fresh 7-card hand, got %d", p.Name, p.CardCount)
		}
	}
	if cp := g.CurrentPlayer(); cp == nil || cp.Name != "alice" {
		t.Error("Restart should reset the turn to the first player")
	}
}

func TestRemovePlayerClampsTurn(t *testing.T) {
	g := newTestGame(t, "alice", "bob", "carol")
	g.Start()

	// Advance to carol
	g.DrawCard(playerID(0))
	g.DrawCard(playerID(1))
	if g.CurrentPlayer().Name != "carol" {
		t.Fatalf("Expected carol's turn, got %s", g.CurrentPlayer().Name)
	}

	name, removed := g.RemovePlayer(playerID(2))
	if !removed || name != "carol" {
		t.Fatalf("RemovePlayer = %q, %v", name, removed)
	}

	// Cursor wraps back onto the remaining seats
	if cp := g.CurrentPlayer(); cp == nil || cp.Name != "alice" {
		t.Errorf("Expected turn to wrap to alice, got %v", cp)
	}
	if g.PlayerCount() != 2 {
		t.Errorf("Expected 2 players, got %d", g.PlayerCount())
	}
}

func TestRemovePlayerUnknown(t *testing.T) {
	g := newTestGame(t, "alice")
	if _, removed := g.RemovePlayer("ghost"); removed {
		t.Error("Expected removal of unknown connection to be a no-op")
	}
}

func TestRemoveIfDisconnected(t *testing.T) {
	g := newTestGame(t, "alice", "bob")

	// Connected player is not reaped
	if g.RemoveIfDisconnected("alice") {
		t.Error("Connected player must not be reaped")
	}

	g.MarkDisconnected(playerID(0))
	if !g.RemoveIfDisconnected("alice") {
		t.Error("Disconnected player should be reaped")
	}
	if g.PlayerCount() != 1 {
		t.Errorf("Expected 1 player left, got %d", g.PlayerCount())
	}

	// Unknown name is a no-op
	if g.RemoveIfDisconnected("ghost") {
		t.Error("Unknown name must not be reaped")
	}
}

func TestMarkDisconnected(t *testing.T) {
	g := newTestGame(t, "alice")

	name, ok := g.MarkDisconnected(playerID(0))
	if !ok || name != "alice" {
		t.Fatalf("MarkDisconnected = %q, %v", name, ok)
	}
	if g.Players()[0].Connected {
		t.Error("Expected player to show as disconnected")
	}

	if _, ok := g.MarkDisconnected("ghost"); ok {
		t.Error("Expected unknown connection to report not found")
	}
}

func TestStateForHidesOtherHands(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	g.Start()

	view := g.StateFor(playerID(0))

	if len(view.YourHand) != 7 {
		t.Errorf("Expected viewer's own 7 cards, got %d", len(view.YourHand))
	}
	if len(view.Players) != 2 {
		t.Fatalf("Expected 2 player summaries, got %d", len(view.Players))
	}
	for _, p := range view.Players {
		if p.CardCount != 7 {
			t.Errorf("Player %s: expected public count 7, got %d", p.Name, p.CardCount)
		}
	}
	if view.TopCard == nil {
		t.Error("Expected top card in view")
	}
	if view.CurrentPlayerID != playerID(0) {
		t.Errorf("Expected current player %s, got %s", playerID(0), view.CurrentPlayerID)
	}
	if view.DeckCount != 93 {
		t.Errorf("Expected deck count 93, got %d", view.DeckCount)
	}
}

func TestStateForUnknownViewer(t *testing.T) {
	g := newTestGame(t, "alice", "bob")
	g.Start()

	view := g.StateFor("spectator")
	if view.YourHand == nil {
		t.Error("Expected empty (non-nil) hand for unknown viewer")
	}
	if len(view.YourHand) != 0 {
		t.Errorf("Unknown viewer must not see a hand, got %d cards", len(view.YourHand))
	}
	if len(view.Players) != 2 {
		t.Errorf("Expected public roster for spectators, got %d", len(view.Players))
	}
}

func TestNewGameCapsCapacityToDealableRoster(t *testing.T) {
	// Default 7-card hands can deal at most (108-1)/7 = 15 players.
	g := NewGame("BIG001", 20, rules.Default())
	g.shuffle = identityShuffle

	if g.MaxPlayers() != 15 {
		t.Fatalf("Expected capacity capped at 15, got %d", g.MaxPlayers())
	}

	for i := 0; i < 15; i++ {
		if _, err := g.AddPlayer(playerID(i), "player"+string(rune('a'+i))); err != nil {
			t.Fatalf("AddPlayer %d: %v", i, err)
		}
	}
	if _, err := g.AddPlayer("overflow-conn", "overflow"); !errors.Is(err, ErrSessionFull) {
		t.Fatalf("Expected ErrSessionFull past the dealable cap, got %v", err)
	}

	g.Start()

	for _, p := range g.Players() {
		if p.CardCount != 7 {
			t.Errorf("Player %s: expected 7 cards, got %d", p.Name, p.CardCount)
		}
	}
	if g.DiscardCount() != 1 {
		t.Errorf("Expected seed card, got %d in discard", g.DiscardCount())
	}
	if g.DeckCount() != 2 { // 108 - 15*7 - 1
		t.Errorf("Expected 2 cards left in deck, got %d", g.DeckCount())
	}
	if g.TotalCards() != cards.DeckSize {
		t.Errorf("Card conservation violated: %d total", g.TotalCards())
	}
}

func TestStartFullRosterAlwaysKeepsSeed(t *testing.T) {
	// 4-card hands: 27 players would consume the full deck with no
	// seed left; the cap admits only (108-1)/4 = 26.
	r := rules.Default()
	r.InitialHandSize = 4

	g := NewGame("TIGHT1", 27, r)
	g.shuffle = identityShuffle

	if g.MaxPlayers() != 26 {
		t.Fatalf("Expected capacity capped at 26, got %d", g.MaxPlayers())
	}
	for i := 0; i < 26; i++ {
		if _, err := g.AddPlayer(playerID(i), "seat"+string(rune('a'+i))); err != nil {
			t.Fatalf("AddPlayer %d: %v", i, err)
		}
	}

	g.Start()

	for _, p := range g.Players() {
		if p.CardCount != 4 {
			t.Errorf("Player %s: expected 4 cards, got %d", p.Name, p.CardCount)
		}
	}
	if g.DiscardCount() != 1 {
		t.Errorf("Expected seed card, got %d in discard", g.DiscardCount())
	}
	if g.DeckCount() != 3 { // 108 - 26*4 - 1
		t.Errorf("Expected 3 cards left in deck, got %d", g.DeckCount())
	}
	if g.TotalCards() != cards.DeckSize {
		t.Errorf("Card conservation violated: %d total", g.TotalCards())
	}
}

func TestStartOversizedHandDealsEmptyHands(t *testing.T) {
	// A hand size no deck can cover bypasses the capacity cap
	// (MaxPlayers is 0). Start must not fault; seats get empty hands
	// and the seed card is still placed.
	r := rules.Default()
	r.InitialHandSize = 200

	g := NewGame("HUGE01", 2, r)
	g.shuffle = identityShuffle
	g.AddPlayer(playerID(0), "alice")
	g.AddPlayer(playerID(1), "bob")

	g.Start()

	for _, p := range g.Players() {
		if p.CardCount != 0 {
			t.Errorf("Player %s: expected empty hand, got %d cards", p.Name, p.CardCount)
		}
	}
	if g.DiscardCount() != 1 {
		t.Errorf("Expected seed card, got %d in discard", g.DiscardCount())
	}
	if g.DeckCount() != 107 {
		t.Errorf("Expected 107 cards in deck, got %d", g.DeckCount())
	}
	if g.TotalCards() != cards.DeckSize {
		t.Errorf("Card conservation violated: %d total", g.TotalCards())
	}
}

func TestCardConservationOverFullRound(t *testing.T) {
	g := newTestGame(t, "alice", "bob", "carol")
	g.Start()

	for turn := 0; turn < 30 && !g.IsOver(); turn++ {
		cp := g.CurrentPlayer()
		id := cp.ID

		// Try each card; fall back to drawing.
		played := false
		for i := range cp.Hand {
			if _, err := g.PlayCard(id, i); err == nil {
				played = true
				break
			} else if !errors.Is(err, ErrIllegalPlay) {
				t.Fatalf("Unexpected error: %v", err)
			}
		}
		if !played {
			if _, err := g.DrawCard(id); err != nil {
				t.Fatalf("DrawCard: %v", err)
			}
		}

		if g.TotalCards() != cards.DeckSize {
			t.Fatalf("Card conservation violated on turn %d: %d total", turn, g.TotalCards())
		}
	}
}

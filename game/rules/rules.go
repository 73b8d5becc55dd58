package rules

import (
	"errors"
	"fmt"

	"github.com/wricardo/mcp-training/crazyeights/game/cards"
)

var ErrInvalidRules = errors.New("invalid rules")

// Rules is the immutable rule configuration for one game. It is
// constructed once when a session starts and threaded explicitly into
// every legality check; nothing reads rule state from globals.
//
// Only MatchSuitOrRank, InitialHandSize, and EightIsWild affect the
// base engine. The remaining flags are enumerated extension points for
// house rules layered on top of the engine.
type Rules struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`

	// Basic rules
	MatchSuitOrRank bool `json:"match_suit_or_rank"`
	InitialHandSize int  `json:"initial_hand_size"`

	// Special card rules (extension points)
	EightIsWild      bool `json:"eight_is_wild"`
	SkipCard         bool `json:"skip_card"`
	ReverseCard      bool `json:"reverse_card"`
	DrawTwoCard      bool `json:"draw_two_card"`
	WildCard         bool `json:"wild_card"`
	WildDrawFourCard bool `json:"wild_draw_four_card"`

	// Gameplay rules (extension points)
	DrawUntilPlayable bool `json:"draw_until_playable"`
	StackDrawCards    bool `json:"stack_draw_cards"`
	JumpIn            bool `json:"jump_in"`
}

// Default returns the base rule set: match suit or rank, seven-card
// starting hands, all house rules disabled.
func Default() Rules {
	return Rules{
		Name:            "classic",
		Description:     "Match the suit or rank of the top card",
		MatchSuitOrRank: true,
		InitialHandSize: 7,
	}
}

// Validate checks the rule configuration for internal consistency.
func (r Rules) Validate() error {
	if r.InitialHandSize < 1 {
		return fmt.Errorf("%w: initial_hand_size must be positive, got %d", ErrInvalidRules, r.InitialHandSize)
	}
	// A two-player game must leave at least the seed card in the deck.
	if 2*r.InitialHandSize+1 > cards.DeckSize {
		return fmt.Errorf("%w: initial_hand_size %d cannot deal two hands from a %d-card deck", ErrInvalidRules, r.InitialHandSize, cards.DeckSize)
	}
	return nil
}

// MaxPlayers returns the largest roster this rule set can deal to from
// a full deck while keeping one seed card for the discard pile.
func (r Rules) MaxPlayers() int {
	if r.InitialHandSize < 1 {
		return 0
	}
	return (cards.DeckSize - 1) / r.InitialHandSize
}

// Matcher is a single legality predicate: it reports whether card may
// be played on top of top. Matchers never see jokers; joker handling is
// fixed in Playable.
type Matcher func(card, top cards.Card) bool

// MatchSuitOrRank is the base Crazy Eights predicate.
func MatchSuitOrRank(card, top cards.Card) bool {
	return card.Suit == top.Suit || card.Rank == top.Rank
}

// EightIsWild makes any 8 playable regardless of the top card.
func EightIsWild(card, top cards.Card) bool {
	return card.Rank == "8"
}

// Matchers returns the predicate set enabled by this rule configuration.
// Additional house rules compose by contributing matchers here rather
// than by branching inside Playable.
func (r Rules) Matchers() []Matcher {
	var ms []Matcher
	if r.MatchSuitOrRank {
		ms = append(ms, MatchSuitOrRank)
	}
	if r.EightIsWild {
		ms = append(ms, EightIsWild)
	}
	return ms
}

// Playable reports whether card may legally be played on top of top.
// A joker is always playable, and any card is playable on a joker;
// otherwise legality is the disjunction of the enabled matchers.
func (r Rules) Playable(card, top cards.Card) bool {
	if card.IsJoker() || top.IsJoker() {
		return true
	}
	for _, match := range r.Matchers() {
		if match(card, top) {
			return true
		}
	}
	return false
}

// Describe returns a short human-readable description of a rule key,
// for UI and tooling display.
func Describe(key string) string {
	descriptions := map[string]string{
		"match_suit_or_rank":  "Play a card matching the suit OR rank",
		"initial_hand_size":   "Starting hand size for each player",
		"eight_is_wild":       "Number 8 acts as a wild card",
		"skip_card":           "Skip the next player's turn",
		"reverse_card":        "Reverse the play direction",
		"draw_two_card":       "Force next player to draw 2 cards",
		"wild_card":           "Wild cards can be played on anything",
		"wild_draw_four_card": "Wild card + draw 4 combo",
		"draw_until_playable": "Draw cards until you can play one",
		"stack_draw_cards":    "Stack multiple draw cards together",
		"jump_in":             "Jump in with an exact matching card",
	}

	if d, ok := descriptions[key]; ok {
		return d
	}
	return key
}

package cards

import (
	"fmt"
	"math/rand"
)

// Type distinguishes regular suited cards from jokers.
type Type string

const (
	Regular Type = "regular"
	Joker   Type = "joker"
)

// Suit is one of the four standard playing card suits.
type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

// Color is the display color of a card, derived from its suit for
// regular cards and assigned directly for jokers.
type Color string

const (
	Red   Color = "red"
	Black Color = "black"
)

// Suits lists the four suits in deterministic deck-construction order.
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

// Ranks lists the thirteen ranks in deterministic deck-construction order.
var Ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// rankValues maps ranks to their numeric ordinal (A=1 .. K=13).
var rankValues = map[string]int{
	"A": 1, "2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8, "9": 9, "10": 10,
	"J": 11, "Q": 12, "K": 13,
}

// suitSymbols maps suits to their display symbols.
var suitSymbols = map[Suit]string{
	Hearts:   "♥",
	Diamonds: "♦",
	Clubs:    "♣",
	Spades:   "♠",
}

// DeckSize is the total number of cards in a fresh session deck:
// two 52-card decks plus two jokers.
const DeckSize = 108

// Card is an immutable value object. Regular cards carry a suit, rank,
// numeric value, and symbol; jokers carry only a color and the wild flag.
type Card struct {
	Type   Type   `json:"type"`
	Suit   Suit   `json:"suit,omitempty"`
	Rank   string `json:"rank"`
	Color  Color  `json:"color"`
	Value  int    `json:"value,omitempty"`
	Symbol string `json:"symbol,omitempty"`
	IsWild bool   `json:"isWild,omitempty"`
}

// NewRegular constructs a suited card for the given suit and rank.
func NewRegular(suit Suit, rank string) Card {
	return Card{
		Type:   Regular,
		Suit:   suit,
		Rank:   rank,
		Color:  SuitColor(suit),
		Value:  rankValues[rank],
		Symbol: suitSymbols[suit],
	}
}

// NewJoker constructs a joker of the given color.
func NewJoker(color Color) Card {
	return Card{
		Type:   Joker,
		Rank:   "Joker",
		Color:  color,
		IsWild: true,
	}
}

// IsJoker reports whether the card is a joker.
func (c Card) IsJoker() bool {
	return c.Type == Joker
}

// String returns a compact human-readable representation, e.g. "8♠" or
// "red Joker".
func (c Card) String() string {
	if c.IsJoker() {
		return fmt.Sprintf("%s Joker", c.Color)
	}
	return fmt.Sprintf("%s%s", c.Rank, c.Symbol)
}

// SuitColor returns the display color for a suit.
func SuitColor(suit Suit) Color {
	if suit == Hearts || suit == Diamonds {
		return Red
	}
	return Black
}

// RankValue returns the numeric ordinal for a rank (A=1 .. K=13), or 0
// for an unknown rank.
func RankValue(rank string) int {
	return rankValues[rank]
}

// BuildDeck returns a fresh 108-card deck: two standard 52-card decks in
// suit-then-rank order, concatenated, with two jokers appended last.
// The ordering is deterministic so tests can assert on it before shuffling.
func BuildDeck() []Card {
	deck := make([]Card, 0, DeckSize)

	for copies := 0; copies < 2; copies++ {
		for _, suit := range Suits {
			for _, rank := range Ranks {
				deck = append(deck, NewRegular(suit, rank))
			}
		}
	}

	deck = append(deck, NewJoker(Red))
	deck = append(deck, NewJoker(Black))

	return deck
}

// Shuffle returns a uniformly random permutation of deck. The input
// slice is never mutated; the permutation is produced on a copy.
func Shuffle(deck []Card) []Card {
	return ShuffleWith(globalRandSwap, deck)
}

// ShuffleWith is Shuffle with an injectable swap source, used by tests
// that need deterministic orderings.
func ShuffleWith(shuffler func(n int, swap func(i, j int)), deck []Card) []Card {
	shuffled := make([]Card, len(deck))
	copy(shuffled, deck)
	shuffler(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

func globalRandSwap(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

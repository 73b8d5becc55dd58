// Package cards defines the immutable card taxonomy and deck
// construction for the Crazy Eights server.
//
// A session deck is two standard 52-card decks plus two jokers
// (108 cards total). Cards are plain value objects with no identity
// beyond structural equality; the engine moves them between deck,
// discard pile, and hands but never mutates them.
//
// BuildDeck produces the deck in a deterministic order (suit-major,
// rank-minor, jokers last) so that shuffling is the only source of
// randomness in a game.
package cards

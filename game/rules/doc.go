// Package rules holds the immutable rule configuration for a game and
// the playability predicate set built from it.
//
// A Rules value is constructed once at session start (usually from a
// named preset, see game/config) and passed explicitly into every
// legality check. House rules compose as Matcher predicates returned by
// Rules.Matchers; the flags without engine behavior are enumerated
// extension points that callers may layer on outside the base engine.
package rules

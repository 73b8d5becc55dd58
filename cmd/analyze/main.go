// Command analyze prints quick, human-readable heuristics about rule
// preset files in the project's configs directory. It summarizes hand
// sizes, derived player capacity against the fixed 108-card deck, how
// much of the deck a full table consumes, and expected wild-card density
// per hand.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// deckSize is the fixed session deck: two 52-card decks plus two jokers.
const deckSize = 108

// jokersPerDeck is the number of always-wild jokers in the deck.
const jokersPerDeck = 2

// eightsPerDeck counts the 8s across both 52-card decks.
const eightsPerDeck = 8

// AnalysisPreset is a light struct for reading preset files used by analysis.
type AnalysisPreset struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	MatchSuitOrRank bool   `json:"match_suit_or_rank"`
	InitialHandSize int    `json:"initial_hand_size"`
	EightIsWild     bool   `json:"eight_is_wild"`
}

func main() {
	presets := []string{
		"classic.json",
		"eights-wild.json",
		"quick-draw.json",
		"long-haul.json",
	}

	for _, presetFile := range presets {
		fmt.Printf("\n=== Analyzing %s ===\n", presetFile)
		analyzePreset(filepath.Join("configs", presetFile))
	}
}

func analyzePreset(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return
	}

	var preset AnalysisPreset
	if err := json.Unmarshal(data, &preset); err != nil {
		fmt.Printf("Error parsing JSON: %v\n", err)
		return
	}

	fmt.Printf("Name: %s\n", preset.Name)
	fmt.Printf("Hand Size: %d\n", preset.InitialHandSize)

	if preset.InitialHandSize < 1 {
		fmt.Println("⚠️  WARNING: hand size is not positive; this preset cannot deal")
		return
	}

	maxPlayers := (deckSize - 1) / preset.InitialHandSize
	fmt.Printf("Dealable Players: up to %d\n", maxPlayers)

	// Deck consumption at a full table: hands plus the seed card.
	fullTableDeal := maxPlayers*preset.InitialHandSize + 1
	remaining := deckSize - fullTableDeal
	fmt.Printf("Full-Table Deal: %d/%d cards (%d left to draw)\n", fullTableDeal, deckSize, remaining)

	if maxPlayers < 2 {
		fmt.Println("⚠️  WARNING: fewer than 2 players can be dealt; the preset is unplayable")
	}
	if remaining < preset.InitialHandSize {
		fmt.Printf("⚠️  NOTE: under %d cards left after a full-table deal; expect early reshuffles\n", preset.InitialHandSize)
	}

	// Wild density: jokers always, eights when the rule is on.
	wilds := jokersPerDeck
	if preset.EightIsWild {
		wilds += eightsPerDeck
	}
	perHand := float64(wilds) * float64(preset.InitialHandSize) / float64(deckSize)
	fmt.Printf("Wild Cards in Deck: %d (expected %.2f per opening hand)\n", wilds, perHand)

	if !preset.MatchSuitOrRank && !preset.EightIsWild {
		fmt.Println("⚠️  WARNING: no matching rule enabled; only jokers would be playable")
	}
}

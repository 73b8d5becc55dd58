package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAnalysisPreset(t *testing.T) {
	preset := AnalysisPreset{
		Name:            "Test Preset",
		Description:     "Test rule set",
		MatchSuitOrRank: true,
		InitialHandSize: 7,
		EightIsWild:     true,
	}

	if preset.Name != "Test Preset" {
		t.Errorf("Expected Name 'Test Preset', got '%s'", preset.Name)
	}

	if preset.InitialHandSize != 7 {
		t.Errorf("Expected InitialHandSize 7, got %d", preset.InitialHandSize)
	}

	if !preset.EightIsWild {
		t.Error("Expected EightIsWild to be true")
	}
}

func TestDeckConstants(t *testing.T) {
	if deckSize != 108 {
		t.Errorf("Expected deck size 108, got %d", deckSize)
	}

	if jokersPerDeck != 2 {
		t.Errorf("Expected 2 jokers, got %d", jokersPerDeck)
	}

	// Two 52-card decks carry four 8s each.
	if eightsPerDeck != 8 {
		t.Errorf("Expected 8 eights, got %d", eightsPerDeck)
	}
}

func TestPlayerCapacityMath(t *testing.T) {
	tests := []struct {
		handSize int
		expected int
	}{
		{7, 15},  // (108-1)/7
		{5, 21},  // (108-1)/5
		{10, 10}, // (108-1)/10
		{53, 2},  // largest hand that still seats two players
		{54, 1},  // one card short of a second hand
	}

	for _, test := range tests {
		result := (deckSize - 1) / test.handSize
		if result != test.expected {
			t.Errorf("capacity(%d) = %d, expected %d", test.handSize, result, test.expected)
		}
	}
}

func TestAnalyzePreset_ValidFile(t *testing.T) {
	content := `{
		"name": "classic",
		"description": "Match the suit or rank of the top card",
		"match_suit_or_rank": true,
		"initial_hand_size": 7
	}`

	path := filepath.Join(t.TempDir(), "classic.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write preset: %v", err)
	}

	// Should not panic; output goes to stdout.
	analyzePreset(path)
}

func TestAnalyzePreset_InvalidFile(t *testing.T) {
	// Missing files are reported, not fatal.
	analyzePreset(filepath.Join(t.TempDir(), "does-not-exist.json"))
}

func TestAnalyzePreset_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0644); err != nil {
		t.Fatalf("Failed to write preset: %v", err)
	}

	analyzePreset(path)
}

func TestAnalyzePreset_ZeroHandSize(t *testing.T) {
	content := `{
		"name": "broken",
		"match_suit_or_rank": true,
		"initial_hand_size": 0
	}`

	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write preset: %v", err)
	}

	// Division guard: must not panic on a zero hand size.
	analyzePreset(path)
}

// Command validate provides a small CLI that validates rule preset JSON
// files in the ../configs directory. It checks:
//   - JSON structure and required fields
//   - Hand size constraints against the fixed 108-card deck
//   - Derived player capacity (at least two players must be dealable)
//   - That at least one matching rule is enabled, so turns can progress
//   - Unknown rule keys, which usually indicate a typo
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// deckSize is the fixed session deck: two 52-card decks plus two jokers.
const deckSize = 108

// knownKeys are the rule preset JSON fields the engine understands.
var knownKeys = map[string]bool{
	"name":                true,
	"description":         true,
	"match_suit_or_rank":  true,
	"initial_hand_size":   true,
	"eight_is_wild":       true,
	"skip_card":           true,
	"reverse_card":        true,
	"draw_two_card":       true,
	"wild_card":           true,
	"wild_draw_four_card": true,
	"draw_until_playable": true,
	"stack_draw_cards":    true,
	"jump_in":             true,
}

// Preset mirrors the JSON schema for a rule preset.
type Preset struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	MatchSuitOrRank bool   `json:"match_suit_or_rank"`
	InitialHandSize int    `json:"initial_hand_size"`
	EightIsWild     bool   `json:"eight_is_wild"`
}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validatePreset loads and validates a single rule preset JSON file.
func validatePreset(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var preset Preset
	if err := json.Unmarshal(data, &preset); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	// Flag unknown keys - usually a misspelled rule that would be
	// silently ignored by the server.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err == nil {
		for key := range raw {
			if !knownKeys[key] {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf("Unknown rule key: %q", key))
			}
		}
	}

	if preset.Name == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "Missing required field: name")
	}

	// Hand size checks against the fixed deck
	if preset.InitialHandSize < 1 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("initial_hand_size must be positive, got %d", preset.InitialHandSize))
	} else {
		// Two hands plus the seed card must fit in the deck.
		if 2*preset.InitialHandSize+1 > deckSize {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("initial_hand_size %d cannot deal two hands plus a seed card from a %d-card deck", preset.InitialHandSize, deckSize))
		}
	}

	// Without any matcher enabled, only jokers are ever playable and
	// games stall into endless draws.
	if !preset.MatchSuitOrRank && !preset.EightIsWild {
		result.Valid = false
		result.Errors = append(result.Errors, "No matching rule enabled: set match_suit_or_rank or eight_is_wild")
	}

	// Add informational data
	if result.Valid {
		maxPlayers := (deckSize - 1) / preset.InitialHandSize
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", preset.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Hand size: %d", preset.InitialHandSize))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Dealable players: up to %d", maxPlayers))
		if preset.EightIsWild {
			result.Errors = append(result.Errors, "✓ Eights are wild")
		}
		if preset.Description != "" {
			result.Errors = append(result.Errors, fmt.Sprintf("✓ Description: %s", preset.Description))
		}
	}

	return result
}

// main scans ../configs for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding preset files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validatePreset(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All rule presets are valid!")
	} else {
		fmt.Println("❌ Some rule presets have errors")
		os.Exit(1)
	}
}

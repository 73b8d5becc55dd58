// Package config provides rule-preset management for the Crazy Eights
// server.
//
// The config package handles:
//   - Loading named rule presets from JSON files
//   - Decoding presets over the built-in defaults
//   - Validation, caching, and preset discovery
//   - Saving presets back to disk
//
// Preset Format:
//
// Presets live as JSON files in the configs directory and only need to
// state the fields they change, e.g.:
//
//	{
//	  "name": "eights-wild",
//	  "description": "Classic matching plus wild eights",
//	  "eight_is_wild": true
//	}
//
// Shipped Presets:
//
//   - classic: match suit or rank, 7-card hands
//   - eights-wild: classic plus wild eights
//   - quick-draw: 5-card hands for shorter games
//   - long-haul: 10-card hands
//
// The manager prefers classic.json as the default, falling back to the
// first loadable preset and finally to the built-in defaults.
package config

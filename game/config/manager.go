package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/crazyeights/game/rules"
	"github.com/wricardo/mcp-training/crazyeights/game/service"
)

var (
	ErrConfigNotFound = errors.New("rule set not found")
	ErrInvalidConfig  = errors.New("invalid rule set")
)

// Manager handles rule-preset loading and caching. Presets are JSON
// files in a config directory; each decodes over rules.Default so a
// preset only needs to state what it changes.
type Manager struct {
	configDir   string
	defaultSet  rules.Rules
	defaultName string
	presets     map[string]rules.Rules
	mu          sync.RWMutex
}

// NewManager creates a new rule-preset manager rooted at configDir.
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		presets:   make(map[string]rules.Rules),
	}

	m.loadDefaultPreset()
	return m, nil
}

// LoadConfig loads a rule preset by name.
func (m *Manager) LoadConfig(name string) (rules.Rules, error) {
	m.mu.RLock()
	if r, exists := m.presets[name]; exists {
		m.mu.RUnlock()
		return r, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring the write lock.
	if r, exists := m.presets[name]; exists {
		return r, nil
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := os.ReadFile(filepath.Join(m.configDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return rules.Rules{}, ErrConfigNotFound
		}
		return rules.Rules{}, fmt.Errorf("failed to read rule set: %w", err)
	}

	// Decode over the defaults so presets only need to state overrides.
	r := rules.Default()
	if err := json.Unmarshal(data, &r); err != nil {
		return rules.Rules{}, fmt.Errorf("failed to parse rule set: %w", err)
	}

	if err := r.Validate(); err != nil {
		return rules.Rules{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	m.presets[name] = r
	return r, nil
}

// ListConfigs returns information about all available rule presets.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")

		r, err := m.LoadConfig(name)
		if err != nil {
			// Skip invalid presets
			continue
		}

		configs = append(configs, &service.ConfigInfo{
			Filename:        entry.Name(),
			ConfigID:        name,
			Name:            r.Name,
			Description:     r.Description,
			InitialHandSize: r.InitialHandSize,
			MaxPlayers:      r.MaxPlayers(),
		})
	}

	return configs, nil
}

// GetDefault returns the default rule set.
func (m *Manager) GetDefault() rules.Rules {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultSet
}

// DefaultName returns the preset name backing GetDefault, or "" when
// the built-in defaults are in use.
func (m *Manager) DefaultName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultName
}

// SaveConfig saves a rule preset to disk and updates the cache.
func (m *Manager) SaveConfig(name string, r rules.Rules) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rule set: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.configDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write rule set: %w", err)
	}

	m.mu.Lock()
	m.presets[name] = r
	m.mu.Unlock()

	return nil
}

// RefreshCache drops every cached preset and reloads the default.
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.presets = make(map[string]rules.Rules)
	m.mu.Unlock()

	m.loadDefaultPreset()
}

// loadDefaultPreset prefers classic.json, falls back to the first
// loadable preset, and finally to the built-in defaults.
func (m *Manager) loadDefaultPreset() {
	if r, err := m.LoadConfig("classic"); err == nil {
		m.setDefault(r, "classic")
		return
	}

	if configs, err := m.ListConfigs(); err == nil && len(configs) > 0 {
		name := strings.TrimSuffix(configs[0].Filename, ".json")
		if r, err := m.LoadConfig(name); err == nil {
			m.setDefault(r, name)
			return
		}
	}

	m.setDefault(rules.Default(), "")
}

func (m *Manager) setDefault(r rules.Rules, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultSet = r
	m.defaultName = name
}

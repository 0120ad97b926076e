package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jebob/snakes-and-ladders/game/engine"
	"github.com/jebob/snakes-and-ladders/game/service"
)

var (
	// ErrConfigNotFound is returned when a named config has no file.
	ErrConfigNotFound = errors.New("config not found")
	// ErrInvalidConfig is returned when a config file fails schema or
	// geometry validation.
	ErrInvalidConfig = errors.New("invalid config")
)

// Manager loads board configurations from a directory and caches the parsed
// results. It implements service.ConfigManager.
type Manager struct {
	configDir string

	mu        sync.RWMutex
	cache     map[string]*engine.BoardConfig
	defaultID string
}

// NewManager creates a config manager over the given directory. The
// directory does not have to exist yet; a missing directory just lists no
// configs.
func NewManager(configDir string) *Manager {
	return &Manager{
		configDir: configDir,
		cache:     make(map[string]*engine.BoardConfig),
		defaultID: "canonical",
	}
}

// ParseConfig validates raw JSON against the board config schema and the
// engine's geometry rules, returning the decoded config.
func ParseConfig(data []byte) (*engine.BoardConfig, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: not valid JSON: %v", ErrInvalidConfig, err)
	}
	if err := compiledSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var config engine.BoardConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := engine.ValidateBoardConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &config, nil
}

// LoadConfig loads a board config by its ID (the filename without the .json
// extension). Parsed configs are cached until RefreshCache is called.
func (m *Manager) LoadConfig(configName string) (*engine.BoardConfig, error) {
	id, err := sanitizeID(configName)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	if cached, ok := m.cache[id]; ok {
		m.mu.RUnlock()
		return cached, nil
	}
	m.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(m.configDir, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, id)
		}
		return nil, fmt.Errorf("failed to read config '%s': %v", id, err)
	}

	config, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config '%s': %w", id, err)
	}

	m.mu.Lock()
	m.cache[id] = config
	m.mu.Unlock()
	return config, nil
}

// ListConfigs scans the config directory and returns metadata for every
// valid config file, sorted by ID. Invalid files are skipped with a warning
// rather than failing the whole listing.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config directory: %v", err)
	}

	infos := make([]*service.ConfigInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		config, err := m.LoadConfig(id)
		if err != nil {
			log.Printf("Warning: skipping config file %s: %v", entry.Name(), err)
			continue
		}
		infos = append(infos, &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			Size:        config.Size,
			Iterations:  config.Iterations,
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ConfigID < infos[j].ConfigID })
	return infos, nil
}

// GetDefault returns the default board config. It prefers the configured
// default ID from the config directory and falls back to the built-in
// canonical board, which always validates.
func (m *Manager) GetDefault() *engine.BoardConfig {
	m.mu.RLock()
	id := m.defaultID
	m.mu.RUnlock()

	if config, err := m.LoadConfig(id); err == nil {
		return config
	}
	return engine.CanonicalConfig()
}

// SetDefault changes which config ID GetDefault prefers. The named config
// must load.
func (m *Manager) SetDefault(configName string) error {
	if _, err := m.LoadConfig(configName); err != nil {
		return err
	}
	m.mu.Lock()
	m.defaultID = configName
	m.mu.Unlock()
	return nil
}

// SaveConfig validates and writes a config to the directory under the given
// ID, creating the directory if needed, and updates the cache.
func (m *Manager) SaveConfig(configName string, config *engine.BoardConfig) error {
	id, err := sanitizeID(configName)
	if err != nil {
		return err
	}
	if err := engine.ValidateBoardConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := os.MkdirAll(m.configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %v", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(m.configDir, id+".json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write config '%s': %v", id, err)
	}

	m.mu.Lock()
	m.cache[id] = config
	m.mu.Unlock()

	log.Printf("Saved config '%s' (%s, %d squares)", id, config.Name, config.Size)
	return nil
}

// RefreshCache drops all cached configs so subsequent loads re-read files.
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.cache = make(map[string]*engine.BoardConfig)
	m.mu.Unlock()
}

// sanitizeID normalizes a config name to its ID form and rejects anything
// that could escape the config directory.
func sanitizeID(configName string) (string, error) {
	id := strings.TrimSuffix(configName, ".json")
	if id == "" {
		return "", fmt.Errorf("%w: empty config name", ErrConfigNotFound)
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("%w: illegal config name '%s'", ErrConfigNotFound, configName)
	}
	return id, nil
}

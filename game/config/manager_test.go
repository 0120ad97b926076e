package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jebob/snakes-and-ladders/game/engine"
)

func writeConfigFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

const validConfig = `{
	"name": "tiny",
	"description": "A tiny test board",
	"size": 20,
	"iterations": 100,
	"snakes": [[14, 2]],
	"ladders": [[5, 18]]
}`

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "tiny.json", validConfig)
	m := NewManager(dir)

	config, err := m.LoadConfig("tiny")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Name != "tiny" || config.Size != 20 || config.Iterations != 100 {
		t.Errorf("Unexpected config: %+v", config)
	}
	if len(config.Snakes) != 1 || len(config.Ladders) != 1 {
		t.Errorf("Expected 1 snake and 1 ladder, got %d and %d",
			len(config.Snakes), len(config.Ladders))
	}

	// The .json suffix is accepted and normalized
	if _, err := m.LoadConfig("tiny.json"); err != nil {
		t.Errorf("Failed to load config by filename: %v", err)
	}
}

func TestLoadConfig_NotFound(t *testing.T) {
	m := NewManager(t.TempDir())
	_, err := m.LoadConfig("missing")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestLoadConfig_IllegalName(t *testing.T) {
	m := NewManager(t.TempDir())
	for _, name := range []string{"", "../etc/passwd", "a/b", `a\b`} {
		if _, err := m.LoadConfig(name); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound for name %q, got %v", name, err)
		}
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `{not json`},
		{"missing name", `{"size": 20, "iterations": 100}`},
		{"zero size", `{"name": "x", "size": 0, "iterations": 100}`},
		{"unknown field", `{"name": "x", "size": 20, "iterations": 100, "players": 2}`},
		{"snake goes up", `{"name": "x", "size": 20, "iterations": 100, "snakes": [[2, 14]]}`},
		{"ladder goes down", `{"name": "x", "size": 20, "iterations": 100, "ladders": [[18, 5]]}`},
		{"duplicate source", `{"name": "x", "size": 20, "iterations": 100, "snakes": [[14, 2]], "ladders": [[14, 19]]}`},
		{"route off board", `{"name": "x", "size": 20, "iterations": 100, "ladders": [[5, 25]]}`},
		{"triple route", `{"name": "x", "size": 20, "iterations": 100, "snakes": [[14, 2, 1]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfigFile(t, dir, "bad.json", tt.content)
			m := NewManager(dir)
			if _, err := m.LoadConfig("bad"); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestListConfigs(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "tiny.json", validConfig)
	writeConfigFile(t, dir, "broken.json", `{not json`)
	writeConfigFile(t, dir, "notes.txt", "not a config")
	m := NewManager(dir)

	infos, err := m.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("Expected 1 valid config, got %d", len(infos))
	}
	if infos[0].ConfigID != "tiny" || infos[0].Name != "tiny" || infos[0].Size != 20 {
		t.Errorf("Unexpected config info: %+v", infos[0])
	}
}

func TestListConfigs_MissingDir(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "nope"))
	infos, err := m.ListConfigs()
	if err != nil {
		t.Fatalf("Expected no error for a missing directory, got %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("Expected no configs, got %d", len(infos))
	}
}

func TestGetDefault_FallsBackToCanonical(t *testing.T) {
	m := NewManager(t.TempDir())
	config := m.GetDefault()
	if config.Name != "canonical" || config.Size != 100 {
		t.Errorf("Expected the built-in canonical board, got %+v", config)
	}
}

func TestSetDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "tiny.json", validConfig)
	m := NewManager(dir)

	if err := m.SetDefault("missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
	if err := m.SetDefault("tiny"); err != nil {
		t.Fatalf("Failed to set default: %v", err)
	}
	if got := m.GetDefault(); got.Name != "tiny" {
		t.Errorf("Expected default 'tiny', got '%s'", got.Name)
	}
}

func TestSaveConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "configs")
	m := NewManager(dir)

	config := &engine.BoardConfig{
		Name:       "saved",
		Size:       30,
		Iterations: 50,
		Snakes:     [][2]int{{20, 4}},
	}
	if err := m.SaveConfig("saved", config); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	// Round-trip through a second manager to check the written file
	loaded, err := NewManager(dir).LoadConfig("saved")
	if err != nil {
		t.Fatalf("Failed to reload saved config: %v", err)
	}
	if loaded.Name != "saved" || loaded.Size != 30 {
		t.Errorf("Unexpected reloaded config: %+v", loaded)
	}
}

func TestSaveConfig_Invalid(t *testing.T) {
	m := NewManager(t.TempDir())
	bad := &engine.BoardConfig{Name: "bad", Size: 10, Iterations: 1, Snakes: [][2]int{{2, 9}}}
	if err := m.SaveConfig("bad", bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestRefreshCache(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "tiny.json", validConfig)
	m := NewManager(dir)

	if _, err := m.LoadConfig("tiny"); err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Change the file on disk; the cache still serves the old copy
	writeConfigFile(t, dir, "tiny.json", `{"name": "renamed", "size": 20, "iterations": 100}`)
	config, err := m.LoadConfig("tiny")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Name != "tiny" {
		t.Errorf("Expected cached config 'tiny', got '%s'", config.Name)
	}

	m.RefreshCache()
	config, err = m.LoadConfig("tiny")
	if err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}
	if config.Name != "renamed" {
		t.Errorf("Expected reloaded config 'renamed', got '%s'", config.Name)
	}
}

package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jebob/snakes-and-ladders/game/dice"
)

func testBoardConfig() *BoardConfig {
	return &BoardConfig{
		Name:        "Test Board",
		Description: "Configuration for engine tests",
		Size:        20,
		Iterations:  10,
		Snakes:      [][2]int{{14, 2}},
		Ladders:     [][2]int{{5, 8}},
	}
}

func TestValidateBoardConfig_Valid(t *testing.T) {
	if err := ValidateBoardConfig(testBoardConfig()); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestValidateBoardConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*BoardConfig)
		wantMsg string
	}{
		{"missing name", func(c *BoardConfig) { c.Name = "" }, "name is required"},
		{"zero size", func(c *BoardConfig) { c.Size = 0 }, "size must be positive"},
		{"zero iterations", func(c *BoardConfig) { c.Iterations = 0 }, "iterations must be >= 1"},
		{"negative max turns", func(c *BoardConfig) { c.MaxTurns = -1 }, "max_turns must be >= 0"},
		{"snake going up", func(c *BoardConfig) { c.Snakes = [][2]int{{2, 14}} }, "goes upwards"},
		{"flat snake", func(c *BoardConfig) { c.Snakes = [][2]int{{7, 7}} }, "goes upwards"},
		{"ladder going down", func(c *BoardConfig) { c.Ladders = [][2]int{{8, 5}} }, "goes downwards"},
		{"duplicate source", func(c *BoardConfig) { c.Ladders = [][2]int{{14, 15}} }, "duplicate snake or ladder"},
		{"route off the board", func(c *BoardConfig) { c.Snakes = [][2]int{{25, 2}} }, "illegal snake/ladder start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testBoardConfig()
			tt.mutate(config)

			err := ValidateBoardConfig(config)
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Expected error containing %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestBoardConfig_Board(t *testing.T) {
	b, err := testBoardConfig().Board()
	if err != nil {
		t.Fatalf("Failed to build board: %v", err)
	}
	if b.Size != 20 {
		t.Errorf("Expected size 20, got %d", b.Size)
	}
	if b.Routes[14] != 2 {
		t.Errorf("Expected snake 14->2, got 14->%d", b.Routes[14])
	}
	if b.Routes[5] != 8 {
		t.Errorf("Expected ladder 5->8, got 5->%d", b.Routes[5])
	}
}

func TestBoardConfig_EffectiveDieSize(t *testing.T) {
	config := testBoardConfig()
	if got := config.EffectiveDieSize(); got != dice.DefaultDieSize {
		t.Errorf("Expected default die size %d, got %d", dice.DefaultDieSize, got)
	}

	config.DieSize = 4
	if got := config.EffectiveDieSize(); got != 4 {
		t.Errorf("Expected die size 4, got %d", got)
	}
}

func TestCanonicalConfig(t *testing.T) {
	config := CanonicalConfig()
	if err := ValidateBoardConfig(config); err != nil {
		t.Fatalf("Canonical config failed validation: %v", err)
	}

	b, err := config.Board()
	if err != nil {
		t.Fatalf("Failed to build canonical board: %v", err)
	}
	if b.Size != 100 {
		t.Errorf("Expected size 100, got %d", b.Size)
	}
	if len(b.Routes) != 15 {
		t.Errorf("Expected 15 routes, got %d", len(b.Routes))
	}
}

func TestLoadBoardConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "small.json")
	data := `{
		"name": "small",
		"size": 20,
		"iterations": 5,
		"snakes": [[14, 2]],
		"ladders": [[5, 8]]
	}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config, err := LoadBoardConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Name != "small" {
		t.Errorf("Expected name 'small', got '%s'", config.Name)
	}
	if config.Size != 20 {
		t.Errorf("Expected size 20, got %d", config.Size)
	}
}

func TestLoadBoardConfig_BadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := LoadBoardConfig(path); err == nil {
		t.Error("Expected parse error for broken JSON")
	}
}

func TestLoadBoardConfig_Missing(t *testing.T) {
	if _, err := LoadBoardConfig(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

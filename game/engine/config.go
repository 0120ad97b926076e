package engine

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jebob/snakes-and-ladders/game/board"
	"github.com/jebob/snakes-and-ladders/game/dice"
)

// BoardConfig is a board description loaded from a JSON config file. Snakes
// and ladders are listed separately as [from, to] pairs so the file format
// can state intent; they are merged into a single route map when the Board
// is built.
type BoardConfig struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Size        int      `json:"size"`
	DieSize     int      `json:"die_size,omitempty"`  // 0 means dice.DefaultDieSize
	Iterations  int      `json:"iterations"`          // default batch size for this board
	MaxTurns    int      `json:"max_turns,omitempty"` // 0 means no cap
	Snakes      [][2]int `json:"snakes,omitempty"`
	Ladders     [][2]int `json:"ladders,omitempty"`
}

// ValidateBoardConfig validates a board configuration for correctness. On
// top of the Board type's own geometry rules it enforces the file-format
// conventions: snakes must strictly descend, ladders must strictly ascend,
// and no square may start more than one route.
func ValidateBoardConfig(config *BoardConfig) error {
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Size < 1 {
		return fmt.Errorf("config validation: size must be positive, got %d", config.Size)
	}
	if config.DieSize < 0 {
		return fmt.Errorf("config validation: die_size must be >= 1 when set, got %d", config.DieSize)
	}
	if config.Iterations < 1 {
		return fmt.Errorf("config validation: iterations must be >= 1, got %d", config.Iterations)
	}
	if config.MaxTurns < 0 {
		return fmt.Errorf("config validation: max_turns must be >= 0, got %d", config.MaxTurns)
	}

	for _, s := range config.Snakes {
		if s[0] <= s[1] {
			return fmt.Errorf("config validation: snake %d->%d goes upwards", s[0], s[1])
		}
	}
	for _, l := range config.Ladders {
		if l[0] >= l[1] {
			return fmt.Errorf("config validation: ladder %d->%d goes downwards", l[0], l[1])
		}
	}

	// Building the board surfaces duplicate sources and geometry defects
	if _, err := config.Board(); err != nil {
		return fmt.Errorf("config validation: %v", err)
	}
	return nil
}

// Board merges snakes and ladders into a validated immutable Board. It fails
// on duplicate source squares and on any geometry defect.
func (c *BoardConfig) Board() (*board.Board, error) {
	routes := make(map[int]int, len(c.Snakes)+len(c.Ladders))
	for _, pair := range append(append([][2]int{}, c.Snakes...), c.Ladders...) {
		if _, exists := routes[pair[0]]; exists {
			return nil, fmt.Errorf("%w: duplicate snake or ladder from square %d", board.ErrBadRoute, pair[0])
		}
		routes[pair[0]] = pair[1]
	}
	return board.New(c.Size, routes)
}

// EffectiveDieSize returns the configured die size, defaulting to a
// standard six-sided die.
func (c *BoardConfig) EffectiveDieSize() int {
	if c.DieSize > 0 {
		return c.DieSize
	}
	return dice.DefaultDieSize
}

// NewSimFromConfig builds a fresh game from a board config, with its own
// random die sized per the config.
func NewSimFromConfig(config *BoardConfig) (*Sim, error) {
	b, err := config.Board()
	if err != nil {
		return nil, err
	}
	size := config.EffectiveDieSize()
	return NewSimWithDieSize(b, dice.NewRandomDie(size), size), nil
}

// LoadBoardConfig loads and validates a board configuration from a JSON
// file. Schema-level validation lives in the config package; this loader is
// for tools that read a single file directly.
func LoadBoardConfig(filename string) (*BoardConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config BoardConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %v", filename, err)
	}

	if err := ValidateBoardConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// CanonicalConfig returns the reference 100-square board as a config, used
// as the fallback default when no config files are available.
func CanonicalConfig() *BoardConfig {
	return &BoardConfig{
		Name:        "canonical",
		Description: "Reference 100-square board with 8 snakes and 7 ladders",
		Size:        100,
		Iterations:  1000,
		Snakes: [][2]int{
			{27, 5}, {40, 3}, {43, 18}, {54, 31},
			{66, 45}, {76, 58}, {89, 53}, {99, 41},
		},
		Ladders: [][2]int{
			{4, 25}, {13, 46}, {33, 49}, {42, 63},
			{50, 69}, {62, 81}, {74, 92},
		},
	}
}

package service

import (
	"time"

	"github.com/jebob/snakes-and-ladders/game/engine"
	"github.com/jebob/snakes-and-ladders/game/stats"
)

// Session is a live interactive game: one simulation plus the config it was
// built from and the bookkeeping needed for expiry and persistence.
type Session struct {
	ID             string
	Sim            *engine.Sim
	Config         *engine.BoardConfig
	ConfigID       string
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// SessionInfo is the transport-facing snapshot of a session.
type SessionInfo struct {
	ID             string        `json:"id"`
	ConfigName     string        `json:"config_name"`
	CreatedAt      time.Time     `json:"created_at"`
	LastAccessedAt time.Time     `json:"last_accessed_at"`
	BoardSize      int           `json:"board_size"`
	Position       int           `json:"position"`
	Won            bool          `json:"won"`
	Stats          *engine.Stats `json:"stats"`
}

// TurnResult reports one played turn: the die sequence it took and where the
// token ended up.
type TurnResult struct {
	SessionID string       `json:"session_id"`
	Turn      int          `json:"turn"`
	Rolls     []int        `json:"rolls"`
	Climb     int          `json:"climb"`
	Slide     int          `json:"slide"`
	Position  int          `json:"position"`
	Won       bool         `json:"won"`
	Stats     engine.Stats `json:"stats"`
}

// GameResult reports a game driven to its end state. Capped is set when the
// configured turn limit stopped an unfinished game.
type GameResult struct {
	SessionID string       `json:"session_id"`
	Won       bool         `json:"won"`
	Capped    bool         `json:"capped,omitempty"`
	Position  int          `json:"position"`
	Stats     engine.Stats `json:"stats"`
}

// BatchRecord is a completed batch simulation with its reduced statistics.
type BatchRecord struct {
	ID         string                `json:"id"`
	ConfigName string                `json:"config_name"`
	Iterations int                   `json:"iterations"`
	DieSize    int                   `json:"die_size"`
	CreatedAt  time.Time             `json:"created_at"`
	ElapsedMS  int64                 `json:"elapsed_ms"`
	Result     *stats.MultiSimResult `json:"result"`
}

// ConfigInfo describes an available board configuration file.
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Size        int    `json:"size"`
	Iterations  int    `json:"iterations"`
}

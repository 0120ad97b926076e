package service

import (
	"context"

	"github.com/jebob/snakes-and-ladders/game/engine"
	"github.com/jebob/snakes-and-ladders/game/stats"
)

// SimulationService defines all simulation-related operations. Transports
// (REST handlers, MCP tools, the CLI) depend on this interface rather than
// on the storage layers directly.
type SimulationService interface {
	// Session management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Interactive game operations
	PlayTurn(ctx context.Context, sessionID string) (*TurnResult, error)
	RunToCompletion(ctx context.Context, sessionID string) (*GameResult, error)
	Reset(ctx context.Context, sessionID string) (*SessionInfo, error)
	GetStats(ctx context.Context, sessionID string) (*engine.Stats, error)

	// Batch simulation
	RunBatch(ctx context.Context, configName string, iterations int, progress stats.ProgressFunc) (*BatchRecord, error)
	GetBatch(ctx context.Context, batchID string) (*BatchRecord, error)
	ListBatches(ctx context.Context) ([]*BatchRecord, error)

	// Configuration management
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.BoardConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.BoardConfig) error
}

// SessionManager abstracts session storage operations.
type SessionManager interface {
	Create(sessionID, configID string, config *engine.BoardConfig) (*Session, error)
	Get(sessionID string) (*Session, error)
	List() []*Session
	Delete(sessionID string) error
	UpdateLastAccessed(sessionID string) error
	Save(sessionID string) error
}

// ConfigManager abstracts board configuration storage.
type ConfigManager interface {
	LoadConfig(configName string) (*engine.BoardConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.BoardConfig
	SaveConfig(configName string, config *engine.BoardConfig) error
}

// ResultArchive persists completed batch results so they can be retrieved
// after the run that produced them.
type ResultArchive interface {
	Save(record *BatchRecord) error
	Load(batchID string) (*BatchRecord, error)
	ListAll() ([]*BatchRecord, error)
}

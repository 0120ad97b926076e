package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jebob/snakes-and-ladders/game/dice"
	"github.com/jebob/snakes-and-ladders/game/engine"
	"github.com/jebob/snakes-and-ladders/game/stats"
)

// ErrGameWon is returned when a turn is requested on a finished game.
var ErrGameWon = errors.New("game already won")

// ErrNoArchive is returned by batch lookups when no result archive is wired.
var ErrNoArchive = errors.New("no result archive configured")

type simulationServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	archive  ResultArchive // may be nil; batch results are then not retained
}

// NewSimulationService creates a new simulation service backed by the given
// session manager, config manager and (optional) result archive.
func NewSimulationService(sessions SessionManager, configs ConfigManager, archive ResultArchive) SimulationService {
	return &simulationServiceImpl{
		sessions: sessions,
		configs:  configs,
		archive:  archive,
	}
}

func (s *simulationServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	config, err := s.resolveConfig(configName)
	if err != nil {
		return nil, err
	}
	if configName == "" {
		configName = config.Name
	}

	sess, err := s.sessions.Create("", configName, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Printf("Created session %s on board '%s' (%d squares)", sess.ID, config.Name, config.Size)
	return sessionInfo(sess), nil
}

func (s *simulationServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return sessionInfo(sess), nil
}

func (s *simulationServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	infos := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, sessionInfo(sess))
	}
	return infos, nil
}

func (s *simulationServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(sessionID)
}

func (s *simulationServiceImpl) PlayTurn(ctx context.Context, sessionID string) (*TurnResult, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Sim.HasWon() {
		return nil, fmt.Errorf("%w: session %s", ErrGameWon, sessionID)
	}

	outcome := sess.Sim.Turn()
	s.touch(sessionID)

	return &TurnResult{
		SessionID: sessionID,
		Turn:      sess.Sim.Stats.TurnCount,
		Rolls:     outcome.Rolls,
		Climb:     outcome.Climb,
		Slide:     outcome.Slide,
		Position:  sess.Sim.Position(),
		Won:       sess.Sim.HasWon(),
		Stats:     sess.Sim.Stats,
	}, nil
}

func (s *simulationServiceImpl) RunToCompletion(ctx context.Context, sessionID string) (*GameResult, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	capped := false
	if err := sess.Sim.RunCapped(sess.Config.MaxTurns); err != nil {
		if !errors.Is(err, engine.ErrTurnLimit) {
			return nil, err
		}
		capped = true
	}
	s.touch(sessionID)

	return &GameResult{
		SessionID: sessionID,
		Won:       sess.Sim.HasWon(),
		Capped:    capped,
		Position:  sess.Sim.Position(),
		Stats:     sess.Sim.Stats,
	}, nil
}

func (s *simulationServiceImpl) Reset(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	sim, err := engine.NewSimFromConfig(sess.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild game: %w", err)
	}
	sess.Sim = sim
	s.touch(sessionID)

	log.Printf("Reset session %s", sessionID)
	return sessionInfo(sess), nil
}

func (s *simulationServiceImpl) GetStats(ctx context.Context, sessionID string) (*engine.Stats, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	statsCopy := sess.Sim.Stats
	return &statsCopy, nil
}

func (s *simulationServiceImpl) RunBatch(ctx context.Context, configName string, iterations int, progress stats.ProgressFunc) (*BatchRecord, error) {
	config, err := s.resolveConfig(configName)
	if err != nil {
		return nil, err
	}
	if iterations <= 0 {
		iterations = config.Iterations
	}

	b, err := config.Board()
	if err != nil {
		return nil, fmt.Errorf("failed to build board: %w", err)
	}

	dieSize := config.EffectiveDieSize()
	started := time.Now()
	result, err := stats.RunBatchWithProgress(b, iterations, dieSize,
		func() dice.Roller { return dice.NewRandomDie(dieSize) }, progress)
	if err != nil {
		return nil, err
	}

	record := &BatchRecord{
		ID:         generateBatchID(),
		ConfigName: config.Name,
		Iterations: iterations,
		DieSize:    dieSize,
		CreatedAt:  started,
		ElapsedMS:  time.Since(started).Milliseconds(),
		Result:     result,
	}

	if s.archive != nil {
		if err := s.archive.Save(record); err != nil {
			log.Printf("Warning: failed to archive batch %s: %v", record.ID, err)
		}
	}

	log.Printf("Batch %s: %d games on '%s' in %dms (avg %.1f rolls)",
		record.ID, iterations, config.Name, record.ElapsedMS, result.Rolls.Avg)
	return record, nil
}

func (s *simulationServiceImpl) GetBatch(ctx context.Context, batchID string) (*BatchRecord, error) {
	if s.archive == nil {
		return nil, ErrNoArchive
	}
	return s.archive.Load(batchID)
}

func (s *simulationServiceImpl) ListBatches(ctx context.Context) ([]*BatchRecord, error) {
	if s.archive == nil {
		return nil, ErrNoArchive
	}
	return s.archive.ListAll()
}

func (s *simulationServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

func (s *simulationServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.BoardConfig, error) {
	return s.resolveConfig(configName)
}

func (s *simulationServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.BoardConfig) error {
	if err := engine.ValidateBoardConfig(config); err != nil {
		return err
	}
	return s.configs.SaveConfig(configName, config)
}

// resolveConfig loads a named config, falling back to the default for an
// empty name. Unknown names produce an error listing what is available.
func (s *simulationServiceImpl) resolveConfig(configName string) (*engine.BoardConfig, error) {
	if configName == "" {
		return s.configs.GetDefault(), nil
	}

	config, err := s.configs.LoadConfig(configName)
	if err != nil {
		infos, listErr := s.configs.ListConfigs()
		if listErr != nil {
			return nil, err
		}
		names := make([]string, 0, len(infos))
		for _, info := range infos {
			names = append(names, info.ConfigID)
		}
		return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(names, ", "))
	}
	return config, nil
}

func (s *simulationServiceImpl) touch(sessionID string) {
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		log.Printf("Warning: failed to update last accessed for %s: %v", sessionID, err)
	}
	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("Warning: failed to persist session %s: %v", sessionID, err)
	}
}

func sessionInfo(sess *Session) *SessionInfo {
	statsCopy := sess.Sim.Stats
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		BoardSize:      sess.Sim.Board().Size,
		Position:       sess.Sim.Position(),
		Won:            sess.Sim.HasWon(),
		Stats:          &statsCopy,
	}
}

func generateBatchID() string {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("batch-%d", time.Now().UnixNano())
	}
	return "batch-" + hex.EncodeToString(bytes)
}

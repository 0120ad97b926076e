package stats

import (
	"github.com/jebob/snakes-and-ladders/game/board"
	"github.com/jebob/snakes-and-ladders/game/dice"
	"github.com/jebob/snakes-and-ladders/game/engine"
)

// ProgressFunc observes each completed game in a batch. game is 1-based.
type ProgressFunc func(game int, s engine.Stats)

// RunBatch plays count independent games on the same board with a standard
// die and reduces their statistics. Each game gets its own fresh Roller and
// zeroed state; the board is shared read-only.
func RunBatch(b *board.Board, count int, newRoller func() dice.Roller) (*MultiSimResult, error) {
	return RunBatchWithProgress(b, count, dice.DefaultDieSize, newRoller, nil)
}

// RunBatchWithProgress is RunBatch with a configurable die size and an
// optional per-game progress callback. count must be positive: a zero-count
// batch has no defined reduction.
func RunBatchWithProgress(b *board.Board, count, dieSize int, newRoller func() dice.Roller, progress ProgressFunc) (*MultiSimResult, error) {
	if count <= 0 {
		return nil, ErrEmptyBatch
	}

	games := make([]engine.Stats, 0, count)
	for i := 0; i < count; i++ {
		sim := engine.NewSimWithDieSize(b, newRoller(), dieSize)
		sim.Run()
		games = append(games, sim.Stats)
		if progress != nil {
			progress(i+1, sim.Stats)
		}
	}
	return FromStats(games)
}

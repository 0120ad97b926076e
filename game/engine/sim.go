package engine

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jebob/snakes-and-ladders/game/board"
	"github.com/jebob/snakes-and-ladders/game/dice"
)

// ErrTurnLimit is returned by RunCapped when the optional turn cap stops a
// game before it is won.
var ErrTurnLimit = errors.New("turn limit reached")

// Sim plays a single game to completion, accumulating statistics. It owns
// the token position and its die; the Board is shared read-only. Position 0
// is the off-board start and is never a route source.
type Sim struct {
	board    *board.Board
	die      dice.Roller
	dieSize  int
	position int
	lucky    map[int]bool
	unlucky  map[int]bool

	// Stats is read-only for callers; only the Sim's own operations mutate it.
	Stats Stats
}

// NewSim creates a game on the given board with a standard six-sided die
// contract. The luck sets are derived from the board here, once.
func NewSim(b *board.Board, die dice.Roller) *Sim {
	return NewSimWithDieSize(b, die, dice.DefaultDieSize)
}

// NewSimWithDieSize creates a game whose turn-extension rule triggers on
// dieSize, the maximum face of the injected die.
func NewSimWithDieSize(b *board.Board, die dice.Roller, dieSize int) *Sim {
	if dieSize < 1 {
		panic(fmt.Sprintf("engine: die size must be >= 1, got %d", dieSize))
	}
	lucky, unlucky := ComputeLuck(b)
	return &Sim{
		board:   b,
		die:     die,
		dieSize: dieSize,
		lucky:   lucky,
		unlucky: unlucky,
	}
}

// Board returns the shared board this game is played on.
func (s *Sim) Board() *board.Board {
	return s.board
}

// DieSize returns the maximum die face that extends a turn.
func (s *Sim) DieSize() int {
	return s.dieSize
}

// Position returns the current square; 0 means the token is off the board.
func (s *Sim) Position() int {
	return s.position
}

// SetPosition places the token directly on a square, bypassing roll
// resolution. Used to restore persisted games and to script test scenarios.
func (s *Sim) SetPosition(p int) {
	s.position = p
}

// HasWon reports whether the token rests on the winning square.
func (s *Sim) HasWon() bool {
	return s.position == s.board.Size
}

// Run takes turns until the game is won. A board whose route graph makes
// winning impossible will never terminate; use RunCapped to bound that.
func (s *Sim) Run() {
	for !s.HasWon() {
		s.Turn()
	}
}

// RunCapped runs until the game is won or maxTurns turns have been taken.
// maxTurns <= 0 means no cap, identical to Run.
func (s *Sim) RunCapped(maxTurns int) error {
	for !s.HasWon() {
		if maxTurns > 0 && s.Stats.TurnCount >= maxTurns {
			return fmt.Errorf("%w: game not won after %d turns", ErrTurnLimit, s.Stats.TurnCount)
		}
		s.Turn()
	}
	return nil
}

// Turn rolls once and keeps rolling while the maximum face comes up,
// stopping immediately once the game is won. After the turn it folds the
// per-turn climb/slide into the running maxima and keeps the greatest die
// sequence seen so far (lexicographic, longer-and-higher wins).
func (s *Sim) Turn() TurnOutcome {
	s.Stats.TurnCount++

	var outcome TurnOutcome
	for !s.HasWon() {
		result := s.Roll()
		outcome.Climb += result.ClimbDistance
		outcome.Slide += result.SlideDistance
		outcome.Rolls = append(outcome.Rolls, result.DieValue)
		if result.DieValue < s.dieSize {
			break
		}
	}

	if outcome.Climb > s.Stats.BiggestClimb {
		s.Stats.BiggestClimb = outcome.Climb
	}
	if outcome.Slide > s.Stats.BiggestSlide {
		s.Stats.BiggestSlide = outcome.Slide
	}
	if slices.Compare(outcome.Rolls, s.Stats.LongestTurn) > 0 {
		s.Stats.LongestTurn = slices.Clone(outcome.Rolls)
	}
	return outcome
}

// Roll draws one value from the die source and resolves it.
func (s *Sim) Roll() RollResult {
	return s.RollResolve(s.die.Roll())
}

// RollResolve tries to move the token forward die spaces. Overshooting the
// winning square is an illegal move: the roll counts but nothing else
// changes. Otherwise the token lands and follows any route chain, and the
// roll is scored lucky or unlucky based on the square the die landed on,
// not where the chain ended. Unlucky trumps lucky: dodging one snake onto
// another still stings.
func (s *Sim) RollResolve(dieValue int) RollResult {
	s.Stats.RollCount++

	target := s.position + dieValue
	if target > s.board.Size {
		// Illegal move: no state change beyond the roll count.
		return RollResult{DieValue: dieValue}
	}

	s.position = target
	s.followRoutes()

	result := RollResult{DieValue: dieValue}
	if s.position > target {
		result.ClimbDistance = s.position - target
	} else {
		result.SlideDistance = target - s.position
	}

	if s.unlucky[target] {
		s.Stats.UnluckyRolls++
	} else if s.lucky[target] {
		s.Stats.LuckyRolls++
	}
	return result
}

// followRoutes moves the token along snakes and ladders from the current
// position until it rests on a square with no outgoing route. Every hop
// counts toward climb/slide stats. The move is atomic: callers only ever
// observe the final resting square.
func (s *Sim) followRoutes() {
	at := s.position
	for {
		to, ok := s.board.Routes[at]
		if !ok {
			break
		}
		if to > at {
			s.Stats.ClimbCount++
			s.Stats.ClimbDistance += to - at
		} else {
			s.Stats.SlideCount++
			s.Stats.SlideDistance += at - to
		}
		at = to
	}
	s.position = at
}

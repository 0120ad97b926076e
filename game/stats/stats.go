// Package stats reduces the per-game statistics of completed simulations
// into cross-game summaries, and runs batches of independent games.
package stats

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jebob/snakes-and-ladders/game/engine"
)

// ErrEmptyBatch is returned when a reduction is requested over zero games.
// An empty batch means "no data", which is distinct from a zero statistic.
var ErrEmptyBatch = errors.New("empty batch")

// Summary is the min/arithmetic-mean/max reduction of one metric.
type Summary struct {
	Min int     `json:"min"`
	Avg float64 `json:"avg"`
	Max int     `json:"max"`
}

// MinAvgMax reduces values to a Summary. ok is false for an empty input.
func MinAvgMax(values []int) (Summary, bool) {
	if len(values) == 0 {
		return Summary{}, false
	}

	s := Summary{Min: values[0], Max: values[0]}
	sum := 0
	for _, v := range values {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		sum += v
	}
	s.Avg = float64(sum) / float64(len(values))
	return s, true
}

// MultiSimResult is the read-only reduction over a finite set of completed
// games: per-metric summaries plus global maxima for the biggest single-turn
// climb/slide and the longest turn (by die-sequence ordering).
type MultiSimResult struct {
	Games            int     `json:"games"`
	Rolls            Summary `json:"rolls"`
	ClimbDistance    Summary `json:"climb_distance"`
	SlideDistance    Summary `json:"slide_distance"`
	LuckyRolls       Summary `json:"lucky_rolls"`
	UnluckyRolls     Summary `json:"unlucky_rolls"`
	BiggestTurnClimb int     `json:"biggest_turn_climb"`
	BiggestTurnSlide int     `json:"biggest_turn_slide"`
	LongestTurn      []int   `json:"longest_turn"`
}

// FromStats reduces completed game stats into a MultiSimResult. It fails on
// an empty input: reducing zero games is undefined, not zero.
func FromStats(games []engine.Stats) (*MultiSimResult, error) {
	if len(games) == 0 {
		return nil, fmt.Errorf("%w: reduction over zero games is undefined", ErrEmptyBatch)
	}

	metric := func(pick func(engine.Stats) int) Summary {
		values := make([]int, len(games))
		for i, g := range games {
			values[i] = pick(g)
		}
		s, _ := MinAvgMax(values)
		return s
	}

	result := &MultiSimResult{
		Games:         len(games),
		Rolls:         metric(func(g engine.Stats) int { return g.RollCount }),
		ClimbDistance: metric(func(g engine.Stats) int { return g.ClimbDistance }),
		SlideDistance: metric(func(g engine.Stats) int { return g.SlideDistance }),
		LuckyRolls:    metric(func(g engine.Stats) int { return g.LuckyRolls }),
		UnluckyRolls:  metric(func(g engine.Stats) int { return g.UnluckyRolls }),
	}

	for _, g := range games {
		if g.BiggestClimb > result.BiggestTurnClimb {
			result.BiggestTurnClimb = g.BiggestClimb
		}
		if g.BiggestSlide > result.BiggestTurnSlide {
			result.BiggestTurnSlide = g.BiggestSlide
		}
		if slices.Compare(g.LongestTurn, result.LongestTurn) > 0 {
			result.LongestTurn = g.LongestTurn
		}
	}
	return result, nil
}

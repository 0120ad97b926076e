// Package engine provides the core game logic for the snakes-and-ladders
// simulator.
//
// The engine package implements the game mechanics including:
//   - Single-game turn and roll resolution (the Sim state machine)
//   - Route chaining: snakes and ladders followed atomically to a fixed point
//   - Lucky and unlucky roll classification from board geometry
//   - Per-game statistics accumulation
//   - Board configuration types and validation
//
// Core Types:
//
// Sim owns the mutable state of one game: the token position and the running
// Stats counters. It is driven by a dice.Roller injected at construction and
// reads an immutable board.Board shared across games. BoardConfig defines the
// board, die and batch parameters loaded from JSON files.
//
// Usage:
//
//	b := board.Canonical()
//	sim := engine.NewSim(b, dice.NewRandomDie(dice.DefaultDieSize))
//	sim.Run()
//	fmt.Printf("won in %d turns, %d rolls\n", sim.Stats.TurnCount, sim.Stats.RollCount)
//
// Game Rules:
//
// A turn is one or more rolls: rolling the maximum face grants another roll
// in the same turn until the game is won. Landing on a route source moves the
// token along the whole chain in one atomic step, and every hop counts toward
// climb or slide statistics. A roll that would overshoot the winning square
// does not move the token. The game is won exactly when the token rests on
// the winning square.
package engine

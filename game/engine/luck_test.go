package engine

import (
	"maps"
	"testing"

	"github.com/jebob/snakes-and-ladders/game/board"
	"github.com/jebob/snakes-and-ladders/game/dice"
)

func TestComputeLuck(t *testing.T) {
	b, err := board.New(20, map[int]int{5: 8, 14: 2})
	if err != nil {
		t.Fatalf("Failed to create board: %v", err)
	}

	lucky, unlucky := ComputeLuck(b)

	wantLucky := map[int]bool{
		5:  true, // ladder up
		12: true, 13: true, 15: true, 16: true, // near a snake
		20: true, // winning square
	}
	wantUnlucky := map[int]bool{14: true}

	if !maps.Equal(lucky, wantLucky) {
		t.Errorf("Lucky squares = %v, want %v", lucky, wantLucky)
	}
	if !maps.Equal(unlucky, wantUnlucky) {
		t.Errorf("Unlucky squares = %v, want %v", unlucky, wantUnlucky)
	}
}

func TestComputeLuck_NoUnderflow(t *testing.T) {
	// A snake starting on square 1 makes nearby squares lucky, but the
	// near-miss scan must ignore squares at or below 0
	b, err := board.New(10, map[int]int{1: 0})
	if err != nil {
		t.Fatalf("Failed to create board: %v", err)
	}

	lucky, unlucky := ComputeLuck(b)

	if !unlucky[1] {
		t.Error("Expected square 1 (snake start) to be unlucky")
	}
	for _, sq := range []int{2, 3} {
		if !lucky[sq] {
			t.Errorf("Expected square %d to be lucky (near-miss of the snake on 1)", sq)
		}
	}
	// Square 0 is within two steps of the snake on 1: still classified, the
	// scan only skips neighbor squares that would underflow
	if !lucky[0] {
		t.Error("Expected square 0 to be lucky (snake on 1 is a near-miss)")
	}
}

func TestComputeLuck_Deterministic(t *testing.T) {
	b := board.Canonical()

	l1, u1 := ComputeLuck(b)
	l2, u2 := ComputeLuck(b)

	if !maps.Equal(l1, l2) {
		t.Error("Lucky sets differ between derivations from the same board")
	}
	if !maps.Equal(u1, u2) {
		t.Error("Unlucky sets differ between derivations from the same board")
	}
}

func TestRollResolve_UnluckyTrumpsLucky(t *testing.T) {
	// Square 12 starts a snake (unlucky) and sits within two squares of the
	// snake on 14 (lucky). Landing there must score exactly one unlucky roll.
	b, err := board.New(20, map[int]int{12: 1, 14: 2})
	if err != nil {
		t.Fatalf("Failed to create board: %v", err)
	}

	sim := NewSim(b, dice.Unrollable{})
	if !sim.lucky[12] || !sim.unlucky[12] {
		t.Fatalf("Test setup: expected square 12 in both sets (lucky=%v unlucky=%v)",
			sim.lucky[12], sim.unlucky[12])
	}

	sim.SetPosition(10)
	sim.RollResolve(2)

	if sim.Stats.UnluckyRolls != 1 {
		t.Errorf("Expected unlucky_rolls 1, got %d", sim.Stats.UnluckyRolls)
	}
	if sim.Stats.LuckyRolls != 0 {
		t.Errorf("Expected lucky_rolls 0, got %d", sim.Stats.LuckyRolls)
	}
}

func TestRollResolve_LuckScoredOnLandingSquare(t *testing.T) {
	// Landing on a ladder that climbs into snake territory: luck is judged
	// on the landing square (lucky ladder), not the chain's destination.
	b, err := board.New(30, map[int]int{5: 20, 21: 3})
	if err != nil {
		t.Fatalf("Failed to create board: %v", err)
	}

	sim := NewSim(b, dice.Unrollable{})
	sim.RollResolve(5)

	if sim.Position() != 20 {
		t.Errorf("Expected position 20, got %d", sim.Position())
	}
	if sim.Stats.LuckyRolls != 1 {
		t.Errorf("Expected lucky_rolls 1, got %d", sim.Stats.LuckyRolls)
	}
	if sim.Stats.UnluckyRolls != 0 {
		t.Errorf("Expected unlucky_rolls 0, got %d", sim.Stats.UnluckyRolls)
	}
}

func TestComputeLuck_WinningSquareAlwaysLucky(t *testing.T) {
	lucky, _ := ComputeLuck(board.Blank(7))
	if !lucky[7] {
		t.Error("Expected the winning square to be lucky on a blank board")
	}
}

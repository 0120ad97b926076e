package engine

import "github.com/jebob/snakes-and-ladders/game/board"

// ComputeLuck derives the lucky and unlucky landing squares from board
// geometry. It is a pure function of the Board and is computed once per Sim.
//
// A square is unlucky if its route slides to a lower square (a snake).
// A square is lucky if its route climbs to a higher square (a ladder), or if
// any square within two steps of it starts a downward route (a near-miss of
// a snake; neighbors below square 1 are ignored). The winning square is
// always lucky.
//
// A square can appear in both sets. Callers scoring a roll must let unlucky
// trump lucky.
func ComputeLuck(b *board.Board) (lucky, unlucky map[int]bool) {
	lucky = make(map[int]bool)
	unlucky = make(map[int]bool)

	for i := 0; i < b.Size; i++ {
		if to, ok := b.Routes[i]; ok {
			if to > i {
				lucky[i] = true
			} else {
				unlucky[i] = true
			}
		}

		// Near-miss check: a snake starts within two squares of here
		for _, delta := range []int{-2, -1, 1, 2} {
			other := i + delta
			if other <= 0 {
				continue
			}
			if to, ok := b.Routes[other]; ok && to < other {
				lucky[i] = true
				break
			}
		}
	}

	lucky[b.Size] = true
	return lucky, unlucky
}

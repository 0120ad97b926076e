// Package board describes the immutable game geometry: the winning square and
// the directed shortcuts (snakes and ladders) that connect squares.
package board

import (
	"errors"
	"fmt"
)

// ErrBadRoute is the sentinel wrapped by every board validation failure.
var ErrBadRoute = errors.New("bad route")

// Board is the immutable description of a game board. Size is the winning
// square; Routes maps route sources to destinations (snakes and ladders in
// source→destination order). A Board is constructed once, validated, and then
// shared read-only by every game derived from it.
type Board struct {
	Size   int
	Routes map[int]int
}

// New validates the geometry and returns an immutable Board. For every route
// (from, to) it requires: from in [1, size-1], to in [0, size], from != to,
// and that following routes from any square terminates (no cycles). The
// domain convention that snakes descend and ladders ascend is enforced by the
// config loader, not here.
func New(size int, routes map[int]int) (*Board, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: board size must be positive, got %d", ErrBadRoute, size)
	}
	for from, to := range routes {
		if from <= 0 || from >= size {
			return nil, fmt.Errorf("%w: illegal snake/ladder start position: %d", ErrBadRoute, from)
		}
		if to < 0 || to > size {
			return nil, fmt.Errorf("%w: illegal snake/ladder end position: %d", ErrBadRoute, to)
		}
		if from == to {
			return nil, fmt.Errorf("%w: snake or ladder links to itself on square %d", ErrBadRoute, from)
		}
	}
	if err := checkCycles(routes); err != nil {
		return nil, err
	}

	// Copy so later mutation of the caller's map cannot reach the Board.
	copied := make(map[int]int, len(routes))
	for from, to := range routes {
		copied[from] = to
	}
	return &Board{Size: size, Routes: copied}, nil
}

// checkCycles rejects route graphs where following the chain from some square
// never settles (e.g. A→B→A). Without this a game could loop forever at roll
// resolution time.
func checkCycles(routes map[int]int) error {
	for start := range routes {
		seen := map[int]bool{start: true}
		at := start
		for {
			next, ok := routes[at]
			if !ok {
				break
			}
			if seen[next] {
				return fmt.Errorf("%w: route cycle detected starting from square %d", ErrBadRoute, start)
			}
			seen[next] = true
			at = next
		}
	}
	return nil
}

// Blank returns a board of the given size with no snakes or ladders.
func Blank(size int) *Board {
	b, err := New(size, map[int]int{})
	if err != nil {
		panic(err)
	}
	return b
}

// Canonical returns the reference 100-square board with 8 snakes and
// 7 ladders.
func Canonical() *Board {
	b, err := New(100, map[int]int{
		// snakes go down
		27: 5,
		40: 3,
		43: 18,
		54: 31,
		66: 45,
		76: 58,
		89: 53,
		99: 41,
		// ladders go up
		4:  25,
		13: 46,
		33: 49,
		42: 63,
		50: 69,
		62: 81,
		74: 92,
	})
	if err != nil {
		panic(err)
	}
	return b
}

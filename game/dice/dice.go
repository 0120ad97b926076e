// Package dice provides the pluggable die sources used by the simulation
// engine. A Roller is injected into every Sim: a RandomDie for real runs, a
// MockDie scripted with predetermined values for tests, and an Unrollable die
// for test paths that must never roll at all.
//
// Rolling an exhausted MockDie or an Unrollable die is a programming-contract
// violation, not a runtime condition, and panics.
package dice

import (
	"fmt"
	"math/rand"
)

// DefaultDieSize is the number of faces on a standard die. Must be >= 1.
const DefaultDieSize = 6

// Roller produces the next die face value on demand.
type Roller interface {
	Roll() int
}

// RandomDie is a uniformly random die. Each instance owns its own rng so
// independently-run games never share mutable state.
type RandomDie struct {
	size int
	rng  *rand.Rand
}

// NewRandomDie creates a random die with the given number of faces.
func NewRandomDie(size int) *RandomDie {
	if size < 1 {
		panic(fmt.Sprintf("dice: die size must be >= 1, got %d", size))
	}
	return &RandomDie{
		size: size,
		rng:  rand.New(rand.NewSource(rand.Int63())),
	}
}

// Roll returns a face value in [1, size].
func (d *RandomDie) Roll() int {
	return d.rng.Intn(d.size) + 1
}

// MockDie returns queued results, popped right to left, then panics.
// Used for scripted test games only.
type MockDie struct {
	Queued []int
}

// Roll pops the next scripted value. Panics once the queue is exhausted.
func (d *MockDie) Roll() int {
	if len(d.Queued) == 0 {
		panic("dice: mock die exhausted")
	}
	v := d.Queued[len(d.Queued)-1]
	d.Queued = d.Queued[:len(d.Queued)-1]
	return v
}

// Unrollable is a die that refuses every roll. It guarantees a test path
// never rolls by panicking if it does.
type Unrollable struct{}

// Roll always panics.
func (Unrollable) Roll() int {
	panic("dice: can't roll an unrollable die")
}

// Package random provides injectable pseudo-random sources.
//
// Code that needs randomness (for example retry jitter) depends on the
// [Source] interface so tests can swap in [Fixed] or [Seeded] and get
// deterministic behaviour.
package random

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
)

// Source produces pseudo-random values.
type Source interface {
	// Next returns a number in [0, 1).
	Next() float64

	// NextNumber returns a number in [min, max).
	NextNumber(min, max float64) float64

	// NextInteger returns an integer in [min, max].
	NextInteger(min, max int) int

	// NextBoolean returns true or false with equal probability.
	NextBoolean() bool
}

// generator derives the ranged methods of [Source] from a single
// next function returning values in [0, 1).
type generator struct {
	next func() float64
}

func (g generator) Next() float64 { return g.next() }

func (g generator) NextNumber(min, max float64) float64 {
	checkNumberRange(min, max)
	return g.next()*(max-min) + min
}

func (g generator) NextInteger(min, max int) int {
	checkIntegerRange(min, max)
	return int(math.Floor(g.next()*float64(max-min+1))) + min
}

func (g generator) NextBoolean() bool {
	return g.NextInteger(0, 1) == 1
}

func checkNumberRange(min, max float64) {
	if math.IsNaN(min) || math.IsInf(min, 0) {
		panic(fmt.Sprintf("random: min is expected to be a finite number, was: %v", min))
	}
	if math.IsNaN(max) || math.IsInf(max, 0) {
		panic(fmt.Sprintf("random: max is expected to be a finite number, was: %v", max))
	}
	if min >= max {
		panic(fmt.Sprintf("random: expected min to be less than max, min=%v max=%v", min, max))
	}
}

func checkIntegerRange(min, max int) {
	if min >= max {
		panic(fmt.Sprintf("random: expected min to be less than max, min=%d max=%d", min, max))
	}
}

// Real is a [Source] backed by the runtime's random generator.
type Real struct {
	generator
}

// NewReal returns a [Source] backed by math/rand/v2.
func NewReal() *Real {
	return &Real{generator{next: rand.Float64}}
}

// Seeded is a deterministic linear congruential [Source].
// It is safe for concurrent use.
type Seeded struct {
	generator
	mu    sync.Mutex
	state uint64
}

const (
	lcgModulus    = 1 << 31
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345

	// DefaultSeed is the seed used by [NewSeeded] when none is supplied.
	DefaultSeed uint32 = 4202137
)

// NewSeeded returns a [Seeded] source. With no argument it uses
// [DefaultSeed]; otherwise the first value is the seed.
func NewSeeded(seed ...uint32) *Seeded {
	s := DefaultSeed
	if len(seed) > 0 {
		s = seed[0]
	}
	sr := &Seeded{state: uint64(s)}
	sr.generator = generator{next: sr.step}
	return sr
}

func (s *Seeded) step() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = (lcgMultiplier*s.state + lcgIncrement) % lcgModulus
	return float64(s.state) / lcgModulus
}

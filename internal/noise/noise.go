// Package noise provides the injectable randomness used by the jitter stage.
//
// Sources are not safe for concurrent use. Each bundle owns its own source,
// which keeps parallel body ticks free of shared state.
package noise

import "math/rand/v2"

// Source supplies transmission noise.
type Source interface {
	// Offset returns a value in [-spread, spread]. Spread <= 0 returns 0.
	Offset(spread int32) int32
	// Chance reports true with probability 1/n. n <= 1 always reports true.
	Chance(n int) bool
}

type none struct{}

func (none) Offset(int32) int32 { return 0 }
func (none) Chance(int) bool    { return false }

// None returns a source that never perturbs a signal.
func None() Source { return none{} }

// SameStream reports whether a and b advance one shared mutable stream.
// Stateless sources never do.
func SameStream(a, b Source) bool {
	switch x := a.(type) {
	case *Seeded:
		y, ok := b.(*Seeded)
		return ok && x == y
	case *Sequence:
		y, ok := b.(*Sequence)
		return ok && x == y
	}
	return false
}

// Seeded is a deterministic PCG-backed source.
type Seeded struct {
	rng *rand.Rand
}

// NewSeeded returns a source whose stream depends only on seed.
func NewSeeded(seed uint64) *Seeded {
	return &Seeded{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Offset implements Source.
func (s *Seeded) Offset(spread int32) int32 {
	if spread <= 0 {
		return 0
	}
	return int32(s.rng.Int64N(2*int64(spread)+1)) - spread
}

// Chance implements Source.
func (s *Seeded) Chance(n int) bool {
	if n <= 1 {
		return true
	}
	return s.rng.IntN(n) == 0
}

// Sequence replays fixed offsets and chance outcomes, cycling when exhausted.
// Offsets are clamped to the requested spread. An empty list yields 0/false.
type Sequence struct {
	Offsets []int32
	Flips   []bool

	oi, fi int
	// Calls counts Offset invocations.
	Calls int
}

// Offset implements Source.
func (s *Sequence) Offset(spread int32) int32 {
	s.Calls++
	if len(s.Offsets) == 0 || spread <= 0 {
		return 0
	}
	v := s.Offsets[s.oi%len(s.Offsets)]
	s.oi++
	return max(-spread, min(v, spread))
}

// Chance implements Source.
func (s *Sequence) Chance(int) bool {
	if len(s.Flips) == 0 {
		return false
	}
	v := s.Flips[s.fi%len(s.Flips)]
	s.fi++
	return v
}

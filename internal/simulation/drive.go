package simulation

import (
	"github.com/nvandessel/fibertract/internal/bundle"
	"github.com/nvandessel/fibertract/internal/tract"
)

// Constant drives every efferent tract forward at magnitude and every
// afferent tract with reading.
func Constant(magnitude uint8, reading int32) Drive {
	return func(_ int, b *bundle.Bundle) bundle.Input {
		in := bundle.RestInput(b)
		for i := range in.Motor {
			in.Motor[i] = tract.Signal{Polarity: 1, Magnitude: magnitude}
		}
		for i := range in.Sensory {
			in.Sensory[i] = reading
		}
		return in
	}
}

// Rest drives nothing.
func Rest() Drive {
	return func(_ int, b *bundle.Bundle) bundle.Input { return bundle.RestInput(b) }
}

// Kinds drives only the afferent tracts of the listed kinds with reading
// and rests everything else.
func Kinds(reading int32, kinds ...tract.Kind) Drive {
	return func(_ int, b *bundle.Bundle) bundle.Input {
		in := bundle.RestInput(b)
		for pos, idx := range b.SensoryIndices() {
			t, _ := b.Tract(idx)
			for _, k := range kinds {
				if t.Kind == k {
					in.Sensory[pos] = reading
				}
			}
		}
		return in
	}
}

// Window runs d for ticks in [from, to) and rests otherwise.
func Window(from, to int, d Drive) Drive {
	return func(tick int, b *bundle.Bundle) bundle.Input {
		if tick < from || tick >= to {
			return bundle.RestInput(b)
		}
		return d(tick, b)
	}
}

// Alternate switches between a and b every period ticks, starting with a.
func Alternate(period int, a, b Drive) Drive {
	return func(tick int, bd *bundle.Bundle) bundle.Input {
		if (tick/period)%2 == 0 {
			return a(tick, bd)
		}
		return b(tick, bd)
	}
}

// Burst releases adrenaline at level for ticks in [from, from+length).
func Burst(from, length int, level uint8) Schedule {
	return func(tick int) uint8 {
		if tick >= from && tick < from+length {
			return level
		}
		return 0
	}
}

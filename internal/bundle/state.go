package bundle

import (
	"slices"

	"github.com/nvandessel/fibertract/internal/modulation"
	"github.com/nvandessel/fibertract/internal/tract"
)

// State is the persisted form of a bundle. It carries every property,
// usage counter and pain trace of every tract, plus the chemical levels.
// The noise stream position is not persisted: a restored bundle reseeds.
type State struct {
	Name       string                          `json:"name"`
	Ticks      uint64                          `json:"ticks"`
	Tracts     []tract.FiberTract              `json:"tracts"`
	Modulation [modulation.ChemicalCount]uint8 `json:"modulation"`
	DecayRate  uint8                           `json:"decay_rate"`
}

// State returns a deep copy of the bundle's persistent state.
func (b *Bundle) State() State {
	return State{
		Name:       b.name,
		Ticks:      b.ticks,
		Tracts:     slices.Clone(b.tracts),
		Modulation: b.mod.Levels,
		DecayRate:  b.mod.DecayRate,
	}
}

// FromState rebuilds a bundle from s. Options apply after the persisted
// decay rate, so WithDecayRate overrides it.
func FromState(s State, opts ...Option) (*Bundle, error) {
	all := append([]Option{WithDecayRate(s.DecayRate)}, opts...)
	b, err := New(s.Name, s.Tracts, all...)
	if err != nil {
		return nil, err
	}
	b.mod.Levels = s.Modulation
	b.ticks = s.Ticks
	return b, nil
}

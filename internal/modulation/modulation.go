// Package modulation models bundle-wide chemical state.
//
// Chemicals never touch a tract's own properties. Overlay derives the
// effective properties for one tick, and levels wear off on their own
// when they are not re-applied.
package modulation

import (
	"fmt"
	"strings"

	"github.com/nvandessel/fibertract/internal/tract"
)

// Chemical is a systemic modulator.
type Chemical uint8

const (
	// Adrenaline boosts motor gain and gates nociception.
	Adrenaline Chemical = iota
	// Endorphin gates nociception.
	Endorphin
	// Cortisol degrades precision and stamina.
	Cortisol
	// GABA inhibits transmission.
	GABA
)

// ChemicalCount is the number of chemicals.
const ChemicalCount = 4

// DefaultDecayRate is the per-tick fall of a level that was not re-applied.
const DefaultDecayRate uint8 = 8

// Chemicals returns every chemical in declaration order.
func Chemicals() []Chemical {
	return []Chemical{Adrenaline, Endorphin, Cortisol, GABA}
}

func (c Chemical) String() string {
	switch c {
	case Adrenaline:
		return "adrenaline"
	case Endorphin:
		return "endorphin"
	case Cortisol:
		return "cortisol"
	case GABA:
		return "gaba"
	}
	return fmt.Sprintf("chemical(%d)", uint8(c))
}

// ParseChemical resolves a chemical name.
func ParseChemical(s string) (Chemical, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Chemicals() {
		if c.String() == norm {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown chemical %q", s)
}

// Modulation holds one level per chemical. The zero value has no chemicals
// present and never decays; use New for the default decay rate.
type Modulation struct {
	Levels    [ChemicalCount]uint8 `json:"levels"`
	DecayRate uint8                `json:"decay_rate"`

	refreshed [ChemicalCount]bool
}

// New returns an empty modulation state decaying at rate per tick.
func New(rate uint8) Modulation {
	return Modulation{DecayRate: rate}
}

// Apply sets the level of c and keeps it from decaying at the next EndTick.
func (m *Modulation) Apply(c Chemical, level uint8) {
	m.Levels[c] = level
	m.refreshed[c] = true
}

// Level returns the current level of c.
func (m *Modulation) Level(c Chemical) uint8 {
	return m.Levels[c]
}

// Active reports whether any chemical is present.
func (m *Modulation) Active() bool {
	for _, l := range m.Levels {
		if l > 0 {
			return true
		}
	}
	return false
}

// EndTick decays every level that was not applied since the previous
// EndTick and clears the refresh marks.
func (m *Modulation) EndTick() {
	for i := range m.Levels {
		if !m.refreshed[i] {
			m.Levels[i] = tract.SatSub(m.Levels[i], m.DecayRate)
		}
		m.refreshed[i] = false
	}
}

// Reset clears every chemical.
func (m *Modulation) Reset() {
	m.Levels = [ChemicalCount]uint8{}
	m.refreshed = [ChemicalCount]bool{}
}

// Overlay returns the effective properties of a tract of the given kind
// under the current chemical levels. props is not modified.
func (m *Modulation) Overlay(kind tract.Kind, props tract.Properties) tract.Properties {
	out := props

	if l := m.Levels[Adrenaline]; l > 0 {
		if kind.IsEfferent() {
			out.Gain = tract.ClampU8(int64(out.Gain) * (512 + int64(l)) / 512)
		} else if kind.IsNociceptive() {
			out.Sensitivity = tract.SatSub(out.Sensitivity, l/4)
		}
	}
	if l := m.Levels[Endorphin]; l > 0 && kind.IsNociceptive() {
		out.Sensitivity = tract.SatSub(out.Sensitivity, l/3)
	}
	if l := m.Levels[Cortisol]; l > 0 {
		out.Jitter = tract.SatAdd(out.Jitter, l/8)
		out.Endurance = tract.SatSub(out.Endurance, l/16)
	}
	if l := m.Levels[GABA]; l > 0 {
		out.Gain = tract.SatSub(out.Gain, l/4)
	}
	return out
}

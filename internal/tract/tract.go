package tract

import "fmt"

// ReceptorMode selects phasic or tonic receptor behavior for sensory tracts.
type ReceptorMode uint8

const (
	// Phasic receptors gate weak sustained signals at the sensitivity threshold.
	Phasic ReceptorMode = iota
	// Tonic receptors report absolute levels and bypass the threshold.
	Tonic
)

func (m ReceptorMode) String() string {
	if m == Tonic {
		return "tonic"
	}
	return "phasic"
}

// ParseReceptorMode resolves "phasic" or "tonic". Empty means phasic.
func ParseReceptorMode(s string) (ReceptorMode, error) {
	switch s {
	case "", "phasic":
		return Phasic, nil
	case "tonic":
		return Tonic, nil
	}
	return Phasic, fmt.Errorf("unknown receptor mode %q", s)
}

// Usage is the per-tract activity history that drives adaptation.
type Usage struct {
	// Activity is a rolling density: 0 idle, 255 constant use.
	Activity uint8 `json:"activity"`
	// IdleTicks counts consecutive ticks without transmission.
	IdleTicks uint32 `json:"idle_ticks"`
	// Streak counts consecutive ticks with transmission.
	Streak uint32 `json:"streak"`
	// FatigueEvents counts active ticks that ended above the fatigue high-water mark.
	FatigueEvents uint32 `json:"fatigue_events"`
	// Lifetime counts every active tick.
	Lifetime uint64 `json:"lifetime"`
	// LastMotor is the previous motor output (efferent tracts only).
	LastMotor Signal `json:"last_motor"`
	// LastSensory is the previous sensory output (afferent tracts only).
	LastSensory int32 `json:"last_sensory"`
}

// PainWindow is the number of past intensities kept for onset estimation.
const PainWindow = 3

// PainTrace is the short intensity history of a nociceptive tract.
type PainTrace struct {
	// Recent holds the last PainWindow intensities, oldest first.
	Recent [PainWindow]int32 `json:"recent"`
	// Duration counts consecutive ticks above the emission threshold.
	Duration uint32 `json:"duration"`
}

// Push appends v, dropping the oldest entry, and returns the dropped value.
func (p *PainTrace) Push(v int32) int32 {
	oldest := p.Recent[0]
	copy(p.Recent[:], p.Recent[1:])
	p.Recent[PainWindow-1] = v
	return oldest
}

// Last returns the most recent intensity.
func (p PainTrace) Last() int32 {
	return p.Recent[PainWindow-1]
}

// FiberTract is one labeled-line tract and all of its evolving state.
type FiberTract struct {
	Kind       Kind         `json:"kind"`
	Properties Properties   `json:"properties"`
	Mode       ReceptorMode `json:"mode"`
	Usage      Usage        `json:"usage"`
	Pain       PainTrace    `json:"pain"`
}

// MotorDefaults are the starting properties of a new efferent tract.
var MotorDefaults = Properties{
	Conductivity: 128,
	Jitter:       128,
	Gain:         160,
	Sensitivity:  128,
	Fatigue:      0,
	Endurance:    128,
	Strength:     128,
	Elasticity:   128,
}

// SensoryDefaults are the starting properties of a new afferent tract.
var SensoryDefaults = Properties{
	Conductivity: 128,
	Jitter:       128,
	Gain:         100,
	Sensitivity:  128,
	Fatigue:      0,
	Endurance:    128,
	Strength:     128,
	Elasticity:   128,
}

// New creates a tract of the given kind with direction defaults.
func New(kind Kind) FiberTract {
	props := SensoryDefaults
	if kind.IsEfferent() {
		props = MotorDefaults
	}
	return FiberTract{Kind: kind, Properties: props}
}

// Validate checks the tract invariants: a known kind, a legal previous
// output for the carried type and no state belonging to the other direction.
func (t *FiberTract) Validate() error {
	if !t.Kind.Valid() {
		return fmt.Errorf("unknown tract kind %d", uint8(t.Kind))
	}
	if t.Mode > Tonic {
		return fmt.Errorf("%s: unknown receptor mode %d", t.Kind, uint8(t.Mode))
	}
	switch t.Kind.Carried() {
	case CarriesSignal:
		if !t.Usage.LastMotor.Valid() {
			return fmt.Errorf("%s: last output polarity %d not in {-1,0,1}", t.Kind, t.Usage.LastMotor.Polarity)
		}
		if t.Usage.LastSensory != 0 {
			return fmt.Errorf("%s: motor tract holds sensory output %d", t.Kind, t.Usage.LastSensory)
		}
	case CarriesInt32:
		if !t.Usage.LastMotor.IsRest() {
			return fmt.Errorf("%s: sensory tract holds motor output %s", t.Kind, t.Usage.LastMotor)
		}
	}
	return nil
}

// Active reports whether the tract's last output was non-zero.
func (t *FiberTract) Active() bool {
	if t.Kind.IsEfferent() {
		return !t.Usage.LastMotor.IsRest()
	}
	return t.Usage.LastSensory != 0
}

// ActivityLevel returns the absolute size of the last output.
func (t *FiberTract) ActivityLevel() uint64 {
	if t.Kind.IsEfferent() {
		return uint64(t.Usage.LastMotor.Normalize().Magnitude)
	}
	v := int64(t.Usage.LastSensory)
	if v < 0 {
		v = -v
	}
	return uint64(v)
}

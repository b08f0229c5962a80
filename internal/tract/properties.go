package tract

import (
	"fmt"
	"strings"
)

// Properties are the physical traits shaping transmission. Every field is a
// uint8, so the [0,255] bound holds by construction; arithmetic on them
// saturates rather than wraps.
type Properties struct {
	// Conductivity is myelination quality: 0 severed, 255 lossless.
	Conductivity uint8 `json:"conductivity" yaml:"conductivity"`
	// Jitter is transmission noise: 0 clean, 255 overwhelmed.
	Jitter uint8 `json:"jitter" yaml:"jitter"`
	// Gain is amplification: 128 unity, above amplifies, below attenuates.
	Gain uint8 `json:"gain" yaml:"gain"`
	// Sensitivity is detection threshold: 0 numb, 255 hypersensitive.
	Sensitivity uint8 `json:"sensitivity" yaml:"sensitivity"`
	// Fatigue is current exhaustion: 0 fresh, 255 spent.
	Fatigue uint8 `json:"fatigue" yaml:"fatigue"`
	// Endurance is fatigue resistance: 0 fragile, 255 tireless.
	Endurance uint8 `json:"endurance" yaml:"endurance"`
	// Strength is maximum force (motor) or acuity (sensory).
	Strength uint8 `json:"strength" yaml:"strength"`
	// Elasticity is tracking speed: 0 sluggish, 255 instant.
	Elasticity uint8 `json:"elasticity" yaml:"elasticity"`
}

// Property names one field of Properties.
type Property uint8

const (
	Conductivity Property = iota
	Jitter
	Gain
	Sensitivity
	Fatigue
	Endurance
	Strength
	Elasticity
)

// PropertyCount is the number of physical properties.
const PropertyCount = 8

// AllProperties returns every property in declaration order.
func AllProperties() []Property {
	return []Property{Conductivity, Jitter, Gain, Sensitivity, Fatigue, Endurance, Strength, Elasticity}
}

func (p Property) String() string {
	switch p {
	case Conductivity:
		return "conductivity"
	case Jitter:
		return "jitter"
	case Gain:
		return "gain"
	case Sensitivity:
		return "sensitivity"
	case Fatigue:
		return "fatigue"
	case Endurance:
		return "endurance"
	case Strength:
		return "strength"
	case Elasticity:
		return "elasticity"
	}
	return fmt.Sprintf("property(%d)", uint8(p))
}

// ParseProperty resolves a property name.
func ParseProperty(s string) (Property, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, p := range AllProperties() {
		if p.String() == norm {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown property %q", s)
}

// Get returns the value of p.
func (pr Properties) Get(p Property) uint8 {
	switch p {
	case Conductivity:
		return pr.Conductivity
	case Jitter:
		return pr.Jitter
	case Gain:
		return pr.Gain
	case Sensitivity:
		return pr.Sensitivity
	case Fatigue:
		return pr.Fatigue
	case Endurance:
		return pr.Endurance
	case Strength:
		return pr.Strength
	case Elasticity:
		return pr.Elasticity
	}
	panic(fmt.Sprintf("tract: unknown property %d", uint8(p)))
}

// Set assigns v to p.
func (pr *Properties) Set(p Property, v uint8) {
	switch p {
	case Conductivity:
		pr.Conductivity = v
	case Jitter:
		pr.Jitter = v
	case Gain:
		pr.Gain = v
	case Sensitivity:
		pr.Sensitivity = v
	case Fatigue:
		pr.Fatigue = v
	case Endurance:
		pr.Endurance = v
	case Strength:
		pr.Strength = v
	case Elasticity:
		pr.Elasticity = v
	default:
		panic(fmt.Sprintf("tract: unknown property %d", uint8(p)))
	}
}

// SatAdd adds d to v, saturating at 255.
func SatAdd(v, d uint8) uint8 {
	if s := uint16(v) + uint16(d); s < 255 {
		return uint8(s)
	}
	return 255
}

// SatSub subtracts d from v, saturating at 0.
func SatSub(v, d uint8) uint8 {
	if d >= v {
		return 0
	}
	return v - d
}

// ClampU8 clamps a wide integer into [0,255].
func ClampU8(v int64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

// Package tract defines fiber tract kinds, the signals they carry and the
// physical state each tract evolves across ticks.
//
// Tracts are labeled lines: the kind fixes what a value on the tract means.
// Motor (efferent) tracts carry Signal, the controller's ternary format.
// Sensory (afferent) tracts carry int32 with a wide dynamic range.
package tract

import (
	"fmt"
	"strings"
)

// Kind is the closed set of fiber tract variants.
type Kind uint8

const (
	// Proprioceptive carries position, extension and force feedback (Ia/Ib).
	Proprioceptive Kind = iota
	// Mechanoreceptive carries touch, pressure and contact (Aβ).
	Mechanoreceptive
	// NociceptiveFast carries sharp, well-localized pain (Aδ).
	NociceptiveFast
	// NociceptiveSlow carries burning, aching and itch (C fibers).
	NociceptiveSlow
	// Interoceptive carries visceral and metabolic state (visceral C).
	Interoceptive
	// MotorSkeletal carries voluntary movement commands (Aα motor).
	MotorSkeletal
	// MotorSpindle carries muscle tone and reflex drive (Aγ).
	MotorSpindle
)

// KindCount is the number of tract kinds.
const KindCount = 7

// Direction is the signal direction of a tract.
type Direction uint8

const (
	// Afferent tracts run body to controller.
	Afferent Direction = iota
	// Efferent tracts run controller to body.
	Efferent
)

func (d Direction) String() string {
	switch d {
	case Afferent:
		return "afferent"
	case Efferent:
		return "efferent"
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

// Carried identifies the value type a tract transports.
type Carried uint8

const (
	// CarriesInt32 marks sensory tracts.
	CarriesInt32 Carried = iota
	// CarriesSignal marks motor tracts.
	CarriesSignal
)

// Kinds returns every kind in ordinal order.
func Kinds() []Kind {
	return []Kind{
		Proprioceptive, Mechanoreceptive, NociceptiveFast, NociceptiveSlow,
		Interoceptive, MotorSkeletal, MotorSpindle,
	}
}

// Direction returns the tract direction for k.
func (k Kind) Direction() Direction {
	switch k {
	case Proprioceptive, Mechanoreceptive, NociceptiveFast, NociceptiveSlow, Interoceptive:
		return Afferent
	case MotorSkeletal, MotorSpindle:
		return Efferent
	}
	panic(fmt.Sprintf("tract: unknown kind %d", uint8(k)))
}

// Carried returns the value type transported by k.
func (k Kind) Carried() Carried {
	if k.Direction() == Efferent {
		return CarriesSignal
	}
	return CarriesInt32
}

// IsAfferent reports whether k is a sensory kind.
func (k Kind) IsAfferent() bool { return k.Direction() == Afferent }

// IsEfferent reports whether k is a motor kind.
func (k Kind) IsEfferent() bool { return k.Direction() == Efferent }

// IsNociceptive reports whether k carries pain.
func (k Kind) IsNociceptive() bool {
	return k == NociceptiveFast || k == NociceptiveSlow
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool { return k < KindCount }

// SpeedClass is the nominal conduction speed class (0-255). Descriptive only.
func (k Kind) SpeedClass() uint8 {
	switch k {
	case Proprioceptive:
		return 240
	case Mechanoreceptive:
		return 200
	case NociceptiveFast:
		return 140
	case NociceptiveSlow:
		return 40
	case Interoceptive:
		return 30
	case MotorSkeletal:
		return 240
	case MotorSpindle:
		return 180
	}
	return 0
}

// ShortName returns the biological fiber label.
func (k Kind) ShortName() string {
	switch k {
	case Proprioceptive:
		return "Ia/Ib"
	case Mechanoreceptive:
		return "Aβ"
	case NociceptiveFast:
		return "Aδ"
	case NociceptiveSlow:
		return "C-noci"
	case Interoceptive:
		return "C-visc"
	case MotorSkeletal:
		return "Aα-mot"
	case MotorSpindle:
		return "Aγ-spin"
	}
	return "?"
}

// String returns the configuration name of k.
func (k Kind) String() string {
	switch k {
	case Proprioceptive:
		return "proprioceptive"
	case Mechanoreceptive:
		return "mechanoreceptive"
	case NociceptiveFast:
		return "nociceptive_fast"
	case NociceptiveSlow:
		return "nociceptive_slow"
	case Interoceptive:
		return "interoceptive"
	case MotorSkeletal:
		return "motor_skeletal"
	case MotorSpindle:
		return "motor_spindle"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind resolves a configuration name (case-insensitive, '-' or '_').
func ParseKind(s string) (Kind, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, k := range Kinds() {
		if k.String() == norm {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown tract kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown tract kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

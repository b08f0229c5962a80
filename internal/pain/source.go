package pain

import (
	"fmt"
	"strings"

	"github.com/nvandessel/fibertract/internal/tract"
)

// Source classifies the process behind a pain event.
type Source uint8

const (
	// Sharp is well-localized, fast pain from Aδ fibers.
	Sharp Source = iota
	// Burning is diffuse, lingering C-fiber pain with a steep rise.
	Burning
	// Aching is dull, deep C-fiber pain.
	Aching
	// Itch is low-intensity C-fiber irritation.
	Itch
	// Visceral is internal distress.
	Visceral
	// Fatigue is the metabolic overexertion signal.
	Fatigue
)

// Sources returns every source in declaration order.
func Sources() []Source {
	return []Source{Sharp, Burning, Aching, Itch, Visceral, Fatigue}
}

// Urgency is the fixed response-priority weight of a source.
func (s Source) Urgency() uint8 {
	switch s {
	case Sharp:
		return 240
	case Burning:
		return 180
	case Visceral:
		return 140
	case Fatigue:
		return 60
	case Aching:
		return 55
	case Itch:
		return 50
	}
	panic(fmt.Sprintf("pain: unknown source %d", uint8(s)))
}

// PrimaryKind is the tract kind that typically produces s.
func (s Source) PrimaryKind() tract.Kind {
	switch s {
	case Sharp:
		return tract.NociceptiveFast
	case Burning, Aching, Itch:
		return tract.NociceptiveSlow
	case Visceral, Fatigue:
		return tract.Interoceptive
	}
	panic(fmt.Sprintf("pain: unknown source %d", uint8(s)))
}

func (s Source) String() string {
	switch s {
	case Sharp:
		return "sharp"
	case Burning:
		return "burning"
	case Aching:
		return "aching"
	case Itch:
		return "itch"
	case Visceral:
		return "visceral"
	case Fatigue:
		return "fatigue"
	}
	return fmt.Sprintf("source(%d)", uint8(s))
}

// ParseSource resolves a source name.
func ParseSource(s string) (Source, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, src := range Sources() {
		if src.String() == norm {
			return src, nil
		}
	}
	return 0, fmt.Errorf("unknown pain source %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Source) UnmarshalText(b []byte) error {
	parsed, err := ParseSource(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

package tract

import "fmt"

// Signal is the ternary motor format: a direction and an unsigned strength.
type Signal struct {
	Polarity  int8  `json:"polarity"`
	Magnitude uint8 `json:"magnitude"`
}

// NewSignal validates polarity and returns a Signal.
func NewSignal(polarity int8, magnitude uint8) (Signal, error) {
	s := Signal{Polarity: polarity, Magnitude: magnitude}
	if !s.Valid() {
		return Signal{}, fmt.Errorf("signal polarity %d not in {-1,0,1}", polarity)
	}
	return s, nil
}

// SignalFromValue converts a signed value to a Signal, clamping the
// magnitude to 255. Zero yields the rest signal.
func SignalFromValue(v int64) Signal {
	switch {
	case v > 0:
		return Signal{Polarity: 1, Magnitude: uint8(min(v, 255))}
	case v < 0:
		return Signal{Polarity: -1, Magnitude: uint8(min(-v, 255))}
	}
	return Signal{}
}

// Valid reports whether polarity is in {-1,0,1}.
func (s Signal) Valid() bool {
	return s.Polarity >= -1 && s.Polarity <= 1
}

// IsRest reports whether the signal carries no drive.
func (s Signal) IsRest() bool {
	return s.Polarity == 0 || s.Magnitude == 0
}

// Value returns polarity*magnitude in [-255, 255].
func (s Signal) Value() int64 {
	if s.IsRest() {
		return 0
	}
	return int64(s.Polarity) * int64(s.Magnitude)
}

// Normalize maps any rest signal to the zero Signal.
func (s Signal) Normalize() Signal {
	if s.IsRest() {
		return Signal{}
	}
	return s
}

func (s Signal) String() string {
	switch {
	case s.IsRest():
		return "0"
	case s.Polarity > 0:
		return fmt.Sprintf("+%d", s.Magnitude)
	default:
		return fmt.Sprintf("-%d", s.Magnitude)
	}
}

// Package fault defines the error kinds surfaced by the fiber tract core.
//
// Only two kinds exist. ConfigurationError reports malformed caller input
// (sequence lengths, missing adaptation rules, invalid settings) and always
// aborts the operation before any state is mutated. RangeViolation reports an
// out-of-range literal rejected while building tracts from a profile; runtime
// arithmetic clamps instead of raising it.
package fault

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrRange         = errors.New("range violation")
)

// ConfigurationError describes malformed input supplied by the caller.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// Configf builds a ConfigurationError with a formatted reason.
func Configf(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// RangeViolation describes a value outside its legal range.
type RangeViolation struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *RangeViolation) Error() string {
	return fmt.Sprintf("range violation: %s = %d, want [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

// Is reports whether target is ErrRange.
func (e *RangeViolation) Is(target error) bool {
	return target == ErrRange
}

// CheckU8 returns a RangeViolation when v does not fit in [0,255].
func CheckU8(field string, v int) (uint8, error) {
	if v < 0 || v > 255 {
		return 0, &RangeViolation{Field: field, Value: v, Min: 0, Max: 255}
	}
	return uint8(v), nil
}

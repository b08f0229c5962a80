// Package pipeline implements the per-tract transmission stages.
//
// Efferent: gain, conductivity, fatigue, jitter, recruitment, elasticity.
// Afferent: weber quantization, gain, conductivity, fatigue, jitter,
// sensitivity threshold, elasticity.
//
// Both pipelines are pure functions of their inputs. They never mutate the
// tract; the deltas they report are applied by the adaptation engine.
package pipeline

import (
	"github.com/nvandessel/fibertract/internal/noise"
	"github.com/nvandessel/fibertract/internal/tract"
	"github.com/nvandessel/fibertract/internal/weber"
)

// FlipJitter is the jitter above which a motor tract may invert polarity.
const FlipJitter = 200

// FlipOdds is the 1-in-N chance of a polarity flip under severe jitter.
const FlipOdds = 8

// MotorResult is the outcome of one efferent transmission.
type MotorResult struct {
	Output       tract.Signal
	FatigueDelta uint8
	Load         uint8
}

// SensoryResult is the outcome of one afferent transmission.
type SensoryResult struct {
	Output       int32
	FatigueDelta uint8
	Load         uint8
}

// Motor transmits a motor command through an efferent tract with the given
// effective properties. prev is the tract's previous output.
func Motor(in tract.Signal, p tract.Properties, prev tract.Signal, src noise.Source) MotorResult {
	in = in.Normalize()
	pol := in.Polarity
	m := int64(in.Magnitude)

	m = clamp(ApplyGain(m, p.Gain), 0, 255)
	m = clamp(ApplyConductivity(m, p.Conductivity), 0, 255)
	m = clamp(ApplyFatigue(m, p.Fatigue), 0, 255)
	load := uint8(m)
	if pol == 0 {
		load = 0
	}

	if p.Jitter > 0 && src != nil {
		m = clamp(m+int64(src.Offset(int32(p.Jitter/4))), 0, 255)
		if p.Jitter > FlipJitter && pol != 0 && src.Chance(FlipOdds) {
			pol = -pol
		}
	}

	m = Recruit(m, p.Sensitivity, p.Strength)

	target := int64(pol) * m
	out := Slew(prev.Value(), target, MotorSlewLimit(p.Elasticity))

	return MotorResult{
		Output:       tract.SignalFromValue(out),
		FatigueDelta: FatigueIncrement(load, p.Endurance),
		Load:         load,
	}
}

// Sensory transmits a stimulus reading through an afferent tract.
func Sensory(in int32, p tract.Properties, mode tract.ReceptorMode, prev int32, src noise.Source) SensoryResult {
	v := int64(weber.Quantize(in))

	v = clampI32(ApplyGain(v, p.Gain))
	v = clampI32(ApplyConductivity(v, p.Conductivity))
	v = clampI32(ApplyFatigue(v, p.Fatigue))
	load := SensoryLoad(v)

	if p.Jitter > 0 && src != nil {
		v = clampI32(v + int64(src.Offset(int32(p.Jitter/2))))
	}

	if mode != tract.Tonic {
		v = Gate(v, p.Sensitivity)
	}

	v = clampI32(Slew(int64(prev), v, SensorySlewLimit(p.Elasticity)))

	return SensoryResult{
		Output:       int32(v),
		FatigueDelta: FatigueIncrement(load, p.Endurance),
		Load:         load,
	}
}

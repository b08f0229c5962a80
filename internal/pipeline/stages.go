package pipeline

import (
	"math"

	"github.com/nvandessel/fibertract/internal/tract"
)

// Stage arithmetic is int64 throughout; callers clamp between stages.

// ApplyGain scales x by gain/128. Gain 128 is unity.
func ApplyGain(x int64, gain uint8) int64 {
	return x * int64(gain) / 128
}

// ApplyConductivity scales x by conductivity/255. Zero severs the tract.
func ApplyConductivity(x int64, conductivity uint8) int64 {
	return x * int64(conductivity) / 255
}

// ApplyFatigue attenuates x by the remaining capacity (255-fatigue)/255.
func ApplyFatigue(x int64, fatigue uint8) int64 {
	return x * int64(255-fatigue) / 255
}

// FatigueIncrement is the fatigue a tract accrues from transmitting load.
func FatigueIncrement(load uint8, endurance uint8) uint8 {
	return uint8(int64(load) * int64(255-endurance) / (255 * 16))
}

// RecruitmentThreshold is the magnitude below which motor units are
// recruited quadratically.
func RecruitmentThreshold(sensitivity uint8) int64 {
	return int64(255-sensitivity) / 2
}

// Recruit shapes a motor magnitude. Below the threshold the response is
// suppressed quadratically; from the threshold up it maps linearly onto
// [threshold, strength]. The result never exceeds strength.
func Recruit(m int64, sensitivity, strength uint8) int64 {
	t := RecruitmentThreshold(sensitivity)
	s := int64(strength)
	var out int64
	switch {
	case t == 0:
		out = m * s / 255
	case m < t:
		out = m * m / t
	default:
		out = t + (m-t)*(s-t)/(255-t)
	}
	return clamp(out, 0, s)
}

// SensoryThreshold is the magnitude a phasic receptor must reach to report.
func SensoryThreshold(sensitivity uint8) int64 {
	return int64(255-sensitivity) * 4
}

// Gate zeroes v when its magnitude is below the sensitivity threshold.
func Gate(v int64, sensitivity uint8) int64 {
	if abs(v) < SensoryThreshold(sensitivity) {
		return 0
	}
	return v
}

// MotorSlewLimit is the largest signed change a motor tract may make in
// one tick. Elasticity 255 allows a full swing from -255 to +255.
func MotorSlewLimit(elasticity uint8) int64 {
	return 1 + int64(elasticity)*509/255
}

// SensorySlewLimit is the largest change a sensory tract may make in one
// tick. It grows exponentially, doubling every 8 steps of elasticity, and
// is unlimited at 255.
func SensorySlewLimit(elasticity uint8) int64 {
	if elasticity == 255 {
		return math.MaxInt64
	}
	base := int64(1) << (elasticity / 8)
	return base + int64(elasticity%8)*base/8
}

// Slew moves from prev toward target by at most limit.
func Slew(prev, target, limit int64) int64 {
	return prev + clamp(target-prev, -limit, limit)
}

// SensoryLoad is the load figure of a sensory value, in the motor range.
func SensoryLoad(v int64) uint8 {
	return tract.ClampU8(abs(v) / 16)
}

func clamp(v, lo, hi int64) int64 {
	return max(lo, min(v, hi))
}

func clampI32(v int64) int64 {
	return clamp(v, math.MinInt32, math.MaxInt32)
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Package weber quantizes sensory magnitudes on a Weber-Fechner grid:
// the just-noticeable difference grows with the stimulus, so large
// magnitudes are represented coarsely and small ones finely.
package weber

// bucket is one band of the representable grid. first and last are the
// smallest and largest grid points inside the band.
type bucket struct {
	step  int64
	first int64
	last  int64
}

// MaxGrid is the largest grid point that fits in an int32.
const MaxGrid int64 = 2147483625

var buckets = [...]bucket{
	{step: 5, first: 0, last: 45},
	{step: 10, first: 50, last: 190},
	{step: 15, first: 210, last: 990},
	{step: 25, first: 1000, last: MaxGrid},
}

func bucketIndex(m int64) int {
	switch {
	case m < 50:
		return 0
	case m < 200:
		return 1
	case m < 1000:
		return 2
	}
	return 3
}

// Quantize snaps raw to the nearest grid point with the same sign.
// Ties round away from zero. Grid points map to themselves, so
// Quantize(Quantize(x)) == Quantize(x).
func Quantize(raw int32) int32 {
	if raw == 0 {
		return 0
	}
	m := int64(raw)
	neg := m < 0
	if neg {
		m = -m
	}

	q := nearest(m)
	if neg {
		return int32(-q)
	}
	return int32(q)
}

func nearest(m int64) int64 {
	i := bucketIndex(m)
	b := buckets[i]

	lo := m / b.step * b.step
	if lo < b.first {
		lo = buckets[i-1].last
	}
	hi := (m + b.step - 1) / b.step * b.step
	if hi > b.last {
		if i+1 < len(buckets) {
			hi = buckets[i+1].first
		} else {
			hi = MaxGrid
		}
	}

	if m-lo < hi-m {
		return lo
	}
	return hi
}

// Step returns the grid spacing around magnitude.
func Step(magnitude uint32) uint32 {
	return uint32(buckets[bucketIndex(int64(magnitude))].step)
}

// FractionPct returns the Weber fraction step/magnitude as a percentage,
// capped at 255. Magnitude 0 is undefined and reports 255.
func FractionPct(magnitude uint32) uint8 {
	if magnitude == 0 {
		return 255
	}
	return uint8(min(Step(magnitude)*100/magnitude, 255))
}

package weber

import (
	"math"
	"testing"
)

func TestQuantize(t *testing.T) {
	tests := []struct {
		in   int32
		want int32
	}{
		{0, 0},
		{3, 5},
		{2, 0},
		{47, 45},
		{48, 50},
		{55, 60},
		{-55, -60},
		{120, 120},
		{199, 190},
		{200, 210},
		{515, 510},
		{-515, -510},
		{999, 1000},
		{1012, 1000},
		{1013, 1025},
		{math.MaxInt32, 2147483625},
		{math.MinInt32, -2147483625},
	}
	for _, tt := range tests {
		if got := Quantize(tt.in); got != tt.want {
			t.Errorf("Quantize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestQuantize_Idempotent(t *testing.T) {
	samples := []int32{1, 7, 49, 50, 51, 149, 195, 196, 204, 205, 777, 995, 996, 1250, 99999, -3, -1337, math.MaxInt32, math.MinInt32}
	for v := int32(-2100); v <= 2100; v++ {
		samples = append(samples, v)
	}
	for _, v := range samples {
		once := Quantize(v)
		if twice := Quantize(once); twice != once {
			t.Fatalf("Quantize not idempotent at %d: %d then %d", v, once, twice)
		}
		if (v > 0 && once < 0) || (v < 0 && once > 0) {
			t.Fatalf("Quantize(%d) = %d changed sign", v, once)
		}
	}
}

func TestStepAndFraction(t *testing.T) {
	tests := []struct {
		m    uint32
		step uint32
		pct  uint8
	}{
		{0, 5, 255},
		{1, 5, 255},
		{10, 5, 50},
		{100, 10, 10},
		{500, 15, 3},
		{5000, 25, 0},
	}
	for _, tt := range tests {
		if got := Step(tt.m); got != tt.step {
			t.Errorf("Step(%d) = %d, want %d", tt.m, got, tt.step)
		}
		if got := FractionPct(tt.m); got != tt.pct {
			t.Errorf("FractionPct(%d) = %d, want %d", tt.m, got, tt.pct)
		}
	}
}

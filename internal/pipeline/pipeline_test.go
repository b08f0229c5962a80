package pipeline

import (
	"testing"

	"github.com/nvandessel/fibertract/internal/noise"
	"github.com/nvandessel/fibertract/internal/tract"
)

// passThrough returns properties under which every stage is the identity.
func passThrough() tract.Properties {
	return tract.Properties{
		Conductivity: 255,
		Jitter:       0,
		Gain:         128,
		Sensitivity:  255,
		Fatigue:      0,
		Endurance:    128,
		Strength:     255,
		Elasticity:   255,
	}
}

func TestMotor_Lossless(t *testing.T) {
	p := passThrough()
	for v := int64(-255); v <= 255; v++ {
		in := tract.SignalFromValue(v)
		got := Motor(in, p, tract.Signal{}, noise.None())
		if got.Output != in {
			t.Fatalf("Motor(%s) = %s, want unchanged", in, got.Output)
		}
	}
}

func TestMotor_SeveredConductivity(t *testing.T) {
	p := passThrough()
	p.Conductivity = 0
	got := Motor(tract.Signal{Polarity: 1, Magnitude: 200}, p, tract.Signal{}, noise.None())
	if !got.Output.IsRest() {
		t.Errorf("severed tract transmitted %s", got.Output)
	}
	if got.Load != 0 {
		t.Errorf("Load = %d, want 0", got.Load)
	}
}

func TestMotor_FatigueDelta(t *testing.T) {
	p := passThrough()
	p.Endurance = 0
	got := Motor(tract.Signal{Polarity: -1, Magnitude: 255}, p, tract.Signal{}, noise.None())
	if got.Load != 255 {
		t.Errorf("Load = %d, want 255", got.Load)
	}
	if got.FatigueDelta != 15 {
		t.Errorf("FatigueDelta = %d, want 15", got.FatigueDelta)
	}
}

func TestMotor_JitterZeroSkipsSource(t *testing.T) {
	src := &noise.Sequence{Offsets: []int32{7}}
	Motor(tract.Signal{Polarity: 1, Magnitude: 90}, passThrough(), tract.Signal{}, src)
	Sensory(400, passThrough(), tract.Phasic, 0, src)
	if src.Calls != 0 {
		t.Errorf("noise source consumed %d times with jitter 0", src.Calls)
	}
}

func TestMotor_SevereJitterFlips(t *testing.T) {
	p := passThrough()
	p.Jitter = 240
	src := &noise.Sequence{Offsets: []int32{0}, Flips: []bool{true}}
	got := Motor(tract.Signal{Polarity: 1, Magnitude: 100}, p, tract.Signal{}, src)
	if got.Output != (tract.Signal{Polarity: -1, Magnitude: 100}) {
		t.Errorf("Output = %s, want -100", got.Output)
	}

	p.Jitter = 200
	src = &noise.Sequence{Offsets: []int32{0}, Flips: []bool{true}}
	got = Motor(tract.Signal{Polarity: 1, Magnitude: 100}, p, tract.Signal{}, src)
	if got.Output.Polarity != 1 {
		t.Errorf("jitter 200 should not flip, got %s", got.Output)
	}
}

func TestMotor_ElasticityLimitsSlew(t *testing.T) {
	p := passThrough()
	p.Elasticity = 0
	got := Motor(tract.Signal{Polarity: 1, Magnitude: 100}, p, tract.Signal{}, noise.None())
	if got.Output != (tract.Signal{Polarity: 1, Magnitude: 1}) {
		t.Errorf("Output = %s, want +1", got.Output)
	}
	got = Motor(tract.Signal{}, p, tract.Signal{Polarity: -1, Magnitude: 40}, noise.None())
	if got.Output != (tract.Signal{Polarity: -1, Magnitude: 39}) {
		t.Errorf("Output = %s, want -39", got.Output)
	}
}

func TestRecruit(t *testing.T) {
	tests := []struct {
		name        string
		m           int64
		sensitivity uint8
		strength    uint8
		want        int64
	}{
		{"identity", 200, 255, 255, 200},
		{"zero threshold scales by strength", 200, 255, 100, 78},
		{"quadratic below threshold", 50, 55, 255, 25},
		{"threshold maps to itself", 100, 55, 255, 100},
		{"top maps to strength", 255, 55, 180, 180},
		{"weak strength caps output", 120, 55, 60, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recruit(tt.m, tt.sensitivity, tt.strength)
			if got != tt.want {
				t.Errorf("Recruit(%d, %d, %d) = %d, want %d", tt.m, tt.sensitivity, tt.strength, got, tt.want)
			}
			if got > int64(tt.strength) {
				t.Errorf("output %d exceeds strength %d", got, tt.strength)
			}
		})
	}
}

func TestSensory_WeberPassThrough(t *testing.T) {
	tests := []struct {
		in, want int32
	}{
		{120, 120},
		{515, 510},
		{-55, -60},
		{0, 0},
	}
	for _, tt := range tests {
		got := Sensory(tt.in, passThrough(), tract.Phasic, 0, noise.None())
		if got.Output != tt.want {
			t.Errorf("Sensory(%d) = %d, want %d", tt.in, got.Output, tt.want)
		}
	}
}

func TestSensory_ThresholdAndTonic(t *testing.T) {
	p := passThrough()
	p.Sensitivity = 128 // threshold 508

	if got := Sensory(300, p, tract.Phasic, 0, noise.None()); got.Output != 0 {
		t.Errorf("phasic below threshold = %d, want 0", got.Output)
	}
	if got := Sensory(300, p, tract.Tonic, 0, noise.None()); got.Output != 300 {
		t.Errorf("tonic below threshold = %d, want 300", got.Output)
	}
	if got := Sensory(600, p, tract.Phasic, 0, noise.None()); got.Output != 600 {
		t.Errorf("phasic above threshold = %d, want 600", got.Output)
	}
}

func TestSensory_Load(t *testing.T) {
	got := Sensory(1600, passThrough(), tract.Phasic, 0, noise.None())
	if got.Load != 100 {
		t.Errorf("Load = %d, want 100", got.Load)
	}
	got = Sensory(1<<30, passThrough(), tract.Phasic, 0, noise.None())
	if got.Load != 255 {
		t.Errorf("Load = %d, want capped 255", got.Load)
	}
}

func TestSlewLimits(t *testing.T) {
	if got := MotorSlewLimit(255); got != 510 {
		t.Errorf("MotorSlewLimit(255) = %d, want 510", got)
	}
	if got := MotorSlewLimit(0); got != 1 {
		t.Errorf("MotorSlewLimit(0) = %d, want 1", got)
	}
	tests := []struct {
		e    uint8
		want int64
	}{
		{0, 1},
		{4, 1},
		{8, 2},
		{12, 3},
		{16, 4},
		{128, 65536},
	}
	for _, tt := range tests {
		if got := SensorySlewLimit(tt.e); got != tt.want {
			t.Errorf("SensorySlewLimit(%d) = %d, want %d", tt.e, got, tt.want)
		}
	}
	if got := Slew(0, 1<<40, SensorySlewLimit(255)); got != 1<<40 {
		t.Errorf("unlimited slew = %d", got)
	}
}

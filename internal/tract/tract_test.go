package tract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestKind_Direction(t *testing.T) {
	tests := []struct {
		kind    Kind
		dir     Direction
		carried Carried
		speed   uint8
	}{
		{Proprioceptive, Afferent, CarriesInt32, 240},
		{Mechanoreceptive, Afferent, CarriesInt32, 200},
		{NociceptiveFast, Afferent, CarriesInt32, 140},
		{NociceptiveSlow, Afferent, CarriesInt32, 40},
		{Interoceptive, Afferent, CarriesInt32, 30},
		{MotorSkeletal, Efferent, CarriesSignal, 240},
		{MotorSpindle, Efferent, CarriesSignal, 180},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.Direction(); got != tt.dir {
				t.Errorf("Direction() = %v, want %v", got, tt.dir)
			}
			if got := tt.kind.Carried(); got != tt.carried {
				t.Errorf("Carried() = %v, want %v", got, tt.carried)
			}
			if got := tt.kind.SpeedClass(); got != tt.speed {
				t.Errorf("SpeedClass() = %d, want %d", got, tt.speed)
			}
		})
	}
	if len(Kinds()) != KindCount {
		t.Errorf("Kinds() has %d entries, want %d", len(Kinds()), KindCount)
	}
}

func TestParseKind_RoundTrip(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", k.String(), err)
		}
		if got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
	if got, err := ParseKind("Nociceptive-Fast"); err != nil || got != NociceptiveFast {
		t.Errorf("ParseKind(Nociceptive-Fast) = %v, %v", got, err)
	}
	if _, err := ParseKind("tendon"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestSignal(t *testing.T) {
	if _, err := NewSignal(2, 10); err == nil {
		t.Error("NewSignal(2, 10): expected error")
	}
	tests := []struct {
		in   int64
		want Signal
	}{
		{0, Signal{}},
		{17, Signal{Polarity: 1, Magnitude: 17}},
		{-300, Signal{Polarity: -1, Magnitude: 255}},
		{999, Signal{Polarity: 1, Magnitude: 255}},
	}
	for _, tt := range tests {
		if got := SignalFromValue(tt.in); got != tt.want {
			t.Errorf("SignalFromValue(%d) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
	rest := Signal{Polarity: 1, Magnitude: 0}
	if !rest.IsRest() || rest.Value() != 0 || rest.Normalize() != (Signal{}) {
		t.Errorf("zero magnitude should be rest: %+v", rest)
	}
}

func TestProperties_GetSet(t *testing.T) {
	var p Properties
	for i, prop := range AllProperties() {
		p.Set(prop, uint8(10+i))
	}
	for i, prop := range AllProperties() {
		if got := p.Get(prop); got != uint8(10+i) {
			t.Errorf("Get(%s) = %d, want %d", prop, got, 10+i)
		}
		parsed, err := ParseProperty(prop.String())
		if err != nil || parsed != prop {
			t.Errorf("ParseProperty(%q) = %v, %v", prop.String(), parsed, err)
		}
	}
	if _, err := ParseProperty("speed"); err == nil {
		t.Error("expected error for unknown property")
	}
}

func TestSaturating(t *testing.T) {
	if got := SatAdd(250, 10); got != 255 {
		t.Errorf("SatAdd(250,10) = %d", got)
	}
	if got := SatSub(5, 10); got != 0 {
		t.Errorf("SatSub(5,10) = %d", got)
	}
	if got := ClampU8(-4); got != 0 {
		t.Errorf("ClampU8(-4) = %d", got)
	}
	if got := ClampU8(300); got != 255 {
		t.Errorf("ClampU8(300) = %d", got)
	}
}

func TestNew_Defaults(t *testing.T) {
	motor := New(MotorSkeletal)
	if diff := cmp.Diff(MotorDefaults, motor.Properties); diff != "" {
		t.Errorf("motor defaults mismatch (-want +got):\n%s", diff)
	}
	sensory := New(Mechanoreceptive)
	if sensory.Properties.Gain != 100 {
		t.Errorf("sensory gain = %d, want 100", sensory.Properties.Gain)
	}
	if motor.Active() || sensory.Active() {
		t.Error("new tracts should be inactive")
	}
	if err := motor.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestFiberTract_Validate(t *testing.T) {
	bad := New(Proprioceptive)
	bad.Usage.LastMotor = Signal{Polarity: 1, Magnitude: 4}
	if err := bad.Validate(); err == nil {
		t.Error("sensory tract with motor output should fail validation")
	}

	motor := New(MotorSpindle)
	motor.Usage.LastMotor = Signal{Polarity: 3, Magnitude: 4}
	if err := motor.Validate(); err == nil {
		t.Error("illegal polarity should fail validation")
	}
}

func TestPainTrace_Push(t *testing.T) {
	var tr PainTrace
	for _, v := range []int32{10, 20, 30} {
		tr.Push(v)
	}
	if dropped := tr.Push(40); dropped != 10 {
		t.Errorf("Push dropped %d, want 10", dropped)
	}
	if diff := cmp.Diff([PainWindow]int32{20, 30, 40}, tr.Recent); diff != "" {
		t.Errorf("Recent mismatch (-want +got):\n%s", diff)
	}
	if tr.Last() != 40 {
		t.Errorf("Last() = %d", tr.Last())
	}
}

package modulation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nvandessel/fibertract/internal/tract"
)

func TestOverlay_Adrenaline(t *testing.T) {
	m := New(DefaultDecayRate)
	m.Apply(Adrenaline, 200)

	motor := m.Overlay(tract.MotorSkeletal, tract.MotorDefaults)
	if motor.Gain != 222 {
		t.Errorf("motor gain = %d, want 222", motor.Gain)
	}

	noci := m.Overlay(tract.NociceptiveFast, tract.SensoryDefaults)
	if noci.Sensitivity != 78 {
		t.Errorf("nociceptive sensitivity = %d, want 78", noci.Sensitivity)
	}

	touch := m.Overlay(tract.Mechanoreceptive, tract.SensoryDefaults)
	if diff := cmp.Diff(tract.SensoryDefaults, touch); diff != "" {
		t.Errorf("mechanoreceptive changed under adrenaline (-want +got):\n%s", diff)
	}
}

func TestOverlay_DoesNotMutate(t *testing.T) {
	m := New(DefaultDecayRate)
	for _, c := range Chemicals() {
		m.Apply(c, 255)
	}
	props := tract.MotorDefaults
	_ = m.Overlay(tract.MotorSpindle, props)
	if diff := cmp.Diff(tract.MotorDefaults, props); diff != "" {
		t.Errorf("Overlay mutated input (-want +got):\n%s", diff)
	}
}

func TestOverlay_Others(t *testing.T) {
	tests := []struct {
		name string
		chem Chemical
		kind tract.Kind
		want func(tract.Properties) tract.Properties
	}{
		{"endorphin gates nociception", Endorphin, tract.NociceptiveSlow, func(p tract.Properties) tract.Properties {
			p.Sensitivity -= 40
			return p
		}},
		{"endorphin ignores motor", Endorphin, tract.MotorSkeletal, func(p tract.Properties) tract.Properties {
			return p
		}},
		{"cortisol degrades", Cortisol, tract.Interoceptive, func(p tract.Properties) tract.Properties {
			p.Jitter += 15
			p.Endurance -= 7
			return p
		}},
		{"gaba inhibits", GABA, tract.MotorSkeletal, func(p tract.Properties) tract.Properties {
			p.Gain -= 30
			return p
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(DefaultDecayRate)
			m.Apply(tt.chem, 120)
			base := tract.New(tt.kind).Properties
			got := m.Overlay(tt.kind, base)
			if diff := cmp.Diff(tt.want(base), got); diff != "" {
				t.Errorf("Overlay mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEndTick_WearsOff(t *testing.T) {
	m := New(DefaultDecayRate)
	m.Apply(Adrenaline, 200)
	m.EndTick()
	if m.Level(Adrenaline) != 200 {
		t.Fatalf("refreshed level decayed to %d", m.Level(Adrenaline))
	}
	m.EndTick()
	if m.Level(Adrenaline) != 192 {
		t.Errorf("level = %d, want 192", m.Level(Adrenaline))
	}
	for i := 0; i < 30; i++ {
		m.EndTick()
	}
	if m.Active() {
		t.Errorf("levels still active: %v", m.Levels)
	}
}

func TestReset(t *testing.T) {
	m := New(DefaultDecayRate)
	m.Apply(GABA, 90)
	m.Reset()
	if m.Active() {
		t.Error("Reset left chemicals active")
	}
}

func TestParseChemical(t *testing.T) {
	for _, c := range Chemicals() {
		got, err := ParseChemical(c.String())
		if err != nil || got != c {
			t.Errorf("ParseChemical(%q) = %v, %v", c.String(), got, err)
		}
	}
	if _, err := ParseChemical("dopamine"); err == nil {
		t.Error("expected error for unknown chemical")
	}
}

package simulation

import (
	"testing"

	"github.com/nvandessel/fibertract/internal/adapt"
	"github.com/nvandessel/fibertract/internal/tract"
)

// TestPractice_Sharpens drives a motor tract hard for 300 ticks. Once
// activity crosses the use threshold (tick 4) every drifting property moves
// one step per tick toward its practiced limit.
func TestPractice_Sharpens(t *testing.T) {
	r := NewTestRunner(t, quietBundle(t, "arm", tract.MotorSkeletal))
	result := MustRun(t, r, Scenario{
		Name:   "practice",
		Ticks:  300,
		Drive:  Constant(200, 0),
		Record: true,
	})

	AssertMonotonic(t, result, "arm", 0, tract.Jitter, -1)
	AssertMonotonic(t, result, "arm", 0, tract.Conductivity, +1)
	AssertSettles(t, result, "arm", 0, tract.Jitter, 8, 200)
	AssertSettles(t, result, "arm", 0, tract.Conductivity, 255, 200)
	AssertSettles(t, result, "arm", 0, tract.Strength, 255, 200)
	AssertSettles(t, result, "arm", 0, tract.Sensitivity, 240, 200)
	AssertWithinRules(t, result, adapt.DefaultConfig())

	// Fatigue settles below the high-water mark, so endurance never grows.
	AssertSettles(t, result, "arm", 0, tract.Endurance, 128, 0)

	jitter := PropertySeries(result, "arm", 0, tract.Jitter)
	if jitter[3] != 128 || jitter[4] != 127 {
		t.Errorf("jitter should start falling at tick 4, got %v", jitter[:6])
	}
}

// TestDisuse_Atrophies leaves a bundle idle. After the idle threshold
// (tick 50) properties decay to their floors and jitter blurs to its
// ceiling.
func TestDisuse_Atrophies(t *testing.T) {
	r := NewTestRunner(t, quietBundle(t, "gaze", tract.MotorSkeletal, tract.Proprioceptive))
	result := MustRun(t, r, Scenario{
		Name:   "disuse",
		Ticks:  400,
		Record: true,
	})

	AssertSettles(t, result, "gaze", 0, tract.Conductivity, 16, 200)
	AssertSettles(t, result, "gaze", 0, tract.Strength, 32, 200)
	AssertSettles(t, result, "gaze", 0, tract.Jitter, 200, 200)
	AssertSettles(t, result, "gaze", 1, tract.Sensitivity, 32, 200)
	AssertSettles(t, result, "gaze", 1, tract.Conductivity, 16, 200)
	AssertMonotonic(t, result, "gaze", 0, tract.Conductivity, -1)
	AssertWithinRules(t, result, adapt.DefaultConfig())
	AssertNoPain(t, result)

	cond := PropertySeries(result, "gaze", 0, tract.Conductivity)
	if cond[49] != 128 || cond[50] != 127 {
		t.Errorf("conductivity should start decaying at tick 50, got %v", cond[48:52])
	}
}

// TestRecovery_AfterRest practices, rests past the idle threshold, then
// practices again. Jitter falls, blurs back while idle, then falls again.
func TestRecovery_AfterRest(t *testing.T) {
	r := NewTestRunner(t, quietBundle(t, "arm", tract.MotorSkeletal))
	result := MustRun(t, r, Scenario{
		Name:   "practice-rest-practice",
		Ticks:  450,
		Drive:  Alternate(150, Constant(200, 0), Rest()),
		Record: true,
	})

	jitter := PropertySeries(result, "arm", 0, tract.Jitter)
	if jitter[149] != 8 {
		t.Errorf("jitter after practice = %d, want 8", jitter[149])
	}
	if jitter[299] <= jitter[149] {
		t.Errorf("jitter did not blur during rest: %d -> %d", jitter[149], jitter[299])
	}
	if jitter[449] >= jitter[299] {
		t.Errorf("jitter did not sharpen on renewed practice: %d -> %d", jitter[299], jitter[449])
	}
}

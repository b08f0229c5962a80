package simulation

import (
	"testing"

	"github.com/nvandessel/fibertract/internal/pain"
	"github.com/nvandessel/fibertract/internal/profile"
	"github.com/nvandessel/fibertract/internal/tract"
)

// TestSustainedPain_Habituates holds a strong stimulus on a fast
// nociceptor. Output climbs while conductivity myelinates, then plateaus;
// once the plateau has lasted past the habituation window the events are
// flagged as habituating and their salience halves.
func TestSustainedPain_Habituates(t *testing.T) {
	r := NewTestRunner(t, quietBundle(t, "hand", tract.NociceptiveFast))
	result := MustRun(t, r, Scenario{
		Name:  "sustained",
		Ticks: 200,
		Drive: Constant(0, 3000),
	})

	AssertPainEmitted(t, result, pain.Sharp, 200)

	first := result.Ticks[0].Result.Pain[0]
	if first.Habituating || first.DurationTicks != 1 {
		t.Errorf("first event = %+v, want fresh", first)
	}
	if !first.IsUrgent() {
		t.Errorf("3000 on a fast nociceptor should be urgent: %+v", first)
	}

	last := result.Ticks[199].Result.Pain[0]
	if !last.Habituating {
		t.Errorf("last event should habituate: %+v", last)
	}
	if last.DurationTicks != 200 {
		t.Errorf("DurationTicks = %d, want 200", last.DurationTicks)
	}
	if last.Intensity != 2343 {
		t.Errorf("plateau intensity = %d, want 2343", last.Intensity)
	}

	best, ok := result.MostSalient()
	if !ok || best.Habituating {
		t.Errorf("MostSalient = %+v, want a non-habituating event", best)
	}
}

func TestPain_OrderedAcrossBundles(t *testing.T) {
	r := NewTestRunner(t,
		quietBundle(t, "right_hand", tract.NociceptiveFast, tract.MotorSkeletal, tract.NociceptiveFast),
		quietBundle(t, "left_hand", tract.NociceptiveFast, tract.NociceptiveFast),
	)
	result := MustRun(t, r, Scenario{
		Name:  "both-hands",
		Ticks: 5,
		Drive: Constant(0, 3000),
	})

	AssertPainOrdered(t, result)
	for _, rec := range result.Ticks {
		if got := len(rec.Result.Pain); got != 4 {
			t.Errorf("tick %d: %d events, want 4", rec.Index, got)
		}
	}
	ev := result.Ticks[0].Result.Pain
	if ev[0].Bundle != "left_hand" || ev[3].Bundle != "right_hand" || ev[3].TractIndex != 2 {
		t.Errorf("unexpected order: %+v", ev)
	}
}

// TestHandPreset_OnlyFastPain stimulates only the fast nociceptors of a
// full hand preset. Everything it reports is sharp.
func TestHandPreset_OnlyFastPain(t *testing.T) {
	hand, err := profile.Hand("left").Bundle()
	if err != nil {
		t.Fatalf("Hand: %v", err)
	}
	r := NewTestRunner(t, hand)
	result := MustRun(t, r, Scenario{
		Name:  "pinprick",
		Ticks: 5,
		Drive: Kinds(3000, tract.NociceptiveFast),
	})

	counts := result.PainBySource()
	if counts[pain.Sharp] != 5*8 {
		t.Errorf("sharp events = %d, want %d", counts[pain.Sharp], 5*8)
	}
	if len(counts) != 1 {
		t.Errorf("unexpected sources: %v", counts)
	}
}

func TestWindow_LimitsPain(t *testing.T) {
	r := NewTestRunner(t, quietBundle(t, "hand", tract.NociceptiveFast))
	result := MustRun(t, r, Scenario{
		Name:  "window",
		Ticks: 10,
		Drive: Window(3, 6, Constant(0, 3000)),
	})

	for _, rec := range result.Ticks {
		want := rec.Index >= 3 && rec.Index < 6
		if got := len(rec.Result.Pain) > 0; got != want {
			t.Errorf("tick %d: pain = %v, want %v", rec.Index, got, want)
		}
	}
}

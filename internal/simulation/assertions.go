package simulation

import (
	"testing"

	"github.com/nvandessel/fibertract/internal/adapt"
	"github.com/nvandessel/fibertract/internal/modulation"
	"github.com/nvandessel/fibertract/internal/pain"
	"github.com/nvandessel/fibertract/internal/tract"
)

// PropertySeries returns one property of one tract after every recorded
// tick. It is nil when the result was not recorded or the tract does not
// exist.
func PropertySeries(result Result, bundleName string, index int, p tract.Property) []uint8 {
	var out []uint8
	for _, rec := range result.Ticks {
		s, ok := rec.State(bundleName)
		if !ok || index >= len(s.Tracts) {
			return nil
		}
		out = append(out, s.Tracts[index].Properties.Get(p))
	}
	return out
}

func mustSeries(t testing.TB, result Result, bundleName string, index int, p tract.Property) []uint8 {
	t.Helper()
	series := PropertySeries(result, bundleName, index, p)
	if len(series) == 0 {
		t.Fatalf("no recorded %s for %s[%d]; was the scenario run with Record?", p, bundleName, index)
	}
	return series
}

// AssertSettles asserts that a property reaches want by tick byTick and
// holds it for the rest of the run.
func AssertSettles(t testing.TB, result Result, bundleName string, index int, p tract.Property, want uint8, byTick int) {
	t.Helper()
	series := mustSeries(t, result, bundleName, index, p)
	if byTick >= len(series) {
		t.Fatalf("AssertSettles: run has %d ticks, need more than %d", len(series), byTick)
	}
	for i := byTick; i < len(series); i++ {
		if series[i] != want {
			t.Errorf("AssertSettles: %s[%d] %s = %d at tick %d, want %d from tick %d",
				bundleName, index, p, series[i], i, want, byTick)
			return
		}
	}
}

// AssertMonotonic asserts that a property never moves against dir: +1
// means it never falls, -1 that it never rises.
func AssertMonotonic(t testing.TB, result Result, bundleName string, index int, p tract.Property, dir int) {
	t.Helper()
	series := mustSeries(t, result, bundleName, index, p)
	for i := 1; i < len(series); i++ {
		d := int(series[i]) - int(series[i-1])
		if d*dir < 0 {
			t.Errorf("AssertMonotonic: %s[%d] %s moved %d -> %d at tick %d",
				bundleName, index, p, series[i-1], series[i], i)
			return
		}
	}
}

// AssertWithinRules asserts that every drifting property of every recorded
// tract stays between its rule's floor and ceiling, widened to include the
// value the tract started the run with.
func AssertWithinRules(t testing.TB, result Result, cfg adapt.Config) {
	t.Helper()
	if len(result.Ticks) == 0 || result.Ticks[0].States == nil {
		t.Fatal("AssertWithinRules: result has no recorded states")
	}
	first := result.Ticks[0].States
	for _, rec := range result.Ticks {
		for bi, s := range rec.States {
			for ti, tr := range s.Tracts {
				for _, p := range adapt.RequiredRules {
					rule := cfg.Rules[p.String()]
					start := first[bi].Tracts[ti].Properties.Get(p)
					lo, hi := min(rule.Floor, start), max(rule.Ceiling, start)
					if v := tr.Properties.Get(p); v < lo || v > hi {
						t.Errorf("AssertWithinRules: tick %d: %s[%d] %s = %d outside [%d, %d]",
							rec.Index, s.Name, ti, p, v, lo, hi)
					}
				}
			}
		}
	}
}

// AssertChemicalClears asserts that c is gone from the bundle by tick
// byTick and stays gone.
func AssertChemicalClears(t testing.TB, result Result, bundleName string, c modulation.Chemical, byTick int) {
	t.Helper()
	for _, rec := range result.Ticks[byTick:] {
		s, ok := rec.State(bundleName)
		if !ok {
			t.Fatalf("AssertChemicalClears: no recorded state for %s", bundleName)
		}
		if l := s.Modulation[c]; l != 0 {
			t.Errorf("AssertChemicalClears: %s %s = %d at tick %d, want 0 from tick %d",
				bundleName, c, l, rec.Index, byTick)
			return
		}
	}
}

// AssertPainEmitted asserts that at least minCount events of source were
// emitted over the run.
func AssertPainEmitted(t testing.TB, result Result, source pain.Source, minCount int) {
	t.Helper()
	if got := result.PainBySource()[source]; got < minCount {
		t.Errorf("AssertPainEmitted: %d %s events, want at least %d", got, source, minCount)
	}
}

// AssertNoPain asserts that the run emitted no pain at all.
func AssertNoPain(t testing.TB, result Result) {
	t.Helper()
	if events := result.Pain(); len(events) > 0 {
		t.Errorf("AssertNoPain: %d events, first %+v", len(events), events[0])
	}
}

// AssertPainOrdered asserts that every tick's events are ordered by bundle
// name, then tract index.
func AssertPainOrdered(t testing.TB, result Result) {
	t.Helper()
	for _, rec := range result.Ticks {
		ev := rec.Result.Pain
		for i := 1; i < len(ev); i++ {
			a, b := ev[i-1], ev[i]
			if a.Bundle > b.Bundle || (a.Bundle == b.Bundle && a.TractIndex >= b.TractIndex) {
				t.Errorf("AssertPainOrdered: tick %d: %s[%d] before %s[%d]",
					rec.Index, a.Bundle, a.TractIndex, b.Bundle, b.TractIndex)
				return
			}
		}
	}
}

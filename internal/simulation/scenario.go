package simulation

import (
	"github.com/nvandessel/fibertract/internal/bundle"
	"github.com/nvandessel/fibertract/internal/pain"
)

// Drive produces one bundle's input for a tick.
type Drive func(tick int, b *bundle.Bundle) bundle.Input

// Schedule produces the adrenaline level for a tick. Zero applies nothing.
type Schedule func(tick int) uint8

// Scenario defines a complete simulation experiment.
type Scenario struct {
	Name  string
	Ticks int

	// Drive feeds every bundle without an entry in Drives. Nil means rest.
	Drive  Drive
	Drives map[string]Drive

	// Adrenaline is applied body-wide each tick. Nil means none.
	Adrenaline Schedule

	// Record keeps the body state after every tick in the result.
	Record bool

	// Checkpoint saves a snapshot every N ticks when the runner has a
	// store. Zero disables it.
	Checkpoint int

	// BeforeTick, when non-nil, is called before each tick executes. Use it
	// to modulate bundles or inject faults between ticks.
	BeforeTick func(tick int, body *bundle.Body)

	// OnTick, when non-nil, receives each tick's record as it completes.
	OnTick func(TickRecord)
}

func (s Scenario) inputs(tick int, body *bundle.Body) map[string]bundle.Input {
	in := make(map[string]bundle.Input, len(body.Names()))
	for _, b := range body.Bundles() {
		d := s.Drive
		if override, ok := s.Drives[b.Name()]; ok {
			d = override
		}
		if d == nil {
			in[b.Name()] = bundle.RestInput(b)
			continue
		}
		in[b.Name()] = d(tick, b)
	}
	return in
}

func (s Scenario) adrenaline(tick int) uint8 {
	if s.Adrenaline == nil {
		return 0
	}
	return s.Adrenaline(tick)
}

// TickRecord captures the outcome of a single tick.
type TickRecord struct {
	Index  int
	Result bundle.BodyResult
	// States is the body state after the tick, sorted by bundle name. It
	// is nil unless the scenario records.
	States []bundle.State
}

// State returns the recorded state of the named bundle.
func (r TickRecord) State(name string) (bundle.State, bool) {
	for _, s := range r.States {
		if s.Name == name {
			return s, true
		}
	}
	return bundle.State{}, false
}

// Result captures every tick and the snapshots written along the way.
type Result struct {
	Scenario  string
	Ticks     []TickRecord
	Snapshots []string
}

// Pain returns every pain event of the run in tick order.
func (r Result) Pain() []pain.Event {
	var out []pain.Event
	for _, t := range r.Ticks {
		out = append(out, t.Result.Pain...)
	}
	return out
}

// PainBySource counts pain events per source.
func (r Result) PainBySource() map[pain.Source]int {
	counts := make(map[pain.Source]int)
	for _, ev := range r.Pain() {
		counts[ev.Source]++
	}
	return counts
}

// MostSalient returns the most salient pain event of the run. Ties go to
// the earliest.
func (r Result) MostSalient() (pain.Event, bool) {
	var best pain.Event
	found := false
	for _, ev := range r.Pain() {
		if !found || ev.Salience() > best.Salience() {
			best, found = ev, true
		}
	}
	return best, found
}

package bundle

import (
	"context"
	"slices"

	"github.com/nvandessel/fibertract/internal/adapt"
	"github.com/nvandessel/fibertract/internal/fault"
	"github.com/nvandessel/fibertract/internal/logging"
	"github.com/nvandessel/fibertract/internal/modulation"
	"github.com/nvandessel/fibertract/internal/pipeline"
	"github.com/nvandessel/fibertract/internal/tract"
)

// CheckInputs reports a ConfigurationError when the inputs do not match the
// bundle's efferent and afferent tract counts or a command has an illegal
// polarity.
func (b *Bundle) CheckInputs(motor []tract.Signal, sensory []int32) error {
	if want := b.MotorCount(); len(motor) != want {
		return fault.Configf("motor", "bundle %q: got %d commands for %d efferent tracts", b.name, len(motor), want)
	}
	if want := b.SensoryCount(); len(sensory) != want {
		return fault.Configf("sensory", "bundle %q: got %d readings for %d afferent tracts", b.name, len(sensory), want)
	}
	for i, s := range motor {
		if !s.Valid() {
			return fault.Configf("motor", "bundle %q: command %d has polarity %d", b.name, i, s.Polarity)
		}
	}
	return nil
}

// Tick drives one step. A non-zero level applies adrenaline for this tick;
// zero applies nothing and lets the standing level wear off.
func (b *Bundle) Tick(motor []tract.Signal, sensory []int32, level uint8) (TickResult, error) {
	if err := b.CheckInputs(motor, sensory); err != nil {
		return TickResult{}, err
	}

	mod := b.mod
	if level > 0 {
		mod.Apply(modulation.Adrenaline, level)
	}
	gate := mod.Level(modulation.Adrenaline)

	next := slices.Clone(b.tracts)
	res := TickResult{
		Motor:   make([]tract.Signal, 0, len(motor)),
		Sensory: make([]int32, 0, len(sensory)),
	}

	trace := b.logger.Enabled(context.Background(), logging.LevelTrace)
	mi, si := 0, 0
	for i := range next {
		t := &next[i]
		eff := mod.Overlay(t.Kind, t.Properties)

		var obs adapt.Observation
		if t.Kind.IsEfferent() {
			out := pipeline.Motor(motor[mi], eff, t.Usage.LastMotor, b.src)
			mi++
			t.Usage.LastMotor = out.Output
			res.Motor = append(res.Motor, out.Output)
			obs = adapt.Observation{Load: out.Load, FatigueDelta: out.FatigueDelta}
		} else {
			out := pipeline.Sensory(sensory[si], eff, t.Mode, t.Usage.LastSensory, b.src)
			si++
			t.Usage.LastSensory = out.Output
			res.Sensory = append(res.Sensory, out.Output)
			obs = adapt.Observation{Load: out.Load, FatigueDelta: out.FatigueDelta}

			if ev, ok := b.pain.Derive(out.Output, t.Kind, gate, &t.Pain, b.name, i); ok {
				res.Pain = append(res.Pain, ev)
			}
		}

		b.engine.Step(t, obs)

		if trace {
			b.logger.Log(context.Background(), logging.LevelTrace, "tract transmitted",
				"bundle", b.name, "index", i, "kind", t.Kind.String(),
				"load", obs.Load, "fatigue", t.Properties.Fatigue)
		}
	}

	mod.EndTick()
	b.tracts = next
	b.mod = mod
	b.ticks++

	b.logTick(res)
	return res, nil
}

func (b *Bundle) logTick(res TickResult) {
	b.logger.Debug("bundle tick",
		"bundle", b.name, "tick", b.ticks,
		"active", b.IsActive(), "pain_events", len(res.Pain))

	if b.events == nil {
		return
	}
	b.events.Log("tick", map[string]any{
		"bundle":  b.name,
		"tick":    b.ticks,
		"motor":   res.Motor,
		"sensory": res.Sensory,
	})
	for _, ev := range res.Pain {
		b.events.Log("pain", map[string]any{
			"bundle":      ev.Bundle,
			"tick":        b.ticks,
			"tract_index": ev.TractIndex,
			"source":      ev.Source.String(),
			"intensity":   ev.Intensity,
			"onset":       ev.Onset,
			"duration":    ev.DurationTicks,
			"habituating": ev.Habituating,
			"salience":    ev.Salience(),
			"urgent":      ev.IsUrgent(),
		})
	}
}

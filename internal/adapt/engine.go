// Package adapt implements use-dependent drift of tract properties.
//
// Tracts do not learn. Properties move by fixed, saturating steps driven by
// the tract's usage history: used tracts myelinate and strengthen, idle tracts
// atrophy, fatigue accumulates under load and recovers every tick.
package adapt

import (
	"github.com/nvandessel/fibertract/internal/tract"
)

// Observation is what the pipeline reported for one tract this tick. The
// zero value means the pipeline did not run.
type Observation struct {
	Load         uint8
	FatigueDelta uint8
}

// Engine applies a validated Config. It holds no mutable state and may be
// shared between goroutines.
type Engine struct {
	cfg   Config
	rules [tract.PropertyCount]Rule
}

// NewEngine validates cfg and returns an engine for it.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg}
	for _, p := range RequiredRules {
		e.rules[p] = cfg.Rules[p.String()]
	}
	return e, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Step advances one tract by one tick.
func (e *Engine) Step(t *tract.FiberTract, obs Observation) {
	u := &t.Usage
	p := &t.Properties
	active := obs.Load > 0

	// 1. Usage.
	if active {
		u.Activity = tract.SatAdd(u.Activity, max((255-u.Activity)/16, 1))
		u.IdleTicks = 0
		u.Streak++
		u.Lifetime++
	} else {
		u.Activity = tract.SatSub(u.Activity, max(u.Activity/16, 1))
		u.IdleTicks++
		u.Streak = 0
	}
	inUse := u.Activity > e.cfg.UseThreshold
	idle := u.IdleTicks > e.cfg.IdleThreshold

	// 2. Fatigue accrual.
	fr := e.rules[tract.Fatigue]
	p.Fatigue = rise(p.Fatigue, obs.FatigueDelta, fr.Ceiling)
	fatiguing := active && p.Fatigue > e.cfg.FatigueHighWater
	if fatiguing {
		u.FatigueEvents++
	}

	// 3. Conductivity and strength.
	for _, prop := range []tract.Property{tract.Conductivity, tract.Strength} {
		r := e.rules[prop]
		switch {
		case inUse:
			p.Set(prop, rise(p.Get(prop), r.UseGainRate, r.Ceiling))
		case idle:
			p.Set(prop, fall(p.Get(prop), r.IdleDecayRate, r.Floor))
		}
	}

	// 4. Jitter: practice sharpens, disuse blurs.
	jr := e.rules[tract.Jitter]
	switch {
	case inUse:
		p.Jitter = fall(p.Jitter, jr.UseGainRate, jr.Floor)
	case idle:
		p.Jitter = rise(p.Jitter, jr.IdleDecayRate, jr.Ceiling)
	}

	// 5. Sensitivity.
	sr := e.rules[tract.Sensitivity]
	switch {
	case inUse:
		p.Sensitivity = rise(p.Sensitivity, sr.UseGainRate, sr.Ceiling)
	case idle:
		p.Sensitivity = fall(p.Sensitivity, sr.IdleDecayRate, sr.Floor)
	}

	// 6. Endurance grows once per EnduranceEvents fatiguing events.
	er := e.rules[tract.Endurance]
	switch {
	case fatiguing && u.FatigueEvents%e.cfg.EnduranceEvents == 0:
		p.Endurance = rise(p.Endurance, er.UseGainRate, er.Ceiling)
	case idle:
		p.Endurance = fall(p.Endurance, er.IdleDecayRate, er.Floor)
	}

	// 7. Elasticity.
	lr := e.rules[tract.Elasticity]
	switch {
	case inUse:
		p.Elasticity = rise(p.Elasticity, lr.UseGainRate, lr.Ceiling)
	case idle:
		p.Elasticity = fall(p.Elasticity, lr.IdleDecayRate, lr.Floor)
	}

	// 8. Recovery runs every tick.
	p.Fatigue = fall(p.Fatigue, tract.SatAdd(fr.IdleDecayRate, p.Endurance/64), fr.Floor)
}

// rise moves v up by rate without crossing ceiling. Values already at or
// above the ceiling are left alone.
func rise(v, rate, ceiling uint8) uint8 {
	if v >= ceiling {
		return v
	}
	return min(tract.SatAdd(v, rate), ceiling)
}

// fall moves v down by rate without crossing floor. Values already at or
// below the floor are left alone.
func fall(v, rate, floor uint8) uint8 {
	if v <= floor {
		return v
	}
	return max(tract.SatSub(v, rate), floor)
}

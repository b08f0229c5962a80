package adapt

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/nvandessel/fibertract/internal/fault"
	"github.com/nvandessel/fibertract/internal/tract"
)

func newEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing jitter", func(c *Config) { delete(c.Rules, "jitter") }},
		{"missing fatigue", func(c *Config) { delete(c.Rules, "fatigue") }},
		{"gain rule", func(c *Config) { c.Rules["gain"] = Rule{Ceiling: 255} }},
		{"unknown property", func(c *Config) { c.Rules["speed"] = Rule{} }},
		{"floor above ceiling", func(c *Config) { c.Rules["strength"] = Rule{Floor: 200, Ceiling: 100} }},
		{"zero endurance events", func(c *Config) { c.EnduranceEvents = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := NewEngine(cfg)
			if !errors.Is(err, fault.ErrConfiguration) {
				t.Fatalf("NewEngine error = %v, want ConfigurationError", err)
			}
		})
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig invalid: %v", err)
	}
}

func TestStep_UsageCounters(t *testing.T) {
	e := newEngine(t, DefaultConfig())
	tr := tract.New(tract.MotorSkeletal)

	for i := 0; i < 3; i++ {
		e.Step(&tr, Observation{Load: 50})
	}
	if tr.Usage.Streak != 3 || tr.Usage.Lifetime != 3 || tr.Usage.IdleTicks != 0 {
		t.Errorf("after 3 active ticks: %+v", tr.Usage)
	}
	// 0 -> 15 -> 30 -> 44
	if tr.Usage.Activity != 44 {
		t.Errorf("Activity = %d, want 44", tr.Usage.Activity)
	}

	e.Step(&tr, Observation{})
	if tr.Usage.Streak != 0 || tr.Usage.IdleTicks != 1 || tr.Usage.Lifetime != 3 {
		t.Errorf("after idle tick: %+v", tr.Usage)
	}
	if tr.Usage.Activity != 42 {
		t.Errorf("Activity = %d, want 42", tr.Usage.Activity)
	}
}

func TestStep_IdleAtrophy(t *testing.T) {
	cfg := DefaultConfig()
	e := newEngine(t, cfg)
	tr := tract.New(tract.MotorSkeletal)

	for i := 0; i < 1000; i++ {
		e.Step(&tr, Observation{})
	}
	p := tr.Properties
	checks := []struct {
		prop tract.Property
		want uint8
	}{
		{tract.Conductivity, cfg.Rules["conductivity"].Floor},
		{tract.Strength, cfg.Rules["strength"].Floor},
		{tract.Sensitivity, cfg.Rules["sensitivity"].Floor},
		{tract.Jitter, cfg.Rules["jitter"].Ceiling},
		{tract.Endurance, 128},
		{tract.Elasticity, 128},
		{tract.Gain, tract.MotorDefaults.Gain},
	}
	for _, c := range checks {
		if got := p.Get(c.prop); got != c.want {
			t.Errorf("%s = %d, want %d", c.prop, got, c.want)
		}
	}
}

func TestStep_BelowFloorNotRaised(t *testing.T) {
	e := newEngine(t, DefaultConfig())
	tr := tract.New(tract.Proprioceptive)
	tr.Properties.Conductivity = 5

	for i := 0; i < 200; i++ {
		e.Step(&tr, Observation{})
	}
	if tr.Properties.Conductivity != 5 {
		t.Errorf("Conductivity = %d, want untouched 5", tr.Properties.Conductivity)
	}
}

func TestStep_PracticeLowersJitter(t *testing.T) {
	cfg := DefaultConfig()
	e := newEngine(t, cfg)
	tr := tract.New(tract.MotorSkeletal)

	for i := 0; i < 1000; i++ {
		e.Step(&tr, Observation{Load: 120})
	}
	if got, want := tr.Properties.Jitter, cfg.Rules["jitter"].Floor; got != want {
		t.Errorf("Jitter = %d, want floor %d", got, want)
	}
	if tr.Properties.Conductivity != 255 {
		t.Errorf("Conductivity = %d, want 255", tr.Properties.Conductivity)
	}
	if tr.Properties.Gain != tract.MotorDefaults.Gain {
		t.Errorf("Gain drifted to %d", tr.Properties.Gain)
	}
}

func TestStep_FatigueRespectsCeiling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules["fatigue"] = Rule{IdleDecayRate: 0, Ceiling: 100, Floor: 0}
	e := newEngine(t, cfg)
	tr := tract.New(tract.MotorSkeletal)
	tr.Properties.Endurance = 0

	for i := 0; i < 100; i++ {
		e.Step(&tr, Observation{Load: 255, FatigueDelta: 15})
		if tr.Properties.Fatigue > 100 {
			t.Fatalf("tick %d: fatigue %d above ceiling", i, tr.Properties.Fatigue)
		}
	}
	if tr.Properties.Fatigue != 100 {
		t.Errorf("Fatigue = %d, want 100", tr.Properties.Fatigue)
	}
}

func TestStep_Recovery(t *testing.T) {
	e := newEngine(t, DefaultConfig())
	tr := tract.New(tract.Mechanoreceptive)
	tr.Properties.Fatigue = 200

	e.Step(&tr, Observation{})
	// idle decay 3 + endurance 128/64
	if tr.Properties.Fatigue != 195 {
		t.Errorf("Fatigue = %d, want 195", tr.Properties.Fatigue)
	}
	for i := 0; i < 100; i++ {
		e.Step(&tr, Observation{})
	}
	if tr.Properties.Fatigue != 0 {
		t.Errorf("Fatigue = %d, want fully recovered", tr.Properties.Fatigue)
	}
}

func TestStep_EnduranceFromFatiguingEvents(t *testing.T) {
	cfg := DefaultConfig()
	e := newEngine(t, cfg)
	tr := tract.New(tract.MotorSkeletal)
	tr.Properties.Fatigue = 250

	for i := 0; i < int(cfg.EnduranceEvents); i++ {
		e.Step(&tr, Observation{Load: 255, FatigueDelta: 15})
	}
	if tr.Usage.FatigueEvents != cfg.EnduranceEvents {
		t.Errorf("FatigueEvents = %d, want %d", tr.Usage.FatigueEvents, cfg.EnduranceEvents)
	}
	if tr.Properties.Endurance != 129 {
		t.Errorf("Endurance = %d, want 129", tr.Properties.Endurance)
	}
}

// bandDistance is how far v lies outside [floor, ceiling].
func bandDistance(v uint8, r Rule) int {
	switch {
	case v < r.Floor:
		return int(r.Floor) - int(v)
	case v > r.Ceiling:
		return int(v) - int(r.Ceiling)
	}
	return 0
}

func TestStep_RandomWalkStaysInBounds(t *testing.T) {
	tight := Config{
		Rules: map[string]Rule{
			"conductivity": {UseGainRate: 40, IdleDecayRate: 40, Ceiling: 180, Floor: 60},
			"jitter":       {UseGainRate: 40, IdleDecayRate: 40, Ceiling: 180, Floor: 60},
			"sensitivity":  {UseGainRate: 40, IdleDecayRate: 40, Ceiling: 180, Floor: 60},
			"fatigue":      {UseGainRate: 0, IdleDecayRate: 20, Ceiling: 150, Floor: 10},
			"endurance":    {UseGainRate: 40, IdleDecayRate: 40, Ceiling: 180, Floor: 60},
			"strength":     {UseGainRate: 40, IdleDecayRate: 40, Ceiling: 180, Floor: 60},
			"elasticity":   {UseGainRate: 40, IdleDecayRate: 40, Ceiling: 180, Floor: 60},
		},
		UseThreshold:     10,
		IdleThreshold:    2,
		FatigueHighWater: 20,
		EnduranceEvents:  1,
	}

	tests := []struct {
		name string
		cfg  Config
		seed uint64
	}{
		{"defaults", DefaultConfig(), 1},
		{"defaults other seed", DefaultConfig(), 99},
		{"tight fast rules", tight, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, tt.cfg)
			rng := rand.New(rand.NewPCG(tt.seed, tt.seed+1))

			for trial := 0; trial < 20; trial++ {
				tr := tract.New(tract.Kinds()[rng.IntN(tract.KindCount)])
				for _, p := range tract.AllProperties() {
					tr.Properties.Set(p, uint8(rng.IntN(256)))
				}
				gain := tr.Properties.Gain

				prev := map[tract.Property]int{}
				for _, p := range RequiredRules {
					prev[p] = bandDistance(tr.Properties.Get(p), tt.cfg.Rules[p.String()])
				}

				for step := 0; step < 2000; {
					// Runs of use or rest long enough to cross the idle threshold.
					active := rng.IntN(2) == 0
					run := 1 + rng.IntN(120)
					for i := 0; i < run && step < 2000; i, step = i+1, step+1 {
						var obs Observation
						if active {
							obs = Observation{Load: uint8(1 + rng.IntN(255)), FatigueDelta: uint8(rng.IntN(256))}
						}
						e.Step(&tr, obs)

						for _, p := range RequiredRules {
							d := bandDistance(tr.Properties.Get(p), tt.cfg.Rules[p.String()])
							if d > prev[p] {
								t.Fatalf("trial %d step %d: %s = %d moved away from [%d, %d]",
									trial, step, p, tr.Properties.Get(p), tt.cfg.Rules[p.String()].Floor, tt.cfg.Rules[p.String()].Ceiling)
							}
							prev[p] = d
						}
						if tr.Properties.Gain != gain {
							t.Fatalf("trial %d step %d: gain drifted %d -> %d", trial, step, gain, tr.Properties.Gain)
						}
					}
				}
			}
		})
	}
}

func TestStep_InBandStartsStayInBand(t *testing.T) {
	cfg := DefaultConfig()
	e := newEngine(t, cfg)
	rng := rand.New(rand.NewPCG(42, 43))

	tr := tract.New(tract.NociceptiveSlow)
	for _, p := range RequiredRules {
		r := cfg.Rules[p.String()]
		tr.Properties.Set(p, r.Floor+uint8(rng.IntN(int(r.Ceiling-r.Floor)+1)))
	}

	for step := 0; step < 5000; step++ {
		var obs Observation
		if rng.IntN(3) > 0 {
			obs = Observation{Load: uint8(rng.IntN(256)), FatigueDelta: uint8(rng.IntN(32))}
		}
		e.Step(&tr, obs)
		for _, p := range RequiredRules {
			r := cfg.Rules[p.String()]
			if v := tr.Properties.Get(p); v < r.Floor || v > r.Ceiling {
				t.Fatalf("step %d: %s = %d outside [%d, %d]", step, p, v, r.Floor, r.Ceiling)
			}
		}
	}
}

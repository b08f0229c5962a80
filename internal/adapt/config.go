package adapt

import (
	"github.com/nvandessel/fibertract/internal/fault"
	"github.com/nvandessel/fibertract/internal/tract"
)

// Rule is the drift rule for one property.
type Rule struct {
	// UseGainRate is the per-tick change while the tract is in use.
	UseGainRate uint8 `json:"use_gain_rate" yaml:"use_gain_rate"`
	// IdleDecayRate is the per-tick change while the tract is idle.
	IdleDecayRate uint8 `json:"idle_decay_rate" yaml:"idle_decay_rate"`
	// Ceiling bounds upward drift.
	Ceiling uint8 `json:"ceiling" yaml:"ceiling"`
	// Floor bounds downward drift.
	Floor uint8 `json:"floor" yaml:"floor"`
}

// Config holds the drift rules and usage thresholds of the adaptation engine.
type Config struct {
	// Rules is keyed by property name. Gain has no rule: it never drifts.
	Rules map[string]Rule `json:"rules" yaml:"rules"`

	// UseThreshold is the activity above which a tract counts as in use. Default: 64.
	UseThreshold uint8 `json:"use_threshold" yaml:"use_threshold"`

	// IdleThreshold is the number of idle ticks after which a tract counts
	// as idle. Default: 50.
	IdleThreshold uint32 `json:"idle_threshold" yaml:"idle_threshold"`

	// FatigueHighWater is the fatigue above which an active tick counts as a
	// fatiguing event. Default: 128.
	FatigueHighWater uint8 `json:"fatigue_high_water" yaml:"fatigue_high_water"`

	// EnduranceEvents is the number of fatiguing events per endurance
	// increment. Default: 16.
	EnduranceEvents uint32 `json:"endurance_events" yaml:"endurance_events"`
}

// RequiredRules lists the properties every Config must carry a rule for.
var RequiredRules = []tract.Property{
	tract.Conductivity,
	tract.Jitter,
	tract.Sensitivity,
	tract.Fatigue,
	tract.Endurance,
	tract.Strength,
	tract.Elasticity,
}

// DefaultConfig returns rules under which used tracts myelinate, sharpen and
// strengthen, idle tracts atrophy and lose precision, and fatigue recovers at
// rest.
func DefaultConfig() Config {
	return Config{
		Rules: map[string]Rule{
			"conductivity": {UseGainRate: 1, IdleDecayRate: 1, Ceiling: 255, Floor: 16},
			"jitter":       {UseGainRate: 1, IdleDecayRate: 1, Ceiling: 200, Floor: 8},
			"sensitivity":  {UseGainRate: 1, IdleDecayRate: 1, Ceiling: 240, Floor: 32},
			"fatigue":      {UseGainRate: 0, IdleDecayRate: 3, Ceiling: 255, Floor: 0},
			"endurance":    {UseGainRate: 1, IdleDecayRate: 0, Ceiling: 255, Floor: 0},
			"strength":     {UseGainRate: 1, IdleDecayRate: 1, Ceiling: 255, Floor: 32},
			"elasticity":   {UseGainRate: 1, IdleDecayRate: 0, Ceiling: 255, Floor: 0},
		},
		UseThreshold:     64,
		IdleThreshold:    50,
		FatigueHighWater: 128,
		EnduranceEvents:  16,
	}
}

// Validate checks that every required rule is present and well formed.
func (c Config) Validate() error {
	for _, p := range RequiredRules {
		r, ok := c.Rules[p.String()]
		if !ok {
			return fault.Configf("adaptation.rules", "missing rule for %s", p)
		}
		if r.Floor > r.Ceiling {
			return fault.Configf("adaptation.rules."+p.String(), "floor %d above ceiling %d", r.Floor, r.Ceiling)
		}
	}
	for name := range c.Rules {
		p, err := tract.ParseProperty(name)
		if err != nil {
			return fault.Configf("adaptation.rules", "unknown property %q", name)
		}
		if p == tract.Gain {
			return fault.Configf("adaptation.rules", "gain does not drift")
		}
	}
	if c.EnduranceEvents == 0 {
		return fault.Configf("adaptation.endurance_events", "must be at least 1")
	}
	return nil
}

// Package pain derives pain events from nociceptive tract output and scores
// them for attention.
package pain

import (
	"math"

	"github.com/nvandessel/fibertract/internal/fault"
	"github.com/nvandessel/fibertract/internal/tract"
)

const (
	// UrgentIntensity is the intensity an urgent event must exceed.
	UrgentIntensity = 400
	// UrgentUrgency is the source urgency an urgent event must exceed.
	UrgentUrgency = 160
	// ChronicTicks is the duration a chronic event must exceed.
	ChronicTicks = 1000
)

// Event is one tick's pain report from a single tract.
type Event struct {
	Bundle        string `json:"bundle"`
	TractIndex    int    `json:"tract_index"`
	Source        Source `json:"source"`
	Intensity     int32  `json:"intensity"`
	Onset         int32  `json:"onset"`
	DurationTicks uint32 `json:"duration_ticks"`
	Habituating   bool   `json:"habituating"`
}

// Salience is the attention weight 3*intensity + onset + 2*urgency, halved
// while habituating.
func (e Event) Salience() int64 {
	s := 3*int64(e.Intensity) + int64(e.Onset) + 2*int64(e.Source.Urgency())
	if e.Habituating {
		s /= 2
	}
	return s
}

// IsUrgent requires both a high intensity and an urgent source.
func (e Event) IsUrgent() bool {
	return e.Intensity > UrgentIntensity && e.Source.Urgency() > UrgentUrgency
}

// IsChronic reports long-lasting pain that is not fading.
func (e Event) IsChronic() bool {
	return e.DurationTicks > ChronicTicks && !e.Habituating
}

// Config holds the emission and classification constants.
type Config struct {
	// EmissionThreshold is the intensity an output must exceed to emit an
	// event, before modulation raises it. Default: 50.
	EmissionThreshold int32 `json:"emission_threshold" yaml:"emission_threshold"`

	// HabituationTicks is the duration after which a non-rising stimulus
	// habituates. Default: 20.
	HabituationTicks uint32 `json:"habituation_ticks" yaml:"habituation_ticks"`

	// ItchCeiling separates itch from burning and aching on slow fibers. Default: 150.
	ItchCeiling int32 `json:"itch_ceiling" yaml:"itch_ceiling"`

	// BurningOnset is the onset at which slow pain reads as burning. Default: 40.
	BurningOnset int32 `json:"burning_onset" yaml:"burning_onset"`
}

// DefaultConfig returns the default pain constants.
func DefaultConfig() Config {
	return Config{
		EmissionThreshold: 50,
		HabituationTicks:  20,
		ItchCeiling:       150,
		BurningOnset:      40,
	}
}

// Validate rejects negative thresholds.
func (c Config) Validate() error {
	if c.EmissionThreshold < 0 {
		return fault.Configf("pain.emission_threshold", "must be >= 0, got %d", c.EmissionThreshold)
	}
	if c.ItchCeiling < 0 {
		return fault.Configf("pain.itch_ceiling", "must be >= 0, got %d", c.ItchCeiling)
	}
	if c.BurningOnset < 0 {
		return fault.Configf("pain.burning_onset", "must be >= 0, got %d", c.BurningOnset)
	}
	return nil
}

// Model turns nociceptive output into events.
type Model struct {
	cfg Config
}

// NewModel validates cfg and returns a model for it.
func NewModel(cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Model{cfg: cfg}, nil
}

// Threshold is the emission threshold under the given modulation level.
func (m *Model) Threshold(level uint8) int32 {
	t := int64(m.cfg.EmissionThreshold)
	return int32(t + int64(level)*t/255)
}

// Derive records output in trace and reports an event when a nociceptive
// tract's output exceeds the emission threshold. Non-nociceptive kinds
// never emit and leave the trace untouched.
func (m *Model) Derive(output int32, kind tract.Kind, level uint8, trace *tract.PainTrace, bundle string, index int) (Event, bool) {
	if !kind.IsNociceptive() {
		return Event{}, false
	}

	intensity := magnitude(output)
	previous := trace.Last()
	oldest := trace.Push(intensity)

	if intensity <= m.Threshold(level) {
		trace.Duration = 0
		return Event{}, false
	}
	trace.Duration++

	onset := max(0, intensity-oldest) / tract.PainWindow
	ev := Event{
		Bundle:        bundle,
		TractIndex:    index,
		Intensity:     intensity,
		Onset:         onset,
		DurationTicks: trace.Duration,
		Habituating:   trace.Duration >= m.cfg.HabituationTicks && intensity <= previous,
	}
	ev.Source = m.classify(kind, intensity, onset)
	return ev, true
}

func (m *Model) classify(kind tract.Kind, intensity, onset int32) Source {
	if kind == tract.NociceptiveFast {
		return Sharp
	}
	switch {
	case intensity < m.cfg.ItchCeiling:
		return Itch
	case onset >= m.cfg.BurningOnset:
		return Burning
	}
	return Aching
}

func magnitude(v int32) int32 {
	switch {
	case v == math.MinInt32:
		return math.MaxInt32
	case v < 0:
		return -v
	}
	return v
}

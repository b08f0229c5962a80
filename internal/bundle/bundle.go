// Package bundle groups fiber tracts and drives them one tick at a time.
//
// A tick is atomic. Inputs are validated first, every tract is computed on a
// copy, and the copy is committed only once the whole bundle has been
// processed. A rejected tick leaves the bundle exactly as it was.
package bundle

import (
	"hash/fnv"
	"log/slog"
	"slices"

	"github.com/nvandessel/fibertract/internal/adapt"
	"github.com/nvandessel/fibertract/internal/fault"
	"github.com/nvandessel/fibertract/internal/logging"
	"github.com/nvandessel/fibertract/internal/modulation"
	"github.com/nvandessel/fibertract/internal/noise"
	"github.com/nvandessel/fibertract/internal/pain"
	"github.com/nvandessel/fibertract/internal/tract"
)

// Bundle is an ordered set of tracts sharing a modulation state.
// A Bundle is not safe for concurrent use.
type Bundle struct {
	name   string
	tracts []tract.FiberTract
	mod    modulation.Modulation
	ticks  uint64

	src      noise.Source
	newNoise func(name string) noise.Source
	engine   *adapt.Engine
	pain   *pain.Model
	logger *slog.Logger
	events *logging.EventLogger
}

// TickResult holds one tick's outputs. Motor and Sensory mirror the input
// order of efferent and afferent tracts respectively.
type TickResult struct {
	Motor   []tract.Signal `json:"motor"`
	Sensory []int32        `json:"sensory"`
	Pain    []pain.Event   `json:"pain,omitempty"`
}

// Option configures a Bundle.
type Option func(*Bundle)

// WithNoise sets the jitter noise source. Options shared by several bundles
// should use WithNoiseFunc instead.
func WithNoise(src noise.Source) Option {
	return func(b *Bundle) {
		b.src = src
		b.newNoise = nil
	}
}

// WithNoiseFunc gives each bundle its own source, built from its name.
func WithNoiseFunc(fn func(name string) noise.Source) Option {
	return func(b *Bundle) {
		b.newNoise = fn
		b.src = nil
	}
}

// WithEngine sets the adaptation engine.
func WithEngine(e *adapt.Engine) Option {
	return func(b *Bundle) { b.engine = e }
}

// WithPainModel sets the pain model.
func WithPainModel(m *pain.Model) Option {
	return func(b *Bundle) { b.pain = m }
}

// WithDecayRate sets how fast unrefreshed chemicals wear off.
func WithDecayRate(rate uint8) Option {
	return func(b *Bundle) { b.mod.DecayRate = rate }
}

// WithLogger sets the operational logger and the event trace.
func WithLogger(logger *slog.Logger, events *logging.EventLogger) Option {
	return func(b *Bundle) {
		b.logger = logger
		b.events = events
	}
}

// New builds a bundle over tracts. The tracts are copied. Without
// WithNoise the bundle draws from a PCG source seeded by its name, so
// identical bundles replay identically.
func New(name string, tracts []tract.FiberTract, opts ...Option) (*Bundle, error) {
	if name == "" {
		return nil, fault.Configf("name", "bundle name is empty")
	}
	for i := range tracts {
		if err := tracts[i].Validate(); err != nil {
			return nil, fault.Configf("tracts", "tract %d: %v", i, err)
		}
	}

	b := &Bundle{
		name:   name,
		tracts: slices.Clone(tracts),
		mod:    modulation.New(modulation.DefaultDecayRate),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.newNoise != nil {
		b.src = b.newNoise(name)
		b.newNoise = nil
	}
	if b.src == nil {
		b.src = noise.NewSeeded(Seed(name))
	}
	if b.engine == nil {
		e, err := adapt.NewEngine(adapt.DefaultConfig())
		if err != nil {
			return nil, err
		}
		b.engine = e
	}
	if b.pain == nil {
		m, err := pain.NewModel(pain.DefaultConfig())
		if err != nil {
			return nil, err
		}
		b.pain = m
	}
	b.logger = logging.OrDiscard(b.logger)
	return b, nil
}

// Seed derives a noise seed from a bundle name.
func Seed(name string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return h.Sum64()
}

// Name returns the bundle name.
func (b *Bundle) Name() string { return b.name }

// Len returns the number of tracts.
func (b *Bundle) Len() int { return len(b.tracts) }

// Ticks returns the number of committed ticks.
func (b *Bundle) Ticks() uint64 { return b.ticks }

// Tracts returns a copy of the tracts in order.
func (b *Bundle) Tracts() []tract.FiberTract {
	return slices.Clone(b.tracts)
}

// Tract returns a copy of tract i.
func (b *Bundle) Tract(i int) (tract.FiberTract, bool) {
	if i < 0 || i >= len(b.tracts) {
		return tract.FiberTract{}, false
	}
	return b.tracts[i], true
}

// Find returns the indices of tracts of the given kind.
func (b *Bundle) Find(kind tract.Kind) []int {
	var out []int
	for i := range b.tracts {
		if b.tracts[i].Kind == kind {
			out = append(out, i)
		}
	}
	return out
}

// MotorIndices returns the indices of efferent tracts in order.
func (b *Bundle) MotorIndices() []int {
	var out []int
	for i := range b.tracts {
		if b.tracts[i].Kind.IsEfferent() {
			out = append(out, i)
		}
	}
	return out
}

// SensoryIndices returns the indices of afferent tracts in order.
func (b *Bundle) SensoryIndices() []int {
	var out []int
	for i := range b.tracts {
		if b.tracts[i].Kind.IsAfferent() {
			out = append(out, i)
		}
	}
	return out
}

// MotorCount is the number of motor commands Tick expects.
func (b *Bundle) MotorCount() int { return len(b.MotorIndices()) }

// SensoryCount is the number of sensory readings Tick expects.
func (b *Bundle) SensoryCount() int { return len(b.SensoryIndices()) }

// IsActive reports whether any tract transmitted on the last tick.
func (b *Bundle) IsActive() bool {
	for i := range b.tracts {
		if b.tracts[i].Active() {
			return true
		}
	}
	return false
}

// TotalActivity sums the absolute last outputs of all tracts.
func (b *Bundle) TotalActivity() uint64 {
	var sum uint64
	for i := range b.tracts {
		sum += b.tracts[i].ActivityLevel()
	}
	return sum
}

// Modulation returns a copy of the chemical state.
func (b *Bundle) Modulation() modulation.Modulation {
	return b.mod
}

// Modulate applies a chemical for the next tick.
func (b *Bundle) Modulate(c modulation.Chemical, level uint8) {
	b.mod.Apply(c, level)
}

// ResetModulation clears every chemical.
func (b *Bundle) ResetModulation() {
	b.mod.Reset()
}

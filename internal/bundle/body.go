package bundle

import (
	"cmp"
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/nvandessel/fibertract/internal/fault"
	"github.com/nvandessel/fibertract/internal/noise"
	"github.com/nvandessel/fibertract/internal/pain"
	"github.com/nvandessel/fibertract/internal/tract"
)

// Input is one bundle's inputs for a body tick.
type Input struct {
	Motor   []tract.Signal `json:"motor"`
	Sensory []int32        `json:"sensory"`
}

// RestInput returns all-rest inputs sized for b.
func RestInput(b *Bundle) Input {
	return Input{
		Motor:   make([]tract.Signal, b.MotorCount()),
		Sensory: make([]int32, b.SensoryCount()),
	}
}

// BodyResult collects the per-bundle results of one body tick. Pain is
// ordered by bundle name, then tract index.
type BodyResult struct {
	Bundles map[string]TickResult `json:"bundles"`
	Pain    []pain.Event          `json:"pain,omitempty"`
}

// Body is a named set of bundles ticked together. Bundles own their noise
// sources and share nothing mutable, so a body tick runs them in parallel.
type Body struct {
	bundles     []*Bundle
	byName      map[string]*Bundle
	parallelism int
}

// NewBody groups bundles. Names must be unique, and no two bundles may draw
// from the same stateful noise source since a body tick runs them in parallel.
func NewBody(bundles ...*Bundle) (*Body, error) {
	body := &Body{byName: make(map[string]*Bundle, len(bundles))}
	for i, b := range bundles {
		if _, dup := body.byName[b.Name()]; dup {
			return nil, fault.Configf("bundles", "duplicate bundle name %q", b.Name())
		}
		for _, other := range bundles[:i] {
			if noise.SameStream(b.src, other.src) {
				return nil, fault.Configf("noise", "bundles %q and %q share one noise source (use WithNoiseFunc)", other.Name(), b.Name())
			}
		}
		body.byName[b.Name()] = b
		body.bundles = append(body.bundles, b)
	}
	slices.SortFunc(body.bundles, func(a, b *Bundle) int { return cmp.Compare(a.Name(), b.Name()) })
	return body, nil
}

// SetParallelism bounds the number of bundles ticked at once. Values <= 0
// remove the bound.
func (body *Body) SetParallelism(n int) {
	body.parallelism = n
}

// Bundle returns the named bundle.
func (body *Body) Bundle(name string) (*Bundle, bool) {
	b, ok := body.byName[name]
	return b, ok
}

// Bundles returns the bundles sorted by name.
func (body *Body) Bundles() []*Bundle {
	return slices.Clone(body.bundles)
}

// Names returns the bundle names in sorted order.
func (body *Body) Names() []string {
	names := make([]string, len(body.bundles))
	for i, b := range body.bundles {
		names[i] = b.Name()
	}
	return names
}

// Tick drives every bundle one step. Bundles missing from inputs receive
// rest inputs. All inputs are validated before any bundle runs, so a
// rejected tick mutates nothing.
func (body *Body) Tick(ctx context.Context, inputs map[string]Input, level uint8) (BodyResult, error) {
	for name := range inputs {
		if _, ok := body.byName[name]; !ok {
			return BodyResult{}, fault.Configf("inputs", "unknown bundle %q", name)
		}
	}

	resolved := make([]Input, len(body.bundles))
	for i, b := range body.bundles {
		in, ok := inputs[b.Name()]
		if !ok {
			in = RestInput(b)
		}
		if err := b.CheckInputs(in.Motor, in.Sensory); err != nil {
			return BodyResult{}, err
		}
		resolved[i] = in
	}
	if err := ctx.Err(); err != nil {
		return BodyResult{}, err
	}

	results := make([]TickResult, len(body.bundles))
	var eg errgroup.Group
	if body.parallelism > 0 {
		eg.SetLimit(body.parallelism)
	}
	for i, b := range body.bundles {
		eg.Go(func() error {
			r, err := b.Tick(resolved[i].Motor, resolved[i].Sensory, level)
			results[i] = r
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return BodyResult{}, err
	}

	out := BodyResult{Bundles: make(map[string]TickResult, len(results))}
	for i, b := range body.bundles {
		out.Bundles[b.Name()] = results[i]
		out.Pain = append(out.Pain, results[i].Pain...)
	}
	SortPain(out.Pain)
	return out, nil
}

// SortPain orders events by bundle name, then tract index.
func SortPain(events []pain.Event) {
	slices.SortStableFunc(events, func(a, b pain.Event) int {
		if c := cmp.Compare(a.Bundle, b.Bundle); c != 0 {
			return c
		}
		return cmp.Compare(a.TractIndex, b.TractIndex)
	})
}

// State returns the persisted state of every bundle, sorted by name.
func (body *Body) State() []State {
	out := make([]State, len(body.bundles))
	for i, b := range body.bundles {
		out[i] = b.State()
	}
	return out
}

// BodyFromState rebuilds a body. opts apply to every bundle, so noise is
// injected with WithNoiseFunc.
func BodyFromState(states []State, opts ...Option) (*Body, error) {
	bundles := make([]*Bundle, 0, len(states))
	for _, s := range states {
		b, err := FromState(s, opts...)
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, b)
	}
	return NewBody(bundles...)
}

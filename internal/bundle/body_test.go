package bundle

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/nvandessel/fibertract/internal/fault"
	"github.com/nvandessel/fibertract/internal/noise"
	"github.com/nvandessel/fibertract/internal/tract"
)

func painBody(t *testing.T, names ...string) *Body {
	t.Helper()
	var bundles []*Bundle
	for _, name := range names {
		noci := clean(tract.NociceptiveFast)
		noci.Properties.Gain = 128
		bundles = append(bundles, mustBundle(t, name, []tract.FiberTract{
			clean(tract.Proprioceptive),
			noci,
			noci,
		}))
	}
	body, err := NewBody(bundles...)
	if err != nil {
		t.Fatalf("NewBody: %v", err)
	}
	return body
}

func TestBody_PainOrdering(t *testing.T) {
	defer goleak.VerifyNone(t)

	body := painBody(t, "right_leg", "left_hand", "torso")
	body.SetParallelism(2)
	inputs := map[string]Input{}
	for _, name := range body.Names() {
		inputs[name] = Input{Sensory: []int32{0, 900, 600}}
	}

	res, err := body.Tick(context.Background(), inputs, 0)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}

	type key struct {
		Bundle string
		Index  int
	}
	var got []key
	for _, ev := range res.Pain {
		got = append(got, key{ev.Bundle, ev.TractIndex})
	}
	want := []key{
		{"left_hand", 1}, {"left_hand", 2},
		{"right_leg", 1}, {"right_leg", 2},
		{"torso", 1}, {"torso", 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pain order mismatch (-want +got):\n%s", diff)
	}
	if len(res.Bundles) != 3 {
		t.Errorf("got %d bundle results, want 3", len(res.Bundles))
	}
}

func TestBody_MissingInputsRest(t *testing.T) {
	defer goleak.VerifyNone(t)

	body := painBody(t, "a", "b")
	res, err := body.Tick(context.Background(), map[string]Input{
		"a": {Sensory: []int32{0, 900, 0}},
	}, 0)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if diff := cmp.Diff([]int32{0, 0, 0}, res.Bundles["b"].Sensory); diff != "" {
		t.Errorf("rest bundle output (-want +got):\n%s", diff)
	}
	if len(res.Pain) != 1 || res.Pain[0].Bundle != "a" {
		t.Errorf("pain = %+v", res.Pain)
	}
}

func TestBody_RejectedTickMutatesNothing(t *testing.T) {
	defer goleak.VerifyNone(t)

	body := painBody(t, "a", "b")
	before := body.State()

	tests := []struct {
		name   string
		inputs map[string]Input
	}{
		{"unknown bundle", map[string]Input{"c": {}}},
		{"bad length", map[string]Input{"a": {Sensory: []int32{1, 2, 3}}, "b": {Sensory: []int32{1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := body.Tick(context.Background(), tt.inputs, 0)
			if !errors.Is(err, fault.ErrConfiguration) {
				t.Fatalf("Tick error = %v, want ConfigurationError", err)
			}
			if diff := cmp.Diff(before, body.State()); diff != "" {
				t.Errorf("state mutated (-before +after):\n%s", diff)
			}
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := body.Tick(ctx, nil, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled tick error = %v", err)
	}
	if diff := cmp.Diff(before, body.State()); diff != "" {
		t.Errorf("state mutated by cancelled tick (-before +after):\n%s", diff)
	}
}

func TestNewBody_DuplicateNames(t *testing.T) {
	a := mustBundle(t, "hand", nil)
	b := mustBundle(t, "hand", nil)
	if _, err := NewBody(a, b); !errors.Is(err, fault.ErrConfiguration) {
		t.Errorf("NewBody error = %v, want ConfigurationError", err)
	}
}

func TestBodyFromState(t *testing.T) {
	body := painBody(t, "x", "y")
	if _, err := body.Tick(context.Background(), nil, 40); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	restored, err := BodyFromState(body.State())
	if err != nil {
		t.Fatalf("BodyFromState: %v", err)
	}
	if diff := cmp.Diff(body.State(), restored.State()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestNewBody_SharedNoiseRejected(t *testing.T) {
	shared := noise.NewSeeded(1)
	a := mustBundle(t, "a", nil, WithNoise(shared))
	b := mustBundle(t, "b", nil, WithNoise(shared))
	if _, err := NewBody(a, b); !errors.Is(err, fault.ErrConfiguration) {
		t.Errorf("NewBody error = %v, want ConfigurationError", err)
	}

	states := painBody(t, "x", "y", "z").State()
	if _, err := BodyFromState(states, WithNoise(noise.NewSeeded(1))); !errors.Is(err, fault.ErrConfiguration) {
		t.Errorf("BodyFromState error = %v, want ConfigurationError", err)
	}
}

// jitteryBody rebuilds three bundles of noisy tracts, each with its own
// seeded source.
func jitteryBody(t *testing.T, parallelism int) *Body {
	t.Helper()
	var states []State
	for _, name := range []string{"left_arm", "right_arm", "torso"} {
		b := mustBundle(t, name, []tract.FiberTract{
			tract.New(tract.MotorSkeletal),
			tract.New(tract.MotorSpindle),
			tract.New(tract.Proprioceptive),
		})
		states = append(states, b.State())
	}
	body, err := BodyFromState(states, WithNoiseFunc(func(name string) noise.Source {
		return noise.NewSeeded(Seed(name))
	}))
	if err != nil {
		t.Fatalf("BodyFromState: %v", err)
	}
	body.SetParallelism(parallelism)
	return body
}

func TestBody_ParallelTickWithNoiseFunc(t *testing.T) {
	defer goleak.VerifyNone(t)

	parallel := jitteryBody(t, 0)
	serial := jitteryBody(t, 1)

	in := Input{
		Motor:   []tract.Signal{{Polarity: 1, Magnitude: 180}, {Polarity: -1, Magnitude: 90}},
		Sensory: []int32{2500},
	}
	inputs := map[string]Input{"left_arm": in, "right_arm": in, "torso": in}
	for i := 0; i < 50; i++ {
		rp, err := parallel.Tick(context.Background(), inputs, 0)
		if err != nil {
			t.Fatalf("parallel tick %d: %v", i, err)
		}
		rs, err := serial.Tick(context.Background(), inputs, 0)
		if err != nil {
			t.Fatalf("serial tick %d: %v", i, err)
		}
		if diff := cmp.Diff(rs, rp); diff != "" {
			t.Fatalf("tick %d diverged (-serial +parallel):\n%s", i, diff)
		}
	}
	if diff := cmp.Diff(serial.State(), parallel.State()); diff != "" {
		t.Errorf("state diverged (-serial +parallel):\n%s", diff)
	}
}

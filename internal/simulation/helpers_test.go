package simulation

import (
	"testing"

	"github.com/nvandessel/fibertract/internal/bundle"
	"github.com/nvandessel/fibertract/internal/noise"
	"github.com/nvandessel/fibertract/internal/tract"
)

// quietBundle builds a noiseless bundle of fresh tracts.
func quietBundle(t *testing.T, name string, kinds ...tract.Kind) *bundle.Bundle {
	t.Helper()
	tracts := make([]tract.FiberTract, len(kinds))
	for i, k := range kinds {
		tracts[i] = tract.New(k)
	}
	b, err := bundle.New(name, tracts, bundle.WithNoise(noise.None()))
	if err != nil {
		t.Fatalf("bundle.New(%s): %v", name, err)
	}
	return b
}

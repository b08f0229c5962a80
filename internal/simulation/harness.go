package simulation

import (
	"context"
	"testing"

	"github.com/nvandessel/fibertract/internal/bundle"
	"github.com/nvandessel/fibertract/internal/store"
)

// NewTestRunner creates a runner over the given bundles with an isolated
// SQLite store and a sandboxed HOME directory.
func NewTestRunner(t testing.TB, bundles ...*bundle.Bundle) *Runner {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	body, err := bundle.NewBody(bundles...)
	if err != nil {
		t.Fatalf("NewTestRunner: %v", err)
	}
	s, err := store.NewSQLiteSnapshotStore(tmpDir)
	if err != nil {
		t.Fatalf("NewTestRunner: failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return NewRunner(body, WithStore(s))
}

// Store returns the runner's snapshot store.
func (r *Runner) Store() store.SnapshotStore {
	return r.store
}

// MustRun runs the scenario and fails the test on error.
func MustRun(t testing.TB, r *Runner, sc Scenario) Result {
	t.Helper()
	res, err := r.Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("MustRun: %v", err)
	}
	return res
}

package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// InMemorySnapshotStore implements SnapshotStore for testing and for the
// MCP server's session state.
type InMemorySnapshotStore struct {
	mu    sync.RWMutex
	snaps map[string]Snapshot
}

// NewInMemorySnapshotStore creates an empty in-memory store.
func NewInMemorySnapshotStore() *InMemorySnapshotStore {
	return &InMemorySnapshotStore{snaps: make(map[string]Snapshot)}
}

// Save implements SnapshotStore.
func (s *InMemorySnapshotStore) Save(ctx context.Context, snap Snapshot) (string, error) {
	prepare(&snap)
	snap.Bundles = cloneStates(snap.Bundles)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snap.ID] = snap
	return snap.ID, nil
}

// Get implements SnapshotStore.
func (s *InMemorySnapshotStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snaps[id]
	if !ok {
		return nil, ErrNotFound
	}
	snap.Bundles = cloneStates(snap.Bundles)
	return &snap, nil
}

// Latest implements SnapshotStore.
func (s *InMemorySnapshotStore) Latest(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	ordered := s.ordered()
	s.mu.RUnlock()

	if len(ordered) == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, ordered[0].ID)
}

// List implements SnapshotStore.
func (s *InMemorySnapshotStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := s.ordered()
	out := make([]Summary, len(ordered))
	for i, snap := range ordered {
		out[i] = snap.Summarize()
	}
	return out, nil
}

// Delete implements SnapshotStore.
func (s *InMemorySnapshotStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snaps[id]; !ok {
		return ErrNotFound
	}
	delete(s.snaps, id)
	return nil
}

// Close implements SnapshotStore.
func (s *InMemorySnapshotStore) Close() error { return nil }

// ordered returns snapshots newest first. Caller holds the lock.
func (s *InMemorySnapshotStore) ordered() []Snapshot {
	out := make([]Snapshot, 0, len(s.snaps))
	for _, snap := range s.snaps {
		out = append(out, snap)
	}
	slices.SortFunc(out, newestFirst)
	return out
}

func newestFirst(a, b Snapshot) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

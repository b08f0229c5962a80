// Package store persists simulation snapshots: the full state of every
// bundle in a body at one point in time.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nvandessel/fibertract/internal/bundle"
	"github.com/nvandessel/fibertract/internal/tract"
)

// ErrNotFound is returned when a snapshot does not exist.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is the persisted state of a body.
type Snapshot struct {
	ID        string         `json:"id"`
	Label     string         `json:"label,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Bundles   []bundle.State `json:"bundles"`
}

// Summary describes a snapshot without its tract state.
type Summary struct {
	ID        string    `json:"id"`
	Label     string    `json:"label,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Bundles   []string  `json:"bundles"`
	Tracts    int       `json:"tracts"`
	Ticks     uint64    `json:"ticks"`
}

// NewSnapshot captures body under a fresh time-ordered ID.
func NewSnapshot(label string, body *bundle.Body) Snapshot {
	return Snapshot{
		ID:        NewID(),
		Label:     label,
		CreatedAt: time.Now().UTC(),
		Bundles:   body.State(),
	}
}

// NewID returns a UUIDv7 string, so IDs sort by creation time.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Summarize reduces a snapshot to its summary.
func (s Snapshot) Summarize() Summary {
	sum := Summary{ID: s.ID, Label: s.Label, CreatedAt: s.CreatedAt, Bundles: make([]string, 0, len(s.Bundles))}
	for _, b := range s.Bundles {
		sum.Bundles = append(sum.Bundles, b.Name)
		sum.Tracts += len(b.Tracts)
		sum.Ticks = max(sum.Ticks, b.Ticks)
	}
	return sum
}

// Body rebuilds the snapshot's body.
func (s Snapshot) Body(opts ...bundle.Option) (*bundle.Body, error) {
	return bundle.BodyFromState(s.Bundles, opts...)
}

// SnapshotStore defines the interface for saving and loading snapshots.
type SnapshotStore interface {
	// Save stores snap, assigning an ID and creation time when missing,
	// and returns the ID. Saving an existing ID replaces it.
	Save(ctx context.Context, snap Snapshot) (string, error)

	// Get returns the snapshot with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// Latest returns the most recently created snapshot, or ErrNotFound.
	Latest(ctx context.Context) (*Snapshot, error)

	// List returns summaries, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes a snapshot, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	Close() error
}

func prepare(snap *Snapshot) {
	if snap.ID == "" {
		snap.ID = NewID()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}
}

func cloneStates(in []bundle.State) []bundle.State {
	out := make([]bundle.State, len(in))
	for i, s := range in {
		s.Tracts = append([]tract.FiberTract(nil), s.Tracts...)
		out[i] = s
	}
	return out
}

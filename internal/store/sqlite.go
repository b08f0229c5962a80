package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/fibertract/internal/bundle"
)

// DBFile is the database file name inside the data directory.
const DBFile = "fibertract.db"

// timeFormat has fixed width so created_at sorts lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// SQLiteSnapshotStore implements SnapshotStore on SQLite. Each bundle of a
// snapshot is one row holding its JSON-encoded state.
type SQLiteSnapshotStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

// NewSQLiteSnapshotStore opens or creates dir/fibertract.db.
func NewSQLiteSnapshotStore(dir string) (*SQLiteSnapshotStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	dbPath := filepath.Join(dir, DBFile)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteSnapshotStore{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteSnapshotStore) Path() string { return s.dbPath }

// Save implements SnapshotStore.
func (s *SQLiteSnapshotStore) Save(ctx context.Context, snap Snapshot) (string, error) {
	prepare(&snap)
	sum := snap.Summarize()

	encoded := make([][]byte, len(snap.Bundles))
	for i, b := range snap.Bundles {
		data, err := json.Marshal(b)
		if err != nil {
			return "", fmt.Errorf("failed to encode bundle %s: %w", b.Name, err)
		}
		encoded[i] = data
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_bundles WHERE snapshot_id = ?`, snap.ID); err != nil {
		return "", fmt.Errorf("failed to clear bundles: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, snap.ID); err != nil {
		return "", fmt.Errorf("failed to clear snapshot: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, label, created_at, ticks, tracts, content_hash) VALUES (?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.Label, snap.CreatedAt.UTC().Format(timeFormat), int64(sum.Ticks), sum.Tracts, contentHash(encoded),
	); err != nil {
		return "", fmt.Errorf("failed to insert snapshot: %w", err)
	}
	for i, b := range snap.Bundles {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO snapshot_bundles (snapshot_id, position, name, state) VALUES (?, ?, ?, ?)`,
			snap.ID, i, b.Name, string(encoded[i]),
		); err != nil {
			return "", fmt.Errorf("failed to insert bundle %s: %w", b.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return snap.ID, nil
}

// Get implements SnapshotStore. The stored content hash is verified.
func (s *SQLiteSnapshotStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		snap      Snapshot
		label     sql.NullString
		createdAt string
		hash      string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, label, created_at, content_hash FROM snapshots WHERE id = ?`, id,
	).Scan(&snap.ID, &label, &createdAt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	snap.Label = label.String
	snap.CreatedAt, err = time.Parse(timeFormat, createdAt)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: bad created_at %q: %w", id, createdAt, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT state FROM snapshot_bundles WHERE snapshot_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query bundles: %w", err)
	}
	defer rows.Close()

	var encoded [][]byte
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan bundle: %w", err)
		}
		var st bundle.State
		if err := json.Unmarshal([]byte(raw), &st); err != nil {
			return nil, fmt.Errorf("snapshot %s: failed to decode bundle: %w", id, err)
		}
		snap.Bundles = append(snap.Bundles, st)
		encoded = append(encoded, []byte(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if got := contentHash(encoded); got != hash {
		return nil, fmt.Errorf("snapshot %s: content hash mismatch", id)
	}
	return &snap, nil
}

// Latest implements SnapshotStore.
func (s *SQLiteSnapshotStore) Latest(ctx context.Context) (*Snapshot, error) {
	var id string
	s.mu.RLock()
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM snapshots ORDER BY created_at DESC, id DESC LIMIT 1`).Scan(&id)
	s.mu.RUnlock()
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}
	return s.Get(ctx, id)
}

// List implements SnapshotStore.
func (s *SQLiteSnapshotStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.label, s.created_at, s.ticks, s.tracts, b.name
		FROM snapshots s
		LEFT JOIN snapshot_bundles b ON b.snapshot_id = s.id
		ORDER BY s.created_at DESC, s.id DESC, b.position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			id, createdAt string
			label, name   sql.NullString
			ticks         int64
			tracts        int
		)
		if err := rows.Scan(&id, &label, &createdAt, &ticks, &tracts, &name); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].ID != id {
			ts, err := time.Parse(timeFormat, createdAt)
			if err != nil {
				return nil, fmt.Errorf("snapshot %s: bad created_at %q: %w", id, createdAt, err)
			}
			out = append(out, Summary{
				ID:        id,
				Label:     label.String,
				CreatedAt: ts,
				Bundles:   []string{},
				Tracts:    tracts,
				Ticks:     uint64(ticks),
			})
		}
		if name.Valid {
			last := &out[len(out)-1]
			last.Bundles = append(last.Bundles, name.String)
		}
	}
	return out, rows.Err()
}

// Delete implements SnapshotStore.
func (s *SQLiteSnapshotStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_bundles WHERE snapshot_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete bundles: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// Close implements SnapshotStore.
func (s *SQLiteSnapshotStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func contentHash(encoded [][]byte) string {
	h := sha256.New()
	for _, e := range encoded {
		h.Write(e)
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

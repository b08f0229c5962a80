package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
)

// ExportJSONL writes every snapshot in s to w, one JSON object per line,
// oldest first. It returns the number written.
func ExportJSONL(ctx context.Context, s SnapshotStore, w io.Writer) (int, error) {
	sums, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	slices.Reverse(sums)

	enc := json.NewEncoder(w)
	for i, sum := range sums {
		snap, err := s.Get(ctx, sum.ID)
		if err != nil {
			return i, fmt.Errorf("failed to load snapshot %s: %w", sum.ID, err)
		}
		if err := enc.Encode(snap); err != nil {
			return i, fmt.Errorf("failed to write snapshot %s: %w", sum.ID, err)
		}
	}
	return len(sums), nil
}

// ImportResult reports what ImportJSONL did.
type ImportResult struct {
	Imported int
	// Skipped holds the 1-based line numbers that could not be parsed.
	Skipped []int
}

// ImportJSONL saves every snapshot read from r into s. Unparseable lines
// are skipped and reported; store errors abort the import.
func ImportJSONL(ctx context.Context, s SnapshotStore, r io.Reader) (ImportResult, error) {
	var res ImportResult

	scanner := bufio.NewScanner(r)
	// Snapshots of full bodies make long lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var snap Snapshot
		if err := json.Unmarshal(line, &snap); err != nil || snap.ID == "" {
			res.Skipped = append(res.Skipped, lineNum)
			continue
		}
		if _, err := s.Save(ctx, snap); err != nil {
			return res, fmt.Errorf("failed to import snapshot %s: %w", snap.ID, err)
		}
		res.Imported++
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("scanner error: %w", err)
	}
	return res, nil
}

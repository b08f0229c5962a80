package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nvandessel/fibertract/internal/bundle"
	"github.com/nvandessel/fibertract/internal/logging"
	"github.com/nvandessel/fibertract/internal/store"
)

// Runner drives a body through scenarios. Snapshots are written to the
// store, when one is set, at the scenario's checkpoint interval.
type Runner struct {
	body   *bundle.Body
	store  store.SnapshotStore
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithStore enables checkpoint snapshots.
func WithStore(s store.SnapshotStore) Option {
	return func(r *Runner) { r.store = s }
}

// WithLogger sets the runner's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// NewRunner creates a runner for body.
func NewRunner(body *bundle.Body, opts ...Option) *Runner {
	r := &Runner{body: body}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrDiscard(r.logger)
	return r
}

// Body returns the body the runner drives.
func (r *Runner) Body() *bundle.Body {
	return r.body
}

// Run executes the scenario. On error the result holds the ticks that
// completed; the failed tick left the body unchanged.
func (r *Runner) Run(ctx context.Context, sc Scenario) (Result, error) {
	res := Result{Scenario: sc.Name, Ticks: make([]TickRecord, 0, sc.Ticks)}
	r.logger.Debug("scenario started", "scenario", sc.Name, "ticks", sc.Ticks, "bundles", len(r.body.Names()))

	for i := 0; i < sc.Ticks; i++ {
		if sc.BeforeTick != nil {
			sc.BeforeTick(i, r.body)
		}

		out, err := r.body.Tick(ctx, sc.inputs(i, r.body), sc.adrenaline(i))
		if err != nil {
			return res, fmt.Errorf("scenario %s: tick %d: %w", sc.Name, i, err)
		}

		rec := TickRecord{Index: i, Result: out}
		if sc.Record {
			rec.States = r.body.State()
		}
		res.Ticks = append(res.Ticks, rec)
		if sc.OnTick != nil {
			sc.OnTick(rec)
		}

		if r.store != nil && sc.Checkpoint > 0 && (i+1)%sc.Checkpoint == 0 {
			id, err := r.store.Save(ctx, store.NewSnapshot(fmt.Sprintf("%s@%d", sc.Name, i+1), r.body))
			if err != nil {
				return res, fmt.Errorf("scenario %s: checkpoint at tick %d: %w", sc.Name, i+1, err)
			}
			res.Snapshots = append(res.Snapshots, id)
		}
	}

	r.logger.Debug("scenario finished", "scenario", sc.Name,
		"pain_events", len(res.Pain()), "snapshots", len(res.Snapshots))
	return res, nil
}

// FormatTickDebug returns a debug string for a tick record.
func FormatTickDebug(rec TickRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tick %d: bundles=%d pain=%d\n", rec.Index, len(rec.Result.Bundles), len(rec.Result.Pain))
	for _, s := range rec.States {
		fmt.Fprintf(&sb, "  %s: ticks=%d modulation=%v\n", s.Name, s.Ticks, s.Modulation)
		for i, t := range s.Tracts {
			p := t.Properties
			fmt.Fprintf(&sb, "    [%d] %s cond=%d jit=%d sens=%d fat=%d end=%d str=%d ela=%d act=%d\n",
				i, t.Kind, p.Conductivity, p.Jitter, p.Sensitivity, p.Fatigue, p.Endurance, p.Strength, p.Elasticity, t.Usage.Activity)
		}
	}
	for _, ev := range rec.Result.Pain {
		fmt.Fprintf(&sb, "  pain %s[%d]: %s intensity=%d salience=%d\n", ev.Bundle, ev.TractIndex, ev.Source, ev.Intensity, ev.Salience())
	}
	return sb.String()
}

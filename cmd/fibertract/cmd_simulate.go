package main

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/nvandessel/fibertract/internal/bundle"
	"github.com/nvandessel/fibertract/internal/fault"
	"github.com/nvandessel/fibertract/internal/logging"
	"github.com/nvandessel/fibertract/internal/modulation"
	"github.com/nvandessel/fibertract/internal/pain"
	"github.com/nvandessel/fibertract/internal/sanitize"
	"github.com/nvandessel/fibertract/internal/simulation"
	"github.com/nvandessel/fibertract/internal/store"
	"github.com/nvandessel/fibertract/internal/tract"
)

// simulateReport is the outcome of a simulate run.
type simulateReport struct {
	Scenario    string         `json:"scenario"`
	Ticks       int            `json:"ticks"`
	Bundles     []bundleReport `json:"bundles"`
	Pain        map[string]int `json:"pain,omitempty"`
	Urgent      int            `json:"urgent"`
	MostSalient *pain.Event    `json:"most_salient,omitempty"`
	Checkpoints []string       `json:"checkpoints,omitempty"`
	Saved       string         `json:"saved,omitempty"`
}

type bundleReport struct {
	Name       string                          `json:"name"`
	Ticks      uint64                          `json:"ticks"`
	Active     bool                            `json:"active"`
	Activity   uint64                          `json:"activity"`
	Modulation [modulation.ChemicalCount]uint8 `json:"modulation"`
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a body through a number of ticks",
		Long: `Build a body from profiles (or resume one from a snapshot), drive it for
a number of ticks and report activity and pain.

Drives:
  rest       no input at all
  constant   every motor tract at --motor, every sensory tract at --reading
  pain       only nociceptive tracts at --reading
  alternate  constant and rest, switching every --period ticks

Examples:
  fibertract simulate --profiles left_hand --drive pain --reading 3000 --ticks 50
  fibertract simulate --drive constant --ticks 500 --checkpoint 100 --save practiced
  fibertract simulate --from latest --drive rest --ticks 200`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			profiles, _ := cmd.Flags().GetString("profiles")
			from, _ := cmd.Flags().GetString("from")
			name, _ := cmd.Flags().GetString("name")
			ticks, _ := cmd.Flags().GetInt("ticks")
			checkpoint, _ := cmd.Flags().GetInt("checkpoint")
			saveLabel, _ := cmd.Flags().GetString("save")
			trace, _ := cmd.Flags().GetBool("trace")

			if ticks < 1 {
				return fmt.Errorf("--ticks must be at least 1, got %d", ticks)
			}
			if checkpoint < 0 {
				return fmt.Errorf("--checkpoint must be >= 0, got %d", checkpoint)
			}
			drive, err := driveFromFlags(cmd)
			if err != nil {
				return err
			}
			schedule, err := adrenalineFromFlags(cmd, ticks)
			if err != nil {
				return err
			}

			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cmd, settings)
			dir, err := ensureDataDir(settings)
			if err != nil {
				return err
			}
			events := logging.NewEventLogger(dir, settings.Logging.Level)
			defer events.Close()

			snapshots, err := openStore(settings)
			if err != nil {
				return err
			}
			defer snapshots.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			sigChan := make(chan os.Signal, 1)
			notifySignals(sigChan)
			go func() {
				select {
				case <-sigChan:
					cancel()
				case <-ctx.Done():
				}
			}()

			opts, err := settings.BundleOptions(logger, events)
			if err != nil {
				return err
			}
			var body *bundle.Body
			if from != "" {
				snap, err := loadSnapshot(ctx, snapshots, from)
				if err != nil {
					return err
				}
				if body, err = snap.Body(opts...); err != nil {
					return fmt.Errorf("snapshot %s is invalid: %w", snap.ID, err)
				}
				logger.Info("resumed from snapshot", "id", snap.ID, "label", snap.Label)
			} else {
				catalog, err := loadCatalog(settings)
				if err != nil {
					return err
				}
				opts = append(opts, bundle.WithDecayRate(settings.Simulation.DecayRate))
				if body, err = catalog.Body(splitList(profiles), opts...); err != nil {
					return err
				}
			}
			body.SetParallelism(settings.Simulation.Parallelism)

			sc := simulation.Scenario{
				Name:       name,
				Ticks:      ticks,
				Drive:      drive,
				Adrenaline: schedule,
				Checkpoint: checkpoint,
				Record:     trace,
			}
			if trace {
				sc.OnTick = func(rec simulation.TickRecord) {
					fmt.Fprint(cmd.ErrOrStderr(), simulation.FormatTickDebug(rec))
				}
			}

			runner := simulation.NewRunner(body, simulation.WithStore(snapshots), simulation.WithLogger(logger))
			result, err := runner.Run(ctx, sc)
			if err != nil {
				return fmt.Errorf("simulation stopped after %d of %d ticks: %w", len(result.Ticks), ticks, err)
			}

			report := buildReport(body, result)
			if saveLabel != "" {
				id, err := snapshots.Save(ctx, store.NewSnapshot(sanitize.Label(saveLabel), body))
				if err != nil {
					return fmt.Errorf("failed to save snapshot: %w", err)
				}
				report.Saved = id
			}

			if jsonOut {
				return writeJSON(cmd, report)
			}
			printReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().String("profiles", "", "Comma-separated profiles to build (default: the full body)")
	cmd.Flags().String("from", "", "Resume from a snapshot ID, or 'latest'")
	cmd.Flags().String("name", "simulate", "Scenario name, used in checkpoint labels")
	cmd.Flags().Int("ticks", 100, "Number of ticks to run")
	cmd.Flags().String("drive", "rest", "Input drive: rest, constant, pain or alternate")
	cmd.Flags().Int("motor", 128, "Motor magnitude 0-255 for the constant and alternate drives")
	cmd.Flags().Int32("reading", 1000, "Sensory reading for the constant, pain and alternate drives")
	cmd.Flags().Int("period", 10, "Switch period in ticks for the alternate drive")
	cmd.Flags().Int("adrenaline", 0, "Adrenaline level 0-255 to release")
	cmd.Flags().Int("adrenaline-at", 0, "First tick of the adrenaline release")
	cmd.Flags().Int("adrenaline-for", 0, "Length of the adrenaline release in ticks (0: until the end)")
	cmd.Flags().Int("checkpoint", 0, "Save a snapshot every N ticks (0: never)")
	cmd.Flags().String("save", "", "Save a snapshot with this label when the run completes")
	cmd.Flags().Bool("trace", false, "Print every tract of every tick to stderr")

	return cmd
}

func driveFromFlags(cmd *cobra.Command) (simulation.Drive, error) {
	kind, _ := cmd.Flags().GetString("drive")
	motorFlag, _ := cmd.Flags().GetInt("motor")
	reading, _ := cmd.Flags().GetInt32("reading")
	period, _ := cmd.Flags().GetInt("period")

	motor, err := fault.CheckU8("motor", motorFlag)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "rest":
		return simulation.Rest(), nil
	case "constant":
		return simulation.Constant(motor, reading), nil
	case "pain":
		return simulation.Kinds(reading, tract.NociceptiveFast, tract.NociceptiveSlow), nil
	case "alternate":
		if period < 1 {
			return nil, fmt.Errorf("--period must be at least 1, got %d", period)
		}
		return simulation.Alternate(period, simulation.Constant(motor, reading), simulation.Rest()), nil
	}
	return nil, fmt.Errorf("unknown drive %q (valid: rest, constant, pain, alternate)", kind)
}

func adrenalineFromFlags(cmd *cobra.Command, ticks int) (simulation.Schedule, error) {
	levelFlag, _ := cmd.Flags().GetInt("adrenaline")
	at, _ := cmd.Flags().GetInt("adrenaline-at")
	length, _ := cmd.Flags().GetInt("adrenaline-for")

	level, err := fault.CheckU8("adrenaline", levelFlag)
	if err != nil {
		return nil, err
	}
	if level == 0 {
		return nil, nil
	}
	if at < 0 || length < 0 {
		return nil, fmt.Errorf("--adrenaline-at and --adrenaline-for must be >= 0")
	}
	if length == 0 {
		length = ticks - at
	}
	return simulation.Burst(at, length, level), nil
}

func buildReport(body *bundle.Body, result simulation.Result) simulateReport {
	report := simulateReport{
		Scenario:    result.Scenario,
		Ticks:       len(result.Ticks),
		Checkpoints: result.Snapshots,
	}
	for _, b := range body.Bundles() {
		report.Bundles = append(report.Bundles, bundleReport{
			Name:       b.Name(),
			Ticks:      b.Ticks(),
			Active:     b.IsActive(),
			Activity:   b.TotalActivity(),
			Modulation: b.State().Modulation,
		})
	}
	if counts := result.PainBySource(); len(counts) > 0 {
		report.Pain = make(map[string]int, len(counts))
		for src, n := range counts {
			report.Pain[src.String()] = n
		}
	}
	for _, ev := range result.Pain() {
		if ev.IsUrgent() {
			report.Urgent++
		}
	}
	if ev, ok := result.MostSalient(); ok {
		report.MostSalient = &ev
	}
	return report
}

func printReport(cmd *cobra.Command, r simulateReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scenario %s: %d tick(s)\n\n", r.Scenario, r.Ticks)
	for _, b := range r.Bundles {
		state := "idle"
		if b.Active {
			state = "active"
		}
		fmt.Fprintf(out, "  %-12s ticks=%-6d %-6s activity=%d\n", b.Name, b.Ticks, state, b.Activity)
	}

	fmt.Fprintln(out)
	if len(r.Pain) == 0 {
		fmt.Fprintln(out, "No pain.")
	} else {
		sources := make([]string, 0, len(r.Pain))
		for src := range r.Pain {
			sources = append(sources, src)
		}
		slices.Sort(sources)
		fmt.Fprintf(out, "Pain events (%d urgent):\n", r.Urgent)
		for _, src := range sources {
			fmt.Fprintf(out, "  %-8s %d\n", src, r.Pain[src])
		}
		if ev := r.MostSalient; ev != nil {
			fmt.Fprintf(out, "Most salient: %s[%d] %s intensity=%d salience=%d\n",
				ev.Bundle, ev.TractIndex, ev.Source, ev.Intensity, ev.Salience())
		}
	}

	for _, id := range r.Checkpoints {
		fmt.Fprintf(out, "Checkpoint: %s\n", id)
	}
	if r.Saved != "" {
		fmt.Fprintf(out, "Saved snapshot: %s\n", r.Saved)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/fibertract/internal/bundle"
	"github.com/nvandessel/fibertract/internal/sanitize"
	"github.com/nvandessel/fibertract/internal/store"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage saved body snapshots",
		Long: `Save, inspect and move body snapshots.

Snapshots hold the full state of every bundle: properties, usage history,
pain traces and chemical levels. They are kept in the configured store
(SQLite in the data directory by default).

Examples:
  fibertract snapshot save --profiles gaze,left_hand --label fresh
  fibertract snapshot list
  fibertract snapshot load latest
  fibertract snapshot export --output snapshots.jsonl
  fibertract snapshot import snapshots.jsonl`,
	}

	cmd.AddCommand(
		newSnapshotSaveCmd(),
		newSnapshotLoadCmd(),
		newSnapshotListCmd(),
		newSnapshotDeleteCmd(),
		newSnapshotExportCmd(),
		newSnapshotImportCmd(),
	)
	return cmd
}

// withStore loads settings, opens the store and runs fn against it.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, s store.SnapshotStore) error) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	s, err := openStore(settings)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(cmd.Context(), s)
}

// loadSnapshot resolves id, where "latest" names the newest snapshot.
func loadSnapshot(ctx context.Context, s store.SnapshotStore, id string) (*store.Snapshot, error) {
	var (
		snap *store.Snapshot
		err  error
	)
	if id == "latest" {
		snap, err = s.Latest(ctx)
	} else {
		snap, err = s.Get(ctx, id)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("snapshot %s: %w", id, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", id, err)
	}
	return snap, nil
}

func newSnapshotSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a fresh body as a snapshot",
		Long: `Build a fresh body from profiles and save it, to serve as a starting
point for 'simulate --from'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			profiles, _ := cmd.Flags().GetString("profiles")
			label, _ := cmd.Flags().GetString("label")

			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			catalog, err := loadCatalog(settings)
			if err != nil {
				return err
			}
			opts, err := settings.BundleOptions(nil, nil)
			if err != nil {
				return err
			}
			opts = append(opts, bundle.WithDecayRate(settings.Simulation.DecayRate))
			body, err := catalog.Body(splitList(profiles), opts...)
			if err != nil {
				return err
			}

			s, err := openStore(settings)
			if err != nil {
				return err
			}
			defer s.Close()

			snap := store.NewSnapshot(sanitize.Label(label), body)
			id, err := s.Save(cmd.Context(), snap)
			if err != nil {
				return fmt.Errorf("failed to save snapshot: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd, snap.Summarize())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved snapshot %s (%s)\n", id, strings.Join(body.Names(), ", "))
			return nil
		},
	}

	cmd.Flags().String("profiles", "", "Comma-separated profiles to build (default: the full body)")
	cmd.Flags().String("label", "", "Snapshot label")
	return cmd
}

func newSnapshotLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <id|latest>",
		Short: "Show a snapshot",
		Long: `Show a snapshot's bundles. With --json or --output the full state is
written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			output, _ := cmd.Flags().GetString("output")

			return withStore(cmd, func(ctx context.Context, s store.SnapshotStore) error {
				snap, err := loadSnapshot(ctx, s, args[0])
				if err != nil {
					return err
				}
				// Rebuilding checks the stored state is still valid.
				if _, err := snap.Body(); err != nil {
					return fmt.Errorf("snapshot %s is invalid: %w", snap.ID, err)
				}

				if output != "" {
					f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
					if err != nil {
						return fmt.Errorf("failed to create output file: %w", err)
					}
					defer f.Close()
					if err := writeJSONTo(f, snap); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Wrote snapshot %s to %s\n", snap.ID, output)
					return nil
				}
				if jsonOut {
					return writeJSON(cmd, snap)
				}

				sum := snap.Summarize()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Snapshot %s\n", sum.ID)
				if sum.Label != "" {
					fmt.Fprintf(out, "Label:   %s\n", sum.Label)
				}
				fmt.Fprintf(out, "Created: %s\n", sum.CreatedAt.Format(time.RFC3339))
				fmt.Fprintf(out, "Tracts:  %d\n\n", sum.Tracts)

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "BUNDLE\tTICKS\tTRACTS\tADR\tEND\tCOR\tGABA")
				for _, b := range snap.Bundles {
					m := b.Modulation
					fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%d\n", b.Name, b.Ticks, len(b.Tracts), m[0], m[1], m[2], m[3])
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().String("output", "", "Write the full snapshot JSON to this file")
	return cmd
}

func newSnapshotListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			return withStore(cmd, func(ctx context.Context, s store.SnapshotStore) error {
				sums, err := s.List(ctx)
				if err != nil {
					return fmt.Errorf("failed to list snapshots: %w", err)
				}
				if jsonOut {
					return writeJSON(cmd, map[string]any{"snapshots": sums, "count": len(sums)})
				}
				if len(sums) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No snapshots.")
					return nil
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tLABEL\tCREATED\tBUNDLES\tTICKS")
				for _, sum := range sums {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
						sum.ID, sum.Label, sum.CreatedAt.Local().Format("2006-01-02 15:04:05"), len(sum.Bundles), sum.Ticks)
				}
				return w.Flush()
			})
		},
	}
}

func newSnapshotDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			return withStore(cmd, func(ctx context.Context, s store.SnapshotStore) error {
				if err := s.Delete(ctx, args[0]); err != nil {
					return fmt.Errorf("failed to delete snapshot %s: %w", args[0], err)
				}
				if jsonOut {
					return writeJSON(cmd, map[string]string{"status": "deleted", "id": args[0]})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted snapshot %s\n", args[0])
				return nil
			})
		},
	}
}

func newSnapshotExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every snapshot as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")

			return withStore(cmd, func(ctx context.Context, s store.SnapshotStore) error {
				var w io.Writer = cmd.OutOrStdout()
				if output != "" {
					f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
					if err != nil {
						return fmt.Errorf("failed to create output file: %w", err)
					}
					defer f.Close()
					w = f
				}

				n, err := store.ExportJSONL(ctx, s, w)
				if err != nil {
					return fmt.Errorf("export failed after %d snapshot(s): %w", n, err)
				}
				if output != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d snapshot(s) to %s\n", n, output)
				}
				return nil
			})
		},
	}

	cmd.Flags().String("output", "", "Write to this file instead of stdout")
	return cmd
}

func newSnapshotImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import snapshots from a JSON lines file",
		Long: `Import snapshots written by 'snapshot export'. Snapshots with an existing
ID replace it. Lines that do not parse are skipped and reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer f.Close()

			return withStore(cmd, func(ctx context.Context, s store.SnapshotStore) error {
				res, err := store.ImportJSONL(ctx, s, f)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, map[string]any{"imported": res.Imported, "skipped_lines": res.Skipped})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d snapshot(s)\n", res.Imported)
				if len(res.Skipped) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Skipped unparseable lines: %v\n", res.Skipped)
				}
				return nil
			})
		},
	}
}

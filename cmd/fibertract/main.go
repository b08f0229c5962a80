package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvandessel/fibertract/internal/config"
	"github.com/nvandessel/fibertract/internal/logging"
	"github.com/nvandessel/fibertract/internal/profile"
	"github.com/nvandessel/fibertract/internal/store"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fibertract",
		Short: "Fiber-tract nerve simulation",
		Long: `fibertract simulates bundles of nerve fiber tracts that carry motor
commands out and sensory readings in.

Tracts adapt to use and disuse, respond to chemical modulation, and report
pain. Bodies are built from presets or custom profiles and can be saved to
and restored from snapshots.`,
		SilenceUsage: true,
	}

	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(
		newVersionCmd(),
		newPresetsCmd(),
		newSimulateCmd(),
		newSnapshotCmd(),
		newConfigCmd(),
		newMCPServerCmd(),
	)
	return rootCmd
}

func addGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	cmd.PersistentFlags().String("config", "", "Config file (default ~/.fibertract/config.yaml)")
	cmd.PersistentFlags().String("data-dir", "", "Data directory for snapshots and logs (overrides config)")
	cmd.PersistentFlags().String("log-level", "", "Log level: info, debug or trace (overrides config)")
}

// loadSettings loads the config named by --config, or the default one,
// then applies the command-line overrides.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var (
		settings *config.Config
		err      error
	)
	if path != "" {
		settings, err = config.LoadFromFile(path)
	} else {
		settings, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		settings.Store.DataDir = dir
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		settings.Logging.Level = level
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func newLogger(cmd *cobra.Command, settings *config.Config) *slog.Logger {
	return logging.NewLogger(settings.Logging.Level, settings.Logging.Format, cmd.ErrOrStderr())
}

// ensureDataDir returns the data directory, creating it if needed.
func ensureDataDir(settings *config.Config) (string, error) {
	dir, err := settings.DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

func openStore(settings *config.Config) (store.SnapshotStore, error) {
	dir, err := ensureDataDir(settings)
	if err != nil {
		return nil, err
	}
	s, err := store.Open(settings.Store.Backend, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	return s, nil
}

func loadCatalog(settings *config.Config) (*profile.Catalog, error) {
	catalog, err := profile.LoadCatalog(settings.Simulation.ProfilesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	return catalog, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	return writeJSONTo(cmd.OutOrStdout(), v)
}

func writeJSONTo(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

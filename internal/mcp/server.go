// Package mcp provides an MCP (Model Context Protocol) server that lets a
// client drive a simulated body: tick it, inspect tracts, release
// chemicals, and save and restore snapshots.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/fibertract/internal/bundle"
	"github.com/nvandessel/fibertract/internal/config"
	"github.com/nvandessel/fibertract/internal/logging"
	"github.com/nvandessel/fibertract/internal/profile"
	"github.com/nvandessel/fibertract/internal/ratelimit"
	"github.com/nvandessel/fibertract/internal/store"
)

// Server wraps the MCP SDK server and owns the simulated body.
type Server struct {
	server   *sdk.Server
	settings *config.Config
	catalog  *profile.Catalog
	store    store.SnapshotStore
	dataDir  string

	// mu guards body; tool calls may arrive concurrently.
	mu   sync.Mutex
	body *bundle.Body

	logger       *slog.Logger
	events       *logging.EventLogger
	auditLogger  *AuditLogger
	toolLimiters ratelimit.ToolLimiters

	closeOnce sync.Once
	closeErr  error
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "fibertract")
	Version string // Server version

	// Settings is the loaded configuration. Nil means config.Default().
	Settings *config.Config

	// DataDir overrides Settings' data directory.
	DataDir string

	// Profiles names the bundles of the starting body. Empty means the
	// full body of presets.
	Profiles []string

	// Store overrides the store Settings select.
	Store store.SnapshotStore

	Logger *slog.Logger
}

// NewServer creates a new MCP server with fibertract tools.
func NewServer(cfg *Config) (*Server, error) {
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dir, err := settings.DataDir()
		if err != nil {
			return nil, err
		}
		dataDir = dir
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	catalog, err := profile.LoadCatalog(settings.Simulation.ProfilesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}

	snapshots := cfg.Store
	if snapshots == nil {
		snapshots, err = store.Open(settings.Store.Backend, dataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open snapshot store: %w", err)
		}
	}

	s := &Server{
		settings:     settings,
		catalog:      catalog,
		store:        snapshots,
		dataDir:      dataDir,
		logger:       logging.OrDiscard(cfg.Logger),
		events:       logging.NewEventLogger(dataDir, settings.Logging.Level),
		auditLogger:  NewAuditLogger(dataDir),
		toolLimiters: ratelimit.NewToolLimiters(),
	}
	for tool, rl := range settings.RateLimits {
		s.toolLimiters.Set(tool, rl.Rate, rl.Burst)
	}

	body, err := s.newBody(cfg.Profiles)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.body = body

	s.server = sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			s.logger.Debug("client initialized")
		},
	})
	s.registerTools()

	return s, nil
}

// newBody builds a fresh body of the named profiles under the server's
// settings.
func (s *Server) newBody(names []string) (*bundle.Body, error) {
	opts, err := s.bundleOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, bundle.WithDecayRate(s.settings.Simulation.DecayRate))
	body, err := s.catalog.Body(names, opts...)
	if err != nil {
		return nil, err
	}
	body.SetParallelism(s.settings.Simulation.Parallelism)
	return body, nil
}

func (s *Server) bundleOptions() ([]bundle.Option, error) {
	return s.settings.BundleOptions(s.logger, s.events)
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
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

	err := s.server.Run(ctx, &sdk.StdioTransport{})
	if cerr := s.Close(); err == nil {
		err = cerr
	}
	return err
}

// Close releases the store and the log files. It is safe to call more
// than once.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		s.events.Close()
		if err := s.auditLogger.Close(); err != nil {
			s.logger.Warn("failed to close audit log", "error", err)
		}
		s.closeErr = s.store.Close()
	})
	return s.closeErr
}

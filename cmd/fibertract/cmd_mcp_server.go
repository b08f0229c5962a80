package main

import (
	"github.com/spf13/cobra"

	"github.com/nvandessel/fibertract/internal/mcp"
)

func newMCPServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Run an MCP server over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout.

The server owns one body and exposes tools to tick it, inspect tracts,
release chemicals, save and restore snapshots, and switch profiles.
Tool calls are rate limited and recorded in <data_dir>/audit.jsonl.

Example MCP client configuration:
  {"command": "fibertract", "args": ["mcp-server", "--profiles", "left_hand,gaze"]}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, _ := cmd.Flags().GetString("profiles")

			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			// stdout carries the protocol; logs go to stderr.
			server, err := mcp.NewServer(&mcp.Config{
				Name:     "fibertract",
				Version:  version,
				Settings: settings,
				Profiles: splitList(profiles),
				Logger:   newLogger(cmd, settings),
			})
			if err != nil {
				return err
			}
			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().String("profiles", "", "Comma-separated profiles of the starting body (default: the full body)")
	return cmd
}

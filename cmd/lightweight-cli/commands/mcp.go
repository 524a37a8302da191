package commands

import (
	"log/slog"
	"os"

	lwmcp "github.com/claude/lightweight/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newMCPCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the MCP tools over stdio, backed by the Lightweight server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol.
			log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
			if err := a.api.Healthy(cmd.Context()); err != nil {
				log.Warn("server not reachable, tools will fail until it is", "url", a.cfg.Client.ServerURL, "error", err)
			}
			return mcpserver.ServeStdio(lwmcp.New(a.api, a.version, log))
		},
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/voicaj/internal/config"
	"github.com/fyrsmithlabs/voicaj/internal/mcp"
)

// runStdio serves the MCP tools on stdin/stdout. stdout carries
// protocol frames, so logs go to stderr.
func runStdio(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	server, err := mcp.NewServer(&mcp.Config{
		Name:    "voicaj",
		Version: version,
		Logger:  a.logger.Named("mcp").Underlying(),
	}, a.classifier, a.scrubber)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("stdio server error: %w", err)
	}
	a.logger.Info(ctx, "stdio MCP server shutdown complete")
	return nil
}

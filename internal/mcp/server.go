package mcp

import (
	"context"
	"fmt"
	"slices"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/voicaj/internal/classifier"
	"github.com/fyrsmithlabs/voicaj/internal/secrets"
)

// Server is an MCP server backed by a classifier.Service.
type Server struct {
	mcp        *mcp.Server
	classifier *classifier.Service
	scrubber   secrets.Scrubber
	metrics    *Metrics
	logger     *zap.Logger
}

// Config configures the MCP server.
type Config struct {
	// Name is the server implementation name (default: "voicaj")
	Name string

	// Version is the server version (default: "0.1.0")
	Version string

	// Logger for structured logging
	Logger *zap.Logger

	// Metrics records tool invocations. Nil uses the global meter provider.
	Metrics *Metrics
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:    "voicaj",
		Version: "0.1.0",
		Logger:  zap.NewNop(),
	}
}

// NewServer creates an MCP server with the classification tools registered.
// A nil scrubber leaves tool output untouched.
func NewServer(cfg *Config, svc *classifier.Service, scrubber secrets.Scrubber) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if svc == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if scrubber == nil {
		scrubber = secrets.Noop{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics(nil, cfg.Logger)
	}

	s := &Server{
		mcp: mcp.NewServer(
			&mcp.Implementation{
				Name:    cfg.Name,
				Version: cfg.Version,
			},
			nil,
		),
		classifier: svc,
		scrubber:   scrubber,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}

	s.registerTools()
	s.logger.Debug("registered MCP tools", zap.Int("count", len(catalog)))
	return s, nil
}

// Run serves MCP on the stdio transport until ctx is done or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio transport")
	return s.Serve(ctx, &mcp.StdioTransport{})
}

// Serve serves MCP on transport until ctx is done or the client disconnects.
func (s *Server) Serve(ctx context.Context, transport mcp.Transport) error {
	if err := s.mcp.Run(ctx, transport); err != nil {
		return fmt.Errorf("server run failed: %w", err)
	}
	return nil
}

// Tools returns the metadata of the served tools in name order.
func (s *Server) Tools() []ToolMetadata {
	return slices.Clone(catalog)
}

// Voicajd is the voicaj classification daemon.
//
// With no subcommand it serves the HTTP API. The mcp subcommand serves MCP
// over stdio instead, with logs on stderr.
//
// Usage:
//
//	# Start the HTTP API with defaults
//	voicajd
//
//	# Serve MCP tools over stdio
//	voicajd mcp
//
//	# Configure via environment
//	SERVER_HTTP_PORT=9191 GENERATIVE_PROVIDER=openai GENERATIVE_API_KEY=... voicajd
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/voicaj/internal/config"
	httpserver "github.com/fyrsmithlabs/voicaj/internal/http"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default ~/.config/voicaj/config.yaml)")
	flag.Parse()
	args := flag.Args()

	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "version":
		printVersion()
		return
	case "", "serve", "mcp":
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprintf(os.Stderr, "\nUsage:\n")
		fmt.Fprintf(os.Stderr, "  voicajd           Start the HTTP API\n")
		fmt.Fprintf(os.Stderr, "  voicajd mcp       Serve MCP tools over stdio\n")
		fmt.Fprintf(os.Stderr, "  voicajd version   Show version information\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWithFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voicajd: %v\n", err)
		os.Exit(1)
	}

	if cmd == "mcp" {
		err = runStdio(ctx, cfg)
	} else {
		err = run(ctx, cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "voicajd: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("voicajd by Fyrsmith Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run serves the HTTP API until ctx is cancelled, then shuts down within
// the configured timeout.
func run(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	log := a.logger.Underlying()
	opts := append([]httpserver.Option{
		httpserver.WithHistory(a.historyStore(), cfg.History.ListLimit),
		httpserver.WithModels(a.listModels),
		httpserver.WithMetrics(httpserver.NewHTTPMetrics(nil, log)),
	}, a.healthChecks()...)
	srv, err := httpserver.NewServer(a.classifier, log.Named("http"),
		&httpserver.Config{Host: cfg.Server.Host, Port: cfg.Server.Port}, opts...)
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	a.logger.Info(ctx, "server configured",
		zap.String("health_endpoint", fmt.Sprintf("http://%s/health", cfg.Server.Addr())),
		zap.String("metrics_endpoint", "/metrics"))

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info(ctx, "received shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

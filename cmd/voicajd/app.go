package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/voicaj/internal/classifier"
	"github.com/fyrsmithlabs/voicaj/internal/config"
	"github.com/fyrsmithlabs/voicaj/internal/events"
	"github.com/fyrsmithlabs/voicaj/internal/exemplar"
	"github.com/fyrsmithlabs/voicaj/internal/generative"
	"github.com/fyrsmithlabs/voicaj/internal/history"
	httpserver "github.com/fyrsmithlabs/voicaj/internal/http"
	"github.com/fyrsmithlabs/voicaj/internal/logging"
	"github.com/fyrsmithlabs/voicaj/internal/secrets"
	"github.com/fyrsmithlabs/voicaj/internal/telemetry"
)

const telemetryShutdownTimeout = 5 * time.Second

// app holds the wired dependencies shared by the HTTP and stdio modes.
type app struct {
	logger     *logging.Logger
	telemetry  *telemetry.Telemetry
	scrubber   secrets.Scrubber
	completer  generative.Completer
	exemplars  *exemplar.Store
	history    *history.Store
	publisher  events.Publisher
	classifier *classifier.Service

	stopWatch context.CancelFunc
	watchers  sync.WaitGroup
}

// adapterOptions configures the generative adapter. Prompts are scrubbed only
// for providers that send them off the host.
func adapterOptions(cfg *config.Config, scrubber secrets.Scrubber, log *zap.Logger) []generative.AdapterOption {
	opts := []generative.AdapterOption{
		generative.WithLogger(log),
		generative.WithSampling(cfg.Classifier.MaxTokens, cfg.Classifier.Temperature),
		generative.WithTimeout(cfg.Generative.Timeout.Duration()),
	}
	if cfg.Generative.Completer().Remote() {
		opts = append(opts, generative.WithScrubber(scrubber))
	}
	return opts
}

// newApp wires config into a ready classifier. stdio sends logs to stderr.
func newApp(ctx context.Context, cfg *config.Config, stdio bool) (_ *app, err error) {
	a := &app{stopWatch: func() {}}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.scrubber, err = secrets.New(cfg.Secrets)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret scrubber: %w", err)
	}

	logCfg, err := logging.NewConfig(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	logCfg.Output.Stderr = stdio
	logCfg.Output.OTEL = cfg.Observability.EnableTelemetry
	a.logger, err = logging.NewLogger(logCfg, logging.WithScrubber(a.scrubber))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := a.logger.Underlying()

	telCfg := telemetry.NewDefaultConfig()
	telCfg.Enabled = cfg.Observability.EnableTelemetry
	telCfg.Endpoint = cfg.Observability.OTLPEndpoint
	telCfg.Protocol = cfg.Observability.OTLPProtocol
	telCfg.ServiceName = cfg.Observability.ServiceName
	telCfg.ServiceVersion = version
	a.telemetry, err = telemetry.New(ctx, telCfg, telemetry.WithLogger(log.Named("telemetry")))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	log.Info("starting voicaj",
		zap.String("version", version),
		zap.String("provider", cfg.Generative.Provider),
		zap.Bool("generative_enabled", cfg.Classifier.GenerativeEnabled),
		logging.Secret("api_key", cfg.Generative.APIKey),
		zap.Bool("telemetry", telCfg.Enabled),
	)

	a.completer, err = generative.New(cfg.Generative.Completer())
	if err != nil {
		return nil, fmt.Errorf("failed to create %s completer: %w", cfg.Generative.Provider, err)
	}
	adapter := generative.NewAdapter(a.completer, adapterOptions(cfg, a.scrubber, log.Named("generative"))...)

	a.exemplars, err = exemplar.Open(cfg.Exemplars, exemplar.WithLogger(log.Named("exemplar")))
	if err != nil {
		return nil, fmt.Errorf("failed to open exemplar store: %w", err)
	}
	if cfg.Exemplars.Watch {
		a.startWatch(ctx, log)
	}

	opts := []classifier.Option{
		classifier.WithLogger(log.Named("classifier")),
		classifier.WithTracer(a.telemetry.Tracer("github.com/fyrsmithlabs/voicaj/internal/classifier")),
	}

	if cfg.History.Path != "" {
		a.history, err = history.Open(ctx, cfg.History.Path, history.WithLogger(log.Named("history")))
		if err != nil {
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
		opts = append(opts, classifier.WithHistory(a.history, cfg.History.ContextTurns))
	}

	a.publisher, err = events.New(cfg.Events, log.Named("events"))
	if err != nil {
		return nil, fmt.Errorf("failed to create event publisher: %w", err)
	}
	opts = append(opts, classifier.WithPublisher(a.publisher))

	metrics, err := telemetry.NewClassifierMetrics(a.telemetry)
	if err != nil {
		log.Warn("classifier metrics disabled", zap.Error(err))
	} else {
		opts = append(opts, classifier.WithMetrics(metrics))
	}

	a.classifier = classifier.New(cfg.Classifier, a.exemplars, adapter, opts...)

	log.Info("dependencies initialized",
		zap.String("exemplars", a.exemplars.Path()),
		zap.Int("exemplar_count", a.exemplars.Len()),
		zap.Bool("history", a.history != nil),
		zap.Bool("events", cfg.Events.Enabled),
		zap.String("scrubber", a.scrubber.Engine()),
	)
	return a, nil
}

func (a *app) startWatch(ctx context.Context, log *zap.Logger) {
	watchCtx, cancel := context.WithCancel(ctx)
	a.stopWatch = cancel
	a.watchers.Add(1)
	go func() {
		defer a.watchers.Done()
		err := a.exemplars.Watch(watchCtx)
		if errors.Is(err, exemplar.ErrWatchUnsupported) {
			log.Debug("exemplar store is in memory, not watching")
		} else if err != nil {
			log.Warn("exemplar watcher stopped", zap.Error(err))
		}
	}()
}

// historyStore returns nil when history is disabled so the HTTP server sees
// a nil interface.
func (a *app) historyStore() httpserver.HistoryStore {
	if a.history == nil {
		return nil
	}
	return a.history
}

// healthChecks lists the dependency checks served on GET /health.
func (a *app) healthChecks() []httpserver.Option {
	opts := []httpserver.Option{httpserver.WithHealthCheck("telemetry", a.telemetry.Check)}
	if a.history != nil {
		opts = append(opts, httpserver.WithHealthCheck("history", a.history.Ping))
	}
	if np, ok := a.publisher.(*events.NATSPublisher); ok {
		opts = append(opts, httpserver.WithHealthCheck("events", np.Check))
	}
	return opts
}

func (a *app) listModels(ctx context.Context) ([]string, error) {
	return generative.ListModels(ctx, a.completer)
}

// Close releases everything newApp opened, in reverse order.
func (a *app) Close() {
	a.stopWatch()
	a.watchers.Wait()

	var log *zap.Logger
	if a.logger != nil {
		log = a.logger.Underlying()
	} else {
		log = zap.NewNop()
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			log.Warn("failed to close event publisher", zap.Error(err))
		}
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			log.Warn("failed to close history", zap.Error(err))
		}
	}
	if a.telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		if err := a.telemetry.Shutdown(ctx); err != nil {
			log.Warn("telemetry shutdown failed", zap.Error(err))
		}
		cancel()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

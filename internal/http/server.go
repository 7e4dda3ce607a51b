// Package http serves the classification API over echo.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/voicaj/internal/classifier"
	"github.com/fyrsmithlabs/voicaj/internal/generative"
	"github.com/fyrsmithlabs/voicaj/internal/history"
	"github.com/fyrsmithlabs/voicaj/internal/logging"
	"github.com/fyrsmithlabs/voicaj/internal/record"
)

// maxBatchSize caps the number of texts in one batch request.
const maxBatchSize = 100

// healthCheckTimeout bounds each dependency check run by GET /health.
const healthCheckTimeout = 2 * time.Second

// HistoryStore reads and clears conversation turns.
type HistoryStore interface {
	Recent(ctx context.Context, sessionID string, limit int) ([]history.Turn, error)
	Clear(ctx context.Context, sessionID string) (int64, error)
}

// ModelLister lists the models of the configured provider.
type ModelLister func(ctx context.Context) ([]string, error)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

type namedCheck struct {
	name  string
	check HealthCheck
}

// Server provides HTTP endpoints for voicaj.
type Server struct {
	echo       *echo.Echo
	classifier *classifier.Service
	history    HistoryStore
	listLimit  int
	models     ModelLister
	metrics    *HTTPMetrics
	checks     []namedCheck
	logger     *logging.Logger
	config     *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// Option configures a Server.
type Option func(*Server)

// WithHistory serves the history endpoints from h. limit caps GET results.
func WithHistory(h HistoryStore, limit int) Option {
	return func(s *Server) {
		s.history = h
		if limit > 0 {
			s.listLimit = limit
		}
	}
}

// WithModels serves GET /api/v1/models from list.
func WithModels(list ModelLister) Option {
	return func(s *Server) { s.models = list }
}

// WithMetrics records request metrics.
func WithMetrics(m *HTTPMetrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithHealthCheck adds a named dependency check to GET /health.
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(s *Server) {
		if check != nil {
			s.checks = append(s.checks, namedCheck{name: name, check: check})
		}
	}
}

// NewServer creates a new HTTP server.
func NewServer(svc *classifier.Service, logger *zap.Logger, cfg *Config, opts ...Option) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("classifier cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 9090,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:       e,
		classifier: svc,
		listLimit:  history.DefaultListLimit,
		logger:     logging.Wrap(logger),
		config:     cfg,
	}
	for _, opt := range opts {
		opt(s)
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.requestLogger)
	if s.metrics != nil {
		e.Use(s.metrics.MetricsMiddleware())
	}

	s.registerRoutes()
	return s, nil
}

// requestLogger puts the request id in the request context and logs each
// request once it completes.
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		requestID := c.Response().Header().Get(echo.HeaderXRequestID)

		req := c.Request()
		ctx := logging.WithRequestID(req.Context(), requestID)
		c.SetRequest(req.WithContext(ctx))

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		s.logger.Info(ctx, "http request",
			zap.String("method", req.Method),
			zap.String("uri", req.RequestURI),
			zap.Int("status", c.Response().Status),
			zap.Duration("duration", time.Since(start)),
		)
		return nil
	}
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/classify", s.handleClassify)
	v1.POST("/classify/batch", s.handleBatch)
	v1.POST("/learn", s.handleLearn)
	v1.GET("/history", s.handleHistory)
	v1.DELETE("/history", s.handleClearHistory)
	v1.GET("/models", s.handleModels)
	v1.GET("/exemplars/stats", s.handleExemplarStats)
}

// Echo exposes the router for extra routes.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// handleHealth answers 200 even when degraded; a failed check does not stop
// classification.
func (s *Server) handleHealth(c echo.Context) error {
	resp := HealthResponse{Status: "ok"}
	if len(s.checks) == 0 {
		return c.JSON(http.StatusOK, resp)
	}

	resp.Checks = make(map[string]string, len(s.checks))
	for _, nc := range s.checks {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
		err := nc.check(ctx)
		cancel()
		if err != nil {
			resp.Status = "degraded"
			resp.Checks[nc.name] = err.Error()
			s.logger.Warn(c.Request().Context(), "health check failed", zap.String("check", nc.name), zap.Error(err))
			continue
		}
		resp.Checks[nc.name] = "ok"
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleClassify(c echo.Context) error {
	var req ClassifyRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid classify request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, record.ErrEmptyText.Error())
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	} else if err := logging.ValidateID(sessionID, "session_id"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := logging.WithSessionID(c.Request().Context(), sessionID)
	records := s.classifier.ClassifySession(ctx, sessionID, req.Text)

	return c.JSON(http.StatusOK, ClassifyResponse{
		Records:   records,
		SessionID: sessionID,
	})
}

func (s *Server) handleBatch(c echo.Context) error {
	var req BatchRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid batch request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Texts) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "texts field is required")
	}
	if len(req.Texts) > maxBatchSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("at most %d texts per batch", maxBatchSize))
	}

	s.metrics.RecordBatch(c.Request().Context(), len(req.Texts))
	results := s.classifier.BatchClassify(c.Request().Context(), req.Texts)
	return c.JSON(http.StatusOK, BatchResponse{Results: results})
}

func (s *Server) handleLearn(c echo.Context) error {
	var req LearnRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid learn request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, record.ErrEmptyText.Error())
	}
	if strings.TrimSpace(req.Feedback) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "feedback field is required")
	}

	records := s.classifier.Learn(c.Request().Context(), req.Text, req.Output, req.Feedback)
	return c.JSON(http.StatusOK, LearnResponse{Records: records})
}

func (s *Server) handleHistory(c echo.Context) error {
	if s.history == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "history is disabled")
	}
	sessionID, err := sessionParam(c)
	if err != nil {
		return err
	}

	limit := s.listLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = min(n, s.listLimit)
	}

	turns, err := s.history.Recent(c.Request().Context(), sessionID, limit)
	if err != nil {
		s.logger.Error(logging.WithSessionID(c.Request().Context(), sessionID), "failed to read history", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read history")
	}

	entries := make([]HistoryEntry, len(turns))
	for i, t := range turns {
		entries[i] = HistoryEntry{
			User:      t.UserMessage,
			Assistant: t.Records,
			Timestamp: t.CreatedAt,
		}
	}
	return c.JSON(http.StatusOK, HistoryResponse{History: entries})
}

func (s *Server) handleClearHistory(c echo.Context) error {
	if s.history == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "history is disabled")
	}
	sessionID, err := sessionParam(c)
	if err != nil {
		return err
	}

	cleared, err := s.history.Clear(c.Request().Context(), sessionID)
	if err != nil {
		s.logger.Error(logging.WithSessionID(c.Request().Context(), sessionID), "failed to clear history", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to clear history")
	}
	return c.JSON(http.StatusOK, ClearResponse{Cleared: cleared})
}

func sessionParam(c echo.Context) (string, error) {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "session_id is required")
	}
	if err := logging.ValidateID(sessionID, "session_id"); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return sessionID, nil
}

func (s *Server) handleModels(c echo.Context) error {
	if s.models == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, generative.ErrModelsUnsupported.Error())
	}
	models, err := s.models(c.Request().Context())
	switch {
	case errors.Is(err, generative.ErrModelsUnsupported):
		return echo.NewHTTPError(http.StatusNotImplemented, err.Error())
	case err != nil:
		s.logger.Warn(c.Request().Context(), "failed to list models", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, "failed to list models")
	}
	return c.JSON(http.StatusOK, ModelsResponse{Models: models})
}

func (s *Server) handleExemplarStats(c echo.Context) error {
	return c.JSON(http.StatusOK, ExemplarStatsResponse{Count: s.classifier.Exemplars().Len()})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}

// Package classifier runs the message pipeline: type routing, path
// selection, extraction, exemplar overrides and validation.
package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/voicaj/internal/events"
	"github.com/fyrsmithlabs/voicaj/internal/exemplar"
	"github.com/fyrsmithlabs/voicaj/internal/extraction"
	"github.com/fyrsmithlabs/voicaj/internal/feedback"
	"github.com/fyrsmithlabs/voicaj/internal/generative"
	"github.com/fyrsmithlabs/voicaj/internal/history"
	"github.com/fyrsmithlabs/voicaj/internal/logging"
	"github.com/fyrsmithlabs/voicaj/internal/record"
	"github.com/fyrsmithlabs/voicaj/internal/routing"
	"github.com/fyrsmithlabs/voicaj/internal/telemetry"
	"github.com/fyrsmithlabs/voicaj/internal/validate"
)

// Paths reported in logs, metrics and events besides the generative ones.
const (
	PathDeterministic = "deterministic"
	PathRecovered     = "recovered"
)

// History supplies and stores conversation turns for session classification.
type History interface {
	Recent(ctx context.Context, sessionID string, limit int) ([]history.Turn, error)
	Append(ctx context.Context, sessionID, userMessage string, records []record.Record) error
}

// Service classifies messages and learns from corrections.
type Service struct {
	cfg        Config
	types      *routing.TypeRouter
	complexity *routing.ComplexityRouter
	extractor  *extraction.Extractor
	validator  *validate.Validator
	adapter    *generative.Adapter
	store      *exemplar.Store
	learner    *feedback.Learner

	history      History
	contextTurns int
	publisher    events.Publisher
	metrics      *telemetry.ClassifierMetrics
	tracer       trace.Tracer
	logger       *zap.Logger
	log          *logging.Logger
	now          func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHistory enables session context: the last turns prior turns are put in
// the prompt and each classified message is appended.
func WithHistory(h History, turns int) Option {
	return func(s *Service) {
		s.history = h
		s.contextTurns = turns
	}
}

// WithPublisher emits classified and learned events.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithMetrics records classification counters.
func WithMetrics(m *telemetry.ClassifierMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTracer wraps each classification in a span.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithClock overrides the clock used for the per-call "now".
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New wires a Service around store and adapter. A nil adapter disables the
// generative path.
func New(cfg Config, store *exemplar.Store, adapter *generative.Adapter, opts ...Option) *Service {
	if cfg.BatchParallelism <= 0 {
		cfg.BatchParallelism = DefaultBatchParallelism
	}
	if store == nil {
		// An in-memory store cannot fail to open.
		store, _ = exemplar.Open(exemplar.Config{})
	}
	ext := extraction.New()
	s := &Service{
		cfg:        cfg,
		types:      routing.NewTypeRouter(),
		complexity: routing.NewComplexityRouter(),
		extractor:  ext,
		validator:  validate.New(ext),
		adapter:    adapter,
		store:      store,
		publisher:  events.Noop{},
		tracer:     noop.NewTracerProvider().Tracer(""),
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logging.Wrap(s.logger)
	s.learner = feedback.New(store,
		feedback.WithLogger(s.logger.Named("feedback")),
		feedback.WithPublisher(s.publisher),
		feedback.WithClock(s.now),
		feedback.WithExtractor(ext),
	)
	return s
}

// Classify turns text into at least one record. It never fails; the worst
// case is record.Default for text.
func (s *Service) Classify(ctx context.Context, text string) []record.Record {
	return s.classify(ctx, "", text)
}

// ClassifySession is Classify with conversation context for sessionID. The
// turn is appended to history after classification.
func (s *Service) ClassifySession(ctx context.Context, sessionID, text string) []record.Record {
	return s.classify(ctx, sessionID, text)
}

func (s *Service) classify(ctx context.Context, sessionID, text string) (out []record.Record) {
	now := s.now()
	started := time.Now()
	path := PathDeterministic

	ctx, span := s.tracer.Start(ctx, "classifier.Classify",
		trace.WithAttributes(attribute.Int("text.length", len(text))))
	defer span.End()

	ctx = logging.WithSessionID(ctx, sessionID)
	log := s.log

	defer func() {
		if r := recover(); r != nil {
			log.Error(ctx, "classification panicked, returning default record",
				zap.Any("panic", r), zap.Stack("stack"))
			span.SetStatus(codes.Error, fmt.Sprint(r))
			path = PathRecovered
			out = []record.Record{record.Default(text, now)}
		}
		span.SetAttributes(attribute.String("path", path), attribute.Int("records", len(out)))
		s.metrics.RecordClassification(ctx, path, typeNames(out), time.Since(started))
		s.finish(ctx, sessionID, text, path, out)
	}()

	types := s.types.DetectTypes(text)
	isComplex := s.complexity.IsComplex(text)
	log.Trace(ctx, "routed message",
		zap.Strings("types", typeNamesOf(types)),
		zap.Bool("complex", isComplex),
	)

	var records []record.Record
	if s.cfg.GenerativeEnabled && s.adapter != nil && isComplex {
		res := s.adapter.Generate(ctx, text, types, now, s.promptHistory(ctx, sessionID))
		records, path = res.Records, string(res.Path)
		if res.Err != nil {
			span.RecordError(res.Err)
		}
	} else {
		records = s.extractor.ExtractAll(text, types, now)
	}

	if ex, kind := s.store.Lookup(text); kind != exemplar.MatchNone {
		log.Debug(ctx, "applying exemplar overrides",
			zap.String("exemplar_id", ex.ID.String()),
			zap.String("match", kind),
		)
		records = s.validator.MergeAll(records, ex, text, now)
	}

	records = s.validator.ValidateAll(records, text, now)
	if len(records) == 0 {
		records = []record.Record{record.Default(text, now)}
	}

	log.Info(ctx, "classified message",
		zap.String("path", path),
		zap.Strings("types", typeNames(records)),
		zap.Duration("duration", time.Since(started)),
	)
	return records
}

// promptHistory formats recent turns for the prompt. Failures only cost context.
func (s *Service) promptHistory(ctx context.Context, sessionID string) string {
	if s.history == nil || sessionID == "" || s.contextTurns <= 0 {
		return ""
	}
	turns, err := s.history.Recent(ctx, sessionID, s.contextTurns)
	if err != nil {
		s.log.Warn(ctx, "failed to load conversation history", zap.Error(err))
		return ""
	}
	return history.FormatContext(turns)
}

// finish appends the turn to history and publishes the classified event.
func (s *Service) finish(ctx context.Context, sessionID, text, path string, records []record.Record) {
	if s.history != nil && sessionID != "" {
		if err := s.history.Append(context.WithoutCancel(ctx), sessionID, text, records); err != nil {
			s.log.Warn(ctx, "failed to append conversation turn", zap.Error(err))
		}
	}
	if err := s.publisher.Publish(ctx, events.Event{
		Kind:      events.KindClassified,
		SessionID: sessionID,
		Text:      text,
		Records:   records,
		Path:      path,
	}); err != nil {
		s.log.Warn(ctx, "failed to publish classified event", zap.Error(err))
	}
}

// Learn applies feedback to prior and stores the correction as an exemplar.
// A panic returns prior unchanged, or a default record when prior is empty.
func (s *Service) Learn(ctx context.Context, text string, prior []record.Record, fb string) (out []record.Record) {
	ctx, span := s.tracer.Start(ctx, "classifier.Learn")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error(ctx, "learning panicked, returning prior output",
				zap.Any("panic", r), zap.Stack("stack"))
			span.SetStatus(codes.Error, fmt.Sprint(r))
			out = record.CloneAll(prior)
			if len(out) == 0 {
				out = []record.Record{record.Default(text, s.now())}
			}
		}
	}()

	directives := feedback.Parse(fb)
	span.SetAttributes(attribute.String("directives", directives.String()))

	out = s.learner.Learn(ctx, text, prior, fb)
	s.metrics.RecordLearned(ctx, strings.Join(directives.Names(), ","))
	return out
}

// Exemplars exposes the store for stats and maintenance commands.
func (s *Service) Exemplars() *exemplar.Store {
	return s.store
}

func typeNamesOf(ts []record.Type) []string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = string(t)
	}
	return names
}

func typeNames(rs []record.Record) []string {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = string(r.Type)
	}
	return names
}

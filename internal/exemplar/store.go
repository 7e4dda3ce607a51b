package exemplar

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const filePerm = 0o600

// Store is the append-only exemplar collection.
type Store struct {
	path      string
	retention RetentionPolicy
	logger    *zap.Logger
	now       func() time.Time

	// writeMu serializes appends and reloads; mu guards entries and lastHash.
	writeMu  sync.Mutex
	mu       sync.RWMutex
	entries  []Exemplar
	lastHash [sha256.Size]byte
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the clock used for timestamps and retention.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open loads the store at cfg.Path. A missing or unreadable file starts an
// empty store; a file that does not parse is moved aside to <path>.corrupt.
// Open only fails on an invalid retention policy.
func Open(cfg Config, opts ...Option) (*Store, error) {
	if err := cfg.Retention.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retention policy: %w", err)
	}
	s := &Store{
		path:      cfg.Path,
		retention: cfg.Retention,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.path != "" {
		s.load()
	}
	EntriesTotal.Set(float64(s.Len()))
	return s, nil
}

// Path returns the backing file, or "" for an in-memory store.
func (s *Store) Path() string { return s.path }

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("exemplar file not found, starting empty", zap.String("path", s.path))
		return
	}
	if err != nil {
		s.logger.Warn("exemplar file unreadable, starting empty",
			zap.String("path", s.path), zap.Error(err))
		return
	}

	entries, err := decode(data)
	if err != nil {
		s.logger.Warn("exemplar file corrupt, starting empty",
			zap.String("path", s.path), zap.Error(err))
		if rerr := os.Rename(s.path, s.path+".corrupt"); rerr != nil {
			s.logger.Warn("failed to move corrupt exemplar file aside", zap.Error(rerr))
		}
		return
	}

	kept, evicted := s.retention.apply(entries, s.now())
	if evicted > 0 {
		EvictionsTotal.Add(float64(evicted))
	}
	s.mu.Lock()
	s.entries = kept
	s.lastHash = sha256.Sum256(data)
	s.mu.Unlock()

	s.logger.Info("exemplars loaded",
		zap.String("path", s.path),
		zap.Int("count", len(kept)),
		zap.Int("evicted", evicted))
}

func decode(data []byte) ([]Exemplar, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var entries []Exemplar
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID == uuid.Nil {
			entries[i].ID = uuid.New()
		}
	}
	return entries, nil
}

// Append adds ex to the store and persists the collection. ID and Timestamp
// are filled when zero. On a write failure the entry stays in memory and the
// returned error wraps ErrStoreIO.
func (s *Store) Append(ctx context.Context, ex Exemplar) (Exemplar, error) {
	if err := ctx.Err(); err != nil {
		return Exemplar{}, err
	}
	ex = ex.Clone()
	if ex.ID == uuid.Nil {
		ex.ID = uuid.New()
	}
	if ex.Timestamp.IsZero() {
		ex.Timestamp = s.now()
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	kept, evicted := s.retention.apply(append(s.entries, ex), s.now())
	s.entries = kept
	snapshot := cloneAll(kept)
	s.mu.Unlock()

	if evicted > 0 {
		EvictionsTotal.Add(float64(evicted))
	}
	EntriesTotal.Set(float64(len(snapshot)))

	if err := s.persist(snapshot); err != nil {
		PersistTotal.WithLabelValues("error").Inc()
		return ex, err
	}
	PersistTotal.WithLabelValues("success").Inc()
	return ex, nil
}

// Prune applies the retention policy without appending and persists the
// result. It returns the number of evicted exemplars.
func (s *Store) Prune(ctx context.Context, policy RetentionPolicy) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := policy.Validate(); err != nil {
		return 0, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	kept, evicted := policy.apply(s.entries, s.now())
	s.entries = kept
	snapshot := cloneAll(kept)
	s.mu.Unlock()

	EntriesTotal.Set(float64(len(snapshot)))
	if evicted == 0 {
		return 0, nil
	}
	EvictionsTotal.Add(float64(evicted))
	return evicted, s.persist(snapshot)
}

// persist writes entries atomically: temp file in the same directory, then
// rename over the target. Callers hold writeMu.
func (s *Store) persist(entries []Exemplar) error {
	if s.path == "" {
		return nil
	}
	if entries == nil {
		entries = []Exemplar{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrStoreIO, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: create dir: %w", ErrStoreIO, err)
	}
	tmp, err := os.CreateTemp(dir, ".exemplars-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp: %w", ErrStoreIO, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: write: %w", ErrStoreIO, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: sync: %w", ErrStoreIO, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("%w: close: %w", ErrStoreIO, err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		cleanup()
		return fmt.Errorf("%w: chmod: %w", ErrStoreIO, err)
	}

	s.mu.Lock()
	s.lastHash = sha256.Sum256(data)
	s.mu.Unlock()

	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("%w: rename: %w", ErrStoreIO, err)
	}
	return nil
}

// All returns a copy of every exemplar, oldest first.
func (s *Store) All() []Exemplar {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.entries)
}

// Len returns the number of exemplars.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func cloneAll(in []Exemplar) []Exemplar {
	out := make([]Exemplar, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}

package exemplar

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrWatchUnsupported is returned by Watch for in-memory stores.
var ErrWatchUnsupported = errors.New("watch requires a file-backed store")

// Watch reloads the store when another process rewrites its file. The parent
// directory is watched because atomic writers replace the file by rename.
// Writes made by this store are recognized by content hash and skipped.
// Watch blocks until ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return ErrWatchUnsupported
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating exemplar dir: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	target := filepath.Clean(s.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			s.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("exemplar watcher error", zap.Error(err))
		}
	}
}

// reload replaces the in-memory entries with the file content when it
// differs from what this store last wrote or read.
func (s *Store) reload() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	sum := sha256.Sum256(data)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	same := sum == s.lastHash
	s.mu.RUnlock()
	if same {
		return
	}

	entries, err := decode(data)
	if err != nil {
		s.logger.Warn("ignoring unparseable exemplar file change", zap.String("path", s.path), zap.Error(err))
		return
	}
	kept, evicted := s.retention.apply(entries, s.now())
	if evicted > 0 {
		EvictionsTotal.Add(float64(evicted))
	}

	s.mu.Lock()
	s.entries = kept
	s.lastHash = sum
	s.mu.Unlock()

	EntriesTotal.Set(float64(len(kept)))
	s.logger.Info("exemplars reloaded", zap.String("path", s.path), zap.Int("count", len(kept)))
}

package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/fyrsmithlabs/voicaj/internal/record"
)

//go:embed schema.sql
var schema string

// ErrEmptySession is returned when an operation is given a blank session id.
var ErrEmptySession = errors.New("session id is empty")

// DefaultListLimit bounds Recent when the caller passes no limit.
const DefaultListLimit = 50

// Config configures the history store.
type Config struct {
	Path         string `koanf:"path"`
	ContextTurns int    `koanf:"context_turns"`
	ListLimit    int    `koanf:"list_limit"`
}

// Turn is one user message and the records returned for it.
type Turn struct {
	ID          int64           `json:"id"`
	SessionID   string          `json:"session_id"`
	UserMessage string          `json:"user"`
	Records     []record.Record `json:"records"`
	CreatedAt   time.Time       `json:"timestamp"`
}

// Store is a SQLite-backed conversation log.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
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

// WithClock overrides the clock used to stamp turns.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open creates or opens the database at path and applies the schema.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("open history: path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("open history: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("open history: busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("open history: apply schema: %w", err)
	}

	s := &Store{db: db, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping history: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append stores one turn for sessionID.
func (s *Store) Append(ctx context.Context, sessionID, userMessage string, records []record.Record) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrEmptySession
	}
	if records == nil {
		records = []record.Record{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("append turn: marshal records: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversations (session_id, user_message, ai_response, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, userMessage, string(payload), s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append turn: insert: %w", err)
	}
	return nil
}

// Recent returns up to limit of the newest turns for sessionID, oldest first.
func (s *Store) Recent(ctx context.Context, sessionID string, limit int) ([]Turn, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrEmptySession
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, user_message, ai_response, created_at FROM conversations
		 WHERE session_id = ? ORDER BY id DESC LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent turns: query: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var (
			t        Turn
			response string
			created  string
		)
		if err := rows.Scan(&t.ID, &t.SessionID, &t.UserMessage, &response, &created); err != nil {
			return nil, fmt.Errorf("recent turns: scan: %w", err)
		}
		if err := json.Unmarshal([]byte(response), &t.Records); err != nil {
			s.logger.Warn("skipping unreadable history row", zap.Int64("id", t.ID), zap.Error(err))
			continue
		}
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			t.CreatedAt = ts
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent turns: iterate: %w", err)
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// Clear deletes every turn of sessionID and reports how many were removed.
func (s *Store) Clear(ctx context.Context, sessionID string) (int64, error) {
	if strings.TrimSpace(sessionID) == "" {
		return 0, ErrEmptySession
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("clear session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear session: rows affected: %w", err)
	}
	return n, nil
}

// FormatContext renders turns as prompt context, one User/Assistant pair per
// turn in the given order.
func FormatContext(turns []Turn) string {
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "User: %s\nAssistant: %s", t.UserMessage, summarize(t.Records))
	}
	return b.String()
}

func summarize(records []record.Record) string {
	parts := make([]string, 0, len(records))
	for _, r := range records {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Type, r.Title))
	}
	return strings.Join(parts, "; ")
}

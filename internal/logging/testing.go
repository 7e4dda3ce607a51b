package logging

import (
	"reflect"
	"regexp"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var leakedCredential = regexp.MustCompile(`(?i)(bearer\s+\S+|api[_-]?key\s*[=:]\s*\S+)`)

// TestLogger records every entry, down to TraceLevel, for assertions.
type TestLogger struct {
	*Logger
	logs *observer.ObservedLogs
}

// NewTestLogger returns a Logger backed by an in-memory observer.
func NewTestLogger() *TestLogger {
	core, logs := observer.New(TraceLevel)
	return &TestLogger{Logger: Wrap(zap.New(core)), logs: logs}
}

// Entries returns everything logged so far.
func (t *TestLogger) Entries() []observer.LoggedEntry {
	return t.logs.All()
}

// FilterMessage returns entries whose message equals msg.
func (t *TestLogger) FilterMessage(msg string) *observer.ObservedLogs {
	return t.logs.FilterMessage(msg)
}

// Reset drops recorded entries.
func (t *TestLogger) Reset() {
	t.logs.TakeAll()
}

func (t *TestLogger) find(level zapcore.Level, substr string) (observer.LoggedEntry, bool) {
	for _, e := range t.logs.All() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return e, true
		}
	}
	return observer.LoggedEntry{}, false
}

// AssertLogged fails tb unless an entry at level contains substr.
func (t *TestLogger) AssertLogged(tb testing.TB, level zapcore.Level, substr string) {
	tb.Helper()
	if _, ok := t.find(level, substr); !ok {
		tb.Errorf("no %v entry containing %q in %d entries", level, substr, t.logs.Len())
	}
}

// AssertNotLogged fails tb if an entry at level contains substr.
func (t *TestLogger) AssertNotLogged(tb testing.TB, level zapcore.Level, substr string) {
	tb.Helper()
	if e, ok := t.find(level, substr); ok {
		tb.Errorf("unexpected %v entry %q", level, e.Message)
	}
}

// AssertField fails tb unless an entry with message msg carries key=want.
func (t *TestLogger) AssertField(tb testing.TB, msg, key string, want any) {
	tb.Helper()
	for _, e := range t.logs.FilterMessage(msg).All() {
		got, ok := e.ContextMap()[key]
		if ok && reflect.DeepEqual(got, want) {
			return
		}
	}
	tb.Errorf("no %q entry with %s=%v", msg, key, want)
}

// AssertNoSecrets fails tb if a sensitive key was logged with a plain string
// value, or a bearer token or api key appears in any message or string field.
func (t *TestLogger) AssertNoSecrets(tb testing.TB) {
	tb.Helper()
	sensitive := make(map[string]bool)
	for _, k := range NewDefaultConfig().Redaction.Keys {
		sensitive[strings.ToLower(k)] = true
	}
	for _, e := range t.logs.All() {
		if leakedCredential.MatchString(e.Message) {
			tb.Errorf("credential in message %q", e.Message)
		}
		for _, f := range e.Context {
			if f.Type != zapcore.StringType {
				continue
			}
			if sensitive[strings.ToLower(f.Key)] && f.String != "" && f.String != redacted {
				tb.Errorf("sensitive field %q logged in clear", f.Key)
			}
			if leakedCredential.MatchString(f.String) {
				tb.Errorf("credential in field %q", f.Key)
			}
		}
	}
}

// AssertCorrelated fails tb unless an entry with message msg carries
// trace_id.
func (t *TestLogger) AssertCorrelated(tb testing.TB, msg string) {
	tb.Helper()
	for _, e := range t.logs.FilterMessage(msg).All() {
		if _, ok := e.ContextMap()["trace_id"]; ok {
			return
		}
	}
	tb.Errorf("no %q entry with trace_id", msg)
}

package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// TraceLevel sits below Debug. The classifier logs its routing decision at
// this level; production configs filter it.
const TraceLevel = zapcore.Level(-2)

const traceName = "trace"

// ParseLevel parses a level name case-insensitively, accepting "trace" in
// addition to the zap names.
func ParseLevel(name string) (zapcore.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == traceName {
		return TraceLevel, nil
	}
	l, err := zapcore.ParseLevel(name)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return l, nil
}

// encodeLevel writes "trace" for TraceLevel and zap's lowercase names
// otherwise.
func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == TraceLevel {
		enc.AppendString(traceName)
		return
	}
	zapcore.LowercaseLevelEncoder(l, enc)
}

package logging

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	sessionKey ctxKey = iota
	requestKey
)

// maxIDLen bounds client-supplied ids. UUIDs and echo request ids fit.
const maxIDLen = 128

// ContextFields returns the trace, session and request ids carried by ctx,
// in that order, for a transport's per-request log line.
func ContextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
		if sc.IsSampled() {
			fields = append(fields, zap.Bool("trace_sampled", true))
		}
	}
	if id := SessionIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("session.id", id))
	}
	if id := RequestIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("request.id", id))
	}
	return fields
}

// ValidateID checks a client-supplied session or request id: 1 to 128 ASCII
// letters, digits, or any of "-_.:". name is used in the error.
func ValidateID(id, name string) error {
	switch {
	case id == "":
		return fmt.Errorf("%s cannot be empty", name)
	case len(id) > maxIDLen:
		return fmt.Errorf("%s exceeds max length %d", name, maxIDLen)
	}
	for i := 0; i < len(id); i++ {
		if !idByte(id[i]) {
			return fmt.Errorf("%s contains invalid characters at offset %d (allowed: letters, digits, - _ . :)", name, i)
		}
	}
	return nil
}

func idByte(b byte) bool {
	switch {
	case 'a' <= b && b <= 'z', 'A' <= b && b <= 'Z', '0' <= b && b <= '9':
		return true
	}
	return b == '-' || b == '_' || b == '.' || b == ':'
}

// WithSessionID attaches sessionID for ContextFields. Invalid ids are
// dropped so they never reach a log line.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return withID(ctx, sessionKey, sessionID)
}

// WithRequestID attaches requestID for ContextFields. Invalid ids are dropped.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withID(ctx, requestKey, requestID)
}

func SessionIDFromContext(ctx context.Context) string { return idFrom(ctx, sessionKey) }
func RequestIDFromContext(ctx context.Context) string { return idFrom(ctx, requestKey) }

func withID(ctx context.Context, key ctxKey, id string) context.Context {
	if ValidateID(id, "id") != nil {
		return ctx
	}
	return context.WithValue(ctx, key, id)
}

func idFrom(ctx context.Context, key ctxKey) string {
	id, _ := ctx.Value(key).(string)
	return id
}

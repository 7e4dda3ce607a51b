package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/voicaj/internal/secrets"
)

const redacted = "[REDACTED]"

// SecretValue is a credential that can report its raw value. config.Secret
// implements it.
type SecretValue interface {
	Value() string
	IsSet() bool
}

// secretMarshaler logs a secret as its length only.
type secretMarshaler struct {
	val SecretValue
}

func (s secretMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddBool("set", s.val.IsSet())
	enc.AddInt("length", len(s.val.Value()))
	return nil
}

// Secret logs whether val is set and its length, never its value.
func Secret(key string, val SecretValue) zap.Field {
	return zap.Object(key, secretMarshaler{val: val})
}

// RedactingEncoder hides configured keys and, with a scrubber, secrets
// embedded in string values and messages.
type RedactingEncoder struct {
	zapcore.Encoder
	keys     map[string]bool
	scrubber secrets.Scrubber
}

// NewRedactingEncoder wraps base. A nil scrubber skips value scrubbing.
func NewRedactingEncoder(base zapcore.Encoder, cfg RedactionConfig, scrubber secrets.Scrubber) *RedactingEncoder {
	if !cfg.Enabled {
		return &RedactingEncoder{Encoder: base}
	}
	keys := make(map[string]bool, len(cfg.Keys))
	for _, k := range cfg.Keys {
		keys[strings.ToLower(k)] = true
	}
	return &RedactingEncoder{Encoder: base, keys: keys, scrubber: scrubber}
}

func (e *RedactingEncoder) hidden(key string) bool {
	return e.keys[strings.ToLower(key)]
}

func (e *RedactingEncoder) scrub(s string) string {
	if e.scrubber == nil {
		return s
	}
	return e.scrubber.Scrub(s).Scrubbed
}

func (e *RedactingEncoder) AddString(key, val string) {
	if e.hidden(key) {
		e.Encoder.AddString(key, redacted)
		return
	}
	e.Encoder.AddString(key, e.scrub(val))
}

func (e *RedactingEncoder) AddByteString(key string, val []byte) {
	if e.hidden(key) {
		e.Encoder.AddString(key, redacted)
		return
	}
	e.Encoder.AddString(key, e.scrub(string(val)))
}

func (e *RedactingEncoder) AddBinary(key string, val []byte) {
	if e.hidden(key) {
		e.Encoder.AddString(key, redacted)
		return
	}
	e.Encoder.AddBinary(key, val)
}

// AddReflected hides the whole value of a hidden key. Reflected values are
// not scrubbed.
func (e *RedactingEncoder) AddReflected(key string, val any) error {
	if e.hidden(key) {
		e.Encoder.AddString(key, redacted)
		return nil
	}
	return e.Encoder.AddReflected(key, val)
}

func (e *RedactingEncoder) AddArray(key string, arr zapcore.ArrayMarshaler) error {
	if e.hidden(key) {
		e.Encoder.AddString(key, redacted)
		return nil
	}
	return e.Encoder.AddArray(key, arr)
}

func (e *RedactingEncoder) AddObject(key string, obj zapcore.ObjectMarshaler) error {
	if _, ok := obj.(secretMarshaler); ok {
		return e.Encoder.AddObject(key, obj)
	}
	if e.hidden(key) {
		e.Encoder.AddString(key, redacted)
		return nil
	}
	return e.Encoder.AddObject(key, obj)
}

func (e *RedactingEncoder) Clone() zapcore.Encoder {
	return &RedactingEncoder{
		Encoder:  e.Encoder.Clone(),
		keys:     e.keys,
		scrubber: e.scrubber,
	}
}

// EncodeEntry routes per-entry fields through the redacting Add methods.
// The embedded encoder would otherwise add them to its own clone.
func (e *RedactingEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	clone := e.Clone().(*RedactingEncoder)
	for _, f := range fields {
		f.AddTo(clone)
	}
	ent.Message = clone.scrub(ent.Message)
	buf, err := clone.Encoder.EncodeEntry(ent, nil)
	if err != nil {
		return nil, fmt.Errorf("encoding entry: %w", err)
	}
	return buf, nil
}

package exemplar

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fyrsmithlabs/voicaj/internal/record"
)

// ErrStoreIO marks persistence failures. The in-memory store keeps working.
var ErrStoreIO = errors.New("exemplar store io")

// Exemplar is a confirmed input with the records it should produce and the
// correction that produced them.
type Exemplar struct {
	ID        uuid.UUID       `json:"id" yaml:"id"`
	Input     string          `json:"input" yaml:"input"`
	Expected  []record.Record `json:"expected" yaml:"expected"`
	Feedback  string          `json:"feedback" yaml:"feedback"`
	Timestamp time.Time       `json:"timestamp" yaml:"timestamp"`
}

// Clone deep-copies e.
func (e Exemplar) Clone() Exemplar {
	out := e
	out.Expected = record.CloneAll(e.Expected)
	return out
}

// RecordOf returns the expected record of type t, if any.
func (e Exemplar) RecordOf(t record.Type) (record.Record, bool) {
	for _, r := range e.Expected {
		if r.Type == t {
			return r.Clone(), true
		}
	}
	return record.Record{}, false
}

// RetentionPolicy bounds the store. Zero values disable each limit.
type RetentionPolicy struct {
	// MaxEntries keeps only the newest N exemplars.
	MaxEntries int `koanf:"max_entries"`
	// MaxAge drops exemplars older than this.
	MaxAge time.Duration `koanf:"max_age"`
	// DedupeInputs keeps only the newest exemplar per normalized input.
	DedupeInputs bool `koanf:"dedupe_inputs"`
}

// Validate checks the policy for negative limits.
func (p RetentionPolicy) Validate() error {
	if p.MaxEntries < 0 {
		return fmt.Errorf("max_entries must be >= 0, got %d", p.MaxEntries)
	}
	if p.MaxAge < 0 {
		return fmt.Errorf("max_age must be >= 0, got %s", p.MaxAge)
	}
	return nil
}

// Config configures a Store.
type Config struct {
	// Path of the JSON document. Empty keeps the store in memory only.
	Path      string          `koanf:"path"`
	Watch     bool            `koanf:"watch"`
	Retention RetentionPolicy `koanf:"retention"`
}

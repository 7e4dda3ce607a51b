// Package history keeps per-session conversation turns in SQLite so that
// follow-up messages can be classified with their context.
package history

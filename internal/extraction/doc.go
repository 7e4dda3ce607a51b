// Package extraction derives record fields from message text with ordered
// keyword rules and no external calls.
//
// Every cascade (title, description, tags, priority, due date) is an ordered
// table evaluated top to bottom where the first matching rule wins. Extract
// is total: it always returns a record.
package extraction

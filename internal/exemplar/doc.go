// Package exemplar stores confirmed input to output examples and finds the
// stored example closest to a new message.
//
// The store is append-only. Similarity lookups take a read lock and run
// concurrently; appends are serialized by a single writer and persist the
// whole collection as a JSON array with an atomic rename. A retention policy,
// unbounded by default, is the only way entries leave the store.
package exemplar

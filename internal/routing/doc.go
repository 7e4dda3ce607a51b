// Package routing decides which record types a message describes and whether
// the message is simple enough for the deterministic extraction path.
//
// Both routers are ordered rule tables: the first matching rule wins, so the
// order of entries is part of the behavior and is covered by tests.
package routing

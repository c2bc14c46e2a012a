// Package store defines the persistence contract for the booking service's
// collections.
//
// The access discipline is deliberately simple: each collection (users,
// trains) is loaded in full at startup and rewritten in full on every
// mutation. There is exactly one in-process writer, so there is no partial
// write and no locking. A production hardening with concurrent sessions would
// need a single-writer queue or optimistic versioning in front of this
// contract.
package store

import "context"

// Store persists one named collection of entities.
//
// Load returns the whole collection in stored order; if nothing has been
// persisted yet it creates an empty collection and returns an empty slice,
// not an error. Save replaces the entire persisted collection; from the
// caller's perspective the replace is atomic — a failed Save leaves the
// previous snapshot intact, never a partial one.
//
// PROGRAMMING TO AN INTERFACE:
// The core only sees this interface, never a concrete backend. The JSON flat
// file backend (store/jsonfile) and the SQLite backend (store/sqlitestore)
// are interchangeable — the composition root picks one.
type Store[T any] interface {
	Load(ctx context.Context) ([]T, error)
	Save(ctx context.Context, items []T) error
}

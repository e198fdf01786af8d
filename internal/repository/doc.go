// Package repository defines the storage contract shared by the two travelog
// backends.
//
// The contract is one Store bundling five entity repositories. Two adapters
// implement it: internal/local (embedded SQLite with snapshot persistence)
// and internal/remote (SurrealDB over the network). Callers receive a Store
// at composition time and never look the backend up globally, so switching
// between offline and online operation is a wiring change only.
//
// # Conventions
//
// Every operation takes a context and returns explicit errors. Reads that
// find nothing return (nil, nil) rather than an error, so callers can
// distinguish "no data" from "operation failed". Searches return a
// SearchResult carrying one page of items and the total match count ignoring
// pagination. Mutations scoped by an owner ID silently affect zero rows when
// the caller does not own the target.
package repository

// Package local implements the repository contract on an embedded SQLite
// engine (modernc.org/sqlite, pure Go).
//
// The engine lives entirely in process memory on a single connection. After
// every mutation the store schedules a debounced snapshot: the whole database
// image is serialized with VACUUM INTO, text-encoded, and written to one
// fixed slot in client-local durable storage. On startup a prior snapshot is
// restored if present; otherwise the schema manager initializes fresh tables
// and an immediate snapshot is taken. A failed snapshot save is logged and
// never surfaced to the mutating caller; the in-memory engine stays
// authoritative for the session.
//
// The engine handle is explicit: Open returns a *Store which is injected
// into callers, and every operation fails with repository.ErrNotInitialized
// once the store is closed.
package local

// Package model defines the entities persisted by the travelog storage
// backends, the filter and pagination types accepted by repository searches,
// and the partial-update parameter types.
//
// All types are backend-neutral: the local (embedded SQLite) and remote
// (SurrealDB) adapters both read and produce these structs, so a caller can
// switch backends without touching any code that consumes them.
package model

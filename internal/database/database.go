// Package database provides the SurrealDB abstraction used by the remote
// storage adapter.
//
// The Database interface exposes three query methods:
//   - Query: returns multiple results (SELECT queries returning lists)
//   - QueryOne: returns a single result (SELECT by id, counts)
//   - Execute: no return value (CREATE/UPDATE/DELETE mutations)
//
// Standard errors are defined for common failure cases and checked with
// errors.Is:
//
//	if errors.Is(err, database.ErrNotFound) {
//	    // handle missing record
//	}
//
// Multi-statement strings passed to Query run as one round trip, which is
// how the remote adapter applies its few multi-table writes atomically
// (wrapped in BEGIN TRANSACTION / COMMIT TRANSACTION).
package database

import (
	"context"
	"errors"
)

// Standard errors for database operations.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a unique constraint violation.
	ErrDuplicate = errors.New("duplicate record")

	// ErrConnection indicates a failure to connect to or communicate with
	// the database.
	ErrConnection = errors.New("database connection error")

	// ErrQuery indicates a query execution failure.
	ErrQuery = errors.New("query error")
)

// Database defines the interface for remote database operations.
type Database interface {
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Query executes a query and returns the per-statement results.
	Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)

	// QueryOne executes a query and returns a single result, or
	// ErrNotFound when the statement matched nothing.
	QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)

	// Execute runs a query without returning results.
	Execute(ctx context.Context, query string, vars map[string]interface{}) error
}

// Config holds database connection settings.
type Config struct {
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string
}

// Package metadata is a small key/value store on top of the local SQLite
// database. The client keeps its persisted credential here.
package metadata

import (
	"context"
	"database/sql"
	"time"
)

// Entry is a stored value and the time it was last written.
type Entry struct {
	Value     string
	UpdatedAt time.Time
}

type Repository interface {
	// Get reports ok=false when key is absent.
	Get(ctx context.Context, key string) (e Entry, ok bool, err error)
	Put(ctx context.Context, key, value string) error
	// Delete is a no-op for absent keys.
	Delete(ctx context.Context, key string) error
}

// DBTX is the subset of database/sql used by the repository; both *sql.DB
// and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

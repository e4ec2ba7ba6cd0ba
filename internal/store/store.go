// Package store provides leaderboard persistence.
package store

import (
	"context"
	"strings"

	"github.com/arcpointlabs/salescoach/internal/domain"
)

// Repository is the append-only leaderboard store shared by all
// trainees. No update or delete operations exist.
type Repository interface {
	// SaveScore inserts one entry. Idempotent per session: a second
	// insert for the same session id is silently ignored.
	SaveScore(ctx context.Context, entry *domain.Entry) error

	// TopScores lists the top n entries by score descending, ties
	// broken by earliest insert.
	TopScores(ctx context.Context, n int) ([]domain.Entry, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

// isSQLiteConflictError reports SQLITE_BUSY / "database is locked"
// concurrency errors that warrant a retry.
func isSQLiteConflictError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

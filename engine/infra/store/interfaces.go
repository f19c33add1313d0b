package store

import (
	"context"

	"github.com/compozy/dbprobe/engine/user"
)

// Store defines the transactional boundary for data access. Implementations
// manage begin/commit/rollback internally and expose repository access through
// the repository handed to the transactional closure.
type Store interface {
	// Driver names the backing driver ("postgres" or "sqlite").
	Driver() string

	// Repository returns a repository for statements outside a transaction.
	Repository() user.Repository

	// WithTransaction executes fn within a single transaction. If fn returns
	// an error or panics, the transaction is rolled back; otherwise it is
	// committed.
	WithTransaction(ctx context.Context, fn func(user.Repository) error) error

	// HealthCheck pings the connection.
	HealthCheck(ctx context.Context) error

	// Close releases the connection. Calling it twice is safe.
	Close(ctx context.Context) error
}

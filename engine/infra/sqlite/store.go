package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/compozy/dbprobe/engine/user"
	"github.com/compozy/dbprobe/pkg/logger"
)

const (
	// DriverName labels this driver in logs and diagnostics.
	DriverName = "sqlite"

	memoryPath         = ":memory:"
	defaultBusyTimeout = 5 * time.Second
)

// Store wraps a *sql.DB limited to one open connection, so the same
// connection serves every statement and an in-memory database survives for
// the life of the store.
type Store struct {
	db            *sql.DB
	path          string
	schema        user.Schema
	pingBeforeUse bool
	closeOnce     sync.Once
	closeErr      error
}

// NewStore opens the database and pings it once.
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("sqlite: config is required")
	}
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = memoryPath
	}
	db, err := sql.Open("sqlite", buildDSN(path, cfg.BusyTimeout))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	logger.FromContext(ctx).With(
		"store_driver", DriverName,
		"path", path,
		"ping_before_use", cfg.PingBeforeUse,
	).Debug("Store initialized")
	return &Store{
		db:            db,
		path:          path,
		schema:        cfg.Schema.WithDefaults(),
		pingBeforeUse: cfg.PingBeforeUse,
	}, nil
}

// buildDSN renders a modernc DSN with the connection pragmas applied.
func buildDSN(path string, busyTimeout time.Duration) string {
	if busyTimeout <= 0 {
		busyTimeout = defaultBusyTimeout
	}
	pragmas := []string{
		"_pragma=foreign_keys(ON)",
		fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeout.Milliseconds()),
	}
	target := path
	if path != memoryPath && !strings.HasPrefix(path, "file:") {
		target = "file:" + path
	} else if path == memoryPath {
		target = "file::memory:"
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + strings.Join(pragmas, "&")
}

// DB exposes the underlying handle for driver-local usage.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the resolved database path.
func (s *Store) Path() string { return s.path }

// Driver returns DriverName.
func (s *Store) Driver() string { return DriverName }

// Close releases the database handle. Safe to call more than once.
func (s *Store) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.closeErr = s.db.Close()
		logger.FromContext(ctx).Debug("SQLite store closed")
	})
	return s.closeErr
}

// HealthCheck verifies the connection is alive.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: health check failed: %w", err)
	}
	return nil
}

// Repository returns a repository running outside any transaction.
func (s *Store) Repository() user.Repository {
	repo := NewRepository(s.db, s.schema)
	if s.pingBeforeUse {
		repo.beforeUse = s.HealthCheck
	}
	return repo
}

// WithTransaction runs fn inside one transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(user.Repository) error) error {
	if s.pingBeforeUse {
		if err := s.HealthCheck(ctx); err != nil {
			return err
		}
	}
	return WithTx(ctx, s.db, s.schema, fn)
}

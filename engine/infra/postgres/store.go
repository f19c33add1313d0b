package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/compozy/dbprobe/engine/user"
	"github.com/compozy/dbprobe/pkg/logger"
)

// DriverName labels this driver in logs and diagnostics.
const DriverName = "postgres"

// Store is the PostgreSQL driver backed by a single-connection pgxpool.Pool.
type Store struct {
	pool               *pgxpool.Pool
	schema             user.Schema
	healthCheckTimeout time.Duration
}

// NewStore opens the pool and pings it once. The pool is closed again when
// the ping fails.
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("postgres: config is required")
	}
	poolCfg, err := buildPoolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: new pool: %w", err)
	}
	if err := verifyPoolConnection(ctx, pool, cfg.PingTimeout); err != nil {
		return nil, err
	}
	logStoreInitialization(ctx, poolCfg)
	return &Store{
		pool:               pool,
		schema:             cfg.Schema.WithDefaults(),
		healthCheckTimeout: cfg.HealthCheckTimeout,
	}, nil
}

// buildPoolConfig parses the DSN and pins the pool to one connection.
func buildPoolConfig(cfg *Config) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	poolCfg.MaxConns = 1
	poolCfg.MinConns = 0
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	if cfg.PingBeforeUse {
		poolCfg.BeforeAcquire = pingBeforeAcquire
	}
	return poolCfg, nil
}

// pingBeforeAcquire discards connections that fail a ping.
func pingBeforeAcquire(ctx context.Context, conn *pgx.Conn) bool {
	if err := conn.Ping(ctx); err != nil {
		logger.FromContext(ctx).Warn("Discarding dead postgres connection", "error", err)
		return false
	}
	return true
}

// verifyPoolConnection pings the pool and closes it on failure.
func verifyPoolConnection(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	pingCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}

func logStoreInitialization(ctx context.Context, poolCfg *pgxpool.Config) {
	cc := poolCfg.ConnConfig
	logger.FromContext(ctx).With(
		"store_driver", DriverName,
		"host", cc.Host,
		"port", cc.Port,
		"db_name", cc.Database,
		"tls", cc.TLSConfig != nil,
		"max_conns", poolCfg.MaxConns,
		"ping_before_use", poolCfg.BeforeAcquire != nil,
	).Debug("Store initialized")
}

// Driver returns DriverName.
func (s *Store) Driver() string { return DriverName }

// Close shuts down the pool. Safe to call more than once.
func (s *Store) Close(ctx context.Context) error {
	s.pool.Close()
	logger.FromContext(ctx).Debug("Postgres store closed")
	return nil
}

// HealthCheck verifies the connection is alive.
func (s *Store) HealthCheck(ctx context.Context) error {
	hctx := ctx
	if s.healthCheckTimeout > 0 {
		var cancel context.CancelFunc
		hctx, cancel = context.WithTimeout(ctx, s.healthCheckTimeout)
		defer cancel()
	}
	if err := s.pool.Ping(hctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

// Repository returns a repository running outside any transaction.
func (s *Store) Repository() user.Repository {
	return NewRepository(s.pool, s.schema)
}

// WithTransaction runs fn inside one transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(user.Repository) error) error {
	return WithTx(ctx, s.pool, s.schema, fn)
}

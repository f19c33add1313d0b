package postgres

import (
	"time"

	"github.com/compozy/dbprobe/engine/user"
)

// Config holds PostgreSQL connection settings for the driver.
type Config struct {
	// ConnString is a pgx DSN (postgres://...), never a driver-marked URL.
	ConnString string
	// ConnectTimeout bounds dialing. Zero keeps the driver default.
	ConnectTimeout time.Duration
	// PingTimeout bounds the initial ping. Zero means no extra deadline.
	PingTimeout time.Duration
	// HealthCheckTimeout bounds HealthCheck. Zero means no extra deadline.
	HealthCheckTimeout time.Duration
	// PingBeforeUse verifies a connection each time it leaves the pool.
	PingBeforeUse bool
	// Schema names the user table and username column.
	Schema user.Schema
}

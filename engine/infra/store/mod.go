package store

import (
	"context"
	"fmt"
	"time"

	"github.com/compozy/dbprobe/engine/dburl"
	"github.com/compozy/dbprobe/engine/infra/postgres"
	"github.com/compozy/dbprobe/engine/infra/sqlite"
	"github.com/compozy/dbprobe/engine/user"
	"github.com/compozy/dbprobe/pkg/logger"
)

// Options carries the driver-independent connection settings.
type Options struct {
	// ConnectTimeout bounds dialing. Zero keeps the driver default.
	ConnectTimeout time.Duration
	// PingBeforeUse verifies the connection before it is used.
	PingBeforeUse bool
	Schema        user.Schema
}

// Open picks the driver for d and opens a single-connection store.
func Open(ctx context.Context, d *dburl.Descriptor, opts Options) (Store, error) {
	if d == nil {
		return nil, fmt.Errorf("store: descriptor is required")
	}
	log := logger.FromContext(ctx)
	switch {
	case d.Scheme.IsPostgres():
		dsn, err := d.DriverDSN()
		if err != nil {
			return nil, err
		}
		log.Debug("Opening postgres store",
			"host", d.Host,
			"port", d.Port,
			"dbname", d.Database,
			"user", d.Username,
			"has_password", d.Password != "",
			"ssl_mode", d.SSLMode())
		s, err := postgres.NewStore(ctx, &postgres.Config{
			ConnString:     dsn,
			ConnectTimeout: opts.ConnectTimeout,
			PingBeforeUse:  opts.PingBeforeUse,
			Schema:         opts.Schema,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case d.Scheme == dburl.SchemeSQLite:
		log.Debug("Opening sqlite store", "path", d.Path, "same_thread_check", !d.DisableSameThreadCheck)
		s, err := sqlite.NewStore(ctx, &sqlite.Config{
			Path:          d.Path,
			BusyTimeout:   opts.ConnectTimeout,
			PingBeforeUse: opts.PingBeforeUse,
			Schema:        opts.Schema,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, &dburl.UnsupportedSchemeError{Scheme: string(d.Scheme)}
	}
}

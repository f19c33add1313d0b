package verify

import (
	"context"
	"time"

	"github.com/compozy/dbprobe/engine/dburl"
	"github.com/compozy/dbprobe/engine/infra/store"
	"github.com/compozy/dbprobe/engine/user"
	"github.com/compozy/dbprobe/pkg/logger"
)

// Options configures a Connector.
type Options struct {
	// ConnectTimeout bounds dialing. Zero keeps the driver default.
	ConnectTimeout time.Duration
	// SkipPingBeforeUse turns off the liveness check run before each use.
	SkipPingBeforeUse bool
	Schema            user.Schema
}

type openFunc func(ctx context.Context, d *dburl.Descriptor, opts store.Options) (store.Store, error)

// Connector opens sessions against a normalized connection string.
type Connector struct {
	opts Options
	open openFunc
}

// NewConnector returns a Connector backed by the registered drivers.
func NewConnector(opts Options) *Connector {
	opts.Schema = opts.Schema.WithDefaults()
	return &Connector{opts: opts, open: store.Open}
}

// Open connects to res and verifies the connection with a ping. On failure
// the half-open connection is released and a *ConnectionError is returned.
func (c *Connector) Open(ctx context.Context, res *dburl.Result) (*Session, error) {
	log := logger.FromContext(ctx)
	if res == nil {
		return nil, newConnectionError("", errNilResult)
	}
	s := &Session{schema: c.opts.Schema, state: StateConnecting}
	desc, err := res.Descriptor()
	if err != nil {
		s.state = StateDisconnected
		return nil, newConnectionError(res.URL, err)
	}
	st, err := c.open(ctx, desc, store.Options{
		ConnectTimeout: c.opts.ConnectTimeout,
		PingBeforeUse:  !c.opts.SkipPingBeforeUse,
		Schema:         c.opts.Schema,
	})
	if err != nil {
		s.state = StateDisconnected
		log.Debug("Connection failed", "target", dburl.Redact(res.URL), "error", err)
		return nil, newConnectionError(res.URL, err)
	}
	if err := st.HealthCheck(ctx); err != nil {
		if cerr := st.Close(ctx); cerr != nil {
			log.Warn("Failed to release connection", "error", cerr)
		}
		s.state = StateDisconnected
		return nil, newConnectionError(res.URL, err)
	}
	s.store = st
	s.state = StateConnected
	log.Debug("Connected", "driver", st.Driver(), "target", dburl.Redact(res.URL))
	return s, nil
}

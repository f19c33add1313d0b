package sqlite

import (
	"time"

	"github.com/compozy/dbprobe/engine/user"
)

// Config captures SQLite store configuration.
type Config struct {
	// Path is the database location or ":memory:" for an in-memory database.
	Path string

	// BusyTimeout configures sqlite busy timeout via PRAGMA busy_timeout.
	BusyTimeout time.Duration

	// PingBeforeUse pings the connection before each repository call.
	PingBeforeUse bool

	// Schema names the user table and username column.
	Schema user.Schema
}

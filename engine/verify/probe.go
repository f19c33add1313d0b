package verify

import (
	"context"

	"github.com/compozy/dbprobe/pkg/logger"
)

// KnownTables are the application tables the probe looks for.
var KnownTables = []string{"user", "task", "testimonial"}

// ProbeResult is the outcome of Probe.
type ProbeResult struct {
	Version   string
	Tables    []string
	UserCount int64
}

// Probe reports the server version, which known tables exist and how many
// users there are.
type Probe struct {
	session *Session
	tables  []string
}

// NewProbe creates a probe over tables, or KnownTables when none are given.
func NewProbe(session *Session, tables ...string) *Probe {
	if len(tables) == 0 {
		tables = KnownTables
	}
	return &Probe{session: session, tables: tables}
}

// Execute runs the probe queries in order and stops at the first failure.
// Fields filled before the failure are kept in the returned result.
func (uc *Probe) Execute(ctx context.Context) (*ProbeResult, error) {
	log := logger.FromContext(ctx)
	res := &ProbeResult{}
	var err error
	if res.Version, err = uc.session.ServerVersion(ctx); err != nil {
		return res, err
	}
	if res.Tables, err = uc.session.ExistingTables(ctx, uc.tables...); err != nil {
		return res, err
	}
	if res.UserCount, err = uc.session.CountRows(ctx, uc.session.UserTable()); err != nil {
		return res, err
	}
	log.Debug("Probe completed", "tables", len(res.Tables), "user_count", res.UserCount)
	return res, nil
}

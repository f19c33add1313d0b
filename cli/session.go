package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/compozy/dbprobe/engine/core"
	"github.com/compozy/dbprobe/engine/dburl"
	"github.com/compozy/dbprobe/engine/user"
	"github.com/compozy/dbprobe/engine/verify"
	"github.com/compozy/dbprobe/pkg/config"
	"github.com/compozy/dbprobe/pkg/logger"
)

// sessionFunc is the body of a database command.
type sessionFunc func(ctx context.Context, p *printer, s *verify.Session) error

// withSession normalizes the configured URL, connects and runs fn, closing
// the session on every path. Handled error kinds are reported to the user and
// swallowed so the process exits 0. Other errors are returned.
func withSession(cmd *cobra.Command, fn sessionFunc) error {
	cfg, err := configFrom(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	log := logger.FromContext(ctx)
	p := newPrinter(cmd.OutOrStdout())

	res, err := dburl.NormalizeContext(ctx, cfg.Database.URL.Value())
	if err != nil {
		return reportError(ctx, p, err)
	}
	if res.Fallback != nil {
		p.Warning("%v", res.Fallback)
	}
	connector := verify.NewConnector(connectorOptions(cfg))
	session, err := connector.Open(ctx, res)
	if err != nil {
		return reportError(ctx, p, err)
	}
	defer func() {
		if cerr := session.Close(ctx); cerr != nil {
			log.Warn("Failed to close session", "error", cerr)
		}
	}()
	if err := fn(ctx, p, session); err != nil {
		return reportError(ctx, p, err)
	}
	return nil
}

func connectorOptions(cfg *config.Config) verify.Options {
	return verify.Options{
		ConnectTimeout: cfg.Database.ConnectTimeout,
		Schema: user.Schema{
			Table:          cfg.Database.UserTable,
			UsernameColumn: cfg.Database.UsernameColumn,
		},
	}
}

// reportError prints a diagnostic for the handled error kinds and returns
// nil for them. Anything else is returned unchanged.
func reportError(ctx context.Context, p *printer, err error) error {
	logger.FromContext(ctx).Debug("Command failed", "error", core.NewError(err, core.CodeOf(err), nil).AsMap())
	switch {
	case errors.Is(err, dburl.ErrParse):
		p.Failure("Invalid connection string: %v", err)
		p.Line("Please check DATABASE_URL in your .env file.")
	case errors.Is(err, verify.ErrConnection):
		p.Failure("Error connecting to database: %v", err)
		p.Line("")
		p.Line("This might be due to an invalid or expired database connection.")
		p.Line("Please check DATABASE_URL in your .env file.")
	case errors.Is(err, verify.ErrDuplicateUser):
		p.Failure("Error inserting user: %v", err)
		p.Line("Transaction rolled back.")
	case errors.Is(err, verify.ErrQuery):
		p.Failure("Query failed: %v", err)
	default:
		return err
	}
	return nil
}

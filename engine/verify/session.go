package verify

import (
	"context"
	"errors"

	"github.com/compozy/dbprobe/engine/infra/store"
	"github.com/compozy/dbprobe/engine/user"
	"github.com/compozy/dbprobe/pkg/logger"
)

var errNilResult = errors.New("normalized connection string is required")

// Session is one open connection. It is not safe for concurrent use.
type Session struct {
	store  store.Store
	schema user.Schema
	state  State
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Driver names the backing driver.
func (s *Session) Driver() string {
	if s.store == nil {
		return ""
	}
	return s.store.Driver()
}

// UserTable returns the configured user table name.
func (s *Session) UserTable() string { return s.schema.Table }

// begin moves the session to Querying and returns the function that moves it
// back. It fails once the session is closed.
func (s *Session) begin() (func(), error) {
	if s.state != StateConnected || s.store == nil {
		return nil, &ConnectionError{Err: ErrSessionClosed}
	}
	s.state = StateQuerying
	return func() {
		if s.state == StateQuerying {
			s.state = StateConnected
		}
	}, nil
}

func (s *Session) queries() *Queries {
	return &Queries{repo: s.store.Repository()}
}

// ServerVersion returns the database server version string.
func (s *Session) ServerVersion(ctx context.Context) (string, error) {
	done, err := s.begin()
	if err != nil {
		return "", err
	}
	defer done()
	return s.queries().ServerVersion(ctx)
}

// ExistingTables returns the subset of names that exist.
func (s *Session) ExistingTables(ctx context.Context, names ...string) ([]string, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()
	return s.queries().ExistingTables(ctx, names...)
}

// CountRows returns the number of rows in table.
func (s *Session) CountRows(ctx context.Context, table string) (int64, error) {
	done, err := s.begin()
	if err != nil {
		return 0, err
	}
	defer done()
	return s.queries().CountRows(ctx, table)
}

// FindUserByEmail returns the matching user, or nil when there is none.
func (s *Session) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()
	return s.queries().FindUserByEmail(ctx, email)
}

// InTx runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back on error or panic. Errors returned by fn are
// passed through unchanged; begin and commit failures become *QueryError.
func (s *Session) InTx(ctx context.Context, fn func(q *Queries) error) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()
	var fnErr error
	err = s.store.WithTransaction(ctx, func(repo user.Repository) error {
		fnErr = fn(&Queries{repo: repo})
		return fnErr
	})
	if err == nil {
		return nil
	}
	logger.FromContext(ctx).Debug("Transaction rolled back", "error", err)
	if fnErr != nil {
		return fnErr
	}
	return &QueryError{Op: "transaction", Err: err}
}

// Close releases the connection. Later calls are no-ops.
func (s *Session) Close(ctx context.Context) error {
	if s.state == StateClosed {
		return nil
	}
	s.state = StateClosed
	if s.store == nil {
		return nil
	}
	if err := s.store.Close(ctx); err != nil {
		return &ConnectionError{Err: err}
	}
	return nil
}

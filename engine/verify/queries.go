package verify

import (
	"context"
	"errors"

	"github.com/compozy/dbprobe/engine/user"
)

// Queries maps repository results to the package's error kinds. Inside InTx
// it is bound to the transaction.
type Queries struct {
	repo user.Repository
}

// ServerVersion returns the database server version string.
func (q *Queries) ServerVersion(ctx context.Context) (string, error) {
	v, err := q.repo.ServerVersion(ctx)
	if err != nil {
		return "", &QueryError{Op: "server version", Err: err}
	}
	return v, nil
}

// ExistingTables returns the subset of names that exist.
func (q *Queries) ExistingTables(ctx context.Context, names ...string) ([]string, error) {
	tables, err := q.repo.ExistingTables(ctx, names...)
	if err != nil {
		return nil, &QueryError{Op: "list tables", Err: err}
	}
	return tables, nil
}

// CountRows returns the number of rows in table.
func (q *Queries) CountRows(ctx context.Context, table string) (int64, error) {
	n, err := q.repo.CountRows(ctx, table)
	if err != nil {
		return 0, &QueryError{Op: "count rows", Err: err}
	}
	return n, nil
}

// FindUserByEmail returns the matching user, or nil when there is none.
func (q *Queries) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	u, err := q.repo.FindUserByEmail(ctx, email)
	if errors.Is(err, user.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &QueryError{Op: "find user", Err: err}
	}
	return u, nil
}

// CreateUser inserts u.
func (q *Queries) CreateUser(ctx context.Context, u *user.User) error {
	err := q.repo.CreateUser(ctx, u)
	if errors.Is(err, user.ErrEmailExists) {
		return &DuplicateUserError{Email: u.Email, Err: err}
	}
	if err != nil {
		return &QueryError{Op: "create user", Err: err}
	}
	return nil
}

package user

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by repositories when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrEmailExists is wrapped by repositories on a unique violation.
	ErrEmailExists = errors.New("user with this email already exists")
)

const (
	DefaultTable          = "user"
	DefaultUsernameColumn = "username"
)

// Schema names the user table and the column that stores the username.
// Older deployments use user_name for the latter.
type Schema struct {
	Table          string
	UsernameColumn string
}

// DefaultSchema returns the schema used when none is configured.
func DefaultSchema() Schema {
	return Schema{Table: DefaultTable, UsernameColumn: DefaultUsernameColumn}
}

// WithDefaults fills empty fields from DefaultSchema.
func (s Schema) WithDefaults() Schema {
	if s.Table == "" {
		s.Table = DefaultTable
	}
	if s.UsernameColumn == "" {
		s.UsernameColumn = DefaultUsernameColumn
	}
	return s
}

// Repository is the data access needed to probe a database and manage test
// users. Implementations quote every identifier they interpolate.
type Repository interface {
	ServerVersion(ctx context.Context) (string, error)
	// ExistingTables returns the subset of names that exist, in the order given.
	ExistingTables(ctx context.Context, names ...string) ([]string, error)
	CountRows(ctx context.Context, table string) (int64, error)
	// FindUserByEmail returns ErrNotFound when no row matches.
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	// CreateUser wraps ErrEmailExists on a unique violation.
	CreateUser(ctx context.Context, u *User) error
}

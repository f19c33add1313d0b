package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/compozy/dbprobe/engine/user"
	"github.com/compozy/dbprobe/pkg/logger"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository implements user.Repository on top of SQLite.
type Repository struct {
	db        DBTX
	schema    user.Schema
	beforeUse func(context.Context) error
}

// NewRepository creates a repository over db.
func NewRepository(db DBTX, schema user.Schema) *Repository {
	return &Repository{db: db, schema: schema.WithDefaults()}
}

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (r *Repository) verify(ctx context.Context) error {
	if r.beforeUse == nil {
		return nil
	}
	return r.beforeUse(ctx)
}

// ServerVersion returns the embedded SQLite library version.
func (r *Repository) ServerVersion(ctx context.Context) (string, error) {
	if err := r.verify(ctx); err != nil {
		return "", err
	}
	var version string
	if err := r.db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		return "", fmt.Errorf("sqlite: server version: %w", err)
	}
	return "SQLite " + version, nil
}

// ExistingTables returns the names present in sqlite_master.
func (r *Repository) ExistingTables(ctx context.Context, names ...string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	if err := r.verify(ctx); err != nil {
		return nil, err
	}
	query, args, err := squirrel.Select("name").
		From("sqlite_master").
		Where("type = ?", "table").
		Where(squirrel.Eq{"name": names}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: build tables query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list tables: %w", err)
	}
	defer rows.Close()
	found := make(map[string]struct{}, len(names))
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("sqlite: scan table name: %w", err)
		}
		found[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iter tables: %w", err)
	}
	out := make([]string, 0, len(found))
	for _, n := range names {
		if _, ok := found[n]; ok {
			out = append(out, n)
			delete(found, n)
		}
	}
	return out, nil
}

// CountRows returns the number of rows in table.
func (r *Repository) CountRows(ctx context.Context, table string) (int64, error) {
	if err := r.verify(ctx); err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quote(table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count rows in %s: %w", table, err)
	}
	return n, nil
}

// FindUserByEmail retrieves a user by exact email match.
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	if err := r.verify(ctx); err != nil {
		return nil, err
	}
	query, args, err := squirrel.Select(
		"id", "email", quote(r.schema.UsernameColumn), "password_hash", "created_at", "updated_at", "is_active",
	).
		From(quote(r.schema.Table)).
		Where(squirrel.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: build select query: %w", err)
	}
	var u user.User
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt, &u.IsActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("sqlite: get user by email: %w", err)
	}
	return &u, nil
}

// CreateUser inserts u.
func (r *Repository) CreateUser(ctx context.Context, u *user.User) error {
	if err := r.verify(ctx); err != nil {
		return err
	}
	query, args, err := squirrel.Insert(quote(r.schema.Table)).
		Columns("id", "email", quote(r.schema.UsernameColumn), "password_hash", "created_at", "updated_at", "is_active").
		Values(u.ID, u.Email, u.Username, u.PasswordHash, u.CreatedAt, u.UpdatedAt, u.IsActive).
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: build insert query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("sqlite: create user: %w: %w", user.ErrEmailExists, err)
		}
		return fmt.Errorf("sqlite: create user: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(se.Error(), "UNIQUE")
	}
	return false
}

// WithTx runs fn against a repository bound to a new transaction on db. The
// transaction commits when fn returns nil and rolls back otherwise,
// including when fn panics.
func WithTx(ctx context.Context, db *sql.DB, schema user.Schema, fn func(user.Repository) error) (err error) {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			rollback(ctx, tx)
			panic(p)
		}
		if err != nil {
			rollback(ctx, tx)
		}
	}()
	if err = fn(NewRepository(tx, schema)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit tx: %w", err)
	}
	return nil
}

func rollback(ctx context.Context, tx *sql.Tx) {
	if rb := tx.Rollback(); rb != nil && !errors.Is(rb, sql.ErrTxDone) {
		logger.FromContext(ctx).Warn("sqlite: rollback failed", "error", rb)
	}
}

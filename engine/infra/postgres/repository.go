package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/compozy/dbprobe/engine/user"
	"github.com/compozy/dbprobe/pkg/logger"
)

// UniqueViolation is the SQLSTATE raised for duplicate keys.
const UniqueViolation = "23505"

const tableSchema = "public"

// Repository implements user.Repository using PostgreSQL.
type Repository struct {
	db     DBInterface
	schema user.Schema
}

// DBInterface defines the minimal interface needed by the repository
type DBInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// NewRepository creates a repository over db.
func NewRepository(db DBInterface, schema user.Schema) *Repository {
	return &Repository{db: db, schema: schema.WithDefaults()}
}

func quote(name string) string { return pgx.Identifier{name}.Sanitize() }

func (r *Repository) userColumns() []string {
	return []string{
		"id",
		"email",
		quote(r.schema.UsernameColumn) + " AS username",
		"password_hash",
		"created_at",
		"updated_at",
		"is_active",
	}
}

// ServerVersion returns the output of version().
func (r *Repository) ServerVersion(ctx context.Context) (string, error) {
	var version string
	if err := r.db.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", fmt.Errorf("querying server version: %w", err)
	}
	return version, nil
}

// ExistingTables returns the names that exist in the public schema.
func (r *Repository) ExistingTables(ctx context.Context, names ...string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	query, args, err := squirrel.Select("table_name").
		From("information_schema.tables").
		Where("table_schema = ?", tableSchema).
		Where(squirrel.Eq{"table_name": names}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building tables query: %w", err)
	}
	var found []string
	if err := pgxscan.Select(ctx, r.db, &found, query, args...); err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	return orderLike(names, found), nil
}

// orderLike returns the members of found in the order they appear in names.
func orderLike(names, found []string) []string {
	set := make(map[string]struct{}, len(found))
	for _, n := range found {
		set[n] = struct{}{}
	}
	out := make([]string, 0, len(found))
	for _, n := range names {
		if _, ok := set[n]; ok {
			out = append(out, n)
			delete(set, n)
		}
	}
	return out
}

// CountRows returns the number of rows in table.
func (r *Repository) CountRows(ctx context.Context, table string) (int64, error) {
	query, args, err := squirrel.Select("COUNT(*)").
		From(quote(table)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building count query: %w", err)
	}
	var n int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting rows in %s: %w", table, err)
	}
	return n, nil
}

// FindUserByEmail retrieves a user by exact email match.
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	query, args, err := squirrel.Select(r.userColumns()...).
		From(quote(r.schema.Table)).
		Where(squirrel.Eq{"email": email}).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var u user.User
	if err := pgxscan.Get(ctx, r.db, &u, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &u, nil
}

// CreateUser inserts u.
func (r *Repository) CreateUser(ctx context.Context, u *user.User) error {
	query, args, err := squirrel.Insert(quote(r.schema.Table)).
		Columns("id", "email", quote(r.schema.UsernameColumn), "password_hash", "created_at", "updated_at", "is_active").
		Values(u.ID, u.Email, u.Username, u.PasswordHash, u.CreatedAt, u.UpdatedAt, u.IsActive).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("inserting user: %w: %w", user.ErrEmailExists, err)
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == UniqueViolation
}

// WithTx runs fn against a repository bound to a new transaction on db. The
// transaction commits when fn returns nil and rolls back otherwise,
// including when fn panics.
func WithTx(ctx context.Context, db DBInterface, schema user.Schema, fn func(user.Repository) error) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
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
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func rollback(ctx context.Context, tx pgx.Tx) {
	if rb := tx.Rollback(context.WithoutCancel(ctx)); rb != nil && !errors.Is(rb, pgx.ErrTxClosed) {
		logger.FromContext(ctx).Warn("postgres: rollback failed", "error", rb)
	}
}

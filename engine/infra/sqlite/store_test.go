package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/dbprobe/engine/user"
)

const createUserTable = `CREATE TABLE "user" (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	username TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT 1
)`

func newTestStore(t *testing.T, cfg *Config) *Store {
	t.Helper()
	ctx := context.Background()
	if cfg == nil {
		cfg = &Config{Path: ":memory:"}
	}
	s, err := NewStore(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(ctx) })
	_, err = s.DB().ExecContext(ctx, createUserTable)
	require.NoError(t, err)
	return s
}

func newTestUser(t *testing.T, email string) *user.User {
	t.Helper()
	u, err := user.New(user.NewInput{Email: email, Username: "testuser", Password: "password123"})
	require.NoError(t, err)
	return u
}

func TestBuildDSN(t *testing.T) {
	t.Run("Should build DSN for file path with pragmas", func(t *testing.T) {
		d := buildDSN("/tmp/test.db", 0)
		assert.Contains(t, d, "file:/tmp/test.db?")
		assert.Contains(t, d, "_pragma=foreign_keys(ON)")
		assert.Contains(t, d, "_pragma=busy_timeout(5000)")
	})
	t.Run("Should build DSN for in-memory databases", func(t *testing.T) {
		d := buildDSN(":memory:", 2*time.Second)
		assert.Contains(t, d, "file::memory:?")
		assert.Contains(t, d, "_pragma=busy_timeout(2000)")
	})
	t.Run("Should append pragmas to an existing query", func(t *testing.T) {
		d := buildDSN("file:app.db?mode=ro", 0)
		assert.Contains(t, d, "file:app.db?mode=ro&_pragma=")
	})
}

func TestStore(t *testing.T) {
	t.Run("Should keep the in-memory database across calls", func(t *testing.T) {
		ctx := context.Background()
		s := newTestStore(t, nil)
		repo := s.Repository()
		require.NoError(t, repo.CreateUser(ctx, newTestUser(t, "a@example.com")))
		n, err := repo.CountRows(ctx, "user")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		assert.Equal(t, DriverName, s.Driver())
		assert.NoError(t, s.HealthCheck(ctx))
	})

	t.Run("Should close idempotently", func(t *testing.T) {
		ctx := context.Background()
		s, err := NewStore(ctx, &Config{})
		require.NoError(t, err)
		assert.Equal(t, ":memory:", s.Path())
		require.NoError(t, s.Close(ctx))
		require.NoError(t, s.Close(ctx))
		assert.Error(t, s.HealthCheck(ctx))
	})

	t.Run("Should ping before use when enabled", func(t *testing.T) {
		ctx := context.Background()
		s := newTestStore(t, &Config{Path: ":memory:", PingBeforeUse: true})
		repo := s.Repository()
		_, err := repo.CountRows(ctx, "user")
		require.NoError(t, err)
		require.NoError(t, s.Close(ctx))
		_, err = repo.CountRows(ctx, "user")
		assert.ErrorContains(t, err, "health check failed")
	})

	t.Run("Should fail for an unreachable file", func(t *testing.T) {
		_, err := NewStore(context.Background(), &Config{Path: "/nonexistent-dir/sub/x.db"})
		assert.Error(t, err)
	})
}

func TestRepository(t *testing.T) {
	t.Run("Should report version and existing tables in request order", func(t *testing.T) {
		ctx := context.Background()
		s := newTestStore(t, nil)
		_, err := s.DB().ExecContext(ctx, `CREATE TABLE testimonial (id INTEGER)`)
		require.NoError(t, err)
		repo := s.Repository()
		v, err := repo.ServerVersion(ctx)
		require.NoError(t, err)
		assert.Contains(t, v, "SQLite 3.")
		tables, err := repo.ExistingTables(ctx, "user", "task", "testimonial")
		require.NoError(t, err)
		assert.Equal(t, []string{"user", "testimonial"}, tables)
	})

	t.Run("Should round-trip a user", func(t *testing.T) {
		ctx := context.Background()
		s := newTestStore(t, nil)
		repo := s.Repository()
		u := newTestUser(t, "test@example.com")
		require.NoError(t, repo.CreateUser(ctx, u))
		got, err := repo.FindUserByEmail(ctx, "test@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, u.Username, got.Username)
		assert.Equal(t, u.PasswordHash, got.PasswordHash)
		assert.True(t, got.IsActive)
		assert.WithinDuration(t, u.CreatedAt, got.CreatedAt, time.Second)
	})

	t.Run("Should return ErrNotFound for unknown emails", func(t *testing.T) {
		s := newTestStore(t, nil)
		_, err := s.Repository().FindUserByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("Should map unique violations to ErrEmailExists", func(t *testing.T) {
		ctx := context.Background()
		s := newTestStore(t, nil)
		repo := s.Repository()
		require.NoError(t, repo.CreateUser(ctx, newTestUser(t, "dup@example.com")))
		err := repo.CreateUser(ctx, newTestUser(t, "dup@example.com"))
		assert.ErrorIs(t, err, user.ErrEmailExists)
	})

	t.Run("Should use a configured username column", func(t *testing.T) {
		ctx := context.Background()
		s, err := NewStore(ctx, &Config{Schema: user.Schema{UsernameColumn: "user_name"}})
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close(ctx) })
		_, err = s.DB().ExecContext(ctx, `CREATE TABLE "user" (
			id TEXT PRIMARY KEY, email TEXT UNIQUE, user_name TEXT, password_hash TEXT,
			created_at TIMESTAMP, updated_at TIMESTAMP, is_active BOOLEAN)`)
		require.NoError(t, err)
		repo := s.Repository()
		require.NoError(t, repo.CreateUser(ctx, newTestUser(t, "legacy@example.com")))
		got, err := repo.FindUserByEmail(ctx, "legacy@example.com")
		require.NoError(t, err)
		assert.Equal(t, "testuser", got.Username)
	})

	t.Run("Should fail to count a missing table", func(t *testing.T) {
		s := newTestStore(t, nil)
		_, err := s.Repository().CountRows(context.Background(), "task")
		assert.ErrorContains(t, err, "no such table")
	})
}

func TestWithTx(t *testing.T) {
	t.Run("Should commit when fn succeeds", func(t *testing.T) {
		ctx := context.Background()
		s := newTestStore(t, nil)
		err := s.WithTransaction(ctx, func(repo user.Repository) error {
			return repo.CreateUser(ctx, newTestUser(t, "tx@example.com"))
		})
		require.NoError(t, err)
		n, err := s.Repository().CountRows(ctx, "user")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("Should roll back when fn fails", func(t *testing.T) {
		ctx := context.Background()
		s := newTestStore(t, nil)
		boom := errors.New("boom")
		err := s.WithTransaction(ctx, func(repo user.Repository) error {
			if err := repo.CreateUser(ctx, newTestUser(t, "rb@example.com")); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		n, err := s.Repository().CountRows(ctx, "user")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("Should roll back and re-panic", func(t *testing.T) {
		ctx := context.Background()
		s := newTestStore(t, nil)
		assert.Panics(t, func() {
			_ = s.WithTransaction(ctx, func(repo user.Repository) error {
				_ = repo.CreateUser(ctx, newTestUser(t, "p@example.com"))
				panic("boom")
			})
		})
		n, err := s.Repository().CountRows(ctx, "user")
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

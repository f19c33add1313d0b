package user

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("Should build an active user with a v4 ID and hashed password", func(t *testing.T) {
		u, err := New(NewInput{Email: "test@example.com", Username: "testuser", Password: "password123"})
		require.NoError(t, err)
		id, err := uuid.Parse(u.ID)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), id.Version())
		assert.Equal(t, "test@example.com", u.Email)
		assert.Equal(t, "testuser", u.Username)
		assert.True(t, u.IsActive)
		assert.NotEqual(t, "password123", u.PasswordHash)
		assert.True(t, CheckPassword(u.PasswordHash, "password123"))
		assert.Equal(t, u.CreatedAt, u.UpdatedAt)
	})

	t.Run("Should generate distinct IDs", func(t *testing.T) {
		a, err := New(NewInput{Email: "a@example.com", Username: "a", Password: "x"})
		require.NoError(t, err)
		b, err := New(NewInput{Email: "b@example.com", Username: "b", Password: "x"})
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("Should require email, username and password", func(t *testing.T) {
		_, err := New(NewInput{Username: "u", Password: "p"})
		assert.ErrorContains(t, err, "email")
		_, err = New(NewInput{Email: "e@example.com", Password: "p"})
		assert.ErrorContains(t, err, "username")
		_, err = New(NewInput{Email: "e@example.com", Username: "u"})
		assert.ErrorContains(t, err, "password")
	})
}

func TestCheckPassword(t *testing.T) {
	t.Run("Should reject a wrong password", func(t *testing.T) {
		hash, err := HashPassword("right")
		require.NoError(t, err)
		assert.False(t, CheckPassword(hash, "wrong"))
	})
	t.Run("Should reject a malformed hash", func(t *testing.T) {
		assert.False(t, CheckPassword("not-a-hash", "x"))
	})
}

func TestSchema(t *testing.T) {
	t.Run("Should fill defaults", func(t *testing.T) {
		assert.Equal(t, DefaultSchema(), Schema{}.WithDefaults())
		s := Schema{UsernameColumn: "user_name"}.WithDefaults()
		assert.Equal(t, "user", s.Table)
		assert.Equal(t, "user_name", s.UsernameColumn)
	})
}

package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a row of the user table.
type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	IsActive     bool      `db:"is_active"`
}

// NewInput holds the plain values for a new user.
type NewInput struct {
	Email    string
	Username string
	Password string
}

// New builds an active user with a random v4 ID and a bcrypt password hash.
func New(in NewInput) (*User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if strings.TrimSpace(in.Username) == "" {
		return nil, fmt.Errorf("username is required")
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     in.Username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
		IsActive:     true,
	}, nil
}

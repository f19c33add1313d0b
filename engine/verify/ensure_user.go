package verify

import (
	"context"
	"fmt"

	"github.com/compozy/dbprobe/engine/user"
	"github.com/compozy/dbprobe/pkg/logger"
)

// EnsureUserResult is the outcome of EnsureUser.
type EnsureUserResult struct {
	User    *user.User
	Created bool
}

// EnsureUser creates a user unless one with the same email exists.
type EnsureUser struct {
	session *Session
	input   user.NewInput
}

// NewEnsureUser creates a new ensure user use case
func NewEnsureUser(session *Session, input user.NewInput) *EnsureUser {
	return &EnsureUser{session: session, input: input}
}

// Execute looks the email up first and returns the existing record with
// Created=false. Otherwise it inserts and re-reads the user in one
// transaction.
func (uc *EnsureUser) Execute(ctx context.Context) (*EnsureUserResult, error) {
	log := logger.FromContext(ctx)
	existing, err := uc.session.FindUserByEmail(ctx, uc.input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Info("User already exists", "user_id", existing.ID, "email", existing.Email)
		return &EnsureUserResult{User: existing}, nil
	}
	u, err := user.New(uc.input)
	if err != nil {
		return nil, fmt.Errorf("building user: %w", err)
	}
	var stored *user.User
	err = uc.session.InTx(ctx, func(q *Queries) error {
		if err := q.CreateUser(ctx, u); err != nil {
			return err
		}
		found, err := q.FindUserByEmail(ctx, u.Email)
		if err != nil {
			return err
		}
		if found == nil {
			return &QueryError{Op: "refresh user", Err: user.ErrNotFound}
		}
		stored = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("User created successfully", "user_id", stored.ID, "email", stored.Email)
	return &EnsureUserResult{User: stored, Created: true}, nil
}

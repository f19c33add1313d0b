package verify

import (
	"context"
	"fmt"

	"github.com/compozy/dbprobe/engine/user"
	"github.com/compozy/dbprobe/pkg/logger"
)

// InsertUserResult is the outcome of InsertUser.
type InsertUserResult struct {
	// User is the record that was inserted.
	User *user.User
	// Fetched is the record read back inside the same transaction.
	Fetched *user.User
	// Count is the row count of the user table after the insert.
	Count int64
}

// InsertUser inserts a user and confirms it inside one transaction. A
// duplicate email fails the whole transaction.
type InsertUser struct {
	session *Session
	input   user.NewInput
}

// NewInsertUser creates a new insert user use case
func NewInsertUser(session *Session, input user.NewInput) *InsertUser {
	return &InsertUser{session: session, input: input}
}

// Execute runs insert, count and fetch, then commits. Any failure rolls the
// transaction back.
func (uc *InsertUser) Execute(ctx context.Context) (*InsertUserResult, error) {
	log := logger.FromContext(ctx)
	u, err := user.New(uc.input)
	if err != nil {
		return nil, fmt.Errorf("building user: %w", err)
	}
	res := &InsertUserResult{User: u}
	err = uc.session.InTx(ctx, func(q *Queries) error {
		if err := q.CreateUser(ctx, u); err != nil {
			return err
		}
		log.Debug("User inserted", "user_id", u.ID, "email", u.Email)
		count, err := q.CountRows(ctx, uc.session.UserTable())
		if err != nil {
			return err
		}
		fetched, err := q.FindUserByEmail(ctx, u.Email)
		if err != nil {
			return err
		}
		res.Count, res.Fetched = count, fetched
		return nil
	})
	if err != nil {
		log.Debug("Insert rolled back", "email", u.Email, "error", err)
		return nil, err
	}
	log.Info("Transaction committed", "user_id", u.ID, "count", res.Count)
	return res, nil
}

package verify

import (
	"errors"
	"fmt"

	"github.com/compozy/dbprobe/engine/dburl"
)

var (
	// ErrConnection is matched by every *ConnectionError.
	ErrConnection = errors.New("database connection failed")
	// ErrQuery is matched by every *QueryError.
	ErrQuery = errors.New("database query failed")
	// ErrDuplicateUser is matched by every *DuplicateUserError.
	ErrDuplicateUser = errors.New("duplicate user")
	// ErrSessionClosed is wrapped by errors from a closed session.
	ErrSessionClosed = errors.New("session is closed")
)

const (
	CodeConnection    = "DB_CONNECTION"
	CodeQuery         = "DB_QUERY"
	CodeDuplicateUser = "DB_DUPLICATE_USER"
)

// ConnectionError reports a failure to open or verify the connection.
// Target is a redacted rendering of the connection string.
type ConnectionError struct {
	Target string
	Err    error
}

func newConnectionError(target string, err error) *ConnectionError {
	return &ConnectionError{Target: dburl.Redact(target), Err: err}
}

func (e *ConnectionError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("connect: %v", e.Err)
	}
	return fmt.Sprintf("connect to %s: %v", e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

func (e *ConnectionError) ErrorCode() string { return CodeConnection }

// QueryError reports a failed statement. Op names the operation.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *QueryError) Unwrap() error { return e.Err }

func (e *QueryError) Is(target error) bool { return target == ErrQuery }

func (e *QueryError) ErrorCode() string { return CodeQuery }

// DuplicateUserError reports an insert rejected by the email uniqueness
// constraint.
type DuplicateUserError struct {
	Email string
	Err   error
}

func (e *DuplicateUserError) Error() string {
	return fmt.Sprintf("user with email %s already exists", e.Email)
}

func (e *DuplicateUserError) Unwrap() error { return e.Err }

func (e *DuplicateUserError) Is(target error) bool { return target == ErrDuplicateUser }

func (e *DuplicateUserError) ErrorCode() string { return CodeDuplicateUser }

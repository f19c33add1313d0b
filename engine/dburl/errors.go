package dburl

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("malformed connection string")
	// ErrUnsupportedScheme is matched by every *UnsupportedSchemeError.
	ErrUnsupportedScheme = errors.New("unsupported connection scheme")
)

const (
	CodeParse             = "DB_URL_PARSE"
	CodeUnsupportedScheme = "DB_URL_UNSUPPORTED_SCHEME"
)

// ParseError reports a connection string that is not a well-formed URL.
// Input is always redacted.
type ParseError struct {
	Input string
	Err   error
}

func newParseError(raw string, err error) *ParseError {
	// url.Error repeats the raw input, password included.
	var ue *url.Error
	if errors.As(err, &ue) {
		err = ue.Err
	}
	return &ParseError{Input: Redact(raw), Err: err}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dburl: parse %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

func (e *ParseError) ErrorCode() string { return CodeParse }

// UnsupportedSchemeError describes a connection string that matched neither
// the PostgreSQL nor the SQLite family. Normalize never returns it as an
// error; it is reported through Result.Fallback.
type UnsupportedSchemeError struct {
	Scheme string
}

func (e *UnsupportedSchemeError) Error() string {
	if e.Scheme == "" {
		return "dburl: no recognizable scheme, passing connection string through unchanged"
	}
	return fmt.Sprintf("dburl: unsupported scheme %q, passing connection string through unchanged", e.Scheme)
}

func (e *UnsupportedSchemeError) Is(target error) bool { return target == ErrUnsupportedScheme }

func (e *UnsupportedSchemeError) ErrorCode() string { return CodeUnsupportedScheme }

package core

import "errors"

// Error is a coded error carrying optional structured details.
type Error struct {
	Code    string
	Message string
	Details map[string]any
	err     error
}

// NewError wraps err with a machine-readable code.
func NewError(err error, code string, details map[string]any) *Error {
	msg := code
	if err != nil {
		msg = err.Error()
	}
	return &Error{Code: code, Message: msg, Details: details, err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// AsMap renders the error for structured logging.
func (e *Error) AsMap() map[string]any {
	if e == nil {
		return nil
	}
	out := map[string]any{"code": e.Code, "message": e.Message}
	if len(e.Details) > 0 {
		out["details"] = e.Details
	}
	return out
}

// Coded is implemented by typed errors that expose a stable code.
type Coded interface {
	ErrorCode() string
}

// CodeOf returns the code of the first *Error or Coded error in err's chain, or "".
func CodeOf(err error) string {
	var coreErr *Error
	if errors.As(err, &coreErr) {
		return coreErr.Code
	}
	var coded Coded
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return ""
}

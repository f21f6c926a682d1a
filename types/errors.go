package types

import "fmt"

// Stable machine-readable error codes
const (
	CodeSortClauseUnparseable  = "E_SORT_CLAUSE_UNPARSEABLE"
	CodeWhereClauseUnparseable = "E_WHERE_CLAUSE_UNPARSEABLE"
	CodeUnknownOperator        = "E_UNKNOWN_OPERATOR"
	CodeInvalidPattern         = "E_INVALID_PATTERN"
	CodeInvalidCriteria        = "E_INVALID_CRITERIA"
	CodeInvalidJoin            = "E_INVALID_JOIN"
)

// Error is a query error tagged with a stable code. Two errors match with
// errors.Is when their codes are equal, so the sentinels below can be used
// to test for a class of failure.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Code
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Errorf builds a coded error
func Errorf(code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is
var (
	ErrSortClauseUnparseable  = &Error{Code: CodeSortClauseUnparseable}
	ErrWhereClauseUnparseable = &Error{Code: CodeWhereClauseUnparseable}
	ErrUnknownOperator        = &Error{Code: CodeUnknownOperator}
	ErrInvalidPattern         = &Error{Code: CodeInvalidPattern}
	ErrInvalidCriteria        = &Error{Code: CodeInvalidCriteria}
	ErrInvalidJoin            = &Error{Code: CodeInvalidJoin}
)

package dbconn

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorCode classifies a connector error.
type ErrorCode string

const (
	CodeConfigParse      ErrorCode = "CONFIG_PARSE"
	CodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	CodeUnknownCommand   ErrorCode = "UNKNOWN_COMMAND"
	CodeArityMismatch    ErrorCode = "ARITY_MISMATCH"
	CodeNoResultSet      ErrorCode = "NO_RESULT_SET"
	CodeDuplicate        ErrorCode = "DUPLICATE"
	CodeForeignKey       ErrorCode = "FOREIGN_KEY"
	CodeCheckViolation   ErrorCode = "CHECK_VIOLATION"
	CodeNotNullViolation ErrorCode = "NOT_NULL"
	CodeTimeout          ErrorCode = "TIMEOUT"
	CodeSerialization    ErrorCode = "SERIALIZATION"
	CodeDeadlock         ErrorCode = "DEADLOCK"
	CodeUnknown          ErrorCode = "UNKNOWN"
)

// Sentinel errors for quick errors.Is checks.
var (
	ErrConfigParse      = errors.New("dbconn: malformed config document")
	ErrConnection       = errors.New("dbconn: connection failed")
	ErrUnknownCommand   = errors.New("dbconn: unknown command")
	ErrArityMismatch    = errors.New("dbconn: argument count mismatch")
	ErrNoResultSet      = errors.New("dbconn: no active result set")
	ErrDuplicate        = errors.New("dbconn: duplicate key violation")
	ErrForeignKey       = errors.New("dbconn: foreign key violation")
	ErrCheckViolation   = errors.New("dbconn: check constraint violation")
	ErrNotNullViolation = errors.New("dbconn: not null violation")
	ErrTimeout          = errors.New("dbconn: operation timeout")
	ErrSerialization    = errors.New("dbconn: serialization failure")
	ErrDeadlock         = errors.New("dbconn: deadlock detected")
)

// Error is a rich connector error with context. Driver-level failures are
// carried verbatim in Cause and never reinterpreted beyond classification.
type Error struct {
	Code       ErrorCode // Error classification
	Message    string    // Human-readable message
	Op         string    // Operation that failed (e.g., "Call", "FetchOne")
	Command    string    // Named command involved, if any
	Want       int       // Expected argument count (arity errors)
	Got        int       // Supplied argument count (arity errors)
	Index      int       // Offending argument-set index in a batch, -1 otherwise
	Constraint string    // Constraint name if reported by the server
	Detail     string    // Additional detail from the server
	Cause      error     // Underlying error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("dbconn: %s", e.Message)
	if e.Op != "" {
		msg = fmt.Sprintf("dbconn.%s: %s", e.Op, e.Message)
	}
	if e.Command != "" {
		msg += fmt.Sprintf(" (command: %s)", e.Command)
	}
	if e.Constraint != "" {
		msg += fmt.Sprintf(" (constraint: %s)", e.Constraint)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for sentinel error matching.
func (e *Error) Is(target error) bool {
	switch e.Code {
	case CodeConfigParse:
		return target == ErrConfigParse
	case CodeConnectionFailed:
		return target == ErrConnection
	case CodeUnknownCommand:
		return target == ErrUnknownCommand
	case CodeArityMismatch:
		return target == ErrArityMismatch
	case CodeNoResultSet:
		return target == ErrNoResultSet
	case CodeDuplicate:
		return target == ErrDuplicate
	case CodeForeignKey:
		return target == ErrForeignKey
	case CodeCheckViolation:
		return target == ErrCheckViolation
	case CodeNotNullViolation:
		return target == ErrNotNullViolation
	case CodeTimeout:
		return target == ErrTimeout
	case CodeSerialization:
		return target == ErrSerialization
	case CodeDeadlock:
		return target == ErrDeadlock
	}
	return false
}

// unknownCommandError reports a registry lookup miss.
func unknownCommandError(op, name string) *Error {
	return &Error{
		Code:    CodeUnknownCommand,
		Message: fmt.Sprintf("no command registered under %q", name),
		Op:      op,
		Command: name,
		Index:   -1,
	}
}

// arityError reports an argument count mismatch. index is the position of the
// offending argument set within a batch, or -1 for a single execution.
func arityError(op, name string, want, got, index int) *Error {
	msg := fmt.Sprintf("command takes %d argument(s), got %d", want, got)
	if index >= 0 {
		msg += fmt.Sprintf(" (argument set %d)", index)
	}
	return &Error{
		Code:    CodeArityMismatch,
		Message: msg,
		Op:      op,
		Command: name,
		Want:    want,
		Got:     got,
		Index:   index,
	}
}

// noResultSetError reports a fetch with no row-producing execution behind it.
func noResultSetError(op string) *Error {
	return &Error{
		Code:    CodeNoResultSet,
		Message: "no active result set; execute a row-producing command first",
		Op:      op,
		Index:   -1,
	}
}

// configError reports a malformed or unreadable config document.
func configError(msg string, cause error) *Error {
	return &Error{
		Code:    CodeConfigParse,
		Message: msg,
		Op:      "LoadConfigFile",
		Index:   -1,
		Cause:   cause,
	}
}

// wrapError converts a raw driver error into a rich *Error.
func wrapError(err error, op string) error {
	if err == nil {
		return nil
	}

	// Already wrapped
	var connErr *Error
	if errors.As(err, &connErr) {
		return err
	}

	// PostgreSQL server errors carry a SQLSTATE we can classify
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return wrapPgError(pgErr, op)
	}

	return &Error{
		Code:    CodeUnknown,
		Message: err.Error(),
		Op:      op,
		Index:   -1,
		Cause:   err,
	}
}

// wrapPgError maps PostgreSQL SQLSTATE codes onto the connector taxonomy.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
func wrapPgError(pgErr *pgconn.PgError, op string) *Error {
	e := &Error{
		Op:         op,
		Index:      -1,
		Constraint: pgErr.ConstraintName,
		Detail:     pgErr.Detail,
		Cause:      pgErr,
	}

	switch pgErr.Code {
	case "23505": // unique_violation
		e.Code = CodeDuplicate
		e.Message = "duplicate key value violates unique constraint"
	case "23503": // foreign_key_violation
		e.Code = CodeForeignKey
		e.Message = "foreign key constraint violation"
	case "23502": // not_null_violation
		e.Code = CodeNotNullViolation
		e.Message = "null value in column violates not-null constraint"
	case "23514": // check_violation
		e.Code = CodeCheckViolation
		e.Message = "check constraint violation"
	case "40001": // serialization_failure
		e.Code = CodeSerialization
		e.Message = "serialization failure, retry transaction"
	case "40P01": // deadlock_detected
		e.Code = CodeDeadlock
		e.Message = "deadlock detected"
	case "57014": // query_canceled
		e.Code = CodeTimeout
		e.Message = "query was cancelled due to timeout"
	case "08000", "08003", "08006": // connection exceptions
		e.Code = CodeConnectionFailed
		e.Message = "database connection failed"
	default:
		e.Code = CodeUnknown
		e.Message = pgErr.Message
	}

	return e
}

// IsUnknownCommand checks if err is a registry lookup miss.
func IsUnknownCommand(err error) bool {
	return errors.Is(err, ErrUnknownCommand)
}

// IsArityMismatch checks if err is an argument count mismatch.
func IsArityMismatch(err error) bool {
	return errors.Is(err, ErrArityMismatch)
}

// IsNoResultSet checks if err is a fetch without an active result set.
func IsNoResultSet(err error) bool {
	return errors.Is(err, ErrNoResultSet)
}

// IsConfigParse checks if err is a config document failure.
func IsConfigParse(err error) bool {
	return errors.Is(err, ErrConfigParse)
}

// IsConnection checks if err is a connection failure.
func IsConnection(err error) bool {
	return errors.Is(err, ErrConnection)
}

// IsDuplicate checks if err is a duplicate key violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsTimeout checks if err is a timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsRetryable checks if the error is worth retrying after a rollback
// (serialization failure or deadlock).
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSerialization) || errors.Is(err, ErrDeadlock)
}

// GetErrorCode extracts the error code if err is a dbconn error.
func GetErrorCode(err error) (ErrorCode, bool) {
	var connErr *Error
	if errors.As(err, &connErr) {
		return connErr.Code, true
	}
	return "", false
}

// GetConstraint extracts the constraint name if the server reported one.
func GetConstraint(err error) (string, bool) {
	var connErr *Error
	if errors.As(err, &connErr) && connErr.Constraint != "" {
		return connErr.Constraint, true
	}
	return "", false
}

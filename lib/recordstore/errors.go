package recordstore

import "fmt"

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode),
// an error message and optionally the underlying cause.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message
	Err  error   // The cause, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("RecordStoreError (code %s): %s", e.Code, e.Msg)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the cause of the error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same return code.
// This makes the ErrXxx sentinels usable with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates a new error with the given code and message.
func NewError(code RetCode, msg string, cause error) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
		Err:  cause,
	}
}

// Sentinels for errors.Is checks.
var (
	ErrCorrupted    = &Error{Code: RetCCorrupted, Msg: "corrupted slot data"}
	ErrHost         = &Error{Code: RetCHost, Msg: "host storage failed"}
	ErrTooManySlots = &Error{Code: RetCTooManySlots, Msg: "record needs too many slots"}
	ErrInvalidValue = &Error{Code: RetCInvalidValue, Msg: "value is not JSON serializable"}
)

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess      RetCode = iota // 0: Operation succeeded.
	RetCCorrupted                   // 1: Persisted slots do not form a valid record.
	RetCHost                        // 2: The host object failed to read or write a slot.
	RetCTooManySlots                // 3: The serialized record does not fit into the allowed number of slots.
	RetCInvalidValue                // 4: A value could not be converted to JSON.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCCorrupted:
		return "Corrupted"
	case RetCHost:
		return "Host"
	case RetCTooManySlots:
		return "TooManySlots"
	case RetCInvalidValue:
		return "InvalidValue"
	default:
		return "Unknown"
	}
}

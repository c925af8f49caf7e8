package api

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrTransport  = errors.New("transport error")
	ErrProtocol   = errors.New("protocol error")
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
)

// Error is a failed backend call.
type Error struct {
	Kind   error  // one of the Err* kinds
	Op     string // e.g. "search", "element details"
	Status int    // HTTP status, 0 when no response was received
	Err    error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func transportErr(op string, status int, err error) error {
	return &Error{Kind: ErrTransport, Op: op, Status: status, Err: err}
}

func protocolErr(op string, err error) error {
	return &Error{Kind: ErrProtocol, Op: op, Err: err}
}

func notFoundErr(op string) error {
	return &Error{Kind: ErrNotFound, Op: op, Status: 404}
}

// BlankQuery is the message for a search with no searchable text.
const BlankQuery = "Enter a search term."

// ValidationError reports input rejected before any request is made.
func ValidationError(op, msg string) error {
	return &Error{Kind: ErrValidation, Op: op, Err: errors.New(msg)}
}

// UserMessage turns an error into the single line shown to the user.
func UserMessage(op string, err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		var e *Error
		if errors.As(err, &e) && e.Err != nil {
			return e.Err.Error()
		}
		return "Invalid input."
	case errors.Is(err, ErrNotFound):
		return fmt.Sprintf("Nothing found while loading %s.", op)
	case errors.Is(err, ErrProtocol):
		return fmt.Sprintf("The server sent an unexpected response while loading %s.", op)
	default:
		return fmt.Sprintf("An error occurred while loading %s.", op)
	}
}

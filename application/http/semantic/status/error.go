package status

import (
	"fmt"
)

// Error carries the status a failure should be answered with.
type Error struct {
	cause  error
	Status Status
}

func NewError(err error, status Status) Error {
	return Error{cause: err, Status: status}
}

// Errorf builds an Error whose cause is a formatted message.
// The message becomes the explanation of the error page.
func Errorf(status Status, format string, args ...any) Error {
	return Error{cause: fmt.Errorf(format, args...), Status: status}
}

func (e Error) Error() string {
	cause := ""
	if e.cause != nil {
		cause = e.cause.Error()
	}

	return fmt.Sprintf(
		"%d %s: %q", e.Status.Code, e.Status.ReasonPhrase, cause,
	)
}

func (e Error) Cause() error {
	return e.cause
}

func (e Error) Unwrap() error {
	return e.cause
}

package oerror

import (
	"errors"
	"fmt"
)

// Error is a formatted engine error.
type Error struct {
	Err string
}

func New(format string, args ...interface{}) *Error {
	return &Error{Err: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return e.Err
}

// ErrInvalidWorld marks world-data consistency faults (corrupt chunk payloads,
// block ids with no registered definition). These indicate an upstream data
// pipeline problem rather than a physics edge case, and callers are expected
// to distinguish them with errors.Is.
var ErrInvalidWorld = errors.New("invalid world state")

// InvalidWorld returns a formatted error that matches ErrInvalidWorld.
func InvalidWorld(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidWorld, fmt.Sprintf(format, args...))
}

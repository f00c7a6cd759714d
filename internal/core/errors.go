package core

import "errors"

// Sentinel errors returned by value-type setters and constructors; they are
// wrapped with fmt.Errorf("%w: ...", ...) so callers can still match them
// with errors.Is while getting a specific message.
var (
	ErrInvalidValue      = errors.New("invalid value")
	ErrInvalidIdentifier = errors.New("invalid identifier")
)

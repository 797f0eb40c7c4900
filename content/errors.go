package content

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching against the typed errors below.
var (
	ErrValidation = errors.New("validation failed")
	ErrParse      = errors.New("malformed images field")
	ErrNotFound   = errors.New("image index out of range")
)

// ValidationError reports a field that failed validation before persistence.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ParseError reports a serialized images field that could not be decoded.
// Decoding never partially succeeds.
type ParseError struct {
	Item int // zero-based array element, -1 when the array itself is bad
	Err  error
}

func (e *ParseError) Error() string {
	if e.Item < 0 {
		return fmt.Sprintf("parse images: %v", e.Err)
	}
	return fmt.Sprintf("parse images: item %d: %v", e.Item, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// NotFoundError reports a session transition addressed at a missing index.
type NotFoundError struct {
	Index int
	Len   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("image index %d out of range [0,%d)", e.Index, e.Len)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

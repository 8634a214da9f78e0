package preorder

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or missing input.  Its message is safe
// to surface verbatim to the caller as a 400-class failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundError is returned when a delete target does not exist.  It is a
// distinct condition from generic storage failure and maps to 404.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pre-order setting not found: %s", e.ID)
}

// IsNotFound reports whether err is (or wraps) a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

package repository

import "errors"

// NotFoundError is returned when a namespace has no stored history.
type NotFoundError struct {
	message string
}

// Error returns the error message.
func (e NotFoundError) Error() string {
	return e.message
}

func notFound(namespace string) error {
	return NotFoundError{message: "no search history stored for " + namespace}
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

package provider

import (
	"github.com/pkg/errors"
)

// classifiedError marks an error as either retry-worthy or not
type classifiedError struct {
	err       error
	transient bool
}

func (e *classifiedError) Error() string {
	return e.err.Error()
}

func (e *classifiedError) Cause() error {
	return e.err
}

func (e *classifiedError) Unwrap() error {
	return e.err
}

// Transient marks err as a failure that may succeed if retried, e.g.
// throttling, timeouts or 5xx responses. A nil err returns nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}

	return &classifiedError{err: err, transient: true}
}

// Permanent marks err as a failure that will not succeed if retried, e.g.
// validation or permission errors. A nil err returns nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}

	return &classifiedError{err: err, transient: false}
}

// IsTransient returns true if anything in err's chain was marked Transient.
// Unclassified errors are not transient.
func IsTransient(err error) bool {
	var ce *classifiedError
	if errors.As(err, &ce) {
		return ce.transient
	}

	return false
}

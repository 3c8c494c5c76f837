package ecproto

import "fmt"

// StatusError represents a non-success status reported by the controller.
type StatusError struct {
	// Op is the operation that failed
	Op string

	// Status is the status code from the controller
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed: %s (0x%02X)", e.Op, e.Status, uint8(e.Status))
}

// IsStatusError returns true if the error is a StatusError.
func IsStatusError(err error) bool {
	_, ok := err.(*StatusError)
	return ok
}

// IsAccessDenied returns true if the error is a StatusError carrying
// StatusAccessDenied. Useful where only the wrapped protocol error is
// at hand; the updater package exposes a sentinel for the common case.
func IsAccessDenied(err error) bool {
	se, ok := err.(*StatusError)
	return ok && se.Status == StatusAccessDenied
}

package dispatch

import "errors"

// Common error types for dispatch lookups
var (
	// ErrUnknownOperation reports a name that no classified entry carries.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrWrongStrategy reports an entry invoked through a calling
	// convention other than the one the classifier assigned.
	ErrWrongStrategy = errors.New("operation invoked with wrong strategy")
)

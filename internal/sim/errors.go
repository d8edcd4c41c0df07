package sim

import "errors"

var (
	// ErrInvalidConfiguration is returned for parameters no simulation can run with.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrCapacityExceeded is returned when a particle cannot be placed without
	// overlap within the configured number of attempts.
	ErrCapacityExceeded = errors.New("capacity exceeded")
)

package event

import "errors"

var (
	// ErrInvalidEvent is returned when an event is missing the payload its
	// kind requires or does not describe a genuine transition.
	ErrInvalidEvent = errors.New("event: invalid event")
)

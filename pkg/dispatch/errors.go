package dispatch

import "errors"

var (
	// ErrPersistenceFailed wraps a failed inbox record insert. It is the
	// only channel failure Dispatch returns to the caller.
	ErrPersistenceFailed = errors.New("dispatch: failed to persist notification")
	ErrChannelPanicked   = errors.New("dispatch: channel panicked")
)

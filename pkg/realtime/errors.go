package realtime

import "errors"

var (
	// ErrForbidden is returned when a subscription is requested for a
	// recipient other than the authenticated identity.
	ErrForbidden = errors.New("realtime: identity does not match requested recipient")

	// ErrHubClosed is returned when subscribing to a closed hub.
	ErrHubClosed = errors.New("realtime: hub is closed")
)

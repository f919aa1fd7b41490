package notifications

import "errors"

var (
	// ErrNotFound is returned when a notification does not exist.
	ErrNotFound = errors.New("notifications: notification not found")

	// ErrForbidden is returned when a user acts on a notification they do
	// not own.
	ErrForbidden = errors.New("notifications: notification belongs to another user")

	// ErrInvalidNotification is returned when a notification is missing
	// required fields or carries an unknown category.
	ErrInvalidNotification = errors.New("notifications: invalid notification")
)

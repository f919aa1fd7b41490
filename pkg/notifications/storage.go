package notifications

import (
	"context"
)

// Storage handles notification persistence and retrieval. Implementations
// must guarantee atomic insert and per-row atomic mark-read; no multi-record
// transaction is required since records are independent.
type Storage interface {
	// Create stores a new notification.
	Create(ctx context.Context, notif Notification) error

	// Get retrieves a single notification by ID regardless of owner.
	// Ownership checks are the Inbox's responsibility.
	Get(ctx context.Context, notifID string) (*Notification, error)

	// List returns a user's notifications ordered by CreatedAt descending.
	List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error)

	// MarkRead marks a notification as read. Marking an already-read
	// notification is a no-op, never an error.
	MarkRead(ctx context.Context, notifID string) error

	// CountUnread returns the number of unread notifications for a user.
	CountUnread(ctx context.Context, userID string) (int, error)
}

// ListOptions provides filtering and pagination for listing notifications.
type ListOptions struct {
	Limit      int        // Maximum number of notifications to return (0 = no limit)
	Offset     int        // Number of notifications to skip for pagination
	OnlyUnread bool       // When true, only return unread notifications
	Categories []Category // If specified, only return notifications of these categories
}

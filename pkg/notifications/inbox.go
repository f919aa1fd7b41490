package notifications

import (
	"context"
	"fmt"
)

// Inbox is the user-facing read surface over notification storage. It owns
// the ownership checks: storage primitives are ID-scoped, the Inbox decides
// who may touch what.
type Inbox struct {
	storage Storage
}

// NewInbox creates an inbox over the given storage.
func NewInbox(storage Storage) *Inbox {
	return &Inbox{storage: storage}
}

// List returns the user's notifications, newest first.
func (i *Inbox) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	return i.storage.List(ctx, userID, opts)
}

// CountUnread returns the user's unread notification count.
func (i *Inbox) CountUnread(ctx context.Context, userID string) (int, error) {
	return i.storage.CountUnread(ctx, userID)
}

// MarkRead marks a notification as read on behalf of requesterID and returns
// the updated record. Returns ErrNotFound when the notification does not
// exist and ErrForbidden when it belongs to another user; in the forbidden
// case the record is left untouched. Marking an already-read notification is
// a no-op and succeeds.
func (i *Inbox) MarkRead(ctx context.Context, requesterID, notifID string) (*Notification, error) {
	n, err := i.storage.Get(ctx, notifID)
	if err != nil {
		return nil, err
	}
	if n.UserID != requesterID {
		return nil, ErrForbidden
	}

	if err := i.storage.MarkRead(ctx, notifID); err != nil {
		return nil, fmt.Errorf("failed to mark notification %s as read: %w", notifID, err)
	}

	return i.storage.Get(ctx, notifID)
}

// Package notifications holds the persisted notification model and its
// storage implementations.
//
// # Architecture
//
//   - Notification: the inbox record (immutable CreatedAt, monotonic Read)
//   - Storage: pluggable persistence (memory, Postgres, MongoDB)
//   - Inbox: ownership-checked read/mark-read surface for transport layers
//
// Creation happens in the dispatch package as part of fan-out delivery; this
// package never sends anything, it only stores and serves.
//
// # Basic Usage
//
//	storage := notifications.NewPGStorage(pool)
//	inbox := notifications.NewInbox(storage)
//
//	list, err := inbox.List(ctx, userID, notifications.ListOptions{Limit: 20})
//	n, err := inbox.MarkRead(ctx, userID, notifID)
package notifications

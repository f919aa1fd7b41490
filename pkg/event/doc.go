// Package event defines the domain events the notification subsystem reacts
// to: value snapshots of platform entities, typed event kinds, and the
// transition detector that turns old/new snapshot pairs into events.
//
// Events are emitted after the underlying mutation commits, exactly once per
// genuine state transition. They carry copies of entity data, never live
// references, so downstream composition and delivery cannot race with
// concurrent writes to the source records.
package event

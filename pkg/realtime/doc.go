// Package realtime is the live push channel of the notification fan-out:
// per-recipient pub/sub with best-effort, lossy delivery. A publish with no
// connected subscriber is a no-op; nothing is queued for later.
//
// Two transports implement the Publisher and Streamer interfaces:
//
//   - Hub: in-memory subscriber registry for single-process deployments
//   - RedisHub: Redis pub/sub for horizontally scaled deployments
//
// Subscribing is identity-checked: a client may only open a stream for its
// own recipient ID. Transport layers (see modules/inbox) pass the
// authenticated identity alongside the requested recipient.
package realtime

// Package dispatch delivers composed notification messages over three
// channels: the persistent inbox, email, and realtime push.
//
// The three channels run concurrently and fail independently. Persistence
// is the system of record for the inbox API, so its failure is returned to
// the caller (and can drive a queue retry); email and realtime are
// best-effort and their failures are only recorded in the outcomes. A panic
// in one channel is contained and reported as that channel's failure.
//
//	d := dispatch.New(storage, sender, renderer, hub,
//		dispatch.WithCollector(dispatch.NewLogCollector(log)),
//		dispatch.WithEmailRetries(3),
//	)
//	outcomes, err := d.Dispatch(ctx, msg)
//
// Email sends are retried with linear backoff inside a per-dispatch timeout.
// Realtime delivery is fire-and-forget: a publish that reaches zero
// subscribers succeeds with Delivered == 0, and nothing is queued for
// offline recipients.
//
// Every dispatch reports all channel outcomes to a Collector, so operators
// see swallowed email and realtime failures without them bubbling up the
// call stack.
package dispatch

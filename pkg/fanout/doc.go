// Package fanout wires the notification pipeline together: events emitted
// after a domain commit flow through the queue into composition and
// three-channel dispatch.
//
// The Emitter is the only piece the platform's request handlers touch. It
// validates and enqueues, nothing more:
//
//	emitter := fanout.NewEmitter(enqueuer)
//	_ = emitter.Emit(ctx, event.NewEnrollmentCreated(enr, time.Now()))
//
// On the worker side, Handler resolves recipient lists through a Directory,
// composes messages, and dispatches each one. Its error return feeds the
// queue's retry policy: only persistence failures bubble up, so retries
// re-attempt the inbox insert rather than re-sending best-effort emails that
// merely timed out.
package fanout

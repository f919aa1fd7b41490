// Package queue decouples notification delivery from the request that
// triggered it.
//
// The emitting side validates and enqueues; a Worker drains the queue on its
// own goroutines, so a slow email provider never delays the domain mutation
// that produced the event. Tasks carry a JSON payload and are routed to a
// typed handler by name:
//
//	enq, _ := queue.NewEnqueuer(storage)
//	_ = enq.Enqueue(ctx, DeliverEvent{Event: evt})
//
//	worker, _ := queue.NewWorker(storage,
//		queue.WithPullInterval(time.Second),
//		queue.WithMaxConcurrentTasks(10),
//	)
//	worker.RegisterHandler(queue.NewTaskHandler(func(ctx context.Context, t DeliverEvent) error {
//		return deliver(ctx, t.Event)
//	}))
//	_ = worker.Start(ctx)
//
// Failed tasks are retried up to MaxRetries with linear backoff, then moved
// to a dead letter queue for manual inspection. The bundled MemoryStorage is
// in-process and best-effort: tasks do not survive a restart. Claimed tasks
// whose worker dies are recovered when their lock expires.
package queue

package queue_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hausasoft/elearn-notify/pkg/queue"
)

type deliverEvent struct {
	EventID string `json:"event_id"`
}

func newStorage(t *testing.T) *queue.MemoryStorage {
	t.Helper()
	storage := queue.NewMemoryStorage()
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestEnqueuer(t *testing.T) {
	t.Parallel()

	t.Run("rejects nil payload", func(t *testing.T) {
		t.Parallel()

		enq, err := queue.NewEnqueuer(newStorage(t))
		require.NoError(t, err)
		require.ErrorIs(t, enq.Enqueue(t.Context(), nil), queue.ErrPayloadNil)
	})

	t.Run("rejects nil repository", func(t *testing.T) {
		t.Parallel()

		_, err := queue.NewEnqueuer(nil)
		require.ErrorIs(t, err, queue.ErrRepositoryNil)
	})

	t.Run("derives task name from payload type", func(t *testing.T) {
		t.Parallel()

		storage := newStorage(t)
		enq, err := queue.NewEnqueuer(storage)
		require.NoError(t, err)

		require.NoError(t, enq.Enqueue(t.Context(), deliverEvent{EventID: "evt-1"}))

		task, err := storage.ClaimTask(t.Context(), uuid.New(), []string{queue.DefaultQueueName}, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, "queue_test.deliverEvent", task.TaskName)
		assert.JSONEq(t, `{"event_id":"evt-1"}`, string(task.Payload))
		assert.Equal(t, int8(3), task.MaxRetries)
	})

	t.Run("delayed task is not claimable before its time", func(t *testing.T) {
		t.Parallel()

		storage := newStorage(t)
		enq, err := queue.NewEnqueuer(storage)
		require.NoError(t, err)

		require.NoError(t, enq.Enqueue(t.Context(), deliverEvent{EventID: "evt-1"},
			queue.WithDelay(time.Hour)))

		_, err = storage.ClaimTask(t.Context(), uuid.New(), []string{queue.DefaultQueueName}, time.Minute)
		require.ErrorIs(t, err, queue.ErrNoTaskToClaim)
	})
}

func TestMemoryStorage(t *testing.T) {
	t.Parallel()

	t.Run("claims oldest due task first", func(t *testing.T) {
		t.Parallel()

		storage := newStorage(t)
		enq, err := queue.NewEnqueuer(storage)
		require.NoError(t, err)

		require.NoError(t, enq.Enqueue(t.Context(), deliverEvent{EventID: "first"}))
		time.Sleep(5 * time.Millisecond)
		require.NoError(t, enq.Enqueue(t.Context(), deliverEvent{EventID: "second"}))

		task, err := storage.ClaimTask(t.Context(), uuid.New(), []string{queue.DefaultQueueName}, time.Minute)
		require.NoError(t, err)
		assert.JSONEq(t, `{"event_id":"first"}`, string(task.Payload))
	})

	t.Run("claimed task is invisible to other workers", func(t *testing.T) {
		t.Parallel()

		storage := newStorage(t)
		enq, err := queue.NewEnqueuer(storage)
		require.NoError(t, err)
		require.NoError(t, enq.Enqueue(t.Context(), deliverEvent{EventID: "evt-1"}))

		_, err = storage.ClaimTask(t.Context(), uuid.New(), []string{queue.DefaultQueueName}, time.Minute)
		require.NoError(t, err)

		_, err = storage.ClaimTask(t.Context(), uuid.New(), []string{queue.DefaultQueueName}, time.Minute)
		require.ErrorIs(t, err, queue.ErrNoTaskToClaim)
	})

	t.Run("failed task with retries left is rescheduled", func(t *testing.T) {
		t.Parallel()

		storage := newStorage(t)
		enq, err := queue.NewEnqueuer(storage)
		require.NoError(t, err)
		require.NoError(t, enq.Enqueue(t.Context(), deliverEvent{EventID: "evt-1"}))

		task, err := storage.ClaimTask(t.Context(), uuid.New(), []string{queue.DefaultQueueName}, time.Minute)
		require.NoError(t, err)

		require.NoError(t, storage.FailTask(t.Context(), task.ID, "boom"))

		// Rescheduled with backoff, so not immediately claimable.
		_, err = storage.ClaimTask(t.Context(), uuid.New(), []string{queue.DefaultQueueName}, time.Minute)
		require.ErrorIs(t, err, queue.ErrNoTaskToClaim)
		assert.Equal(t, 1, storage.PendingCount())
	})

	t.Run("complete requires processing state", func(t *testing.T) {
		t.Parallel()

		storage := newStorage(t)
		err := storage.CompleteTask(t.Context(), uuid.New())
		require.ErrorIs(t, err, queue.ErrTaskNotFound)
	})

	t.Run("move to dlq preserves task details", func(t *testing.T) {
		t.Parallel()

		storage := newStorage(t)
		enq, err := queue.NewEnqueuer(storage)
		require.NoError(t, err)
		require.NoError(t, enq.Enqueue(t.Context(), deliverEvent{EventID: "evt-1"},
			queue.WithMaxRetries(0)))

		task, err := storage.ClaimTask(t.Context(), uuid.New(), []string{queue.DefaultQueueName}, time.Minute)
		require.NoError(t, err)
		require.NoError(t, storage.FailTask(t.Context(), task.ID, "boom"))
		require.NoError(t, storage.MoveToDLQ(t.Context(), task.ID))

		dead := storage.DeadTasks()
		require.Len(t, dead, 1)
		assert.Equal(t, task.ID, dead[0].TaskID)
		assert.Equal(t, "boom", dead[0].Error)
		assert.JSONEq(t, `{"event_id":"evt-1"}`, string(dead[0].Payload))
		assert.Equal(t, 0, storage.PendingCount())
	})
}

func TestTaskHandler(t *testing.T) {
	t.Parallel()

	handler := queue.NewTaskHandler(func(_ context.Context, payload deliverEvent) error {
		assert.Equal(t, "evt-1", payload.EventID)
		return nil
	})

	assert.Equal(t, "queue_test.deliverEvent", handler.Name())
	require.NoError(t, handler.Handle(t.Context(), []byte(`{"event_id":"evt-1"}`)))
	require.Error(t, handler.Handle(t.Context(), []byte(`not json`)))
}

func TestWorkerProcessesTask(t *testing.T) {
	t.Parallel()

	storage := newStorage(t)
	enq, err := queue.NewEnqueuer(storage)
	require.NoError(t, err)

	var processed atomic.Int32
	worker, err := queue.NewWorker(storage,
		queue.WithPullInterval(5*time.Millisecond),
		queue.WithWorkerLogger(quietLogger()),
	)
	require.NoError(t, err)
	worker.RegisterHandler(queue.NewTaskHandler(func(_ context.Context, payload deliverEvent) error {
		processed.Add(1)
		return nil
	}))

	require.NoError(t, enq.Enqueue(t.Context(), deliverEvent{EventID: "evt-1"}))
	require.NoError(t, worker.Start(t.Context()))
	t.Cleanup(func() { _ = worker.Stop() })

	require.Eventually(t, func() bool {
		return processed.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorkerMovesExhaustedTaskToDLQ(t *testing.T) {
	t.Parallel()

	storage := newStorage(t)
	enq, err := queue.NewEnqueuer(storage)
	require.NoError(t, err)

	worker, err := queue.NewWorker(storage,
		queue.WithPullInterval(5*time.Millisecond),
		queue.WithWorkerLogger(quietLogger()),
	)
	require.NoError(t, err)
	worker.RegisterHandler(queue.NewTaskHandler(func(context.Context, deliverEvent) error {
		return errors.New("permanent failure")
	}))

	require.NoError(t, enq.Enqueue(t.Context(), deliverEvent{EventID: "evt-1"},
		queue.WithMaxRetries(0)))
	require.NoError(t, worker.Start(t.Context()))
	t.Cleanup(func() { _ = worker.Stop() })

	require.Eventually(t, func() bool {
		return len(storage.DeadTasks()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "permanent failure", storage.DeadTasks()[0].Error)
}

func TestWorkerDeadLettersFinalRetry(t *testing.T) {
	t.Parallel()

	storage := newStorage(t)
	enq, err := queue.NewEnqueuer(storage)
	require.NoError(t, err)

	worker, err := queue.NewWorker(storage,
		queue.WithPullInterval(5*time.Millisecond),
		queue.WithWorkerLogger(quietLogger()),
	)
	require.NoError(t, err)
	worker.RegisterHandler(queue.NewTaskHandler(func(context.Context, deliverEvent) error {
		return errors.New("still failing")
	}))

	// With a retry budget of one, the attempt that exhausts it must land in
	// the dead letter bucket rather than stranding the task in failed status
	// where nothing can claim or inspect it.
	require.NoError(t, enq.Enqueue(t.Context(), deliverEvent{EventID: "evt-1"},
		queue.WithMaxRetries(1)))
	require.NoError(t, worker.Start(t.Context()))
	t.Cleanup(func() { _ = worker.Stop() })

	require.Eventually(t, func() bool {
		return len(storage.DeadTasks()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	dead := storage.DeadTasks()[0]
	assert.Equal(t, "still failing", dead.Error)
	assert.Equal(t, int8(1), dead.RetryCount)
	assert.Zero(t, storage.PendingCount())
}

func TestWorkerMovesUnroutableTaskToDLQ(t *testing.T) {
	t.Parallel()

	storage := newStorage(t)
	enq, err := queue.NewEnqueuer(storage)
	require.NoError(t, err)

	worker, err := queue.NewWorker(storage,
		queue.WithPullInterval(5*time.Millisecond),
		queue.WithWorkerLogger(quietLogger()),
	)
	require.NoError(t, err)
	worker.RegisterHandler(queue.NewTaskHandler(func(context.Context, deliverEvent) error {
		return nil
	}))

	type unknownPayload struct{ X int }
	require.NoError(t, enq.Enqueue(t.Context(), unknownPayload{X: 1},
		queue.WithMaxRetries(0)))
	require.NoError(t, worker.Start(t.Context()))
	t.Cleanup(func() { _ = worker.Stop() })

	require.Eventually(t, func() bool {
		return len(storage.DeadTasks()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorkerRequiresHandlers(t *testing.T) {
	t.Parallel()

	worker, err := queue.NewWorker(newStorage(t))
	require.NoError(t, err)
	require.ErrorIs(t, worker.Start(t.Context()), queue.ErrNoHandlers)
}

func TestWorkerContainsHandlerPanic(t *testing.T) {
	t.Parallel()

	storage := newStorage(t)
	enq, err := queue.NewEnqueuer(storage)
	require.NoError(t, err)

	worker, err := queue.NewWorker(storage,
		queue.WithPullInterval(5*time.Millisecond),
		queue.WithWorkerLogger(quietLogger()),
	)
	require.NoError(t, err)
	worker.RegisterHandler(queue.NewTaskHandler(func(context.Context, deliverEvent) error {
		panic("handler exploded")
	}))

	require.NoError(t, enq.Enqueue(t.Context(), deliverEvent{EventID: "evt-1"},
		queue.WithMaxRetries(0)))
	require.NoError(t, worker.Start(t.Context()))
	t.Cleanup(func() { _ = worker.Stop() })

	require.Eventually(t, func() bool {
		return len(storage.DeadTasks()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, storage.DeadTasks()[0].Error, "panic in handler")
}

package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// WorkerRepository is the storage surface needed to process tasks.
type WorkerRepository interface {
	// ClaimTask atomically claims the next available task, or returns
	// ErrNoTaskToClaim when the queues are empty.
	ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error)

	// CompleteTask marks a task as completed.
	CompleteTask(ctx context.Context, taskID uuid.UUID) error

	// FailTask records the error, increments the retry count, and reschedules
	// the task with backoff while retries remain.
	FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error

	// MoveToDLQ parks a task in the dead letter queue.
	MoveToDLQ(ctx context.Context, taskID uuid.UUID) error
}

// Worker drains the queue: it claims pending tasks, routes them to the
// registered handler, and applies the retry-then-dead-letter policy on
// failure. Multiple workers may run against the same storage; claiming is
// atomic.
type Worker struct {
	repo     WorkerRepository
	handlers map[string]Handler
	queues   []string
	workerID uuid.UUID
	sem      chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopMu   sync.Mutex

	pullInterval time.Duration
	lockTimeout  time.Duration
	log          *slog.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	stopping atomic.Bool
}

// NewWorker creates a worker. Handlers must be registered before Start.
func NewWorker(repo WorkerRepository, opts ...WorkerOption) (*Worker, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	options := &workerOptions{
		queues:             []string{DefaultQueueName},
		pullInterval:       5 * time.Second,
		lockTimeout:        5 * time.Minute,
		maxConcurrentTasks: 1,
		log:                slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Worker{
		repo:         repo,
		handlers:     make(map[string]Handler),
		queues:       options.queues,
		workerID:     uuid.New(),
		sem:          make(chan struct{}, options.maxConcurrentTasks),
		pullInterval: options.pullInterval,
		lockTimeout:  options.lockTimeout,
		log:          options.log,
	}, nil
}

// RegisterHandler registers a task handler, replacing any handler with the
// same name.
func (w *Worker) RegisterHandler(handler Handler) {
	if handler == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[handler.Name()] = handler
}

// RegisterHandlers registers multiple task handlers.
func (w *Worker) RegisterHandlers(handlers ...Handler) {
	for _, h := range handlers {
		w.RegisterHandler(h)
	}
}

// Start begins processing tasks in the background.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return fmt.Errorf("worker already started")
	}
	if len(w.handlers) == 0 {
		w.mu.Unlock()
		return ErrNoHandlers
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	w.stopping.Store(false)
	go w.run()

	w.log.Info("queue worker started",
		slog.String("worker_id", w.workerID.String()),
		slog.Any("queues", w.queues),
		slog.Int("max_concurrent", cap(w.sem)))
	return nil
}

// Stop shuts the worker down, waiting for in-flight tasks to finish.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if w.cancel == nil {
		w.mu.Unlock()
		return fmt.Errorf("worker not started")
	}

	w.stopMu.Lock()
	w.stopping.Store(true)
	w.stopMu.Unlock()

	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.wg.Wait()

	w.log.Info("queue worker stopped", slog.String("worker_id", w.workerID.String()))
	return nil
}

// Run returns a function suitable for errgroup: it starts the worker, waits
// for ctx cancellation, then stops it.
func (w *Worker) Run(ctx context.Context) func() error {
	return func() error {
		if err := w.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return w.Stop()
	}
}

func (w *Worker) run() {
	ticker := time.NewTicker(w.pullInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			select {
			case w.sem <- struct{}{}:
				// Don't add to the WaitGroup once Stop has begun waiting.
				w.stopMu.Lock()
				if w.stopping.Load() {
					w.stopMu.Unlock()
					<-w.sem
					return
				}
				w.wg.Add(1)
				w.stopMu.Unlock()

				go func() {
					defer w.wg.Done()
					defer func() { <-w.sem }()

					if err := w.pullAndProcess(); err != nil && !errors.Is(err, ErrHandlerNotFound) {
						w.log.Error("failed to process task",
							slog.String("worker_id", w.workerID.String()),
							slog.String("error", err.Error()))
					}
				}()
			default:
				// All slots busy, skip this tick.
			}
		}
	}
}

func (w *Worker) pullAndProcess() error {
	task, err := w.repo.ClaimTask(w.ctx, w.workerID, w.queues, w.lockTimeout)
	if err != nil {
		if errors.Is(err, ErrNoTaskToClaim) {
			return nil
		}
		return fmt.Errorf("failed to claim task: %w", err)
	}
	if task == nil {
		return nil
	}

	w.log.Debug("claimed task",
		slog.String("worker_id", w.workerID.String()),
		slog.String("task_id", task.ID.String()),
		slog.String("task_name", task.TaskName))

	return w.processTask(task)
}

func (w *Worker) processTask(task *Task) (retErr error) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			retErr = fmt.Errorf("panic in handler: %v", r)
			w.log.Error("task handler panicked",
				slog.String("task_id", task.ID.String()),
				slog.String("task_name", task.TaskName),
				slog.Any("panic", r))
			_ = w.handleTaskFailure(task, retErr, time.Since(start))
		}
	}()

	w.mu.RLock()
	handler, ok := w.handlers[task.TaskName]
	w.mu.RUnlock()
	if !ok {
		return w.handleMissingHandler(task)
	}

	// Detached from the worker lifecycle so graceful shutdown lets the
	// in-flight task finish.
	ctx, cancel := context.WithTimeout(context.Background(), w.lockTimeout)
	defer cancel()

	err := handler.Handle(ctx, task.Payload)
	duration := time.Since(start)
	if err != nil {
		return w.handleTaskFailure(task, err, duration)
	}
	return w.handleTaskSuccess(task, duration)
}

// handleMissingHandler parks the task straight in the DLQ: without a handler
// every retry would fail identically.
func (w *Worker) handleMissingHandler(task *Task) error {
	w.log.Error("no handler registered for task",
		slog.String("task_id", task.ID.String()),
		slog.String("task_name", task.TaskName))

	if err := w.repo.FailTask(w.ctx, task.ID, "no handler registered for task type: "+task.TaskName); err != nil {
		return fmt.Errorf("failed to mark task %s as failed: %w", task.ID, err)
	}
	if err := w.repo.MoveToDLQ(w.ctx, task.ID); err != nil {
		return fmt.Errorf("failed to move task %s to DLQ: %w", task.ID, err)
	}
	return ErrHandlerNotFound
}

func (w *Worker) handleTaskFailure(task *Task, execErr error, duration time.Duration) error {
	w.log.Error("task failed",
		slog.String("task_id", task.ID.String()),
		slog.String("task_name", task.TaskName),
		slog.Int("retry_count", int(task.RetryCount)),
		slog.Int("max_retries", int(task.MaxRetries)),
		slog.Duration("duration", duration),
		slog.String("error", execErr.Error()))

	if err := w.repo.FailTask(w.ctx, task.ID, execErr.Error()); err != nil {
		return fmt.Errorf("failed to update task %s status to failed: %w", task.ID, err)
	}

	// FailTask increments the retry count and reschedules while retries
	// remain; the claimed snapshot still holds the pre-increment count, so
	// mirror the post-failure state when deciding whether this attempt
	// exhausted the task.
	if task.RetryCount+1 >= task.MaxRetries {
		if err := w.repo.MoveToDLQ(w.ctx, task.ID); err != nil {
			return fmt.Errorf("failed to move task %s to DLQ after max retries: %w", task.ID, err)
		}
		w.log.Warn("task moved to dead letter queue",
			slog.String("task_id", task.ID.String()),
			slog.String("task_name", task.TaskName))
	}
	return nil
}

func (w *Worker) handleTaskSuccess(task *Task, duration time.Duration) error {
	if err := w.repo.CompleteTask(w.ctx, task.ID); err != nil {
		return fmt.Errorf("failed to mark task %s as completed: %w", task.ID, err)
	}

	w.log.Debug("task completed",
		slog.String("task_id", task.ID.String()),
		slog.String("task_name", task.TaskName),
		slog.Duration("duration", duration))
	return nil
}

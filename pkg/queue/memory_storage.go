package queue

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

const retryBackoffUnit = 30 * time.Second

// MemoryStorage implements the enqueuer and worker repositories in memory.
// The queue is best-effort: tasks do not survive a process restart.
type MemoryStorage struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*Task
	dlq   map[uuid.UUID]*DeadTask

	byStatus map[TaskStatus][]uuid.UUID

	lockTicker *time.Ticker
	done       chan struct{}
	closeOnce  sync.Once
}

// NewMemoryStorage creates an in-memory task store. Close releases its
// background lock janitor.
func NewMemoryStorage() *MemoryStorage {
	ms := &MemoryStorage{
		tasks:    make(map[uuid.UUID]*Task),
		dlq:      make(map[uuid.UUID]*DeadTask),
		byStatus: make(map[TaskStatus][]uuid.UUID),
		done:     make(chan struct{}),
	}

	ms.lockTicker = time.NewTicker(time.Second)
	go ms.lockExpirationLoop()

	return ms
}

// Close stops the background lock expiration goroutine.
func (ms *MemoryStorage) Close() error {
	ms.closeOnce.Do(func() {
		close(ms.done)
		ms.lockTicker.Stop()
	})
	return nil
}

// CreateTask stores a new pending task.
func (ms *MemoryStorage) CreateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return ErrPayloadNil
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.tasks[task.ID]; exists {
		return fmt.Errorf("task with ID %s already exists", task.ID)
	}

	taskCopy := *task
	ms.tasks[task.ID] = &taskCopy
	ms.byStatus[task.Status] = append(ms.byStatus[task.Status], task.ID)

	return nil
}

// ClaimTask claims the oldest due pending task in the requested queues.
func (ms *MemoryStorage) ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	var oldest *Task

	for _, taskID := range ms.byStatus[TaskStatusPending] {
		task := ms.tasks[taskID]

		if !slices.Contains(queues, task.Queue) {
			continue
		}
		if task.ScheduledAt.After(now) {
			continue
		}
		if task.LockedUntil != nil && task.LockedUntil.After(now) {
			continue
		}

		if oldest == nil || task.ScheduledAt.Before(oldest.ScheduledAt) {
			oldest = task
		}
	}

	if oldest == nil {
		return nil, ErrNoTaskToClaim
	}

	lockUntil := now.Add(lockDuration)
	oldest.Status = TaskStatusProcessing
	oldest.LockedUntil = &lockUntil
	oldest.LockedBy = &workerID

	ms.removeFromStatusIndex(oldest.ID, TaskStatusPending)
	ms.byStatus[TaskStatusProcessing] = append(ms.byStatus[TaskStatusProcessing], oldest.ID)

	taskCopy := *oldest
	return &taskCopy, nil
}

// CompleteTask marks a claimed task as completed.
func (ms *MemoryStorage) CompleteTask(ctx context.Context, taskID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, exists := ms.tasks[taskID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if task.Status != TaskStatusProcessing {
		return fmt.Errorf("%w: %s", ErrTaskNotProcessing, taskID)
	}

	now := time.Now()
	task.Status = TaskStatusCompleted
	task.ProcessedAt = &now
	task.LockedUntil = nil
	task.LockedBy = nil

	ms.removeFromStatusIndex(taskID, TaskStatusProcessing)
	ms.byStatus[TaskStatusCompleted] = append(ms.byStatus[TaskStatusCompleted], taskID)

	return nil
}

// FailTask records the failure. While retries remain the task goes back to
// pending with linear backoff; otherwise it stays failed until MoveToDLQ.
func (ms *MemoryStorage) FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, exists := ms.tasks[taskID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if task.Status != TaskStatusProcessing {
		return fmt.Errorf("%w: %s", ErrTaskNotProcessing, taskID)
	}

	task.RetryCount++
	task.Error = &errorMsg
	task.LockedUntil = nil
	task.LockedBy = nil

	ms.removeFromStatusIndex(taskID, TaskStatusProcessing)
	if task.RetryCount >= task.MaxRetries {
		task.Status = TaskStatusFailed
		ms.byStatus[TaskStatusFailed] = append(ms.byStatus[TaskStatusFailed], taskID)
	} else {
		task.Status = TaskStatusPending
		ms.byStatus[TaskStatusPending] = append(ms.byStatus[TaskStatusPending], taskID)
		task.ScheduledAt = time.Now().Add(time.Duration(task.RetryCount) * retryBackoffUnit)
	}

	return nil
}

// MoveToDLQ parks a task in the dead letter queue and removes it from the
// main store.
func (ms *MemoryStorage) MoveToDLQ(ctx context.Context, taskID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, exists := ms.tasks[taskID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}

	dead := &DeadTask{
		ID:         uuid.New(),
		TaskID:     task.ID,
		Queue:      task.Queue,
		TaskName:   task.TaskName,
		Payload:    task.Payload,
		RetryCount: task.RetryCount,
		FailedAt:   time.Now(),
		CreatedAt:  task.CreatedAt,
	}
	if task.Error != nil {
		dead.Error = *task.Error
	}
	ms.dlq[dead.ID] = dead

	ms.removeFromStatusIndex(taskID, task.Status)
	delete(ms.tasks, taskID)

	return nil
}

// DeadTasks returns a snapshot of the dead letter queue.
func (ms *MemoryStorage) DeadTasks() []DeadTask {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	dead := make([]DeadTask, 0, len(ms.dlq))
	for _, d := range ms.dlq {
		dead = append(dead, *d)
	}
	return dead
}

// PendingCount reports how many tasks are waiting to be claimed.
func (ms *MemoryStorage) PendingCount() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.byStatus[TaskStatusPending])
}

func (ms *MemoryStorage) removeFromStatusIndex(taskID uuid.UUID, status TaskStatus) {
	ms.byStatus[status] = slices.DeleteFunc(ms.byStatus[status], func(id uuid.UUID) bool {
		return id == taskID
	})
}

// lockExpirationLoop recovers tasks claimed by workers that died without
// completing them: once a lock expires the task goes back to pending.
func (ms *MemoryStorage) lockExpirationLoop() {
	for {
		select {
		case <-ms.lockTicker.C:
			ms.expireLocks()
		case <-ms.done:
			return
		}
	}
}

func (ms *MemoryStorage) expireLocks() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	processing := slices.Clone(ms.byStatus[TaskStatusProcessing])
	for _, taskID := range processing {
		task := ms.tasks[taskID]
		if task.LockedUntil != nil && task.LockedUntil.Before(now) {
			task.Status = TaskStatusPending
			task.LockedUntil = nil
			task.LockedBy = nil

			ms.removeFromStatusIndex(taskID, TaskStatusProcessing)
			ms.byStatus[TaskStatusPending] = append(ms.byStatus[TaskStatusPending], taskID)
		}
	}
}

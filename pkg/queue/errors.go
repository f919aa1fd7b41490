package queue

import "errors"

var (
	// ErrRepositoryNil is returned when a nil repository is provided.
	ErrRepositoryNil = errors.New("repository cannot be nil")

	// ErrPayloadNil is returned when attempting to enqueue a nil payload.
	ErrPayloadNil = errors.New("payload cannot be nil")

	// ErrHandlerNotFound is returned when no handler is registered for a task.
	ErrHandlerNotFound = errors.New("no handler registered for task type")

	// ErrNoHandlers is returned when a worker starts with no handlers registered.
	ErrNoHandlers = errors.New("no task handlers registered")

	// ErrNoTaskToClaim signals an empty queue; the worker treats it as a
	// normal idle tick, not a failure.
	ErrNoTaskToClaim = errors.New("no task available to claim")

	// ErrTaskNotFound is returned for operations on an unknown task ID.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskNotProcessing is returned when completing or failing a task
	// that is not currently claimed.
	ErrTaskNotProcessing = errors.New("task is not in processing state")
)

package fanout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hausasoft/elearn-notify/pkg/compose"
	"github.com/hausasoft/elearn-notify/pkg/dispatch"
	"github.com/hausasoft/elearn-notify/pkg/event"
	"github.com/hausasoft/elearn-notify/pkg/logger"
	"github.com/hausasoft/elearn-notify/pkg/queue"
)

// Directory resolves recipient lists the composer cannot derive from an
// event: platform admins and a course's enrolled students. Implementations
// live next to the platform's user storage.
type Directory interface {
	Admins(ctx context.Context) ([]event.User, error)
	EnrolledStudents(ctx context.Context, courseID string) ([]event.User, error)
}

// DeliverEventTask is the queue payload carrying one domain event from the
// emitting request to the delivery worker.
type DeliverEventTask struct {
	Event event.Event `json:"event"`
}

// Enqueuer is the queue surface the Emitter needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, payload any, opts ...queue.EnqueueOption) error
}

// Emitter accepts domain events after their mutation has committed. Emit
// only validates and enqueues, so the caller's request path never waits on
// composition or delivery.
type Emitter struct {
	enqueuer Enqueuer
}

// NewEmitter creates an Emitter on top of a queue enqueuer.
func NewEmitter(enqueuer Enqueuer) *Emitter {
	return &Emitter{enqueuer: enqueuer}
}

// Emit validates the event and schedules it for delivery.
func (e *Emitter) Emit(ctx context.Context, evt event.Event) error {
	if err := evt.Validate(); err != nil {
		return err
	}
	if err := e.enqueuer.Enqueue(ctx, DeliverEventTask{Event: evt}); err != nil {
		return fmt.Errorf("failed to enqueue event %s: %w", evt.ID, err)
	}
	return nil
}

// Dispatcher is the delivery surface the handler needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg compose.Message) (map[dispatch.Channel]dispatch.Outcome, error)
}

// Composer is the composition surface the handler needs.
type Composer interface {
	Compose(evt event.Event, in compose.Inputs) ([]compose.Message, error)
}

// Handler processes queued events: resolve recipients, compose, dispatch.
type Handler struct {
	composer   Composer
	dispatcher Dispatcher
	directory  Directory
	log        *slog.Logger
}

// NewHandler creates the delivery handler.
func NewHandler(composer Composer, dispatcher Dispatcher, directory Directory, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		composer:   composer,
		dispatcher: dispatcher,
		directory:  directory,
		log:        log,
	}
}

// TaskHandler adapts the handler for worker registration.
func (h *Handler) TaskHandler() queue.Handler {
	return queue.NewTaskHandler(func(ctx context.Context, task DeliverEventTask) error {
		return h.Deliver(ctx, task.Event)
	})
}

// Deliver runs composition and dispatch for one event. The returned error
// reflects only persistence failures, so a queue retry re-attempts the inbox
// insert without being triggered by best-effort channel hiccups.
func (h *Handler) Deliver(ctx context.Context, evt event.Event) error {
	inputs, err := h.resolveInputs(ctx, evt)
	if err != nil {
		return err
	}

	msgs, err := h.composer.Compose(evt, inputs)
	if err != nil {
		// A malformed event stays malformed no matter how often the queue
		// re-runs it; drop it instead of burning retries.
		if errors.Is(err, event.ErrInvalidEvent) {
			h.log.ErrorContext(ctx, "dropping invalid event",
				logger.EventKind(string(evt.Kind)),
				logger.Error(err))
			return nil
		}
		return fmt.Errorf("failed to compose event %s: %w", evt.ID, err)
	}

	var failed int
	for _, msg := range msgs {
		if _, err := h.dispatcher.Dispatch(ctx, msg); err != nil {
			failed++
			h.log.ErrorContext(ctx, "notification dispatch failed",
				logger.EventKind(string(evt.Kind)),
				logger.UserID(msg.RecipientID),
				logger.Error(err))
		}
	}

	if failed > 0 {
		return fmt.Errorf("event %s: %d of %d messages failed to persist", evt.ID, failed, len(msgs))
	}

	h.log.DebugContext(ctx, "event delivered",
		logger.EventKind(string(evt.Kind)),
		slog.Int("messages", len(msgs)))
	return nil
}

func (h *Handler) resolveInputs(ctx context.Context, evt event.Event) (compose.Inputs, error) {
	var inputs compose.Inputs

	switch evt.Kind {
	case event.KindCourseSubmitted:
		admins, err := h.directory.Admins(ctx)
		if err != nil {
			return inputs, fmt.Errorf("failed to resolve admins for event %s: %w", evt.ID, err)
		}
		inputs.Admins = admins
	case event.KindLessonReleased:
		students, err := h.directory.EnrolledStudents(ctx, evt.Lesson.Course.ID)
		if err != nil {
			return inputs, fmt.Errorf("failed to resolve enrolled students for event %s: %w", evt.ID, err)
		}
		inputs.EnrolledStudents = students
	}

	return inputs, nil
}

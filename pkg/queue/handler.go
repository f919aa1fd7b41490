package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Handler processes tasks of one type, matched by Name against Task.TaskName.
type Handler interface {
	Name() string
	Handle(ctx context.Context, payload json.RawMessage) error
}

// TaskHandlerFunc processes a decoded payload of type T.
type TaskHandlerFunc[T any] func(ctx context.Context, payload T) error

// NewTaskHandler wraps a typed function as a Handler. The handler's name is
// derived from T's qualified struct name, matching what Enqueue derives from
// the payload.
func NewTaskHandler[T any](handler TaskHandlerFunc[T]) Handler {
	var payload T
	return &taskHandler[T]{
		name:    qualifiedStructName(payload),
		handler: handler,
	}
}

type taskHandler[T any] struct {
	name    string
	handler TaskHandlerFunc[T]
}

func (h *taskHandler[T]) Name() string {
	return h.name
}

func (h *taskHandler[T]) Handle(ctx context.Context, payload json.RawMessage) error {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return err
	}
	return h.handler(ctx, t)
}

func qualifiedStructName(v any) string {
	return strings.TrimLeft(fmt.Sprintf("%T", v), "*")
}

package realtime

import (
	"context"
	"sync"

	"github.com/hausasoft/elearn-notify/pkg/notifications"
)

// Publisher pushes a notification to a recipient's live subscribers.
// Returned count is the number of subscribers that received the payload;
// zero with a nil error means nobody was connected, which is not a failure.
// Delivery is fire-and-forget: nothing is queued for offline recipients.
type Publisher interface {
	Publish(ctx context.Context, recipientID string, n notifications.Notification) (int, error)
}

// Streamer opens live subscriptions for transport layers (SSE, WebSocket).
// Subscribe must reject a recipientID that does not match the authenticated
// identity; that check is a security boundary, not a convenience.
type Streamer interface {
	Subscribe(ctx context.Context, identity, recipientID string) (*Subscription, error)
}

// Subscription receives a recipient's notifications until closed. Safe for
// concurrent use.
type Subscription struct {
	ch      chan notifications.Notification
	onClose func()
	closed  bool
	mu      sync.RWMutex
}

func newSubscription(bufferSize int) *Subscription {
	return &Subscription{
		ch: make(chan notifications.Notification, bufferSize),
	}
}

// Receive returns the channel notifications arrive on. The channel is closed
// when the subscription closes; no more messages follow.
func (s *Subscription) Receive() <-chan notifications.Notification {
	return s.ch
}

// Close closes the subscription and releases resources. Idempotent.
func (s *Subscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ch)
	onClose := s.onClose
	s.mu.Unlock()

	if onClose != nil {
		onClose()
	}
	return nil
}

// send delivers non-blocking; a full buffer means the message is dropped for
// this subscriber rather than stalling the publisher.
func (s *Subscription) send(n notifications.Notification) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- n:
		return true
	default:
		return false
	}
}

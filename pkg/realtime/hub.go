package realtime

import (
	"context"
	"sync"

	"github.com/hausasoft/elearn-notify/pkg/notifications"
)

// Hub is the in-memory realtime transport: one subscriber set per recipient,
// non-blocking publishes that drop messages for slow consumers. All methods
// are safe for concurrent use. Suitable for single-process deployments; use
// RedisHub when multiple instances must share subscribers.
type Hub struct {
	recipients map[string]map[*Subscription]struct{}
	bufferSize int
	closed     bool
	mu         sync.RWMutex
	cleanupWg  sync.WaitGroup
}

// NewHub creates an in-memory hub. bufferSize is the per-subscription channel
// buffer; a minimum of 1 is enforced so sends stay non-blocking.
func NewHub(bufferSize int) *Hub {
	return &Hub{
		recipients: make(map[string]map[*Subscription]struct{}),
		bufferSize: max(bufferSize, 1),
	}
}

// Subscribe opens a subscription for recipientID on behalf of identity.
// The subscription is cleaned up when ctx is cancelled or Close is called.
func (h *Hub) Subscribe(ctx context.Context, identity, recipientID string) (*Subscription, error) {
	if identity == "" || identity != recipientID {
		return nil, ErrForbidden
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}

	sub := newSubscription(h.bufferSize)
	sub.onClose = func() { h.unsubscribe(recipientID, sub) }

	if h.recipients[recipientID] == nil {
		h.recipients[recipientID] = make(map[*Subscription]struct{})
	}
	h.recipients[recipientID][sub] = struct{}{}

	if ctx.Done() != nil {
		h.cleanupWg.Add(1)
		go func() {
			defer h.cleanupWg.Done()
			<-ctx.Done()
			_ = sub.Close()
		}()
	}

	return sub, nil
}

// Publish sends a notification to all of the recipient's live subscribers
// and returns the number that received it. Zero subscribers is a no-op,
// not an error. Slow subscribers have the message dropped.
func (h *Hub) Publish(ctx context.Context, recipientID string, n notifications.Notification) (int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return 0, nil
	}

	delivered := 0
	for sub := range h.recipients[recipientID] {
		if sub.send(n) {
			delivered++
		}
	}

	return delivered, nil
}

// SubscriberCount reports the number of live subscriptions for a recipient.
func (h *Hub) SubscriberCount(recipientID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.recipients[recipientID])
}

// Close shuts down the hub and closes all subscriptions. Idempotent.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true

	var subs []*Subscription
	for _, set := range h.recipients {
		for sub := range set {
			subs = append(subs, sub)
		}
	}
	clear(h.recipients)
	h.mu.Unlock()

	// Close outside the lock: Subscription.Close calls back into
	// unsubscribe, which takes the hub lock.
	for _, sub := range subs {
		_ = sub.Close()
	}

	h.cleanupWg.Wait()
	return nil
}

func (h *Hub) unsubscribe(recipientID string, sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.recipients[recipientID]
	delete(set, sub)
	if len(set) == 0 {
		delete(h.recipients, recipientID)
	}
}

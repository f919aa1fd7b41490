package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/hausasoft/elearn-notify/pkg/logger"
	"github.com/hausasoft/elearn-notify/pkg/notifications"
)

// RedisHub is the Redis pub/sub realtime transport for multi-instance
// deployments: any instance can publish, subscribers on any instance
// receive. Redis PUBLISH reports the receiver count, which maps directly to
// the delivered-count contract.
type RedisHub struct {
	rdb        *redis.Client
	bufferSize int
	logger     *slog.Logger
}

// RedisHubOption configures a RedisHub.
type RedisHubOption func(*RedisHub)

// WithRedisHubLogger sets the logger for the RedisHub.
func WithRedisHubLogger(log *slog.Logger) RedisHubOption {
	return func(h *RedisHub) {
		if log != nil {
			h.logger = log
		}
	}
}

// NewRedisHub creates a Redis-backed hub. bufferSize is the per-subscription
// channel buffer; a minimum of 1 is enforced.
func NewRedisHub(rdb *redis.Client, bufferSize int, opts ...RedisHubOption) *RedisHub {
	h := &RedisHub{
		rdb:        rdb,
		bufferSize: max(bufferSize, 1),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func channelFor(recipientID string) string {
	return "notify:user:" + recipientID
}

// Publish sends the notification to the recipient's Redis channel and
// returns the number of subscribers that received it.
func (h *RedisHub) Publish(ctx context.Context, recipientID string, n notifications.Notification) (int, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal notification %s: %w", n.ID, err)
	}

	received, err := h.rdb.Publish(ctx, channelFor(recipientID), payload).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to publish notification %s: %w", n.ID, err)
	}

	return int(received), nil
}

// Subscribe opens a subscription backed by a Redis channel. The subscription
// closes when ctx is cancelled or Close is called; the underlying Redis
// subscription is released with it.
func (h *RedisHub) Subscribe(ctx context.Context, identity, recipientID string) (*Subscription, error) {
	if identity == "" || identity != recipientID {
		return nil, ErrForbidden
	}

	pubsub := h.rdb.Subscribe(ctx, channelFor(recipientID))

	// Confirm the subscription before returning so publishes after Subscribe
	// are not lost to a race with channel setup.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe recipient %s: %w", recipientID, err)
	}

	sub := newSubscription(h.bufferSize)
	sub.onClose = func() { _ = pubsub.Close() }

	go func() {
		defer func() { _ = sub.Close() }()
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var n notifications.Notification
				if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
					h.logger.LogAttrs(ctx, slog.LevelWarn, "dropping undecodable realtime payload",
						logger.UserID(recipientID),
						logger.Error(err),
					)
					continue
				}
				sub.send(n)
			}
		}
	}()

	return sub, nil
}

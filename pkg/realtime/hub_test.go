package realtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hausasoft/elearn-notify/pkg/notifications"
	"github.com/hausasoft/elearn-notify/pkg/realtime"
)

func notif(id, userID string) notifications.Notification {
	return notifications.Notification{
		ID:        id,
		UserID:    userID,
		Category:  notifications.CategoryInfo,
		Message:   "hello",
		CreatedAt: time.Now(),
	}
}

func TestHub_PublishToSubscriber(t *testing.T) {
	t.Parallel()

	hub := realtime.NewHub(8)
	defer hub.Close()

	sub, err := hub.Subscribe(context.Background(), "u1", "u1")
	require.NoError(t, err)
	defer sub.Close()

	delivered, err := hub.Publish(context.Background(), "u1", notif("n1", "u1"))
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)

	select {
	case got := <-sub.Receive():
		assert.Equal(t, "n1", got.ID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
	}
}

func TestHub_PublishWithoutSubscriberIsNoop(t *testing.T) {
	t.Parallel()

	hub := realtime.NewHub(8)
	defer hub.Close()

	delivered, err := hub.Publish(context.Background(), "nobody", notif("n1", "nobody"))
	require.NoError(t, err)
	assert.Zero(t, delivered)
}

func TestHub_SubscribeIdentityMismatch(t *testing.T) {
	t.Parallel()

	hub := realtime.NewHub(8)
	defer hub.Close()

	_, err := hub.Subscribe(context.Background(), "attacker", "victim")
	assert.ErrorIs(t, err, realtime.ErrForbidden)

	_, err = hub.Subscribe(context.Background(), "", "")
	assert.ErrorIs(t, err, realtime.ErrForbidden)
}

func TestHub_PublishIsScopedToRecipient(t *testing.T) {
	t.Parallel()

	hub := realtime.NewHub(8)
	defer hub.Close()

	other, err := hub.Subscribe(context.Background(), "u2", "u2")
	require.NoError(t, err)
	defer other.Close()

	delivered, err := hub.Publish(context.Background(), "u1", notif("n1", "u1"))
	require.NoError(t, err)
	assert.Zero(t, delivered)

	select {
	case n, ok := <-other.Receive():
		if ok {
			t.Fatalf("unexpected notification %s for other recipient", n.ID)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_SlowSubscriberDropsMessages(t *testing.T) {
	t.Parallel()

	hub := realtime.NewHub(1)
	defer hub.Close()

	sub, err := hub.Subscribe(context.Background(), "u1", "u1")
	require.NoError(t, err)
	defer sub.Close()

	first, err := hub.Publish(context.Background(), "u1", notif("n1", "u1"))
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	// Buffer full, nobody draining: the second publish drops.
	second, err := hub.Publish(context.Background(), "u1", notif("n2", "u1"))
	require.NoError(t, err)
	assert.Zero(t, second)
}

func TestHub_ContextCancelCleansUp(t *testing.T) {
	t.Parallel()

	hub := realtime.NewHub(8)
	defer hub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := hub.Subscribe(ctx, "u1", "u1")
	require.NoError(t, err)

	require.Equal(t, 1, hub.SubscriberCount("u1"))

	cancel()

	require.Eventually(t, func() bool {
		return hub.SubscriberCount("u1") == 0
	}, time.Second, 10*time.Millisecond)

	// Receive channel is closed after cleanup.
	_, ok := <-sub.Receive()
	assert.False(t, ok)
}

func TestHub_Close(t *testing.T) {
	t.Parallel()

	hub := realtime.NewHub(8)

	sub, err := hub.Subscribe(context.Background(), "u1", "u1")
	require.NoError(t, err)

	require.NoError(t, hub.Close())
	require.NoError(t, hub.Close(), "close is idempotent")

	_, ok := <-sub.Receive()
	assert.False(t, ok)

	_, err = hub.Subscribe(context.Background(), "u1", "u1")
	assert.ErrorIs(t, err, realtime.ErrHubClosed)

	delivered, err := hub.Publish(context.Background(), "u1", notif("n3", "u1"))
	require.NoError(t, err)
	assert.Zero(t, delivered)
}

func TestSubscription_CloseIdempotent(t *testing.T) {
	t.Parallel()

	hub := realtime.NewHub(8)
	defer hub.Close()

	sub, err := hub.Subscribe(context.Background(), "u1", "u1")
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
	assert.Zero(t, hub.SubscriberCount("u1"))
}

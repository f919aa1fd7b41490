package notifications_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hausasoft/elearn-notify/pkg/notifications"
)

func TestInbox_MarkRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := notifications.NewMemoryStorage()
	inbox := notifications.NewInbox(storage)

	n := newNotif("owner", time.Now())
	require.NoError(t, storage.Create(ctx, n))

	t.Run("owner marks read", func(t *testing.T) {
		got, err := inbox.MarkRead(ctx, "owner", n.ID)
		require.NoError(t, err)
		assert.True(t, got.Read)
		assert.NotNil(t, got.ReadAt)
	})

	t.Run("idempotent second call", func(t *testing.T) {
		got, err := inbox.MarkRead(ctx, "owner", n.ID)
		require.NoError(t, err)
		assert.True(t, got.Read)
	})

	t.Run("non-owner is forbidden and record unchanged", func(t *testing.T) {
		other := newNotif("owner", time.Now())
		require.NoError(t, storage.Create(ctx, other))

		_, err := inbox.MarkRead(ctx, "intruder", other.ID)
		assert.ErrorIs(t, err, notifications.ErrForbidden)

		got, err := storage.Get(ctx, other.ID)
		require.NoError(t, err)
		assert.False(t, got.Read)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := inbox.MarkRead(ctx, "owner", "missing")
		assert.ErrorIs(t, err, notifications.ErrNotFound)
	})
}

func TestInbox_ListAndCount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := notifications.NewMemoryStorage()
	inbox := notifications.NewInbox(storage)

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	first := newNotif("u1", base)
	second := newNotif("u1", base.Add(time.Minute))
	require.NoError(t, storage.Create(ctx, first))
	require.NoError(t, storage.Create(ctx, second))

	list, err := inbox.List(ctx, "u1", notifications.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	count, err := inbox.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

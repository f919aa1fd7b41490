package inbox_test

import (
	"bufio"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hausasoft/elearn-notify/modules/inbox"
	"github.com/hausasoft/elearn-notify/pkg/notifications"
	"github.com/hausasoft/elearn-notify/pkg/realtime"
)

func seedNotification(t *testing.T, storage notifications.Storage, id, userID string, createdAt time.Time) {
	t.Helper()
	require.NoError(t, storage.Create(t.Context(), notifications.Notification{
		ID:        id,
		UserID:    userID,
		Category:  notifications.CategoryInfo,
		Message:   "You have been enrolled in Hausa 101",
		CreatedAt: createdAt,
	}))
}

// newTestServer mounts the inbox router behind header-based identity, the
// way the platform's session middleware would.
func newTestServer(t *testing.T, storage notifications.Storage, streamer realtime.Streamer) *httptest.Server {
	t.Helper()

	svc := inbox.NewService(notifications.NewInbox(storage), streamer)

	r := chi.NewRouter()
	r.Route("/notifications", func(r chi.Router) {
		r.Use(inbox.IdentityMiddleware(func(r *http.Request) (string, error) {
			if id := r.Header.Get("X-User-ID"); id != "" {
				return id, nil
			}
			return "", errors.New("no session")
		}))
		r.Mount("/", svc.Router())
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, srv *httptest.Server, method, path, userID string) *http.Response {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), method, srv.URL+path, nil)
	require.NoError(t, err)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestListNotifications(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	storage := notifications.NewMemoryStorage()
	seedNotification(t, storage, "n-old", "user-1", base)
	seedNotification(t, storage, "n-new", "user-1", base.Add(time.Hour))
	seedNotification(t, storage, "n-other", "user-2", base)

	srv := newTestServer(t, storage, nil)
	resp := doRequest(t, srv, http.MethodGet, "/notifications/", "user-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Notifications []notifications.Notification `json:"notifications"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Notifications, 2)
	assert.Equal(t, "n-new", body.Notifications[0].ID, "newest first")
	assert.Equal(t, "n-old", body.Notifications[1].ID)
}

func TestListNotificationsFilters(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	storage := notifications.NewMemoryStorage()
	seedNotification(t, storage, "n-1", "user-1", base)
	seedNotification(t, storage, "n-2", "user-1", base.Add(time.Hour))

	inboxSvc := notifications.NewInbox(storage)
	_, err := inboxSvc.MarkRead(t.Context(), "user-1", "n-1")
	require.NoError(t, err)

	srv := newTestServer(t, storage, nil)

	t.Run("unread only", func(t *testing.T) {
		resp := doRequest(t, srv, http.MethodGet, "/notifications/?unread=true", "user-1")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Notifications []notifications.Notification `json:"notifications"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Notifications, 1)
		assert.Equal(t, "n-2", body.Notifications[0].ID)
	})

	t.Run("limit and offset", func(t *testing.T) {
		resp := doRequest(t, srv, http.MethodGet, "/notifications/?limit=1&offset=1", "user-1")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Notifications []notifications.Notification `json:"notifications"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Notifications, 1)
		assert.Equal(t, "n-1", body.Notifications[0].ID)
	})

	t.Run("invalid limit", func(t *testing.T) {
		resp := doRequest(t, srv, http.MethodGet, "/notifications/?limit=nope", "user-1")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown category", func(t *testing.T) {
		resp := doRequest(t, srv, http.MethodGet, "/notifications/?category=bogus", "user-1")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUnreadCount(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	storage := notifications.NewMemoryStorage()
	seedNotification(t, storage, "n-1", "user-1", base)
	seedNotification(t, storage, "n-2", "user-1", base.Add(time.Minute))

	srv := newTestServer(t, storage, nil)
	resp := doRequest(t, srv, http.MethodGet, "/notifications/unread", "user-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Unread int `json:"unread"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Unread)
}

func TestMarkRead(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	storage := notifications.NewMemoryStorage()
	seedNotification(t, storage, "n-1", "user-1", base)

	srv := newTestServer(t, storage, nil)

	t.Run("marks and is idempotent", func(t *testing.T) {
		resp := doRequest(t, srv, http.MethodPost, "/notifications/n-1/read", "user-1")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var record notifications.Notification
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
		assert.True(t, record.Read)
		require.NotNil(t, record.ReadAt)
		firstReadAt := *record.ReadAt

		// Second call succeeds and keeps the original ReadAt.
		resp = doRequest(t, srv, http.MethodPost, "/notifications/n-1/read", "user-1")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
		assert.True(t, record.Read)
		assert.Equal(t, firstReadAt, *record.ReadAt)
	})

	t.Run("unknown id", func(t *testing.T) {
		resp := doRequest(t, srv, http.MethodPost, "/notifications/nope/read", "user-1")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("foreign notification", func(t *testing.T) {
		resp := doRequest(t, srv, http.MethodPost, "/notifications/n-1/read", "user-2")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		// The record is untouched for its owner.
		n, err := storage.Get(t.Context(), "n-1")
		require.NoError(t, err)
		assert.Equal(t, "user-1", n.UserID)
	})
}

func TestUnauthenticatedRequests(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, notifications.NewMemoryStorage(), nil)

	for _, path := range []string{"/notifications/", "/notifications/unread"} {
		resp := doRequest(t, srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestStream(t *testing.T) {
	t.Parallel()

	hub := realtime.NewHub(8)
	t.Cleanup(func() { _ = hub.Close() })

	storage := notifications.NewMemoryStorage()
	srv := newTestServer(t, storage, hub)

	resp := doRequest(t, srv, http.MethodGet, "/notifications/stream", "user-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// Wait for the subscription to register, then push a notification.
	require.Eventually(t, func() bool {
		return hub.SubscriberCount("user-1") == 1
	}, 2*time.Second, 10*time.Millisecond)

	_, err := hub.Publish(t.Context(), "user-1", notifications.Notification{
		ID:       "n-live",
		UserID:   "user-1",
		Category: notifications.CategoryInfo,
		Message:  "New lesson \"Greetings\" has been released in Hausa 101",
	})
	require.NoError(t, err)

	scanner := bufio.NewScanner(resp.Body)
	var eventLine, dataLine string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			eventLine = line
		case strings.HasPrefix(line, "data: "):
			dataLine = line
		}
		if dataLine != "" {
			break
		}
	}

	assert.Equal(t, "event: notification", eventLine)

	var n notifications.Notification
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(dataLine, "data: ")), &n))
	assert.Equal(t, "n-live", n.ID)
}

func TestStreamRejectsForeignRecipient(t *testing.T) {
	t.Parallel()

	hub := realtime.NewHub(8)
	t.Cleanup(func() { _ = hub.Close() })

	srv := newTestServer(t, notifications.NewMemoryStorage(), hub)
	resp := doRequest(t, srv, http.MethodGet, "/notifications/stream?recipient_id=user-2", "user-1")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

package inbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hausasoft/elearn-notify/pkg/logger"
	"github.com/hausasoft/elearn-notify/pkg/realtime"
)

const heartbeatInterval = 25 * time.Second

// handleStream pushes the user's notifications over Server-Sent Events
// until the client disconnects. The subscription is scoped to the
// authenticated identity; asking for someone else's stream is rejected.
func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	userID, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	recipientID := r.URL.Query().Get("recipient_id")
	if recipientID == "" {
		recipientID = userID
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	sub, err := s.streamer.Subscribe(r.Context(), userID, recipientID)
	switch {
	case errors.Is(err, realtime.ErrForbidden):
		writeError(w, http.StatusForbidden, "stream belongs to another user")
		return
	case err != nil:
		s.log.ErrorContext(r.Context(), "failed to open notification stream",
			logger.UserID(userID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to open notification stream")
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			// Comment line keeps intermediaries from closing an idle stream.
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case n, ok := <-sub.Receive():
			if !ok {
				return
			}
			payload, err := json.Marshal(n)
			if err != nil {
				s.log.ErrorContext(r.Context(), "failed to encode notification for stream",
					logger.NotificationID(n.ID), logger.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "event: notification\ndata: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

package main

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hausasoft/elearn-notify/pkg/event"
	"github.com/hausasoft/elearn-notify/pkg/fanout"
	"github.com/hausasoft/elearn-notify/pkg/logger"
)

// ingestHandler accepts domain events from other platform services and hands
// them to the emitter. The response is 202: delivery happens asynchronously
// on the queue worker.
func ingestHandler(emitter *fanout.Emitter, token string, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token != "" {
			provided := r.Header.Get("X-Internal-Token")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				writeJSONError(w, http.StatusUnauthorized, "invalid internal token")
				return
			}
		}

		var evt event.Event
		if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid event payload")
			return
		}

		if err := emitter.Emit(r.Context(), evt); err != nil {
			if errors.Is(err, event.ErrInvalidEvent) {
				writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			log.ErrorContext(r.Context(), "failed to accept event",
				logger.EventKind(string(evt.Kind)), logger.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "failed to accept event")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "accepted", "event_id": evt.ID})
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

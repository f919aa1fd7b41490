package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hausasoft/elearn-notify/pkg/logger"
)

// HealthCheckHandler serves liveness and readiness from one endpoint. With
// no checks it answers 200 {"status":"alive"}. With checks it runs each one
// against the request context and answers 200 {"status":"ready"} when all
// pass, or 503 with the failing check names when any does not.
func HealthCheckHandler(log *slog.Logger, checks map[string]func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if len(checks) == 0 {
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
			return
		}

		var failing []string
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed",
					slog.String("check", name), logger.Error(err))
				failing = append(failing, name)
			}
		}

		if len(failing) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "not_ready", "failing": failing})
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	}
}

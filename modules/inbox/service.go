package inbox

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hausasoft/elearn-notify/pkg/logger"
	"github.com/hausasoft/elearn-notify/pkg/notifications"
	"github.com/hausasoft/elearn-notify/pkg/realtime"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Service is the HTTP surface of the notification inbox: listing, unread
// count, mark-as-read, and a live SSE stream. All endpoints operate on the
// authenticated user only.
type Service struct {
	inbox    *notifications.Inbox
	streamer realtime.Streamer
	log      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates the inbox HTTP service. streamer may be nil, in which
// case the stream endpoint responds 404.
func NewService(inbox *notifications.Inbox, streamer realtime.Streamer, opts ...Option) *Service {
	s := &Service{
		inbox:    inbox,
		streamer: streamer,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the inbox routes, intended to be mounted under a path like
// /notifications behind the platform's auth middleware.
func (s *Service) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.handleList)
	r.Get("/unread", s.handleUnread)
	r.Post("/{id}/read", s.handleMarkRead)
	if s.streamer != nil {
		r.Get("/stream", s.handleStream)
	}

	return r
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	opts, err := listOptionsFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.inbox.List(r.Context(), userID, opts)
	if err != nil {
		s.log.ErrorContext(r.Context(), "failed to list notifications",
			logger.UserID(userID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"notifications": records})
}

func (s *Service) handleUnread(w http.ResponseWriter, r *http.Request) {
	userID, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	count, err := s.inbox.CountUnread(r.Context(), userID)
	if err != nil {
		s.log.ErrorContext(r.Context(), "failed to count unread notifications",
			logger.UserID(userID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to count unread notifications")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"unread": count})
}

func (s *Service) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	notifID := chi.URLParam(r, "id")
	record, err := s.inbox.MarkRead(r.Context(), userID, notifID)
	switch {
	case errors.Is(err, notifications.ErrNotFound):
		writeError(w, http.StatusNotFound, "notification not found")
		return
	case errors.Is(err, notifications.ErrForbidden):
		writeError(w, http.StatusForbidden, "notification belongs to another user")
		return
	case err != nil:
		s.log.ErrorContext(r.Context(), "failed to mark notification as read",
			logger.UserID(userID), logger.NotificationID(notifID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to mark notification as read")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func listOptionsFromQuery(r *http.Request) (notifications.ListOptions, error) {
	opts := notifications.ListOptions{Limit: defaultListLimit}
	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return opts, errors.New("limit must be a positive integer")
		}
		opts.Limit = min(limit, maxListLimit)
	}

	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return opts, errors.New("offset must be a non-negative integer")
		}
		opts.Offset = offset
	}

	if raw := q.Get("unread"); raw != "" {
		unread, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, errors.New("unread must be a boolean")
		}
		opts.OnlyUnread = unread
	}

	for _, raw := range q["category"] {
		category := notifications.Category(raw)
		if !category.Valid() {
			return opts, errors.New("unknown category: " + raw)
		}
		opts.Categories = append(opts.Categories, category)
	}

	return opts, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

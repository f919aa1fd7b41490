package notifications

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// Suitable for development and testing.
type MemoryStorage struct {
	byUser map[string][]*Notification // userID -> notifications
	byID   map[string]*Notification
	mu     sync.RWMutex
}

// NewMemoryStorage creates a new in-memory notification storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		byUser: make(map[string][]*Notification),
		byID:   make(map[string]*Notification),
	}
}

func (s *MemoryStorage) Create(ctx context.Context, notif Notification) error {
	if notif.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidNotification)
	}
	if notif.UserID == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidNotification)
	}
	if !notif.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidNotification, notif.Category)
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[notif.ID]; exists {
		return fmt.Errorf("%w: duplicate id %s", ErrInvalidNotification, notif.ID)
	}

	stored := notif
	s.byID[notif.ID] = &stored
	s.byUser[notif.UserID] = append(s.byUser[notif.UserID], &stored)
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, notifID string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, exists := s.byID[notifID]
	if !exists {
		return nil, ErrNotFound
	}

	// Return a copy to prevent external mutation of stored data.
	copied := *n
	return &copied, nil
}

func (s *MemoryStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []Notification
	for _, n := range s.byUser[userID] {
		if opts.OnlyUnread && n.Read {
			continue
		}
		if len(opts.Categories) > 0 {
			found := false
			for _, c := range opts.Categories {
				if n.Category == c {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		filtered = append(filtered, *n)
	}

	// Newest first; ties broken by ID for a stable order.
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].ID > filtered[j].ID
		}
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	start := opts.Offset
	if start > len(filtered) {
		return []Notification{}, nil
	}

	end := start + opts.Limit
	if opts.Limit == 0 || end > len(filtered) {
		end = len(filtered)
	}

	return filtered[start:end], nil
}

func (s *MemoryStorage) MarkRead(ctx context.Context, notifID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, exists := s.byID[notifID]
	if !exists {
		return ErrNotFound
	}

	n.MarkAsRead()
	return nil
}

func (s *MemoryStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.byUser[userID] {
		if !n.Read {
			count++
		}
	}

	return count, nil
}

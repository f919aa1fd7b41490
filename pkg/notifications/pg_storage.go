package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStorage is the Postgres implementation of the Storage interface and the
// system of record for the inbox. Schema lives in internal/db/migrations.
type PGStorage struct {
	pool *pgxpool.Pool
}

// NewPGStorage creates a Postgres-backed notification storage.
func NewPGStorage(pool *pgxpool.Pool) *PGStorage {
	return &PGStorage{pool: pool}
}

func (s *PGStorage) Create(ctx context.Context, notif Notification) error {
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

	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, category, message, link, read, read_at, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)`,
		notif.ID, notif.UserID, string(notif.Category), notif.Message, notif.Link,
		notif.Read, notif.ReadAt, notif.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification %s: %w", notif.ID, err)
	}
	return nil
}

func (s *PGStorage) Get(ctx context.Context, notifID string) (*Notification, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, category, message, COALESCE(link, ''), read, read_at, created_at
		FROM notifications
		WHERE id = $1`,
		notifID,
	)

	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get notification %s: %w", notifID, err)
	}
	return n, nil
}

func (s *PGStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, user_id, category, message, COALESCE(link, ''), read, read_at, created_at
		FROM notifications
		WHERE user_id = $1`)

	args := []any{userID}

	if opts.OnlyUnread {
		sb.WriteString(" AND NOT read")
	}
	if len(opts.Categories) > 0 {
		cats := make([]string, len(opts.Categories))
		for i, c := range opts.Categories {
			cats[i] = string(c)
		}
		args = append(args, cats)
		fmt.Fprintf(&sb, " AND category = ANY($%d)", len(args))
	}

	// Newest first; ID breaks ties so pagination is stable.
	sb.WriteString(" ORDER BY created_at DESC, id DESC")

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for user %s: %w", userID, err)
	}
	defer rows.Close()

	result := []Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		result = append(result, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notification rows: %w", err)
	}

	return result, nil
}

func (s *PGStorage) MarkRead(ctx context.Context, notifID string) error {
	// The read flag is monotonic: the WHERE guard keeps read_at at its first
	// value on repeated calls.
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET read = TRUE, read_at = now()
		WHERE id = $1 AND NOT read`,
		notifID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification %s as read: %w", notifID, err)
	}
	if tag.RowsAffected() == 0 {
		// Either already read (fine) or missing (not fine).
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM notifications WHERE id = $1)`, notifID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check notification %s: %w", notifID, err)
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}

func (s *PGStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM notifications
		WHERE user_id = $1 AND NOT read`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications for user %s: %w", userID, err)
	}
	return count, nil
}

func scanNotification(row pgx.Row) (*Notification, error) {
	var (
		n        Notification
		category string
	)
	if err := row.Scan(&n.ID, &n.UserID, &category, &n.Message, &n.Link, &n.Read, &n.ReadAt, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Category = Category(category)
	return &n, nil
}

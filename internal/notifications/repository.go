package notifications

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no notification matches.
var ErrNotFound = errors.New("notifications: not found")

// RepositoryPort defines data access methods for the notification queue.
type RepositoryPort interface {
	Enqueue(ctx context.Context, notification *Notification) (*Notification, error)
	Dequeue(ctx context.Context, batchSize int) ([]Notification, error)
	MarkProcessed(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, reason string) error
	List(ctx context.Context, status string, limit int) ([]Notification, error)
}

// Repository provides PostgreSQL backed persistence. Dequeue claims rows by
// flipping them to processing in the same statement that locks them, so
// concurrent drainers never double-deliver.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const notificationColumns = `id, channel, recipient, subject, body, status, attempts, last_error, created_at, processed_at`

// Enqueue inserts a pending notification.
func (r *Repository) Enqueue(ctx context.Context, notification *Notification) (*Notification, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (channel, recipient, subject, body, status, attempts, last_error, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, '', now())
		RETURNING `+notificationColumns,
		notification.Channel, notification.Recipient, notification.Subject, notification.Body, StatusPending,
	)
	return scanNotification(row)
}

// Dequeue claims up to batchSize pending notifications in one statement:
// SKIP LOCKED keeps concurrent claimers off rows mid-claim, and the status
// flip to processing keeps them off rows already claimed once the statement
// commits. A claimed row leaves processing only through MarkProcessed or
// MarkFailed.
func (r *Repository) Dequeue(ctx context.Context, batchSize int) ([]Notification, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE notifications SET status = $3
		WHERE id IN (
			SELECT id FROM notifications
			WHERE status = $1
			ORDER BY created_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+notificationColumns,
		StatusPending, batchSize, StatusProcessing,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var notifications []Notification
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *notification)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkProcessed finalises a delivered notification.
func (r *Repository) MarkProcessed(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET status = $2, attempts = attempts + 1, processed_at = now()
		WHERE id = $1`,
		id, StatusProcessed,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkFailed records a delivery failure with its reason.
func (r *Repository) MarkFailed(ctx context.Context, id int64, reason string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET status = $2, attempts = attempts + 1, last_error = $3, processed_at = now()
		WHERE id = $1`,
		id, StatusFailed, reason,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns recent notifications, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status string, limit int) ([]Notification, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status == "" {
		rows, err = r.pool.Query(ctx,
			`SELECT `+notificationColumns+` FROM notifications ORDER BY created_at DESC LIMIT $1`, limit)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT `+notificationColumns+` FROM notifications WHERE status = $1 ORDER BY created_at DESC LIMIT $2`, status, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var notifications []Notification
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *notification)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

func scanNotification(row pgx.Row) (*Notification, error) {
	var notification Notification
	err := row.Scan(
		&notification.ID, &notification.Channel, &notification.Recipient, &notification.Subject,
		&notification.Body, &notification.Status, &notification.Attempts, &notification.LastError,
		&notification.CreatedAt, &notification.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &notification, nil
}

var _ RepositoryPort = (*Repository)(nil)

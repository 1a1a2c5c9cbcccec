package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/traveldesk/travel-approval/internal/application/port"
	"github.com/traveldesk/travel-approval/internal/domain/entity"
	"github.com/traveldesk/travel-approval/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// NotificationRepository implements port.NotificationRepository over the
// notifications outbox table.
type NotificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) port.NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a pending outbox row
func (r *NotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	query := `
		INSERT INTO notifications (user_id, subject, body, link, status)
		VALUES (?, ?, ?, ?, ?)
	`

	var link sql.NullString
	if notification.Link != "" {
		link = sql.NullString{String: notification.Link, Valid: true}
	}

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		notification.UserID,
		notification.Subject,
		notification.Body,
		link,
		notification.Status,
	)
	if err != nil {
		r.logger.Error("Failed to create notification",
			zap.Int64("user_id", notification.UserID),
			zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	notification.ID = id
	return nil
}

// GetPending retrieves the oldest pending notifications, up to limit
func (r *NotificationRepository) GetPending(ctx context.Context, limit int) ([]*entity.Notification, error) {
	query := `
		SELECT id, user_id, subject, body, link, status, error_message, sent_at, created_at, updated_at
		FROM notifications
		WHERE status = ?
		ORDER BY id
		LIMIT ?
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, entity.NotificationStatusPending, limit)
	if err != nil {
		r.logger.Error("Failed to get pending notifications", zap.Error(err))
		return nil, fmt.Errorf("failed to get pending notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		var link, errorMessage sql.NullString
		var sentAt sql.NullTime

		err := rows.Scan(
			&n.ID, &n.UserID, &n.Subject, &n.Body, &link,
			&n.Status, &errorMessage, &sentAt, &n.CreatedAt, &n.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if link.Valid {
			n.Link = link.String
		}
		if errorMessage.Valid {
			n.ErrorMessage = errorMessage.String
		}
		if sentAt.Valid {
			t := sentAt.Time
			n.SentAt = &t
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

// MarkSent records a successful delivery
func (r *NotificationRepository) MarkSent(ctx context.Context, id int64, sentAt time.Time) error {
	query := `
		UPDATE notifications
		SET status = ?, sent_at = ?, error_message = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		entity.NotificationStatusSent, sentAt.UTC(), id)
	if err != nil {
		r.logger.Error("Failed to mark notification sent", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	return nil
}

// MarkFailed records a failed delivery attempt
func (r *NotificationRepository) MarkFailed(ctx context.Context, id int64, errorMsg string) error {
	query := `
		UPDATE notifications
		SET status = ?, error_message = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		entity.NotificationStatusFailed, errorMsg, id)
	if err != nil {
		r.logger.Error("Failed to mark notification failed", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark notification failed: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.NotificationRepository = (*NotificationRepository)(nil)

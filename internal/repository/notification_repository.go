package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dkoroteev/eventcrew-backend/internal/models"
)

// NotificationRepository отвечает за работу с таблицей notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository создаёт экземпляр репозитория.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create сохраняет уведомление.
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, type, payload)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		notification.UserID, notification.Type, notification.Payload,
	).Scan(&notification.ID, &notification.CreatedAt); err != nil {
		return fmt.Errorf("notification repository: create %w", err)
	}

	return nil
}

// ListByUser возвращает уведомления пользователя от новых к старым.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, cursor *uuid.UUID, limit int) ([]models.Notification, error) {
	query := `
		SELECT * FROM notifications
		WHERE user_id = $1
			AND ($2::uuid IS NULL OR (created_at, id) < (SELECT created_at, id FROM notifications WHERE id = $2))
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, userID, cursor, limit); err != nil {
		return nil, fmt.Errorf("notification repository: list by user %w", err)
	}

	return notifications, nil
}

// MarkRead помечает уведомления пользователя прочитанными.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`
		UPDATE notifications SET read_at = NOW()
		WHERE user_id = ? AND read_at IS NULL AND id IN (?)
	`, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("notification repository: mark read build %w", err)
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("notification repository: mark read %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("notification repository: mark read rows affected %w", err)
	}

	return affected, nil
}

// CountUnread возвращает число непрочитанных уведомлений.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read_at IS NULL
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("notification repository: count unread %w", err)
	}

	return count, nil
}

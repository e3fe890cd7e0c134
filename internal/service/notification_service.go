package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/dkoroteev/eventcrew-backend/internal/models"
)

// NotificationRepo описывает взаимодействие сервиса с хранилищем уведомлений.
type NotificationRepo interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, cursor *uuid.UUID, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

// NotificationService содержит бизнес-логику работы с уведомлениями.
type NotificationService struct {
	repo NotificationRepo
}

// NotificationPage страница уведомлений с курсором продолжения.
type NotificationPage struct {
	Items      []models.Notification `json:"items"`
	NextCursor *uuid.UUID            `json:"next_cursor,omitempty"`
}

// NewNotificationService создаёт новый сервис уведомлений.
func NewNotificationService(repo NotificationRepo) *NotificationService {
	return &NotificationService{repo: repo}
}

// CreateNotification создаёт новое уведомление.
func (s *NotificationService) CreateNotification(ctx context.Context, userID uuid.UUID, event string, data interface{}) (*models.Notification, error) {
	payload := map[string]interface{}{
		"event": event,
		"data":  data,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("notification service: marshal payload %w", err)
	}

	notification := &models.Notification{
		UserID:  userID,
		Type:    event,
		Payload: payloadBytes,
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, err
	}

	return notification, nil
}

// ListNotifications возвращает страницу уведомлений пользователя.
func (s *NotificationService) ListNotifications(ctx context.Context, userID uuid.UUID, cursor *uuid.UUID, limit int) (*NotificationPage, error) {
	limit = clampLimit(limit)
	items, err := s.repo.ListByUser(ctx, userID, cursor, limit+1)
	if err != nil {
		return nil, err
	}

	page := &NotificationPage{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		page.NextCursor = &page.Items[limit-1].ID
	}

	return page, nil
}

// MarkRead помечает уведомления пользователя прочитанными и возвращает
// число затронутых записей. Чужие уведомления не затрагиваются.
func (s *NotificationService) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	return s.repo.MarkRead(ctx, userID, ids)
}

// CountUnread возвращает количество непрочитанных уведомлений.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dkoroteev/eventcrew-backend/internal/models"
	"github.com/dkoroteev/eventcrew-backend/internal/pkg/apperror"
	"github.com/dkoroteev/eventcrew-backend/internal/repository"
	"github.com/dkoroteev/eventcrew-backend/internal/validation"
)

// MessageRepo описывает взаимодействие сервиса с хранилищем сообщений.
type MessageRepo interface {
	Create(ctx context.Context, message *models.Message) error
	ListByBooking(ctx context.Context, bookingID uuid.UUID, cursor *uuid.UUID, limit int) ([]models.Message, error)
	MarkRead(ctx context.Context, bookingID, readerID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

// BookingRepoForMessages минимальный контракт доступа к бронированиям.
type BookingRepoForMessages interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

// MessageService содержит бизнес-логику переписки по бронированиям.
type MessageService struct {
	repo          MessageRepo
	bookings      BookingRepoForMessages
	notifications *NotificationService
	hub           WSNotifier
}

// NewMessageService создаёт сервис сообщений.
func NewMessageService(repo MessageRepo, bookings BookingRepoForMessages, notifications *NotificationService) *MessageService {
	return &MessageService{repo: repo, bookings: bookings, notifications: notifications}
}

// SetHub устанавливает WebSocket hub для отправки уведомлений.
func (s *MessageService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// SendMessageInput описывает входные данные отправки сообщения.
type SendMessageInput struct {
	BookingID   uuid.UUID
	SenderID    uuid.UUID
	Content     string
	Attachments []uuid.UUID
}

// MessagePage страница сообщений с курсором продолжения.
// Сообщения внутри страницы идут в хронологическом порядке.
type MessagePage struct {
	Items      []models.Message `json:"items"`
	NextCursor *uuid.UUID       `json:"next_cursor,omitempty"`
}

// SendMessage отправляет сообщение в переписку бронирования.
// Переписка доступна только сторонам бронирования.
func (s *MessageService) SendMessage(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	if err := validation.ValidateMessageContent(in.Content); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if len(in.Attachments) > validation.MaxMessageAttachments {
		return nil, apperror.New(apperror.ErrCodeValidation, "слишком много вложений")
	}

	booking, err := s.bookings.GetByID(ctx, in.BookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, apperror.ErrBookingNotFound
		}
		return nil, err
	}

	if !isParticipant(booking, in.SenderID) {
		return nil, apperror.ErrForbidden
	}

	message := &models.Message{
		BookingID:   in.BookingID,
		SenderID:    in.SenderID,
		Content:     in.Content,
		Attachments: in.Attachments,
	}

	if err := s.repo.Create(ctx, message); err != nil {
		return nil, err
	}

	if recipient, err := counterparty(booking, in.SenderID); err == nil {
		notifyAsync(s.notifications, s.hub, recipient, "message.new", message)
	}

	return message, nil
}

// ListMessages возвращает страницу переписки бронирования. Страница
// выбирается от новых к старым, затем разворачивается в хронологию.
func (s *MessageService) ListMessages(ctx context.Context, bookingID, userID uuid.UUID, role string, cursor *uuid.UUID, limit int) (*MessagePage, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, apperror.ErrBookingNotFound
		}
		return nil, err
	}

	if err := requireParticipant(booking, userID, role); err != nil {
		return nil, err
	}

	limit = clampLimit(limit)
	items, err := s.repo.ListByBooking(ctx, bookingID, cursor, limit+1)
	if err != nil {
		return nil, err
	}

	page := &MessagePage{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		page.NextCursor = &page.Items[limit-1].ID
	}

	// Разворот в хронологический порядок
	for i, j := 0, len(page.Items)-1; i < j; i, j = i+1, j-1 {
		page.Items[i], page.Items[j] = page.Items[j], page.Items[i]
	}

	return page, nil
}

// MarkRead помечает входящие сообщения переписки прочитанными и
// возвращает число затронутых сообщений. Повторный вызов вернёт ноль.
func (s *MessageService) MarkRead(ctx context.Context, bookingID, userID uuid.UUID) (int64, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return 0, apperror.ErrBookingNotFound
		}
		return 0, err
	}

	if !isParticipant(booking, userID) {
		return 0, apperror.ErrForbidden
	}

	return s.repo.MarkRead(ctx, bookingID, userID)
}

// CountUnread возвращает число непрочитанных входящих сообщений
// пользователя по всем его бронированиям.
func (s *MessageService) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dkoroteev/eventcrew-backend/internal/models"
	"github.com/dkoroteev/eventcrew-backend/internal/pkg/apperror"
	"github.com/dkoroteev/eventcrew-backend/internal/repository"
	"github.com/dkoroteev/eventcrew-backend/internal/validation"
)

// DefaultPageLimit и MaxPageLimit ограничивают размер страницы выдачи.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// clampLimit приводит лимит страницы к допустимому диапазону.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageLimit
	}
	if limit > MaxPageLimit {
		return MaxPageLimit
	}
	return limit
}

// BookingRepo описывает взаимодействие сервиса с хранилищем бронирований.
type BookingRepo interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	UpdateDetails(ctx context.Context, booking *models.Booking) error
	AssignTechnician(ctx context.Context, id, technicianID uuid.UUID) (*models.Booking, error)
	UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next string) (*models.Booking, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID, status string, cursor *uuid.UUID, limit int) ([]models.Booking, error)
}

// WSNotifier интерфейс для отправки WebSocket уведомлений.
type WSNotifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data interface{}) error
}

// BookingService содержит бизнес-логику жизненного цикла бронирований.
type BookingService struct {
	repo          BookingRepo
	notifications *NotificationService
	hub           WSNotifier
}

// NewBookingService создаёт сервис бронирований.
func NewBookingService(repo BookingRepo, notifications *NotificationService) *BookingService {
	return &BookingService{repo: repo, notifications: notifications}
}

// SetHub устанавливает WebSocket hub для отправки уведомлений.
func (s *BookingService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// CreateBookingInput описывает входные данные создания бронирования.
type CreateBookingInput struct {
	CompanyID      uuid.UUID
	TechnicianID   *uuid.UUID
	Title          string
	Description    *string
	EventDate      time.Time
	EventEndDate   *time.Time
	Location       *string
	HourlyRate     float64
	EstimatedHours *float64
}

// UpdateBookingInput описывает входные данные редактирования.
// Ставка и стороны после создания не меняются.
type UpdateBookingInput struct {
	BookingID    uuid.UUID
	CompanyID    uuid.UUID
	Title        string
	Description  *string
	EventDate    time.Time
	EventEndDate *time.Time
	Location     *string
}

// BookingPage страница бронирований с курсором продолжения.
type BookingPage struct {
	Items      []models.Booking `json:"items"`
	NextCursor *uuid.UUID       `json:"next_cursor,omitempty"`
}

// CreateBooking создаёт бронирование в статусе pending.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	if err := validation.ValidateBookingTitle(in.Title); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateEventDates(in.EventDate, in.EventEndDate); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateHourlyRate(in.HourlyRate); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateEstimatedHours(in.EstimatedHours); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if in.TechnicianID != nil && *in.TechnicianID == in.CompanyID {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "нельзя назначить себя техником на своё бронирование")
	}

	booking := &models.Booking{
		CompanyID:      in.CompanyID,
		TechnicianID:   in.TechnicianID,
		Title:          in.Title,
		Description:    in.Description,
		EventDate:      in.EventDate,
		EventEndDate:   in.EventEndDate,
		Location:       in.Location,
		HourlyRate:     in.HourlyRate,
		EstimatedHours: in.EstimatedHours,
		TotalAmount:    totalAmount(in.HourlyRate, in.EstimatedHours),
		Status:         models.BookingStatusPending,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, err
	}

	if booking.TechnicianID != nil {
		s.notify(*booking.TechnicianID, "booking.created", booking)
	}

	return booking, nil
}

// GetBooking возвращает бронирование. Доступ только сторонам и администратору.
func (s *BookingService) GetBooking(ctx context.Context, id, userID uuid.UUID, role string) (*models.Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, apperror.ErrBookingNotFound
		}
		return nil, err
	}

	if err := requireParticipant(booking, userID, role); err != nil {
		return nil, err
	}

	return booking, nil
}

// UpdateBooking редактирует детали бронирования. Разрешено только
// компании-владельцу и только до начала работ: статус pending либо
// accepted. Ставка и стороны неизменяемы.
func (s *BookingService) UpdateBooking(ctx context.Context, in UpdateBookingInput) (*models.Booking, error) {
	booking, err := s.repo.GetByID(ctx, in.BookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, apperror.ErrBookingNotFound
		}
		return nil, err
	}

	if booking.CompanyID != in.CompanyID {
		return nil, apperror.ErrForbidden
	}
	if booking.Status != models.BookingStatusPending && booking.Status != models.BookingStatusAccepted {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "бронирование в текущем статусе нельзя редактировать")
	}

	if err := validation.ValidateBookingTitle(in.Title); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateEventDates(in.EventDate, in.EventEndDate); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	booking.Title = in.Title
	booking.Description = in.Description
	booking.EventDate = in.EventDate
	booking.EventEndDate = in.EventEndDate
	booking.Location = in.Location

	if err := s.repo.UpdateDetails(ctx, booking); err != nil {
		return nil, err
	}

	return booking, nil
}

// AssignTechnician назначает техника на открытое бронирование.
func (s *BookingService) AssignTechnician(ctx context.Context, bookingID, companyID, technicianID uuid.UUID) (*models.Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, apperror.ErrBookingNotFound
		}
		return nil, err
	}

	if booking.CompanyID != companyID {
		return nil, apperror.ErrForbidden
	}
	if booking.Status != models.BookingStatusPending {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "назначить техника можно только на неподтверждённое бронирование")
	}
	if technicianID == companyID {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "нельзя назначить себя техником на своё бронирование")
	}

	updated, err := s.repo.AssignTechnician(ctx, bookingID, technicianID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingStatusChanged) {
			return nil, apperror.New(apperror.ErrCodeConflict, "бронирование изменилось, повторите запрос")
		}
		return nil, err
	}

	s.notify(technicianID, "booking.assigned", updated)

	return updated, nil
}

// AcceptBooking подтверждает бронирование назначенным техником.
// Переход pending -> accepted.
func (s *BookingService) AcceptBooking(ctx context.Context, bookingID, technicianID uuid.UUID) (*models.Booking, error) {
	return s.technicianTransition(ctx, bookingID, technicianID,
		models.BookingStatusPending, models.BookingStatusAccepted, "booking.accepted")
}

// StartBooking отмечает начало работ техником.
// Переход accepted -> in_progress.
func (s *BookingService) StartBooking(ctx context.Context, bookingID, technicianID uuid.UUID) (*models.Booking, error) {
	return s.technicianTransition(ctx, bookingID, technicianID,
		models.BookingStatusAccepted, models.BookingStatusInProgress, "booking.started")
}

// technicianTransition выполняет переход статуса от имени техника.
// Смена статуса условная: при конкурентном изменении вернётся conflict.
func (s *BookingService) technicianTransition(ctx context.Context, bookingID, technicianID uuid.UUID, from, to, event string) (*models.Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, apperror.ErrBookingNotFound
		}
		return nil, err
	}

	if booking.TechnicianID == nil || *booking.TechnicianID != technicianID {
		return nil, apperror.ErrForbidden
	}
	if booking.Status != from {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "недопустимый переход статуса из "+booking.Status)
	}

	updated, err := s.repo.UpdateStatusIf(ctx, bookingID, from, to)
	if err != nil {
		if errors.Is(err, repository.ErrBookingStatusChanged) {
			return nil, apperror.New(apperror.ErrCodeConflict, "статус бронирования изменился, повторите запрос")
		}
		return nil, err
	}

	s.notify(updated.CompanyID, event, updated)

	return updated, nil
}

// CompleteBooking отмечает завершение работ компанией.
// Переход accepted|in_progress -> completed.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID, companyID uuid.UUID) (*models.Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, apperror.ErrBookingNotFound
		}
		return nil, err
	}

	if booking.CompanyID != companyID {
		return nil, apperror.ErrForbidden
	}
	if booking.Status != models.BookingStatusAccepted && booking.Status != models.BookingStatusInProgress {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "завершить можно только подтверждённое бронирование или бронирование в работе")
	}

	updated, err := s.repo.UpdateStatusIf(ctx, bookingID, booking.Status, models.BookingStatusCompleted)
	if err != nil {
		if errors.Is(err, repository.ErrBookingStatusChanged) {
			return nil, apperror.New(apperror.ErrCodeConflict, "статус бронирования изменился, повторите запрос")
		}
		return nil, err
	}

	if updated.TechnicianID != nil {
		s.notify(*updated.TechnicianID, "booking.completed", updated)
	}

	return updated, nil
}

// CancelBooking отменяет бронирование любой из сторон.
// Отмена недоступна из терминальных статусов и во время спора.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID uuid.UUID) (*models.Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, apperror.ErrBookingNotFound
		}
		return nil, err
	}

	if !isParticipant(booking, userID) {
		return nil, apperror.ErrForbidden
	}
	if booking.Status == models.BookingStatusDisputed {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "нельзя отменить бронирование во время спора")
	}
	if booking.IsTerminal() {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "бронирование уже завершено")
	}

	updated, err := s.repo.UpdateStatusIf(ctx, bookingID, booking.Status, models.BookingStatusCancelled)
	if err != nil {
		if errors.Is(err, repository.ErrBookingStatusChanged) {
			return nil, apperror.New(apperror.ErrCodeConflict, "статус бронирования изменился, повторите запрос")
		}
		return nil, err
	}

	if other, err := counterparty(updated, userID); err == nil {
		s.notify(other, "booking.cancelled", updated)
	}

	return updated, nil
}

// ListBookings возвращает страницу бронирований пользователя.
func (s *BookingService) ListBookings(ctx context.Context, userID uuid.UUID, status string, cursor *uuid.UUID, limit int) (*BookingPage, error) {
	if status != "" {
		if _, ok := models.ValidBookingStatuses[status]; !ok {
			return nil, apperror.New(apperror.ErrCodeBadRequest, "некорректный статус бронирования")
		}
	}

	limit = clampLimit(limit)
	items, err := s.repo.ListByParticipant(ctx, userID, status, cursor, limit+1)
	if err != nil {
		return nil, err
	}

	page := &BookingPage{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		page.NextCursor = &page.Items[limit-1].ID
	}

	return page, nil
}

func (s *BookingService) notify(userID uuid.UUID, event string, data interface{}) {
	notifyAsync(s.notifications, s.hub, userID, event, data)
}

// totalAmount считает предварительную стоимость бронирования.
func totalAmount(rate float64, hours *float64) *float64 {
	if hours == nil {
		return nil
	}
	total := rate * *hours
	return &total
}

package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dkoroteev/eventcrew-backend/internal/models"
	"github.com/dkoroteev/eventcrew-backend/internal/pkg/apperror"
	"github.com/dkoroteev/eventcrew-backend/internal/repository"
	"github.com/dkoroteev/eventcrew-backend/internal/repository/common"
	"github.com/dkoroteev/eventcrew-backend/internal/validation"
)

// disputableStatuses статусы бронирования, из которых можно открыть спор.
var disputableStatuses = map[string]struct{}{
	models.BookingStatusAccepted:   {},
	models.BookingStatusInProgress: {},
	models.BookingStatusCompleted:  {},
}

// DisputeRepo описывает взаимодействие сервиса с хранилищем споров.
type DisputeRepo interface {
	CreateWithBookingFlip(ctx context.Context, dispute *models.Dispute, expectedStatus string) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.Dispute, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, resolution *string, resolvedBy *uuid.UUID) (*models.Dispute, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID, status string, cursor *uuid.UUID, limit int) ([]models.Dispute, error)
	ListAll(ctx context.Context, status string, cursor *uuid.UUID, limit int) ([]models.Dispute, error)
}

// BookingRepoForDispute минимальный контракт доступа к бронированиям.
type BookingRepoForDispute interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	RestoreFromDispute(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

// DisputeService содержит бизнес-логику споров по бронированиям.
type DisputeService struct {
	repo          DisputeRepo
	bookings      BookingRepoForDispute
	notifications *NotificationService
	hub           WSNotifier
}

// NewDisputeService создаёт сервис споров.
func NewDisputeService(repo DisputeRepo, bookings BookingRepoForDispute, notifications *NotificationService) *DisputeService {
	return &DisputeService{repo: repo, bookings: bookings, notifications: notifications}
}

// SetHub устанавливает WebSocket hub для отправки уведомлений.
func (s *DisputeService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// CreateDisputeInput описывает входные данные открытия спора.
type CreateDisputeInput struct {
	BookingID   uuid.UUID
	FilerID     uuid.UUID
	Reason      string
	Description string
	Evidence    []string
}

// UpdateDisputeStatusInput описывает административное решение по спору.
type UpdateDisputeStatusInput struct {
	DisputeID  uuid.UUID
	AdminID    uuid.UUID
	Status     string
	Resolution *string
}

// DisputePage страница споров с курсором продолжения.
type DisputePage struct {
	Items      []models.Dispute `json:"items"`
	NextCursor *uuid.UUID       `json:"next_cursor,omitempty"`
}

// CreateDispute открывает спор по бронированию. Спор и перевод
// бронирования в disputed атомарны: происходит либо всё, либо ничего.
func (s *DisputeService) CreateDispute(ctx context.Context, in CreateDisputeInput) (*models.Dispute, error) {
	if err := validation.ValidateDisputeReason(in.Reason); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateDisputeDescription(in.Description); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateEvidence(in.Evidence); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	booking, err := s.bookings.GetByID(ctx, in.BookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, apperror.ErrBookingNotFound
		}
		return nil, err
	}

	if !isParticipant(booking, in.FilerID) {
		return nil, apperror.ErrForbidden
	}
	if _, ok := disputableStatuses[booking.Status]; !ok {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "спор нельзя открыть из статуса "+booking.Status)
	}

	respondent, err := counterparty(booking, in.FilerID)
	if err != nil {
		return nil, err
	}

	dispute := &models.Dispute{
		BookingID:    in.BookingID,
		FilerID:      in.FilerID,
		RespondentID: respondent,
		Reason:       in.Reason,
		Description:  in.Description,
		Evidence:     in.Evidence,
		Status:       models.DisputeStatusOpen,
	}

	if err := s.repo.CreateWithBookingFlip(ctx, dispute, booking.Status); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, apperror.New(apperror.ErrCodeConflict, "по этому бронированию уже открыт спор")
		}
		if errors.Is(err, repository.ErrBookingStatusChanged) {
			return nil, apperror.New(apperror.ErrCodeConflict, "статус бронирования изменился, повторите запрос")
		}
		return nil, err
	}

	s.notify(respondent, "dispute.opened", dispute)

	return dispute, nil
}

// GetDispute возвращает спор. Доступ только сторонам и администратору.
func (s *DisputeService) GetDispute(ctx context.Context, id, userID uuid.UUID, role string) (*models.Dispute, error) {
	dispute, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDisputeNotFound) {
			return nil, apperror.ErrDisputeNotFound
		}
		return nil, err
	}

	if role != models.RoleAdmin && dispute.FilerID != userID && dispute.RespondentID != userID {
		return nil, apperror.ErrForbidden
	}

	return dispute, nil
}

// ListMyDisputes возвращает страницу споров пользователя,
// опционально по статусу.
func (s *DisputeService) ListMyDisputes(ctx context.Context, userID uuid.UUID, status string, cursor *uuid.UUID, limit int) (*DisputePage, error) {
	if status != "" {
		if _, ok := models.ValidDisputeStatuses[status]; !ok {
			return nil, apperror.New(apperror.ErrCodeBadRequest, "некорректный статус спора")
		}
	}

	limit = clampLimit(limit)
	items, err := s.repo.ListByParticipant(ctx, userID, status, cursor, limit+1)
	if err != nil {
		return nil, err
	}

	return disputePage(items, limit), nil
}

// ListAllDisputes возвращает страницу всех споров для арбитража.
func (s *DisputeService) ListAllDisputes(ctx context.Context, status string, cursor *uuid.UUID, limit int) (*DisputePage, error) {
	if status != "" {
		if _, ok := models.ValidDisputeStatuses[status]; !ok {
			return nil, apperror.New(apperror.ErrCodeBadRequest, "некорректный статус спора")
		}
	}

	limit = clampLimit(limit)
	items, err := s.repo.ListAll(ctx, status, cursor, limit+1)
	if err != nil {
		return nil, err
	}

	return disputePage(items, limit), nil
}

// UpdateDisputeStatus выполняет административный переход статуса спора.
// При закрытии спора бронирование возвращается в статус, который было
// до открытия спора; резолюция обязательна для resolved.
func (s *DisputeService) UpdateDisputeStatus(ctx context.Context, in UpdateDisputeStatusInput) (*models.Dispute, error) {
	if _, ok := models.AdminDisputeTargets[in.Status]; !ok {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "недопустимый статус спора")
	}
	if in.Status == models.DisputeStatusResolved && (in.Resolution == nil || *in.Resolution == "") {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "для решения спора требуется резолюция")
	}

	dispute, err := s.repo.GetByID(ctx, in.DisputeID)
	if err != nil {
		if errors.Is(err, repository.ErrDisputeNotFound) {
			return nil, apperror.ErrDisputeNotFound
		}
		return nil, err
	}

	closing := in.Status == models.DisputeStatusResolved || in.Status == models.DisputeStatusDismissed
	alreadyClosed := dispute.Status == models.DisputeStatusResolved || dispute.Status == models.DisputeStatusDismissed

	var resolvedBy *uuid.UUID
	if closing {
		resolvedBy = &in.AdminID
	}

	updated, err := s.repo.UpdateStatus(ctx, in.DisputeID, in.Status, in.Resolution, resolvedBy)
	if err != nil {
		return nil, err
	}

	// Бронирование восстанавливается только при первом закрытии спора.
	if closing && !alreadyClosed {
		if _, err := s.bookings.RestoreFromDispute(ctx, dispute.BookingID); err != nil &&
			!errors.Is(err, repository.ErrBookingStatusChanged) {
			return nil, err
		}
	}

	s.notify(updated.FilerID, "dispute.updated", updated)
	s.notify(updated.RespondentID, "dispute.updated", updated)

	return updated, nil
}

func disputePage(items []models.Dispute, limit int) *DisputePage {
	page := &DisputePage{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		page.NextCursor = &page.Items[limit-1].ID
	}
	return page
}

func (s *DisputeService) notify(userID uuid.UUID, event string, data interface{}) {
	notifyAsync(s.notifications, s.hub, userID, event, data)
}

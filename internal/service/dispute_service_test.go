package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dkoroteev/eventcrew-backend/internal/models"
	"github.com/dkoroteev/eventcrew-backend/internal/pkg/apperror"
	"github.com/dkoroteev/eventcrew-backend/internal/repository/common"
)

type mockDisputeRepo struct {
	mock.Mock
}

func (m *mockDisputeRepo) CreateWithBookingFlip(ctx context.Context, dispute *models.Dispute, expectedStatus string) error {
	args := m.Called(ctx, dispute, expectedStatus)
	if args.Error(0) == nil {
		dispute.ID = uuid.New()
		dispute.CreatedAt = time.Now()
	}
	return args.Error(0)
}

func (m *mockDisputeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.Dispute, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, resolution *string, resolvedBy *uuid.UUID) (*models.Dispute, error) {
	args := m.Called(ctx, id, status, resolution, resolvedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) ListByParticipant(ctx context.Context, userID uuid.UUID, status string, cursor *uuid.UUID, limit int) ([]models.Dispute, error) {
	args := m.Called(ctx, userID, status, cursor, limit)
	return args.Get(0).([]models.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) ListAll(ctx context.Context, status string, cursor *uuid.UUID, limit int) ([]models.Dispute, error) {
	args := m.Called(ctx, status, cursor, limit)
	return args.Get(0).([]models.Dispute), args.Error(1)
}

type mockBookingRepoForDispute struct {
	mock.Mock
}

func (m *mockBookingRepoForDispute) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingRepoForDispute) RestoreFromDispute(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func disputeTestInput(bookingID, filerID uuid.UUID) CreateDisputeInput {
	return CreateDisputeInput{
		BookingID:   bookingID,
		FilerID:     filerID,
		Reason:      "Работы не выполнены",
		Description: "Техник не явился на площадку в назначенное время",
	}
}

func TestDisputeService_CreateDispute_Success(t *testing.T) {
	repo := new(mockDisputeRepo)
	bookings := new(mockBookingRepoForDispute)
	svc := NewDisputeService(repo, bookings, nil)
	ctx := context.Background()

	companyID := uuid.New()
	technicianID := uuid.New()
	booking := pendingBooking(companyID, technicianID)
	booking.Status = models.BookingStatusInProgress

	bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)
	repo.On("CreateWithBookingFlip", ctx, mock.AnythingOfType("*models.Dispute"), models.BookingStatusInProgress).Return(nil)

	dispute, err := svc.CreateDispute(ctx, disputeTestInput(booking.ID, companyID))

	assert.NoError(t, err)
	assert.NotNil(t, dispute)
	assert.Equal(t, models.DisputeStatusOpen, dispute.Status)
	assert.Equal(t, companyID, dispute.FilerID)
	assert.Equal(t, technicianID, dispute.RespondentID)
}

func TestDisputeService_CreateDispute_RespondentIsCounterparty(t *testing.T) {
	repo := new(mockDisputeRepo)
	bookings := new(mockBookingRepoForDispute)
	svc := NewDisputeService(repo, bookings, nil)
	ctx := context.Background()

	companyID := uuid.New()
	technicianID := uuid.New()
	booking := pendingBooking(companyID, technicianID)
	booking.Status = models.BookingStatusAccepted

	bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)
	repo.On("CreateWithBookingFlip", ctx, mock.AnythingOfType("*models.Dispute"), models.BookingStatusAccepted).Return(nil)

	// Спор открывает техник — респондентом становится компания.
	dispute, err := svc.CreateDispute(ctx, disputeTestInput(booking.ID, technicianID))

	assert.NoError(t, err)
	assert.Equal(t, companyID, dispute.RespondentID)
}

func TestDisputeService_CreateDispute_NotParticipant(t *testing.T) {
	repo := new(mockDisputeRepo)
	bookings := new(mockBookingRepoForDispute)
	svc := NewDisputeService(repo, bookings, nil)
	ctx := context.Background()

	booking := pendingBooking(uuid.New(), uuid.New())
	booking.Status = models.BookingStatusAccepted

	bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)

	_, err := svc.CreateDispute(ctx, disputeTestInput(booking.ID, uuid.New()))

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	repo.AssertNotCalled(t, "CreateWithBookingFlip")
}

func TestDisputeService_CreateDispute_WrongStatus(t *testing.T) {
	repo := new(mockDisputeRepo)
	bookings := new(mockBookingRepoForDispute)
	svc := NewDisputeService(repo, bookings, nil)
	ctx := context.Background()

	companyID := uuid.New()
	booking := pendingBooking(companyID, uuid.New())

	bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)

	// Из pending спор открыть нельзя
	_, err := svc.CreateDispute(ctx, disputeTestInput(booking.ID, companyID))

	assert.Error(t, err)
	assert.True(t, apperror.IsBadRequest(err))
}

func TestDisputeService_CreateDispute_AlreadyExists(t *testing.T) {
	repo := new(mockDisputeRepo)
	bookings := new(mockBookingRepoForDispute)
	svc := NewDisputeService(repo, bookings, nil)
	ctx := context.Background()

	companyID := uuid.New()
	booking := pendingBooking(companyID, uuid.New())
	booking.Status = models.BookingStatusCompleted

	bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)
	repo.On("CreateWithBookingFlip", ctx, mock.AnythingOfType("*models.Dispute"), models.BookingStatusCompleted).Return(common.ErrAlreadyExists)

	_, err := svc.CreateDispute(ctx, disputeTestInput(booking.ID, companyID))

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestDisputeService_GetDispute_AccessControl(t *testing.T) {
	repo := new(mockDisputeRepo)
	bookings := new(mockBookingRepoForDispute)
	svc := NewDisputeService(repo, bookings, nil)
	ctx := context.Background()

	filerID := uuid.New()
	dispute := &models.Dispute{
		ID:           uuid.New(),
		FilerID:      filerID,
		RespondentID: uuid.New(),
		Status:       models.DisputeStatusOpen,
	}

	repo.On("GetByID", ctx, dispute.ID).Return(dispute, nil)

	// Сторона спора видит спор
	got, err := svc.GetDispute(ctx, dispute.ID, filerID, models.RoleCompany)
	assert.NoError(t, err)
	assert.Equal(t, dispute.ID, got.ID)

	// Посторонний пользователь — нет
	_, err = svc.GetDispute(ctx, dispute.ID, uuid.New(), models.RoleTechnician)
	assert.True(t, apperror.IsForbidden(err))

	// Администратор видит любой спор
	_, err = svc.GetDispute(ctx, dispute.ID, uuid.New(), models.RoleAdmin)
	assert.NoError(t, err)
}

func TestDisputeService_UpdateStatus_ResolutionRequired(t *testing.T) {
	repo := new(mockDisputeRepo)
	bookings := new(mockBookingRepoForDispute)
	svc := NewDisputeService(repo, bookings, nil)

	_, err := svc.UpdateDisputeStatus(context.Background(), UpdateDisputeStatusInput{
		DisputeID: uuid.New(),
		AdminID:   uuid.New(),
		Status:    models.DisputeStatusResolved,
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsBadRequest(err))
	assert.Contains(t, err.Error(), "резолюция")
}

func TestDisputeService_UpdateStatus_RestoresBookingOnClose(t *testing.T) {
	repo := new(mockDisputeRepo)
	bookings := new(mockBookingRepoForDispute)
	svc := NewDisputeService(repo, bookings, nil)
	ctx := context.Background()

	adminID := uuid.New()
	bookingID := uuid.New()
	resolution := "Оплата возвращается компании"

	dispute := &models.Dispute{
		ID:           uuid.New(),
		BookingID:    bookingID,
		FilerID:      uuid.New(),
		RespondentID: uuid.New(),
		Status:       models.DisputeStatusUnderReview,
	}
	resolved := *dispute
	resolved.Status = models.DisputeStatusResolved
	resolved.Resolution = &resolution

	repo.On("GetByID", ctx, dispute.ID).Return(dispute, nil)
	repo.On("UpdateStatus", ctx, dispute.ID, models.DisputeStatusResolved, &resolution, &adminID).Return(&resolved, nil)
	bookings.On("RestoreFromDispute", ctx, bookingID).Return(&models.Booking{ID: bookingID, Status: models.BookingStatusInProgress}, nil)

	updated, err := svc.UpdateDisputeStatus(ctx, UpdateDisputeStatusInput{
		DisputeID:  dispute.ID,
		AdminID:    adminID,
		Status:     models.DisputeStatusResolved,
		Resolution: &resolution,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.DisputeStatusResolved, updated.Status)
	bookings.AssertCalled(t, "RestoreFromDispute", ctx, bookingID)
}

func TestDisputeService_UpdateStatus_NoRestoreOnIntermediate(t *testing.T) {
	repo := new(mockDisputeRepo)
	bookings := new(mockBookingRepoForDispute)
	svc := NewDisputeService(repo, bookings, nil)
	ctx := context.Background()

	dispute := &models.Dispute{
		ID:           uuid.New(),
		BookingID:    uuid.New(),
		FilerID:      uuid.New(),
		RespondentID: uuid.New(),
		Status:       models.DisputeStatusOpen,
	}
	reviewed := *dispute
	reviewed.Status = models.DisputeStatusUnderReview

	repo.On("GetByID", ctx, dispute.ID).Return(dispute, nil)
	repo.On("UpdateStatus", ctx, dispute.ID, models.DisputeStatusUnderReview, (*string)(nil), (*uuid.UUID)(nil)).Return(&reviewed, nil)

	_, err := svc.UpdateDisputeStatus(ctx, UpdateDisputeStatusInput{
		DisputeID: dispute.ID,
		AdminID:   uuid.New(),
		Status:    models.DisputeStatusUnderReview,
	})

	assert.NoError(t, err)
	bookings.AssertNotCalled(t, "RestoreFromDispute")
}

func TestDisputeService_UpdateStatus_NoDoubleRestore(t *testing.T) {
	repo := new(mockDisputeRepo)
	bookings := new(mockBookingRepoForDispute)
	svc := NewDisputeService(repo, bookings, nil)
	ctx := context.Background()

	adminID := uuid.New()
	resolution := "Спор отклонён"

	// Спор уже закрыт: повторное закрытие не трогает бронирование.
	dispute := &models.Dispute{
		ID:           uuid.New(),
		BookingID:    uuid.New(),
		FilerID:      uuid.New(),
		RespondentID: uuid.New(),
		Status:       models.DisputeStatusResolved,
	}
	dismissed := *dispute
	dismissed.Status = models.DisputeStatusDismissed

	repo.On("GetByID", ctx, dispute.ID).Return(dispute, nil)
	repo.On("UpdateStatus", ctx, dispute.ID, models.DisputeStatusDismissed, &resolution, &adminID).Return(&dismissed, nil)

	_, err := svc.UpdateDisputeStatus(ctx, UpdateDisputeStatusInput{
		DisputeID:  dispute.ID,
		AdminID:    adminID,
		Status:     models.DisputeStatusDismissed,
		Resolution: &resolution,
	})

	assert.NoError(t, err)
	bookings.AssertNotCalled(t, "RestoreFromDispute")
}

func TestDisputeService_ListMyDisputes_StatusFilter(t *testing.T) {
	repo := new(mockDisputeRepo)
	bookings := new(mockBookingRepoForDispute)
	svc := NewDisputeService(repo, bookings, nil)

	userID := uuid.New()
	ctx := context.Background()

	repo.On("ListByParticipant", ctx, userID, models.DisputeStatusOpen, (*uuid.UUID)(nil), 11).
		Return([]models.Dispute{{ID: uuid.New(), Status: models.DisputeStatusOpen}}, nil)

	page, err := svc.ListMyDisputes(ctx, userID, models.DisputeStatusOpen, nil, 10)

	assert.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Nil(t, page.NextCursor)

	_, err = svc.ListMyDisputes(ctx, userID, "pending", nil, 10)
	assert.True(t, apperror.IsBadRequest(err))
}

func TestDisputeService_ListAllDisputes_InvalidStatus(t *testing.T) {
	repo := new(mockDisputeRepo)
	bookings := new(mockBookingRepoForDispute)
	svc := NewDisputeService(repo, bookings, nil)

	_, err := svc.ListAllDisputes(context.Background(), "pending", nil, 10)

	assert.Error(t, err)
	assert.True(t, apperror.IsBadRequest(err))
}

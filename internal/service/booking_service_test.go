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
	"github.com/dkoroteev/eventcrew-backend/internal/repository"
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	if args.Error(0) == nil {
		booking.ID = uuid.New()
		booking.CreatedAt = time.Now()
		booking.UpdatedAt = time.Now()
	}
	return args.Error(0)
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingRepo) UpdateDetails(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *mockBookingRepo) AssignTechnician(ctx context.Context, id, technicianID uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, id, technicianID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next string) (*models.Booking, error) {
	args := m.Called(ctx, id, expected, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingRepo) ListByParticipant(ctx context.Context, userID uuid.UUID, status string, cursor *uuid.UUID, limit int) ([]models.Booking, error) {
	args := m.Called(ctx, userID, status, cursor, limit)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func pendingBooking(companyID, technicianID uuid.UUID) *models.Booking {
	techID := technicianID
	return &models.Booking{
		ID:           uuid.New(),
		CompanyID:    companyID,
		TechnicianID: &techID,
		Title:        "Монтаж звука на конференции",
		EventDate:    time.Now().Add(72 * time.Hour),
		HourlyRate:   1500,
		Status:       models.BookingStatusPending,
	}
}

func TestBookingService_CreateBooking_Success(t *testing.T) {
	repo := new(mockBookingRepo)
	svc := NewBookingService(repo, nil)
	ctx := context.Background()

	companyID := uuid.New()
	technicianID := uuid.New()
	hours := 8.0

	repo.On("Create", ctx, mock.AnythingOfType("*models.Booking")).Return(nil)

	booking, err := svc.CreateBooking(ctx, CreateBookingInput{
		CompanyID:      companyID,
		TechnicianID:   &technicianID,
		Title:          "Световое оформление свадьбы",
		EventDate:      time.Now().Add(48 * time.Hour),
		HourlyRate:     2000,
		EstimatedHours: &hours,
	})

	assert.NoError(t, err)
	assert.NotNil(t, booking)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.NotNil(t, booking.TotalAmount)
	assert.Equal(t, 16000.0, *booking.TotalAmount)
}

func TestBookingService_CreateBooking_InvalidTitle(t *testing.T) {
	repo := new(mockBookingRepo)
	svc := NewBookingService(repo, nil)

	_, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		CompanyID:  uuid.New(),
		Title:      "",
		EventDate:  time.Now().Add(24 * time.Hour),
		HourlyRate: 1000,
	})

	assert.Error(t, err)
	repo.AssertNotCalled(t, "Create")
}

func TestBookingService_CreateBooking_SelfAssign(t *testing.T) {
	repo := new(mockBookingRepo)
	svc := NewBookingService(repo, nil)

	companyID := uuid.New()
	_, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		CompanyID:    companyID,
		TechnicianID: &companyID,
		Title:        "Монтаж сцены",
		EventDate:    time.Now().Add(24 * time.Hour),
		HourlyRate:   1000,
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsBadRequest(err))
}

func TestBookingService_UpdateBooking_Success(t *testing.T) {
	repo := new(mockBookingRepo)
	svc := NewBookingService(repo, nil)
	ctx := context.Background()

	companyID := uuid.New()
	booking := pendingBooking(companyID, uuid.New())

	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)
	repo.On("UpdateDetails", ctx, mock.AnythingOfType("*models.Booking")).Return(nil)

	updated, err := svc.UpdateBooking(ctx, UpdateBookingInput{
		BookingID: booking.ID,
		CompanyID: companyID,
		Title:     "Монтаж звука и света на конференции",
		EventDate: time.Now().Add(96 * time.Hour),
	})

	assert.NoError(t, err)
	assert.Equal(t, "Монтаж звука и света на конференции", updated.Title)
	assert.Equal(t, 1500.0, updated.HourlyRate)
}

func TestBookingService_UpdateBooking_CompletedRejected(t *testing.T) {
	repo := new(mockBookingRepo)
	svc := NewBookingService(repo, nil)
	ctx := context.Background()

	companyID := uuid.New()
	booking := pendingBooking(companyID, uuid.New())
	booking.Status = models.BookingStatusCompleted

	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)

	_, err := svc.UpdateBooking(ctx, UpdateBookingInput{
		BookingID: booking.ID,
		CompanyID: companyID,
		Title:     "Новое название",
		EventDate: time.Now().Add(24 * time.Hour),
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsBadRequest(err))
	repo.AssertNotCalled(t, "UpdateDetails")
}

func TestBookingService_UpdateBooking_NotOwner(t *testing.T) {
	repo := new(mockBookingRepo)
	svc := NewBookingService(repo, nil)
	ctx := context.Background()

	booking := pendingBooking(uuid.New(), uuid.New())

	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)

	_, err := svc.UpdateBooking(ctx, UpdateBookingInput{
		BookingID: booking.ID,
		CompanyID: uuid.New(),
		Title:     "Чужое бронирование",
		EventDate: time.Now().Add(24 * time.Hour),
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestBookingService_AcceptBooking_Success(t *testing.T) {
	repo := new(mockBookingRepo)
	svc := NewBookingService(repo, nil)
	ctx := context.Background()

	companyID := uuid.New()
	technicianID := uuid.New()
	booking := pendingBooking(companyID, technicianID)

	accepted := *booking
	accepted.Status = models.BookingStatusAccepted

	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)
	repo.On("UpdateStatusIf", ctx, booking.ID, models.BookingStatusPending, models.BookingStatusAccepted).Return(&accepted, nil)

	result, err := svc.AcceptBooking(ctx, booking.ID, technicianID)

	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusAccepted, result.Status)
}

func TestBookingService_AcceptBooking_WrongTechnician(t *testing.T) {
	repo := new(mockBookingRepo)
	svc := NewBookingService(repo, nil)
	ctx := context.Background()

	booking := pendingBooking(uuid.New(), uuid.New())
	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)

	_, err := svc.AcceptBooking(ctx, booking.ID, uuid.New())

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	repo.AssertNotCalled(t, "UpdateStatusIf")
}

func TestBookingService_AcceptBooking_WrongStatus(t *testing.T) {
	repo := new(mockBookingRepo)
	svc := NewBookingService(repo, nil)
	ctx := context.Background()

	technicianID := uuid.New()
	booking := pendingBooking(uuid.New(), technicianID)
	booking.Status = models.BookingStatusCompleted

	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)

	_, err := svc.AcceptBooking(ctx, booking.ID, technicianID)

	assert.Error(t, err)
	assert.True(t, apperror.IsBadRequest(err))
}

func TestBookingService_AcceptBooking_ConcurrentChange(t *testing.T) {
	repo := new(mockBookingRepo)
	svc := NewBookingService(repo, nil)
	ctx := context.Background()

	technicianID := uuid.New()
	booking := pendingBooking(uuid.New(), technicianID)

	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)
	repo.On("UpdateStatusIf", ctx, booking.ID, models.BookingStatusPending, models.BookingStatusAccepted).Return(nil, repository.ErrBookingStatusChanged)

	_, err := svc.AcceptBooking(ctx, booking.ID, technicianID)

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestBookingService_StartBooking_Success(t *testing.T) {
	repo := new(mockBookingRepo)
	svc := NewBookingService(repo, nil)
	ctx := context.Background()

	technicianID := uuid.New()
	booking := pendingBooking(uuid.New(), technicianID)
	booking.Status = models.BookingStatusAccepted

	started := *booking
	started.Status = models.BookingStatusInProgress

	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)
	repo.On("UpdateStatusIf", ctx, booking.ID, models.BookingStatusAccepted, models.BookingStatusInProgress).Return(&started, nil)

	result, err := svc.StartBooking(ctx, booking.ID, technicianID)

	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusInProgress, result.Status)
}

func TestBookingService_CompleteBooking_OnlyCompany(t *testing.T) {
	repo := new(mockBookingRepo)
	svc := NewBookingService(repo, nil)
	ctx := context.Background()

	technicianID := uuid.New()
	booking := pendingBooking(uuid.New(), technicianID)
	booking.Status = models.BookingStatusInProgress

	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)

	// Техник не может завершить бронирование
	_, err := svc.CompleteBooking(ctx, booking.ID, technicianID)

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestBookingService_CompleteBooking_Success(t *testing.T) {
	repo := new(mockBookingRepo)
	svc := NewBookingService(repo, nil)
	ctx := context.Background()

	companyID := uuid.New()
	booking := pendingBooking(companyID, uuid.New())
	booking.Status = models.BookingStatusInProgress

	completed := *booking
	completed.Status = models.BookingStatusCompleted

	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)
	repo.On("UpdateStatusIf", ctx, booking.ID, models.BookingStatusInProgress, models.BookingStatusCompleted).Return(&completed, nil)

	result, err := svc.CompleteBooking(ctx, booking.ID, companyID)

	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, result.Status)
}

func TestBookingService_CompleteBooking_FromAccepted(t *testing.T) {
	repo := new(mockBookingRepo)
	svc := NewBookingService(repo, nil)
	ctx := context.Background()

	companyID := uuid.New()
	booking := pendingBooking(companyID, uuid.New())
	booking.Status = models.BookingStatusAccepted

	completed := *booking
	completed.Status = models.BookingStatusCompleted

	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)
	repo.On("UpdateStatusIf", ctx, booking.ID, models.BookingStatusAccepted, models.BookingStatusCompleted).Return(&completed, nil)

	result, err := svc.CompleteBooking(ctx, booking.ID, companyID)

	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, result.Status)
}

func TestBookingService_CompleteBooking_PendingRejected(t *testing.T) {
	repo := new(mockBookingRepo)
	svc := NewBookingService(repo, nil)
	ctx := context.Background()

	companyID := uuid.New()
	booking := pendingBooking(companyID, uuid.New())

	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)

	_, err := svc.CompleteBooking(ctx, booking.ID, companyID)

	assert.Error(t, err)
	assert.True(t, apperror.IsBadRequest(err))
	repo.AssertNotCalled(t, "UpdateStatusIf")
}

func TestBookingService_CancelBooking_Disputed(t *testing.T) {
	repo := new(mockBookingRepo)
	svc := NewBookingService(repo, nil)
	ctx := context.Background()

	companyID := uuid.New()
	booking := pendingBooking(companyID, uuid.New())
	booking.Status = models.BookingStatusDisputed

	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)

	_, err := svc.CancelBooking(ctx, booking.ID, companyID)

	assert.Error(t, err)
	assert.True(t, apperror.IsBadRequest(err))
	assert.Contains(t, err.Error(), "спор")
}

func TestBookingService_CancelBooking_Terminal(t *testing.T) {
	repo := new(mockBookingRepo)
	svc := NewBookingService(repo, nil)
	ctx := context.Background()

	companyID := uuid.New()
	booking := pendingBooking(companyID, uuid.New())
	booking.Status = models.BookingStatusCompleted

	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)

	_, err := svc.CancelBooking(ctx, booking.ID, companyID)

	assert.Error(t, err)
	assert.True(t, apperror.IsBadRequest(err))
}

func TestBookingService_CancelBooking_NotParticipant(t *testing.T) {
	repo := new(mockBookingRepo)
	svc := NewBookingService(repo, nil)
	ctx := context.Background()

	booking := pendingBooking(uuid.New(), uuid.New())
	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)

	_, err := svc.CancelBooking(ctx, booking.ID, uuid.New())

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestBookingService_CancelBooking_Success(t *testing.T) {
	repo := new(mockBookingRepo)
	svc := NewBookingService(repo, nil)
	ctx := context.Background()

	companyID := uuid.New()
	booking := pendingBooking(companyID, uuid.New())
	booking.Status = models.BookingStatusAccepted

	cancelled := *booking
	cancelled.Status = models.BookingStatusCancelled

	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)
	repo.On("UpdateStatusIf", ctx, booking.ID, models.BookingStatusAccepted, models.BookingStatusCancelled).Return(&cancelled, nil)

	result, err := svc.CancelBooking(ctx, booking.ID, companyID)

	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, result.Status)
}

func TestBookingService_ListBookings_Pagination(t *testing.T) {
	repo := new(mockBookingRepo)
	svc := NewBookingService(repo, nil)
	ctx := context.Background()

	userID := uuid.New()
	items := make([]models.Booking, 3)
	for i := range items {
		items[i] = models.Booking{ID: uuid.New(), CompanyID: userID}
	}

	// Репозиторий вернул limit+1 записей: есть следующая страница.
	repo.On("ListByParticipant", ctx, userID, "", (*uuid.UUID)(nil), 3).Return(items, nil)

	page, err := svc.ListBookings(ctx, userID, "", nil, 2)

	assert.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.NotNil(t, page.NextCursor)
	assert.Equal(t, page.Items[1].ID, *page.NextCursor)
}

func TestBookingService_ListBookings_LastPage(t *testing.T) {
	repo := new(mockBookingRepo)
	svc := NewBookingService(repo, nil)
	ctx := context.Background()

	userID := uuid.New()
	items := []models.Booking{{ID: uuid.New(), CompanyID: userID}}

	repo.On("ListByParticipant", ctx, userID, "", (*uuid.UUID)(nil), 3).Return(items, nil)

	page, err := svc.ListBookings(ctx, userID, "", nil, 2)

	assert.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Nil(t, page.NextCursor)
}

func TestBookingService_ListBookings_InvalidStatus(t *testing.T) {
	repo := new(mockBookingRepo)
	svc := NewBookingService(repo, nil)

	_, err := svc.ListBookings(context.Background(), uuid.New(), "unknown", nil, 10)

	assert.Error(t, err)
	assert.True(t, apperror.IsBadRequest(err))
}

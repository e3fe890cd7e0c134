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
)

type mockMessageRepo struct {
	mock.Mock
}

func (m *mockMessageRepo) Create(ctx context.Context, message *models.Message) error {
	args := m.Called(ctx, message)
	if args.Error(0) == nil {
		message.ID = uuid.New()
		message.CreatedAt = time.Now()
	}
	return args.Error(0)
}

func (m *mockMessageRepo) ListByBooking(ctx context.Context, bookingID uuid.UUID, cursor *uuid.UUID, limit int) ([]models.Message, error) {
	args := m.Called(ctx, bookingID, cursor, limit)
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *mockMessageRepo) MarkRead(ctx context.Context, bookingID, readerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, bookingID, readerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMessageRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type mockBookingRepoForMessages struct {
	mock.Mock
}

func (m *mockBookingRepoForMessages) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func TestMessageService_SendMessage_Success(t *testing.T) {
	repo := new(mockMessageRepo)
	bookings := new(mockBookingRepoForMessages)
	svc := NewMessageService(repo, bookings, nil)
	ctx := context.Background()

	companyID := uuid.New()
	booking := pendingBooking(companyID, uuid.New())
	booking.Status = models.BookingStatusAccepted

	bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Message")).Return(nil)

	message, err := svc.SendMessage(ctx, SendMessageInput{
		BookingID: booking.ID,
		SenderID:  companyID,
		Content:   "Во сколько будете на площадке?",
	})

	assert.NoError(t, err)
	assert.NotNil(t, message)
	assert.Equal(t, companyID, message.SenderID)
}

func TestMessageService_SendMessage_EmptyContent(t *testing.T) {
	repo := new(mockMessageRepo)
	bookings := new(mockBookingRepoForMessages)
	svc := NewMessageService(repo, bookings, nil)

	_, err := svc.SendMessage(context.Background(), SendMessageInput{
		BookingID: uuid.New(),
		SenderID:  uuid.New(),
		Content:   "",
	})

	assert.Error(t, err)
	repo.AssertNotCalled(t, "Create")
}

func TestMessageService_SendMessage_NotParticipant(t *testing.T) {
	repo := new(mockMessageRepo)
	bookings := new(mockBookingRepoForMessages)
	svc := NewMessageService(repo, bookings, nil)
	ctx := context.Background()

	booking := pendingBooking(uuid.New(), uuid.New())
	bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)

	_, err := svc.SendMessage(ctx, SendMessageInput{
		BookingID: booking.ID,
		SenderID:  uuid.New(),
		Content:   "привет",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestMessageService_ListMessages_ChronologicalOrder(t *testing.T) {
	repo := new(mockMessageRepo)
	bookings := new(mockBookingRepoForMessages)
	svc := NewMessageService(repo, bookings, nil)
	ctx := context.Background()

	companyID := uuid.New()
	booking := pendingBooking(companyID, uuid.New())
	bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)

	now := time.Now()
	// Репозиторий отдаёт сообщения от новых к старым.
	newest := models.Message{ID: uuid.New(), BookingID: booking.ID, CreatedAt: now}
	middle := models.Message{ID: uuid.New(), BookingID: booking.ID, CreatedAt: now.Add(-time.Minute)}
	oldest := models.Message{ID: uuid.New(), BookingID: booking.ID, CreatedAt: now.Add(-2 * time.Minute)}

	repo.On("ListByBooking", ctx, booking.ID, (*uuid.UUID)(nil), 11).Return([]models.Message{newest, middle, oldest}, nil)

	page, err := svc.ListMessages(ctx, booking.ID, companyID, models.RoleCompany, nil, 10)

	assert.NoError(t, err)
	assert.Len(t, page.Items, 3)
	// Страница развёрнута в хронологию
	assert.Equal(t, oldest.ID, page.Items[0].ID)
	assert.Equal(t, newest.ID, page.Items[2].ID)
	assert.Nil(t, page.NextCursor)
}

func TestMessageService_ListMessages_CursorIsOldestBeforeReversal(t *testing.T) {
	repo := new(mockMessageRepo)
	bookings := new(mockBookingRepoForMessages)
	svc := NewMessageService(repo, bookings, nil)
	ctx := context.Background()

	companyID := uuid.New()
	booking := pendingBooking(companyID, uuid.New())
	bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)

	items := []models.Message{
		{ID: uuid.New(), BookingID: booking.ID},
		{ID: uuid.New(), BookingID: booking.ID},
		{ID: uuid.New(), BookingID: booking.ID},
	}
	repo.On("ListByBooking", ctx, booking.ID, (*uuid.UUID)(nil), 3).Return(items, nil)

	page, err := svc.ListMessages(ctx, booking.ID, companyID, models.RoleCompany, nil, 2)

	assert.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.NotNil(t, page.NextCursor)
	// Курсор указывает на последний элемент выборки до разворота,
	// после разворота он стоит первым в странице.
	assert.Equal(t, items[1].ID, *page.NextCursor)
	assert.Equal(t, items[1].ID, page.Items[0].ID)
}

func TestMessageService_ListMessages_AdminAccess(t *testing.T) {
	repo := new(mockMessageRepo)
	bookings := new(mockBookingRepoForMessages)
	svc := NewMessageService(repo, bookings, nil)
	ctx := context.Background()

	booking := pendingBooking(uuid.New(), uuid.New())
	bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)
	repo.On("ListByBooking", ctx, booking.ID, (*uuid.UUID)(nil), 21).Return([]models.Message{}, nil)

	_, err := svc.ListMessages(ctx, booking.ID, uuid.New(), models.RoleAdmin, nil, 0)

	assert.NoError(t, err)
}

func TestMessageService_MarkRead_Idempotent(t *testing.T) {
	repo := new(mockMessageRepo)
	bookings := new(mockBookingRepoForMessages)
	svc := NewMessageService(repo, bookings, nil)
	ctx := context.Background()

	companyID := uuid.New()
	booking := pendingBooking(companyID, uuid.New())
	bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)

	repo.On("MarkRead", ctx, booking.ID, companyID).Return(int64(2), nil).Once()
	repo.On("MarkRead", ctx, booking.ID, companyID).Return(int64(0), nil).Once()

	count, err := svc.MarkRead(ctx, booking.ID, companyID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// Повторный вызов ничего не помечает
	count, err = svc.MarkRead(ctx, booking.ID, companyID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestMessageService_MarkRead_NotParticipant(t *testing.T) {
	repo := new(mockMessageRepo)
	bookings := new(mockBookingRepoForMessages)
	svc := NewMessageService(repo, bookings, nil)
	ctx := context.Background()

	booking := pendingBooking(uuid.New(), uuid.New())
	bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)

	_, err := svc.MarkRead(ctx, booking.ID, uuid.New())

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	repo.AssertNotCalled(t, "MarkRead")
}

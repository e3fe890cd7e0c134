package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dkoroteev/eventcrew-backend/internal/models"
	"github.com/dkoroteev/eventcrew-backend/internal/pkg/apperror"
	"github.com/dkoroteev/eventcrew-backend/internal/repository/common"
)

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	if args.Error(0) == nil {
		review.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *mockReviewRepo) SetResponse(ctx context.Context, id uuid.UUID, response string) (*models.Review, error) {
	args := m.Called(ctx, id, response)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *mockReviewRepo) ListBySubject(ctx context.Context, subjectID uuid.UUID, cursor *uuid.UUID, limit int) ([]models.Review, error) {
	args := m.Called(ctx, subjectID, cursor, limit)
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *mockReviewRepo) Stats(ctx context.Context, subjectID uuid.UUID) (*models.ReviewStats, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewStats), args.Error(1)
}

func (m *mockReviewRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockBookingRepoForReview struct {
	mock.Mock
}

func (m *mockBookingRepoForReview) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func TestReviewService_CreateReview_Success(t *testing.T) {
	repo := new(mockReviewRepo)
	bookings := new(mockBookingRepoForReview)
	svc := NewReviewService(repo, bookings, nil)
	ctx := context.Background()

	companyID := uuid.New()
	technicianID := uuid.New()
	booking := pendingBooking(companyID, technicianID)
	booking.Status = models.BookingStatusCompleted

	bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Review")).Return(nil)

	content := "Отличная работа, всё вовремя"
	review, err := svc.CreateReview(ctx, CreateReviewInput{
		BookingID: booking.ID,
		AuthorID:  companyID,
		Rating:    5,
		Content:   &content,
	})

	assert.NoError(t, err)
	assert.NotNil(t, review)
	assert.Equal(t, technicianID, review.SubjectID)
	assert.Equal(t, 5, review.Rating)
}

func TestReviewService_CreateReview_InvalidRating(t *testing.T) {
	repo := new(mockReviewRepo)
	bookings := new(mockBookingRepoForReview)
	svc := NewReviewService(repo, bookings, nil)

	_, err := svc.CreateReview(context.Background(), CreateReviewInput{
		BookingID: uuid.New(),
		AuthorID:  uuid.New(),
		Rating:    0,
	})
	assert.Error(t, err)

	_, err = svc.CreateReview(context.Background(), CreateReviewInput{
		BookingID: uuid.New(),
		AuthorID:  uuid.New(),
		Rating:    6,
	})
	assert.Error(t, err)
}

func TestReviewService_CreateReview_BookingNotCompleted(t *testing.T) {
	repo := new(mockReviewRepo)
	bookings := new(mockBookingRepoForReview)
	svc := NewReviewService(repo, bookings, nil)
	ctx := context.Background()

	companyID := uuid.New()
	booking := pendingBooking(companyID, uuid.New())
	booking.Status = models.BookingStatusInProgress

	bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)

	_, err := svc.CreateReview(ctx, CreateReviewInput{
		BookingID: booking.ID,
		AuthorID:  companyID,
		Rating:    4,
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsBadRequest(err))
	repo.AssertNotCalled(t, "Create")
}

func TestReviewService_CreateReview_Duplicate(t *testing.T) {
	repo := new(mockReviewRepo)
	bookings := new(mockBookingRepoForReview)
	svc := NewReviewService(repo, bookings, nil)
	ctx := context.Background()

	companyID := uuid.New()
	booking := pendingBooking(companyID, uuid.New())
	booking.Status = models.BookingStatusCompleted

	bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Review")).Return(common.ErrAlreadyExists)

	_, err := svc.CreateReview(ctx, CreateReviewInput{
		BookingID: booking.ID,
		AuthorID:  companyID,
		Rating:    3,
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestReviewService_RespondToReview_Success(t *testing.T) {
	repo := new(mockReviewRepo)
	bookings := new(mockBookingRepoForReview)
	svc := NewReviewService(repo, bookings, nil)
	ctx := context.Background()

	subjectID := uuid.New()
	review := &models.Review{
		ID:        uuid.New(),
		AuthorID:  uuid.New(),
		SubjectID: subjectID,
		Rating:    2,
	}
	responseText := "Сожалею, что так вышло"
	responded := *review
	responded.Response = &responseText

	repo.On("GetByID", ctx, review.ID).Return(review, nil)
	repo.On("SetResponse", ctx, review.ID, responseText).Return(&responded, nil)

	result, err := svc.RespondToReview(ctx, review.ID, subjectID, responseText)

	assert.NoError(t, err)
	assert.NotNil(t, result.Response)
}

func TestReviewService_RespondToReview_OnlySubject(t *testing.T) {
	repo := new(mockReviewRepo)
	bookings := new(mockBookingRepoForReview)
	svc := NewReviewService(repo, bookings, nil)
	ctx := context.Background()

	review := &models.Review{
		ID:        uuid.New(),
		AuthorID:  uuid.New(),
		SubjectID: uuid.New(),
		Rating:    4,
	}

	repo.On("GetByID", ctx, review.ID).Return(review, nil)

	// Автор отзыва не может ответить на собственный отзыв
	_, err := svc.RespondToReview(ctx, review.ID, review.AuthorID, "спасибо")

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestReviewService_RespondToReview_WriteOnce(t *testing.T) {
	repo := new(mockReviewRepo)
	bookings := new(mockBookingRepoForReview)
	svc := NewReviewService(repo, bookings, nil)
	ctx := context.Background()

	subjectID := uuid.New()
	existing := "Уже отвечено"
	review := &models.Review{
		ID:        uuid.New(),
		AuthorID:  uuid.New(),
		SubjectID: subjectID,
		Rating:    4,
		Response:  &existing,
	}

	repo.On("GetByID", ctx, review.ID).Return(review, nil)

	_, err := svc.RespondToReview(ctx, review.ID, subjectID, "второй ответ")

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	repo.AssertNotCalled(t, "SetResponse")
}

func TestReviewService_GetUserStats_Empty(t *testing.T) {
	repo := new(mockReviewRepo)
	bookings := new(mockBookingRepoForReview)
	svc := NewReviewService(repo, bookings, nil)
	ctx := context.Background()

	subjectID := uuid.New()
	repo.On("Stats", ctx, subjectID).Return(models.NewReviewStats(), nil)

	stats, err := svc.GetUserStats(ctx, subjectID)

	assert.NoError(t, err)
	assert.Equal(t, 0, stats.Count)
	assert.Equal(t, 0.0, stats.Average)
	assert.Len(t, stats.Distribution, 5)
}

func TestReviewService_GetUserStats_Cached(t *testing.T) {
	repo := new(mockReviewRepo)
	bookings := new(mockBookingRepoForReview)
	cache := NewCacheService()
	svc := NewReviewService(repo, bookings, cache)
	ctx := context.Background()

	subjectID := uuid.New()
	stats := &models.ReviewStats{Average: 4.5, Count: 2, Distribution: map[int]int{4: 1, 5: 1}}
	repo.On("Stats", ctx, subjectID).Return(stats, nil).Once()

	first, err := svc.GetUserStats(ctx, subjectID)
	assert.NoError(t, err)

	// Второй запрос идёт из кэша, репозиторий не трогается.
	second, err := svc.GetUserStats(ctx, subjectID)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
	repo.AssertNumberOfCalls(t, "Stats", 1)
}

func TestReviewService_DeleteReview_AuthorOrAdmin(t *testing.T) {
	repo := new(mockReviewRepo)
	bookings := new(mockBookingRepoForReview)
	svc := NewReviewService(repo, bookings, nil)
	ctx := context.Background()

	review := &models.Review{
		ID:        uuid.New(),
		AuthorID:  uuid.New(),
		SubjectID: uuid.New(),
		Rating:    1,
	}

	repo.On("GetByID", ctx, review.ID).Return(review, nil)
	repo.On("SoftDelete", ctx, review.ID).Return(nil)

	// Посторонний пользователь не может удалить отзыв
	err := svc.DeleteReview(ctx, review.ID, uuid.New(), models.RoleTechnician)
	assert.True(t, apperror.IsForbidden(err))

	// Автор может
	err = svc.DeleteReview(ctx, review.ID, review.AuthorID, models.RoleCompany)
	assert.NoError(t, err)

	// Администратор может
	err = svc.DeleteReview(ctx, review.ID, uuid.New(), models.RoleAdmin)
	assert.NoError(t, err)
}

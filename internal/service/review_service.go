package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dkoroteev/eventcrew-backend/internal/models"
	"github.com/dkoroteev/eventcrew-backend/internal/pkg/apperror"
	"github.com/dkoroteev/eventcrew-backend/internal/repository"
	"github.com/dkoroteev/eventcrew-backend/internal/repository/common"
	"github.com/dkoroteev/eventcrew-backend/internal/validation"
)

// statsCacheTTL время жизни кэша статистики отзывов.
const statsCacheTTL = 5 * time.Minute

// ReviewRepo описывает взаимодействие сервиса с хранилищем отзывов.
type ReviewRepo interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	SetResponse(ctx context.Context, id uuid.UUID, response string) (*models.Review, error)
	ListBySubject(ctx context.Context, subjectID uuid.UUID, cursor *uuid.UUID, limit int) ([]models.Review, error)
	Stats(ctx context.Context, subjectID uuid.UUID) (*models.ReviewStats, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// BookingRepoForReview минимальный контракт доступа к бронированиям.
type BookingRepoForReview interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

// ReviewService содержит бизнес-логику отзывов.
type ReviewService struct {
	repo     ReviewRepo
	bookings BookingRepoForReview
	cache    *CacheService
}

// NewReviewService создаёт сервис отзывов.
func NewReviewService(repo ReviewRepo, bookings BookingRepoForReview, cache *CacheService) *ReviewService {
	return &ReviewService{repo: repo, bookings: bookings, cache: cache}
}

// CreateReviewInput описывает входные данные создания отзыва.
type CreateReviewInput struct {
	BookingID uuid.UUID
	AuthorID  uuid.UUID
	Rating    int
	Content   *string
}

// ReviewPage страница отзывов с курсором продолжения.
type ReviewPage struct {
	Items      []models.Review `json:"items"`
	NextCursor *uuid.UUID      `json:"next_cursor,omitempty"`
}

// CreateReview создаёт отзыв о второй стороне завершённого бронирования.
// Один автор оставляет не больше одного отзыва на бронирование.
func (s *ReviewService) CreateReview(ctx context.Context, in CreateReviewInput) (*models.Review, error) {
	if err := validation.ValidateRating(in.Rating); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if in.Content != nil {
		if err := validation.ValidateLength("текст отзыва", *in.Content, 0, validation.MaxReviewContentLength); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	booking, err := s.bookings.GetByID(ctx, in.BookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, apperror.ErrBookingNotFound
		}
		return nil, err
	}

	if !isParticipant(booking, in.AuthorID) {
		return nil, apperror.ErrForbidden
	}
	if booking.Status != models.BookingStatusCompleted {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "отзыв можно оставить только после завершения бронирования")
	}

	subject, err := counterparty(booking, in.AuthorID)
	if err != nil {
		return nil, err
	}

	review := &models.Review{
		BookingID: in.BookingID,
		AuthorID:  in.AuthorID,
		SubjectID: subject,
		Rating:    in.Rating,
		Content:   in.Content,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, apperror.New(apperror.ErrCodeConflict, "вы уже оставили отзыв на это бронирование")
		}
		return nil, err
	}

	s.invalidateStats(subject)

	return review, nil
}

// RespondToReview записывает ответ субъекта на отзыв. Ответ пишется
// один раз и не редактируется.
func (s *ReviewService) RespondToReview(ctx context.Context, reviewID, userID uuid.UUID, response string) (*models.Review, error) {
	if err := validation.ValidateLength("ответ на отзыв", response, 1, validation.MaxReviewContentLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, apperror.ErrReviewNotFound
		}
		return nil, err
	}

	if review.SubjectID != userID {
		return nil, apperror.ErrForbidden
	}
	if review.Response != nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "ответ на отзыв уже оставлен")
	}

	updated, err := s.repo.SetResponse(ctx, reviewID, response)
	if err != nil {
		if errors.Is(err, repository.ErrResponseExists) {
			return nil, apperror.New(apperror.ErrCodeConflict, "ответ на отзыв уже оставлен")
		}
		return nil, err
	}

	return updated, nil
}

// ListUserReviews возвращает страницу отзывов о пользователе.
func (s *ReviewService) ListUserReviews(ctx context.Context, subjectID uuid.UUID, cursor *uuid.UUID, limit int) (*ReviewPage, error) {
	limit = clampLimit(limit)
	items, err := s.repo.ListBySubject(ctx, subjectID, cursor, limit+1)
	if err != nil {
		return nil, err
	}

	page := &ReviewPage{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		page.NextCursor = &page.Items[limit-1].ID
	}

	return page, nil
}

// GetUserStats возвращает статистику отзывов о пользователе.
// Пользователь без отзывов получает нулевую статистику, не ошибку.
func (s *ReviewService) GetUserStats(ctx context.Context, subjectID uuid.UUID) (*models.ReviewStats, error) {
	if s.cache != nil {
		value, err := s.cache.GetOrSet(ctx, ReviewStatsCacheKey(subjectID), statsCacheTTL, func() (interface{}, error) {
			return s.repo.Stats(ctx, subjectID)
		})
		if err != nil {
			return nil, err
		}
		if stats, ok := value.(*models.ReviewStats); ok {
			return stats, nil
		}
	}

	return s.repo.Stats(ctx, subjectID)
}

// DeleteReview скрывает отзыв. Доступно автору и администратору.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, userID uuid.UUID, role string) error {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return apperror.ErrReviewNotFound
		}
		return err
	}

	if role != models.RoleAdmin && review.AuthorID != userID {
		return apperror.ErrForbidden
	}

	if err := s.repo.SoftDelete(ctx, reviewID); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return apperror.ErrReviewNotFound
		}
		return err
	}

	s.invalidateStats(review.SubjectID)

	return nil
}

func (s *ReviewService) invalidateStats(subjectID uuid.UUID) {
	if s.cache != nil {
		s.cache.Delete(ReviewStatsCacheKey(subjectID))
	}
}

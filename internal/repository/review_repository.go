package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/dkoroteev/eventcrew-backend/internal/models"
	"github.com/dkoroteev/eventcrew-backend/internal/repository/common"
)

// ErrReviewNotFound возвращается, когда отзыв не найден.
var ErrReviewNotFound = errors.New("review not found")

// ErrResponseExists возвращается при попытке повторного ответа на отзыв.
var ErrResponseExists = errors.New("review response already exists")

// ReviewRepository отвечает за работу с таблицей reviews.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository создаёт экземпляр репозитория.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create создаёт отзыв. Повторный отзыв того же автора по тому же
// бронированию упирается в уникальный индекс и возвращает
// common.ErrAlreadyExists.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (booking_id, author_id, subject_id, rating, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		review.BookingID, review.AuthorID, review.SubjectID, review.Rating, review.Content,
	).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("review repository: create %w", err)
	}

	return nil
}

// GetByID возвращает отзыв по идентификатору.
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.GetContext(ctx, &review, `SELECT * FROM reviews WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("review repository: get by id %w", err)
	}

	return &review, nil
}

// SetResponse записывает ответ субъекта на отзыв. Ответ пишется один
// раз: повторная попытка возвращает ErrResponseExists.
func (r *ReviewRepository) SetResponse(ctx context.Context, id uuid.UUID, response string) (*models.Review, error) {
	var review models.Review
	err := r.db.GetContext(ctx, &review, `
		UPDATE reviews
		SET response = $2, responded_at = NOW()
		WHERE id = $1 AND response IS NULL AND deleted_at IS NULL
		RETURNING *
	`, id, response)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResponseExists
		}
		return nil, fmt.Errorf("review repository: set response %w", err)
	}

	return &review, nil
}

// ListBySubject возвращает отзывы о пользователе. Keyset-пагинация,
// курсор — id последнего элемента предыдущей страницы.
func (r *ReviewRepository) ListBySubject(ctx context.Context, subjectID uuid.UUID, cursor *uuid.UUID, limit int) ([]models.Review, error) {
	query := `
		SELECT * FROM reviews
		WHERE subject_id = $1 AND deleted_at IS NULL
			AND ($2::uuid IS NULL OR (created_at, id) < (SELECT created_at, id FROM reviews WHERE id = $2))
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	var reviews []models.Review
	if err := r.db.SelectContext(ctx, &reviews, query, subjectID, cursor, limit); err != nil {
		return nil, fmt.Errorf("review repository: list by subject %w", err)
	}

	return reviews, nil
}

// Stats возвращает агрегированную статистику отзывов о пользователе.
// Для пользователя без отзывов — нулевая статистика, не ошибка.
func (r *ReviewRepository) Stats(ctx context.Context, subjectID uuid.UUID) (*models.ReviewStats, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT rating, COUNT(*) FROM reviews
		WHERE subject_id = $1 AND deleted_at IS NULL
		GROUP BY rating
	`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("review repository: stats %w", err)
	}
	defer rows.Close()

	stats := models.NewReviewStats()
	var sum int
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, fmt.Errorf("review repository: stats scan %w", err)
		}
		if rating < 1 || rating > 5 {
			continue
		}
		stats.Distribution[rating] = count
		stats.Count += count
		sum += rating * count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("review repository: stats rows %w", err)
	}

	if stats.Count > 0 {
		stats.Average = float64(sum) / float64(stats.Count)
	}

	return stats, nil
}

// SoftDelete помечает отзыв удалённым, исключая его из выдач и статистики.
func (r *ReviewRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE reviews SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("review repository: soft delete %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("review repository: soft delete rows affected %w", err)
	}
	if affected == 0 {
		return ErrReviewNotFound
	}

	return nil
}

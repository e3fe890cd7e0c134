package models

import (
	"time"

	"github.com/google/uuid"
)

// Review описывает отзыв участника о второй стороне завершённого
// бронирования. Пара (booking_id, author_id) уникальна.
type Review struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	BookingID   uuid.UUID  `db:"booking_id" json:"booking_id"`
	AuthorID    uuid.UUID  `db:"author_id" json:"author_id"`
	SubjectID   uuid.UUID  `db:"subject_id" json:"subject_id"`
	Rating      int        `db:"rating" json:"rating"`
	Content     *string    `db:"content" json:"content,omitempty"`
	Response    *string    `db:"response" json:"response,omitempty"`
	RespondedAt *time.Time `db:"responded_at" json:"responded_at,omitempty"`
	DeletedAt   *time.Time `db:"deleted_at" json:"-"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// ReviewStats агрегированная статистика отзывов о пользователе.
type ReviewStats struct {
	Average      float64     `json:"average"`
	Count        int         `json:"count"`
	Distribution map[int]int `json:"distribution"`
}

// NewReviewStats возвращает пустую статистику с нулевым распределением.
func NewReviewStats() *ReviewStats {
	return &ReviewStats{
		Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
}

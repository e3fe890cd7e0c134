package models

import (
	"time"

	"github.com/google/uuid"
)

// Message описывает сообщение в переписке по бронированию.
// Лента только дописывается; видна двум участникам и администратору.
type Message struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	BookingID   uuid.UUID   `db:"booking_id" json:"booking_id"`
	SenderID    uuid.UUID   `db:"sender_id" json:"sender_id"`
	Content     string      `db:"content" json:"content"`
	Attachments []uuid.UUID `db:"attachments" json:"attachments,omitempty"`
	ReadAt      *time.Time  `db:"read_at" json:"read_at,omitempty"`
	DeletedAt   *time.Time  `db:"deleted_at" json:"-"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

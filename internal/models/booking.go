package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking описывает контракт между компанией и техником на мероприятие.
// CompanyID и TechnicianID ссылаются на пользователей, владеющих
// соответствующими профилями. TechnicianID может быть пустым для
// открытых бронирований без назначенного исполнителя.
type Booking struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	CompanyID      uuid.UUID  `db:"company_id" json:"company_id"`
	TechnicianID   *uuid.UUID `db:"technician_id" json:"technician_id,omitempty"`
	Title          string     `db:"title" json:"title"`
	Description    *string    `db:"description" json:"description,omitempty"`
	EventDate      time.Time  `db:"event_date" json:"event_date"`
	EventEndDate   *time.Time `db:"event_end_date" json:"event_end_date,omitempty"`
	Location       *string    `db:"location" json:"location,omitempty"`
	HourlyRate     float64    `db:"hourly_rate" json:"hourly_rate"`
	EstimatedHours *float64   `db:"estimated_hours" json:"estimated_hours,omitempty"`
	TotalAmount    *float64   `db:"total_amount" json:"total_amount,omitempty"`
	Status         string     `db:"status" json:"status"`
	PreviousStatus *string    `db:"previous_status" json:"-"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// IsTerminal сообщает, достигло ли бронирование конечного статуса.
func (b *Booking) IsTerminal() bool {
	_, ok := TerminalBookingStatuses[b.Status]
	return ok
}

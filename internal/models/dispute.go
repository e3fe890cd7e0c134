package models

import (
	"time"

	"github.com/google/uuid"
)

// Dispute описывает спор по бронированию. На одно бронирование
// допускается не более одного спора; респондент всегда вторая
// сторона бронирования, не податель.
type Dispute struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	BookingID    uuid.UUID  `db:"booking_id" json:"booking_id"`
	FilerID      uuid.UUID  `db:"filer_id" json:"filer_id"`
	RespondentID uuid.UUID  `db:"respondent_id" json:"respondent_id"`
	Reason       string     `db:"reason" json:"reason"`
	Description  string     `db:"description" json:"description"`
	Evidence     []string   `db:"evidence" json:"evidence,omitempty"`
	Status       string     `db:"status" json:"status"`
	Resolution   *string    `db:"resolution" json:"resolution,omitempty"`
	ResolvedBy   *uuid.UUID `db:"resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt   *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

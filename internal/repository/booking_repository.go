package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dkoroteev/eventcrew-backend/internal/models"
	"github.com/dkoroteev/eventcrew-backend/internal/repository/common"
)

// ErrBookingNotFound возвращается, когда бронирование не найдено.
var ErrBookingNotFound = errors.New("booking not found")

// ErrBookingStatusChanged возвращается, когда условный переход статуса
// не прошёл: строка была изменена конкурентным запросом.
var ErrBookingStatusChanged = errors.New("booking status changed concurrently")

// BookingRepository отвечает за работу с таблицей bookings.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository создаёт экземпляр репозитория.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create создаёт новое бронирование со статусом pending.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (company_id, technician_id, title, description, event_date, event_end_date,
			location, hourly_rate, estimated_hours, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		booking.CompanyID, booking.TechnicianID, booking.Title, booking.Description,
		booking.EventDate, booking.EventEndDate, booking.Location,
		booking.HourlyRate, booking.EstimatedHours, booking.TotalAmount, booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return fmt.Errorf("booking repository: create %w", err)
	}

	return nil
}

// GetByID возвращает бронирование по идентификатору.
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return common.GetByID[models.Booking](ctx, r.db, "bookings", id, ErrBookingNotFound)
}

// UpdateDetails обновляет редактируемые поля бронирования.
// Статус здесь не трогается — переходы идут через UpdateStatusIf.
func (r *BookingRepository) UpdateDetails(ctx context.Context, booking *models.Booking) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET title = $2, description = $3, event_date = $4, event_end_date = $5,
			location = $6, updated_at = NOW()
		WHERE id = $1
	`, booking.ID, booking.Title, booking.Description, booking.EventDate, booking.EventEndDate,
		booking.Location)
	if err != nil {
		return fmt.Errorf("booking repository: update details %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("booking repository: update details rows affected %w", err)
	}
	if affected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// AssignTechnician назначает техника на бронирование, пока оно pending.
func (r *BookingRepository) AssignTechnician(ctx context.Context, id, technicianID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.GetContext(ctx, &booking, `
		UPDATE bookings SET technician_id = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
		RETURNING *
	`, id, technicianID, models.BookingStatusPending)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingStatusChanged
		}
		return nil, fmt.Errorf("booking repository: assign technician %w", err)
	}

	return &booking, nil
}

// UpdateStatusIf выполняет условный переход статуса: строка обновляется
// только если текущий статус равен expected. Защита от потерянных
// обновлений при конкурентных переходах.
func (r *BookingRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.GetContext(ctx, &booking, `
		UPDATE bookings SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING *
	`, id, expected, next)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingStatusChanged
		}
		return nil, fmt.Errorf("booking repository: update status %w", err)
	}

	return &booking, nil
}

// SetDisputedTx переводит бронирование в disputed внутри транзакции,
// запоминая предыдущий статус для последующего восстановления.
func (r *BookingRepository) SetDisputedTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, expected string) (*models.Booking, error) {
	var booking models.Booking
	err := tx.GetContext(ctx, &booking, `
		UPDATE bookings SET status = $3, previous_status = status, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING *
	`, id, expected, models.BookingStatusDisputed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingStatusChanged
		}
		return nil, fmt.Errorf("booking repository: set disputed %w", err)
	}

	return &booking, nil
}

// RestoreFromDispute возвращает бронирование из disputed в сохранённый
// предыдущий статус после закрытия спора.
func (r *BookingRepository) RestoreFromDispute(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.GetContext(ctx, &booking, `
		UPDATE bookings
		SET status = COALESCE(previous_status, status), previous_status = NULL, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING *
	`, id, models.BookingStatusDisputed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingStatusChanged
		}
		return nil, fmt.Errorf("booking repository: restore from dispute %w", err)
	}

	return &booking, nil
}

// ListByParticipant возвращает бронирования, где пользователь выступает
// компанией либо техником. Keyset-пагинация по (created_at, id):
// курсор — идентификатор последнего элемента предыдущей страницы.
func (r *BookingRepository) ListByParticipant(ctx context.Context, userID uuid.UUID, status string, cursor *uuid.UUID, limit int) ([]models.Booking, error) {
	query := `
		SELECT * FROM bookings
		WHERE (company_id = $1 OR technician_id = $1)
			AND ($2 = '' OR status = $2)
			AND ($3::uuid IS NULL OR (created_at, id) < (SELECT created_at, id FROM bookings WHERE id = $3))
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`

	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, userID, status, cursor, limit); err != nil {
		return nil, fmt.Errorf("booking repository: list by participant %w", err)
	}

	return bookings, nil
}

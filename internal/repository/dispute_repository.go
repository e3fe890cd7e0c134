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

// ErrDisputeNotFound возвращается, когда спор не найден.
var ErrDisputeNotFound = errors.New("dispute not found")

// DisputeRepository отвечает за работу с таблицей disputes.
type DisputeRepository struct {
	db       *sqlx.DB
	bookings *BookingRepository
}

// NewDisputeRepository создаёт экземпляр репозитория.
func NewDisputeRepository(db *sqlx.DB, bookings *BookingRepository) *DisputeRepository {
	return &DisputeRepository{db: db, bookings: bookings}
}

type disputeRow struct {
	models.Dispute
	Evidence pq.StringArray `db:"evidence"`
}

func (row *disputeRow) toModel() *models.Dispute {
	dispute := row.Dispute
	dispute.Evidence = []string(row.Evidence)
	return &dispute
}

// CreateWithBookingFlip атомарно создаёт спор и переводит бронирование
// в disputed с сохранением предыдущего статуса. Либо происходит всё,
// либо ничего. Повторный спор по бронированию упирается в уникальный
// индекс и возвращает common.ErrAlreadyExists.
func (r *DisputeRepository) CreateWithBookingFlip(ctx context.Context, dispute *models.Dispute, expectedStatus string) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO disputes (booking_id, filer_id, respondent_id, reason, description, evidence, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at
		`

		err := tx.QueryRowxContext(
			ctx, query,
			dispute.BookingID, dispute.FilerID, dispute.RespondentID,
			dispute.Reason, dispute.Description, pq.Array(dispute.Evidence), dispute.Status,
		).Scan(&dispute.ID, &dispute.CreatedAt, &dispute.UpdatedAt)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				return common.ErrAlreadyExists
			}
			return fmt.Errorf("dispute repository: create %w", err)
		}

		if _, err := r.bookings.SetDisputedTx(ctx, tx, dispute.BookingID, expectedStatus); err != nil {
			return err
		}

		return nil
	})
}

// GetByID возвращает спор по идентификатору.
func (r *DisputeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	var row disputeRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM disputes WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDisputeNotFound
		}
		return nil, fmt.Errorf("dispute repository: get by id %w", err)
	}

	return row.toModel(), nil
}

// GetByBookingID возвращает спор по бронированию.
func (r *DisputeRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.Dispute, error) {
	var row disputeRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM disputes WHERE booking_id = $1`, bookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDisputeNotFound
		}
		return nil, fmt.Errorf("dispute repository: get by booking %w", err)
	}

	return row.toModel(), nil
}

// UpdateStatus обновляет статус спора. При переходе в терминальный
// статус проставляются резолюция и отметки арбитра; при возврате
// в открытый — сбрасываются.
func (r *DisputeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, resolution *string, resolvedBy *uuid.UUID) (*models.Dispute, error) {
	var row disputeRow
	var err error
	if status == models.DisputeStatusResolved || status == models.DisputeStatusDismissed {
		err = r.db.GetContext(ctx, &row, `
			UPDATE disputes
			SET status = $2, resolution = $3, resolved_by = $4, resolved_at = NOW(), updated_at = NOW()
			WHERE id = $1
			RETURNING *
		`, id, status, resolution, resolvedBy)
	} else {
		err = r.db.GetContext(ctx, &row, `
			UPDATE disputes
			SET status = $2, resolution = NULL, resolved_by = NULL, resolved_at = NULL, updated_at = NOW()
			WHERE id = $1
			RETURNING *
		`, id, status)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDisputeNotFound
		}
		return nil, fmt.Errorf("dispute repository: update status %w", err)
	}

	return row.toModel(), nil
}

// ListByParticipant возвращает споры, где пользователь — заявитель либо
// ответчик, опционально по статусу. Keyset-пагинация, курсор — id
// последнего элемента.
func (r *DisputeRepository) ListByParticipant(ctx context.Context, userID uuid.UUID, status string, cursor *uuid.UUID, limit int) ([]models.Dispute, error) {
	query := `
		SELECT * FROM disputes
		WHERE (filer_id = $1 OR respondent_id = $1)
			AND ($2 = '' OR status = $2)
			AND ($3::uuid IS NULL OR (created_at, id) < (SELECT created_at, id FROM disputes WHERE id = $3))
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`

	var rows []disputeRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, status, cursor, limit); err != nil {
		return nil, fmt.Errorf("dispute repository: list by participant %w", err)
	}

	disputes := make([]models.Dispute, 0, len(rows))
	for i := range rows {
		disputes = append(disputes, *rows[i].toModel())
	}
	return disputes, nil
}

// ListAll возвращает все споры для арбитража, опционально по статусу.
func (r *DisputeRepository) ListAll(ctx context.Context, status string, cursor *uuid.UUID, limit int) ([]models.Dispute, error) {
	query := `
		SELECT * FROM disputes
		WHERE ($1 = '' OR status = $1)
			AND ($2::uuid IS NULL OR (created_at, id) < (SELECT created_at, id FROM disputes WHERE id = $2))
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	var rows []disputeRow
	if err := r.db.SelectContext(ctx, &rows, query, status, cursor, limit); err != nil {
		return nil, fmt.Errorf("dispute repository: list all %w", err)
	}

	disputes := make([]models.Dispute, 0, len(rows))
	for i := range rows {
		disputes = append(disputes, *rows[i].toModel())
	}
	return disputes, nil
}

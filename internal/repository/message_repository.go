package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/dkoroteev/eventcrew-backend/internal/models"
)

// MessageRepository отвечает за работу с таблицей messages.
// Сообщения append-only: редактирование не поддерживается.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository создаёт экземпляр репозитория.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

type messageRow struct {
	models.Message
	Attachments pq.StringArray `db:"attachments"`
}

func (row *messageRow) toModel() (*models.Message, error) {
	message := row.Message
	message.Attachments = make([]uuid.UUID, 0, len(row.Attachments))
	for _, raw := range row.Attachments {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("message repository: bad attachment id %w", err)
		}
		message.Attachments = append(message.Attachments, id)
	}
	return &message, nil
}

func attachmentsArray(ids []uuid.UUID) pq.StringArray {
	arr := make(pq.StringArray, 0, len(ids))
	for _, id := range ids {
		arr = append(arr, id.String())
	}
	return arr
}

// Create сохраняет сообщение в переписке бронирования.
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (booking_id, sender_id, content, attachments)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		message.BookingID, message.SenderID, message.Content, attachmentsArray(message.Attachments),
	).Scan(&message.ID, &message.CreatedAt); err != nil {
		return fmt.Errorf("message repository: create %w", err)
	}

	return nil
}

// ListByBooking возвращает страницу сообщений от новых к старым.
// Keyset-пагинация, курсор — id последнего элемента предыдущей страницы.
// Хронологический порядок внутри страницы восстанавливает сервис.
func (r *MessageRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID, cursor *uuid.UUID, limit int) ([]models.Message, error) {
	query := `
		SELECT * FROM messages
		WHERE booking_id = $1 AND deleted_at IS NULL
			AND ($2::uuid IS NULL OR (created_at, id) < (SELECT created_at, id FROM messages WHERE id = $2))
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	var rows []messageRow
	if err := r.db.SelectContext(ctx, &rows, query, bookingID, cursor, limit); err != nil {
		return nil, fmt.Errorf("message repository: list by booking %w", err)
	}

	messages := make([]models.Message, 0, len(rows))
	for i := range rows {
		message, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		messages = append(messages, *message)
	}
	return messages, nil
}

// MarkRead помечает прочитанными все входящие непрочитанные сообщения
// переписки. Идемпотентно: повторный вызов вернёт ноль.
func (r *MessageRepository) MarkRead(ctx context.Context, bookingID, readerID uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE messages SET read_at = NOW()
		WHERE booking_id = $1 AND sender_id <> $2 AND read_at IS NULL AND deleted_at IS NULL
	`, bookingID, readerID)
	if err != nil {
		return 0, fmt.Errorf("message repository: mark read %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("message repository: mark read rows affected %w", err)
	}

	return affected, nil
}

// CountUnread возвращает число непрочитанных входящих сообщений
// пользователя по всем его бронированиям.
func (r *MessageRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM messages m
		JOIN bookings b ON b.id = m.booking_id
		WHERE (b.company_id = $1 OR b.technician_id = $1)
			AND m.sender_id <> $1 AND m.read_at IS NULL AND m.deleted_at IS NULL
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("message repository: count unread %w", err)
	}

	return count, nil
}

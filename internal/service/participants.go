package service

import (
	"github.com/google/uuid"

	"github.com/dkoroteev/eventcrew-backend/internal/models"
	"github.com/dkoroteev/eventcrew-backend/internal/pkg/apperror"
)

// isParticipant сообщает, является ли пользователь стороной бронирования.
func isParticipant(booking *models.Booking, userID uuid.UUID) bool {
	if booking.CompanyID == userID {
		return true
	}
	return booking.TechnicianID != nil && *booking.TechnicianID == userID
}

// requireParticipant пропускает только стороны бронирования.
// Администратор проходит всегда. Все проверки участия в сервисах
// идут через эту функцию, чтобы правило не расползалось по коду.
func requireParticipant(booking *models.Booking, userID uuid.UUID, role string) error {
	if role == models.RoleAdmin {
		return nil
	}
	if !isParticipant(booking, userID) {
		return apperror.ErrForbidden
	}
	return nil
}

// counterparty возвращает вторую сторону бронирования для пользователя.
// Для бронирования без назначенного техника второй стороны нет.
func counterparty(booking *models.Booking, userID uuid.UUID) (uuid.UUID, error) {
	if booking.CompanyID == userID {
		if booking.TechnicianID == nil {
			return uuid.Nil, apperror.New(apperror.ErrCodeBadRequest, "техник не назначен на бронирование")
		}
		return *booking.TechnicianID, nil
	}
	if booking.TechnicianID != nil && *booking.TechnicianID == userID {
		return booking.CompanyID, nil
	}
	return uuid.Nil, apperror.ErrForbidden
}

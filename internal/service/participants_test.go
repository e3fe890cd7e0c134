package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dkoroteev/eventcrew-backend/internal/models"
	"github.com/dkoroteev/eventcrew-backend/internal/pkg/apperror"
)

func TestIsParticipant(t *testing.T) {
	companyID := uuid.New()
	technicianID := uuid.New()
	booking := pendingBooking(companyID, technicianID)

	assert.True(t, isParticipant(booking, companyID))
	assert.True(t, isParticipant(booking, technicianID))
	assert.False(t, isParticipant(booking, uuid.New()))
}

func TestIsParticipant_NoTechnician(t *testing.T) {
	companyID := uuid.New()
	booking := &models.Booking{ID: uuid.New(), CompanyID: companyID, Status: models.BookingStatusPending}

	assert.True(t, isParticipant(booking, companyID))
	assert.False(t, isParticipant(booking, uuid.New()))
}

func TestRequireParticipant_AdminAlwaysPasses(t *testing.T) {
	booking := pendingBooking(uuid.New(), uuid.New())

	assert.NoError(t, requireParticipant(booking, uuid.New(), models.RoleAdmin))
	assert.Error(t, requireParticipant(booking, uuid.New(), models.RoleCompany))
}

func TestCounterparty(t *testing.T) {
	companyID := uuid.New()
	technicianID := uuid.New()
	booking := pendingBooking(companyID, technicianID)

	other, err := counterparty(booking, companyID)
	assert.NoError(t, err)
	assert.Equal(t, technicianID, other)

	other, err = counterparty(booking, technicianID)
	assert.NoError(t, err)
	assert.Equal(t, companyID, other)

	_, err = counterparty(booking, uuid.New())
	assert.True(t, apperror.IsForbidden(err))
}

func TestCounterparty_NoTechnician(t *testing.T) {
	companyID := uuid.New()
	booking := &models.Booking{ID: uuid.New(), CompanyID: companyID, Status: models.BookingStatusPending}

	_, err := counterparty(booking, companyID)
	assert.Error(t, err)
	assert.True(t, apperror.IsBadRequest(err))
}

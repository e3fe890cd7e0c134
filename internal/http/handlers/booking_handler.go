package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dkoroteev/eventcrew-backend/internal/http/handlers/common"
	"github.com/dkoroteev/eventcrew-backend/internal/http/response"
	"github.com/dkoroteev/eventcrew-backend/internal/models"
	"github.com/dkoroteev/eventcrew-backend/internal/service"
)

// BookingHandler предоставляет HTTP слой для бронирований.
type BookingHandler struct {
	bookings *service.BookingService
}

// NewBookingHandler создаёт хэндлер.
func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

type bookingRequest struct {
	TechnicianID   *uuid.UUID `json:"technician_id"`
	Title          string     `json:"title" binding:"required"`
	Description    *string    `json:"description"`
	EventDate      time.Time  `json:"event_date" binding:"required"`
	EventEndDate   *time.Time `json:"event_end_date"`
	Location       *string    `json:"location"`
	HourlyRate     float64    `json:"hourly_rate" binding:"required"`
	EstimatedHours *float64   `json:"estimated_hours"`
}

type bookingUpdateRequest struct {
	Title        string     `json:"title" binding:"required"`
	Description  *string    `json:"description"`
	EventDate    time.Time  `json:"event_date" binding:"required"`
	EventEndDate *time.Time `json:"event_end_date"`
	Location     *string    `json:"location"`
}

// Create обрабатывает POST /bookings.
func (h *BookingHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	booking, err := h.bookings.CreateBooking(c.Request.Context(), service.CreateBookingInput{
		CompanyID:      userID,
		TechnicianID:   req.TechnicianID,
		Title:          req.Title,
		Description:    req.Description,
		EventDate:      req.EventDate,
		EventEndDate:   req.EventEndDate,
		Location:       req.Location,
		HourlyRate:     req.HourlyRate,
		EstimatedHours: req.EstimatedHours,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, booking)
}

// Get обрабатывает GET /bookings/:id.
func (h *BookingHandler) Get(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	bookingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	booking, err := h.bookings.GetBooking(c.Request.Context(), bookingID, userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, booking)
}

// Update обрабатывает PUT /bookings/:id.
func (h *BookingHandler) Update(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	bookingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var req bookingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	booking, err := h.bookings.UpdateBooking(c.Request.Context(), service.UpdateBookingInput{
		BookingID:    bookingID,
		CompanyID:    userID,
		Title:        req.Title,
		Description:  req.Description,
		EventDate:    req.EventDate,
		EventEndDate: req.EventEndDate,
		Location:     req.Location,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, booking)
}

// Assign обрабатывает POST /bookings/:id/assign.
func (h *BookingHandler) Assign(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	bookingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var req struct {
		TechnicianID uuid.UUID `json:"technician_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	booking, err := h.bookings.AssignTechnician(c.Request.Context(), bookingID, userID, req.TechnicianID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, booking)
}

// Accept обрабатывает POST /bookings/:id/accept.
func (h *BookingHandler) Accept(c *gin.Context) {
	h.transition(c, h.bookings.AcceptBooking)
}

// Start обрабатывает POST /bookings/:id/start.
func (h *BookingHandler) Start(c *gin.Context) {
	h.transition(c, h.bookings.StartBooking)
}

// Complete обрабатывает POST /bookings/:id/complete.
func (h *BookingHandler) Complete(c *gin.Context) {
	h.transition(c, h.bookings.CompleteBooking)
}

// Cancel обрабатывает POST /bookings/:id/cancel.
func (h *BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, h.bookings.CancelBooking)
}

// List обрабатывает GET /bookings.
func (h *BookingHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	limit, cursor, err := common.GetCursorPagination(c)
	if err != nil {
		response.BadRequest(c, "неверный формат курсора")
		return
	}

	page, err := h.bookings.ListBookings(c.Request.Context(), userID, c.Query("status"), cursor, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, page.Items, page.NextCursor)
}

// transition выполняет переход статуса одной из сторон бронирования.
func (h *BookingHandler) transition(c *gin.Context, fn func(ctx context.Context, bookingID, userID uuid.UUID) (*models.Booking, error)) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	bookingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	booking, err := fn(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, booking)
}

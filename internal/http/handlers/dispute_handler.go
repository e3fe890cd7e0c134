package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dkoroteev/eventcrew-backend/internal/http/handlers/common"
	"github.com/dkoroteev/eventcrew-backend/internal/http/response"
	"github.com/dkoroteev/eventcrew-backend/internal/service"
)

// DisputeHandler предоставляет HTTP слой для споров.
type DisputeHandler struct {
	disputes *service.DisputeService
}

// NewDisputeHandler создаёт хэндлер.
func NewDisputeHandler(disputes *service.DisputeService) *DisputeHandler {
	return &DisputeHandler{disputes: disputes}
}

// Create обрабатывает POST /bookings/:id/disputes.
func (h *DisputeHandler) Create(c *gin.Context) {
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
		Reason      string   `json:"reason" binding:"required"`
		Description string   `json:"description" binding:"required"`
		Evidence    []string `json:"evidence"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dispute, err := h.disputes.CreateDispute(c.Request.Context(), service.CreateDisputeInput{
		BookingID:   bookingID,
		FilerID:     userID,
		Reason:      req.Reason,
		Description: req.Description,
		Evidence:    req.Evidence,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dispute)
}

// Get обрабатывает GET /disputes/:id.
func (h *DisputeHandler) Get(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	disputeID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dispute, err := h.disputes.GetDispute(c.Request.Context(), disputeID, userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dispute)
}

// ListMy обрабатывает GET /disputes.
func (h *DisputeHandler) ListMy(c *gin.Context) {
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

	page, err := h.disputes.ListMyDisputes(c.Request.Context(), userID, c.Query("status"), cursor, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, page.Items, page.NextCursor)
}

// ListAll обрабатывает GET /admin/disputes.
func (h *DisputeHandler) ListAll(c *gin.Context) {
	limit, cursor, err := common.GetCursorPagination(c)
	if err != nil {
		response.BadRequest(c, "неверный формат курсора")
		return
	}

	page, err := h.disputes.ListAllDisputes(c.Request.Context(), c.Query("status"), cursor, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, page.Items, page.NextCursor)
}

// UpdateStatus обрабатывает PUT /admin/disputes/:id/status.
func (h *DisputeHandler) UpdateStatus(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	disputeID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var req struct {
		Status     string  `json:"status" binding:"required"`
		Resolution *string `json:"resolution"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dispute, err := h.disputes.UpdateDisputeStatus(c.Request.Context(), service.UpdateDisputeStatusInput{
		DisputeID:  disputeID,
		AdminID:    adminID,
		Status:     req.Status,
		Resolution: req.Resolution,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dispute)
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dkoroteev/eventcrew-backend/internal/http/handlers/common"
	"github.com/dkoroteev/eventcrew-backend/internal/http/response"
	"github.com/dkoroteev/eventcrew-backend/internal/service"
)

// MessageHandler предоставляет HTTP слой для переписки по бронированиям.
type MessageHandler struct {
	messages *service.MessageService
}

// NewMessageHandler создаёт хэндлер.
func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// Send обрабатывает POST /bookings/:id/messages.
func (h *MessageHandler) Send(c *gin.Context) {
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
		Content     string      `json:"content" binding:"required"`
		Attachments []uuid.UUID `json:"attachments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	message, err := h.messages.SendMessage(c.Request.Context(), service.SendMessageInput{
		BookingID:   bookingID,
		SenderID:    userID,
		Content:     req.Content,
		Attachments: req.Attachments,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, message)
}

// List обрабатывает GET /bookings/:id/messages.
func (h *MessageHandler) List(c *gin.Context) {
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

	limit, cursor, err := common.GetCursorPagination(c)
	if err != nil {
		response.BadRequest(c, "неверный формат курсора")
		return
	}

	page, err := h.messages.ListMessages(c.Request.Context(), bookingID, userID, role, cursor, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, page.Items, page.NextCursor)
}

// MarkRead обрабатывает PUT /bookings/:id/messages/read.
func (h *MessageHandler) MarkRead(c *gin.Context) {
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

	count, err := h.messages.MarkRead(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"marked": count})
}

// CountUnread обрабатывает GET /messages/unread/count.
func (h *MessageHandler) CountUnread(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	count, err := h.messages.CountUnread(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"count": count})
}

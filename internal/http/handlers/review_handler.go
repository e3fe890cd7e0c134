package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dkoroteev/eventcrew-backend/internal/http/handlers/common"
	"github.com/dkoroteev/eventcrew-backend/internal/http/response"
	"github.com/dkoroteev/eventcrew-backend/internal/service"
)

// ReviewHandler предоставляет HTTP слой для отзывов.
type ReviewHandler struct {
	reviews *service.ReviewService
}

// NewReviewHandler создаёт хэндлер.
func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Create обрабатывает POST /bookings/:id/reviews.
func (h *ReviewHandler) Create(c *gin.Context) {
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
		Rating  int     `json:"rating" binding:"required"`
		Content *string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	review, err := h.reviews.CreateReview(c.Request.Context(), service.CreateReviewInput{
		BookingID: bookingID,
		AuthorID:  userID,
		Rating:    req.Rating,
		Content:   req.Content,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, review)
}

// Respond обрабатывает POST /reviews/:id/response.
func (h *ReviewHandler) Respond(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	reviewID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var req struct {
		Response string `json:"response" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	review, err := h.reviews.RespondToReview(c.Request.Context(), reviewID, userID, req.Response)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, review)
}

// ListUserReviews обрабатывает GET /users/:id/reviews.
func (h *ReviewHandler) ListUserReviews(c *gin.Context) {
	subjectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	limit, cursor, err := common.GetCursorPagination(c)
	if err != nil {
		response.BadRequest(c, "неверный формат курсора")
		return
	}

	page, err := h.reviews.ListUserReviews(c.Request.Context(), subjectID, cursor, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, page.Items, page.NextCursor)
}

// Stats обрабатывает GET /users/:id/reviews/stats.
func (h *ReviewHandler) Stats(c *gin.Context) {
	subjectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	stats, err := h.reviews.GetUserStats(c.Request.Context(), subjectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// Delete обрабатывает DELETE /reviews/:id.
func (h *ReviewHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	reviewID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.reviews.DeleteReview(c.Request.Context(), reviewID, userID, role); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "отзыв удалён"})
}

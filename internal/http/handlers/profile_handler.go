package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dkoroteev/eventcrew-backend/internal/http/handlers/common"
	"github.com/dkoroteev/eventcrew-backend/internal/http/response"
	"github.com/dkoroteev/eventcrew-backend/internal/service"
)

// ProfileHandler предоставляет HTTP слой для профилей.
type ProfileHandler struct {
	profiles *service.ProfileService
}

// NewProfileHandler создаёт хэндлер.
func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

type technicianProfileRequest struct {
	DisplayName string     `json:"display_name" binding:"required"`
	Bio         *string    `json:"bio"`
	HourlyRate  *float64   `json:"hourly_rate"`
	Tier        string     `json:"tier"`
	Skills      []string   `json:"skills"`
	Location    *string    `json:"location"`
	PhotoID     *uuid.UUID `json:"photo_id"`
}

type companyProfileRequest struct {
	CompanyName string     `json:"company_name" binding:"required"`
	Description *string    `json:"description"`
	Website     *string    `json:"website"`
	Location    *string    `json:"location"`
	PhotoID     *uuid.UUID `json:"photo_id"`
}

// CreateTechnicianProfile обрабатывает POST /profile/technician.
func (h *ProfileHandler) CreateTechnicianProfile(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	var req technicianProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	profile, err := h.profiles.CreateTechnicianProfile(c.Request.Context(), service.TechnicianProfileInput{
		UserID:      userID,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		HourlyRate:  req.HourlyRate,
		Tier:        req.Tier,
		Skills:      req.Skills,
		Location:    req.Location,
		PhotoID:     req.PhotoID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, profile)
}

// UpdateTechnicianProfile обрабатывает PUT /profile/technician.
func (h *ProfileHandler) UpdateTechnicianProfile(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	var req technicianProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	profile, err := h.profiles.UpdateTechnicianProfile(c.Request.Context(), service.TechnicianProfileInput{
		UserID:      userID,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		HourlyRate:  req.HourlyRate,
		Tier:        req.Tier,
		Skills:      req.Skills,
		Location:    req.Location,
		PhotoID:     req.PhotoID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, profile)
}

// GetTechnicianProfile обрабатывает GET /technicians/:id.
func (h *ProfileHandler) GetTechnicianProfile(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	profile, err := h.profiles.GetTechnicianProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, profile)
}

// CreateCompanyProfile обрабатывает POST /profile/company.
func (h *ProfileHandler) CreateCompanyProfile(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	var req companyProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	profile, err := h.profiles.CreateCompanyProfile(c.Request.Context(), service.CompanyProfileInput{
		UserID:      userID,
		CompanyName: req.CompanyName,
		Description: req.Description,
		Website:     req.Website,
		Location:    req.Location,
		PhotoID:     req.PhotoID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, profile)
}

// UpdateCompanyProfile обрабатывает PUT /profile/company.
func (h *ProfileHandler) UpdateCompanyProfile(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	var req companyProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	profile, err := h.profiles.UpdateCompanyProfile(c.Request.Context(), service.CompanyProfileInput{
		UserID:      userID,
		CompanyName: req.CompanyName,
		Description: req.Description,
		Website:     req.Website,
		Location:    req.Location,
		PhotoID:     req.PhotoID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, profile)
}

// GetCompanyProfile обрабатывает GET /companies/:id.
func (h *ProfileHandler) GetCompanyProfile(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	profile, err := h.profiles.GetCompanyProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, profile)
}

// GetUser обрабатывает GET /users/:id.
func (h *ProfileHandler) GetUser(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.profiles.GetUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}

// SearchTechnicians обрабатывает GET /technicians/search.
func (h *ProfileHandler) SearchTechnicians(c *gin.Context) {
	limit := common.ParseIntQuery(c, "limit", 20)
	offset := common.ParseIntQuery(c, "offset", 0)

	results, err := h.profiles.SearchTechnicians(c.Request.Context(), c.Query("tier"), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, results)
}

// DeactivateUser обрабатывает DELETE /admin/users/:id.
func (h *ProfileHandler) DeactivateUser(c *gin.Context) {
	role, err := common.CurrentUserRole(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	targetID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.profiles.DeactivateUser(c.Request.Context(), targetID, role); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "пользователь деактивирован"})
}

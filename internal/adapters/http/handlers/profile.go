package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eletroorca/quote-service/internal/adapters/http/dto"
	"github.com/eletroorca/quote-service/internal/app"
	"github.com/eletroorca/quote-service/internal/domain"
)

// ProfileHandler handles professional-profile HTTP endpoints.
type ProfileHandler struct {
	service *app.QuoteService
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(service *app.QuoteService) *ProfileHandler {
	return &ProfileHandler{
		service: service,
	}
}

// UpdateProfileRequest is the body for PUT /api/v1/profile.
type UpdateProfileRequest struct {
	Name    string `json:"name" binding:"required" validate:"notempty,max=120"`
	Title   string `json:"title" validate:"max=120"`
	Phone   string `json:"phone" validate:"max=32"`
	LogoRef string `json:"logoRef"`
}

// UpdateProfile handles PUT /api/v1/profile
// Replaces the professional profile shown on every quote.
//
// @Summary Update the professional profile
// @Tags profile
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Profile"
// @Success 200 {object} domain.ProfessionalProfile
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindingError(c, err)
		return
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), domain.ProfessionalProfile{
		Name:    req.Name,
		Title:   req.Title,
		Phone:   req.Phone,
		LogoRef: req.LogoRef,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// ResetProfile handles POST /api/v1/profile/reset
// Restores the built-in default profile.
//
// @Summary Reset the professional profile to defaults
// @Tags profile
// @Produce json
// @Success 200 {object} domain.ProfessionalProfile
// @Router /api/v1/profile/reset [post]
func (h *ProfileHandler) ResetProfile(c *gin.Context) {
	profile, err := h.service.ResetProfile(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// RegisterProfileRoutes registers profile routes on the given router group.
func (h *ProfileHandler) RegisterProfileRoutes(rg *gin.RouterGroup) {
	rg.PUT("/profile", h.UpdateProfile)
	rg.POST("/profile/reset", h.ResetProfile)
}

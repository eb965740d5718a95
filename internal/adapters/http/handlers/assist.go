package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eletroorca/quote-service/internal/adapters/http/dto"
	"github.com/eletroorca/quote-service/internal/app"
	"github.com/eletroorca/quote-service/internal/domain"
)

// AssistHandler handles the message, suggestion and share endpoints.
type AssistHandler struct {
	service *app.AssistService
}

// NewAssistHandler creates a new assist handler.
func NewAssistHandler(service *app.AssistService) *AssistHandler {
	return &AssistHandler{
		service: service,
	}
}

// MessageResponse carries the current share-message draft.
type MessageResponse struct {
	Body string `json:"body"`
}

// EditMessageRequest is the body for PUT /api/v1/message.
type EditMessageRequest struct {
	Body string `json:"body" binding:"required" validate:"notempty,max=10000"`
}

// SuggestRequest is the body for POST /api/v1/suggestions.
type SuggestRequest struct {
	JobDescription string `json:"jobDescription" binding:"required" validate:"notempty,max=2000"`
}

// SuggestResponse wraps the proposed line items. Nothing is added to the
// quote until the client posts the accepted entries to /items/bulk.
type SuggestResponse struct {
	Suggestions []domain.Suggestion `json:"suggestions"`
}

// ComposeMessage handles POST /api/v1/message/compose
// Builds the client-facing share message. AI enrichment is attempted when
// available; any enrichment failure silently yields the deterministic
// template, so this endpoint only errors when a compose is already running.
//
// @Summary Compose the share message
// @Tags message
// @Produce json
// @Success 200 {object} app.ComposedMessage
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/message/compose [post]
func (h *AssistHandler) ComposeMessage(c *gin.Context) {
	msg, err := h.service.ComposeMessage(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}

// GetMessage handles GET /api/v1/message
// Returns the current draft, falling back to the deterministic template
// when nothing was composed yet.
//
// @Summary Get the share message draft
// @Tags message
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /api/v1/message [get]
func (h *AssistHandler) GetMessage(c *gin.Context) {
	c.JSON(http.StatusOK, MessageResponse{
		Body: h.service.Message(c.Request.Context()),
	})
}

// EditMessage handles PUT /api/v1/message
// Overwrites the draft with user-edited text.
//
// @Summary Edit the share message draft
// @Tags message
// @Accept json
// @Produce json
// @Param request body EditMessageRequest true "New draft"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/message [put]
func (h *AssistHandler) EditMessage(c *gin.Context) {
	var req EditMessageRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindingError(c, err)
		return
	}

	h.service.EditMessage(c.Request.Context(), req.Body)

	c.JSON(http.StatusOK, MessageResponse{Body: req.Body})
}

// SuggestItems handles POST /api/v1/suggestions
// Asks the assistant for line items matching a job description. Unlike
// message composition there is no fallback: assistant failures surface
// as errors because invented prices must never reach a client.
//
// @Summary Suggest line items for a job description
// @Tags suggestions
// @Accept json
// @Produce json
// @Param request body SuggestRequest true "Job description"
// @Success 200 {object} SuggestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/suggestions [post]
func (h *AssistHandler) SuggestItems(c *gin.Context) {
	var req SuggestRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindingError(c, err)
		return
	}

	suggestions, err := h.service.SuggestItems(c.Request.Context(), req.JobDescription)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuggestResponse{Suggestions: suggestions})
}

// ShareWhatsApp handles POST /api/v1/share/whatsapp
// Builds the WhatsApp click-to-chat link for the current quote and
// message draft. This never fails: an unusable client phone number
// produces an un-addressed link.
//
// @Summary Build the WhatsApp share link
// @Tags share
// @Produce json
// @Success 200 {object} domain.ShareLink
// @Router /api/v1/share/whatsapp [post]
func (h *AssistHandler) ShareWhatsApp(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ShareLink(c.Request.Context()))
}

// RegisterAssistRoutes registers message, suggestion and share routes on
// the given router group.
func (h *AssistHandler) RegisterAssistRoutes(rg *gin.RouterGroup) {
	rg.POST("/message/compose", h.ComposeMessage)
	rg.GET("/message", h.GetMessage)
	rg.PUT("/message", h.EditMessage)
	rg.POST("/suggestions", h.SuggestItems)
	rg.POST("/share/whatsapp", h.ShareWhatsApp)
}

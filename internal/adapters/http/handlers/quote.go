package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eletroorca/quote-service/internal/adapters/http/dto"
	"github.com/eletroorca/quote-service/internal/app"
	"github.com/eletroorca/quote-service/internal/domain"
)

// QuoteHandler handles active-quote HTTP endpoints.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// ReplaceQuoteRequest is the body for PUT /api/v1/quote.
type ReplaceQuoteRequest struct {
	ClientName    string `json:"clientName" validate:"max=200"`
	ClientAddress string `json:"clientAddress" validate:"max=300"`
	ClientPhone   string `json:"clientPhone" validate:"max=32"`
	IssueDate     string `json:"issueDate" binding:"required" validate:"notempty"`
	Validity      string `json:"validity" binding:"required" validate:"notempty"`
	Notes         string `json:"notes" validate:"max=2000"`
}

// SetQuoteFieldRequest is the body for PATCH /api/v1/quote. It updates
// exactly one field, addressed by its JSON name.
type SetQuoteFieldRequest struct {
	Field string `json:"field" binding:"required" validate:"notempty"`
	Value string `json:"value"`
}

// ReplaceQuote handles PUT /api/v1/quote
// Replaces all client details and metadata of the active quote.
//
// @Summary Replace the active quote details
// @Tags quote
// @Accept json
// @Produce json
// @Param request body ReplaceQuoteRequest true "Quote details"
// @Success 200 {object} domain.QuoteDetails
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quote [put]
func (h *QuoteHandler) ReplaceQuote(c *gin.Context) {
	var req ReplaceQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindingError(c, err)
		return
	}

	quote, err := h.service.ReplaceQuote(c.Request.Context(), domain.QuoteDetails{
		ClientName:    req.ClientName,
		ClientAddress: req.ClientAddress,
		ClientPhone:   req.ClientPhone,
		IssueDate:     req.IssueDate,
		Validity:      req.Validity,
		Notes:         req.Notes,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// SetQuoteField handles PATCH /api/v1/quote
// Updates a single field of the active quote.
//
// @Summary Update one field of the active quote
// @Tags quote
// @Accept json
// @Produce json
// @Param request body SetQuoteFieldRequest true "Field operation"
// @Success 200 {object} domain.QuoteDetails
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quote [patch]
func (h *QuoteHandler) SetQuoteField(c *gin.Context) {
	var req SetQuoteFieldRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindingError(c, err)
		return
	}

	quote, err := h.service.SetQuoteField(c.Request.Context(), domain.QuoteField(req.Field), req.Value)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// NewQuote handles POST /api/v1/quote/new
// Discards the active quote, its items and the message draft, and starts
// a fresh quote dated today. Profile and history are untouched.
//
// @Summary Start a new quote
// @Tags quote
// @Produce json
// @Success 200 {object} app.Snapshot
// @Router /api/v1/quote/new [post]
func (h *QuoteHandler) NewQuote(c *gin.Context) {
	snapshot, err := h.service.NewQuote(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// RegisterQuoteRoutes registers quote routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	rg.PUT("/quote", h.ReplaceQuote)
	rg.PATCH("/quote", h.SetQuoteField)
	rg.POST("/quote/new", h.NewQuote)
}

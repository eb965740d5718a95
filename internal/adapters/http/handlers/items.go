package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eletroorca/quote-service/internal/adapters/http/dto"
	"github.com/eletroorca/quote-service/internal/app"
	"github.com/eletroorca/quote-service/internal/domain"
)

// ItemsHandler handles line-item HTTP endpoints.
type ItemsHandler struct {
	service *app.QuoteService
}

// NewItemsHandler creates a new items handler.
func NewItemsHandler(service *app.QuoteService) *ItemsHandler {
	return &ItemsHandler{
		service: service,
	}
}

// AddItemRequest is the body for POST /api/v1/items.
type AddItemRequest struct {
	Description string  `json:"description" binding:"required" validate:"notempty,max=500"`
	Quantity    float64 `json:"quantity" binding:"required" validate:"gt=0"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
	Unit        string  `json:"unit" validate:"max=8"`
}

// UpdateItemRequest is the body for PUT /api/v1/items/:id. Absent fields
// keep their current value.
type UpdateItemRequest struct {
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unitPrice"`
	Unit        *string  `json:"unit" validate:"omitempty,max=8"`
}

// ItemsResponse wraps the full collection with its derived subtotal so
// clients never recompute totals themselves.
type ItemsResponse struct {
	Items    []domain.LineItem `json:"items"`
	Subtotal float64           `json:"subtotal"`
}

func (h *ItemsHandler) itemsResponse() ItemsResponse {
	items := h.service.Items()
	return ItemsResponse{
		Items:    items,
		Subtotal: domain.Subtotal(items),
	}
}

// AddItem handles POST /api/v1/items
// Appends a line item to the active quote.
//
// @Summary Add a line item
// @Tags items
// @Accept json
// @Produce json
// @Param request body AddItemRequest true "Line item"
// @Success 201 {object} domain.LineItem
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/items [post]
func (h *ItemsHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindingError(c, err)
		return
	}

	item, err := h.service.AddItem(c.Request.Context(), req.Description, req.Quantity, req.UnitPrice, req.Unit)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// UpdateItem handles PUT /api/v1/items/:id
// Applies a partial update to one line item.
//
// @Summary Update a line item
// @Tags items
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param request body UpdateItemRequest true "Fields to change"
// @Success 200 {object} domain.LineItem
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/items/{id} [put]
func (h *ItemsHandler) UpdateItem(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.ErrorCodeBadRequest,
			"item ID is required",
		).WithTraceID(dto.GetTraceID(c)))
		return
	}

	var req UpdateItemRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindingError(c, err)
		return
	}

	item, err := h.service.UpdateItem(c.Request.Context(), id, app.ItemPatch{
		Description: req.Description,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		Unit:        req.Unit,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// RemoveItem handles DELETE /api/v1/items/:id
// Removes one line item; the remaining items keep their order.
//
// @Summary Remove a line item
// @Tags items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} ItemsResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/items/{id} [delete]
func (h *ItemsHandler) RemoveItem(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.ErrorCodeBadRequest,
			"item ID is required",
		).WithTraceID(dto.GetTraceID(c)))
		return
	}

	if err := h.service.RemoveItem(c.Request.Context(), id); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.itemsResponse())
}

// BulkAddRequest is the body for POST /api/v1/items/bulk. Each entry is
// an accepted suggestion; all are appended in one atomic save.
type BulkAddRequest struct {
	Suggestions []SuggestionPayload `json:"suggestions" binding:"required" validate:"min=1,dive"`
}

// SuggestionPayload mirrors a suggestion the client accepted.
type SuggestionPayload struct {
	Description    string  `json:"description" binding:"required" validate:"notempty,max=500"`
	EstimatedPrice float64 `json:"estimatedPrice" validate:"gte=0"`
	Unit           string  `json:"unit" validate:"max=8"`
}

// BulkAddItems handles POST /api/v1/items/bulk
// Appends the accepted suggestions to the active quote in order.
//
// @Summary Add accepted suggestions as line items
// @Tags items
// @Accept json
// @Produce json
// @Param request body BulkAddRequest true "Accepted suggestions"
// @Success 201 {object} ItemsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/items/bulk [post]
func (h *ItemsHandler) BulkAddItems(c *gin.Context) {
	var req BulkAddRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindingError(c, err)
		return
	}

	suggestions := make([]domain.Suggestion, 0, len(req.Suggestions))
	for _, s := range req.Suggestions {
		suggestions = append(suggestions, domain.Suggestion{
			Description:    s.Description,
			EstimatedPrice: s.EstimatedPrice,
			Unit:           s.Unit,
		})
	}

	if _, err := h.service.BulkAddItems(c.Request.Context(), suggestions); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.itemsResponse())
}

// RegisterItemRoutes registers item routes on the given router group.
func (h *ItemsHandler) RegisterItemRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/items")
	items.POST("", h.AddItem)
	items.POST("/bulk", h.BulkAddItems)
	items.PUT("/:id", h.UpdateItem)
	items.DELETE("/:id", h.RemoveItem)
}

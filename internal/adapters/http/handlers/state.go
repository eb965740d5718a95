package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eletroorca/quote-service/internal/app"
)

// StateHandler serves the combined application state.
type StateHandler struct {
	service *app.QuoteService
}

// NewStateHandler creates a new state handler.
func NewStateHandler(service *app.QuoteService) *StateHandler {
	return &StateHandler{
		service: service,
	}
}

// GetState handles GET /api/v1/state
// Returns the full application state in one consistent read: profile,
// active quote, line items, history and the current message draft.
//
// @Summary Get application state
// @Description Returns profile, active quote, items, history and message
// @Tags state
// @Produce json
// @Success 200 {object} app.Snapshot
// @Router /api/v1/state [get]
func (h *StateHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Snapshot())
}

// RegisterStateRoutes registers state routes on the given router group.
func (h *StateHandler) RegisterStateRoutes(rg *gin.RouterGroup) {
	rg.GET("/state", h.GetState)
}

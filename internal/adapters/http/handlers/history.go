package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eletroorca/quote-service/internal/adapters/http/dto"
	"github.com/eletroorca/quote-service/internal/app"
	"github.com/eletroorca/quote-service/internal/domain"
)

// HistoryHandler handles saved-quote HTTP endpoints.
type HistoryHandler struct {
	service *app.HistoryService
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(service *app.HistoryService) *HistoryHandler {
	return &HistoryHandler{
		service: service,
	}
}

// historyCursorField is the sort field encoded in history cursors.
// Entries are ordered newest-first by creation time.
const historyCursorField = "created_at"

// ListHistory handles GET /api/v1/history
// Returns saved quotes newest-first, cursor-paginated.
//
// @Summary List saved quotes
// @Tags history
// @Produce json
// @Param cursor query string false "Pagination cursor"
// @Param limit query int false "Page size (1-100)"
// @Success 200 {object} dto.PaginatedResponse[domain.HistoryEntry]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/history [get]
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	var page dto.PaginationRequest
	if err := dto.BindQueryAndValidate(c, &page); err != nil {
		dto.HandleBindingError(c, err)
		return
	}

	entries := h.service.List(c.Request.Context())

	cursor, err := page.DecodeCursor()
	switch {
	case errors.Is(err, dto.ErrNoCursor):
		// First page.
	case err != nil:
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.ErrorCodeBadRequest,
			"invalid pagination cursor",
		).WithTraceID(dto.GetTraceID(c)))
		return
	default:
		entries = entriesAfter(entries, cursor.ID)
	}

	limit := page.GetLimit()
	if len(entries) > limit+1 {
		entries = entries[:limit+1]
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResponse(entries, limit, func(e domain.HistoryEntry) *dto.CursorData {
		return dto.NewCursor(historyCursorField, e.CreatedAt.Format(time.RFC3339Nano), e.ID)
	}))
}

// entriesAfter returns the portion of the list strictly after the entry
// with the given ID. An unknown ID yields an empty page rather than an
// error so a cursor that outlives a deletion degrades gracefully.
func entriesAfter(entries []domain.HistoryEntry, id string) []domain.HistoryEntry {
	for i, e := range entries {
		if e.ID == id {
			return entries[i+1:]
		}
	}
	return nil
}

// SaveToHistory handles POST /api/v1/history
// Snapshots the active quote into an immutable history entry.
//
// @Summary Save the active quote to history
// @Tags history
// @Produce json
// @Success 201 {object} domain.HistoryEntry
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/history [post]
func (h *HistoryHandler) SaveToHistory(c *gin.Context) {
	entry, err := h.service.SaveToHistory(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// GetHistoryEntry handles GET /api/v1/history/:id
//
// @Summary Get one saved quote
// @Tags history
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} domain.HistoryEntry
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/history/{id} [get]
func (h *HistoryHandler) GetHistoryEntry(c *gin.Context) {
	entry, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// DeleteHistoryEntry handles DELETE /api/v1/history/:id
//
// @Summary Delete one saved quote
// @Tags history
// @Produce json
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/history/{id} [delete]
func (h *HistoryHandler) DeleteHistoryEntry(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ClearHistory handles DELETE /api/v1/history
// Removes every saved quote.
//
// @Summary Clear the history
// @Tags history
// @Success 204
// @Router /api/v1/history [delete]
func (h *HistoryHandler) ClearHistory(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context()); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ReuseHistoryEntry handles POST /api/v1/history/:id/reuse
// Copies a saved quote back into the active slot with today's issue date.
// The history entry itself is unchanged.
//
// @Summary Reuse a saved quote as the active quote
// @Tags history
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} app.Snapshot
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/history/{id}/reuse [post]
func (h *HistoryHandler) ReuseHistoryEntry(c *gin.Context) {
	snapshot, err := h.service.Reuse(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// RegisterHistoryRoutes registers history routes on the given router group.
func (h *HistoryHandler) RegisterHistoryRoutes(rg *gin.RouterGroup) {
	history := rg.Group("/history")
	history.GET("", h.ListHistory)
	history.POST("", h.SaveToHistory)
	history.DELETE("", h.ClearHistory)
	history.GET("/:id", h.GetHistoryEntry)
	history.DELETE("/:id", h.DeleteHistoryEntry)
	history.POST("/:id/reuse", h.ReuseHistoryEntry)
}

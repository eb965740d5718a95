package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eletroorca/quote-service/internal/adapters/http/dto"
	"github.com/eletroorca/quote-service/internal/app"
	"github.com/eletroorca/quote-service/internal/domain"
)

func newHistoryRouter(service *app.HistoryService) *gin.Engine {
	router := gin.New()
	NewHistoryHandler(service).RegisterHistoryRoutes(router.Group("/api/v1"))
	return router
}

// populateQuote gives the active quote a client name and one item so it
// can be saved.
func populateQuote(t *testing.T, service *app.QuoteService) {
	t.Helper()

	ctx := context.Background()
	_, err := service.SetQuoteField(ctx, domain.FieldClientName, "Maria")
	require.NoError(t, err)
	_, err = service.AddItem(ctx, "Troca de tomada", 1, 150, "un")
	require.NoError(t, err)
}

func TestHistoryHandler_SaveToHistory(t *testing.T) {
	state := newTestService()
	populateQuote(t, state)

	router := newHistoryRouter(newTestHistoryService(state))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/history", nil))

	require.Equal(t, http.StatusCreated, w.Code)

	var entry domain.HistoryEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "Maria", entry.Client.ClientName)
	assert.InDelta(t, 150, entry.Total, 0.001)
}

func TestHistoryHandler_SaveToHistory_EmptyQuote(t *testing.T) {
	state := newTestService()
	router := newHistoryRouter(newTestHistoryService(state))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/history", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryHandler_ListHistory_Pagination(t *testing.T) {
	state := newTestService()
	history := newTestHistoryService(state)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := state.SetQuoteField(ctx, domain.FieldClientName, fmt.Sprintf("Cliente %d", i))
		require.NoError(t, err)
		_, err = state.AddItem(ctx, "Serviço", 1, 100, "un")
		require.NoError(t, err)
		_, err = history.SaveToHistory(ctx)
		require.NoError(t, err)
	}

	router := newHistoryRouter(history)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=2", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var page dto.PaginatedResponse[domain.HistoryEntry]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)
	assert.NotEmpty(t, page.NextCursor)

	// Newest first
	assert.Equal(t, "Cliente 4", page.Items[0].Client.ClientName)

	// Follow the cursor
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=2&cursor="+page.NextCursor, nil))

	require.Equal(t, http.StatusOK, w.Code)

	var next dto.PaginatedResponse[domain.HistoryEntry]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &next))
	require.Len(t, next.Items, 2)
	assert.Equal(t, "Cliente 2", next.Items[0].Client.ClientName)
}

func TestHistoryHandler_ListHistory_BadCursor(t *testing.T) {
	router := newHistoryRouter(newTestHistoryService(newTestService()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/history?cursor=%25%25not-base64", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryHandler_GetHistoryEntry(t *testing.T) {
	state := newTestService()
	populateQuote(t, state)
	history := newTestHistoryService(state)

	entry, err := history.SaveToHistory(context.Background())
	require.NoError(t, err)

	router := newHistoryRouter(history)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/history/"+entry.ID, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Maria")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/history/missing-id", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHistoryHandler_DeleteHistoryEntry(t *testing.T) {
	state := newTestService()
	populateQuote(t, state)
	history := newTestHistoryService(state)

	entry, err := history.SaveToHistory(context.Background())
	require.NoError(t, err)

	router := newHistoryRouter(history)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/history/"+entry.ID, nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, history.List(context.Background()))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/history/"+entry.ID, nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHistoryHandler_ClearHistory(t *testing.T) {
	state := newTestService()
	populateQuote(t, state)
	history := newTestHistoryService(state)

	_, err := history.SaveToHistory(context.Background())
	require.NoError(t, err)

	router := newHistoryRouter(history)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/history", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, history.List(context.Background()))
}

func TestHistoryHandler_ReuseHistoryEntry(t *testing.T) {
	state := newTestService()
	populateQuote(t, state)
	history := newTestHistoryService(state)
	ctx := context.Background()

	entry, err := history.SaveToHistory(ctx)
	require.NoError(t, err)

	// Move the active quote on so reuse visibly restores it.
	_, err = state.NewQuote(ctx)
	require.NoError(t, err)

	router := newHistoryRouter(history)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/history/"+entry.ID+"/reuse", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var snapshot app.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	assert.Equal(t, "Maria", snapshot.Quote.ClientName)
	require.Len(t, snapshot.Items, 1)
	assert.Equal(t, "2026-08-28", snapshot.Quote.IssueDate)

	// The saved entry itself is untouched.
	kept, err := history.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.Total, kept.Total)
}

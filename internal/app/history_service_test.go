package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eletroorca/quote-service/internal/domain"
)

func newHistoryFixture(t *testing.T) (*QuoteService, *HistoryService, *memStore) {
	t.Helper()

	store := newMemStore()
	state := newTestService(t, store)
	history := NewHistoryService(HistoryServiceConfig{
		State: state,
		Now:   fixedTime,
	})

	return state, history, store
}

func populateActiveQuote(t *testing.T, state *QuoteService) {
	t.Helper()
	ctx := context.Background()

	_, err := state.SetQuoteField(ctx, domain.FieldClientName, "Maria")
	require.NoError(t, err)
	_, err = state.AddItem(ctx, "Troca de tomada", 2, 75, "")
	require.NoError(t, err)
}

func TestSaveToHistory(t *testing.T) {
	state, history, store := newHistoryFixture(t)
	populateActiveQuote(t, state)

	entry, err := history.SaveToHistory(context.Background())

	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "Maria", entry.Client.ClientName)
	assert.InDelta(t, 150.0, entry.Total, 1e-9)
	assert.Equal(t, fixedTime(), entry.CreatedAt)
	assert.Equal(t, 1, store.saveCalls["history"])

	// The active quote is untouched by a save.
	assert.Equal(t, "Maria", state.Quote().ClientName)
	assert.Len(t, state.Items(), 1)
}

func TestSaveToHistory_RequiresClientName(t *testing.T) {
	state, history, store := newHistoryFixture(t)
	_, err := state.AddItem(context.Background(), "Troca de tomada", 2, 75, "")
	require.NoError(t, err)

	_, err = history.SaveToHistory(context.Background())

	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, history.List(context.Background()))
	assert.Zero(t, store.saveCalls["history"])
}

func TestSaveToHistory_RequiresItems(t *testing.T) {
	state, history, _ := newHistoryFixture(t)
	_, err := state.SetQuoteField(context.Background(), domain.FieldClientName, "Maria")
	require.NoError(t, err)

	_, err = history.SaveToHistory(context.Background())

	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, history.List(context.Background()))
}

func TestSaveToHistory_NewestFirst(t *testing.T) {
	state, history, _ := newHistoryFixture(t)
	ctx := context.Background()
	populateActiveQuote(t, state)

	first, err := history.SaveToHistory(ctx)
	require.NoError(t, err)

	_, err = state.SetQuoteField(ctx, domain.FieldClientName, "João")
	require.NoError(t, err)

	second, err := history.SaveToHistory(ctx)
	require.NoError(t, err)

	entries := history.List(ctx)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)
}

func TestSaveToHistory_SnapshotIsImmutable(t *testing.T) {
	state, history, _ := newHistoryFixture(t)
	ctx := context.Background()
	populateActiveQuote(t, state)

	entry, err := history.SaveToHistory(ctx)
	require.NoError(t, err)

	// Edit the active quote after saving.
	items := state.Items()
	qty := 99.0
	_, err = state.UpdateItem(ctx, items[0].ID, ItemPatch{Quantity: &qty})
	require.NoError(t, err)

	saved, err := history.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, saved.Items[0].Quantity, 1e-9)
	assert.InDelta(t, 150.0, saved.Total, 1e-9)
}

func TestSaveToHistory_ArchiveFailureLeavesHistoryUnchanged(t *testing.T) {
	state, history, store := newHistoryFixture(t)
	populateActiveQuote(t, state)
	store.failSave["history"] = errStoreDown

	_, err := history.SaveToHistory(context.Background())

	require.Error(t, err)
	require.ErrorIs(t, err, errStoreDown)

	step, ok := GetExecutionStep(err)
	require.True(t, ok)
	assert.Equal(t, StepArchive, step)
	assert.Empty(t, history.List(context.Background()))
}

func TestHistoryGetDelete(t *testing.T) {
	state, history, _ := newHistoryFixture(t)
	ctx := context.Background()
	populateActiveQuote(t, state)

	entry, err := history.SaveToHistory(ctx)
	require.NoError(t, err)

	got, err := history.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)

	_, err = history.Get(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, history.Delete(ctx, entry.ID))
	assert.Empty(t, history.List(ctx))

	err = history.Delete(ctx, entry.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryClear(t *testing.T) {
	state, history, _ := newHistoryFixture(t)
	ctx := context.Background()
	populateActiveQuote(t, state)

	_, err := history.SaveToHistory(ctx)
	require.NoError(t, err)

	require.NoError(t, history.Clear(ctx))
	assert.Empty(t, history.List(ctx))
}

func TestHistoryReuse(t *testing.T) {
	state, history, _ := newHistoryFixture(t)
	ctx := context.Background()
	populateActiveQuote(t, state)

	entry, err := history.SaveToHistory(ctx)
	require.NoError(t, err)

	// Start a new quote, then bring the saved one back.
	_, err = state.NewQuote(ctx)
	require.NoError(t, err)
	require.Empty(t, state.Items())

	snap, err := history.Reuse(ctx, entry.ID)
	require.NoError(t, err)

	assert.Equal(t, "Maria", snap.Quote.ClientName)
	assert.Equal(t, "2026-08-28", snap.Quote.IssueDate, "reuse issues a fresh date")
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "Troca de tomada", snap.Items[0].Description)

	// Editing the reused quote must not mutate the history entry.
	qty := 10.0
	_, err = state.UpdateItem(ctx, snap.Items[0].ID, ItemPatch{Quantity: &qty})
	require.NoError(t, err)

	saved, err := history.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, saved.Items[0].Quantity, 1e-9)
}

func TestHistoryReuse_SaveFailureRollsBack(t *testing.T) {
	state, history, store := newHistoryFixture(t)
	ctx := context.Background()
	populateActiveQuote(t, state)

	entry, err := history.SaveToHistory(ctx)
	require.NoError(t, err)

	_, err = state.SetQuoteField(ctx, domain.FieldClientName, "João")
	require.NoError(t, err)
	state.SetMessage("rascunho")

	store.failSave["quote"] = errStoreDown

	_, err = history.Reuse(ctx, entry.ID)
	require.ErrorIs(t, err, errStoreDown)

	snap := state.Snapshot()
	assert.Equal(t, "João", snap.Quote.ClientName)
	assert.Equal(t, "rascunho", snap.Message, "draft survives a failed reuse")
}

func TestHistoryReuse_NotFound(t *testing.T) {
	_, history, _ := newHistoryFixture(t)

	_, err := history.Reuse(context.Background(), "missing")

	require.ErrorIs(t, err, domain.ErrNotFound)
}

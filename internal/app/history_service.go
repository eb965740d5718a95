package app

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/eletroorca/quote-service/internal/domain"
)

// HistoryService manages the append-only history of saved quotes. Entries
// are immutable snapshots: once saved they never change, and edits to the
// active quote never reach them.
type HistoryService struct {
	state  *QuoteService
	exec   *Executor
	logger *slog.Logger
	now    func() time.Time
}

// HistoryServiceConfig contains configuration for the history service.
type HistoryServiceConfig struct {
	State  *QuoteService
	Logger *slog.Logger

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// NewHistoryService creates a history service bound to the state owner.
func NewHistoryService(cfg HistoryServiceConfig) *HistoryService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &HistoryService{
		state:  cfg.State,
		exec:   NewExecutor(logger),
		logger: logger,
		now:    now,
	}
}

// saveInput is the captured state a save operates on. Snapshotting at
// invocation time keeps the operation stable even if the active quote is
// edited concurrently.
type saveInput struct {
	quote domain.QuoteDetails
	items []domain.LineItem
}

// SaveToHistory snapshots the active quote into a new history entry. The
// active quote must have a client name and at least one line item;
// otherwise the save is rejected and no state changes.
func (s *HistoryService) SaveToHistory(ctx context.Context) (domain.HistoryEntry, error) {
	input := saveInput{
		quote: s.state.Quote(),
		items: s.state.Items(),
	}

	op := Operation[saveInput, domain.HistoryEntry, domain.HistoryEntry, domain.HistoryEntry]{
		Name: "save_to_history",

		Validate: func(_ context.Context, in saveInput) error {
			if strings.TrimSpace(in.quote.ClientName) == "" {
				return domain.NewValidationError("clientName", "must not be blank")
			}

			if len(in.items) == 0 {
				return domain.NewValidationError("items", "must contain at least one line item")
			}

			return nil
		},

		Perform: func(_ context.Context, in saveInput) (domain.HistoryEntry, error) {
			return domain.NewHistoryEntry(in.quote, in.items, s.now()), nil
		},

		Verify: func(_ context.Context, in saveInput, entry domain.HistoryEntry) (domain.HistoryEntry, error) {
			if entry.ID == "" {
				return domain.HistoryEntry{}, domain.NewConflictError("history entry", "snapshot has no identifier")
			}

			if len(entry.Items) != len(in.items) {
				return domain.HistoryEntry{}, domain.NewConflictError("history entry", "snapshot dropped line items")
			}

			if math.Abs(entry.Total-domain.Subtotal(in.items)) > 1e-9 {
				return domain.HistoryEntry{}, domain.NewConflictError("history entry", "snapshot total does not match subtotal")
			}

			return entry, nil
		},

		Archive: func(ctx context.Context, _ saveInput, entry domain.HistoryEntry) error {
			// Newest first.
			next := append([]domain.HistoryEntry{entry}, s.state.History()...)

			return s.state.commitHistory(ctx, next)
		},

		Respond: func(_ context.Context, _ saveInput, entry domain.HistoryEntry) (domain.HistoryEntry, error) {
			return entry, nil
		},
	}

	entry, err := Execute(ctx, s.exec, op, input)
	if err != nil {
		return domain.HistoryEntry{}, err
	}

	s.logger.InfoContext(ctx, "quote saved to history",
		slog.String("entry_id", entry.ID),
		slog.String("client", entry.Client.ClientName),
		slog.Int("items", len(entry.Items)),
	)

	return entry, nil
}

// List returns the saved history, newest first.
func (s *HistoryService) List(_ context.Context) []domain.HistoryEntry {
	return s.state.History()
}

// Get returns the identified history entry.
func (s *HistoryService) Get(_ context.Context, id string) (domain.HistoryEntry, error) {
	for _, entry := range s.state.History() {
		if entry.ID == id {
			return entry, nil
		}
	}

	return domain.HistoryEntry{}, domain.NewNotFoundError("history entry", id)
}

// Delete removes the identified entry from the history.
func (s *HistoryService) Delete(ctx context.Context, id string) error {
	current := s.state.History()
	next := make([]domain.HistoryEntry, 0, len(current))
	found := false

	for _, entry := range current {
		if entry.ID == id {
			found = true

			continue
		}

		next = append(next, entry)
	}

	if !found {
		return domain.NewNotFoundError("history entry", id)
	}

	return s.state.commitHistory(ctx, next)
}

// Clear removes every saved entry.
func (s *HistoryService) Clear(ctx context.Context) error {
	return s.state.commitHistory(ctx, []domain.HistoryEntry{})
}

// Reuse copies a saved entry back into the active quote and items. The
// history entry itself is untouched; the copy gets today's issue date so
// the reused quote is a new document, not a re-issue of the old one.
func (s *HistoryService) Reuse(ctx context.Context, id string) (Snapshot, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}

	quote := entry.Client
	quote.IssueDate = s.now().Format(domain.IssueDateLayout)

	snapshot, err := s.state.restoreActive(ctx, quote, entry.Items)
	if err != nil {
		return Snapshot{}, err
	}

	s.logger.InfoContext(ctx, "history entry reused",
		slog.String("entry_id", id),
	)

	return snapshot, nil
}

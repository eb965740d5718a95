// Package app contains application services that orchestrate use cases.
package app

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/eletroorca/quote-service/internal/domain"
	"github.com/eletroorca/quote-service/internal/ports"
)

// QuoteService is the single owner of the builder's mutable state: the
// professional profile, the active quote, its line items, the composed
// share message, and the saved history. All mutations are serialized by
// one mutex and written through to the state store before they return, so
// the in-memory state and the stored state never diverge.
type QuoteService struct {
	store  ports.StateStore
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	profile domain.ProfessionalProfile
	quote   domain.QuoteDetails
	items   []domain.LineItem
	history []domain.HistoryEntry
	message string
}

// QuoteServiceConfig contains configuration for the quote service.
type QuoteServiceConfig struct {
	Store  ports.StateStore
	Logger *slog.Logger

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// NewQuoteService creates a quote service with the provided dependencies.
// Call Hydrate before serving requests.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteService{
		store:   cfg.Store,
		logger:  logger,
		now:     now,
		profile: domain.DefaultProfile(),
		quote:   domain.NewQuoteDetails(now()),
		items:   []domain.LineItem{},
		history: []domain.HistoryEntry{},
	}
}

// Snapshot is a consistent read of the whole application state plus the
// derived subtotal.
type Snapshot struct {
	Profile  domain.ProfessionalProfile `json:"profile"`
	Quote    domain.QuoteDetails        `json:"quote"`
	Items    []domain.LineItem          `json:"items"`
	History  []domain.HistoryEntry      `json:"history"`
	Message  string                     `json:"message"`
	Subtotal float64                    `json:"subtotal"`
}

// Hydrate loads all four aggregates from the store. The loads run
// concurrently and tolerate partial failure: an aggregate that cannot be
// loaded keeps its default value so one bad key never blocks startup.
func (s *QuoteService) Hydrate(ctx context.Context) error {
	type loaded struct {
		apply func()
		name  string
	}

	results := ParallelPartial(ctx,
		func(ctx context.Context) (loaded, error) {
			p, err := s.store.LoadProfile(ctx)
			return loaded{name: "profile", apply: func() { s.profile = p }}, err
		},
		func(ctx context.Context) (loaded, error) {
			q, err := s.store.LoadQuote(ctx)
			return loaded{name: "quote", apply: func() { s.quote = q }}, err
		},
		func(ctx context.Context) (loaded, error) {
			items, err := s.store.LoadItems(ctx)
			return loaded{name: "items", apply: func() { s.items = items }}, err
		},
		func(ctx context.Context) (loaded, error) {
			h, err := s.store.LoadHistory(ctx)
			return loaded{name: "history", apply: func() { s.history = h }}, err
		},
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range results {
		if r.Err != nil {
			s.logger.WarnContext(ctx, "aggregate load failed, keeping default",
				slog.String("aggregate", r.Value.name),
				slog.Any("error", r.Err),
			)

			continue
		}

		r.Value.apply()
	}

	if s.items == nil {
		s.items = []domain.LineItem{}
	}

	if s.history == nil {
		s.history = []domain.HistoryEntry{}
	}

	s.logger.InfoContext(ctx, "state hydrated",
		slog.Int("items", len(s.items)),
		slog.Int("history_entries", len(s.history)),
	)

	return nil
}

// Snapshot returns a consistent copy of the full state.
func (s *QuoteService) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

func (s *QuoteService) snapshotLocked() Snapshot {
	return Snapshot{
		Profile:  s.profile,
		Quote:    s.quote,
		Items:    domain.CopyItems(s.items),
		History:  s.copyHistoryLocked(),
		Message:  s.message,
		Subtotal: domain.Subtotal(s.items),
	}
}

func (s *QuoteService) copyHistoryLocked() []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, len(s.history))
	for i, e := range s.history {
		e.Items = domain.CopyItems(e.Items)
		out[i] = e
	}

	return out
}

// Profile returns the current professional profile.
func (s *QuoteService) Profile() domain.ProfessionalProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.profile
}

// UpdateProfile replaces the professional profile. The name falls back to
// the default profile's name when blank so the printed document is never
// headed by an empty string.
func (s *QuoteService) UpdateProfile(ctx context.Context, p domain.ProfessionalProfile) (domain.ProfessionalProfile, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Title = strings.TrimSpace(p.Title)

	if p.Name == "" {
		return domain.ProfessionalProfile{}, domain.NewValidationError("name", "must not be blank")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.profile
	s.profile = p

	if err := s.store.SaveProfile(ctx, p); err != nil {
		s.profile = previous

		return domain.ProfessionalProfile{}, err
	}

	return p, nil
}

// ResetProfile restores the default professional profile.
func (s *QuoteService) ResetProfile(ctx context.Context) (domain.ProfessionalProfile, error) {
	return s.UpdateProfile(ctx, domain.DefaultProfile())
}

// Quote returns the active quote details.
func (s *QuoteService) Quote() domain.QuoteDetails {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.quote
}

// ReplaceQuote replaces the whole active quote record after validating its
// enumerated fields.
func (s *QuoteService) ReplaceQuote(ctx context.Context, q domain.QuoteDetails) (domain.QuoteDetails, error) {
	if q.Validity == "" {
		q.Validity = domain.DefaultValidity
	}

	if !domain.ValidValidity(q.Validity) {
		return domain.QuoteDetails{}, domain.NewValidationError("validity", "unknown validity period")
	}

	if q.IssueDate != "" {
		if _, err := time.Parse(domain.IssueDateLayout, q.IssueDate); err != nil {
			return domain.QuoteDetails{}, domain.NewValidationError("issueDate", "must be YYYY-MM-DD")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.quote
	s.quote = q

	if err := s.store.SaveQuote(ctx, q); err != nil {
		s.quote = previous

		return domain.QuoteDetails{}, err
	}

	return q, nil
}

// SetQuoteField updates a single field of the active quote. The field must
// belong to the closed field set; a failed update leaves the record
// untouched.
func (s *QuoteService) SetQuoteField(ctx context.Context, field domain.QuoteField, value string) (domain.QuoteDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := s.quote
	if err := updated.Set(field, value); err != nil {
		return domain.QuoteDetails{}, err
	}

	previous := s.quote
	s.quote = updated

	if err := s.store.SaveQuote(ctx, updated); err != nil {
		s.quote = previous

		return domain.QuoteDetails{}, err
	}

	return updated, nil
}

// NewQuote starts a fresh quote: client details, line items, and the
// composed message are reset. The profile and the history are kept.
func (s *QuoteService) NewQuote(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevQuote, prevItems, prevMessage := s.quote, s.items, s.message

	s.quote = domain.NewQuoteDetails(s.now())
	s.items = []domain.LineItem{}
	s.message = ""

	if err := s.store.SaveQuote(ctx, s.quote); err != nil {
		s.quote, s.items, s.message = prevQuote, prevItems, prevMessage

		return Snapshot{}, err
	}

	if err := s.store.SaveItems(ctx, s.items); err != nil {
		s.quote, s.items, s.message = prevQuote, prevItems, prevMessage

		return Snapshot{}, err
	}

	return s.snapshotLocked(), nil
}

// Items returns a copy of the active line-item collection.
func (s *QuoteService) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.CopyItems(s.items)
}

func validateItemFields(description string, quantity, unitPrice float64, unit string) error {
	if strings.TrimSpace(description) == "" {
		return domain.NewValidationError("description", "must not be blank")
	}

	if !domain.FiniteAmount(quantity) || quantity <= 0 {
		return domain.NewValidationError("quantity", "must be a positive finite number")
	}

	if !domain.FiniteAmount(unitPrice) || unitPrice < 0 {
		return domain.NewValidationError("unitPrice", "must be a non-negative finite number")
	}

	if unit != "" && !domain.ValidUnit(unit) {
		return domain.NewValidationError("unit", "unknown unit of measure")
	}

	return nil
}

// AddItem appends a line item to the active quote.
func (s *QuoteService) AddItem(ctx context.Context, description string, quantity, unitPrice float64, unit string) (domain.LineItem, error) {
	if err := validateItemFields(description, quantity, unitPrice, unit); err != nil {
		return domain.LineItem{}, err
	}

	item := domain.NewLineItem(strings.TrimSpace(description), quantity, unitPrice, unit)

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.items
	s.items = append(domain.CopyItems(s.items), item)

	if err := s.store.SaveItems(ctx, s.items); err != nil {
		s.items = previous

		return domain.LineItem{}, err
	}

	return item, nil
}

// ItemPatch carries the fields of an item update; nil fields are left
// unchanged.
type ItemPatch struct {
	Description *string
	Quantity    *float64
	UnitPrice   *float64
	Unit        *string
}

// UpdateItem applies a partial update to the identified line item.
func (s *QuoteService) UpdateItem(ctx context.Context, id string, patch ItemPatch) (domain.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1

	for i, item := range s.items {
		if item.ID == id {
			idx = i

			break
		}
	}

	if idx < 0 {
		return domain.LineItem{}, domain.NewNotFoundError("line item", id)
	}

	updated := s.items[idx]
	if patch.Description != nil {
		updated.Description = strings.TrimSpace(*patch.Description)
	}

	if patch.Quantity != nil {
		updated.Quantity = *patch.Quantity
	}

	if patch.UnitPrice != nil {
		updated.UnitPrice = *patch.UnitPrice
	}

	if patch.Unit != nil {
		updated.Unit = *patch.Unit
	}

	if err := validateItemFields(updated.Description, updated.Quantity, updated.UnitPrice, updated.Unit); err != nil {
		return domain.LineItem{}, err
	}

	previous := s.items
	next := domain.CopyItems(s.items)
	next[idx] = updated
	s.items = next

	if err := s.store.SaveItems(ctx, s.items); err != nil {
		s.items = previous

		return domain.LineItem{}, err
	}

	return updated, nil
}

// RemoveItem deletes the identified line item.
func (s *QuoteService) RemoveItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.LineItem, 0, len(s.items))
	found := false

	for _, item := range s.items {
		if item.ID == id {
			found = true

			continue
		}

		next = append(next, item)
	}

	if !found {
		return domain.NewNotFoundError("line item", id)
	}

	previous := s.items
	s.items = next

	if err := s.store.SaveItems(ctx, s.items); err != nil {
		s.items = previous

		return err
	}

	return nil
}

// BulkAddItems appends accepted suggestions as line items, each with a
// fresh identifier and quantity one. Suggestions with blank descriptions
// or non-finite prices are rejected as a batch before any insertion.
func (s *QuoteService) BulkAddItems(ctx context.Context, suggestions []domain.Suggestion) ([]domain.LineItem, error) {
	if len(suggestions) == 0 {
		return nil, domain.NewValidationError("suggestions", "must not be empty")
	}

	added := make([]domain.LineItem, 0, len(suggestions))

	for _, sug := range suggestions {
		if strings.TrimSpace(sug.Description) == "" {
			return nil, domain.NewValidationError("description", "must not be blank")
		}

		if !domain.FiniteAmount(sug.EstimatedPrice) || sug.EstimatedPrice < 0 {
			return nil, domain.NewValidationError("estimatedPrice", "must be a non-negative finite number")
		}

		added = append(added, sug.Item())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.items
	s.items = append(domain.CopyItems(s.items), added...)

	if err := s.store.SaveItems(ctx, s.items); err != nil {
		s.items = previous

		return nil, err
	}

	return added, nil
}

// Message returns the composed share message, empty when none was
// composed yet.
func (s *QuoteService) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.message
}

// SetMessage replaces the composed share message wholesale. The message is
// free text: the user may edit an AI-enriched draft before sharing.
func (s *QuoteService) SetMessage(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = body
}

// MessageInput assembles the composer input from the current state.
func (s *QuoteService) MessageInput() domain.MessageInput {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.MessageInput{
		ClientName: s.quote.ClientName,
		Subtotal:   domain.Subtotal(s.items),
		ItemCount:  len(s.items),
		Notes:      s.quote.Notes,
		Items:      domain.CopyItems(s.items),
	}
}

// History returns a copy of the saved history, newest first.
func (s *QuoteService) History() []domain.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.copyHistoryLocked()
}

// commitHistory replaces the stored history, rolling back on a failed
// write. Used by HistoryService for every history mutation.
func (s *QuoteService) commitHistory(ctx context.Context, entries []domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.history
	s.history = entries

	if err := s.store.SaveHistory(ctx, entries); err != nil {
		s.history = previous

		return err
	}

	return nil
}

// restoreActive replaces the active quote and items, used when reusing a
// history entry.
func (s *QuoteService) restoreActive(ctx context.Context, quote domain.QuoteDetails, items []domain.LineItem) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevQuote, prevItems, prevMessage := s.quote, s.items, s.message
	s.quote = quote
	s.items = domain.CopyItems(items)
	s.message = ""

	if err := s.store.SaveQuote(ctx, s.quote); err != nil {
		s.quote, s.items, s.message = prevQuote, prevItems, prevMessage

		return Snapshot{}, err
	}

	if err := s.store.SaveItems(ctx, s.items); err != nil {
		s.quote, s.items, s.message = prevQuote, prevItems, prevMessage

		return Snapshot{}, err
	}

	return s.snapshotLocked(), nil
}

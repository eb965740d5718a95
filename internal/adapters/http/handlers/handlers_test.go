package handlers

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/eletroorca/quote-service/internal/app"
	"github.com/eletroorca/quote-service/internal/domain"
	"github.com/eletroorca/quote-service/internal/ports"
)

// memStore is an in-memory StateStore for handler tests.
type memStore struct {
	mu      sync.Mutex
	profile *domain.ProfessionalProfile
	quote   *domain.QuoteDetails
	items   []domain.LineItem
	history []domain.HistoryEntry
}

func (m *memStore) LoadProfile(context.Context) (domain.ProfessionalProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		return domain.DefaultProfile(), nil
	}
	return *m.profile, nil
}

func (m *memStore) SaveProfile(_ context.Context, p domain.ProfessionalProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profile = &p
	return nil
}

func (m *memStore) LoadQuote(context.Context) (domain.QuoteDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.quote == nil {
		return domain.QuoteDetails{}, nil
	}
	return *m.quote, nil
}

func (m *memStore) SaveQuote(_ context.Context, q domain.QuoteDetails) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quote = &q
	return nil
}

func (m *memStore) LoadItems(context.Context) ([]domain.LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.CopyItems(m.items), nil
}

func (m *memStore) SaveItems(_ context.Context, items []domain.LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = domain.CopyItems(items)
	return nil
}

func (m *memStore) LoadHistory(context.Context) ([]domain.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.HistoryEntry(nil), m.history...), nil
}

func (m *memStore) SaveHistory(_ context.Context, entries []domain.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append([]domain.HistoryEntry(nil), entries...)
	return nil
}

func (m *memStore) Close() error { return nil }

// stubAssistant is a canned ports.Assistant for handler tests.
type stubAssistant struct {
	message     string
	messageErr  error
	suggestions []domain.Suggestion
	suggestErr  error
}

func (s *stubAssistant) GenerateMessage(context.Context, domain.MessageInput) (string, error) {
	return s.message, s.messageErr
}

func (s *stubAssistant) SuggestItems(context.Context, string) ([]domain.Suggestion, error) {
	return s.suggestions, s.suggestErr
}

// fixedClock is the frozen time used by handler fixtures.
var fixedClock = time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestService builds a QuoteService over a fresh in-memory store.
func newTestService() *app.QuoteService {
	return app.NewQuoteService(app.QuoteServiceConfig{
		Store:  &memStore{},
		Logger: testLogger(),
		Now:    func() time.Time { return fixedClock },
	})
}

// newTestHistoryService pairs a history service with the given state owner.
func newTestHistoryService(state *app.QuoteService) *app.HistoryService {
	return app.NewHistoryService(app.HistoryServiceConfig{
		State:  state,
		Logger: testLogger(),
		Now:    func() time.Time { return fixedClock },
	})
}

// newTestAssistService wires an assist service with the given assistant.
func newTestAssistService(state *app.QuoteService, assistant ports.Assistant) *app.AssistService {
	return app.NewAssistService(app.AssistServiceConfig{
		State:     state,
		Assistant: assistant,
		Flags: ports.NewStaticFlags(map[string]any{
			"ai_compose":     true,
			"ai_suggestions": true,
		}),
		Logger: testLogger(),
	})
}

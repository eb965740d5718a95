package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/eletroorca/quote-service/internal/domain"
)

// Polling bounds for Eventually assertions.
const (
	testWaitLong = 2 * time.Second
	testWaitTick = 5 * time.Millisecond
)

// memStore is an in-memory StateStore with per-aggregate failure
// injection, used across the app tests.
type memStore struct {
	mu      sync.Mutex
	profile domain.ProfessionalProfile
	quote   domain.QuoteDetails
	items   []domain.LineItem
	history []domain.HistoryEntry

	failLoad map[string]error
	failSave map[string]error

	saveCalls map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		profile:   domain.DefaultProfile(),
		items:     []domain.LineItem{},
		history:   []domain.HistoryEntry{},
		failLoad:  make(map[string]error),
		failSave:  make(map[string]error),
		saveCalls: make(map[string]int),
	}
}

var errStoreDown = errors.New("store down")

func (m *memStore) LoadProfile(context.Context) (domain.ProfessionalProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failLoad["profile"]; err != nil {
		return domain.DefaultProfile(), err
	}

	return m.profile, nil
}

func (m *memStore) SaveProfile(_ context.Context, p domain.ProfessionalProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saveCalls["profile"]++
	if err := m.failSave["profile"]; err != nil {
		return err
	}

	m.profile = p

	return nil
}

func (m *memStore) LoadQuote(context.Context) (domain.QuoteDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failLoad["quote"]; err != nil {
		return domain.QuoteDetails{}, err
	}

	return m.quote, nil
}

func (m *memStore) SaveQuote(_ context.Context, q domain.QuoteDetails) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saveCalls["quote"]++
	if err := m.failSave["quote"]; err != nil {
		return err
	}

	m.quote = q

	return nil
}

func (m *memStore) LoadItems(context.Context) ([]domain.LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failLoad["items"]; err != nil {
		return []domain.LineItem{}, err
	}

	return domain.CopyItems(m.items), nil
}

func (m *memStore) SaveItems(_ context.Context, items []domain.LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saveCalls["items"]++
	if err := m.failSave["items"]; err != nil {
		return err
	}

	m.items = domain.CopyItems(items)

	return nil
}

func (m *memStore) LoadHistory(context.Context) ([]domain.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failLoad["history"]; err != nil {
		return []domain.HistoryEntry{}, err
	}

	out := make([]domain.HistoryEntry, len(m.history))
	copy(out, m.history)

	return out, nil
}

func (m *memStore) SaveHistory(_ context.Context, entries []domain.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saveCalls["history"]++
	if err := m.failSave["history"]; err != nil {
		return err
	}

	m.history = make([]domain.HistoryEntry, len(entries))
	copy(m.history, entries)

	return nil
}

func (m *memStore) Close() error { return nil }

// stubAssistant implements ports.Assistant with canned responses.
type stubAssistant struct {
	message     string
	messageErr  error
	suggestions []domain.Suggestion
	suggestErr  error

	// block, when non-nil, is closed to release an in-flight call.
	block chan struct{}
}

func (a *stubAssistant) GenerateMessage(ctx context.Context, _ domain.MessageInput) (string, error) {
	if a.block != nil {
		select {
		case <-a.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return a.message, a.messageErr
}

func (a *stubAssistant) SuggestItems(ctx context.Context, _ string) ([]domain.Suggestion, error) {
	if a.block != nil {
		select {
		case <-a.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return a.suggestions, a.suggestErr
}

// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrUnavailable, etc.)
//   - Keep interfaces small and focused (Interface Segregation Principle)
package ports

import (
	"context"

	"github.com/eletroorca/quote-service/internal/domain"
)

// StateStore persists the four state aggregates of the quote builder.
// Each aggregate is loaded and saved independently: corruption or loss of
// one key must never affect the others, so implementations return the
// aggregate's default value (and log the incident) when a stored value
// cannot be decoded.
//
// Save methods are called synchronously on every accepted mutation
// (write-through), so implementations should keep writes cheap.
type StateStore interface {
	// LoadProfile returns the stored professional profile, or the default
	// profile when none is stored or the stored value is unreadable.
	LoadProfile(ctx context.Context) (domain.ProfessionalProfile, error)

	// SaveProfile replaces the stored professional profile.
	SaveProfile(ctx context.Context, p domain.ProfessionalProfile) error

	// LoadQuote returns the stored active quote details, or a fresh record
	// when none is stored or the stored value is unreadable.
	LoadQuote(ctx context.Context) (domain.QuoteDetails, error)

	// SaveQuote replaces the stored active quote details.
	SaveQuote(ctx context.Context, q domain.QuoteDetails) error

	// LoadItems returns the stored line-item collection, or an empty
	// collection when none is stored or the stored value is unreadable.
	LoadItems(ctx context.Context) ([]domain.LineItem, error)

	// SaveItems replaces the stored line-item collection.
	SaveItems(ctx context.Context, items []domain.LineItem) error

	// LoadHistory returns the stored history, newest first, or an empty
	// history when none is stored or the stored value is unreadable.
	LoadHistory(ctx context.Context) ([]domain.HistoryEntry, error)

	// SaveHistory replaces the stored history.
	SaveHistory(ctx context.Context, entries []domain.HistoryEntry) error

	// Close releases the underlying storage handle.
	Close() error
}

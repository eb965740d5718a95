package ports

import (
	"context"

	"github.com/eletroorca/quote-service/internal/domain"
)

// Assistant is the contract for AI-backed text generation. Adapters map
// provider errors to domain errors: a missing credential or unreachable
// provider surfaces as domain.ErrUnavailable so callers can degrade.
//
// The two operations have deliberately different failure postures:
// message enrichment is best-effort (callers fall back to the deterministic
// template), while item suggestion reports its error to the user and never
// fabricates a fallback list.
type Assistant interface {
	// GenerateMessage produces a client-facing WhatsApp message for the
	// given quote snapshot.
	GenerateMessage(ctx context.Context, in domain.MessageInput) (string, error)

	// SuggestItems proposes line items for a free-text job description.
	// On any failure it returns a nil slice and a non-nil error; partial
	// results are never returned.
	SuggestItems(ctx context.Context, jobDescription string) ([]domain.Suggestion, error)
}

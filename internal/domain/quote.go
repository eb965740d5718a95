// Package domain contains the core quote-builder entities and rules.
// Entities here have no knowledge of HTTP, storage, or the AI service.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Validity periods offered for a quote. The UI presents these as a closed
// choice; anything else is rejected at the edge.
const (
	Validity7Days  = "7 dias"
	Validity10Days = "10 dias"
	Validity15Days = "15 dias"
	Validity30Days = "30 dias"

	// DefaultValidity is used for every freshly created quote.
	DefaultValidity = Validity15Days
)

// ValidityOptions lists the accepted validity periods in display order.
var ValidityOptions = []string{Validity7Days, Validity10Days, Validity15Days, Validity30Days}

// Units of measure for a line item.
const (
	UnitPiece   = "un"  // single unit / piece
	UnitMeter   = "m"   // meter of cable, conduit, etc.
	UnitHour    = "h"   // labor hour
	UnitKit     = "kit" // assembled kit
	UnitLumpSum = "vb"  // "verba", lump sum

	// DefaultUnit is applied when an entry point omits the unit.
	DefaultUnit = UnitPiece
)

// UnitOptions lists the accepted units of measure in display order.
var UnitOptions = []string{UnitPiece, UnitMeter, UnitHour, UnitKit, UnitLumpSum}

// IssueDateLayout is the calendar date format used on quotes.
const IssueDateLayout = "2006-01-02"

// ValidValidity reports whether v is one of the accepted validity periods.
func ValidValidity(v string) bool {
	for _, opt := range ValidityOptions {
		if v == opt {
			return true
		}
	}
	return false
}

// ValidUnit reports whether u is one of the accepted units of measure.
func ValidUnit(u string) bool {
	for _, opt := range UnitOptions {
		if u == opt {
			return true
		}
	}
	return false
}

// ProfessionalProfile identifies the service provider on every quote.
// There is exactly one per installation; it survives "new quote" and is
// never deleted, only reset to defaults.
type ProfessionalProfile struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Phone string `json:"phone"`

	// LogoRef is an opaque image reference: either an inline data URI or a
	// path relative to the deployment. It must round-trip persistence
	// byte-for-byte. Empty means "no logo configured".
	LogoRef string `json:"logoRef,omitempty"`
}

// DefaultProfile returns the profile used on first run and after a reset.
func DefaultProfile() ProfessionalProfile {
	return ProfessionalProfile{
		Name:  "Flavio",
		Title: "Eletricista Profissional",
	}
}

// QuoteDetails holds the client and metadata of the single active quote.
type QuoteDetails struct {
	ClientName    string `json:"clientName"`
	ClientAddress string `json:"clientAddress"`
	ClientPhone   string `json:"clientPhone"`
	IssueDate     string `json:"issueDate"` // IssueDateLayout
	Validity      string `json:"validity"`
	Notes         string `json:"notes"`
}

// NewQuoteDetails returns the defaults for a freshly created quote:
// empty client fields, today's date, and the default validity period.
func NewQuoteDetails(now time.Time) QuoteDetails {
	return QuoteDetails{
		IssueDate: now.Format(IssueDateLayout),
		Validity:  DefaultValidity,
	}
}

// LineItem is one billable row of the active quote. The collection keeps
// insertion order; items are never reordered automatically.
type LineItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Unit        string  `json:"unit"`
}

// LineTotal returns quantity times unit price for this item.
func (li LineItem) LineTotal() float64 {
	return li.Quantity * li.UnitPrice
}

// NewLineItem builds a line item with a fresh identifier, applying the
// default unit when none is given.
func NewLineItem(description string, quantity, unitPrice float64, unit string) LineItem {
	if unit == "" {
		unit = DefaultUnit
	}
	return LineItem{
		ID:          uuid.New().String(),
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Unit:        unit,
	}
}

// CopyItems returns an independent copy of a line-item collection.
// LineItem has no reference fields, so a slice copy is a deep copy.
func CopyItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

// HistoryEntry is an immutable snapshot of a quote taken at save time.
// Subsequent edits to the active quote must never reach a saved entry.
type HistoryEntry struct {
	ID        string       `json:"id"`
	Client    QuoteDetails `json:"client"`
	Items     []LineItem   `json:"items"`
	Total     float64      `json:"total"`
	CreatedAt time.Time    `json:"createdAt"`
}

// NewHistoryEntry snapshots the given quote state. The items slice is
// copied so the entry is isolated from later mutations of the active
// collection.
func NewHistoryEntry(client QuoteDetails, items []LineItem, now time.Time) HistoryEntry {
	snapshot := CopyItems(items)
	return HistoryEntry{
		ID:        uuid.New().String(),
		Client:    client,
		Items:     snapshot,
		Total:     Subtotal(snapshot),
		CreatedAt: now,
	}
}

// Suggestion is an AI-proposed line item awaiting user review. Suggestions
// are never inserted into the active quote without explicit confirmation.
type Suggestion struct {
	Description    string  `json:"description"`
	EstimatedPrice float64 `json:"estimatedPrice"`
	Unit           string  `json:"unit"`
}

// Item converts an accepted suggestion into a line item with quantity one
// and a fresh identifier. Unknown units fall back to the default.
func (s Suggestion) Item() LineItem {
	unit := s.Unit
	if !ValidUnit(unit) {
		unit = DefaultUnit
	}
	return NewLineItem(s.Description, 1, s.EstimatedPrice, unit)
}

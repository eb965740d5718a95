package domain

import "time"

// QuoteField names one mutable field of the active QuoteDetails. Field
// updates go through this closed set so every mutation site is statically
// checkable instead of passing arbitrary key/value pairs around.
type QuoteField string

const (
	FieldClientName    QuoteField = "clientName"
	FieldClientAddress QuoteField = "clientAddress"
	FieldClientPhone   QuoteField = "clientPhone"
	FieldIssueDate     QuoteField = "issueDate"
	FieldValidity      QuoteField = "validity"
	FieldNotes         QuoteField = "notes"
)

// QuoteFields lists every settable field.
var QuoteFields = []QuoteField{
	FieldClientName,
	FieldClientAddress,
	FieldClientPhone,
	FieldIssueDate,
	FieldValidity,
	FieldNotes,
}

// Set applies a single tagged field update. Unknown fields, malformed
// dates, and validity values outside the closed option set are rejected
// with ErrValidation, leaving the record untouched.
func (q *QuoteDetails) Set(field QuoteField, value string) error {
	switch field {
	case FieldClientName:
		q.ClientName = value
	case FieldClientAddress:
		q.ClientAddress = value
	case FieldClientPhone:
		q.ClientPhone = value
	case FieldIssueDate:
		if _, err := time.Parse(IssueDateLayout, value); err != nil {
			return NewValidationError(string(field), "must be a date in YYYY-MM-DD format")
		}
		q.IssueDate = value
	case FieldValidity:
		if !ValidValidity(value) {
			return NewValidationError(string(field), "must be one of the offered validity periods")
		}
		q.Validity = value
	case FieldNotes:
		q.Notes = value
	default:
		return NewValidationError("field", "unknown quote field: "+string(field))
	}
	return nil
}

package domain

import "strings"

// FallbackClientName is used in the share message when no client name was
// entered yet.
const FallbackClientName = "Cliente"

// MessageInput carries everything the composer needs. It is a value type so
// an enrichment call works on a snapshot taken at invocation time.
type MessageInput struct {
	ClientName string
	Subtotal   float64
	ItemCount  int
	Notes      string
	Items      []LineItem
}

// FallbackMessage builds the deterministic share message. It needs no
// external service and is used whenever AI enrichment is unavailable or
// fails. The output embeds the client name (or a generic placeholder), one
// line per item with its line total, and the formatted subtotal.
func FallbackMessage(in MessageInput) string {
	name := strings.TrimSpace(in.ClientName)
	if name == "" {
		name = FallbackClientName
	}

	var b strings.Builder
	b.WriteString("Olá ")
	b.WriteString(name)
	b.WriteString(", aqui está o orçamento solicitado.\n\n*Resumo:*\n")
	for _, item := range in.Items {
		b.WriteString("- ")
		b.WriteString(item.Description)
		b.WriteString(": ")
		b.WriteString(FormatBRL(item.LineTotal()))
		b.WriteString("\n")
	}
	b.WriteString("\n*Total: ")
	b.WriteString(FormatBRL(in.Subtotal))
	b.WriteString("*\n\nFico à disposição!")
	return b.String()
}

package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/eletroorca/quote-service/internal/domain"
)

// External DTOs for the generateContent API. These types never leave the
// package.

type generateContentRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	ResponseSchema   *schema `json:"responseSchema,omitempty"`
}

type schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Items       *schema            `json:"items,omitempty"`
	Properties  map[string]*schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// externalSuggestion mirrors the schema-constrained JSON the model emits.
type externalSuggestion struct {
	Description    string  `json:"description"`
	EstimatedPrice float64 `json:"estimatedPrice"`
	Unit           string  `json:"unit"`
}

func userContent(text string) content {
	return content{Role: "user", Parts: []part{{Text: text}}}
}

func systemContent(text string) *content {
	return &content{Parts: []part{{Text: text}}}
}

// composePrompt asks for a short WhatsApp message in Portuguese for the
// given quote snapshot.
func composePrompt(in domain.MessageInput) string {
	name := strings.TrimSpace(in.ClientName)
	if name == "" {
		name = domain.FallbackClientName
	}

	var b strings.Builder
	b.WriteString("Crie uma mensagem curta, educada e profissional para enviar pelo WhatsApp junto com o orçamento.\n")
	fmt.Fprintf(&b, "Cliente: %s\n", name)
	fmt.Fprintf(&b, "Valor Total: %s\n", domain.FormatBRL(in.Subtotal))
	fmt.Fprintf(&b, "Qtd Itens: %d\n", in.ItemCount)
	fmt.Fprintf(&b, "Observações extras: %s\n\n", in.Notes)
	b.WriteString("A mensagem deve convidar o cliente a fechar o serviço. Não use hashtags. Use emojis moderados (ferramentas, eletricidade).")

	return b.String()
}

// suggestPrompt asks for 3 to 6 service or material items for the job.
func suggestPrompt(jobDescription string) string {
	var b strings.Builder
	b.WriteString("O usuário é um eletricista criando um orçamento.\n")
	fmt.Fprintf(&b, "Descrição do trabalho: %q.\n", jobDescription)
	b.WriteString("Liste de 3 a 6 itens de serviço ou materiais necessários para realizar este trabalho.\n")
	b.WriteString("Estime um preço unitário RAZOÁVEL em Reais (BRL) para o mercado brasileiro (apenas mão de obra ou peça pequena).\n")
	b.WriteString("Seja técnico mas claro.")

	return b.String()
}

// suggestionSchema constrains the model to an array of suggestion objects.
func suggestionSchema() *schema {
	return &schema{
		Type: "ARRAY",
		Items: &schema{
			Type: "OBJECT",
			Properties: map[string]*schema{
				"description":    {Type: "STRING", Description: "Nome do serviço ou material"},
				"estimatedPrice": {Type: "NUMBER", Description: "Preço unitário estimado em reais"},
				"unit":           {Type: "STRING", Description: "Unidade (un, m, h, kit)"},
			},
			Required: []string{"description", "estimatedPrice", "unit"},
		},
	}
}

// extractText pulls the first candidate's text out of a response.
func extractText(resp *generateContentResponse) (string, error) {
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if text := strings.TrimSpace(p.Text); text != "" {
				return text, nil
			}
		}
	}

	return "", domain.NewUnavailableError("gemini", "response contained no text")
}

// parseSuggestions decodes the schema-constrained JSON payload into domain
// suggestions. Entries with a blank description or a negative price make
// the whole payload invalid: a half-trustworthy suggestion list is worse
// than an error.
func parseSuggestions(resp *generateContentResponse) ([]domain.Suggestion, error) {
	text, err := extractText(resp)
	if err != nil {
		return nil, err
	}

	var external []externalSuggestion
	if err := json.Unmarshal([]byte(text), &external); err != nil {
		return nil, domain.NewUnavailableError("gemini", "response is not a suggestion array: "+err.Error())
	}

	if len(external) == 0 {
		return nil, domain.NewUnavailableError("gemini", "response contained no suggestions")
	}

	suggestions := make([]domain.Suggestion, 0, len(external))

	for _, ext := range external {
		if strings.TrimSpace(ext.Description) == "" {
			return nil, domain.NewUnavailableError("gemini", "suggestion with blank description")
		}

		if !domain.FiniteAmount(ext.EstimatedPrice) || ext.EstimatedPrice < 0 {
			return nil, domain.NewUnavailableError("gemini", "suggestion with invalid price")
		}

		suggestions = append(suggestions, domain.Suggestion{
			Description:    strings.TrimSpace(ext.Description),
			EstimatedPrice: ext.EstimatedPrice,
			Unit:           strings.TrimSpace(ext.Unit),
		})
	}

	return suggestions, nil
}

package handlers

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eletroorca/quote-service/internal/app"
	"github.com/eletroorca/quote-service/internal/domain"
)

// DocumentHandler renders the active quote as a printable HTML page.
type DocumentHandler struct {
	service *app.QuoteService
	tmpl    *template.Template
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(service *app.QuoteService) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		tmpl:    template.Must(template.New("quote").Funcs(documentFuncs).Parse(documentTemplate)),
	}
}

var documentFuncs = template.FuncMap{
	"brl": domain.FormatBRL,
	"lineTotal": func(item domain.LineItem) string {
		return domain.FormatBRL(item.LineTotal())
	},
}

// documentData is the template context for the printable quote.
type documentData struct {
	Profile  domain.ProfessionalProfile
	Quote    domain.QuoteDetails
	Items    []domain.LineItem
	Subtotal float64
}

// GetDocument handles GET /api/v1/quote/document
// Renders the active quote as a self-contained HTML page suitable for
// printing or PDF export from the browser.
//
// @Summary Render the active quote as a printable document
// @Tags quote
// @Produce html
// @Success 200 {string} string "HTML document"
// @Router /api/v1/quote/document [get]
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	snapshot := h.service.Snapshot()
	data := documentData{
		Profile:  snapshot.Profile,
		Quote:    snapshot.Quote,
		Items:    snapshot.Items,
		Subtotal: snapshot.Subtotal,
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := h.tmpl.Execute(c.Writer, data); err != nil {
		// Headers are already written; surface via gin's error sink.
		_ = c.Error(err)
	}
}

// RegisterDocumentRoutes registers the document route on the given group.
func (h *DocumentHandler) RegisterDocumentRoutes(rg *gin.RouterGroup) {
	rg.GET("/quote/document", h.GetDocument)
}

// documentTemplate is the printable quote layout. It is intentionally
// self-contained: inline styles only, no external assets.
const documentTemplate = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>Orçamento{{if .Quote.ClientName}} - {{.Quote.ClientName}}{{end}}</title>
<style>
  body { font-family: Arial, Helvetica, sans-serif; color: #1f2933; margin: 2rem auto; max-width: 48rem; }
  header { display: flex; justify-content: space-between; align-items: center; border-bottom: 2px solid #1f2933; padding-bottom: 1rem; }
  header img { max-height: 72px; }
  h1 { font-size: 1.4rem; margin: 0; }
  .muted { color: #52606d; font-size: 0.9rem; }
  table { width: 100%; border-collapse: collapse; margin-top: 1.5rem; }
  th, td { text-align: left; padding: 0.5rem; border-bottom: 1px solid #cbd2d9; }
  th:last-child, td:last-child { text-align: right; }
  tfoot td { font-weight: bold; border-top: 2px solid #1f2933; }
  .notes { margin-top: 1.5rem; white-space: pre-wrap; }
  @media print { body { margin: 0; } }
</style>
</head>
<body>
<header>
  <div>
    <h1>{{.Profile.Name}}</h1>
    <div class="muted">{{.Profile.Title}}</div>
    {{if .Profile.Phone}}<div class="muted">{{.Profile.Phone}}</div>{{end}}
  </div>
  {{if .Profile.LogoRef}}<img src="{{.Profile.LogoRef}}" alt="logo">{{end}}
</header>

<section>
  <p>
    {{if .Quote.ClientName}}<strong>Cliente:</strong> {{.Quote.ClientName}}<br>{{end}}
    {{if .Quote.ClientAddress}}<strong>Endereço:</strong> {{.Quote.ClientAddress}}<br>{{end}}
    {{if .Quote.ClientPhone}}<strong>Telefone:</strong> {{.Quote.ClientPhone}}<br>{{end}}
    <strong>Data:</strong> {{.Quote.IssueDate}}<br>
    <strong>Validade:</strong> {{.Quote.Validity}}
  </p>
</section>

<table>
  <thead>
    <tr><th>Descrição</th><th>Qtd</th><th>Un</th><th>Preço unit.</th><th>Total</th></tr>
  </thead>
  <tbody>
    {{range .Items}}
    <tr>
      <td>{{.Description}}</td>
      <td>{{.Quantity}}</td>
      <td>{{.Unit}}</td>
      <td>{{brl .UnitPrice}}</td>
      <td>{{lineTotal .}}</td>
    </tr>
    {{end}}
  </tbody>
  <tfoot>
    <tr><td colspan="4">Total</td><td>{{brl .Subtotal}}</td></tr>
  </tfoot>
</table>

{{if .Quote.Notes}}
<div class="notes">
  <strong>Observações:</strong><br>{{.Quote.Notes}}
</div>
{{end}}
</body>
</html>
`

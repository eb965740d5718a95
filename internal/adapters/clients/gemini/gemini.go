// Package gemini implements ports.Assistant against the Google Gemini
// generateContent REST API.
//
// The package is an anti-corruption layer: request and response DTOs of
// the external API never leak past it, and every provider failure is
// mapped to a domain error. Policy decisions (falling back to the
// deterministic message, surfacing suggestion errors) belong to the
// application layer, not here.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/eletroorca/quote-service/internal/adapters/clients"
	"github.com/eletroorca/quote-service/internal/domain"
	"github.com/eletroorca/quote-service/internal/platform/logging"
	"github.com/eletroorca/quote-service/internal/ports"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// APIKeyHeader carries the credential. Kept out of the URL so it never
// lands in logs or traces. Wire it through the client's AuthFunc:
//
//	AuthFunc: func(r *http.Request) { r.Header.Set(gemini.APIKeyHeader, key) }
const APIKeyHeader = "x-goog-api-key"

// Ensure Adapter implements the ports it claims.
var (
	_ ports.Assistant     = (*Adapter)(nil)
	_ ports.HealthChecker = (*Adapter)(nil)
)

// Config contains configuration for the Gemini adapter.
type Config struct {
	// Client is the HTTP client to use for requests. Its BaseURL should
	// point at the Generative Language API root.
	Client *clients.Client

	// APIKey is the Gemini credential. May be empty: the adapter then
	// reports every operation as unavailable instead of failing at
	// startup, so the service runs fine without AI.
	APIKey string

	// Model overrides DefaultModel.
	Model string

	// Logger is the structured logger.
	Logger *slog.Logger
}

// Adapter calls the Gemini generateContent endpoint.
type Adapter struct {
	client *clients.Client
	apiKey string
	model  string
	logger *slog.Logger
}

// New creates a Gemini adapter. Panics if Client is nil.
func New(cfg Config) *Adapter {
	if cfg.Client == nil {
		panic("gemini: Client is required")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Adapter{
		client: cfg.Client,
		apiKey: cfg.APIKey,
		model:  model,
		logger: logger,
	}
}

// Configured reports whether a credential is present.
func (a *Adapter) Configured() bool {
	return a.apiKey != ""
}

// Name implements ports.HealthChecker.
func (a *Adapter) Name() string {
	return "gemini"
}

// Check implements ports.HealthChecker by fetching the configured model's
// metadata. An unconfigured adapter is healthy: no credential means the
// AI features are off, not broken.
func (a *Adapter) Check(ctx context.Context) error {
	if !a.Configured() {
		return nil
	}

	path := "/v1beta/models/" + url.PathEscape(a.model)

	resp, err := a.client.Get(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return translateStatus(resp)
	}

	return nil
}

// GenerateMessage implements ports.Assistant.
func (a *Adapter) GenerateMessage(ctx context.Context, in domain.MessageInput) (string, error) {
	if !a.Configured() {
		return "", domain.NewUnavailableError("gemini", "no API key configured")
	}

	body := generateContentRequest{
		Contents: []content{userContent(composePrompt(in))},
	}

	raw, err := a.generateContent(ctx, body)
	if err != nil {
		return "", err
	}

	text, err := extractText(raw)
	if err != nil {
		return "", err
	}

	a.logger.DebugContext(ctx, "message generated",
		slog.Int("length", len(text)),
	)

	return text, nil
}

// SuggestItems implements ports.Assistant.
func (a *Adapter) SuggestItems(ctx context.Context, jobDescription string) ([]domain.Suggestion, error) {
	if !a.Configured() {
		return nil, domain.NewUnavailableError("gemini", "no API key configured")
	}

	body := generateContentRequest{
		Contents:          []content{userContent(suggestPrompt(jobDescription))},
		SystemInstruction: systemContent("Você é um assistente sênior de elétrica. Retorne apenas JSON válido."),
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   suggestionSchema(),
		},
	}

	raw, err := a.generateContent(ctx, body)
	if err != nil {
		return nil, err
	}

	suggestions, err := parseSuggestions(raw)
	if err != nil {
		return nil, err
	}

	a.logger.DebugContext(ctx, "items suggested",
		slog.Int("count", len(suggestions)),
	)

	return suggestions, nil
}

// generateContent posts the request and returns the decoded response.
func (a *Adapter) generateContent(ctx context.Context, body generateContentRequest) (*generateContentResponse, error) {
	a.logger.Log(ctx, logging.LevelTrace, "calling generateContent",
		slog.String("model", a.model),
	)

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	path := "/v1beta/models/" + url.PathEscape(a.model) + ":generateContent"

	resp, err := a.client.Post(ctx, path, bytes.NewReader(payload))
	if err != nil {
		return nil, domain.NewUnavailableError("gemini", err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	a.logger.Log(ctx, logging.LevelTrace, "generateContent complete",
		slog.Int("status", resp.StatusCode),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, translateStatus(resp)
	}

	var decoded generateContentResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&decoded); err != nil {
		return nil, domain.NewUnavailableError("gemini", "malformed response: "+err.Error())
	}

	return &decoded, nil
}

// maxResponseBytes bounds response decoding.
const maxResponseBytes = 1 << 20

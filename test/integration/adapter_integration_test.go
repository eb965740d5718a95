//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eletroorca/quote-service/internal/adapters/clients"
	"github.com/eletroorca/quote-service/internal/adapters/clients/gemini"
	"github.com/eletroorca/quote-service/internal/domain"
	"github.com/eletroorca/quote-service/internal/platform/config"
)

// testAdapterConfig returns a client config suitable for adapter
// integration testing against a local httptest server.
func testAdapterConfig(baseURL, apiKey string) *clients.Config {
	return &clients.Config{
		ServiceName: "gemini",
		BaseURL:     baseURL,
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     2,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   3,
			Timeout:       100 * time.Millisecond,
			HalfOpenLimit: 2,
		},
		AuthFunc: func(r *http.Request) {
			r.Header.Set(gemini.APIKeyHeader, apiKey)
		},
	}
}

func newTestAssistant(t *testing.T, baseURL string) *gemini.Adapter {
	t.Helper()

	client, err := clients.New(testAdapterConfig(baseURL, "test-key"))
	require.NoError(t, err)

	return gemini.New(gemini.Config{
		Client: client,
		APIKey: "test-key",
	})
}

// generateContentBody builds the minimal Gemini response envelope
// carrying the given text.
func generateContentBody(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"parts": []map[string]any{{"text": text}},
				},
			},
		},
	})

	return string(body)
}

// TestGeminiAdapter_GenerateMessage_Integration verifies the full compose
// flow through the resilient client: auth header, path, and text extraction.
func TestGeminiAdapter_GenerateMessage_Integration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get(gemini.APIKeyHeader))
		assert.Empty(t, r.URL.Query().Get("key"), "credential must not travel in the URL")

		payload, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(payload), "Maria")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(generateContentBody("Olá Maria, segue o orçamento combinado.")))
	}))
	defer server.Close()

	adapter := newTestAssistant(t, server.URL)

	text, err := adapter.GenerateMessage(context.Background(), domain.MessageInput{
		ClientName: "Maria",
		Subtotal:   150,
		ItemCount:  1,
		Items: []domain.LineItem{
			{ID: "i1", Description: "Troca de tomada", Quantity: 1, UnitPrice: 150, Unit: "un"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "Olá Maria, segue o orçamento combinado.", text)
}

// TestGeminiAdapter_SuggestItems_Integration verifies the structured-output
// flow: JSON mime type requested, suggestions decoded from candidate text.
func TestGeminiAdapter_SuggestItems_Integration(t *testing.T) {
	suggestionsJSON := `[{"description":"Disjuntor 20A","estimatedPrice":45.9,"unit":"un"}]`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(payload), "application/json")
		assert.Contains(t, string(payload), "troca de chuveiro")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(generateContentBody(suggestionsJSON)))
	}))
	defer server.Close()

	adapter := newTestAssistant(t, server.URL)

	suggestions, err := adapter.SuggestItems(context.Background(), "troca de chuveiro")

	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Disjuntor 20A", suggestions[0].Description)
	assert.InDelta(t, 45.9, suggestions[0].EstimatedPrice, 0.001)
	assert.Equal(t, "un", suggestions[0].Unit)
}

// TestGeminiAdapter_ErrorMapping_Unavailable verifies that a 5xx from the
// API surfaces as a domain unavailable error, never as fabricated output.
func TestGeminiAdapter_ErrorMapping_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	}))
	defer server.Close()

	adapter := newTestAssistant(t, server.URL)

	suggestions, err := adapter.SuggestItems(context.Background(), "instalar ventilador")

	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
	assert.Nil(t, suggestions)
}

// TestGeminiAdapter_Unconfigured verifies that a missing API key makes
// operations unavailable while the health check stays green.
func TestGeminiAdapter_Unconfigured(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("unconfigured adapter must not call the API")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := clients.New(testAdapterConfig(server.URL, ""))
	require.NoError(t, err)

	adapter := gemini.New(gemini.Config{Client: client})

	_, err = adapter.GenerateMessage(context.Background(), domain.MessageInput{})
	assert.True(t, domain.IsUnavailable(err))

	_, err = adapter.SuggestItems(context.Background(), "qualquer serviço")
	assert.True(t, domain.IsUnavailable(err))

	assert.NoError(t, adapter.Check(context.Background()))
}

package gemini

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/eletroorca/quote-service/internal/domain"
)

// apiError is the Google API error envelope:
//
//	{"error": {"code": 429, "message": "...", "status": "RESOURCE_EXHAUSTED"}}
type apiError struct {
	Error apiErrorDetail `json:"error"`
}

type apiErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// translateStatus maps a non-200 response to a domain error. The body is
// consulted for the provider's message but the mapping is driven by the
// HTTP status: the caller's behavior must not depend on provider-specific
// status strings.
func translateStatus(resp *http.Response) error {
	reason := fmt.Sprintf("HTTP %d", resp.StatusCode)

	var envelope apiError
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&envelope); err == nil {
		if envelope.Error.Message != "" {
			reason = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, envelope.Error.Message)
		}
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return domain.NewValidationError("request", reason)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.NewUnavailableError("gemini", "credential rejected: "+reason)
	case resp.StatusCode == http.StatusNotFound:
		return domain.NewNotFoundError("model", reason)
	case resp.StatusCode == http.StatusTooManyRequests:
		return domain.NewUnavailableError("gemini", "quota exceeded: "+reason)
	default:
		return domain.NewUnavailableError("gemini", reason)
	}
}

package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/eletroorca/quote-service/internal/domain"
	"github.com/eletroorca/quote-service/internal/ports"
)

// Action names tracked by the assist service.
const (
	actionCompose = "compose_message"
	actionSuggest = "suggest_items"
)

// Feature flags gating the AI paths. Both default to enabled; disabling
// ai-compose routes composition straight to the deterministic template.
const (
	flagAICompose     = "ai_compose"
	flagAISuggestions = "ai_suggestions"
)

// MessageSource identifies how a composed message was produced.
type MessageSource string

const (
	// SourceAssistant means the AI assistant produced the message.
	SourceAssistant MessageSource = "assistant"

	// SourceFallback means the deterministic template produced it.
	SourceFallback MessageSource = "fallback"
)

// ComposedMessage is the result of a compose invocation.
type ComposedMessage struct {
	Body   string        `json:"body"`
	Source MessageSource `json:"source"`
}

// AssistService orchestrates the AI-backed features: message enrichment
// and line-item suggestions. The two features have opposite failure
// postures. Composition always yields a usable message because the
// deterministic fallback needs no external service; suggestion failures
// surface to the caller because inventing line items would put wrong
// prices in front of a client.
type AssistService struct {
	state     *QuoteService
	assistant ports.Assistant
	flags     ports.FeatureFlags
	tracker   *actionTracker
	logger    *slog.Logger
}

// AssistServiceConfig contains configuration for the assist service.
type AssistServiceConfig struct {
	State     *QuoteService
	Assistant ports.Assistant
	Flags     ports.FeatureFlags
	Logger    *slog.Logger
}

// NewAssistService creates an assist service with the provided dependencies.
func NewAssistService(cfg AssistServiceConfig) *AssistService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &AssistService{
		state:     cfg.State,
		assistant: cfg.Assistant,
		flags:     cfg.Flags,
		tracker:   newActionTracker(),
		logger:    logger,
	}
}

// ComposeMessage builds the client-facing share message for the current
// quote. When the AI path is enabled and the assistant answers, its text
// is used; any assistant failure degrades silently to the deterministic
// template. A second compose while one is in flight returns ErrConflict.
func (s *AssistService) ComposeMessage(ctx context.Context) (ComposedMessage, error) {
	generation, err := s.tracker.begin(actionCompose)
	if err != nil {
		return ComposedMessage{}, err
	}

	input := s.state.MessageInput()

	body, source := s.compose(ctx, input)

	if !s.tracker.finish(actionCompose, generation, nil) {
		// A newer compose superseded this one; its result wins.
		return ComposedMessage{}, domain.NewConflictError(actionCompose, "superseded by a newer invocation")
	}

	s.state.SetMessage(body)

	s.logger.InfoContext(ctx, "message composed",
		slog.String("source", string(source)),
		slog.Int("items", input.ItemCount),
	)

	return ComposedMessage{Body: body, Source: source}, nil
}

func (s *AssistService) compose(ctx context.Context, input domain.MessageInput) (string, MessageSource) {
	if s.assistant == nil || !s.flags.IsEnabled(ctx, flagAICompose, true) {
		return domain.FallbackMessage(input), SourceFallback
	}

	body, err := s.assistant.GenerateMessage(ctx, input)
	if err != nil {
		s.logger.WarnContext(ctx, "assistant compose failed, using fallback",
			slog.Any("error", err),
		)

		return domain.FallbackMessage(input), SourceFallback
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return domain.FallbackMessage(input), SourceFallback
	}

	return body, SourceAssistant
}

// Message returns the current composed message, composing the fallback on
// demand when none exists yet.
func (s *AssistService) Message(_ context.Context) string {
	if body := s.state.Message(); body != "" {
		return body
	}

	return domain.FallbackMessage(s.state.MessageInput())
}

// EditMessage replaces the composed message with user-edited text. The
// edit is whole-value: there is no merging with a newly composed draft.
func (s *AssistService) EditMessage(_ context.Context, body string) {
	s.state.SetMessage(body)
}

// SuggestItems asks the assistant to propose line items for a free-text
// job description. Failures are returned to the caller with no
// suggestions; the active item collection is never touched.
func (s *AssistService) SuggestItems(ctx context.Context, jobDescription string) ([]domain.Suggestion, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, domain.NewValidationError("jobDescription", "must not be blank")
	}

	if s.assistant == nil || !s.flags.IsEnabled(ctx, flagAISuggestions, true) {
		return nil, domain.NewUnavailableError("assistant", "suggestions are disabled")
	}

	generation, err := s.tracker.begin(actionSuggest)
	if err != nil {
		return nil, err
	}

	suggestions, err := s.assistant.SuggestItems(ctx, jobDescription)

	if !s.tracker.finish(actionSuggest, generation, err) {
		return nil, domain.NewConflictError(actionSuggest, "superseded by a newer invocation")
	}

	if err != nil {
		s.logger.ErrorContext(ctx, "item suggestion failed",
			slog.Any("error", err),
		)

		return nil, err
	}

	s.logger.InfoContext(ctx, "items suggested",
		slog.Int("count", len(suggestions)),
	)

	return suggestions, nil
}

// AcceptSuggestions inserts the given suggestions into the active quote.
// Insertion is explicit: suggestions never reach the quote without this
// call.
func (s *AssistService) AcceptSuggestions(ctx context.Context, suggestions []domain.Suggestion) ([]domain.LineItem, error) {
	return s.state.BulkAddItems(ctx, suggestions)
}

// ShareLink builds the WhatsApp share link for the current quote, using
// the composed message (or the fallback when none was composed).
func (s *AssistService) ShareLink(ctx context.Context) domain.ShareLink {
	body := s.Message(ctx)
	phone := s.state.Quote().ClientPhone

	link := domain.WhatsAppLink(phone, body)

	s.logger.InfoContext(ctx, "share link built",
		slog.Bool("addressed", link.Addressed),
	)

	return link
}

// ComposeStatus reports the compose action's lifecycle state.
func (s *AssistService) ComposeStatus() ActionStatus {
	return s.tracker.status(actionCompose)
}

// SuggestStatus reports the suggest action's lifecycle state.
func (s *AssistService) SuggestStatus() ActionStatus {
	return s.tracker.status(actionSuggest)
}

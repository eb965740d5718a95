package ports

import "context"

// FeatureFlags defines the contract for feature flag evaluation.
// The application checks enablement without knowing the underlying
// provider; the default implementation reads flags from configuration.
//
// Design principles:
//   - Always provide default values for graceful degradation
//   - Context parameter for future request targeting
//   - Synchronous evaluation (async flag updates happen in the adapter)
//
// Example usage:
//
//	if flags.IsEnabled(ctx, "ai-compose", true) {
//	    return s.composeWithAssistant(ctx, input)
//	}
//	return domain.FallbackMessage(input), nil
type FeatureFlags interface {
	// IsEnabled checks if a boolean feature flag is enabled.
	// Returns defaultValue if the flag doesn't exist or evaluation fails.
	IsEnabled(ctx context.Context, flag string, defaultValue bool) bool

	// GetString retrieves a string feature flag value.
	// Returns defaultValue if the flag doesn't exist or evaluation fails.
	GetString(ctx context.Context, flag string, defaultValue string) string
}

// StaticFlags is a FeatureFlags implementation backed by a fixed map,
// typically populated from configuration at startup. A nil map behaves as
// an empty one: every lookup yields the caller's default.
type StaticFlags struct {
	values map[string]any
}

// NewStaticFlags builds a StaticFlags over the given values.
func NewStaticFlags(values map[string]any) *StaticFlags {
	return &StaticFlags{values: values}
}

// IsEnabled returns the boolean value of flag, or defaultValue when the
// flag is absent or not a boolean.
func (s *StaticFlags) IsEnabled(_ context.Context, flag string, defaultValue bool) bool {
	if v, ok := s.values[flag].(bool); ok {
		return v
	}
	return defaultValue
}

// GetString returns the string value of flag, or defaultValue when the
// flag is absent or not a string.
func (s *StaticFlags) GetString(_ context.Context, flag string, defaultValue string) string {
	if v, ok := s.values[flag].(string); ok {
		return v
	}
	return defaultValue
}

package settings

import (
	"context"
)

type contextKey string

const (
	settingsContextKey contextKey = "settings"
)

// IntoContext stores the run settings in ctx.
func IntoContext(ctx context.Context, s *Run) context.Context {
	return context.WithValue(ctx, settingsContextKey, s)
}

// FromContext retrieves the run settings from ctx.
func FromContext(ctx context.Context) (*Run, bool) {
	s, ok := ctx.Value(settingsContextKey).(*Run)
	return s, ok
}

// FromContextOrDefault returns the run settings in ctx, or CLI defaults.
func FromContextOrDefault(ctx context.Context) *Run {
	if s, ok := FromContext(ctx); ok && s != nil {
		return s
	}
	return NewCliParams()
}

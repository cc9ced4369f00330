package llm

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no model provider is configured.
var ErrNotConfigured = errors.New("llm provider not configured")

// Client sends one prompt to a language model and returns its reply text.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Placeholder is used when no API key is set.
type Placeholder struct{}

// Generate always fails with ErrNotConfigured.
func (Placeholder) Generate(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

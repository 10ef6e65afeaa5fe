package domain

import "context"

// TextProvider is the external text-generation capability.
// Implementations return *ProviderError when the upstream call fails.
type TextProvider interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

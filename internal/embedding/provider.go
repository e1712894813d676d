package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Provider generates embedding vectors for text. An implementation is
// selected once at startup and nothing downstream branches on provider
// identity; callers only rely on this contract.
//
// Providers do not retry. Transient failures surface as errors and the
// retrieval service owns the retry policy.
type Provider interface {
	// EmbedOne embeds a single text. Empty or whitespace-only text yields
	// a nil vector and no error.
	EmbedOne(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds texts in order. On success the result holds
	// exactly one vector per input text, at matching positions.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension reports the vector size this provider is configured for.
	Dimension() int

	// ModelName reports the underlying model identifier.
	ModelName() string
}

// NewProvider selects a Provider implementation by name. Supported names
// are "openai" and "google"; an empty name defaults to "openai".
func NewProvider(ctx context.Context, name, model string, dimension int) (Provider, error) {
	switch name {
	case "openai", "":
		return NewOpenAIProvider(model, dimension)
	case "google":
		return NewGoogleProvider(ctx, model, dimension)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", name)
	}
}

// IsTransient reports whether an embedding error is worth retrying: rate
// limits, provider-side outages, and timed-out attempts. Anything else is
// a hard request failure that retrying cannot fix.
func IsTransient(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.ResourceExhausted, codes.Unavailable, codes.DeadlineExceeded:
			return true
		}
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// Package llm wraps the text-completion backends used for semantic grouping
// and categorization. The backend is an opaque remote service; this package
// only sends prompts and returns raw text.
package llm

import (
	"context"

	"github.com/mfabbri/lexanno/internal/model"
)

// Provider defines the interface for completion backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends a prompt and returns the raw response text
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and reachable
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest contains the input for a completion call
type CompletionRequest struct {
	// System is the instruction message establishing the task
	System string

	// User is the serialized sentence or group batch
	User string

	// Model overrides the configured model when non-empty
	Model string

	// MaxTokens limits the response length; zero means no explicit cap
	MaxTokens int

	// Temperature controls sampling; zero is a valid value and is sent
	// as-is, not replaced by a default
	Temperature float32
}

// CompletionResponse contains the backend's raw output
type CompletionResponse struct {
	// Text is the raw response content, untrimmed of JSON fences
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption across prompt and response
	TokensUsed int
}

// RateWaiter gates backend calls; batch runs share one across all workers
type RateWaiter interface {
	Wait(ctx context.Context, key string) error
}

// fillDefaults applies the configured model when the request does not name
// one. Temperature and MaxTokens are left untouched so an explicit zero
// survives; callers set them from config themselves.
func fillDefaults(req *CompletionRequest, cfg model.BackendConfig) {
	if req.Model == "" {
		req.Model = cfg.Model
	}
}

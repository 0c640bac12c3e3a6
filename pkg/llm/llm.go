package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyCompletion is returned when the model answered with no text.
var ErrEmptyCompletion = errors.New("language model returned no content")

// ChatRequest is a single system+user exchange.
type ChatRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

// Completer turns a ChatRequest into the model's reply text, trimmed.
type Completer interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// UpstreamError wraps a failure reported by the model provider.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Detail     string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Detail)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

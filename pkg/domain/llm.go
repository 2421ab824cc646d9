package domain

import (
	"context"

	"github.com/pkg/errors"

	"github.com/fpt/klein-relay/pkg/message"
)

// ErrNoContent is returned by backends when the provider answered but gave
// no usable text.
var ErrNoContent = errors.New("completion returned no content")

// CompletionRequest is an ordered list of turns sent to a backend.
type CompletionRequest struct {
	Messages []message.Turn
	// MaxTokens caps the generated reply; 0 means the backend default.
	MaxTokens int
}

// LLM represents a completion backend.
type LLM interface {
	// Complete sends the request and returns the first candidate's text.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// ModelID returns a stable identifier for the underlying model
	ModelID() string
}

// VisionLLM is implemented by backends that can dereference image URLs
// themselves. Others receive the URL as plain text.
type VisionLLM interface {
	LLM

	SupportsImageURLs() bool
}

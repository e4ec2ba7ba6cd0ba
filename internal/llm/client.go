// Package llm provides the chat-completion collaborator client.
package llm

import (
	"context"

	"github.com/arcpointlabs/salescoach/internal/domain"
)

// ChatRequest is the contract with the chat-completion collaborator:
// an ordered role-tagged message list, a model identifier, and a
// sampling temperature.
type ChatRequest struct {
	Model       string
	Messages    []domain.Message
	Temperature float64
}

// Client is implemented by chat-completion providers.
type Client interface {
	// Complete sends one chat completion request and returns the
	// assistant message text.
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

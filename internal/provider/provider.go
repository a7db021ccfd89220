// Package provider defines the reasoning-service boundary. The selection
// pipeline treats the service as an untrusted, occasionally-unavailable
// dependency: every call is bounded by a timeout and a retry budget, and
// callers convert failures into empty results rather than propagating them.
package provider

import (
	"context"
	"fmt"

	"github.com/arimedia/mediaplanner/internal/config"
)

// Message represents a message in a chat conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token consumption for a single completion
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
}

// Provider generates structured completions from a reasoning service
type Provider interface {
	// CompleteJSON sends the messages requesting a JSON-object response and
	// returns the raw content string of the first choice.
	CompleteJSON(ctx context.Context, messages []Message, maxTokens int) (string, Usage, error)

	// CalculateCost converts token usage into a dollar estimate.
	CalculateCost(usage Usage) float64
}

// New creates a provider from configuration
func New(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider type: %s", cfg.Provider)
	}
}

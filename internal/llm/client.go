// Package llm provides upstream completion client interfaces and implementations.
package llm

import (
	"context"
)

// Phase is the upstream marker telling which logical channel a delta
// belongs to.
type Phase string

const (
	PhaseReasoning Phase = "reasoning"
	PhaseAnswer    Phase = "answer"
)

// Delta is one incremental fragment of model output, tagged with its phase.
type Delta struct {
	Phase Phase
	Text  string
}

// DeltaCallback is called for each delta during streaming. Returning an
// error stops the upstream read.
type DeltaCallback func(delta Delta) error

// CompletionRequest represents one completion request.
type CompletionRequest struct {
	Model        string
	Query        string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
}

// CompletionResponse represents the fully accumulated result of a request.
type CompletionResponse struct {
	Reasoning  string
	Answer     string
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Client is the interface for upstream completion providers. A provider
// yields an ordered sequence of phase-tagged deltas followed by a single
// terminal signal (the return of StreamReasoning).
type Client interface {
	// Complete sends a completion request and returns the accumulated response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// StreamReasoning streams phase-tagged deltas through the callback and
	// returns the accumulated response when the upstream finishes.
	StreamReasoning(ctx context.Context, req *CompletionRequest, callback DeltaCallback) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string

	// Models returns available models.
	Models() []string
}

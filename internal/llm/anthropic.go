package llm

import (
	"context"
	"errors"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient is the Anthropic provider. This SDK exposes no separate
// reasoning channel, so every delta it yields is an answer-phase delta;
// streams from this provider simply carry no reasoning events.
type AnthropicClient struct {
	client *anthropic.Client
}

// NewAnthropicClient creates a new Anthropic client.
func NewAnthropicClient(apiKey string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("Anthropic API key is required")
	}

	return &AnthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
	}, nil
}

// Name returns the provider name.
func (c *AnthropicClient) Name() string {
	return "anthropic"
}

// Models returns available models.
func (c *AnthropicClient) Models() []string {
	return []string{
		"claude-3-5-sonnet-20241022",
		"claude-3-5-haiku-20241022",
		"claude-3-opus-20240229",
	}
}

func (c *AnthropicClient) params(req *CompletionRequest) anthropic.MessageNewParams {
	model := req.Model
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	content := req.Query
	if req.SystemPrompt != "" {
		content = req.SystemPrompt + "\n\n" + req.Query
	}

	return anthropic.MessageNewParams{
		Model:     anthropic.F(model),
		MaxTokens: anthropic.F(int64(maxTokens)),
		Messages: anthropic.F([]anthropic.MessageParam{
			{
				Role: anthropic.F(anthropic.MessageParamRoleUser),
				Content: anthropic.F([]anthropic.ContentBlockParamUnion{
					anthropic.TextBlockParam{
						Type: anthropic.F(anthropic.TextBlockParamTypeText),
						Text: anthropic.F(content),
					},
				}),
			},
		}),
	}
}

// Complete sends a non-streaming completion request.
func (c *AnthropicClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	resp, err := c.client.Messages.New(ctx, c.params(req))
	if err != nil {
		return nil, err
	}

	var answer string
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			answer += block.Text
		}
	}

	return &CompletionResponse{
		Answer:     answer,
		Model:      resp.Model,
		TokensIn:   int(resp.Usage.InputTokens),
		TokensOut:  int(resp.Usage.OutputTokens),
		StopReason: string(resp.StopReason),
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

// StreamReasoning streams answer-phase deltas from the Anthropic API.
func (c *AnthropicClient) StreamReasoning(ctx context.Context, req *CompletionRequest, callback DeltaCallback) (*CompletionResponse, error) {
	start := time.Now()
	params := c.params(req)

	stream := c.client.Messages.NewStreaming(ctx, params)

	var answer, stopReason string
	var tokensOut int

	for stream.Next() {
		event := stream.Current()

		switch event.Type {
		case anthropic.MessageStreamEventTypeContentBlockDelta:
			if event.Delta.Type == "text_delta" {
				answer += event.Delta.Text
				if err := callback(Delta{Phase: PhaseAnswer, Text: event.Delta.Text}); err != nil {
					return nil, err
				}
			}
		case anthropic.MessageStreamEventTypeMessageDelta:
			stopReason = string(event.Delta.StopReason)
			tokensOut = int(event.Usage.OutputTokens)
		}
	}

	if err := stream.Err(); err != nil {
		return nil, err
	}

	return &CompletionResponse{
		Answer:     answer,
		Model:      params.Model.Value,
		TokensIn:   len(req.Query) / 4,
		TokensOut:  tokensOut,
		StopReason: stopReason,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

package llm

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sashabaranov/go-openai"
)

// AzureClient talks to an Azure OpenAI deployment. Reasoning-capable
// deployments surface chain-of-thought fragments as reasoning_content on
// the stream delta; that field is this provider's phase marker.
type AzureClient struct {
	client     *openai.Client
	deployment string
}

// NewAzureClient creates a client for one Azure OpenAI deployment.
func NewAzureClient(apiKey, endpoint, deployment, apiVersion string) (*AzureClient, error) {
	if apiKey == "" {
		return nil, errors.New("Azure OpenAI API key is required")
	}
	if endpoint == "" {
		return nil, errors.New("Azure OpenAI endpoint is required")
	}

	cfg := openai.DefaultAzureConfig(apiKey, endpoint)
	if apiVersion != "" {
		cfg.APIVersion = apiVersion
	}

	return &AzureClient{
		client:     openai.NewClientWithConfig(cfg),
		deployment: deployment,
	}, nil
}

// Name returns the provider name.
func (c *AzureClient) Name() string {
	return "azure"
}

// Models returns available models.
func (c *AzureClient) Models() []string {
	return []string{c.deployment}
}

func (c *AzureClient) messages(req *CompletionRequest) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Query,
	})
	return messages
}

func (c *AzureClient) model(req *CompletionRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return c.deployment
}

// Complete sends a non-streaming completion request.
func (c *AzureClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model(req),
		Messages:    c.messages(req),
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return nil, err
	}

	var reasoning, answer, stopReason string
	if len(resp.Choices) > 0 {
		reasoning = resp.Choices[0].Message.ReasoningContent
		answer = resp.Choices[0].Message.Content
		stopReason = string(resp.Choices[0].FinishReason)
	}

	return &CompletionResponse{
		Reasoning:  reasoning,
		Answer:     answer,
		Model:      resp.Model,
		TokensIn:   resp.Usage.PromptTokens,
		TokensOut:  resp.Usage.CompletionTokens,
		StopReason: stopReason,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

// StreamReasoning streams phase-tagged deltas from the deployment.
func (c *AzureClient) StreamReasoning(ctx context.Context, req *CompletionRequest, callback DeltaCallback) (*CompletionResponse, error) {
	start := time.Now()
	model := c.model(req)

	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    c.messages(req),
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
		Stream:      true,
	})
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var reasoning, answer, stopReason string

	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(response.Choices) == 0 {
			continue
		}

		delta := response.Choices[0].Delta
		if delta.ReasoningContent != "" {
			reasoning += delta.ReasoningContent
			if err := callback(Delta{Phase: PhaseReasoning, Text: delta.ReasoningContent}); err != nil {
				return nil, err
			}
		}
		if delta.Content != "" {
			answer += delta.Content
			if err := callback(Delta{Phase: PhaseAnswer, Text: delta.Content}); err != nil {
				return nil, err
			}
		}
		if response.Choices[0].FinishReason != "" {
			stopReason = string(response.Choices[0].FinishReason)
		}
	}

	// Streaming responses carry no usage block; estimate from length.
	tokensIn := len(req.Query) / 4
	tokensOut := (len(reasoning) + len(answer)) / 4

	return &CompletionResponse{
		Reasoning:  reasoning,
		Answer:     answer,
		Model:      model,
		TokensIn:   tokensIn,
		TokensOut:  tokensOut,
		StopReason: stopReason,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoughtstream-ai/reasoning-platform/internal/audit"
	"github.com/thoughtstream-ai/reasoning-platform/internal/config"
	"github.com/thoughtstream-ai/reasoning-platform/internal/llm"
	"github.com/thoughtstream-ai/reasoning-platform/internal/model"
	"github.com/thoughtstream-ai/reasoning-platform/internal/service"
	"github.com/thoughtstream-ai/reasoning-platform/internal/sse"
	"github.com/thoughtstream-ai/reasoning-platform/pkg/logger"
)

type scriptedLLM struct {
	deltas []llm.Delta
	err    error
}

func (s *scriptedLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return s.StreamReasoning(ctx, req, func(llm.Delta) error { return nil })
}

func (s *scriptedLLM) StreamReasoning(_ context.Context, _ *llm.CompletionRequest, callback llm.DeltaCallback) (*llm.CompletionResponse, error) {
	var reasoning, answer strings.Builder
	for _, d := range s.deltas {
		if err := callback(d); err != nil {
			return nil, err
		}
		if d.Phase == llm.PhaseReasoning {
			reasoning.WriteString(d.Text)
		} else {
			answer.WriteString(d.Text)
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Reasoning: reasoning.String(), Answer: answer.String(), Model: "fake"}, nil
}

func (s *scriptedLLM) Name() string     { return "fake" }
func (s *scriptedLLM) Models() []string { return []string{"fake"} }

func newChatHandler(t *testing.T, client llm.Client) *ChatHandler {
	t.Helper()
	log, err := logger.New("error")
	require.NoError(t, err)
	svc := service.NewChatService(client, audit.NopSink{}, service.Options{Model: "fake"}, log)
	return NewChatHandler(svc, log)
}

func postJSON(t *testing.T, handlerFn http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(data)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handlerFn(rec, req)
	return rec
}

func decodeFrames(t *testing.T, body []byte) []model.StreamEvent {
	t.Helper()
	r := sse.NewReassembler()
	var events []model.StreamEvent
	for _, line := range r.Feed(body) {
		ev, isFrame, err := sse.DecodeLine(line)
		require.NoError(t, err)
		require.True(t, isFrame)
		events = append(events, ev)
	}
	assert.Empty(t, r.Rest())
	return events
}

func TestStreamEndpointEmitsOrderedFrames(t *testing.T) {
	h := newChatHandler(t, &scriptedLLM{deltas: []llm.Delta{
		{Phase: llm.PhaseReasoning, Text: "thinking"},
		{Phase: llm.PhaseAnswer, Text: "Paris."},
	}})

	rec := postJSON(t, h.Stream, "/chat/stream", model.ChatRequest{Query: "capital of France?"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))

	events := decodeFrames(t, rec.Body.Bytes())
	require.Len(t, events, 4)
	assert.Equal(t, model.EventTypeReasoning, events[0].Type)
	assert.Equal(t, model.EventTypeReasoningDone, events[1].Type)
	assert.Equal(t, model.EventTypeAnswer, events[2].Type)
	assert.Equal(t, model.EventTypeComplete, events[3].Type)
	assert.NotEmpty(t, events[3].SessionID)
}

func TestStreamEndpointUpstreamFailure(t *testing.T) {
	h := newChatHandler(t, &scriptedLLM{
		deltas: []llm.Delta{{Phase: llm.PhaseAnswer, Text: "par"}},
		err:    errors.New("upstream timeout"),
	})

	rec := postJSON(t, h.Stream, "/chat/stream", model.ChatRequest{Query: "q"})

	events := decodeFrames(t, rec.Body.Bytes())
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, model.EventTypeError, last.Type)
	assert.Equal(t, "upstream timeout", last.Message)
}

func TestStreamEndpointRejectsEmptyQuery(t *testing.T) {
	h := newChatHandler(t, &scriptedLLM{})

	rec := postJSON(t, h.Stream, "/chat/stream", model.ChatRequest{Query: ""})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "query")
}

func TestStreamEndpointRejectsInvalidJSON(t *testing.T) {
	h := newChatHandler(t, &scriptedLLM{})

	req := httptest.NewRequest(http.MethodPost, "/chat/stream", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Stream(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatEndpointCollapsedResponse(t *testing.T) {
	h := newChatHandler(t, &scriptedLLM{deltas: []llm.Delta{
		{Phase: llm.PhaseReasoning, Text: "step one"},
		{Phase: llm.PhaseAnswer, Text: "Paris."},
	}})

	rec := postJSON(t, h.Chat, "/chat", model.ChatRequest{Query: "q"})

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp model.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "step one", resp.Reasoning)
	assert.Equal(t, "Paris.", resp.Answer)
	assert.True(t, strings.HasPrefix(resp.SessionID, "session_"))
}

func TestChatEndpointUpstreamFailure(t *testing.T) {
	h := newChatHandler(t, &scriptedLLM{err: errors.New("boom")})

	rec := postJSON(t, h.Chat, "/chat", model.ChatRequest{Query: "q"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "processing error")
}

func TestHealthEndpoint(t *testing.T) {
	h := NewHealthHandler(&config.Config{
		AzureModelDeployment:    "gpt-5-nano",
		AzureAPIVersion:         "2025-03-01-preview",
		EnableComplianceLogging: true,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])

	cfg, ok := body["config"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "gpt-5-nano", cfg["model_deployment"])
	assert.Equal(t, true, cfg["compliance_logging"])
}

func TestRootEndpointListsRoutes(t *testing.T) {
	h := NewHealthHandler(&config.Config{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Root(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])

	endpoints, ok := body["endpoints"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/chat/stream", endpoints["chat_stream"])
	assert.Equal(t, "/health", endpoints["health"])
}

func TestReadyEndpointWithoutNATS(t *testing.T) {
	h := NewHealthHandler(&config.Config{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	h.Ready(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// Package service contains the chat event emitter: it owns the single
// upstream completion call of a chat turn and translates the provider's
// delta stream into the stream-event vocabulary.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thoughtstream-ai/reasoning-platform/internal/audit"
	"github.com/thoughtstream-ai/reasoning-platform/internal/llm"
	"github.com/thoughtstream-ai/reasoning-platform/internal/model"
	"github.com/thoughtstream-ai/reasoning-platform/pkg/logger"
	"github.com/thoughtstream-ai/reasoning-platform/pkg/metrics"
)

// EmitFunc forwards one encoded-ready event downstream. Returning an
// error (typically a disconnected client) stops the upstream read.
type EmitFunc func(ev model.StreamEvent) error

// emitError marks a failure on the downstream side. The upstream error
// path checks for it so it never tries to write an error terminal to a
// client that is already gone.
type emitError struct {
	err error
}

func (e *emitError) Error() string { return "emit failed: " + e.err.Error() }
func (e *emitError) Unwrap() error { return e.err }

// Options carries the static session metadata recorded on session_start.
type Options struct {
	Model        string
	APIVersion   string
	Endpoint     string
	SystemPrompt string

	// LogPath maps a session ID to its compliance log file. Nil when file
	// auditing is disabled.
	LogPath func(sessionID string) string
}

// ChatService drives one upstream completion call per chat turn and
// emits ordered stream events: reasoning deltas, a single
// reasoning_done at the phase boundary, answer deltas, and exactly one
// terminal event. Every event is appended to the audit sink before it is
// forwarded downstream.
type ChatService struct {
	llmClient llm.Client
	sink      audit.Sink
	opts      Options
	logger    *logger.Logger
}

// NewChatService creates a new chat service.
func NewChatService(llmClient llm.Client, sink audit.Sink, opts Options, log *logger.Logger) *ChatService {
	return &ChatService{
		llmClient: llmClient,
		sink:      sink,
		opts:      opts,
		logger:    log,
	}
}

// NewSessionID generates a session identifier carrying its start time.
func NewSessionID() string {
	return "session_" + time.Now().Format("20060102_150405") + "_" + uuid.NewString()[:8]
}

// LogPath returns the compliance log location for a session, or "" when
// file auditing is disabled.
func (s *ChatService) LogPath(sessionID string) string {
	if s.opts.LogPath == nil {
		return ""
	}
	return s.opts.LogPath(sessionID)
}

func (s *ChatService) appendAudit(log *logger.Logger, rec audit.Record) {
	if err := s.sink.Append(rec); err != nil {
		log.Warn("audit append failed", zap.String("event_type", rec.EventType), zap.Error(err))
	}
}

// Stream runs one chat turn, emitting events in protocol order. It
// returns the session ID and the first error encountered; on upstream
// failure the error terminal event has already been emitted.
func (s *ChatService) Stream(ctx context.Context, req *model.ChatRequest, emit EmitFunc) (string, error) {
	sessionID := NewSessionID()
	log := s.logger.WithSession(sessionID)
	start := time.Now()

	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = s.opts.SystemPrompt
	}

	s.appendAudit(log, audit.SessionStart(sessionID, s.opts.Model, s.opts.APIVersion, s.opts.Endpoint, req.Query))

	sequence := 0
	emitEvent := func(ev model.StreamEvent) error {
		sequence++
		// Log-then-send: a crash after this point loses at most the
		// client delivery, never the audit record.
		s.appendAudit(log, audit.EventRecord(sessionID, ev, sequence))
		metrics.RecordStreamEvent(string(ev.Type))
		if err := emit(ev); err != nil {
			return &emitError{err: err}
		}
		return nil
	}

	sawReasoning := false
	reasoningDone := false

	resp, err := s.llmClient.StreamReasoning(ctx, &llm.CompletionRequest{
		Query:        req.Query,
		SystemPrompt: systemPrompt,
	}, func(delta llm.Delta) error {
		switch delta.Phase {
		case llm.PhaseReasoning:
			sawReasoning = true
			return emitEvent(model.NewReasoningEvent(delta.Text))
		case llm.PhaseAnswer:
			if sawReasoning && !reasoningDone {
				reasoningDone = true
				if err := emitEvent(model.NewReasoningDoneEvent()); err != nil {
					return err
				}
			}
			return emitEvent(model.NewAnswerEvent(delta.Text))
		}
		return nil
	})
	if err != nil {
		var ee *emitError
		if errors.As(err, &ee) {
			// Downstream failure: the client is gone, so there is no one
			// to send an error terminal to. Nothing was lost upstream.
			log.Warn("client gone before stream finished", zap.Error(err))
			metrics.RecordStream(s.opts.Model, "disconnected", time.Since(start).Seconds(), 0, 0)
			return sessionID, err
		}

		log.Error("upstream stream failed", zap.Error(err))
		_ = emitEvent(model.NewErrorEvent(err.Error()))
		metrics.RecordStream(s.opts.Model, "error", time.Since(start).Seconds(), 0, 0)
		return sessionID, err
	}

	if sawReasoning && !reasoningDone {
		if err := emitEvent(model.NewReasoningDoneEvent()); err != nil {
			return sessionID, err
		}
	}

	s.appendAudit(log, audit.SessionComplete(sessionID, resp.Reasoning, resp.Answer))

	if err := emitEvent(model.NewCompleteEvent(sessionID)); err != nil {
		return sessionID, err
	}

	metrics.RecordStream(resp.Model, "success", time.Since(start).Seconds(), resp.TokensIn, resp.TokensOut)
	log.Info("stream complete",
		zap.Int("events", sequence),
		zap.Int("reasoning_chars", len(resp.Reasoning)),
		zap.Int("answer_chars", len(resp.Answer)),
		zap.Duration("duration", time.Since(start)),
	)
	return sessionID, nil
}

// Collect runs one chat turn with the same event vocabulary collapsed
// into a single accumulated response.
func (s *ChatService) Collect(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	var reasoning, answer strings.Builder
	var sessionID string

	id, err := s.Stream(ctx, req, func(ev model.StreamEvent) error {
		switch ev.Type {
		case model.EventTypeReasoning:
			reasoning.WriteString(ev.Content)
		case model.EventTypeAnswer:
			answer.WriteString(ev.Content)
		case model.EventTypeComplete:
			sessionID = ev.SessionID
		case model.EventTypeReasoningDone, model.EventTypeError:
			// Boundary and failure need no accumulation; failures
			// surface through Stream's return value.
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if sessionID == "" {
		sessionID = id
	}

	return &model.ChatResponse{
		SessionID:     sessionID,
		Reasoning:     reasoning.String(),
		Answer:        answer.String(),
		ComplianceLog: s.LogPath(sessionID),
		Timestamp:     time.Now(),
	}, nil
}

// Package audit implements the append-only compliance log for streamed
// chat sessions. Every emitted stream event produces one record; records
// are never mutated after append.
package audit

import (
	"strings"
	"time"

	"github.com/thoughtstream-ai/reasoning-platform/internal/model"
)

// Record event types beyond the wire vocabulary.
const (
	RecordSessionStart    = "session_start"
	RecordSessionComplete = "session_complete"
)

// Record is one append-only audit entry. Session-start and
// session-complete records carry their extra fields; per-event records
// carry the event type, content fragment, and sequence number.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	EventType string    `json:"event_type"`

	Content        string `json:"content,omitempty"`
	SequenceNumber int    `json:"sequence_number,omitempty"`

	// session_start
	Model      string `json:"model,omitempty"`
	APIVersion string `json:"api_version,omitempty"`
	Endpoint   string `json:"endpoint,omitempty"`
	UserQuery  string `json:"user_query,omitempty"`

	// session_complete
	ReasoningWordCount int    `json:"reasoning_word_count,omitempty"`
	AnswerWordCount    int    `json:"answer_word_count,omitempty"`
	TotalReasoningText string `json:"total_reasoning_text,omitempty"`
	TotalAnswerText    string `json:"total_answer_text,omitempty"`
}

// SessionStart builds the record opening a session's audit trail.
func SessionStart(sessionID, model, apiVersion, endpoint, userQuery string) Record {
	return Record{
		Timestamp:  time.Now(),
		SessionID:  sessionID,
		EventType:  RecordSessionStart,
		Model:      model,
		APIVersion: apiVersion,
		Endpoint:   endpoint,
		UserQuery:  userQuery,
	}
}

// EventRecord builds the record for one emitted stream event.
func EventRecord(sessionID string, ev model.StreamEvent, sequence int) Record {
	content := ev.Content
	if ev.Type == model.EventTypeError {
		content = ev.Message
	}
	return Record{
		Timestamp:      time.Now(),
		SessionID:      sessionID,
		EventType:      string(ev.Type),
		Content:        content,
		SequenceNumber: sequence,
	}
}

// SessionComplete builds the record closing a session's audit trail.
func SessionComplete(sessionID, reasoning, answer string) Record {
	return Record{
		Timestamp:          time.Now(),
		SessionID:          sessionID,
		EventType:          RecordSessionComplete,
		ReasoningWordCount: len(strings.Fields(reasoning)),
		AnswerWordCount:    len(strings.Fields(answer)),
		TotalReasoningText: reasoning,
		TotalAnswerText:    answer,
	}
}

// Sink durably records audit entries. Append failures are never fatal to
// the chat path; callers log and continue.
type Sink interface {
	Append(rec Record) error
	Close() error
}

// NopSink discards all records. Used when compliance logging is disabled.
type NopSink struct{}

func (NopSink) Append(Record) error { return nil }
func (NopSink) Close() error        { return nil }

type multiSink struct {
	sinks []Sink
}

// Multi fans every record out to all given sinks. The first append error
// is returned after all sinks were attempted.
func Multi(sinks ...Sink) Sink {
	return &multiSink{sinks: sinks}
}

func (m *multiSink) Append(rec Record) error {
	var first error
	for _, s := range m.sinks {
		if err := s.Append(rec); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m *multiSink) Close() error {
	var first error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

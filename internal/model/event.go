// Package model defines the wire and domain types for the streaming platform.
package model

import (
	"errors"
	"fmt"
)

// EventType identifies one variant of the stream event vocabulary.
//
// The set is closed: Reasoning and Answer carry incremental content,
// ReasoningDone marks the phase boundary, Complete and Error are the two
// terminal variants. Consumers switch exhaustively on this type.
type EventType string

const (
	EventTypeReasoning     EventType = "reasoning"
	EventTypeReasoningDone EventType = "reasoning_done"
	EventTypeAnswer        EventType = "answer"
	EventTypeComplete      EventType = "complete"
	EventTypeError         EventType = "error"
)

// ErrUnknownEventType reports a type value outside the closed set.
var ErrUnknownEventType = errors.New("unknown stream event type")

// StreamEvent is the wire entity carried by one SSE frame.
//
// Content is an incremental fragment, never re-sent cumulative text; it is
// present only on reasoning and answer events. SessionID is present only on
// complete, Message only on error.
type StreamEvent struct {
	Type      EventType `json:"type"`
	Content   string    `json:"content,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// NewReasoningEvent returns a reasoning-phase delta event.
func NewReasoningEvent(content string) StreamEvent {
	return StreamEvent{Type: EventTypeReasoning, Content: content}
}

// NewReasoningDoneEvent returns the reasoning-to-answer boundary event.
func NewReasoningDoneEvent() StreamEvent {
	return StreamEvent{Type: EventTypeReasoningDone}
}

// NewAnswerEvent returns an answer-phase delta event.
func NewAnswerEvent(content string) StreamEvent {
	return StreamEvent{Type: EventTypeAnswer, Content: content}
}

// NewCompleteEvent returns the successful terminal event.
func NewCompleteEvent(sessionID string) StreamEvent {
	return StreamEvent{Type: EventTypeComplete, SessionID: sessionID}
}

// NewErrorEvent returns the failure terminal event.
func NewErrorEvent(message string) StreamEvent {
	return StreamEvent{Type: EventTypeError, Message: message}
}

// IsTerminal reports whether no further events are valid after this one.
func (e StreamEvent) IsTerminal() bool {
	return e.Type == EventTypeComplete || e.Type == EventTypeError
}

// Validate checks that the event carries the fields its type requires and
// none it forbids.
func (e StreamEvent) Validate() error {
	switch e.Type {
	case EventTypeReasoning, EventTypeAnswer:
		// Content may legitimately be empty (an upstream can emit empty
		// deltas), but terminal-only fields must not appear.
		if e.SessionID != "" || e.Message != "" {
			return fmt.Errorf("%s event carries terminal fields", e.Type)
		}
	case EventTypeReasoningDone:
		if e.Content != "" || e.SessionID != "" || e.Message != "" {
			return errors.New("reasoning_done event must carry no payload")
		}
	case EventTypeComplete:
		if e.SessionID == "" {
			return errors.New("complete event requires session_id")
		}
	case EventTypeError:
		if e.Message == "" {
			return errors.New("error event requires message")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventType, e.Type)
	}
	return nil
}

// Package session maintains client-side chat state: the ordered message
// list and the per-turn streaming state machine that applies decoded
// stream events in arrival order.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/thoughtstream-ai/reasoning-platform/internal/model"
)

// ErrTurnInFlight reports an attempt to begin a turn while one is still
// streaming. One outstanding request per session is a precondition of
// the protocol.
var ErrTurnInFlight = errors.New("a streaming turn is already in flight")

// Reducer applies stream events to the session's message list. Events
// are trusted in producer order and never re-ordered; every state change
// is reported to the renderer synchronously before the next event is
// applied, so no two increments can ever coalesce into one paint.
//
// A Reducer belongs to the single goroutine driving its stream and is
// not safe for concurrent use.
type Reducer struct {
	renderer Renderer
	messages []model.Message

	// index of the in-flight assistant message, -1 when idle
	current int

	lastError string
}

// NewReducer creates an empty session reducer.
func NewReducer(renderer Renderer) *Reducer {
	if renderer == nil {
		renderer = NopRenderer{}
	}
	return &Reducer{renderer: renderer, current: -1}
}

// AddUserMessage appends a finalized user message.
func (r *Reducer) AddUserMessage(content string) model.Message {
	msg := model.Message{
		ID:        uuid.NewString(),
		Role:      model.RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
	r.messages = append(r.messages, msg)
	return msg
}

// BeginTurn creates the streaming assistant message for a new response.
func (r *Reducer) BeginTurn() (model.Message, error) {
	if r.current >= 0 {
		return model.Message{}, ErrTurnInFlight
	}
	msg := model.Message{
		ID:          uuid.NewString(),
		Role:        model.RoleAssistant,
		Timestamp:   time.Now(),
		IsStreaming: true,
	}
	r.messages = append(r.messages, msg)
	r.current = len(r.messages) - 1
	r.lastError = ""
	return msg, nil
}

// Apply transitions the in-flight message with one decoded event.
// Events arriving with no turn in flight are ignored; a terminal event
// already ended the message they belonged to.
func (r *Reducer) Apply(ev model.StreamEvent) {
	if r.current < 0 {
		return
	}
	msg := &r.messages[r.current]

	switch ev.Type {
	case model.EventTypeReasoning:
		msg.Reasoning += ev.Content
		r.renderer.ReasoningDelta(msg.ID, ev.Content)

	case model.EventTypeReasoningDone:
		r.renderer.PhaseSwitch(msg.ID)

	case model.EventTypeAnswer:
		msg.Answer += ev.Content
		r.renderer.AnswerDelta(msg.ID, ev.Content)

	case model.EventTypeComplete:
		msg.Content = finalContent(msg.Reasoning, msg.Answer)
		msg.IsStreaming = false
		r.current = -1
		r.renderer.Complete(*msg)

	case model.EventTypeError:
		r.fail(ev.Message)
	}
}

// Fail handles a synthesized failure (abrupt disconnect, truncated
// stream): same user-visible effect as an explicit error event.
func (r *Reducer) Fail(message string) {
	if r.current < 0 {
		return
	}
	r.fail(message)
}

// fail removes the in-progress assistant message entirely rather than
// leaving a partial turn, and records the error at session level.
func (r *Reducer) fail(message string) {
	r.messages = append(r.messages[:r.current], r.messages[r.current+1:]...)
	r.current = -1
	r.lastError = message
	r.renderer.Error(message)
}

// finalContent joins the accumulated buffers into display text.
func finalContent(reasoning, answer string) string {
	if reasoning == "" {
		return answer
	}
	return reasoning + "\n\n" + answer
}

// Messages returns a copy of the visible message history.
func (r *Reducer) Messages() []model.Message {
	out := make([]model.Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Streaming reports whether a turn is in flight.
func (r *Reducer) Streaming() bool {
	return r.current >= 0
}

// LastError returns the session-level error from the most recent turn,
// empty when the turn succeeded.
func (r *Reducer) LastError() string {
	return r.lastError
}

// Clear removes all messages and the session error.
func (r *Reducer) Clear() {
	r.messages = nil
	r.current = -1
	r.lastError = ""
}

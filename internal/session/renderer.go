package session

import (
	"github.com/thoughtstream-ai/reasoning-platform/internal/model"
)

// Renderer observes reducer state changes. Calls are synchronous: the
// reducer does not apply the next event until the callback returns,
// which is what guarantees every increment is painted exactly once and
// in order.
type Renderer interface {
	// ReasoningDelta paints one new reasoning fragment.
	ReasoningDelta(messageID, delta string)
	// PhaseSwitch marks the reasoning-to-answer boundary.
	PhaseSwitch(messageID string)
	// AnswerDelta paints one new answer fragment.
	AnswerDelta(messageID, delta string)
	// Complete shows the finalized message.
	Complete(msg model.Message)
	// Error surfaces a session-level error after the partial message was
	// removed.
	Error(message string)
}

// NopRenderer ignores all state changes.
type NopRenderer struct{}

func (NopRenderer) ReasoningDelta(string, string) {}
func (NopRenderer) PhaseSwitch(string)            {}
func (NopRenderer) AnswerDelta(string, string)    {}
func (NopRenderer) Complete(model.Message)        {}
func (NopRenderer) Error(string)                  {}

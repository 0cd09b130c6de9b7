package model

import (
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn as the client sees it.
//
// Reasoning and Answer accumulate independently while IsStreaming is true.
// Content holds the finalized display text and is assembled only when the
// terminal complete event arrives; after that the message is immutable.
type Message struct {
	ID          string    `json:"id"`
	Role        Role      `json:"role"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	IsStreaming bool      `json:"is_streaming"`
	Reasoning   string    `json:"reasoning,omitempty"`
	Answer      string    `json:"answer,omitempty"`
}

// ChatRequest is the body of POST /chat and POST /chat/stream.
type ChatRequest struct {
	Query        string `json:"query"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// ChatResponse is the collapsed, non-streaming result of one chat turn.
type ChatResponse struct {
	SessionID     string    `json:"session_id"`
	Reasoning     string    `json:"reasoning"`
	Answer        string    `json:"answer"`
	ComplianceLog string    `json:"compliance_log,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Package handler contains the HTTP handlers for the streaming chat API.
package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/thoughtstream-ai/reasoning-platform/internal/middleware"
	"github.com/thoughtstream-ai/reasoning-platform/internal/model"
	"github.com/thoughtstream-ai/reasoning-platform/internal/service"
	"github.com/thoughtstream-ai/reasoning-platform/internal/sse"
	"github.com/thoughtstream-ai/reasoning-platform/pkg/logger"
	"github.com/thoughtstream-ai/reasoning-platform/pkg/metrics"
)

// ChatHandler handles the chat endpoints.
type ChatHandler struct {
	chatService *service.ChatService
	logger      *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chatService *service.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      log,
	}
}

func (h *ChatHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (*model.ChatRequest, bool) {
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if err := middleware.ValidateQuery(req.Query); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if err := middleware.ValidateSystemPrompt(req.SystemPrompt); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return &req, true
}

// Stream handles POST /chat/stream: one chat turn streamed as SSE frames.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	// Each event is written and flushed before the next upstream delta is
	// consumed; the server never buffers a response it could forward.
	sessionID, err := h.chatService.Stream(ctx, req, func(ev model.StreamEvent) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		return sse.WriteFrame(w, flusher, ev)
	})
	if err != nil {
		// The error terminal frame was already emitted where possible;
		// nothing more can be written on this connection.
		h.logger.Warn("stream ended with error",
			zap.String("session_id", sessionID),
			zap.String("correlation_id", middleware.GetCorrelationID(ctx)),
			zap.Error(err),
		)
	}
}

// Chat handles POST /chat: the collapsed, non-streaming variant.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.chatService.Collect(r.Context(), req)
	if err != nil {
		h.logger.Error("chat turn failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "processing error: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

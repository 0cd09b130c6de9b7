// Package stream implements the client side of the chat streaming
// protocol: it opens one turn against the server, reconstructs frames
// from raw body chunks, and hands decoded events to a handler in strict
// arrival order.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/thoughtstream-ai/reasoning-platform/internal/model"
	"github.com/thoughtstream-ai/reasoning-platform/internal/sse"
	"github.com/thoughtstream-ai/reasoning-platform/pkg/logger"
)

const readBufferSize = 4096

// ErrNoTerminalEvent reports that the transport closed before a
// complete or error frame arrived. Callers treat it like an explicit
// error event: the partial turn is discarded.
var ErrNoTerminalEvent = errors.New("stream closed without terminal event")

// TurnError is a decoded error terminal event.
type TurnError struct {
	Message string
}

func (e *TurnError) Error() string {
	return "stream error: " + e.Message
}

// Handler receives each decoded event. It is invoked synchronously: the
// next transport read does not begin until the handler returns, so a
// rendering handler observes every increment before more data arrives.
type Handler func(ev model.StreamEvent) error

// Client drives streamed and collapsed chat turns against one server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a client for the given server base URL. The
// underlying HTTP client carries no request timeout; streaming lifetime
// is controlled by the caller's context.
func NewClient(baseURL string, log *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: log,
	}
}

func (c *Client) post(ctx context.Context, path string, req *model.ChatRequest, accept string) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", accept)
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}
	return resp, nil
}

// Stream runs one streamed chat turn. Every decoded event, terminal
// events included, reaches the handler; malformed frames are logged and
// skipped. Stream returns nil after a complete event, a *TurnError
// after an error event, and ErrNoTerminalEvent when the body ends
// without either.
func (c *Client) Stream(ctx context.Context, req *model.ChatRequest, handler Handler) error {
	resp, err := c.post(ctx, "/chat/stream", req, "text/event-stream")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	reassembler := sse.NewReassembler()
	buf := make([]byte, readBufferSize)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			for _, line := range reassembler.Feed(buf[:n]) {
				ev, isFrame, decErr := sse.DecodeLine(line)
				if decErr != nil {
					// Fail-soft: one corrupt frame must not end an
					// otherwise healthy stream.
					c.logger.Warn("skipping malformed frame", zap.Error(decErr))
					continue
				}
				if !isFrame {
					continue
				}

				if err := handler(ev); err != nil {
					return err
				}

				switch ev.Type {
				case model.EventTypeComplete:
					return nil
				case model.EventTypeError:
					return &TurnError{Message: ev.Message}
				}
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				// An unterminated trailing fragment is incomplete by
				// definition; it is discarded, and the missing terminal
				// frame is surfaced to the caller instead.
				if rest := reassembler.Rest(); rest != "" {
					c.logger.Warn("discarding unterminated trailing fragment",
						zap.Int("bytes", len(rest)))
				}
				return ErrNoTerminalEvent
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("transport read failed: %w", readErr)
		}
	}
}

// Chat runs one collapsed, non-streaming chat turn.
func (c *Client) Chat(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	resp, err := c.post(ctx, "/chat", req, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out model.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

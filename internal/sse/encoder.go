// Package sse implements the wire codec for the streaming chat protocol:
// frame encoding on the server side, chunk reassembly and fail-soft frame
// decoding on the client side.
//
// The wire format is one frame per event: a UTF-8 JSON payload prefixed
// with "data: " and terminated by a blank line. JSON encoding escapes any
// newline inside the payload, so a frame can never contain an embedded
// frame terminator.
package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/thoughtstream-ai/reasoning-platform/internal/model"
)

// DataPrefix marks a payload-carrying SSE line.
const DataPrefix = "data: "

// Marshal serializes one event into exactly one SSE frame.
func Marshal(ev model.StreamEvent) ([]byte, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stream event: %w", err)
	}

	frame := make([]byte, 0, len(DataPrefix)+len(payload)+2)
	frame = append(frame, DataPrefix...)
	frame = append(frame, payload...)
	frame = append(frame, '\n', '\n')
	return frame, nil
}

// WriteFrame encodes the event, writes the frame, and flushes it so the
// client observes the increment before the next one is produced.
func WriteFrame(w io.Writer, flusher http.Flusher, ev model.StreamEvent) error {
	frame, err := Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	if flusher != nil {
		flusher.Flush()
	}
	return nil
}

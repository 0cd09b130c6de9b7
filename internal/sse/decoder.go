package sse

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thoughtstream-ai/reasoning-platform/internal/model"
)

// DecodeLine parses one reassembled line into a typed stream event.
//
// The boolean reports whether the line carried a frame at all: lines
// without the data marker (comments, keep-alives) return (_, false, nil)
// and are silently ignored. Malformed JSON or a payload that fails
// validation returns an error; the caller logs it and continues with the
// next line, since one corrupt frame must not abort an otherwise healthy
// stream.
func DecodeLine(line string) (model.StreamEvent, bool, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "data:") {
		return model.StreamEvent{}, false, nil
	}

	payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
	if payload == "" {
		return model.StreamEvent{}, false, nil
	}

	var ev model.StreamEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return model.StreamEvent{}, true, fmt.Errorf("malformed frame payload: %w", err)
	}
	if err := ev.Validate(); err != nil {
		return model.StreamEvent{}, true, fmt.Errorf("invalid frame: %w", err)
	}
	return ev, true, nil
}

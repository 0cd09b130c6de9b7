package sse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoughtstream-ai/reasoning-platform/internal/model"
)

func TestMarshalFrameFormat(t *testing.T) {
	frame, err := Marshal(model.NewReasoningEvent("Hi"))
	require.NoError(t, err)

	assert.Equal(t, "data: {\"type\":\"reasoning\",\"content\":\"Hi\"}\n\n", string(frame))
}

func TestMarshalEscapesNewlines(t *testing.T) {
	frame, err := Marshal(model.NewAnswerEvent("line one\n\nline two"))
	require.NoError(t, err)

	body := strings.TrimSuffix(string(frame), "\n\n")
	assert.NotContains(t, body, "\n", "payload newlines must be JSON-escaped")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	events := []model.StreamEvent{
		model.NewReasoningEvent("thinking about Paris"),
		model.NewReasoningDoneEvent(),
		model.NewAnswerEvent("The Louvre."),
		model.NewCompleteEvent("session_20250101_120000_abcd1234"),
		model.NewErrorEvent("upstream timeout"),
	}

	for _, ev := range events {
		t.Run(string(ev.Type), func(t *testing.T) {
			frame, err := Marshal(ev)
			require.NoError(t, err)

			r := NewReassembler()
			lines := r.Feed(frame)
			require.Len(t, lines, 1)

			decoded, isFrame, err := DecodeLine(lines[0])
			require.NoError(t, err)
			require.True(t, isFrame)
			assert.Equal(t, ev, decoded)
		})
	}
}

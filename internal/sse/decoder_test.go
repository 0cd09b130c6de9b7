package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoughtstream-ai/reasoning-platform/internal/model"
)

func TestDecodeLineIgnoresNonDataLines(t *testing.T) {
	for _, line := range []string{
		": keep-alive",
		"event: message",
		"id: 42",
		"retry: 1000",
	} {
		_, isFrame, err := DecodeLine(line)
		assert.NoError(t, err, line)
		assert.False(t, isFrame, line)
	}
}

func TestDecodeLineMalformedJSON(t *testing.T) {
	_, isFrame, err := DecodeLine(`data: {"type":"answer","content":`)
	assert.True(t, isFrame)
	assert.Error(t, err)
}

func TestDecodeLineUnknownType(t *testing.T) {
	_, isFrame, err := DecodeLine(`data: {"type":"heartbeat"}`)
	assert.True(t, isFrame)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnknownEventType)
}

func TestDecodeLineMissingRequiredFields(t *testing.T) {
	for _, line := range []string{
		`data: {"type":"complete"}`,
		`data: {"type":"error"}`,
	} {
		_, isFrame, err := DecodeLine(line)
		assert.True(t, isFrame, line)
		assert.Error(t, err, line)
	}
}

// One corrupt frame must not poison decoding of the frames after it.
func TestDecodeLineFailSoftSequence(t *testing.T) {
	lines := []string{
		`data: {"type":"reasoning","content":"A"}`,
		`data: {not json}`,
		`data: {"type":"answer","content":"B"}`,
	}

	var decoded []model.StreamEvent
	for _, line := range lines {
		ev, isFrame, err := DecodeLine(line)
		if err != nil || !isFrame {
			continue
		}
		decoded = append(decoded, ev)
	}

	require.Len(t, decoded, 2)
	assert.Equal(t, "A", decoded[0].Content)
	assert.Equal(t, "B", decoded[1].Content)
}

package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoughtstream-ai/reasoning-platform/internal/model"
)

func readRecords(t *testing.T, path string) []Record {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		out = append(out, rec)
	}
	require.NoError(t, scanner.Err())
	return out
}

func TestFileSinkWritesSessionTrail(t *testing.T) {
	sink, err := NewFileSink(t.TempDir())
	require.NoError(t, err)

	sessionID := "session_20250101_120000_abcd1234"
	require.NoError(t, sink.Append(SessionStart(sessionID, "gpt-5-nano", "2025-03-01-preview", "https://example", "capital of France?")))
	require.NoError(t, sink.Append(EventRecord(sessionID, model.NewReasoningEvent("thinking"), 1)))
	require.NoError(t, sink.Append(EventRecord(sessionID, model.NewAnswerEvent("Paris."), 2)))
	require.NoError(t, sink.Append(SessionComplete(sessionID, "thinking", "Paris.")))
	require.NoError(t, sink.Append(EventRecord(sessionID, model.NewCompleteEvent(sessionID), 3)))

	records := readRecords(t, sink.Path(sessionID))
	require.Len(t, records, 5)

	assert.Equal(t, RecordSessionStart, records[0].EventType)
	assert.Equal(t, "capital of France?", records[0].UserQuery)
	assert.Equal(t, "gpt-5-nano", records[0].Model)

	assert.Equal(t, "reasoning", records[1].EventType)
	assert.Equal(t, "thinking", records[1].Content)
	assert.Equal(t, 1, records[1].SequenceNumber)

	assert.Equal(t, RecordSessionComplete, records[3].EventType)
	assert.Equal(t, 1, records[3].ReasoningWordCount)
	assert.Equal(t, "Paris.", records[3].TotalAnswerText)

	assert.Equal(t, "complete", records[4].EventType)
	assert.Equal(t, sessionID, records[4].SessionID)
}

func TestFileSinkSessionStartTruncatesStaleFile(t *testing.T) {
	sink, err := NewFileSink(t.TempDir())
	require.NoError(t, err)

	sessionID := "session_20250101_120000_abcd1234"
	require.NoError(t, sink.Append(SessionStart(sessionID, "m", "v", "e", "old query")))
	require.NoError(t, sink.Append(EventRecord(sessionID, model.NewAnswerEvent("old"), 1)))

	// A new session_start for the same ID starts the trail over.
	require.NoError(t, sink.Append(SessionStart(sessionID, "m", "v", "e", "new query")))

	records := readRecords(t, sink.Path(sessionID))
	require.Len(t, records, 1)
	assert.Equal(t, "new query", records[0].UserQuery)
}

func TestFileSinkErrorRecordStoresMessage(t *testing.T) {
	sink, err := NewFileSink(t.TempDir())
	require.NoError(t, err)

	sessionID := "session_20250101_120000_ffff0000"
	require.NoError(t, sink.Append(EventRecord(sessionID, model.NewErrorEvent("upstream timeout"), 1)))

	records := readRecords(t, sink.Path(sessionID))
	require.Len(t, records, 1)
	assert.Equal(t, "error", records[0].EventType)
	assert.Equal(t, "upstream timeout", records[0].Content)
}

func TestMultiFansOutAndReportsFirstError(t *testing.T) {
	good := &memorySink{}
	bad := &failingSink{}
	sink := Multi(bad, good)

	err := sink.Append(EventRecord("s1", model.NewAnswerEvent("x"), 1))
	assert.Error(t, err)
	assert.Len(t, good.records, 1, "healthy sinks still receive the record")
}

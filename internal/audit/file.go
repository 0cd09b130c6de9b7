package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileSink writes one JSONL file per session under a base directory. The
// session_start record truncates any stale file for the session; every
// other record appends.
type FileSink struct {
	dir string
}

// NewFileSink creates the base directory and returns the sink.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create compliance log dir: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

// Path returns the log file for a session.
func (s *FileSink) Path(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".jsonl")
}

// Append writes one record as a JSON line.
func (s *FileSink) Append(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if rec.EventType == RecordSessionStart {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}

	f, err := os.OpenFile(s.Path(rec.SessionID), flags, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open compliance log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

// Close implements Sink. Files are opened per append, so there is
// nothing to release.
func (s *FileSink) Close() error {
	return nil
}

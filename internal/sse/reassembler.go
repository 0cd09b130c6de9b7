package sse

import (
	"bytes"
	"strings"
)

// Reassembler reconstructs complete newline-terminated lines from raw
// network chunks of arbitrary, non-aligned size.
//
// It keeps a single carry-over buffer between calls: each chunk is
// appended, every complete line is yielded, and the trailing fragment
// stays buffered until a later chunk terminates it. The buffer holds raw
// bytes, so a multi-byte UTF-8 sequence split across chunk boundaries is
// reassembled intact ('\n' never occurs inside a multi-byte sequence).
//
// A Reassembler is owned by the single task reading one stream and is
// not safe for concurrent use.
type Reassembler struct {
	buf []byte
}

// NewReassembler returns an empty reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{}
}

// Feed appends a chunk and returns all newly completed, non-blank lines.
// Blank lines (the frame-terminating second newline of each SSE frame)
// are filtered out here; everything else is returned verbatim for the
// decoder to classify.
func (r *Reassembler) Feed(chunk []byte) []string {
	r.buf = append(r.buf, chunk...)

	var lines []string
	for {
		idx := bytes.IndexByte(r.buf, '\n')
		if idx == -1 {
			break
		}

		line := string(r.buf[:idx])
		r.buf = r.buf[idx+1:]

		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	// Reclaim the backing array once everything buffered was consumed,
	// so a long stream does not pin ever-growing chunks.
	if len(r.buf) == 0 {
		r.buf = nil
	}
	return lines
}

// Rest returns the unterminated trailing fragment currently buffered.
//
// At end of stream a non-empty rest is an incomplete frame by definition:
// a well-formed stream always terminates its final frame. Callers discard
// it rather than decode it.
func (r *Reassembler) Rest() string {
	return string(r.buf)
}

// Reset drops any buffered fragment.
func (r *Reassembler) Reset() {
	r.buf = nil
}

package audit

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/thoughtstream-ai/reasoning-platform/pkg/logger"
	"github.com/thoughtstream-ai/reasoning-platform/pkg/metrics"
)

// ErrQueueFull reports that a record was dropped because the audit queue
// was saturated.
var ErrQueueFull = errors.New("audit queue full, record dropped")

// AsyncSink decouples the emitter from a possibly slow inner sink with a
// bounded queue and a single writer goroutine. Append never blocks: when
// the queue is full the record is dropped and counted. A stalled audit
// backend therefore cannot stall event delivery to the client.
type AsyncSink struct {
	inner  Sink
	logger *logger.Logger

	// mu serializes Append against Close so a concurrent shutdown can
	// never close the channel between the closed check and the send.
	mu     sync.Mutex
	ch     chan Record
	done   chan struct{}
	closed bool
}

// NewAsyncSink starts the writer goroutine over the inner sink.
func NewAsyncSink(inner Sink, queueSize int, log *logger.Logger) *AsyncSink {
	if queueSize <= 0 {
		queueSize = 1024
	}
	s := &AsyncSink{
		inner:  inner,
		logger: log,
		ch:     make(chan Record, queueSize),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *AsyncSink) run() {
	defer close(s.done)
	for rec := range s.ch {
		metrics.AuditQueueDepth.Set(float64(len(s.ch)))
		if err := s.inner.Append(rec); err != nil {
			metrics.RecordAuditAppend("error")
			s.logger.Warn("audit append failed",
				zap.String("session_id", rec.SessionID),
				zap.String("event_type", rec.EventType),
				zap.Error(err),
			)
			continue
		}
		metrics.RecordAuditAppend("ok")
	}
}

// Append enqueues the record without blocking.
func (s *AsyncSink) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("audit sink closed")
	}
	select {
	case s.ch <- rec:
		return nil
	default:
		metrics.RecordAuditAppend("dropped")
		return ErrQueueFull
	}
}

// Close drains the queue and closes the inner sink.
func (s *AsyncSink) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	s.mu.Unlock()

	<-s.done
	return s.inner.Close()
}

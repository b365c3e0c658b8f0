package trace

import (
	"io"
	"sync"
)

// StreamSink writes events immediately to an io.Writer.
type StreamSink struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
}

// NewStreamSink creates a new StreamSink.
func NewStreamSink(w io.Writer, level Level, format Format) *StreamSink {
	return &StreamSink{w: w, level: level, format: format}
}

// Emit writes an event to the output.
func (s *StreamSink) Emit(ev *Event) {
	if !s.level.ShouldEmit(ev.Kind) {
		return
	}

	data := FormatEvent(ev, s.format)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Best-effort write: a broken trace output must not disturb the
	// traced program.
	_, _ = s.w.Write(data)
}

// Flush ensures all buffered data is written.
// StreamSink writes immediately, so only an underlying flusher matters.
func (s *StreamSink) Flush() error {
	if flusher, ok := s.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close flushes and closes the writer if it implements io.Closer.
func (s *StreamSink) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	if closer, ok := s.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Level returns the current tracing level.
func (s *StreamSink) Level() Level {
	return s.level
}

// Enabled returns true if tracing is active.
func (s *StreamSink) Enabled() bool {
	return s.level > LevelOff
}

package trace

import (
	"io"
	"sync"
)

// RingSink keeps the last N events in memory (circular buffer).
type RingSink struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
	head     int  // next write position
	full     bool // has wrapped around
	level    Level
}

// NewRingSink creates a new RingSink with the specified capacity.
func NewRingSink(capacity int, level Level) *RingSink {
	if capacity <= 0 {
		capacity = 4096
	}

	return &RingSink{
		events:   make([]Event, capacity),
		capacity: capacity,
		level:    level,
	}
}

// Emit adds an event to the ring buffer.
func (s *RingSink) Emit(ev *Event) {
	if !s.level.ShouldEmit(ev.Kind) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.events[s.head] = *ev
	s.head = (s.head + 1) % s.capacity

	if s.head == 0 {
		s.full = true
	}
}

// Snapshot returns a copy of all stored events in chronological order.
func (s *RingSink) Snapshot() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.full {
		result := make([]Event, s.head)
		copy(result, s.events[:s.head])
		return result
	}

	result := make([]Event, s.capacity)
	copy(result, s.events[s.head:])
	copy(result[s.capacity-s.head:], s.events[:s.head])
	return result
}

// Dump writes all stored events to the provided writer in the specified
// format.
func (s *RingSink) Dump(w io.Writer, format Format) error {
	for _, ev := range s.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

// Flush is a no-op for RingSink since everything is in memory.
func (s *RingSink) Flush() error {
	return nil
}

// Close is a no-op for RingSink.
func (s *RingSink) Close() error {
	return nil
}

// Level returns the current tracing level.
func (s *RingSink) Level() Level {
	return s.level
}

// Enabled returns true if tracing is active.
func (s *RingSink) Enabled() bool {
	return s.level > LevelOff
}

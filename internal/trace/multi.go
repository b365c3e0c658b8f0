package trace

// MultiSink fans out trace events to multiple sinks.
type MultiSink struct {
	sinks []Sink
	level Level
}

// NewMultiSink creates a new MultiSink that emits to all provided sinks.
func NewMultiSink(level Level, sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks, level: level}
}

// Sinks returns the underlying sinks.
func (s *MultiSink) Sinks() []Sink {
	return s.sinks
}

// Emit sends the event to all underlying sinks.
func (s *MultiSink) Emit(ev *Event) {
	for _, sink := range s.sinks {
		sink.Emit(ev)
	}
}

// Flush flushes all underlying sinks.
func (s *MultiSink) Flush() error {
	var firstErr error
	for _, sink := range s.sinks {
		if err := sink.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close closes all underlying sinks.
func (s *MultiSink) Close() error {
	var firstErr error
	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Level returns the configured level.
func (s *MultiSink) Level() Level {
	return s.level
}

// Enabled returns true if tracing is active.
func (s *MultiSink) Enabled() bool {
	return s.level > LevelOff
}

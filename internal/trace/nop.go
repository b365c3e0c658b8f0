package trace

// nopSink is a no-op implementation for zero overhead when tracing is
// disabled.
type nopSink struct{}

// Emit does nothing.
func (nopSink) Emit(*Event) {}

// Flush does nothing.
func (nopSink) Flush() error { return nil }

// Close does nothing.
func (nopSink) Close() error { return nil }

// Level returns LevelOff.
func (nopSink) Level() Level { return LevelOff }

// Enabled always returns false.
func (nopSink) Enabled() bool { return false }

// Nop is the package-level singleton nop sink.
var Nop Sink = nopSink{}

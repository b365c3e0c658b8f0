// Package trace observes rewritten Flow programs.
//
// The Tracer sits behind the handle identifier that the call rewriter
// plants at every call site. Its three probes report argument values,
// call entry with resolved parameter bindings, and results; invoking
// the wrapper returned by trace_function performs the real call, so
// the rewritten program computes exactly what the original did.
//
// Events flow into a Sink:
//
//   - StreamSink: immediate write to output (text, NDJSON, or msgpack)
//   - RingSink: bounded in-memory buffer, dumpable after the run
//   - MultiSink: fan-out to several sinks
//   - Nop: zero-overhead no-op when tracing is disabled
//
// Verbosity is controlled by levels: LevelCalls reports call, return,
// and failure events; LevelArgs adds one event per observed argument;
// LevelDebug adds driver phase boundaries.
package trace

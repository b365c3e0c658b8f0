package trace

import "context"

type sinkKey struct{}

// WithSink returns a context carrying the sink.
func WithSink(ctx context.Context, sink Sink) context.Context {
	return context.WithValue(ctx, sinkKey{}, sink)
}

// FromContext returns the sink carried by ctx, or Nop.
func FromContext(ctx context.Context) Sink {
	if sink, ok := ctx.Value(sinkKey{}).(Sink); ok {
		return sink
	}
	return Nop
}

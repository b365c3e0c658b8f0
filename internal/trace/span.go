package trace

import (
	"fmt"
	"time"
)

// Span brackets one driver pipeline phase (parse, rewrite, exec). Phase
// events pass only LevelDebug.
type Span struct {
	sink  Sink
	name  string
	start time.Time
}

// BeginPhase emits a phase-begin event and returns the open span.
func BeginPhase(sink Sink, name string) *Span {
	if sink == nil {
		sink = Nop
	}
	s := &Span{sink: sink, name: name, start: time.Now()}
	sink.Emit(&Event{
		Time:  s.start,
		Seq:   NextSeq(),
		Kind:  KindPhaseBegin,
		Value: name,
	})
	return s
}

// End emits the matching phase-end event with the elapsed time.
func (s *Span) End() {
	now := time.Now()
	s.sink.Emit(&Event{
		Time:  now,
		Seq:   NextSeq(),
		Kind:  KindPhaseEnd,
		Value: fmt.Sprintf("%s %s", s.name, now.Sub(s.start).Round(time.Microsecond)),
	})
}

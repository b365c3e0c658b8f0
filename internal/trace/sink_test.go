package trace_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flowtrace/internal/trace"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func callEvent(callee string, seq uint64) *trace.Event {
	return &trace.Event{
		Seq:    seq,
		Kind:   trace.KindCall,
		Callee: callee,
		Arity:  1,
		Args:   []trace.Arg{{Repr: "1"}},
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in      string
		want    trace.Level
		wantErr bool
	}{
		{in: "off", want: trace.LevelOff},
		{in: "calls", want: trace.LevelCalls},
		{in: "args", want: trace.LevelArgs},
		{in: "debug", want: trace.LevelDebug},
		{in: "verbose", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := trace.ParseLevel(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseLevel(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
}

func TestLevelShouldEmit(t *testing.T) {
	if trace.LevelOff.ShouldEmit(trace.KindCall) {
		t.Error("off must suppress calls")
	}
	if trace.LevelCalls.ShouldEmit(trace.KindArg) {
		t.Error("calls must suppress argument observations")
	}
	if !trace.LevelCalls.ShouldEmit(trace.KindFail) {
		t.Error("calls must pass failures")
	}
	if !trace.LevelArgs.ShouldEmit(trace.KindArg) {
		t.Error("args must pass argument observations")
	}
	if !trace.LevelDebug.ShouldEmit(trace.KindPhaseBegin) {
		t.Error("debug must pass phase markers")
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]trace.Format{
		"auto":   trace.FormatAuto,
		"text":   trace.FormatText,
		"ndjson": trace.FormatNDJSON,
		"binary": trace.FormatBinary,
	} {
		got, err := trace.ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := trace.ParseFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]trace.StorageMode{
		"stream": trace.ModeStream,
		"ring":   trace.ModeRing,
		"both":   trace.ModeBoth,
	} {
		got, err := trace.ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := trace.ParseMode("disk"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestRingSink_Wraparound(t *testing.T) {
	ring := trace.NewRingSink(4, trace.LevelCalls)
	for i := 0; i < 10; i++ {
		ring.Emit(callEvent(fmt.Sprintf("f%d", i), uint64(i)))
	}
	snap := ring.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("ring holds %d events, want 4", len(snap))
	}
	// Oldest first, keeping only the newest four.
	for i, ev := range snap {
		want := fmt.Sprintf("f%d", 6+i)
		if ev.Callee != want {
			t.Errorf("snapshot[%d].Callee = %s, want %s", i, ev.Callee, want)
		}
	}
}

func TestRingSink_LevelFiltering(t *testing.T) {
	ring := trace.NewRingSink(16, trace.LevelCalls)
	ring.Emit(&trace.Event{Kind: trace.KindArg, Args: []trace.Arg{{Repr: "1"}}})
	ring.Emit(callEvent("f", 1))
	snap := ring.Snapshot()
	if len(snap) != 1 || snap[0].Kind != trace.KindCall {
		t.Errorf("snapshot = %v, want only the call", snap)
	}
}

func TestStreamSink_NDJSON(t *testing.T) {
	var buf bytes.Buffer
	sink := trace.NewStreamSink(&buf, trace.LevelArgs, trace.FormatNDJSON)
	sink.Emit(callEvent("f", 7))
	if err := sink.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	if strings.Count(line, "\n") != 0 {
		t.Fatalf("expected a single line, got %q", buf.String())
	}
	for _, want := range []string{`"kind":"call"`, `"callee":"f"`, `"seq":7`} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %s", line, want)
		}
	}
}

func TestStreamSink_Text(t *testing.T) {
	var buf bytes.Buffer
	sink := trace.NewStreamSink(&buf, trace.LevelCalls, trace.FormatText)
	sink.Emit(&trace.Event{
		Seq:    1,
		Kind:   trace.KindCall,
		Callee: "f",
		Arity:  2,
		Atomic: true,
		Bindings: []trace.Binding{
			{Name: "x", Repr: "1"},
			{Name: "y", Repr: "2"},
		},
	})
	out := buf.String()
	for _, want := range []string{"f(", "x=1", "y=2", "nargs=2", "atomic"} {
		if !strings.Contains(out, want) {
			t.Errorf("text line %q missing %s", out, want)
		}
	}
}

func TestMultiSink_FansOut(t *testing.T) {
	var buf bytes.Buffer
	ring := trace.NewRingSink(8, trace.LevelCalls)
	stream := trace.NewStreamSink(&buf, trace.LevelCalls, trace.FormatText)
	multi := trace.NewMultiSink(trace.LevelCalls, ring, stream)

	multi.Emit(callEvent("f", 1))
	if err := multi.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(ring.Snapshot()) != 1 {
		t.Error("ring did not receive the event")
	}
	if !strings.Contains(buf.String(), "f(") {
		t.Error("stream did not receive the event")
	}
}

func TestNewSink_FormatFromExtension(t *testing.T) {
	dir := t.TempDir()
	sink, err := trace.NewSink(trace.Config{
		Level:      trace.LevelCalls,
		Mode:       trace.ModeStream,
		Format:     trace.FormatAuto,
		OutputPath: filepath.Join(dir, "out.ndjson"),
	})
	if err != nil {
		t.Fatalf("NewSink: %v", err)
	}
	sink.Emit(callEvent("f", 1))
	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data := readFile(t, filepath.Join(dir, "out.ndjson"))
	if !strings.Contains(data, `"callee":"f"`) {
		t.Errorf("output %q is not ndjson", data)
	}
}

func TestNopSink(t *testing.T) {
	sink := trace.Nop
	if sink.Enabled() {
		t.Error("nop sink must report disabled")
	}
	sink.Emit(callEvent("f", 1))
	if err := sink.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

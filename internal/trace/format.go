package trace

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/vmihailenco/msgpack/v5"
)

// Format represents the output format for trace events.
type Format uint8

const (
	FormatAuto   Format = iota // pick from the output path extension
	FormatText                 // human-readable text
	FormatNDJSON               // newline-delimited JSON
	FormatBinary               // length-prefixed msgpack records
)

// String returns the string representation of Format.
func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatText:
		return "text"
	case FormatNDJSON:
		return "ndjson"
	case FormatBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson":
		return FormatNDJSON, nil
	case "binary", "msgpack":
		return FormatBinary, nil
	default:
		return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson|binary)", s)
	}
}

// maxReprWidth bounds value renderings in text output so one huge list
// cannot swamp the trace.
const maxReprWidth = 60

// FormatEvent formats an event according to the specified format.
func FormatEvent(ev *Event, format Format) []byte {
	switch format {
	case FormatNDJSON:
		return formatNDJSON(ev)
	case FormatBinary:
		return formatBinary(ev)
	default:
		return formatText(ev)
	}
}

// formatNDJSON formats an event as newline-delimited JSON.
func formatNDJSON(ev *Event) []byte {
	type jsonEvent struct {
		Time string `json:"time"`
		Kind string `json:"kind"`
		*Event
	}

	j := jsonEvent{
		Time:  ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Kind:  ev.Kind.String(),
		Event: ev,
	}

	data, _ := json.Marshal(j)
	data = append(data, '\n')
	return data
}

// formatBinary formats an event as one msgpack record.
func formatBinary(ev *Event) []byte {
	data, _ := msgpack.Marshal(ev)
	return data
}

// formatText formats an event as human-readable text.
// Format: [seq] indent arrow callee(bindings) / value
func formatText(ev *Event) []byte {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%5d] ", ev.Seq))
	sb.WriteString(strings.Repeat("  ", ev.Depth))

	switch ev.Kind {
	case KindCall:
		sb.WriteString("→ ") // →
		sb.WriteString(ev.Callee)
		sb.WriteString("(")
		for i, b := range ev.Bindings {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(b.Name)
			sb.WriteString("=")
			sb.WriteString(clipRepr(b.Repr))
		}
		sb.WriteString(")")
		sb.WriteString(fmt.Sprintf(" nargs=%d", ev.Arity))
		if ev.Atomic {
			sb.WriteString(" atomic")
		}
	case KindReturn:
		sb.WriteString("← ") // ←
		sb.WriteString(clipRepr(ev.Value))
	case KindFail:
		sb.WriteString("✗ ") // ✗
		sb.WriteString(ev.Callee)
		sb.WriteString(": ")
		sb.WriteString(ev.Value)
	case KindArg:
		sb.WriteString("• ") // •
		if ev.Args != nil {
			a := ev.Args[0]
			if a.Name != "" {
				sb.WriteString(a.Name)
				sb.WriteString("=")
			}
			sb.WriteString(clipRepr(a.Repr))
			if a.NStars > 0 {
				sb.WriteString(fmt.Sprintf(" nstars=%d", a.NStars))
			}
		}
	case KindPhaseBegin:
		sb.WriteString("▸ ") // ▸
		sb.WriteString(ev.Value)
	case KindPhaseEnd:
		sb.WriteString("◂ ") // ◂
		sb.WriteString(ev.Value)
	}

	sb.WriteString("\n")
	return []byte(sb.String())
}

// clipRepr truncates a rendering to maxReprWidth display cells.
func clipRepr(s string) string {
	if runewidth.StringWidth(s) <= maxReprWidth {
		return s
	}
	return runewidth.Truncate(s, maxReprWidth, "…")
}

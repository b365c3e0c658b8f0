package trace

import "fmt"

// Level controls tracing verbosity.
type Level uint8

const (
	// LevelOff disables tracing.
	LevelOff Level = iota
	// LevelCalls emits call, return, and failure events.
	LevelCalls
	// LevelArgs additionally emits one event per observed argument.
	LevelArgs
	// LevelDebug emits everything including driver phase boundaries.
	LevelDebug
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelCalls:
		return "calls"
	case LevelArgs:
		return "args"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "off", "OFF":
		return LevelOff, nil
	case "calls", "CALLS":
		return LevelCalls, nil
	case "args", "ARGS":
		return LevelArgs, nil
	case "debug", "DEBUG":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|calls|args|debug)", s)
	}
}

// ShouldEmit returns true if events of the given kind pass this level.
func (l Level) ShouldEmit(kind Kind) bool {
	switch l {
	case LevelOff:
		return false
	case LevelCalls:
		return kind == KindCall || kind == KindReturn || kind == KindFail
	case LevelArgs:
		return kind != KindPhaseBegin && kind != KindPhaseEnd
	case LevelDebug:
		return true
	}
	return false
}

package interp

import (
	"fmt"

	"flowtrace/internal/source"
)

// Trap is a runtime failure raised by the evaluated program. Traps travel
// as ordinary Go errors and must propagate through instrumentation
// wrappers unmodified.
type Trap struct {
	Message string
	Span    source.Span
}

func (t *Trap) Error() string {
	return t.Message
}

// Trapf builds a trap at sp.
func Trapf(sp source.Span, format string, args ...any) *Trap {
	return &Trap{Message: fmt.Sprintf(format, args...), Span: sp}
}

// FormatWithFiles renders the trap with a resolved file:line:col location.
func (t *Trap) FormatWithFiles(fs *source.FileSet) string {
	path, pos := fs.Position(t.Span)
	if path == "" {
		return t.Message
	}
	return fmt.Sprintf("%s:%d:%d: %s", path, pos.Line, pos.Col, t.Message)
}

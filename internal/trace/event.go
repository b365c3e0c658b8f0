package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindCall marks a traced call about to enter its callee.
	KindCall Kind = iota + 1
	// KindReturn marks a completed call's result passing back out.
	KindReturn
	// KindFail marks a callee failure propagating out of a traced call.
	KindFail
	// KindArg records one observed argument before its call fires.
	KindArg
	// KindPhaseBegin and KindPhaseEnd bracket driver pipeline phases.
	KindPhaseBegin
	KindPhaseEnd
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindCall:
		return "call"
	case KindReturn:
		return "return"
	case KindFail:
		return "fail"
	case KindArg:
		return "arg"
	case KindPhaseBegin:
		return "begin"
	case KindPhaseEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Arg is one argument observation attached to a pending call: the value's
// rendering, the keyword name if the slot was named, and the unpack depth
// (1 for *spread, 2 for **spread, 0 for plain slots).
type Arg struct {
	Repr   string `json:"repr" msgpack:"repr"`
	Name   string `json:"name,omitempty" msgpack:"name,omitempty"`
	NStars int    `json:"nstars,omitempty" msgpack:"nstars,omitempty"`
}

// Binding is one resolved parameter-to-value entry, in declaration order.
// Opaque callees get synthetic positional keys ("0", "1", ...).
type Binding struct {
	Name string `json:"name" msgpack:"name"`
	Repr string `json:"repr" msgpack:"repr"`
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time `json:"-" msgpack:"time"`
	Seq      uint64    `json:"seq" msgpack:"seq"`
	Kind     Kind      `json:"-" msgpack:"kind"`
	Depth    int       `json:"depth" msgpack:"depth"`
	Callee   string    `json:"callee,omitempty" msgpack:"callee,omitempty"`
	Arity    int       `json:"arity,omitempty" msgpack:"arity,omitempty"`
	Atomic   bool      `json:"atomic,omitempty" msgpack:"atomic,omitempty"`
	Args     []Arg     `json:"args,omitempty" msgpack:"args,omitempty"`
	Bindings []Binding `json:"bindings,omitempty" msgpack:"bindings,omitempty"`
	// Value holds the return value rendering for KindReturn and KindArg,
	// the failure text for KindFail, and the phase name for phase events.
	Value string `json:"value,omitempty" msgpack:"value,omitempty"`
}

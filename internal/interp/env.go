package interp

// Env is one lexical scope: a name table with a pointer to the enclosing
// scope.
type Env struct {
	parent *Env
	vars   map[string]Value
}

// NewEnv creates a scope nested in parent. A nil parent makes a global
// scope.
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, vars: make(map[string]Value)}
}

// Define binds name in this scope, shadowing any outer binding.
func (e *Env) Define(name string, v Value) {
	e.vars[name] = v
}

// Get resolves name through the scope chain.
func (e *Env) Get(name string) (Value, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return None(), false
}

// Assign updates name in the nearest scope that defines it, or defines it
// here when no scope does.
func (e *Env) Assign(name string, v Value) {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			s.vars[name] = v
			return
		}
	}
	e.vars[name] = v
}

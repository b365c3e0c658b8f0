package ast

import "flowtrace/internal/source"

// StmtKind enumerates statement kinds.
type StmtKind uint8

const (
	// StmtExpr represents an expression statement.
	StmtExpr StmtKind = iota
	// StmtAssign represents an assignment statement.
	StmtAssign
	// StmtReturn represents a return statement.
	StmtReturn
	// StmtIf represents an if/else statement.
	StmtIf
	// StmtWhile represents a while loop.
	StmtWhile
	// StmtBlock represents a braced statement list.
	StmtBlock
	// StmtFunc represents a function declaration.
	StmtFunc
	// StmtClass represents a class declaration.
	StmtClass
)

// Stmt represents a statement node.
type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

// ParamKind enumerates formal parameter kinds.
type ParamKind uint8

const (
	// ParamPositional is an ordinary parameter, optionally defaulted.
	ParamPositional ParamKind = iota
	// ParamVariadic collects excess positional arguments (*args).
	ParamVariadic
	// ParamKeywordVariadic collects unknown keyword arguments (**kwargs).
	ParamKeywordVariadic
)

// Param is one formal parameter of a function declaration.
type Param struct {
	Name    string
	Kind    ParamKind
	Default ExprID // NoExprID when the parameter has no default
}

// StmtExprData holds an expression statement.
type StmtExprData struct {
	X ExprID
}

// StmtAssignData holds an assignment. Target is an identifier, attribute,
// or index expression.
type StmtAssignData struct {
	Target ExprID
	Value  ExprID
}

// StmtReturnData holds a return statement. X is NoExprID for a bare return.
type StmtReturnData struct {
	X ExprID
}

// StmtIfData holds an if statement. Else is NoStmtID when absent and is
// either a block or another if statement.
type StmtIfData struct {
	Cond ExprID
	Then StmtID
	Else StmtID
}

// StmtWhileData holds a while loop.
type StmtWhileData struct {
	Cond ExprID
	Body StmtID
}

// StmtBlockData holds an ordered statement list.
type StmtBlockData struct {
	List []StmtID
}

// StmtFuncData holds a function declaration.
type StmtFuncData struct {
	Name   string
	Params []Param
	Body   StmtID
}

// StmtClassData holds a class declaration; methods are StmtFunc statements.
type StmtClassData struct {
	Name    string
	Methods []StmtID
}

// Stmts manages allocation of statements.
type Stmts struct {
	Arena   *Arena[Stmt]
	Exprs   *Arena[StmtExprData]
	Assigns *Arena[StmtAssignData]
	Returns *Arena[StmtReturnData]
	Ifs     *Arena[StmtIfData]
	Whiles  *Arena[StmtWhileData]
	Blocks  *Arena[StmtBlockData]
	Funcs   *Arena[StmtFuncData]
	Classes *Arena[StmtClassData]
}

// NewStmts creates a Stmts with arenas preallocated to capHint.
func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Stmts{
		Arena:   NewArena[Stmt](capHint),
		Exprs:   NewArena[StmtExprData](capHint),
		Assigns: NewArena[StmtAssignData](capHint),
		Returns: NewArena[StmtReturnData](capHint),
		Ifs:     NewArena[StmtIfData](capHint),
		Whiles:  NewArena[StmtWhileData](capHint),
		Blocks:  NewArena[StmtBlockData](capHint),
		Funcs:   NewArena[StmtFuncData](capHint),
		Classes: NewArena[StmtClassData](capHint),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload PayloadID) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{Kind: kind, Span: span, Payload: payload}))
}

// Get returns the statement node for id, or nil for NoStmtID.
func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

// NewExpr creates an expression statement.
func (s *Stmts) NewExpr(span source.Span, x ExprID) StmtID {
	payload := s.Exprs.Allocate(StmtExprData{X: x})
	return s.new(StmtExpr, span, PayloadID(payload))
}

// Expr returns expression statement data for id.
func (s *Stmts) Expr(id StmtID) (*StmtExprData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtExpr {
		return nil, false
	}
	return s.Exprs.Get(uint32(stmt.Payload)), true
}

// NewAssign creates an assignment statement.
func (s *Stmts) NewAssign(span source.Span, target, value ExprID) StmtID {
	payload := s.Assigns.Allocate(StmtAssignData{Target: target, Value: value})
	return s.new(StmtAssign, span, PayloadID(payload))
}

// Assign returns assignment data for id.
func (s *Stmts) Assign(id StmtID) (*StmtAssignData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtAssign {
		return nil, false
	}
	return s.Assigns.Get(uint32(stmt.Payload)), true
}

// NewReturn creates a return statement.
func (s *Stmts) NewReturn(span source.Span, x ExprID) StmtID {
	payload := s.Returns.Allocate(StmtReturnData{X: x})
	return s.new(StmtReturn, span, PayloadID(payload))
}

// Return returns return statement data for id.
func (s *Stmts) Return(id StmtID) (*StmtReturnData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtReturn {
		return nil, false
	}
	return s.Returns.Get(uint32(stmt.Payload)), true
}

// NewIf creates an if statement.
func (s *Stmts) NewIf(span source.Span, cond ExprID, then, els StmtID) StmtID {
	payload := s.Ifs.Allocate(StmtIfData{Cond: cond, Then: then, Else: els})
	return s.new(StmtIf, span, PayloadID(payload))
}

// If returns if statement data for id.
func (s *Stmts) If(id StmtID) (*StmtIfData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtIf {
		return nil, false
	}
	return s.Ifs.Get(uint32(stmt.Payload)), true
}

// NewWhile creates a while loop.
func (s *Stmts) NewWhile(span source.Span, cond ExprID, body StmtID) StmtID {
	payload := s.Whiles.Allocate(StmtWhileData{Cond: cond, Body: body})
	return s.new(StmtWhile, span, PayloadID(payload))
}

// While returns while loop data for id.
func (s *Stmts) While(id StmtID) (*StmtWhileData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtWhile {
		return nil, false
	}
	return s.Whiles.Get(uint32(stmt.Payload)), true
}

// NewBlock creates a block statement. The list is copied.
func (s *Stmts) NewBlock(span source.Span, list []StmtID) StmtID {
	payload := s.Blocks.Allocate(StmtBlockData{List: append([]StmtID(nil), list...)})
	return s.new(StmtBlock, span, PayloadID(payload))
}

// Block returns block data for id.
func (s *Stmts) Block(id StmtID) (*StmtBlockData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtBlock {
		return nil, false
	}
	return s.Blocks.Get(uint32(stmt.Payload)), true
}

// NewFunc creates a function declaration. Params are copied.
func (s *Stmts) NewFunc(span source.Span, name string, params []Param, body StmtID) StmtID {
	payload := s.Funcs.Allocate(StmtFuncData{
		Name:   name,
		Params: append([]Param(nil), params...),
		Body:   body,
	})
	return s.new(StmtFunc, span, PayloadID(payload))
}

// Func returns function declaration data for id.
func (s *Stmts) Func(id StmtID) (*StmtFuncData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtFunc {
		return nil, false
	}
	return s.Funcs.Get(uint32(stmt.Payload)), true
}

// NewClass creates a class declaration. Methods are copied.
func (s *Stmts) NewClass(span source.Span, name string, methods []StmtID) StmtID {
	payload := s.Classes.Allocate(StmtClassData{
		Name:    name,
		Methods: append([]StmtID(nil), methods...),
	})
	return s.new(StmtClass, span, PayloadID(payload))
}

// Class returns class declaration data for id.
func (s *Stmts) Class(id StmtID) (*StmtClassData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtClass {
		return nil, false
	}
	return s.Classes.Get(uint32(stmt.Payload)), true
}

package ast

type (
	// StmtID identifies a statement node.
	StmtID uint32
	// ExprID identifies an expression node.
	ExprID uint32
	// PayloadID identifies a kind-specific payload.
	PayloadID uint32
)

const (
	NoStmtID    StmtID    = 0
	NoExprID    ExprID    = 0
	NoPayloadID PayloadID = 0
)

func (id StmtID) IsValid() bool    { return id != NoStmtID }
func (id ExprID) IsValid() bool    { return id != NoExprID }
func (id PayloadID) IsValid() bool { return id != NoPayloadID }

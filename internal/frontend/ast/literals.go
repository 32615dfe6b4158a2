package ast

import "github.com/spicelang/spice-sub000/internal/source"

type LiteralKind int

const (
	INT LiteralKind = iota
	SHORT
	LONG
	DOUBLE
	CHAR
	STRING
	BOOL
)

// BasicLit represents a literal of a primitive type
type BasicLit struct {
	Kind  LiteralKind
	Value string // the literal value as written
	Results
	source.Location
}

func (b *BasicLit) INode()                {} // Implements Node interface
func (b *BasicLit) Expr()                 {} // Expr is a marker interface for all expressions
func (b *BasicLit) Loc() *source.Location { return &b.Location }

// StructInit represents `Pair<int>{1, 2}`; fields are positional
type StructInit struct {
	Type   *DataType
	Fields []Expression
	Results
	source.Location
}

func (s *StructInit) INode()                {} // Implements Node interface
func (s *StructInit) Expr()                 {} // Expr is a marker interface for all expressions
func (s *StructInit) Loc() *source.Location { return &s.Location }

// ArrayInit represents `[1, 2, 3]`
type ArrayInit struct {
	Items []Expression
	Results
	source.Location
}

func (a *ArrayInit) INode()                {} // Implements Node interface
func (a *ArrayInit) Expr()                 {} // Expr is a marker interface for all expressions
func (a *ArrayInit) Loc() *source.Location { return &a.Location }

// LambdaExpr represents `f<R>(params) { ... }`, `p(params) { ... }` and
// expression lambdas `(params) -> expr`.
type LambdaExpr struct {
	ReturnType *DataType // nil for procedures and expression lambdas
	Params     []*Param
	Body       *Block
	Value      Expression // expression lambdas only
	Results
	source.Location
}

func (l *LambdaExpr) INode()                {} // Implements Node interface
func (l *LambdaExpr) Expr()                 {} // Expr is a marker interface for all expressions
func (l *LambdaExpr) Loc() *source.Location { return &l.Location }

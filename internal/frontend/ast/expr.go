package ast

import (
	"github.com/spicelang/spice-sub000/internal/source"
	"github.com/spicelang/spice-sub000/internal/tokens"
)

// BinaryExpr represents a binary expression
type BinaryExpr struct {
	X  Expression   // left operand
	Op tokens.TOKEN // operator
	Y  Expression   // right operand
	Results
	source.Location
}

func (b *BinaryExpr) INode()                {} // Implements Node interface
func (b *BinaryExpr) Expr()                 {} // Expr is a marker interface for all expressions
func (b *BinaryExpr) Loc() *source.Location { return &b.Location }

// UnaryExpr represents a prefix expression: - ! ~ ++ -- & *
type UnaryExpr struct {
	Op tokens.TOKEN
	X  Expression
	Results
	source.Location
}

func (u *UnaryExpr) INode()                {} // Implements Node interface
func (u *UnaryExpr) Expr()                 {} // Expr is a marker interface for all expressions
func (u *UnaryExpr) Loc() *source.Location { return &u.Location }

// PostfixExpr represents x++ and x--
type PostfixExpr struct {
	X  Expression
	Op tokens.TOKEN
	Results
	source.Location
}

func (p *PostfixExpr) INode()                {} // Implements Node interface
func (p *PostfixExpr) Expr()                 {} // Expr is a marker interface for all expressions
func (p *PostfixExpr) Loc() *source.Location { return &p.Location }

// IdentifierExpr represents an identifier
type IdentifierExpr struct {
	Name string
	Results
	source.Location
}

func (i *IdentifierExpr) INode()                {} // Implements Node interface
func (i *IdentifierExpr) Expr()                 {} // Expr is a marker interface for all expressions
func (i *IdentifierExpr) Loc() *source.Location { return &i.Location }

// SelectorExpr represents member access (x.field), also through pointers,
// and qualified access through an import alias or enum (mod.Name, Color.RED)
type SelectorExpr struct {
	X     Expression
	Field string
	Results
	source.Location
}

func (s *SelectorExpr) INode()                {} // Implements Node interface
func (s *SelectorExpr) Expr()                 {} // Expr is a marker interface for all expressions
func (s *SelectorExpr) Loc() *source.Location { return &s.Location }

// CallExpr represents calls of functions, methods (Fun is a SelectorExpr),
// constructors (Fun names a struct) and function pointers
type CallExpr struct {
	Fun           Expression
	TemplateTypes []*DataType // explicit `foo<int>(..)`
	Args          []Expression
	Results
	source.Location
}

func (c *CallExpr) INode()                {} // Implements Node interface
func (c *CallExpr) Expr()                 {} // Expr is a marker interface for all expressions
func (c *CallExpr) Loc() *source.Location { return &c.Location }

// IndexExpr represents an index expression (array[index])
type IndexExpr struct {
	X     Expression
	Index Expression
	Results
	source.Location
}

func (i *IndexExpr) INode()                {} // Implements Node interface
func (i *IndexExpr) Expr()                 {} // Expr is a marker interface for all expressions
func (i *IndexExpr) Loc() *source.Location { return &i.Location }

// TernaryExpr represents cond ? a : b
type TernaryExpr struct {
	Cond Expression
	Then Expression
	Else Expression
	Results
	source.Location
}

func (t *TernaryExpr) INode()                {} // Implements Node interface
func (t *TernaryExpr) Expr()                 {} // Expr is a marker interface for all expressions
func (t *TernaryExpr) Loc() *source.Location { return &t.Location }

// CastExpr represents cast<T>(x)
type CastExpr struct {
	Type *DataType
	X    Expression
	Results
	source.Location
}

func (c *CastExpr) INode()                {} // Implements Node interface
func (c *CastExpr) Expr()                 {} // Expr is a marker interface for all expressions
func (c *CastExpr) Loc() *source.Location { return &c.Location }

// SizeofExpr represents sizeof(T) or sizeof(x); exactly one of Type and X is set
type SizeofExpr struct {
	Type *DataType
	X    Expression
	Results
	source.Location
}

func (s *SizeofExpr) INode()                {} // Implements Node interface
func (s *SizeofExpr) Expr()                 {} // Expr is a marker interface for all expressions
func (s *SizeofExpr) Loc() *source.Location { return &s.Location }

package ast

import (
	"github.com/spicelang/spice-sub000/internal/source"
	"github.com/spicelang/spice-sub000/internal/tokens"
)

// Block represents a braced list of statements; also usable as an anonymous scope
type Block struct {
	Stmts []Statement
	source.Location
}

func (b *Block) INode()                {} // Implements Node interface
func (b *Block) Stmt()                 {} // Stmt is a marker interface for all statements
func (b *Block) Loc() *source.Location { return &b.Location }

// DeclStmt represents a local variable declaration `int a = 1;`
type DeclStmt struct {
	Name  string
	Quals []string
	Type  *DataType
	Value Expression // nil when default-initialized
	Results
	source.Location
}

func (d *DeclStmt) INode()                {} // Implements Node interface
func (d *DeclStmt) Stmt()                 {} // Stmt is a marker interface for all statements
func (d *DeclStmt) Loc() *source.Location { return &d.Location }

// AssignStmt represents plain and compound assignments
type AssignStmt struct {
	Lhs Expression
	Op  tokens.TOKEN
	Rhs Expression
	Results
	source.Location
}

func (a *AssignStmt) INode()                {} // Implements Node interface
func (a *AssignStmt) Stmt()                 {} // Stmt is a marker interface for all statements
func (a *AssignStmt) Loc() *source.Location { return &a.Location }

// ExprStmt represents an expression evaluated for its side effects
type ExprStmt struct {
	X Expression
	Results
	source.Location
}

func (e *ExprStmt) INode()                {} // Implements Node interface
func (e *ExprStmt) Stmt()                 {} // Stmt is a marker interface for all statements
func (e *ExprStmt) Loc() *source.Location { return &e.Location }

// ReturnStmt represents a return with an optional value
type ReturnStmt struct {
	Value Expression
	Results
	source.Location
}

func (r *ReturnStmt) INode()                {} // Implements Node interface
func (r *ReturnStmt) Stmt()                 {} // Stmt is a marker interface for all statements
func (r *ReturnStmt) Loc() *source.Location { return &r.Location }

// IfStmt represents an if statement. Else is nil, *IfStmt or *Block.
type IfStmt struct {
	Cond Expression
	Then *Block
	Else Statement
	source.Location
}

func (i *IfStmt) INode()                {} // Implements Node interface
func (i *IfStmt) Stmt()                 {} // Stmt is a marker interface for all statements
func (i *IfStmt) Loc() *source.Location { return &i.Location }

// WhileStmt represents a while loop
type WhileStmt struct {
	Cond Expression
	Body *Block
	source.Location
}

func (w *WhileStmt) INode()                {} // Implements Node interface
func (w *WhileStmt) Stmt()                 {} // Stmt is a marker interface for all statements
func (w *WhileStmt) Loc() *source.Location { return &w.Location }

// DoWhileStmt represents a do-while loop
type DoWhileStmt struct {
	Body *Block
	Cond Expression
	source.Location
}

func (d *DoWhileStmt) INode()                {} // Implements Node interface
func (d *DoWhileStmt) Stmt()                 {} // Stmt is a marker interface for all statements
func (d *DoWhileStmt) Loc() *source.Location { return &d.Location }

// ForStmt represents `for int i = 0; i < n; i++ { ... }`
type ForStmt struct {
	Init *DeclStmt
	Cond Expression
	Post Statement
	Body *Block
	source.Location
}

func (f *ForStmt) INode()                {} // Implements Node interface
func (f *ForStmt) Stmt()                 {} // Stmt is a marker interface for all statements
func (f *ForStmt) Loc() *source.Location { return &f.Location }

// ForeachStmt represents `foreach int idx, T item : items { ... }`. IndexName is optional.
type ForeachStmt struct {
	IndexName string
	IndexType *DataType
	ItemName  string
	ItemType  *DataType // nil or dyn to infer from the iterable
	Iterable  Expression
	Body      *Block
	Results
	source.Location
}

func (f *ForeachStmt) INode()                {} // Implements Node interface
func (f *ForeachStmt) Stmt()                 {} // Stmt is a marker interface for all statements
func (f *ForeachStmt) Loc() *source.Location { return &f.Location }

// BreakStmt leaves Count enclosing loops (1 when written without a count)
type BreakStmt struct {
	Count int
	source.Location
}

func (b *BreakStmt) INode()                {} // Implements Node interface
func (b *BreakStmt) Stmt()                 {} // Stmt is a marker interface for all statements
func (b *BreakStmt) Loc() *source.Location { return &b.Location }

// ContinueStmt continues the Count-th enclosing loop
type ContinueStmt struct {
	Count int
	source.Location
}

func (c *ContinueStmt) INode()                {} // Implements Node interface
func (c *ContinueStmt) Stmt()                 {} // Stmt is a marker interface for all statements
func (c *ContinueStmt) Loc() *source.Location { return &c.Location }

// FallthroughStmt continues with the next case branch
type FallthroughStmt struct {
	source.Location
}

func (f *FallthroughStmt) INode()                {} // Implements Node interface
func (f *FallthroughStmt) Stmt()                 {} // Stmt is a marker interface for all statements
func (f *FallthroughStmt) Loc() *source.Location { return &f.Location }

// CaseBranch is one `case a, b { ... }` of a switch
type CaseBranch struct {
	Values []Expression
	Body   *Block
	source.Location
}

// SwitchStmt represents a switch with case branches and an optional default
type SwitchStmt struct {
	Subject Expression
	Cases   []*CaseBranch
	Default *Block
	source.Location
}

func (s *SwitchStmt) INode()                {} // Implements Node interface
func (s *SwitchStmt) Stmt()                 {} // Stmt is a marker interface for all statements
func (s *SwitchStmt) Loc() *source.Location { return &s.Location }

// UnsafeStmt represents `unsafe { ... }`
type UnsafeStmt struct {
	Body *Block
	source.Location
}

func (u *UnsafeStmt) INode()                {} // Implements Node interface
func (u *UnsafeStmt) Stmt()                 {} // Stmt is a marker interface for all statements
func (u *UnsafeStmt) Loc() *source.Location { return &u.Location }

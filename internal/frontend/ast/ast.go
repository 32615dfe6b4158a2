package ast

import (
	"github.com/spicelang/spice-sub000/internal/source"
)

// Node is the base interface for all AST nodes
type Node interface {
	INode()
	Loc() *source.Location
}

// Expression represents any node that produces a value
type Expression interface {
	Node
	Expr()
	Result(manIdx int) *Resolved
}

// Statement represents any node that performs an action
type Statement interface {
	Node
	Stmt()
}

// Decl represents a top-level declaration
type Decl interface {
	Node
	Decl()
}

// File is one parsed source file
type File struct {
	Path    string
	Source  string // optional, used for diagnostics snippets
	Imports []*ImportDef
	Decls   []Decl
	source.Location
}

func (f *File) INode()                {} // Implements Node interface
func (f *File) Loc() *source.Location { return &f.Location }

// ImportDef represents `import "path" as alias;`
type ImportDef struct {
	Path  string
	Alias string
	source.Location
}

func (i *ImportDef) INode()                {} // Implements Node interface
func (i *ImportDef) Decl()                 {} // Decl is a marker interface for all declarations
func (i *ImportDef) Loc() *source.Location { return &i.Location }

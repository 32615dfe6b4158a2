package ast

import "github.com/spicelang/spice-sub000/internal/source"

// Param is a function parameter, optionally with a default value
type Param struct {
	Name    string
	Type    *DataType
	Default Expression
	source.Location
}

func (p *Param) INode()                {} // Implements Node interface
func (p *Param) Loc() *source.Location { return &p.Location }

// FuncDef represents functions, procedures and methods.
//
//	f<int> add(int a, int b) { ... }           // function
//	p Pair<T>.print() { ... }                  // method on Pair<T>
//	p Pair<T>.ctor(T first, T second) { ... }  // constructor
//
// ReturnType is nil for procedures.
type FuncDef struct {
	Name          string
	Quals         []string
	ThisType      *DataType   // receiver struct for methods, nil otherwise
	TemplateTypes []*DataType // generic names used by the signature
	ReturnType    *DataType
	Params        []*Param
	Body          *Block
	source.Location
}

func (f *FuncDef) INode()                {} // Implements Node interface
func (f *FuncDef) Decl()                 {} // Decl is a marker interface for all declarations
func (f *FuncDef) Loc() *source.Location { return &f.Location }

func (f *FuncDef) IsProcedure() bool { return f.ReturnType == nil }

// Field is a struct field
type Field struct {
	Name    string
	Quals   []string
	Type    *DataType
	Default Expression
	source.Location
}

func (f *Field) INode()                {} // Implements Node interface
func (f *Field) Loc() *source.Location { return &f.Location }

// StructDef represents `type Name<T> struct : Iface { ... }`
type StructDef struct {
	Name          string
	Quals         []string
	TemplateTypes []*DataType
	Interfaces    []*DataType
	Fields        []*Field
	source.Location
}

func (s *StructDef) INode()                {} // Implements Node interface
func (s *StructDef) Decl()                 {} // Decl is a marker interface for all declarations
func (s *StructDef) Loc() *source.Location { return &s.Location }

// Signature is a method signature inside an interface
type Signature struct {
	Name          string
	TemplateTypes []*DataType
	ReturnType    *DataType // nil for procedures
	Params        []*DataType
	source.Location
}

func (s *Signature) INode()                {} // Implements Node interface
func (s *Signature) Loc() *source.Location { return &s.Location }

// InterfaceDef represents `type Name<T> interface { ... }`
type InterfaceDef struct {
	Name          string
	Quals         []string
	TemplateTypes []*DataType
	Methods       []*Signature
	source.Location
}

func (i *InterfaceDef) INode()                {} // Implements Node interface
func (i *InterfaceDef) Decl()                 {} // Decl is a marker interface for all declarations
func (i *InterfaceDef) Loc() *source.Location { return &i.Location }

// EnumItem is one enumerator. HasValue marks an explicit value.
type EnumItem struct {
	Name     string
	Value    int
	HasValue bool
	source.Location
}

// EnumDef represents `type Name enum { A, B = 3 }`
type EnumDef struct {
	Name  string
	Quals []string
	Items []*EnumItem
	source.Location
}

func (e *EnumDef) INode()                {} // Implements Node interface
func (e *EnumDef) Decl()                 {} // Decl is a marker interface for all declarations
func (e *EnumDef) Loc() *source.Location { return &e.Location }

// GenericTypeDef represents `type T int|double;`. No conditions means any type.
type GenericTypeDef struct {
	Name       string
	Conditions []*DataType
	source.Location
}

func (g *GenericTypeDef) INode()                {} // Implements Node interface
func (g *GenericTypeDef) Decl()                 {} // Decl is a marker interface for all declarations
func (g *GenericTypeDef) Loc() *source.Location { return &g.Location }

// AliasDef represents `type Name alias Target;`
type AliasDef struct {
	Name   string
	Quals  []string
	Target *DataType
	source.Location
}

func (a *AliasDef) INode()                {} // Implements Node interface
func (a *AliasDef) Decl()                 {} // Decl is a marker interface for all declarations
func (a *AliasDef) Loc() *source.Location { return &a.Location }

// GlobalVarDef represents a global variable or constant
type GlobalVarDef struct {
	Name  string
	Quals []string
	Type  *DataType
	Value Expression
	Results
	source.Location
}

func (g *GlobalVarDef) INode()                {} // Implements Node interface
func (g *GlobalVarDef) Decl()                 {} // Decl is a marker interface for all declarations
func (g *GlobalVarDef) Loc() *source.Location { return &g.Location }

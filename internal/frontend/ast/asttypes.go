package ast

import (
	"strconv"

	"github.com/spicelang/spice-sub000/internal/source"
)

type ModifierKind int

const (
	ModPtr ModifierKind = iota
	ModRef
	ModArray
)

// TypeModifier is one pointer/reference/array layer, applied from the base outward
type TypeModifier struct {
	Kind ModifierKind
	Size int // array size, 0 when unknown
}

// DataType is a type as written in the source: `const Pair<int>*[4]`.
// Function types set Func instead of Base.
type DataType struct {
	Quals        []string
	Module       string // import alias for `alias.Name`
	Base         string
	TemplateArgs []*DataType
	Modifiers    []TypeModifier
	Func         *FuncType
	source.Location
}

func (d *DataType) INode()                {} // Implements Node interface
func (d *DataType) Loc() *source.Location { return &d.Location }

// FuncType represents `f<R>(P1, P2)` and `p(P1)` types. Return is nil for procedures.
type FuncType struct {
	Return *DataType
	Params []*DataType
}

func (d *DataType) String() string {
	s := ""
	for _, q := range d.Quals {
		s += q + " "
	}
	if d.Module != "" {
		s += d.Module + "."
	}
	if d.Func != nil {
		if d.Func.Return != nil {
			s += "f<" + d.Func.Return.String() + ">("
		} else {
			s += "p("
		}
		for i, p := range d.Func.Params {
			if i > 0 {
				s += ","
			}
			s += p.String()
		}
		s += ")"
	} else {
		s += d.Base
	}
	if len(d.TemplateArgs) > 0 {
		s += "<"
		for i, arg := range d.TemplateArgs {
			if i > 0 {
				s += ","
			}
			s += arg.String()
		}
		s += ">"
	}
	for _, m := range d.Modifiers {
		switch m.Kind {
		case ModPtr:
			s += "*"
		case ModRef:
			s += "&"
		case ModArray:
			if m.Size > 0 {
				s += "[" + strconv.Itoa(m.Size) + "]"
			} else {
				s += "[]"
			}
		}
	}
	return s
}

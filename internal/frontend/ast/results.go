package ast

import "github.com/spicelang/spice-sub000/internal/types"

// Symbol is implemented by symbol table entries referenced from result slots
type Symbol interface {
	SymbolName() string
}

// Callee is implemented by resolved functions referenced from result slots
type Callee interface {
	Signature() string
}

type CallKind int

const (
	CallFunction CallKind = iota
	CallMethod
	CallCtor
	CallFctPtr
)

// Conversion is the implicit conversion applied to a value at its use site
type Conversion int

const (
	ConvNone Conversion = iota
	ConvWiden
	ConvArrayToPtr
	ConvCharArrayToString
	ConvToInterface
	ConvToConstRef
)

// Resolved is everything the checker records on a node for one manifestation
// of the enclosing declaration. Code generation reads it back by index.
type Resolved struct {
	Type           *types.Type
	Entry          Symbol
	Callee         Callee
	CallKind       CallKind
	CalledCopyCtor Callee
	CalledDtor     Callee
	Conversion     Conversion
}

// Results holds one Resolved record per manifestation index
type Results struct {
	slots []*Resolved
}

// Result returns the record for manIdx, creating it on first access
func (r *Results) Result(manIdx int) *Resolved {
	for len(r.slots) <= manIdx {
		r.slots = append(r.slots, &Resolved{})
	}
	return r.slots[manIdx]
}

// EvaluatedType returns the recorded type for manIdx or nil
func (r *Results) EvaluatedType(manIdx int) *types.Type {
	if manIdx >= len(r.slots) {
		return nil
	}
	return r.slots[manIdx].Type
}

// Manifestations reports how many manifestation slots were written
func (r *Results) Manifestations() int {
	return len(r.slots)
}

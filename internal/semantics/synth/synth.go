// Package synth decides which special methods a struct manifestation needs
// and synthesizes default constructors, copy constructors and destructors
// that the user did not write.
package synth

import (
	"github.com/spicelang/spice-sub000/internal/frontend/ast"
	"github.com/spicelang/spice-sub000/internal/semantics/manager"
	"github.com/spicelang/spice-sub000/internal/semantics/symbols"
	"github.com/spicelang/spice-sub000/internal/semantics/table"
	"github.com/spicelang/spice-sub000/internal/types"
)

const (
	CtorName = "ctor"
	DtorName = "dtor"
	// DeallocRoutine frees the memory behind heap-owned pointers
	DeallocRoutine = "sDealloc"
)

type MethodKind int

const (
	DefaultCtor MethodKind = iota
	CopyCtor
	Dtor
)

func (k MethodKind) String() string {
	switch k {
	case DefaultCtor:
		return "default constructor"
	case CopyCtor:
		return "copy constructor"
	default:
		return "destructor"
	}
}

type ActionKind int

const (
	// InitDefault evaluates the default value declared on the field
	InitDefault ActionKind = iota
	// CallCtor calls the no-arg constructor of a struct field
	CallCtor
	// CopyValue copies the field bit by bit
	CopyValue
	// CallCopyCtor calls the copy constructor of a struct field
	CallCopyCtor
	// DuplicateHeap allocates and copies the memory behind a heap pointer
	DuplicateHeap
	// CallDtor calls the destructor of a struct field
	CallDtor
	// Dealloc calls DeallocRoutine on a heap pointer
	Dealloc
)

// FieldAction is one step of a synthesized method preamble
type FieldAction struct {
	Field  *symbols.Symbol
	Kind   ActionKind
	Callee *manager.FunctionManifestation
	// Routine names the runtime routine an action calls instead of a method
	Routine string
}

// Method is a synthesized special method
type Method struct {
	Kind     MethodKind
	Function *manager.FunctionManifestation
	Preamble []FieldAction
}

// Result lists what was synthesized for one struct manifestation. User
// defined methods are reported in the User fields and never synthesized.
type Result struct {
	Ctor, CopyCtor, Dtor             *Method
	UserCtor, UserCopyCtor, UserDtor *manager.FunctionManifestation
	// NotDefaultConstructible is set when a field has constructors but none without arguments
	NotDefaultConstructible bool
}

// Synthesizer memoizes the decisions per struct manifestation, so field
// structs are settled before the structs containing them
type Synthesizer struct {
	m       *manager.Managers
	results map[*manager.StructManifestation]*Result
}

func New(m *manager.Managers) *Synthesizer {
	return &Synthesizer{m: m, results: make(map[*manager.StructManifestation]*Result)}
}

// Get returns the result for man if it was synthesized already
func (s *Synthesizer) Get(man *manager.StructManifestation) *Result {
	return s.results[man]
}

// Synthesize settles the special methods of man
func (s *Synthesizer) Synthesize(man *manager.StructManifestation) (*Result, error) {
	if res, ok := s.results[man]; ok {
		return res, nil
	}
	res := &Result{}
	s.results[man] = res

	body := s.m.Arena().Get(man.BodyScope())
	if body == nil {
		return res, nil
	}
	fields := body.Fields()
	for _, field := range fields {
		if err := s.settleField(field.Type); err != nil {
			return nil, err
		}
	}

	var err error
	if res.UserCtor, err = s.m.Functions.Match(body, CtorName, man.Type, nil, nil, false, nil); err != nil {
		return nil, err
	}
	if res.UserCopyCtor, err = s.m.Functions.Match(body, CtorName, man.Type, []*types.Type{man.Type.ToConstRef()}, nil, false, nil); err != nil {
		return nil, err
	}
	if res.UserDtor, err = s.m.Functions.Match(body, DtorName, man.Type, nil, nil, false, nil); err != nil {
		return nil, err
	}

	if res.UserCtor == nil {
		if err := s.synthesizeCtor(body, man, fields, res); err != nil {
			return nil, err
		}
	}
	if res.UserCopyCtor == nil {
		if err := s.synthesizeCopyCtor(body, man, fields, res); err != nil {
			return nil, err
		}
	}
	if res.UserDtor == nil {
		if err := s.synthesizeDtor(body, man, fields, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *Synthesizer) settleField(t *types.Type) error {
	if fieldMan := s.structOf(t); fieldMan != nil {
		_, err := s.Synthesize(fieldMan)
		return err
	}
	return nil
}

// structOf returns the manifestation of a by-value struct field
func (s *Synthesizer) structOf(t *types.Type) *manager.StructManifestation {
	if t == nil || !t.Is(types.TYPE_STRUCT) {
		return nil
	}
	man := s.m.Structs.Get(t)
	if man == nil || man.IsTemplate() {
		return nil
	}
	return man
}

func (s *Synthesizer) synthesizeCtor(body *table.Scope, man *manager.StructManifestation, fields []*symbols.Symbol, res *Result) error {
	needed := man.HasVtable()
	var preamble []FieldAction
	for _, field := range fields {
		if hasDefault(field) {
			needed = true
			preamble = append(preamble, FieldAction{Field: field, Kind: InitDefault})
			continue
		}
		fieldMan := s.structOf(field.Type)
		if fieldMan == nil {
			continue
		}
		ctor, err := s.m.Functions.Match(body, CtorName, fieldMan.Type, nil, nil, false, nil)
		if err != nil {
			return err
		}
		if ctor == nil {
			if s.hasUserCtor(body, fieldMan) {
				res.NotDefaultConstructible = true
				return nil
			}
			continue
		}
		needed = true
		preamble = append(preamble, FieldAction{Field: field, Kind: CallCtor, Callee: ctor})
	}
	if !needed {
		return nil
	}
	fn, err := s.insert(body, man, CtorName, nil)
	if err != nil {
		return err
	}
	res.Ctor = &Method{Kind: DefaultCtor, Function: fn, Preamble: preamble}
	return nil
}

func (s *Synthesizer) synthesizeCopyCtor(body *table.Scope, man *manager.StructManifestation, fields []*symbols.Symbol, res *Result) error {
	needed := false
	preamble := make([]FieldAction, 0, len(fields))
	for _, field := range fields {
		if isHeapOwned(field.Type) {
			needed = true
			preamble = append(preamble, FieldAction{Field: field, Kind: DuplicateHeap})
			continue
		}
		if fieldMan := s.structOf(field.Type); fieldMan != nil {
			copyCtor, err := s.m.Functions.Match(body, CtorName, fieldMan.Type, []*types.Type{fieldMan.Type.ToConstRef()}, nil, false, nil)
			if err != nil {
				return err
			}
			if copyCtor != nil {
				needed = true
				preamble = append(preamble, FieldAction{Field: field, Kind: CallCopyCtor, Callee: copyCtor})
				continue
			}
		}
		preamble = append(preamble, FieldAction{Field: field, Kind: CopyValue})
	}
	if !needed {
		return nil
	}
	fn, err := s.insert(body, man, CtorName, []manager.Param{{Name: "original", Type: man.Type.ToConstRef()}})
	if err != nil {
		return err
	}
	res.CopyCtor = &Method{Kind: CopyCtor, Function: fn, Preamble: preamble}
	return nil
}

func (s *Synthesizer) synthesizeDtor(body *table.Scope, man *manager.StructManifestation, fields []*symbols.Symbol, res *Result) error {
	var preamble []FieldAction
	for i := len(fields) - 1; i >= 0; i-- {
		field := fields[i]
		if isHeapOwned(field.Type) {
			preamble = append(preamble, FieldAction{Field: field, Kind: Dealloc, Routine: DeallocRoutine})
			continue
		}
		fieldMan := s.structOf(field.Type)
		if fieldMan == nil {
			continue
		}
		dtor, err := s.m.Functions.Match(body, DtorName, fieldMan.Type, nil, nil, false, nil)
		if err != nil {
			return err
		}
		if dtor != nil {
			preamble = append(preamble, FieldAction{Field: field, Kind: CallDtor, Callee: dtor})
		}
	}
	if len(preamble) == 0 && !man.HasVtable() {
		return nil
	}
	fn, err := s.insert(body, man, DtorName, nil)
	if err != nil {
		return err
	}
	res.Dtor = &Method{Kind: Dtor, Function: fn, Preamble: preamble}
	return nil
}

func (s *Synthesizer) insert(body *table.Scope, man *manager.StructManifestation, name string, params []manager.Param) (*manager.FunctionManifestation, error) {
	global := body.ParentScope()
	fn, err := s.m.Functions.Insert(global, &manager.Function{
		Name:       name,
		File:       man.File(),
		ThisType:   man.Type,
		Params:     params,
		IsImplicit: true,
	})
	if err != nil {
		return nil, err
	}
	return fn.Manifestations[0], nil
}

// hasUserCtor reports whether man declares a constructor other than a copy constructor
func (s *Synthesizer) hasUserCtor(body *table.Scope, man *manager.StructManifestation) bool {
	for _, ctor := range s.m.Functions.Lookup(body, CtorName, man.Type) {
		if ctor.IsImplicit {
			continue
		}
		if len(ctor.Params) == 1 && ctor.Params[0].Type.IsRef() && ctor.Params[0].Type.Contained().Matches(man.Type, true, false, false) {
			continue
		}
		return true
	}
	return false
}

// IsTriviallyDestructible reports whether destroying a value of t needs no call
func (s *Synthesizer) IsTriviallyDestructible(t *types.Type) bool {
	fieldMan := s.structOf(t)
	if fieldMan == nil {
		return true
	}
	res, err := s.Synthesize(fieldMan)
	if err != nil {
		return true
	}
	return res.Dtor == nil && res.UserDtor == nil
}

func hasDefault(field *symbols.Symbol) bool {
	decl, ok := field.Decl.(*ast.Field)
	return ok && decl.Default != nil
}

func isHeapOwned(t *types.Type) bool {
	return t != nil && t.IsPtr() && t.IsHeap()
}

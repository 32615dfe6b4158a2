// Package manager owns the function, struct and interface declarations of a
// compilation together with their manifestations, one per concrete
// instantiation, and resolves calls and type references against them.
package manager

import (
	"errors"

	"github.com/spicelang/spice-sub000/internal/ids"
	"github.com/spicelang/spice-sub000/internal/semantics/matcher"
	"github.com/spicelang/spice-sub000/internal/semantics/table"
	"github.com/spicelang/spice-sub000/internal/types"
)

var (
	ErrFunctionNotFound  = errors.New("could not be found")
	ErrAmbiguousCall     = errors.New("call is ambiguous")
	ErrDeclaredTwice     = errors.New("declared twice")
	ErrStructNotFound    = errors.New("unknown struct")
	ErrInterfaceNotFound = errors.New("unknown interface")
	ErrTemplateArgCount  = errors.New("wrong number of template types")
	ErrGenericCondition  = errors.New("does not satisfy the conditions of its generic type")
)

type ManifestationKind int

const (
	FunctionManifestationKind ManifestationKind = iota
	StructManifestationKind
	InterfaceManifestationKind
)

// Manifestation is one concrete instantiation of a function, struct or interface
type Manifestation interface {
	Kind() ManifestationKind
	Index() int
	File() string
	Mapping() matcher.TypeMapping
	BodyScope() ids.ScopeID
	IsChecked() bool
	MarkChecked()
	String() string
}

// Listener is told about every manifestation created after registration
type Listener func(m Manifestation)

// Managers bundles the three managers, which resolve each other's types
type Managers struct {
	Functions  *FunctionManager
	Structs    *StructManager
	Interfaces *InterfaceManager

	arena    *table.Arena
	listener Listener
}

func New(arena *table.Arena) *Managers {
	m := &Managers{arena: arena}
	m.Functions = &FunctionManager{m: m, registry: make(map[ids.ScopeID]map[string][]*Function)}
	m.Structs = &StructManager{m: m, registry: make(map[ids.ScopeID]map[string]*Struct), byBody: make(map[ids.ScopeID]*StructManifestation)}
	m.Interfaces = &InterfaceManager{m: m, registry: make(map[ids.ScopeID]map[string]*Interface)}
	return m
}

// OnNewManifestation installs the listener for manifestations discovered while checking
func (m *Managers) OnNewManifestation(l Listener) {
	m.listener = l
}

func (m *Managers) notify(man Manifestation) {
	if m.listener != nil {
		m.listener(man)
	}
}

// Arena returns the scope arena the managers clone bodies in
func (m *Managers) Arena() *table.Arena {
	return m.arena
}

// Bind points a substituted struct or interface type at the body of its manifestation
func (m *Managers) Bind(t *types.Type) *types.Type {
	switch t.Kind() {
	case types.TYPE_STRUCT:
		if decl := m.Structs.declOf(t); decl != nil {
			if man, err := m.Structs.manifest(decl, t.TemplateArgs()); err == nil {
				return man.Type.WithQuals(t.Qualifiers())
			}
		}
	case types.TYPE_INTERFACE:
		if decl := m.Interfaces.declOf(t); decl != nil {
			if man, err := m.Interfaces.manifest(decl, t.TemplateArgs()); err == nil {
				return man.Type.WithQuals(t.Qualifiers())
			}
		}
	}
	return t
}

// AllManifestations lists every manifestation in creation order per kind
func (m *Managers) AllManifestations() []Manifestation {
	var result []Manifestation
	for _, s := range m.Structs.ordered {
		for _, man := range s.Manifestations {
			result = append(result, man)
		}
	}
	for _, i := range m.Interfaces.ordered {
		for _, man := range i.Manifestations {
			result = append(result, man)
		}
	}
	for _, f := range m.Functions.ordered {
		for _, man := range f.Manifestations {
			result = append(result, man)
		}
	}
	return result
}

func resolverFor(generics []*types.GenericType) matcher.ResolverFn {
	return func(name string) *types.GenericType {
		for _, g := range generics {
			if g.Name() == name {
				return g
			}
		}
		return nil
	}
}

func checkConditions(generics []*types.GenericType, mapping matcher.TypeMapping) *types.GenericType {
	for _, g := range generics {
		if bound, ok := mapping[g.Name()]; ok && !bound.HasAnyGenericParts() && !g.CheckConditions(bound, true) {
			return g
		}
	}
	return nil
}

func scopeChain(s *table.Scope) []*table.Scope {
	var chain []*table.Scope
	for cur := s; cur != nil; cur = cur.ParentScope() {
		chain = append(chain, cur)
	}
	return chain
}

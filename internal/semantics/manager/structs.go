package manager

import (
	"fmt"

	"github.com/spicelang/spice-sub000/internal/frontend/ast"
	"github.com/spicelang/spice-sub000/internal/ids"
	"github.com/spicelang/spice-sub000/internal/semantics/matcher"
	"github.com/spicelang/spice-sub000/internal/semantics/symbols"
	"github.com/spicelang/spice-sub000/internal/semantics/table"
	"github.com/spicelang/spice-sub000/internal/types"
)

// Struct is a struct declaration. Its base body scope holds the fields with
// their declared, possibly generic, types.
type Struct struct {
	Name          string
	File          string
	Quals         types.Qualifiers
	TemplateTypes []*types.GenericType
	Interfaces    []*types.Type
	Decl          *ast.StructDef
	DeclScope     ids.ScopeID
	BaseScopeName string
	BaseScope     ids.ScopeID
	BaseType      *types.Type

	Manifestations []*StructManifestation
	byKey          map[string]*StructManifestation
	templates      map[string]*StructManifestation
	fieldsReady    bool
}

func (s *Struct) IsGeneric() bool { return len(s.TemplateTypes) > 0 }

// StructManifestation is one concrete struct, e.g. Pair<int>
type StructManifestation struct {
	Decl       *Struct
	Type       *types.Type
	Interfaces []*types.Type

	index   int
	mapping matcher.TypeMapping
	body    ids.ScopeID
	checked bool
}

func (s *StructManifestation) Kind() ManifestationKind      { return StructManifestationKind }
func (s *StructManifestation) Index() int                   { return s.index }
func (s *StructManifestation) File() string                 { return s.Decl.File }
func (s *StructManifestation) Mapping() matcher.TypeMapping { return s.mapping }
func (s *StructManifestation) BodyScope() ids.ScopeID       { return s.body }
func (s *StructManifestation) IsChecked() bool              { return s.checked }
func (s *StructManifestation) MarkChecked()                 { s.checked = true }
func (s *StructManifestation) String() string               { return "struct " + s.Type.String() }

// IsTemplate reports whether this is a placeholder for a not yet concrete instantiation
func (s *StructManifestation) IsTemplate() bool { return s.index < 0 }

// HasVtable reports whether instances dispatch interface methods dynamically
func (s *StructManifestation) HasVtable() bool { return len(s.Interfaces) > 0 }

type StructManager struct {
	m        *Managers
	registry map[ids.ScopeID]map[string]*Struct
	byBody   map[ids.ScopeID]*StructManifestation
	decls    map[ids.ScopeID]*Struct
	ordered  []*Struct
}

// Insert registers a struct declared in scope. A non-generic struct gets its
// single manifestation right away.
func (sm *StructManager) Insert(scope *table.Scope, s *Struct) (*Struct, error) {
	if sm.registry[scope.ID] == nil {
		sm.registry[scope.ID] = make(map[string]*Struct)
	}
	if _, exists := sm.registry[scope.ID][s.Name]; exists {
		return nil, fmt.Errorf("struct %q %w", s.Name, ErrDeclaredTwice)
	}
	if sm.decls == nil {
		sm.decls = make(map[ids.ScopeID]*Struct)
	}

	s.DeclScope = scope.ID
	s.byKey = make(map[string]*StructManifestation)
	s.templates = make(map[string]*StructManifestation)
	generics := make([]*types.Type, len(s.TemplateTypes))
	for i, g := range s.TemplateTypes {
		generics[i] = g.Type
	}
	s.BaseType = types.NewStruct(s.Name, generics, s.BaseScope)
	sm.registry[scope.ID][s.Name] = s
	sm.decls[s.BaseScope] = s
	sm.ordered = append(sm.ordered, s)

	if !s.IsGeneric() {
		man := &StructManifestation{Decl: s, Type: s.BaseType, index: 0, mapping: matcher.TypeMapping{}, body: s.BaseScope}
		s.Manifestations = append(s.Manifestations, man)
		s.byKey[""] = man
		sm.byBody[s.BaseScope] = man
		if err := scope.RenameChildScope(s.BaseScopeName, s.BaseScopeName+"<>"); err != nil {
			return nil, err
		}
		s.BaseScopeName += "<>"
	}
	return s, nil
}

// SetInterfaces records the declared interfaces once they are resolved
func (sm *StructManager) SetInterfaces(s *Struct, interfaces []*types.Type) {
	s.Interfaces = interfaces
	for _, man := range s.Manifestations {
		sm.bindInterfaces(man)
	}
}

// FieldsPrepared is called once the fields of s are in its base scope. Manifestations
// created before that point receive their fields now.
func (sm *StructManager) FieldsPrepared(s *Struct) {
	s.fieldsReady = true
	for _, man := range s.Manifestations {
		sm.populateFields(man)
	}
}

// Lookup finds a struct declaration visible from scope
func (sm *StructManager) Lookup(scope *table.Scope, name string) *Struct {
	for _, s := range scopeChain(scope) {
		if decl, ok := sm.registry[s.ID][name]; ok {
			return decl
		}
	}
	return nil
}

// Match resolves Name<templateTypes> visible from scope to its manifestation,
// creating the manifestation on first use
func (sm *StructManager) Match(scope *table.Scope, name string, templateTypes []*types.Type, node ast.Node) (*StructManifestation, error) {
	decl := sm.Lookup(scope, name)
	if decl == nil {
		return nil, fmt.Errorf("%q: %w", name, ErrStructNotFound)
	}
	return sm.manifest(decl, templateTypes)
}

// Get returns the manifestation a struct type belongs to
func (sm *StructManager) Get(t *types.Type) *StructManifestation {
	t = t.BaseType()
	if !t.Is(types.TYPE_STRUCT) {
		return nil
	}
	if man, ok := sm.byBody[t.BodyScope()]; ok && man.Type.Matches(t, true, false, false) {
		return man
	}
	if decl := sm.declOf(t); decl != nil {
		if man, err := sm.manifest(decl, t.TemplateArgs()); err == nil {
			return man
		}
	}
	return nil
}

func (sm *StructManager) declOf(t *types.Type) *Struct {
	if man, ok := sm.byBody[t.BodyScope()]; ok {
		return man.Decl
	}
	return sm.decls[t.BodyScope()]
}

func (sm *StructManager) manifest(decl *Struct, args []*types.Type) (*StructManifestation, error) {
	if len(args) != len(decl.TemplateTypes) {
		return nil, fmt.Errorf("struct %s expects %d, got %d: %w", decl.Name, len(decl.TemplateTypes), len(args), ErrTemplateArgCount)
	}
	if !decl.IsGeneric() {
		return decl.Manifestations[0], nil
	}

	mapping := matcher.TypeMapping{}
	generic := false
	for i, g := range decl.TemplateTypes {
		mapping[g.Name()] = args[i]
		generic = generic || args[i].HasAnyGenericParts()
	}
	key := mapping.Key()
	if generic {
		return sm.template(decl, args, key), nil
	}
	if g := checkConditions(decl.TemplateTypes, mapping); g != nil {
		return nil, fmt.Errorf("%s in %s<%s>: %w", mapping[g.Name()], decl.Name, types.TypesString(args), ErrGenericCondition)
	}
	if man, ok := decl.byKey[key]; ok {
		return man, nil
	}

	parent := sm.m.arena.Get(decl.DeclScope)
	body, err := parent.CopyChildScope(decl.BaseScopeName, decl.BaseScopeName+"<"+key+">")
	if err != nil {
		return nil, err
	}
	man := &StructManifestation{
		Decl:    decl,
		Type:    types.NewStruct(decl.Name, args, body.ID),
		index:   len(decl.Manifestations),
		mapping: mapping,
		body:    body.ID,
	}
	decl.Manifestations = append(decl.Manifestations, man)
	decl.byKey[key] = man
	sm.byBody[body.ID] = man

	for _, sym := range body.Symbols() {
		sym.Type = matcher.SubstantiateTypeWithTypeMapping(sym.Type, mapping, sm.m.Bind)
	}
	sm.bindInterfaces(man)
	sm.m.notify(man)
	return man, nil
}

func (sm *StructManager) template(decl *Struct, args []*types.Type, key string) *StructManifestation {
	if man, ok := decl.templates[key]; ok {
		return man
	}
	mapping := matcher.TypeMapping{}
	for i, g := range decl.TemplateTypes {
		mapping[g.Name()] = args[i]
	}
	man := &StructManifestation{
		Decl:    decl,
		Type:    types.NewStruct(decl.Name, args, decl.BaseScope),
		index:   -1,
		mapping: mapping,
		body:    decl.BaseScope,
	}
	decl.templates[key] = man
	return man
}

func (sm *StructManager) populateFields(man *StructManifestation) {
	if man.body == man.Decl.BaseScope {
		return
	}
	base := sm.m.arena.Get(man.Decl.BaseScope)
	body := sm.m.arena.Get(man.body)
	for _, field := range base.Fields() {
		if body.LookupStrict(field.Name) != nil {
			continue
		}
		sym, err := body.Insert(field.Name, symbols.SymbolField, field.Decl)
		if err != nil {
			continue
		}
		sym.IsPublic = field.IsPublic
		sym.Type = matcher.SubstantiateTypeWithTypeMapping(field.Type, man.mapping, sm.m.Bind)
	}
}

func (sm *StructManager) bindInterfaces(man *StructManifestation) {
	man.Interfaces = man.Interfaces[:0]
	for _, iface := range man.Decl.Interfaces {
		man.Interfaces = append(man.Interfaces, matcher.SubstantiateTypeWithTypeMapping(iface, man.mapping, sm.m.Bind))
	}
	types.RegisterImplements(man.Type, man.Interfaces)
}

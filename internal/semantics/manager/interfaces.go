package manager

import (
	"fmt"

	"github.com/spicelang/spice-sub000/internal/frontend/ast"
	"github.com/spicelang/spice-sub000/internal/ids"
	"github.com/spicelang/spice-sub000/internal/semantics/matcher"
	"github.com/spicelang/spice-sub000/internal/semantics/table"
	"github.com/spicelang/spice-sub000/internal/types"
)

// Interface is an interface declaration. Its methods are virtual functions
// registered with the function manager under the interface body scope.
type Interface struct {
	Name          string
	File          string
	Quals         types.Qualifiers
	TemplateTypes []*types.GenericType
	Decl          *ast.InterfaceDef
	DeclScope     ids.ScopeID
	BaseScopeName string
	BaseScope     ids.ScopeID
	BaseType      *types.Type
	Methods       []*Function

	Manifestations []*InterfaceManifestation
	byKey          map[string]*InterfaceManifestation
	templates      map[string]*InterfaceManifestation
}

func (i *Interface) IsGeneric() bool { return len(i.TemplateTypes) > 0 }

// InterfaceManifestation is one concrete interface. All manifestations share
// the body scope of the declaration.
type InterfaceManifestation struct {
	Decl *Interface
	Type *types.Type

	index   int
	mapping matcher.TypeMapping
	checked bool
}

func (i *InterfaceManifestation) Kind() ManifestationKind      { return InterfaceManifestationKind }
func (i *InterfaceManifestation) Index() int                   { return i.index }
func (i *InterfaceManifestation) File() string                 { return i.Decl.File }
func (i *InterfaceManifestation) Mapping() matcher.TypeMapping { return i.mapping }
func (i *InterfaceManifestation) BodyScope() ids.ScopeID       { return i.Decl.BaseScope }
func (i *InterfaceManifestation) IsChecked() bool              { return i.checked }
func (i *InterfaceManifestation) MarkChecked()                 { i.checked = true }
func (i *InterfaceManifestation) String() string               { return "interface " + i.Type.String() }
func (i *InterfaceManifestation) IsTemplate() bool             { return i.index < 0 }

type InterfaceManager struct {
	m        *Managers
	registry map[ids.ScopeID]map[string]*Interface
	decls    map[ids.ScopeID]*Interface
	ordered  []*Interface
}

func (im *InterfaceManager) Insert(scope *table.Scope, i *Interface) (*Interface, error) {
	if im.registry[scope.ID] == nil {
		im.registry[scope.ID] = make(map[string]*Interface)
	}
	if _, exists := im.registry[scope.ID][i.Name]; exists {
		return nil, fmt.Errorf("interface %q %w", i.Name, ErrDeclaredTwice)
	}
	if im.decls == nil {
		im.decls = make(map[ids.ScopeID]*Interface)
	}

	i.DeclScope = scope.ID
	i.byKey = make(map[string]*InterfaceManifestation)
	i.templates = make(map[string]*InterfaceManifestation)
	generics := make([]*types.Type, len(i.TemplateTypes))
	for idx, g := range i.TemplateTypes {
		generics[idx] = g.Type
	}
	i.BaseType = types.NewInterface(i.Name, generics, i.BaseScope)
	im.registry[scope.ID][i.Name] = i
	im.decls[i.BaseScope] = i
	im.ordered = append(im.ordered, i)

	if !i.IsGeneric() {
		man := &InterfaceManifestation{Decl: i, Type: i.BaseType, mapping: matcher.TypeMapping{}}
		i.Manifestations = append(i.Manifestations, man)
		i.byKey[""] = man
		if err := scope.RenameChildScope(i.BaseScopeName, i.BaseScopeName+"<>"); err != nil {
			return nil, err
		}
		i.BaseScopeName += "<>"
	}
	return i, nil
}

// AddMethod registers a method signature of i as a virtual function. The
// vtable index is the position of the signature in the interface.
func (im *InterfaceManager) AddMethod(scope *table.Scope, i *Interface, f *Function) (*Function, error) {
	f.ThisType = i.BaseType
	f.IsVirtual = true
	f.VtableIndex = len(i.Methods)
	f.TemplateTypes = i.TemplateTypes
	if _, err := im.m.Functions.Insert(scope, f); err != nil {
		return nil, err
	}
	i.Methods = append(i.Methods, f)
	return f, nil
}

// MethodsOf returns the virtual methods of man with its type mapping applied
func (im *InterfaceManager) MethodsOf(man *InterfaceManifestation) ([]*FunctionManifestation, error) {
	result := make([]*FunctionManifestation, 0, len(man.Decl.Methods))
	for _, f := range man.Decl.Methods {
		fman, err := im.m.Functions.manifest(f, man.mapping)
		if err != nil {
			return nil, err
		}
		result = append(result, fman)
	}
	return result, nil
}

func (im *InterfaceManager) Lookup(scope *table.Scope, name string) *Interface {
	for _, s := range scopeChain(scope) {
		if decl, ok := im.registry[s.ID][name]; ok {
			return decl
		}
	}
	return nil
}

// Match resolves Name<templateTypes> visible from scope to its manifestation
func (im *InterfaceManager) Match(scope *table.Scope, name string, templateTypes []*types.Type, node ast.Node) (*InterfaceManifestation, error) {
	decl := im.Lookup(scope, name)
	if decl == nil {
		return nil, fmt.Errorf("%q: %w", name, ErrInterfaceNotFound)
	}
	return im.manifest(decl, templateTypes)
}

// Get returns the manifestation an interface type belongs to
func (im *InterfaceManager) Get(t *types.Type) *InterfaceManifestation {
	t = t.BaseType()
	decl := im.declOf(t)
	if decl == nil || !t.Is(types.TYPE_INTERFACE) {
		return nil
	}
	man, err := im.manifest(decl, t.TemplateArgs())
	if err != nil {
		return nil
	}
	return man
}

func (im *InterfaceManager) declOf(t *types.Type) *Interface {
	return im.decls[t.BodyScope()]
}

func (im *InterfaceManager) manifest(decl *Interface, args []*types.Type) (*InterfaceManifestation, error) {
	if len(args) != len(decl.TemplateTypes) {
		return nil, fmt.Errorf("interface %s expects %d, got %d: %w", decl.Name, len(decl.TemplateTypes), len(args), ErrTemplateArgCount)
	}
	if !decl.IsGeneric() {
		return decl.Manifestations[0], nil
	}

	mapping := matcher.TypeMapping{}
	generic := false
	for idx, g := range decl.TemplateTypes {
		mapping[g.Name()] = args[idx]
		generic = generic || args[idx].HasAnyGenericParts()
	}
	key := mapping.Key()
	if generic {
		if man, ok := decl.templates[key]; ok {
			return man, nil
		}
		man := &InterfaceManifestation{Decl: decl, Type: types.NewInterface(decl.Name, args, decl.BaseScope), index: -1, mapping: mapping}
		decl.templates[key] = man
		return man, nil
	}
	if g := checkConditions(decl.TemplateTypes, mapping); g != nil {
		return nil, fmt.Errorf("%s in %s<%s>: %w", mapping[g.Name()], decl.Name, types.TypesString(args), ErrGenericCondition)
	}
	if man, ok := decl.byKey[key]; ok {
		return man, nil
	}

	man := &InterfaceManifestation{
		Decl:    decl,
		Type:    types.NewInterface(decl.Name, args, decl.BaseScope),
		index:   len(decl.Manifestations),
		mapping: mapping,
	}
	decl.Manifestations = append(decl.Manifestations, man)
	decl.byKey[key] = man
	im.m.notify(man)
	return man, nil
}

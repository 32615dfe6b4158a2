package manager

import (
	"fmt"
	"strings"

	"github.com/spicelang/spice-sub000/internal/frontend/ast"
	"github.com/spicelang/spice-sub000/internal/ids"
	"github.com/spicelang/spice-sub000/internal/semantics/matcher"
	"github.com/spicelang/spice-sub000/internal/semantics/table"
	"github.com/spicelang/spice-sub000/internal/types"
)

// Match scores
const (
	scoreExact      = 3
	scoreGeneric    = 2
	scoreConversion = 1
)

// Param is a declared parameter. Parameters with defaults may be omitted by callers.
type Param struct {
	Name       string
	Type       *types.Type
	HasDefault bool
}

// Function is a function, procedure or method declaration
type Function struct {
	Name          string
	File          string
	Quals         types.Qualifiers
	ThisType      *types.Type // receiver for methods, nil otherwise
	ReturnType    *types.Type // nil for procedures
	Params        []Param
	TemplateTypes []*types.GenericType
	Decl          ast.Node // nil for synthesized functions

	// The body scope lives in DeclScope under BaseScopeName. Virtual
	// interface methods have no body.
	DeclScope     ids.ScopeID
	BaseScopeName string
	BaseScope     ids.ScopeID

	IsVirtual   bool
	VtableIndex int
	IsImplicit  bool

	Manifestations []*FunctionManifestation
	byKey          map[string]*FunctionManifestation
}

func (f *Function) IsProcedure() bool { return f.ReturnType == nil }

func (f *Function) IsGeneric() bool {
	if len(f.TemplateTypes) > 0 {
		return true
	}
	return f.ThisType != nil && f.ThisType.HasAnyGenericParts()
}

func (f *Function) paramTypes() []*types.Type {
	result := make([]*types.Type, len(f.Params))
	for i, p := range f.Params {
		result[i] = p.Type
	}
	return result
}

func (f *Function) requiredParams() int {
	n := len(f.Params)
	for n > 0 && f.Params[n-1].HasDefault {
		n--
	}
	return n
}

// FunctionManifestation is one concrete instantiation of a function
type FunctionManifestation struct {
	Decl       *Function
	ThisType   *types.Type
	ReturnType *types.Type
	ParamTypes []*types.Type

	index   int
	mapping matcher.TypeMapping
	body    ids.ScopeID
	checked bool
}

func (f *FunctionManifestation) Kind() ManifestationKind      { return FunctionManifestationKind }
func (f *FunctionManifestation) Index() int                   { return f.index }
func (f *FunctionManifestation) File() string                 { return f.Decl.File }
func (f *FunctionManifestation) Mapping() matcher.TypeMapping { return f.mapping }
func (f *FunctionManifestation) BodyScope() ids.ScopeID       { return f.body }
func (f *FunctionManifestation) IsChecked() bool              { return f.checked }
func (f *FunctionManifestation) MarkChecked()                 { f.checked = true }

// Type returns the function or procedure type of this manifestation
func (f *FunctionManifestation) Type() *types.Type {
	if f.ReturnType == nil {
		return types.NewProcedure(f.ParamTypes)
	}
	return types.NewFunction(f.ReturnType, f.ParamTypes)
}

// Signature renders the call signature, e.g. Pair<int>.ctor(int,int)
func (f *FunctionManifestation) Signature() string {
	return signature(f.ThisType, f.Decl.Name, f.ParamTypes)
}

func (f *FunctionManifestation) String() string {
	if f.ReturnType == nil {
		return "p " + f.Signature()
	}
	return "f<" + f.ReturnType.String() + "> " + f.Signature()
}

func signature(this *types.Type, name string, params []*types.Type) string {
	var b strings.Builder
	if this != nil {
		b.WriteString(this.String())
		b.WriteString(".")
	}
	b.WriteString(name)
	b.WriteString("(")
	b.WriteString(types.TypesString(params))
	b.WriteString(")")
	return b.String()
}

type FunctionManager struct {
	m        *Managers
	registry map[ids.ScopeID]map[string][]*Function
	ordered  []*Function
}

// Insert registers a declaration. Free functions are registered in scope,
// methods under the body scope of their receiver declaration. A non-generic
// function gets its single manifestation right away and its body scope is
// renamed to name<>.
func (fm *FunctionManager) Insert(scope *table.Scope, f *Function) (*Function, error) {
	key := scope.ID
	if f.ThisType != nil {
		recv := fm.receiverScope(f.ThisType)
		if !recv.IsValid() {
			return nil, fmt.Errorf("receiver %s: %w", f.ThisType, ErrStructNotFound)
		}
		key = recv
	}
	if fm.registry[key] == nil {
		fm.registry[key] = make(map[string][]*Function)
	}
	for _, existing := range fm.registry[key][f.Name] {
		if sameReceiver(existing.ThisType, f.ThisType) && matchList(existing.paramTypes(), f.paramTypes()) {
			return nil, fmt.Errorf("%s %w", signature(f.ThisType, f.Name, f.paramTypes()), ErrDeclaredTwice)
		}
	}

	f.DeclScope = scope.ID
	f.byKey = make(map[string]*FunctionManifestation)
	fm.registry[key][f.Name] = append(fm.registry[key][f.Name], f)
	fm.ordered = append(fm.ordered, f)

	if f.IsGeneric() {
		return f, nil
	}
	man := &FunctionManifestation{
		Decl:       f,
		ThisType:   f.ThisType,
		ReturnType: f.ReturnType,
		ParamTypes: f.paramTypes(),
		mapping:    matcher.TypeMapping{},
		body:       f.BaseScope,
	}
	f.Manifestations = append(f.Manifestations, man)
	f.byKey[""] = man
	if f.BaseScopeName != "" {
		if err := scope.RenameChildScope(f.BaseScopeName, f.BaseScopeName+"<>"); err != nil {
			return nil, err
		}
		f.BaseScopeName += "<>"
	}
	return f, nil
}

// Lookup returns the declarations called name, for methods those of the receiver
func (fm *FunctionManager) Lookup(scope *table.Scope, name string, thisType *types.Type) []*Function {
	if thisType != nil {
		return fm.registry[fm.receiverScope(thisType)][name]
	}
	var result []*Function
	for _, s := range scopeChain(scope) {
		result = append(result, fm.registry[s.ID][name]...)
	}
	return result
}

// Methods returns every method declared on the receiver type in declaration order
func (fm *FunctionManager) Methods(thisType *types.Type) []*Function {
	recv := fm.receiverScope(thisType)
	var result []*Function
	for _, f := range fm.ordered {
		if f.ThisType != nil && fm.receiverScope(f.ThisType) == recv {
			result = append(result, f)
		}
	}
	return result
}

func (fm *FunctionManager) receiverScope(t *types.Type) ids.ScopeID {
	t = t.AutoDeref()
	switch t.Kind() {
	case types.TYPE_STRUCT:
		if decl := fm.m.Structs.declOf(t); decl != nil {
			return decl.BaseScope
		}
	case types.TYPE_INTERFACE:
		if decl := fm.m.Interfaces.declOf(t); decl != nil {
			return decl.BaseScope
		}
	}
	return ids.NoScope
}

type candidate struct {
	fn      *Function
	mapping matcher.TypeMapping
	score   int
}

// Match resolves a call of name with the given receiver and argument types.
// Every visible candidate is scored per argument: an exact match scores
// highest, a binding of a generic parameter next, an implicit conversion
// lowest. The best candidate wins and is manifested for its type mapping.
// When mustBePresent is false a missing function yields nil without error.
func (fm *FunctionManager) Match(scope *table.Scope, name string, thisType *types.Type, args, explicitTemplateTypes []*types.Type, mustBePresent bool, node ast.Node) (*FunctionManifestation, error) {
	if thisType != nil {
		thisType = thisType.AutoDeref()
	}
	unsafe := scope.IsInUnsafe()

	var best []candidate
	for _, f := range fm.Lookup(scope, name, thisType) {
		c, ok := fm.tryMatch(f, thisType, args, explicitTemplateTypes, unsafe)
		if !ok {
			continue
		}
		switch {
		case len(best) == 0 || c.score > best[0].score:
			best = []candidate{c}
		case c.score == best[0].score:
			best = append(best, c)
		}
	}

	sig := signature(thisType, name, args)
	switch len(best) {
	case 0:
		if !mustBePresent {
			return nil, nil
		}
		return nil, fmt.Errorf("function %s %w", sig, ErrFunctionNotFound)
	case 1:
		return fm.manifest(best[0].fn, best[0].mapping)
	}
	names := make([]string, len(best))
	for i, c := range best {
		names[i] = signature(c.fn.ThisType, c.fn.Name, c.fn.paramTypes())
	}
	return nil, fmt.Errorf("%s matches %s: %w", sig, strings.Join(names, " and "), ErrAmbiguousCall)
}

func (fm *FunctionManager) tryMatch(f *Function, thisType *types.Type, args, explicit []*types.Type, unsafe bool) (candidate, bool) {
	if len(args) < f.requiredParams() || len(args) > len(f.Params) {
		return candidate{}, false
	}
	if len(explicit) > len(f.TemplateTypes) {
		return candidate{}, false
	}

	mapping := matcher.TypeMapping{}
	for i, t := range explicit {
		mapping[f.TemplateTypes[i].Name()] = t
	}
	resolver := resolverFor(f.TemplateTypes)

	if (f.ThisType == nil) != (thisType == nil) {
		return candidate{}, false
	}
	if f.ThisType != nil && !matcher.MatchRequestedToCandidateType(f.ThisType, thisType, mapping, resolver, false) {
		return candidate{}, false
	}

	score := 0
	for i, arg := range args {
		param := f.Params[i].Type
		if param.HasAnyGenericParts() {
			param = matcher.SubstantiateTypeWithTypeMapping(param, mapping, nil)
		}
		if param.HasAnyGenericParts() {
			if !matcher.MatchRequestedToCandidateType(param, arg, mapping, resolver, false) {
				return candidate{}, false
			}
			score += scoreGeneric
			continue
		}
		if _, ok := ClassifyConversion(param, arg, unsafe); !ok {
			return candidate{}, false
		}
		if isExact(param, arg) {
			score += scoreExact
		} else {
			score += scoreConversion
		}
	}

	for _, g := range f.TemplateTypes {
		if _, ok := mapping[g.Name()]; !ok {
			return candidate{}, false
		}
	}
	if checkConditions(f.TemplateTypes, mapping) != nil {
		return candidate{}, false
	}
	return candidate{fn: f, mapping: mapping, score: score}, true
}

func isExact(param, arg *types.Type) bool {
	p, a := param.RemoveRef(), arg.RemoveRef()
	return p.Matches(a, true, p.IsArray() && p.ArraySize() == 0, false)
}

// ClassifyConversion decides whether a value of type arg can be passed where
// param is expected and which implicit conversion that takes. A pointer of a
// different pointee type is only accepted inside unsafe code.
func ClassifyConversion(param, arg *types.Type, unsafe bool) (ast.Conversion, bool) {
	if arg.IsUnresolved() || param.IsUnresolved() {
		return ast.ConvNone, false
	}
	p, a := param.RemoveRef(), arg.RemoveRef()

	if isExact(p, a) {
		if param.IsRef() && param.Contained().IsConst() && !arg.IsRef() {
			return ast.ConvToConstRef, true
		}
		return ast.ConvNone, true
	}
	switch {
	case types.CanWiden(a, p):
		return ast.ConvWiden, true
	case p.IsPtr() && a.IsArray() && p.Contained().Matches(a.Contained(), true, true, false):
		return ast.ConvArrayToPtr, true
	case p.Is(types.TYPE_STRING) && a.IsCharArray():
		return ast.ConvCharArrayToString, true
	case p.Matches(a, true, false, true):
		return ast.ConvToInterface, true
	case unsafe && p.IsPtr() && a.IsPtr():
		return ast.ConvNone, true
	}
	return ast.ConvNone, false
}

// Manifest returns the manifestation of f for mapping, creating it when new
func (fm *FunctionManager) Manifest(f *Function, mapping matcher.TypeMapping) (*FunctionManifestation, error) {
	return fm.manifest(f, mapping)
}

func (fm *FunctionManager) manifest(f *Function, mapping matcher.TypeMapping) (*FunctionManifestation, error) {
	if !f.IsGeneric() {
		return f.Manifestations[0], nil
	}
	key := mapping.Key()
	if man, ok := f.byKey[key]; ok {
		return man, nil
	}

	man := &FunctionManifestation{
		Decl:       f,
		ParamTypes: matcher.SubstantiateTypesWithTypeMapping(f.paramTypes(), mapping, fm.m.Bind),
		index:      len(f.Manifestations),
		mapping:    mapping,
	}
	if f.ThisType != nil {
		man.ThisType = matcher.SubstantiateTypeWithTypeMapping(f.ThisType, mapping, fm.m.Bind)
	}
	if f.ReturnType != nil {
		man.ReturnType = matcher.SubstantiateTypeWithTypeMapping(f.ReturnType, mapping, fm.m.Bind)
	}

	if f.BaseScopeName != "" {
		parent := fm.m.arena.Get(f.DeclScope)
		body, err := parent.CopyChildScope(f.BaseScopeName, f.BaseScopeName+"<"+key+">")
		if err != nil {
			return nil, err
		}
		for _, sym := range body.Symbols() {
			if sym.Type != nil {
				sym.Type = matcher.SubstantiateTypeWithTypeMapping(sym.Type, mapping, fm.m.Bind)
			}
		}
		man.body = body.ID
	}

	f.Manifestations = append(f.Manifestations, man)
	f.byKey[key] = man
	fm.m.notify(man)
	return man, nil
}

func matchList(a, b []*types.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Matches(b[i], true, false, false) {
			return false
		}
	}
	return true
}

func sameReceiver(a, b *types.Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Matches(b, true, false, false)
}

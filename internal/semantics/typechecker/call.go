package typechecker

import (
	"errors"
	"fmt"

	"github.com/spicelang/spice-sub000/internal/diagnostics"
	"github.com/spicelang/spice-sub000/internal/frontend/ast"
	"github.com/spicelang/spice-sub000/internal/semantics/manager"
	"github.com/spicelang/spice-sub000/internal/semantics/matcher"
	"github.com/spicelang/spice-sub000/internal/semantics/symbols"
	"github.com/spicelang/spice-sub000/internal/semantics/synth"
	"github.com/spicelang/spice-sub000/internal/semantics/table"
	"github.com/spicelang/spice-sub000/internal/source"
	"github.com/spicelang/spice-sub000/internal/types"
	str "github.com/spicelang/spice-sub000/internal/utils/strings"
)

// checkCall resolves a call to a function, method, constructor or function pointer
func (c *Checker) checkCall(n *ast.CallExpr) *types.Type {
	switch fun := n.Fun.(type) {
	case *ast.IdentifierExpr:
		return c.checkIdentCall(n, fun)
	case *ast.SelectorExpr:
		return c.checkSelectorCall(n, fun)
	}
	return c.checkFctPtrCall(n, c.checkExpr(n.Fun, nil))
}

func (c *Checker) checkIdentCall(n *ast.CallExpr, fun *ast.IdentifierExpr) *types.Type {
	sym := c.scope.Lookup(fun.Name)
	if sym != nil && sym.Kind == symbols.SymbolType {
		sym.Used = true
		if c.ctx.Managers.Structs.Lookup(c.scope, fun.Name) != nil {
			return c.checkCtorCall(n, c.scope, fun.Name)
		}
		c.checkExprs(n.Args)
		c.softError(diagnostics.NewError(fmt.Sprintf("type '%s' cannot be called", fun.Name)).
			WithCode(diagnostics.ErrNotCallable).
			WithPrimaryLabel(fun.Loc(), "not a struct"))
		return types.TypeUnresolved
	}
	if sym != nil && sym.IsValue() {
		return c.checkFctPtrCall(n, c.checkExpr(fun, nil))
	}

	explicit := c.resolveTypes(n.TemplateTypes)
	argTypes := c.checkExprs(n.Args)
	if anyUnresolved(explicit) || anyUnresolved(argTypes) {
		return types.TypeUnresolved
	}
	man, err := c.ctx.Managers.Functions.Match(c.scope, fun.Name, nil, argTypes, explicit, true, n)
	if err != nil {
		c.callError(err, n.Loc())
		return types.TypeUnresolved
	}
	return c.bindCall(n, man, ast.CallFunction, argTypes)
}

func (c *Checker) checkSelectorCall(n *ast.CallExpr, fun *ast.SelectorExpr) *types.Type {
	if id, ok := fun.X.(*ast.IdentifierExpr); ok {
		if sym := c.scope.Lookup(id.Name); sym != nil && sym.Kind == symbols.SymbolImport {
			return c.checkImportedCall(n, fun, id, sym)
		}
	}

	xt := c.checkExpr(fun.X, nil)
	if xt.IsUnresolved() {
		c.checkExprs(n.Args)
		return xt
	}
	base := xt.AutoDeref()
	if !base.IsOneOf(types.TYPE_STRUCT, types.TYPE_INTERFACE) ||
		len(c.ctx.Managers.Functions.Lookup(nil, fun.Field, base)) == 0 {
		// a field holding a function pointer
		ft := c.fieldAccess(fun, xt)
		fun.Result(c.manIdx).Type = ft
		return c.checkFctPtrCall(n, ft)
	}

	explicit := c.resolveTypes(n.TemplateTypes)
	argTypes := c.checkExprs(n.Args)
	if anyUnresolved(explicit) || anyUnresolved(argTypes) {
		return types.TypeUnresolved
	}
	man, err := c.ctx.Managers.Functions.Match(c.scope, fun.Field, base, argTypes, explicit, true, n)
	if err != nil {
		c.callError(err, n.Loc())
		return types.TypeUnresolved
	}
	if !man.Decl.Quals.Has(types.QualPublic) && man.File() != c.mod.FilePath {
		c.softError(diagnostics.NewError(fmt.Sprintf("method %s is not public", man.Signature())).
			WithCode(diagnostics.ErrSymbolNotVisible).
			WithPrimaryLabel(fun.Loc(), "not visible here"))
	}
	fun.Result(c.manIdx).Type = man.Type()
	return c.bindCall(n, man, ast.CallMethod, argTypes)
}

// checkImportedCall resolves alias.name(args) against the registry of an imported module
func (c *Checker) checkImportedCall(n *ast.CallExpr, fun *ast.SelectorExpr, id *ast.IdentifierExpr, sym *symbols.Symbol) *types.Type {
	sym.Used = true
	c.markImportUsed(id.Name)
	idRes := id.Result(c.manIdx)
	idRes.Entry = sym
	idRes.Type = sym.Type

	dep := c.importedModule(id.Name)
	if dep == nil {
		c.checkExprs(n.Args)
		return types.TypeUnresolved
	}
	entry := c.exportedEntry(dep, id.Name, fun.Field, fun.Loc())
	if entry == nil {
		c.checkExprs(n.Args)
		return types.TypeUnresolved
	}
	if entry.Symbol != nil {
		switch {
		case entry.Symbol.Kind == symbols.SymbolType && c.ctx.Managers.Structs.Lookup(dep.Scope, fun.Field) != nil:
			return c.checkCtorCall(n, dep.Scope, fun.Field)
		case entry.Symbol.IsValue():
			entry.Symbol.Used = true
			fun.Result(c.manIdx).Entry = entry.Symbol
			return c.checkFctPtrCall(n, entry.Symbol.Type)
		}
	}

	explicit := c.resolveTypes(n.TemplateTypes)
	argTypes := c.checkExprs(n.Args)
	if anyUnresolved(explicit) || anyUnresolved(argTypes) {
		return types.TypeUnresolved
	}
	man, err := c.ctx.Managers.Functions.Match(dep.Scope, fun.Field, nil, argTypes, explicit, true, n)
	if err != nil {
		c.callError(err, n.Loc())
		return types.TypeUnresolved
	}
	// a private name was already reported by exportedEntry
	if entry.IsPublic && !man.Decl.Quals.Has(types.QualPublic) {
		c.softError(diagnostics.NewError(fmt.Sprintf("function %s is not exported by module '%s'", man.Signature(), id.Name)).
			WithCode(diagnostics.ErrSymbolNotExported).
			WithPrimaryLabel(fun.Loc(), "not public"))
	}
	return c.bindCall(n, man, ast.CallFunction, argTypes)
}

// checkCtorCall resolves Name(args) and Name<T>(args). Template types that
// are not spelled out are inferred from the constructor parameters.
func (c *Checker) checkCtorCall(n *ast.CallExpr, scope *table.Scope, name string) *types.Type {
	decl := c.ctx.Managers.Structs.Lookup(scope, name)
	argTypes := c.checkExprs(n.Args)
	if anyUnresolved(argTypes) {
		return types.TypeUnresolved
	}

	var man *manager.StructManifestation
	if decl.IsGeneric() && len(n.TemplateTypes) == 0 {
		if man = c.inferCtor(decl, scope, n, argTypes); man == nil {
			return types.TypeUnresolved
		}
	} else {
		args := c.resolveTypes(n.TemplateTypes)
		if anyUnresolved(args) {
			return types.TypeUnresolved
		}
		m, err := c.ctx.Managers.Structs.Match(scope, name, args, n)
		if err != nil {
			c.templateError(err, n.Loc())
			return types.TypeUnresolved
		}
		man = m
	}

	special, err := c.ctx.Synth.Synthesize(man)
	if err != nil {
		c.callError(err, n.Loc())
		return types.TypeUnresolved
	}
	body := c.ctx.Arena.Get(man.BodyScope())
	ctor, err := c.ctx.Managers.Functions.Match(body, synth.CtorName, man.Type, argTypes, nil, false, n)
	if err != nil {
		c.callError(err, n.Loc())
		return man.Type
	}
	res := n.Result(c.manIdx)
	if ctor == nil {
		if len(argTypes) > 0 {
			c.softError(diagnostics.NewError(fmt.Sprintf("struct %s has no constructor accepting (%s)", man.Type, types.TypesString(argTypes))).
				WithCode(diagnostics.ErrFunctionNotFound).
				WithPrimaryLabel(n.Loc(), "no matching constructor"))
		}
		if dtor := dtorOf(special); dtor != nil {
			res.CalledDtor = dtor
		}
		return man.Type
	}
	c.bindCall(n, ctor, ast.CallCtor, argTypes)
	if dtor := dtorOf(special); dtor != nil {
		res.CalledDtor = dtor
	}
	return man.Type
}

// inferCtor picks the first constructor of a generic struct whose parameters
// bind every template type from the argument types
func (c *Checker) inferCtor(decl *manager.Struct, scope *table.Scope, n *ast.CallExpr, argTypes []*types.Type) *manager.StructManifestation {
	resolver := genericResolver(decl.TemplateTypes)
	for _, f := range c.ctx.Managers.Functions.Lookup(nil, synth.CtorName, decl.BaseType) {
		if len(f.Params) != len(argTypes) {
			continue
		}
		mapping := matcher.TypeMapping{}
		ok := true
		for i, p := range f.Params {
			if !matcher.MatchRequestedToCandidateType(p.Type, argTypes[i], mapping, resolver, false) {
				ok = false
				break
			}
		}
		if ok && len(mapping) == len(decl.TemplateTypes) {
			return c.manifestInferred(decl, scope, mapping, n)
		}
	}
	c.softError(diagnostics.NewError(fmt.Sprintf("cannot infer the template types of %s from (%s)", decl.Name, types.TypesString(argTypes))).
		WithCode(diagnostics.ErrTemplateArgCount).
		WithPrimaryLabel(n.Loc(), "template types unknown").
		WithHelp(fmt.Sprintf("spell them out, e.g. %s<%s>(...)", decl.Name, genericNames(decl.TemplateTypes))))
	return nil
}

func genericNames(generics []*types.GenericType) string {
	ts := make([]*types.Type, len(generics))
	for i, g := range generics {
		ts[i] = g.Type
	}
	return types.TypesString(ts)
}

func (c *Checker) checkFctPtrCall(n *ast.CallExpr, t *types.Type) *types.Type {
	argTypes := c.checkExprs(n.Args)
	if t.IsUnresolved() || anyUnresolved(argTypes) {
		return types.TypeUnresolved
	}
	ft := t.RemoveRef()
	if !ft.IsCallable() {
		c.softError(diagnostics.NewError(fmt.Sprintf("a value of type %s cannot be called", t)).
			WithCode(diagnostics.ErrNotCallable).
			WithPrimaryLabel(n.Fun.Loc(), "not callable"))
		return types.TypeUnresolved
	}
	params := ft.ParamTypes()
	if len(params) != len(argTypes) {
		c.softError(diagnostics.NewError(fmt.Sprintf("expected %d %s, found %d",
			len(params), str.Pluralize("argument", "arguments", len(params)), len(argTypes))).
			WithCode(diagnostics.ErrWrongArgumentCount).
			WithPrimaryLabel(n.Loc(), fmt.Sprintf("%s(%s)", t, types.TypesString(argTypes))))
		return types.TypeUnresolved
	}
	for i, arg := range n.Args {
		if !c.assignable(params[i], argTypes[i], arg) {
			c.mismatch(arg.Loc(), params[i], argTypes[i])
		}
	}
	n.Result(c.manIdx).CallKind = ast.CallFctPtr
	if ft.Is(types.TYPE_PROCEDURE) || ft.ReturnType() == nil {
		return types.TypeVoid
	}
	return ft.ReturnType()
}

// bindCall records the callee and the implicit work its arguments need
func (c *Checker) bindCall(n *ast.CallExpr, man *manager.FunctionManifestation, kind ast.CallKind, argTypes []*types.Type) *types.Type {
	res := n.Result(c.manIdx)
	res.Callee = man
	res.CallKind = kind
	c.bindArgs(n.Args, man.ParamTypes, argTypes)
	if man.ReturnType == nil {
		return types.TypeVoid
	}
	return man.ReturnType
}

func (c *Checker) bindArgs(args []ast.Expression, params, argTypes []*types.Type) {
	for i, arg := range args {
		if i >= len(params) || i >= len(argTypes) {
			break
		}
		res := arg.Result(c.manIdx)
		if conv, ok := manager.ClassifyConversion(params[i], argTypes[i], c.isUnsafe()); ok {
			res.Conversion = conv
		}
		if params[i].IsRef() || !c.isLvalue(arg) {
			continue
		}
		if _, special := c.specialMethods(params[i]); special != nil {
			if cc := copyCtorOf(special); cc != nil {
				res.CalledCopyCtor = cc
			}
		}
	}
}

// specialMethods returns the settled special methods of a struct held by value
func (c *Checker) specialMethods(t *types.Type) (*manager.StructManifestation, *synth.Result) {
	if t == nil || !t.Is(types.TYPE_STRUCT) {
		return nil, nil
	}
	man := c.ctx.Managers.Structs.Get(t)
	if man == nil || man.IsTemplate() {
		return nil, nil
	}
	res, err := c.ctx.Synth.Synthesize(man)
	if err != nil {
		return nil, nil
	}
	return man, res
}

func ctorOf(res *synth.Result) *manager.FunctionManifestation {
	if res.UserCtor != nil {
		return res.UserCtor
	}
	if res.Ctor != nil {
		return res.Ctor.Function
	}
	return nil
}

func copyCtorOf(res *synth.Result) *manager.FunctionManifestation {
	if res.UserCopyCtor != nil {
		return res.UserCopyCtor
	}
	if res.CopyCtor != nil {
		return res.CopyCtor.Function
	}
	return nil
}

func dtorOf(res *synth.Result) *manager.FunctionManifestation {
	if res.UserDtor != nil {
		return res.UserDtor
	}
	if res.Dtor != nil {
		return res.Dtor.Function
	}
	return nil
}

func (c *Checker) callError(err error, loc *source.Location) {
	switch {
	case errors.Is(err, manager.ErrAmbiguousCall):
		c.softError(diagnostics.NewError(err.Error()).
			WithCode(diagnostics.ErrAmbiguousCall).
			WithPrimaryLabel(loc, "ambiguous call"))
	case errors.Is(err, manager.ErrTemplateArgCount), errors.Is(err, manager.ErrGenericCondition):
		c.templateError(err, loc)
	default:
		c.softError(diagnostics.NewError(err.Error()).
			WithCode(diagnostics.ErrFunctionNotFound).
			WithPrimaryLabel(loc, "no matching function"))
	}
}

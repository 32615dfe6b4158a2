package typechecker

import (
	"errors"
	"fmt"

	"github.com/spicelang/spice-sub000/internal/context_v2"
	"github.com/spicelang/spice-sub000/internal/diagnostics"
	"github.com/spicelang/spice-sub000/internal/frontend/ast"
	"github.com/spicelang/spice-sub000/internal/semantics/manager"
	"github.com/spicelang/spice-sub000/internal/semantics/symbols"
	"github.com/spicelang/spice-sub000/internal/semantics/table"
	"github.com/spicelang/spice-sub000/internal/source"
	"github.com/spicelang/spice-sub000/internal/types"
)

// resolveType turns a written type into a type. A missing type means dyn.
func (c *Checker) resolveType(dt *ast.DataType) *types.Type {
	if dt == nil {
		return types.TypeDyn
	}

	var base *types.Type
	switch {
	case dt.Func != nil:
		base = c.resolveFuncType(dt.Func)
	case dt.Module != "":
		base = c.resolveImportedType(dt)
	default:
		base = c.resolveNamedType(c.scope, dt)
	}
	if base.IsUnresolved() {
		return base
	}

	quals := c.quals(dt.Quals, dt.Loc())
	const baseQuals = types.QualConst | types.QualSigned | types.QualUnsigned
	if len(dt.Modifiers) > 0 {
		base = base.WithQuals(quals & baseQuals)
		quals &^= baseQuals
	}

	t := base
	for i, m := range dt.Modifiers {
		switch m.Kind {
		case ast.ModPtr:
			t = t.ToPtr()
		case ast.ModRef:
			t = t.ToRef()
		case ast.ModArray:
			if m.Size == 0 && i < len(dt.Modifiers)-1 {
				c.softError(diagnostics.NewError("only the outermost array dimension may omit its size").
					WithCode(diagnostics.ErrInvalidArraySize).
					WithPrimaryLabel(dt.Loc(), "missing array size"))
			}
			t = t.ToArr(m.Size)
		}
	}
	if quals != types.QualNone {
		t = t.WithQuals(quals)
	}
	return t
}

func (c *Checker) resolveTypes(dts []*ast.DataType) []*types.Type {
	result := make([]*types.Type, len(dts))
	for i, dt := range dts {
		result[i] = c.resolveType(dt)
	}
	return result
}

func (c *Checker) resolveFuncType(ft *ast.FuncType) *types.Type {
	params := c.resolveTypes(ft.Params)
	if anyUnresolved(params) {
		return types.TypeUnresolved
	}
	if ft.Return == nil {
		return types.NewProcedure(params)
	}
	ret := c.resolveType(ft.Return)
	if ret.IsUnresolved() {
		return ret
	}
	return types.NewFunction(ret, params)
}

// resolveNamedType resolves the base name of dt, looked up from scope. Template
// arguments are always resolved at the current position.
func (c *Checker) resolveNamedType(scope *table.Scope, dt *ast.DataType) *types.Type {
	if t, ok := types.PrimitiveByName(dt.Base); ok && dt.Module == "" {
		return t
	}
	if g, ok := c.generics[dt.Base]; ok && dt.Module == "" {
		return c.substitute(g.Type)
	}

	sym := scope.Lookup(dt.Base)
	if sym == nil || sym.Kind != symbols.SymbolType {
		d := diagnostics.NewError(fmt.Sprintf("unknown type '%s'", dt.Base)).
			WithCode(diagnostics.ErrUnknownType).
			WithPrimaryLabel(dt.Loc(), "not a type")
		if sym != nil {
			d = d.WithHelp(fmt.Sprintf("'%s' is a %s", dt.Base, sym.Kind))
		}
		c.hardError(d)
	}
	sym.Used = true
	if sym.Type == nil {
		c.hardError(diagnostics.NewError(fmt.Sprintf("type '%s' is used before its declaration is resolved", dt.Base)).
			WithCode(diagnostics.ErrUnknownType).
			WithPrimaryLabel(dt.Loc(), "cyclic type declaration"))
	}

	switch sym.Type.Kind() {
	case types.TYPE_STRUCT:
		args := c.resolveTypes(dt.TemplateArgs)
		if anyUnresolved(args) {
			return types.TypeUnresolved
		}
		man, err := c.ctx.Managers.Structs.Match(scope, dt.Base, args, dt)
		if err != nil {
			c.templateError(err, dt.Loc())
			return types.TypeUnresolved
		}
		return man.Type
	case types.TYPE_INTERFACE:
		args := c.resolveTypes(dt.TemplateArgs)
		if anyUnresolved(args) {
			return types.TypeUnresolved
		}
		man, err := c.ctx.Managers.Interfaces.Match(scope, dt.Base, args, dt)
		if err != nil {
			c.templateError(err, dt.Loc())
			return types.TypeUnresolved
		}
		return man.Type
	case types.TYPE_ALIAS:
		return sym.Type.Contained()
	}
	if len(dt.TemplateArgs) > 0 {
		c.softError(diagnostics.NewError(fmt.Sprintf("type '%s' takes no template types", dt.Base)).
			WithCode(diagnostics.ErrTemplateArgCount).
			WithPrimaryLabel(dt.Loc(), "unexpected template types"))
	}
	return sym.Type
}

func (c *Checker) resolveImportedType(dt *ast.DataType) *types.Type {
	dep := c.importedModule(dt.Module)
	if dep == nil {
		c.hardError(diagnostics.NewError(fmt.Sprintf("unknown import '%s'", dt.Module)).
			WithCode(diagnostics.ErrUnknownType).
			WithPrimaryLabel(dt.Loc(), "no import with this alias"))
	}
	c.markImportUsed(dt.Module)
	if c.exportedEntry(dep, dt.Module, dt.Base, dt.Loc()) == nil {
		return types.TypeUnresolved
	}
	return c.resolveNamedType(dep.Scope, dt)
}

// exportedEntry looks name up in the registry of an imported module. A
// private entry is reported but still returned.
func (c *Checker) exportedEntry(dep *context_v2.Module, alias, name string, loc *source.Location) *context_v2.RegistryEntry {
	entry, ok := dep.Registry.Lookup(name)
	if !ok {
		c.softError(diagnostics.NewError(fmt.Sprintf("module '%s' has no symbol '%s'", alias, name)).
			WithCode(diagnostics.ErrUndefinedSymbol).
			WithPrimaryLabel(loc, "not found"))
		return nil
	}
	if !entry.IsPublic {
		c.softError(diagnostics.NewError(fmt.Sprintf("'%s' is not exported by module '%s'", name, alias)).
			WithCode(diagnostics.ErrSymbolNotExported).
			WithPrimaryLabel(loc, "not public").
			WithHelp("declare it with the public qualifier"))
	}
	return entry
}

// templateError reports a failed manifestation of a struct or interface
func (c *Checker) templateError(err error, loc *source.Location) {
	switch {
	case errors.Is(err, manager.ErrTemplateArgCount):
		c.softError(diagnostics.NewError(err.Error()).
			WithCode(diagnostics.ErrTemplateArgCount).
			WithPrimaryLabel(loc, "wrong number of template types"))
	case errors.Is(err, manager.ErrGenericCondition):
		c.softError(diagnostics.NewError(err.Error()).
			WithCode(diagnostics.ErrGenericCondition).
			WithPrimaryLabel(loc, "template type not allowed"))
	default:
		c.hardError(diagnostics.NewError(err.Error()).
			WithCode(diagnostics.ErrUnknownType).
			WithPrimaryLabel(loc, "cannot be resolved"))
	}
}

// lookupStruct finds the struct declaration a written type names, together
// with the scope it is visible from
func (c *Checker) lookupStruct(dt *ast.DataType) (*manager.Struct, *table.Scope) {
	if dt.Func != nil {
		return nil, nil
	}
	scope := c.scope
	if dt.Module != "" {
		dep := c.importedModule(dt.Module)
		if dep == nil {
			return nil, nil
		}
		scope = dep.Scope
	}
	return c.ctx.Managers.Structs.Lookup(scope, dt.Base), scope
}

func anyUnresolved(ts []*types.Type) bool {
	for _, t := range ts {
		if t == nil || t.IsUnresolved() {
			return true
		}
	}
	return false
}

package typechecker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spicelang/spice-sub000/internal/context_v2"
	"github.com/spicelang/spice-sub000/internal/diagnostics"
	"github.com/spicelang/spice-sub000/internal/frontend/ast"
	"github.com/spicelang/spice-sub000/internal/semantics/manager"
	"github.com/spicelang/spice-sub000/internal/semantics/symbols"
	"github.com/spicelang/spice-sub000/internal/semantics/synth"
	"github.com/spicelang/spice-sub000/internal/semantics/table"
	"github.com/spicelang/spice-sub000/internal/source"
	"github.com/spicelang/spice-sub000/internal/types"
)

// Prepare registers the declarations of the module. Types come first so
// that signatures can refer to any type of the module regardless of order.
func (c *Checker) Prepare() {
	c.trace("prepare %s", c.mod.ImportPath)
	decls := c.mod.AST.Decls

	c.prepareImports()
	for _, d := range decls {
		if g, ok := d.(*ast.GenericTypeDef); ok {
			c.prepareGenericType(g)
		}
	}
	for _, d := range decls {
		switch n := d.(type) {
		case *ast.EnumDef:
			c.prepareEnum(n)
		case *ast.StructDef:
			c.declareStruct(n)
		case *ast.InterfaceDef:
			c.declareInterface(n)
		}
	}
	for _, d := range decls {
		if a, ok := d.(*ast.AliasDef); ok {
			c.prepareAlias(a)
		}
	}
	for _, d := range decls {
		if g, ok := d.(*ast.GenericTypeDef); ok {
			c.prepareGenericConditions(g)
		}
	}
	for _, d := range decls {
		switch n := d.(type) {
		case *ast.StructDef:
			c.prepareStructBody(n)
		case *ast.InterfaceDef:
			c.prepareInterfaceMethods(n)
		}
	}
	for _, d := range decls {
		if f, ok := d.(*ast.FuncDef); ok {
			c.prepareFunction(f)
		}
	}
	for _, d := range decls {
		if g, ok := d.(*ast.GlobalVarDef); ok {
			c.prepareGlobal(g)
		}
	}
}

func (c *Checker) prepareImports() {
	for _, imp := range c.mod.Imports {
		if prev := c.mod.Scope.LookupStrict(imp.Alias); prev != nil {
			c.hardError(diagnostics.NewError(fmt.Sprintf("import alias '%s' is used twice", imp.Alias)).
				WithCode(diagnostics.ErrDuplicateImport).
				WithPrimaryLabel(imp.Location, "duplicate import").
				WithHelp("import the module under a different alias"))
		}
		sym, err := c.mod.Scope.Insert(imp.Alias, symbols.SymbolImport, nil)
		if err != nil {
			continue
		}
		if imp.Module != nil {
			sym.Type = types.NewImport(imp.Alias, imp.Module.Scope.ID)
		} else {
			sym.Type = types.TypeUnresolved
		}
		sym.MarkInitialized()
	}
}

func (c *Checker) prepareGenericType(g *ast.GenericTypeDef) {
	sym := c.declare(c.mod.Scope, g.Name, symbols.SymbolType, g, g.Loc())
	gt := types.NewGenericType(g.Name)
	sym.Type = gt.Type
	c.generics[g.Name] = gt
}

// prepareGenericConditions runs once every named type is known
func (c *Checker) prepareGenericConditions(g *ast.GenericTypeDef) {
	gt := c.generics[g.Name]
	for _, cond := range g.Conditions {
		t := c.resolveType(cond)
		if !t.IsUnresolved() {
			gt.Conditions = append(gt.Conditions, t)
		}
	}
}

func (c *Checker) prepareEnum(e *ast.EnumDef) {
	quals := c.quals(e.Quals, e.Loc())
	sym := c.declare(c.mod.Scope, e.Name, symbols.SymbolType, e, e.Loc())
	sym.IsPublic = quals.Has(types.QualPublic)

	scope := c.mod.Scope.CreateChildScope("enum:"+e.Name, table.ScopeEnum)
	enumType := types.NewEnum(e.Name, scope.ID)
	sym.Type = enumType
	sym.MarkInitialized()

	values := make(map[int]*ast.EnumItem)
	next := 0
	for _, item := range e.Items {
		value := next
		if item.HasValue {
			value = item.Value
		}
		next = value + 1
		if prev, dup := values[value]; dup {
			c.softError(diagnostics.NewError(fmt.Sprintf("enum item '%s' has the value %d of '%s'", item.Name, value, prev.Name)).
				WithCode(diagnostics.ErrRedeclaredSymbol).
				WithPrimaryLabel(&item.Location, "duplicate value").
				WithSecondaryLabel(&prev.Location, "value first used here"))
		}
		values[value] = item

		itemSym, err := scope.Insert(item.Name, symbols.SymbolEnumItem, nil)
		if err != nil {
			c.softError(diagnostics.NewError(fmt.Sprintf("enum item '%s' is declared twice", item.Name)).
				WithCode(diagnostics.ErrRedeclaredSymbol).
				WithPrimaryLabel(&item.Location, "duplicate item"))
			continue
		}
		itemSym.Type = enumType.WithQuals(types.QualConst)
		itemSym.IsPublic = sym.IsPublic
		itemSym.MarkInitialized()
	}
	c.register(e.Name, sym, enumType, sym.IsPublic)
}

func (c *Checker) declareStruct(s *ast.StructDef) {
	quals := c.quals(s.Quals, s.Loc())
	sym := c.declare(c.mod.Scope, s.Name, symbols.SymbolType, s, s.Loc())
	sym.IsPublic = quals.Has(types.QualPublic)
	sym.MarkInitialized()

	scopeName := "struct:" + s.Name
	body := c.mod.Scope.CreateChildScope(scopeName, table.ScopeStruct)
	decl, err := c.ctx.Managers.Structs.Insert(c.mod.Scope, &manager.Struct{
		Name:          s.Name,
		File:          c.mod.FilePath,
		Quals:         quals,
		TemplateTypes: c.templateTypes(s.TemplateTypes),
		Decl:          s,
		BaseScopeName: scopeName,
		BaseScope:     body.ID,
	})
	if err != nil {
		c.hardError(diagnostics.NewError(err.Error()).
			WithCode(diagnostics.ErrRedeclaredSymbol).
			WithPrimaryLabel(s.Loc(), "struct declared twice"))
	}
	sym.Type = decl.BaseType
	c.structs[s] = decl
	c.register(s.Name, sym, decl.BaseType, sym.IsPublic)
}

func (c *Checker) declareInterface(i *ast.InterfaceDef) {
	quals := c.quals(i.Quals, i.Loc())
	sym := c.declare(c.mod.Scope, i.Name, symbols.SymbolType, i, i.Loc())
	sym.IsPublic = quals.Has(types.QualPublic)
	sym.MarkInitialized()

	scopeName := "interface:" + i.Name
	body := c.mod.Scope.CreateChildScope(scopeName, table.ScopeInterface)
	decl, err := c.ctx.Managers.Interfaces.Insert(c.mod.Scope, &manager.Interface{
		Name:          i.Name,
		File:          c.mod.FilePath,
		Quals:         quals,
		TemplateTypes: c.templateTypes(i.TemplateTypes),
		Decl:          i,
		BaseScopeName: scopeName,
		BaseScope:     body.ID,
	})
	if err != nil {
		c.hardError(diagnostics.NewError(err.Error()).
			WithCode(diagnostics.ErrRedeclaredSymbol).
			WithPrimaryLabel(i.Loc(), "interface declared twice"))
	}
	sym.Type = decl.BaseType
	c.ifaces[i] = decl
	c.register(i.Name, sym, decl.BaseType, sym.IsPublic)
}

func (c *Checker) prepareAlias(a *ast.AliasDef) {
	quals := c.quals(a.Quals, a.Loc())
	sym := c.declare(c.mod.Scope, a.Name, symbols.SymbolType, a, a.Loc())
	sym.IsPublic = quals.Has(types.QualPublic)
	sym.MarkInitialized()

	target := c.resolveType(a.Target)
	sym.Type = types.NewAlias(a.Name, target)
	c.register(a.Name, sym, sym.Type, sym.IsPublic)
}

func (c *Checker) prepareStructBody(s *ast.StructDef) {
	decl := c.structs[s]
	if decl == nil {
		return
	}
	defer c.enterScope(c.ctx.Arena.Get(decl.BaseScope))()

	var interfaces []*types.Type
	for _, dt := range s.Interfaces {
		t := c.resolveType(dt)
		if t.IsUnresolved() {
			continue
		}
		if !t.Is(types.TYPE_INTERFACE) {
			c.softError(diagnostics.NewError(fmt.Sprintf("struct %s can only implement interfaces, %s is not one", s.Name, t)).
				WithCode(diagnostics.ErrTypeMismatch).
				WithPrimaryLabel(dt.Loc(), "not an interface"))
			continue
		}
		interfaces = append(interfaces, t)
	}

	for _, field := range s.Fields {
		quals := c.quals(field.Quals, field.Loc())
		sym := c.declare(c.scope, field.Name, symbols.SymbolField, field, field.Loc())
		sym.IsPublic = quals.Has(types.QualPublic)
		t := c.resolveType(field.Type)
		if t.IsDyn() {
			c.softError(diagnostics.NewError(fmt.Sprintf("field '%s' needs an explicit type", field.Name)).
				WithCode(diagnostics.ErrDynNotInferable).
				WithPrimaryLabel(field.Loc(), "dyn is not allowed for fields"))
			t = types.TypeUnresolved
		}
		if quals.Has(types.QualConst) {
			t = t.WithQuals(types.QualConst)
		}
		sym.Type = t
		sym.MarkInitialized()
	}

	c.ctx.Managers.Structs.FieldsPrepared(decl)
	c.ctx.Managers.Structs.SetInterfaces(decl, interfaces)
}

func (c *Checker) prepareInterfaceMethods(i *ast.InterfaceDef) {
	decl := c.ifaces[i]
	if decl == nil {
		return
	}
	body := c.ctx.Arena.Get(decl.BaseScope)
	defer c.enterScope(body)()

	for _, sig := range i.Methods {
		params := make([]manager.Param, len(sig.Params))
		for idx, p := range sig.Params {
			params[idx] = manager.Param{Name: fmt.Sprintf("p%d", idx), Type: c.resolveType(p)}
		}
		var ret *types.Type
		if sig.ReturnType != nil {
			ret = c.resolveType(sig.ReturnType)
		}
		_, err := c.ctx.Managers.Interfaces.AddMethod(body, decl, &manager.Function{
			Name:       sig.Name,
			File:       c.mod.FilePath,
			Quals:      types.QualPublic,
			ReturnType: ret,
			Params:     params,
			Decl:       sig,
		})
		if err != nil {
			c.softError(diagnostics.NewError(err.Error()).
				WithCode(diagnostics.ErrRedeclaredSymbol).
				WithPrimaryLabel(sig.Loc(), "method declared twice"))
		}
	}
}

func (c *Checker) prepareFunction(f *ast.FuncDef) {
	quals := c.quals(f.Quals, f.Loc())

	var thisType *types.Type
	if f.ThisType != nil {
		thisType = c.resolveType(f.ThisType)
		if thisType.IsUnresolved() {
			return
		}
		if !thisType.Is(types.TYPE_STRUCT) {
			c.hardError(diagnostics.NewError(fmt.Sprintf("methods can only be declared on structs, %s is not one", thisType)).
				WithCode(diagnostics.ErrInvalidMethodReceiver).
				WithPrimaryLabel(f.ThisType.Loc(), "invalid receiver"))
		}
	}

	kind := table.ScopeFuncBody
	if f.IsProcedure() {
		kind = table.ScopeProcBody
	}
	scopeName := "fct:" + f.Name + ":" + f.Loc().Key()
	if thisType != nil {
		scopeName = "fct:" + f.ThisType.Base + "." + f.Name + ":" + f.Loc().Key()
	}
	body := c.mod.Scope.CreateChildScope(scopeName, kind)
	defer c.enterScope(body)()

	if thisType != nil {
		this, _ := body.Insert("this", symbols.SymbolParameter, f)
		this.Type = thisType.ToPtr()
		this.MarkInitialized()
	}

	var params []manager.Param
	seenDefault := false
	for _, p := range f.Params {
		sym := c.declare(body, p.Name, symbols.SymbolParameter, p, p.Loc())
		t := c.resolveType(p.Type)
		sym.Type = t
		sym.MarkInitialized()
		if p.Default != nil {
			seenDefault = true
		} else if seenDefault {
			c.softError(diagnostics.NewError(fmt.Sprintf("parameter '%s' needs a default value", p.Name)).
				WithCode(diagnostics.ErrWrongArgumentCount).
				WithPrimaryLabel(p.Loc(), "follows a parameter with a default value").
				WithHelp("move the parameters with default values to the end"))
		}
		params = append(params, manager.Param{Name: p.Name, Type: t, HasDefault: p.Default != nil})
	}

	var ret *types.Type
	if f.ReturnType != nil {
		ret = c.resolveType(f.ReturnType)
		result, _ := body.Insert("result", symbols.SymbolVariable, f)
		result.Type = ret
	}

	c.checkSpecialMethod(f, thisType, params)

	fn, err := c.ctx.Managers.Functions.Insert(c.mod.Scope, &manager.Function{
		Name:          f.Name,
		File:          c.mod.FilePath,
		Quals:         quals,
		ThisType:      thisType,
		ReturnType:    ret,
		Params:        params,
		TemplateTypes: c.templateTypes(f.TemplateTypes),
		Decl:          f,
		BaseScopeName: scopeName,
		BaseScope:     body.ID,
	})
	if err != nil {
		// a rejected declaration leaves no body behind
		c.mod.Scope.RemoveChildScope(scopeName)
	}
	switch {
	case errors.Is(err, manager.ErrStructNotFound):
		c.hardError(diagnostics.NewError(err.Error()).
			WithCode(diagnostics.ErrInvalidMethodReceiver).
			WithPrimaryLabel(f.ThisType.Loc(), "unknown receiver"))
	case err != nil:
		c.hardError(diagnostics.NewError(err.Error()).
			WithCode(diagnostics.ErrRedeclaredSymbol).
			WithPrimaryLabel(f.Loc(), "declared twice"))
	}
	c.funcs[f] = fn
	if thisType == nil {
		c.registerFunction(f.Name, quals.Has(types.QualPublic))
	}
}

// checkSpecialMethod validates constructors, destructors and operator overloads
func (c *Checker) checkSpecialMethod(f *ast.FuncDef, thisType *types.Type, params []manager.Param) {
	switch {
	case f.Name == synth.CtorName || f.Name == synth.DtorName:
		if thisType == nil || !f.IsProcedure() {
			c.softError(diagnostics.NewError(fmt.Sprintf("'%s' must be declared as a procedure on a struct", f.Name)).
				WithCode(diagnostics.ErrInvalidMethodReceiver).
				WithPrimaryLabel(f.Loc(), "invalid "+f.Name).
				WithHelp(fmt.Sprintf("declare it as p Name.%s(...)", f.Name)))
		}
		if f.Name == synth.DtorName && len(params) > 0 {
			c.softError(diagnostics.NewError("destructors take no parameters").
				WithCode(diagnostics.ErrWrongArgumentCount).
				WithPrimaryLabel(f.Loc(), "unexpected parameters"))
		}
	case strings.HasPrefix(f.Name, "op."):
		if thisType != nil {
			c.softError(diagnostics.NewError(fmt.Sprintf("operator overload '%s' must be a free function", f.Name)).
				WithCode(diagnostics.ErrInvalidMethodReceiver).
				WithPrimaryLabel(f.Loc(), "declared as method"))
		}
	}
}

func (c *Checker) prepareGlobal(g *ast.GlobalVarDef) {
	quals := c.quals(g.Quals, g.Loc())
	kind := symbols.SymbolVariable
	if quals.Has(types.QualConst) {
		kind = symbols.SymbolConstant
	}
	sym := c.declare(c.mod.Scope, g.Name, kind, g, g.Loc())
	sym.IsPublic = quals.Has(types.QualPublic)
	sym.Type = c.resolveType(g.Type)
	g.Result(0).Entry = sym
	c.register(g.Name, sym, sym.Type, sym.IsPublic)
}

// declare inserts name into scope. A name already taken aborts the module.
func (c *Checker) declare(scope *table.Scope, name string, kind symbols.SymbolKind, decl ast.Node, loc *source.Location) *symbols.Symbol {
	sym, err := scope.Insert(name, kind, decl)
	if err == nil {
		return sym
	}
	d := diagnostics.NewError(fmt.Sprintf("'%s' is already declared in this scope", name)).
		WithCode(diagnostics.ErrRedeclaredSymbol).
		WithPrimaryLabel(loc, "redeclared here")
	if prev := scope.LookupStrict(name); prev != nil && prev.Decl != nil {
		d = d.WithSecondaryLabel(prev.Decl.Loc(), "previous declaration")
	}
	c.hardError(d)
	return nil
}

func (c *Checker) quals(names []string, loc *source.Location) types.Qualifiers {
	q := types.QualNone
	for _, name := range names {
		parsed, ok := types.ParseQualifier(name)
		if !ok {
			c.softError(diagnostics.NewError(fmt.Sprintf("unknown qualifier '%s'", name)).
				WithCode(diagnostics.ErrInvalidSymbolName).
				WithPrimaryLabel(loc, "not a qualifier"))
			continue
		}
		q |= parsed
	}
	return q
}

// templateTypes resolves the generic names a declaration is parameterized with
func (c *Checker) templateTypes(dts []*ast.DataType) []*types.GenericType {
	result := make([]*types.GenericType, 0, len(dts))
	for _, dt := range dts {
		g, ok := c.generics[dt.Base]
		if !ok {
			c.hardError(diagnostics.NewError(fmt.Sprintf("unknown generic type '%s'", dt.Base)).
				WithCode(diagnostics.ErrUnknownType).
				WithPrimaryLabel(dt.Loc(), "not declared").
				WithHelp(fmt.Sprintf("declare it with: type %s dyn;", dt.Base)))
		}
		result = append(result, g)
	}
	return result
}

func (c *Checker) register(name string, sym *symbols.Symbol, t *types.Type, public bool) {
	err := c.mod.Registry.Register(&context_v2.RegistryEntry{
		Name:     name,
		Symbol:   sym,
		Scope:    c.mod.Scope.ID,
		Type:     t,
		IsPublic: public,
	})
	if err != nil && !errors.Is(err, context_v2.ErrAlreadyRegistered) {
		c.trace("register %s: %v", name, err)
	}
}

// registerFunction exports a function name. The name is public when any overload is.
func (c *Checker) registerFunction(name string, public bool) {
	if entry, ok := c.mod.Registry.Lookup(name); ok {
		entry.IsPublic = entry.IsPublic || public
		return
	}
	c.register(name, nil, nil, public)
}

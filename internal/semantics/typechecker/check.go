package typechecker

import (
	"fmt"

	"github.com/emirpasic/gods/sets/hashset"

	"github.com/spicelang/spice-sub000/internal/diagnostics"
	"github.com/spicelang/spice-sub000/internal/frontend/ast"
	"github.com/spicelang/spice-sub000/internal/semantics/controlflow"
	"github.com/spicelang/spice-sub000/internal/semantics/manager"
	"github.com/spicelang/spice-sub000/internal/semantics/symbols"
	"github.com/spicelang/spice-sub000/internal/semantics/table"
	"github.com/spicelang/spice-sub000/internal/source"
	"github.com/spicelang/spice-sub000/internal/types"
)

// Check visits every manifestation of the module that is not checked yet.
// Manifestations created while checking are picked up by the next call.
func (c *Checker) Check() {
	c.trace("check %s (pass %d)", c.mod.ImportPath, c.mod.CheckPasses)
	if !c.globalsChecked {
		c.globalsChecked = true
		c.checkGlobals()
	}
	for _, man := range c.ctx.Managers.AllManifestations() {
		if man.File() != c.mod.FilePath || man.IsChecked() {
			continue
		}
		switch m := man.(type) {
		case *manager.StructManifestation:
			if !m.IsTemplate() {
				c.checkStruct(m)
			}
		case *manager.InterfaceManifestation:
			m.MarkChecked()
		case *manager.FunctionManifestation:
			c.checkFunction(m)
		}
	}
}

func (c *Checker) checkGlobals() {
	for _, d := range c.mod.AST.Decls {
		g, ok := d.(*ast.GlobalVarDef)
		if !ok {
			continue
		}
		sym := c.mod.Scope.LookupStrict(g.Name)
		if sym == nil {
			continue
		}
		res := g.Result(0)
		res.Entry = sym

		switch {
		case g.Value != nil:
			t := c.checkExpr(g.Value, sym.Type)
			if sym.Type.IsDyn() {
				_ = sym.UpdateType(t.RemoveRef(), false)
			} else if !c.assignable(sym.Type, t, g.Value) {
				c.mismatch(g.Value.Loc(), sym.Type, t)
			}
		case sym.Kind == symbols.SymbolConstant:
			c.softError(diagnostics.NewError(fmt.Sprintf("constant '%s' needs a value", g.Name)).
				WithCode(diagnostics.ErrUseBeforeInit).
				WithPrimaryLabel(g.Loc(), "missing value"))
		case sym.Type.IsDyn():
			c.softError(diagnostics.NewError(fmt.Sprintf("cannot infer the type of '%s' without a value", g.Name)).
				WithCode(diagnostics.ErrDynNotInferable).
				WithPrimaryLabel(g.Loc(), "type unknown").
				WithHelp("declare the type explicitly"))
			sym.Type = types.TypeUnresolved
		}
		sym.MarkInitialized()
		res.Type = sym.Type
	}
}

func (c *Checker) checkStruct(man *manager.StructManifestation) {
	defer c.enterManifestation(man.Index(), man.Mapping())()
	body := c.ctx.Arena.Get(man.BodyScope())
	defer c.enterScope(body)()
	c.trace(" %s", man)

	c.checkInfiniteSize(man)

	for _, field := range man.Decl.Decl.Fields {
		if field.Default == nil {
			continue
		}
		sym := body.LookupStrict(field.Name)
		if sym == nil {
			continue
		}
		t := c.checkExpr(field.Default, sym.Type)
		if !c.assignable(sym.Type, t, field.Default) {
			c.mismatch(field.Default.Loc(), sym.Type, t)
		}
	}

	c.checkInterfaces(man)
	if _, err := c.ctx.Synth.Synthesize(man); err != nil {
		c.callError(err, man.Decl.Decl.Loc())
	}
	man.MarkChecked()
}

// checkInfiniteSize rejects structs that contain themselves by value
func (c *Checker) checkInfiniteSize(man *manager.StructManifestation) {
	if !c.containsByValue(man, man, hashset.New()) {
		return
	}
	c.hardError(diagnostics.NewError(fmt.Sprintf("struct %s has infinite size", man.Type)).
		WithCode(diagnostics.ErrInfiniteSize).
		WithPrimaryLabel(man.Decl.Decl.Loc(), "contains itself by value").
		WithHelp("store the recursive field behind a pointer"))
}

func (c *Checker) containsByValue(cur, target *manager.StructManifestation, visited *hashset.Set) bool {
	if visited.Contains(cur) {
		return false
	}
	visited.Add(cur)
	body := c.ctx.Arena.Get(cur.BodyScope())
	if body == nil {
		return false
	}
	for _, field := range body.Fields() {
		t := field.Type
		for t.IsArray() {
			t = t.Contained()
		}
		if !t.Is(types.TYPE_STRUCT) {
			continue
		}
		fieldMan := c.ctx.Managers.Structs.Get(t)
		if fieldMan == nil || fieldMan.IsTemplate() {
			continue
		}
		if fieldMan == target || c.containsByValue(fieldMan, target, visited) {
			return true
		}
	}
	return false
}

// checkInterfaces verifies that man has a method for every signature of its interfaces
func (c *Checker) checkInterfaces(man *manager.StructManifestation) {
	body := c.ctx.Arena.Get(man.BodyScope())
	for _, iface := range man.Interfaces {
		ifaceMan := c.ctx.Managers.Interfaces.Get(iface)
		if ifaceMan == nil {
			continue
		}
		methods, err := c.ctx.Managers.Interfaces.MethodsOf(ifaceMan)
		if err != nil {
			c.callError(err, man.Decl.Decl.Loc())
			continue
		}
		for _, m := range methods {
			impl, err := c.ctx.Managers.Functions.Match(body, m.Decl.Name, man.Type, m.ParamTypes, nil, false, man.Decl.Decl)
			if err == nil && impl != nil && !impl.Decl.IsVirtual && sameReturnType(impl.ReturnType, m.ReturnType) {
				continue
			}
			c.softError(diagnostics.NewError(fmt.Sprintf("struct %s does not implement method '%s(%s)' of interface %s",
				man.Type, m.Decl.Name, types.TypesString(m.ParamTypes), iface)).
				WithCode(diagnostics.ErrInterfaceNotImplemented).
				WithPrimaryLabel(man.Decl.Decl.Loc(), "missing method").
				WithHelp(fmt.Sprintf("declare %s on %s", m, man.Type.Name())))
		}
	}
}

func sameReturnType(a, b *types.Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Matches(b, true, false, true)
}

func (c *Checker) checkFunction(man *manager.FunctionManifestation) {
	fd, ok := man.Decl.Decl.(*ast.FuncDef)
	body := c.ctx.Arena.Get(man.BodyScope())
	if !ok || man.Decl.IsVirtual || body == nil || fd.Body == nil {
		man.MarkChecked()
		return
	}

	defer c.enterManifestation(man.Index(), man.Mapping())()
	defer c.enterScope(body)()
	prevRet := c.ret
	c.ret = &returnContext{Type: man.ReturnType}
	defer func() { c.ret = prevRet }()
	c.trace(" %s", man)

	for i, p := range fd.Params {
		if p.Default == nil || i >= len(man.ParamTypes) {
			continue
		}
		pt := man.ParamTypes[i]
		t := c.checkExpr(p.Default, pt)
		if !c.assignable(pt, t, p.Default) {
			c.mismatch(p.Default.Loc(), pt, t)
		}
	}
	if this := body.LookupStrict("this"); this != nil {
		this.Used = true
	}

	c.checkStmts(fd.Body.Stmts)
	c.finishCallable(fd.Name, fd.Loc(), fd.Body, body, man.ReturnType != nil, true)
	man.MarkChecked()
}

// finishCallable runs the checks that need the whole body of a function, procedure or lambda
func (c *Checker) finishCallable(name string, loc *source.Location, block *ast.Block, scope *table.Scope, isFunction, reportUnused bool) {
	analysis := controlflow.AnalyzeBody(block)
	for _, stmt := range analysis.Unreachable {
		c.warn(diagnostics.NewWarning("unreachable code").
			WithCode(diagnostics.WarnUnreachableCode).
			WithPrimaryLabel(stmt.Loc(), "this statement is never executed"))
	}

	if isFunction && !analysis.ReturnsOnAllPaths() {
		if result := scope.LookupStrict("result"); result == nil || !result.IsInitialized() {
			d := diagnostics.NewError(fmt.Sprintf("not all code paths of '%s' return a value", name)).
				WithCode(diagnostics.ErrMissingReturn).
				WithPrimaryLabel(loc, "missing return")
			for _, l := range analysis.MissingReturn {
				d = d.WithSecondaryLabel(l, "this path does not return")
			}
			c.softError(d.WithHelp("return a value or assign the result variable"))
		}
	}

	if !reportUnused {
		return
	}
	for _, sym := range scope.UnusedSymbols() {
		if sym.Decl == nil {
			continue
		}
		if sym.IsParam() {
			c.warn(diagnostics.NewWarning(fmt.Sprintf("parameter '%s' is never used", sym.Name)).
				WithCode(diagnostics.WarnUnusedParameter).
				WithPrimaryLabel(sym.Decl.Loc(), "unused parameter").
				WithHelp("prefix the name with '_' to silence this warning"))
			continue
		}
		c.warn(diagnostics.NewWarning(fmt.Sprintf("variable '%s' is declared but never used", sym.Name)).
			WithCode(diagnostics.WarnUnusedVariable).
			WithPrimaryLabel(sym.Decl.Loc(), "unused variable").
			WithHelp("prefix the name with '_' to silence this warning"))
	}
}

package typechecker

import (
	"fmt"

	"github.com/spicelang/spice-sub000/internal/diagnostics"
	"github.com/spicelang/spice-sub000/internal/frontend/ast"
	"github.com/spicelang/spice-sub000/internal/semantics/symbols"
	"github.com/spicelang/spice-sub000/internal/semantics/table"
	"github.com/spicelang/spice-sub000/internal/source"
	"github.com/spicelang/spice-sub000/internal/tokens"
	"github.com/spicelang/spice-sub000/internal/types"
	"github.com/spicelang/spice-sub000/internal/utils/numeric"
)

func (c *Checker) checkStmts(stmts []ast.Statement) {
	for _, stmt := range stmts {
		c.checkStmt(stmt)
	}
}

func (c *Checker) checkStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.DeclStmt:
		c.checkDeclStmt(s)
	case *ast.AssignStmt:
		c.checkAssign(s)
	case *ast.ExprStmt:
		c.checkExprStmt(s)
	case *ast.ReturnStmt:
		c.checkReturn(s)
	case *ast.IfStmt:
		c.checkIf(s)
	case *ast.WhileStmt:
		c.checkCondition(s.Cond, "while")
		c.checkBlock(s.Body, table.ScopeWhile)
	case *ast.DoWhileStmt:
		c.checkBlock(s.Body, table.ScopeWhile)
		c.checkCondition(s.Cond, "do-while")
	case *ast.ForStmt:
		c.checkFor(s)
	case *ast.ForeachStmt:
		c.checkForeach(s)
	case *ast.BreakStmt:
		c.checkJump("break", s.Count, s.Loc(), diagnostics.ErrInvalidBreak)
	case *ast.ContinueStmt:
		c.checkJump("continue", s.Count, s.Loc(), diagnostics.ErrInvalidContinue)
	case *ast.FallthroughStmt:
		if !c.fallthroughLegal || !c.scope.IsInCaseBranch() {
			c.softError(diagnostics.NewError("fallthrough is only allowed in a case branch that is followed by another one").
				WithCode(diagnostics.ErrInvalidFallthrough).
				WithPrimaryLabel(s.Loc(), "invalid fallthrough"))
		}
	case *ast.SwitchStmt:
		c.checkSwitch(s)
	case *ast.UnsafeStmt:
		c.checkBlock(s.Body, table.ScopeUnsafe)
	case *ast.Block:
		c.checkBlock(s, table.ScopeAnonymous)
	}
}

// checkBlock checks b in a child scope of the given kind. Later passes
// re-enter the same scope because its name derives from the block position.
func (c *Checker) checkBlock(b *ast.Block, kind table.ScopeKind) {
	if b == nil {
		return
	}
	scope := c.childScope(kind.String(), b.Loc(), kind)
	defer c.enterScope(scope)()
	c.checkStmts(b.Stmts)
}

func (c *Checker) checkDeclStmt(d *ast.DeclStmt) {
	if d.Name == "this" || d.Name == "result" {
		c.softError(diagnostics.NewError(fmt.Sprintf("'%s' is a reserved name", d.Name)).
			WithCode(diagnostics.ErrInvalidSymbolName).
			WithPrimaryLabel(d.Loc(), "reserved"))
		return
	}
	quals := c.quals(d.Quals, d.Loc())
	kind := symbols.SymbolVariable
	if quals.Has(types.QualConst) {
		kind = symbols.SymbolConstant
	}
	declType := c.resolveType(d.Type)

	// the value is checked before the name exists, so it cannot refer to itself
	var valueType *types.Type
	if d.Value != nil {
		valueType = c.checkExpr(d.Value, declType)
	}
	sym := c.declare(c.scope, d.Name, kind, d, d.Loc())
	res := d.Result(c.manIdx)
	res.Entry = sym

	switch {
	case declType.IsUnresolved():
	case d.Value != nil && valueType.Is(types.TYPE_VOID):
		c.softError(diagnostics.NewError(fmt.Sprintf("'%s' cannot be initialized with the result of a procedure", d.Name)).
			WithCode(diagnostics.ErrTypeMismatch).
			WithPrimaryLabel(d.Value.Loc(), "procedures return no value"))
		declType = types.TypeUnresolved
	case declType.IsDyn():
		if d.Value == nil {
			c.softError(diagnostics.NewError(fmt.Sprintf("cannot infer the type of '%s' without a value", d.Name)).
				WithCode(diagnostics.ErrDynNotInferable).
				WithPrimaryLabel(d.Loc(), "type unknown").
				WithHelp("declare the type explicitly"))
			declType = types.TypeUnresolved
		} else {
			declType = valueType.RemoveRef()
		}
	case d.Value != nil:
		if !c.assignable(declType, valueType, d.Value) {
			c.mismatch(d.Value.Loc(), declType, valueType)
		}
	}
	sym.Type = declType
	res.Type = declType

	if d.Value != nil || declType.Is(types.TYPE_STRUCT) {
		sym.MarkInitialized()
	} else if kind == symbols.SymbolConstant {
		c.softError(diagnostics.NewError(fmt.Sprintf("constant '%s' needs a value", d.Name)).
			WithCode(diagnostics.ErrUseBeforeInit).
			WithPrimaryLabel(d.Loc(), "missing value"))
		sym.MarkInitialized()
	}
	c.recordLifetimeCalls(res, declType, d.Value)
}

// recordLifetimeCalls stores the constructor, copy constructor and destructor
// a struct value declared with type t needs
func (c *Checker) recordLifetimeCalls(res *ast.Resolved, t *types.Type, value ast.Expression) {
	man, special := c.specialMethods(t)
	if special == nil {
		return
	}
	if value == nil {
		if special.NotDefaultConstructible {
			c.softError(diagnostics.NewError(fmt.Sprintf("struct %s has no constructor without arguments", man.Type)).
				WithCode(diagnostics.ErrFunctionNotFound).
				WithPrimaryLabel(man.Decl.Decl.Loc(), "not default constructible"))
		} else if ctor := ctorOf(special); ctor != nil {
			res.Callee = ctor
			res.CallKind = ast.CallCtor
		}
	} else if c.isLvalue(value) {
		if cc := copyCtorOf(special); cc != nil {
			res.CalledCopyCtor = cc
		}
	}
	if dtor := dtorOf(special); dtor != nil {
		res.CalledDtor = dtor
	}
}

func (c *Checker) checkAssign(a *ast.AssignStmt) {
	lt := c.checkLhs(a.Lhs)
	rt := c.checkExpr(a.Rhs, lt)
	res := a.Result(c.manIdx)
	res.Type = lt
	if lt.IsUnresolved() || rt.IsUnresolved() {
		return
	}

	if !c.isLvalue(a.Lhs) {
		c.softError(diagnostics.NewError("cannot assign to this expression").
			WithCode(diagnostics.ErrInvalidAssignment).
			WithPrimaryLabel(a.Lhs.Loc(), "not assignable"))
		return
	}
	sym := c.symbolOf(a.Lhs)
	if sym != nil {
		res.Entry = sym
	}
	if (sym != nil && sym.IsConst()) || lt.RemoveRef().IsConst() {
		c.softError(diagnostics.NewError(fmt.Sprintf("cannot assign to %s", c.describe(a.Lhs))).
			WithCode(diagnostics.ErrConstantReassignment).
			WithPrimaryLabel(a.Lhs.Loc(), "constant"))
		return
	}

	if a.Op == tokens.EQUALS_TOKEN {
		if !c.assignable(lt, rt, a.Rhs) {
			c.softError(diagnostics.NewError(fmt.Sprintf("cannot assign a value of type %s to %s of type %s", rt, c.describe(a.Lhs), lt)).
				WithCode(diagnostics.ErrTypeMismatch).
				WithPrimaryLabel(a.Rhs.Loc(), fmt.Sprintf("expected %s", lt)))
			return
		}
		if _, special := c.specialMethods(lt.RemoveRef()); special != nil {
			if c.isLvalue(a.Rhs) {
				if cc := copyCtorOf(special); cc != nil {
					res.CalledCopyCtor = cc
				}
			}
			if dtor := dtorOf(special); dtor != nil && (sym == nil || sym.IsInitialized()) {
				res.CalledDtor = dtor
			}
		}
	} else {
		if sym != nil {
			sym.Used = true
			if !sym.IsInitialized() {
				c.useBeforeInit(sym, a.Lhs.Loc())
			}
		}
		if !c.checkCompound(a, lt, rt) {
			return
		}
	}

	if sym != nil {
		sym.MarkInitialized()
		c.scope.MarkWritten(sym)
	}
}

func (c *Checker) checkCompound(a *ast.AssignStmt, lt, rt *types.Type) bool {
	if t, ok := c.operatorOverload(a, a.Result(c.manIdx), a.Op, []ast.Expression{a.Lhs, a.Rhs}, []*types.Type{lt, rt}); ok {
		return !t.IsUnresolved()
	}
	if _, err := c.binaryRule(a.Op, lt, rt, a.Rhs); err != nil {
		c.operatorError(err, a.Loc())
		return false
	}
	return true
}

func (c *Checker) checkExprStmt(s *ast.ExprStmt) {
	t := c.checkExpr(s.X, nil)
	res := s.Result(c.manIdx)
	res.Type = t
	call, ok := s.X.(*ast.CallExpr)
	if !ok || t.IsUnresolved() {
		return
	}

	callRes := call.Result(c.manIdx)
	if callRes.CallKind != ast.CallCtor && !t.Is(types.TYPE_VOID) {
		name := "function"
		if callRes.Callee != nil {
			name = callRes.Callee.Signature()
		}
		c.warn(diagnostics.NewWarning(fmt.Sprintf("the result of %s is discarded", name)).
			WithCode(diagnostics.WarnDiscardedResult).
			WithPrimaryLabel(s.Loc(), "result unused").
			WithHelp("assign it to a variable starting with '_' to discard it explicitly"))
	}

	// a struct temporary lives until the end of the statement
	if _, special := c.specialMethods(t); special != nil {
		if dtor := dtorOf(special); dtor != nil {
			if tmp := c.scope.InsertAnonymous(s); tmp != nil {
				tmp.Type = t
				tmp.MarkInitialized()
				res.Entry = tmp
				res.CalledDtor = dtor
				c.scope.RemoveAnonymous(tmp.Name)
			}
		}
	}
}

func (c *Checker) checkReturn(r *ast.ReturnStmt) {
	res := r.Result(c.manIdx)
	if c.ret == nil {
		if r.Value != nil {
			c.checkExpr(r.Value, nil)
		}
		c.softError(diagnostics.NewError("return outside of a function").
			WithCode(diagnostics.ErrInvalidReturn).
			WithPrimaryLabel(r.Loc(), "invalid return"))
		return
	}

	expected := c.ret.Type
	if expected == nil {
		if r.Value != nil {
			c.checkExpr(r.Value, nil)
			c.softError(diagnostics.NewError("procedures cannot return a value").
				WithCode(diagnostics.ErrInvalidReturn).
				WithPrimaryLabel(r.Value.Loc(), "unexpected value").
				WithHelp("declare it as a function with f<T>"))
		}
		return
	}
	if r.Value == nil {
		var result *symbols.Symbol
		if body := c.scope.EnclosingCallable(); body != nil {
			result = body.LookupStrict("result")
		}
		if result == nil || !result.IsInitialized() {
			c.softError(diagnostics.NewError("return without a value in a function whose result is not assigned").
				WithCode(diagnostics.ErrInvalidReturn).
				WithPrimaryLabel(r.Loc(), "missing value").
				WithHelp("return a value or assign the result variable first"))
		}
		return
	}

	t := c.checkExpr(r.Value, expected)
	res.Type = t
	if expected.IsDyn() {
		if !t.IsUnresolved() {
			c.ret.Type = t.RemoveRef()
		}
		return
	}
	if !c.assignable(expected, t, r.Value) {
		c.softError(diagnostics.NewError(fmt.Sprintf("cannot return %s from a function returning %s", t, expected)).
			WithCode(diagnostics.ErrTypeMismatch).
			WithPrimaryLabel(r.Value.Loc(), fmt.Sprintf("expected %s", expected)))
		return
	}
	if _, special := c.specialMethods(expected); special != nil && c.isLvalue(r.Value) {
		if cc := copyCtorOf(special); cc != nil {
			res.CalledCopyCtor = cc
		}
	}
}

func (c *Checker) checkCondition(e ast.Expression, construct string) {
	t := c.checkExpr(e, types.TypeBool)
	if t.IsUnresolved() || t.RemoveRef().Is(types.TYPE_BOOL) {
		return
	}
	c.softError(diagnostics.NewError(fmt.Sprintf("the condition of %s must be bool, found %s", construct, t)).
		WithCode(diagnostics.ErrConditionNotBool).
		WithPrimaryLabel(e.Loc(), "not a bool"))
}

func (c *Checker) checkIf(s *ast.IfStmt) {
	c.checkCondition(s.Cond, "if")
	c.checkBlock(s.Then, table.ScopeIf)
	switch e := s.Else.(type) {
	case *ast.IfStmt:
		c.checkIf(e)
	case *ast.Block:
		c.checkBlock(e, table.ScopeElse)
	}
}

func (c *Checker) checkFor(s *ast.ForStmt) {
	scope := c.childScope("for", s.Loc(), table.ScopeFor)
	defer c.enterScope(scope)()
	if s.Init != nil {
		c.checkDeclStmt(s.Init)
	}
	if s.Cond != nil {
		c.checkCondition(s.Cond, "for")
	}
	c.checkStmts(s.Body.Stmts)
	if s.Post != nil {
		c.checkStmt(s.Post)
	}
}

func (c *Checker) checkForeach(s *ast.ForeachStmt) {
	scope := c.childScope("foreach", s.Loc(), table.ScopeForeach)
	defer c.enterScope(scope)()

	it := c.checkExpr(s.Iterable, nil)
	item := types.TypeUnresolved
	if !it.IsUnresolved() {
		base := it.RemoveRef()
		switch {
		case base.IsArray():
			item = base.Contained()
		case base.Is(types.TYPE_STRING):
			item = types.TypeChar
		default:
			c.softError(diagnostics.NewError(fmt.Sprintf("cannot iterate over a value of type %s", it)).
				WithCode(diagnostics.ErrNotIndexable).
				WithPrimaryLabel(s.Iterable.Loc(), "not iterable"))
		}
	}

	if s.IndexName != "" {
		indexType := types.TypeLong
		if s.IndexType != nil {
			indexType = c.resolveType(s.IndexType)
			if !indexType.IsUnresolved() && !indexType.IsInteger() {
				c.softError(diagnostics.NewError(fmt.Sprintf("the index of foreach must be integral, found %s", indexType)).
					WithCode(diagnostics.ErrTypeMismatch).
					WithPrimaryLabel(s.IndexType.Loc(), "not an integer"))
			}
		}
		idx := c.declare(scope, s.IndexName, symbols.SymbolVariable, s, s.Loc())
		idx.Type = indexType
		idx.MarkInitialized()
	}

	itemType := item
	if s.ItemType != nil {
		declared := c.resolveType(s.ItemType)
		if !declared.IsDyn() {
			if !item.IsUnresolved() && !declared.IsUnresolved() && !declared.RemoveRef().Matches(item, true, false, true) {
				c.mismatch(s.ItemType.Loc(), declared, item)
			}
			itemType = declared
		}
	}
	itemSym := c.declare(scope, s.ItemName, symbols.SymbolVariable, s, s.Loc())
	itemSym.Type = itemType
	itemSym.MarkInitialized()
	res := s.Result(c.manIdx)
	res.Type = itemType
	res.Entry = itemSym

	c.checkStmts(s.Body.Stmts)
}

func (c *Checker) checkJump(keyword string, count int, l *source.Location, code string) {
	if count < 1 {
		c.softError(diagnostics.NewError(fmt.Sprintf("'%s' needs a positive count", keyword)).
			WithCode(code).
			WithPrimaryLabel(l, "invalid count"))
		return
	}
	depth := c.scope.LoopDepth()
	switch {
	case depth == 0:
		c.softError(diagnostics.NewError(fmt.Sprintf("'%s' outside of a loop", keyword)).
			WithCode(code).
			WithPrimaryLabel(l, "no enclosing loop"))
	case count > depth:
		c.softError(diagnostics.NewError(fmt.Sprintf("cannot %s %d loops, only %d enclose this statement", keyword, count, depth)).
			WithCode(code).
			WithPrimaryLabel(l, fmt.Sprintf("%s loop does not exist", numeric.NumericToOrdinal(count))))
	}
}

func (c *Checker) checkSwitch(s *ast.SwitchStmt) {
	subject := c.checkExpr(s.Subject, nil)
	valid := subject.IsUnresolved() || subject.RemoveRef().IsOneOf(
		types.TYPE_INT, types.TYPE_SHORT, types.TYPE_LONG, types.TYPE_BYTE, types.TYPE_CHAR, types.TYPE_BOOL, types.TYPE_ENUM)
	if !valid {
		c.softError(diagnostics.NewError(fmt.Sprintf("cannot switch on a value of type %s", subject)).
			WithCode(diagnostics.ErrInvalidOperation).
			WithPrimaryLabel(s.Subject.Loc(), "not switchable"))
	}

	prev := c.fallthroughLegal
	defer func() { c.fallthroughLegal = prev }()

	for i, cs := range s.Cases {
		for _, v := range cs.Values {
			vt := c.checkExpr(v, subject)
			if !valid || subject.IsUnresolved() || vt.IsUnresolved() {
				continue
			}
			if !subject.RemoveRef().Matches(vt.RemoveRef(), true, false, false) {
				c.softError(diagnostics.NewError(fmt.Sprintf("case value of type %s does not match the switch subject of type %s", vt, subject)).
					WithCode(diagnostics.ErrTypeMismatch).
					WithPrimaryLabel(v.Loc(), fmt.Sprintf("expected %s", subject)))
			}
		}
		c.fallthroughLegal = i < len(s.Cases)-1
		c.checkBlock(cs.Body, table.ScopeCase)
	}
	if s.Default != nil {
		c.fallthroughLegal = false
		c.checkBlock(s.Default, table.ScopeDefault)
	}
}

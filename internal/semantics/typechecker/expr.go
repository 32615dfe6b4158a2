package typechecker

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spicelang/spice-sub000/internal/diagnostics"
	"github.com/spicelang/spice-sub000/internal/frontend/ast"
	"github.com/spicelang/spice-sub000/internal/semantics/manager"
	"github.com/spicelang/spice-sub000/internal/semantics/matcher"
	"github.com/spicelang/spice-sub000/internal/semantics/oprules"
	"github.com/spicelang/spice-sub000/internal/semantics/symbols"
	"github.com/spicelang/spice-sub000/internal/semantics/table"
	"github.com/spicelang/spice-sub000/internal/source"
	"github.com/spicelang/spice-sub000/internal/tokens"
	"github.com/spicelang/spice-sub000/internal/types"
	"github.com/spicelang/spice-sub000/internal/utils/numeric"
	str "github.com/spicelang/spice-sub000/internal/utils/strings"
)

// checkExpr computes the type of e and records it for the current manifestation.
// expected only steers literals; it is never enforced here.
func (c *Checker) checkExpr(e ast.Expression, expected *types.Type) *types.Type {
	if e == nil {
		return types.TypeUnresolved
	}
	var t *types.Type
	switch n := e.(type) {
	case *ast.BasicLit:
		t = c.checkLiteral(n, expected)
	case *ast.IdentifierExpr:
		t = c.checkIdent(n, true)
	case *ast.SelectorExpr:
		t = c.checkSelector(n)
	case *ast.CallExpr:
		t = c.checkCall(n)
	case *ast.BinaryExpr:
		t = c.checkBinary(n)
	case *ast.UnaryExpr:
		t = c.checkUnary(n)
	case *ast.PostfixExpr:
		t = c.checkIncDec(n, n.X, n.Op)
	case *ast.IndexExpr:
		t = c.checkIndex(n)
	case *ast.TernaryExpr:
		t = c.checkTernary(n, expected)
	case *ast.CastExpr:
		t = c.checkCast(n)
	case *ast.SizeofExpr:
		t = c.checkSizeof(n)
	case *ast.StructInit:
		t = c.checkStructInit(n)
	case *ast.ArrayInit:
		t = c.checkArrayInit(n, expected)
	case *ast.LambdaExpr:
		t = c.checkLambda(n)
	}
	if t == nil {
		t = types.TypeUnresolved
	}
	e.Result(c.manIdx).Type = t
	return t
}

// checkLhs checks an assignment target. Writing a variable is not a read.
func (c *Checker) checkLhs(e ast.Expression) *types.Type {
	if id, ok := e.(*ast.IdentifierExpr); ok {
		t := c.checkIdent(id, false)
		id.Result(c.manIdx).Type = t
		return t
	}
	return c.checkExpr(e, nil)
}

func (c *Checker) checkLiteral(n *ast.BasicLit, expected *types.Type) *types.Type {
	switch n.Kind {
	case ast.INT:
		if expected != nil {
			e := expected.RemoveRef()
			if e.IsOneOf(types.TYPE_SHORT, types.TYPE_LONG, types.TYPE_BYTE) {
				if v, err := numeric.NewNumericValue(n.Value); err == nil && v.FitsInBitSize(bitSize(e), isSigned(e)) {
					return e.Unqualified()
				}
			}
			if e.Is(types.TYPE_INT) {
				return c.checkIntLiteral(n, types.TypeInt, isSigned(e))
			}
		}
		return c.checkIntLiteral(n, types.TypeInt, true)
	case ast.SHORT:
		return c.checkIntLiteral(n, types.TypeShort, true)
	case ast.LONG:
		return c.checkIntLiteral(n, types.TypeLong, true)
	case ast.DOUBLE:
		if _, err := numeric.StringToFloat(n.Value); err != nil {
			c.softError(diagnostics.NewError(fmt.Sprintf("invalid double literal '%s'", n.Value)).
				WithCode(diagnostics.ErrTypeMismatch).
				WithPrimaryLabel(n.Loc(), "not a number"))
			return types.TypeUnresolved
		}
		return types.TypeDouble
	case ast.CHAR:
		return types.TypeChar
	case ast.STRING:
		return types.TypeString
	case ast.BOOL:
		return types.TypeBool
	}
	return types.TypeUnresolved
}

func (c *Checker) checkIntLiteral(n *ast.BasicLit, t *types.Type, signed bool) *types.Type {
	v, err := numeric.NewNumericValue(n.Value)
	if err != nil {
		c.softError(diagnostics.NewError(fmt.Sprintf("invalid integer literal '%s'", n.Value)).
			WithCode(diagnostics.ErrTypeMismatch).
			WithPrimaryLabel(n.Loc(), "not a number"))
		return types.TypeUnresolved
	}
	if !v.FitsInBitSize(bitSize(t), signed) {
		c.softError(diagnostics.NewError(fmt.Sprintf("the literal %s does not fit into %s", n.Value, t)).
			WithCode(diagnostics.ErrTypeMismatch).
			WithPrimaryLabel(n.Loc(), "out of range"))
	}
	return t
}

func bitSize(t *types.Type) int {
	switch t.Kind() {
	case types.TYPE_BYTE, types.TYPE_CHAR:
		return 8
	case types.TYPE_SHORT:
		return 16
	case types.TYPE_LONG:
		return 64
	}
	return 32
}

func isSigned(t *types.Type) bool {
	return !t.Is(types.TYPE_BYTE) && !t.HasQual(types.QualUnsigned)
}

// checkIdent resolves a name used as a value. read is false for assignment targets.
func (c *Checker) checkIdent(n *ast.IdentifierExpr, read bool) *types.Type {
	res := n.Result(c.manIdx)
	sym := c.scope.Lookup(n.Name)
	if sym == nil {
		if t := c.functionValue(c.scope, n.Name, res, n.Loc()); t != nil {
			return t
		}
		c.softError(diagnostics.NewError(fmt.Sprintf("undefined symbol '%s'", n.Name)).
			WithCode(diagnostics.ErrUndefinedSymbol).
			WithPrimaryLabel(n.Loc(), "not found in this scope"))
		return types.TypeUnresolved
	}
	res.Entry = sym
	if !sym.IsValue() {
		c.softError(diagnostics.NewError(fmt.Sprintf("%s '%s' cannot be used as a value", sym.Kind, sym.Name)).
			WithCode(diagnostics.ErrInvalidOperation).
			WithPrimaryLabel(n.Loc(), "not a value"))
		return types.TypeUnresolved
	}
	if read {
		sym.Used = true
		if !sym.IsInitialized() {
			c.useBeforeInit(sym, n.Loc())
		}
	}
	if sym.Type == nil || sym.Type.IsDyn() {
		return types.TypeUnresolved
	}
	return sym.Type
}

// useBeforeInit reports a read of a local variable that holds no value yet.
// The variable counts as initialized afterwards, so it is reported once.
func (c *Checker) useBeforeInit(sym *symbols.Symbol, loc *source.Location) {
	if sym.IsGlobal || (sym.Kind != symbols.SymbolVariable && sym.Kind != symbols.SymbolConstant) {
		return
	}
	d := diagnostics.NewError(fmt.Sprintf("variable '%s' is used before it is initialized", sym.Name)).
		WithCode(diagnostics.ErrUseBeforeInit).
		WithPrimaryLabel(loc, "not initialized")
	if sym.Decl != nil {
		d = d.WithSecondaryLabel(sym.Decl.Loc(), "declared here")
	}
	c.softError(d)
	sym.MarkInitialized()
}

// functionValue resolves a function name used as a value to a function
// pointer. It returns nil when no function of that name exists.
func (c *Checker) functionValue(scope *table.Scope, name string, res *ast.Resolved, loc *source.Location) *types.Type {
	var candidates []*manager.Function
	generic := false
	for _, f := range c.ctx.Managers.Functions.Lookup(scope, name, nil) {
		if f.IsGeneric() {
			generic = true
			continue
		}
		candidates = append(candidates, f)
	}
	switch {
	case len(candidates) == 1:
		man := candidates[0].Manifestations[0]
		res.Callee = man
		res.CallKind = ast.CallFctPtr
		return man.Type()
	case len(candidates) > 1:
		c.softError(diagnostics.NewError(fmt.Sprintf("function '%s' is overloaded, its address is ambiguous", name)).
			WithCode(diagnostics.ErrAmbiguousCall).
			WithPrimaryLabel(loc, "ambiguous function reference"))
		return types.TypeUnresolved
	case generic:
		c.softError(diagnostics.NewError(fmt.Sprintf("cannot take the address of generic function '%s'", name)).
			WithCode(diagnostics.ErrDynNotInferable).
			WithPrimaryLabel(loc, "template types unknown"))
		return types.TypeUnresolved
	}
	return nil
}

func (c *Checker) checkSelector(n *ast.SelectorExpr) *types.Type {
	if id, ok := n.X.(*ast.IdentifierExpr); ok {
		if sym := c.scope.Lookup(id.Name); sym != nil && sym.Type != nil {
			switch {
			case sym.Kind == symbols.SymbolImport:
				return c.checkImportedValue(n, id, sym)
			case sym.Kind == symbols.SymbolType && sym.Type.Is(types.TYPE_ENUM):
				return c.checkEnumItem(n, id, sym)
			}
		}
	}
	xt := c.checkExpr(n.X, nil)
	if xt.IsUnresolved() {
		return xt
	}
	return c.fieldAccess(n, xt)
}

func (c *Checker) checkEnumItem(n *ast.SelectorExpr, id *ast.IdentifierExpr, sym *symbols.Symbol) *types.Type {
	sym.Used = true
	idRes := id.Result(c.manIdx)
	idRes.Entry = sym
	idRes.Type = sym.Type

	scope := c.ctx.Arena.Get(sym.Type.BodyScope())
	if scope == nil {
		return types.TypeUnresolved
	}
	item := scope.LookupStrict(n.Field)
	if item == nil {
		c.softError(diagnostics.NewError(fmt.Sprintf("enum %s has no item '%s'", sym.Name, n.Field)).
			WithCode(diagnostics.ErrFieldNotFound).
			WithPrimaryLabel(n.Loc(), "unknown item"))
		return types.TypeUnresolved
	}
	n.Result(c.manIdx).Entry = item
	return item.Type
}

func (c *Checker) checkImportedValue(n *ast.SelectorExpr, id *ast.IdentifierExpr, sym *symbols.Symbol) *types.Type {
	sym.Used = true
	c.markImportUsed(id.Name)
	idRes := id.Result(c.manIdx)
	idRes.Entry = sym
	idRes.Type = sym.Type

	dep := c.importedModule(id.Name)
	if dep == nil {
		return types.TypeUnresolved
	}
	entry := c.exportedEntry(dep, id.Name, n.Field, n.Loc())
	if entry == nil {
		return types.TypeUnresolved
	}
	res := n.Result(c.manIdx)
	if entry.Symbol == nil {
		if t := c.functionValue(dep.Scope, n.Field, res, n.Loc()); t != nil {
			return t
		}
		return types.TypeUnresolved
	}
	if !entry.Symbol.IsValue() {
		c.softError(diagnostics.NewError(fmt.Sprintf("%s '%s.%s' cannot be used as a value", entry.Symbol.Kind, id.Name, n.Field)).
			WithCode(diagnostics.ErrInvalidOperation).
			WithPrimaryLabel(n.Loc(), "not a value"))
		return types.TypeUnresolved
	}
	entry.Symbol.Used = true
	res.Entry = entry.Symbol
	if entry.Symbol.Type == nil || entry.Symbol.Type.IsDyn() {
		return types.TypeUnresolved
	}
	return entry.Symbol.Type
}

// fieldAccess resolves x.field on a struct value, a pointer to one or a reference
func (c *Checker) fieldAccess(n *ast.SelectorExpr, xt *types.Type) *types.Type {
	base := xt.AutoDeref()
	var man *manager.StructManifestation
	if base.Is(types.TYPE_STRUCT) {
		man = c.ctx.Managers.Structs.Get(base)
	}
	if man == nil {
		c.softError(diagnostics.NewError(fmt.Sprintf("type %s has no field '%s'", xt, n.Field)).
			WithCode(diagnostics.ErrFieldNotFound).
			WithPrimaryLabel(n.Loc(), "no such field"))
		return types.TypeUnresolved
	}

	field := c.ctx.Arena.Get(man.BodyScope()).LookupStrict(n.Field)
	if field == nil || !field.IsField() {
		c.softError(diagnostics.NewError(fmt.Sprintf("struct %s has no field '%s'", base, n.Field)).
			WithCode(diagnostics.ErrFieldNotFound).
			WithPrimaryLabel(n.Loc(), "no such field"))
		return types.TypeUnresolved
	}
	if !field.IsPublic && man.File() != c.mod.FilePath {
		c.softError(diagnostics.NewError(fmt.Sprintf("field '%s' of struct %s is not public", n.Field, base)).
			WithCode(diagnostics.ErrSymbolNotVisible).
			WithPrimaryLabel(n.Loc(), "not visible here"))
	}
	field.Used = true
	n.Result(c.manIdx).Entry = field

	t := field.Type
	if base.IsConst() {
		t = t.WithQuals(types.QualConst)
	}
	return t
}

func (c *Checker) checkBinary(n *ast.BinaryExpr) *types.Type {
	lt := c.checkExpr(n.X, nil)
	var hint *types.Type
	if l := lt.RemoveRef(); l.IsInteger() || l.Is(types.TYPE_BYTE) {
		hint = l
	}
	rt := c.checkExpr(n.Y, hint)
	if lt.IsUnresolved() || rt.IsUnresolved() {
		return types.TypeUnresolved
	}
	if t, ok := c.operatorOverload(n, n.Result(c.manIdx), n.Op, []ast.Expression{n.X, n.Y}, []*types.Type{lt, rt}); ok {
		return t
	}
	t, err := c.binaryRule(n.Op, lt, rt, n.Y)
	if err != nil {
		c.operatorError(err, n.Loc())
		return types.TypeUnresolved
	}
	return t
}

func (c *Checker) binaryRule(op tokens.TOKEN, lt, rt *types.Type, rhs ast.Expression) (*types.Type, error) {
	return oprules.Binary(op, lt, rt, oprules.Context{Unsafe: c.isUnsafe(), RhsIsIntLiteral: isIntLiteral(rhs)})
}

func isIntLiteral(e ast.Expression) bool {
	lit, ok := e.(*ast.BasicLit)
	return ok && (lit.Kind == ast.INT || lit.Kind == ast.SHORT || lit.Kind == ast.LONG)
}

// operatorOverload resolves an operator with a struct operand to its op.* function.
// ok is false when no overload applies and the built-in rules decide.
func (c *Checker) operatorOverload(node ast.Node, res *ast.Resolved, op tokens.TOKEN, args []ast.Expression, argTypes []*types.Type) (*types.Type, bool) {
	hasStruct := false
	for _, t := range argTypes {
		if t.RemoveRef().Is(types.TYPE_STRUCT) {
			hasStruct = true
		}
	}
	if !hasStruct {
		return nil, false
	}
	name, ok := tokens.OverloadName(op)
	if !ok {
		return nil, false
	}
	man, err := c.matchOperator(name, argTypes, node)
	if err != nil {
		c.callError(err, node.Loc())
		return types.TypeUnresolved, true
	}
	if man == nil {
		return nil, false
	}
	res.Callee = man
	res.CallKind = ast.CallFunction
	c.bindArgs(args, man.ParamTypes, argTypes)
	if man.ReturnType == nil {
		return types.TypeVoid, true
	}
	return man.ReturnType, true
}

// matchOperator looks for an overload in this module first, then in its imports
func (c *Checker) matchOperator(name string, argTypes []*types.Type, node ast.Node) (*manager.FunctionManifestation, error) {
	man, err := c.ctx.Managers.Functions.Match(c.scope, name, nil, argTypes, nil, false, node)
	if err != nil || man != nil {
		return man, err
	}
	for _, imp := range c.mod.Imports {
		if imp.Module == nil {
			continue
		}
		man, err := c.ctx.Managers.Functions.Match(imp.Module.Scope, name, nil, argTypes, nil, false, node)
		if err != nil {
			return nil, err
		}
		if man != nil && man.Decl.Quals.Has(types.QualPublic) {
			c.markImportUsed(imp.Alias)
			return man, nil
		}
	}
	return nil, nil
}

// operatorError reports a rejected operator. Unsafe operations outside of
// unsafe blocks abort the module.
func (c *Checker) operatorError(err error, loc *source.Location) {
	if errors.Is(err, oprules.ErrUnsafeOperation) {
		c.hardError(diagnostics.NewError(err.Error()).
			WithCode(diagnostics.ErrUnsafeOperation).
			WithPrimaryLabel(loc, "unsafe operation").
			WithHelp("wrap the operation in an unsafe block"))
	}
	c.softError(diagnostics.NewError(err.Error()).
		WithCode(diagnostics.ErrInvalidOperation).
		WithPrimaryLabel(loc, "invalid operation"))
}

func (c *Checker) checkUnary(n *ast.UnaryExpr) *types.Type {
	switch n.Op {
	case tokens.ADDRESS_OF_TOKEN:
		t := c.checkLhs(n.X)
		if t.IsUnresolved() {
			return t
		}
		if !c.isLvalue(n.X) {
			c.softError(diagnostics.NewError("cannot take the address of a temporary value").
				WithCode(diagnostics.ErrInvalidOperation).
				WithPrimaryLabel(n.X.Loc(), "not addressable"))
			return types.TypeUnresolved
		}
		if sym := c.symbolOf(n.X); sym != nil {
			sym.Used = true
			sym.MarkInitialized()
			c.scope.MarkWritten(sym)
		}
		return t.RemoveRef().ToPtr()
	case tokens.PLUS_PLUS_TOKEN, tokens.MINUS_MINUS_TOKEN:
		return c.checkIncDec(n, n.X, n.Op)
	}

	t := c.checkExpr(n.X, nil)
	if t.IsUnresolved() {
		return t
	}
	result, err := oprules.Unary(n.Op, t, oprules.Context{Unsafe: c.isUnsafe()})
	if err != nil {
		c.operatorError(err, n.Loc())
		return types.TypeUnresolved
	}
	return result
}

// checkIncDec checks ++ and -- in prefix and postfix position
func (c *Checker) checkIncDec(node ast.Expression, x ast.Expression, op tokens.TOKEN) *types.Type {
	t := c.checkExpr(x, nil)
	if t.IsUnresolved() {
		return t
	}
	if !c.isLvalue(x) {
		c.softError(diagnostics.NewError(fmt.Sprintf("'%s' needs an assignable operand", op)).
			WithCode(diagnostics.ErrInvalidOperation).
			WithPrimaryLabel(x.Loc(), "not assignable"))
		return types.TypeUnresolved
	}
	sym := c.symbolOf(x)
	if (sym != nil && sym.IsConst()) || t.RemoveRef().IsConst() {
		c.softError(diagnostics.NewError(fmt.Sprintf("cannot modify %s", c.describe(x))).
			WithCode(diagnostics.ErrConstantReassignment).
			WithPrimaryLabel(x.Loc(), "constant"))
		return t
	}
	if sym != nil {
		c.scope.MarkWritten(sym)
	}
	if result, ok := c.operatorOverload(node, node.Result(c.manIdx), op, []ast.Expression{x}, []*types.Type{t}); ok {
		return result
	}
	result, err := oprules.Unary(op, t, oprules.Context{Unsafe: c.isUnsafe()})
	if err != nil {
		c.operatorError(err, node.Loc())
		return types.TypeUnresolved
	}
	return result
}

func (c *Checker) checkIndex(n *ast.IndexExpr) *types.Type {
	xt := c.checkExpr(n.X, nil)
	it := c.checkExpr(n.Index, nil)
	if xt.IsUnresolved() || it.IsUnresolved() {
		return types.TypeUnresolved
	}
	if t, ok := c.operatorOverload(n, n.Result(c.manIdx), tokens.SUBSCRIPT_TOKEN, []ast.Expression{n.X, n.Index}, []*types.Type{xt, it}); ok {
		return t
	}

	t, err := oprules.Subscript(xt, it)
	switch {
	case errors.Is(err, oprules.ErrNotIndexable):
		c.softError(diagnostics.NewError(fmt.Sprintf("a value of type %s cannot be indexed", xt)).
			WithCode(diagnostics.ErrNotIndexable).
			WithPrimaryLabel(n.X.Loc(), "not indexable"))
		return types.TypeUnresolved
	case err != nil:
		c.softError(diagnostics.NewError(err.Error()).
			WithCode(diagnostics.ErrInvalidOperation).
			WithPrimaryLabel(n.Index.Loc(), "index must be integral"))
		return types.TypeUnresolved
	}

	container := xt.RemoveRef()
	if lit, ok := n.Index.(*ast.BasicLit); ok && container.IsArray() && container.ArraySize() > 0 {
		if idx, err := strconv.Atoi(lit.Value); err == nil && idx >= container.ArraySize() {
			c.softError(diagnostics.NewError(fmt.Sprintf("index %d is out of bounds for an array of size %d", idx, container.ArraySize())).
				WithCode(diagnostics.ErrInvalidArraySize).
				WithPrimaryLabel(n.Index.Loc(), "out of bounds"))
		}
	}
	if container.IsConst() && !container.IsPtr() {
		t = t.WithQuals(types.QualConst)
	}
	return t
}

func (c *Checker) checkTernary(n *ast.TernaryExpr, expected *types.Type) *types.Type {
	c.checkCondition(n.Cond, "the ternary operator")
	tt := c.checkExpr(n.Then, expected)
	et := c.checkExpr(n.Else, expected)
	if tt.IsUnresolved() || et.IsUnresolved() {
		return types.TypeUnresolved
	}
	a, b := tt.RemoveRef(), et.RemoveRef()
	if !a.Matches(b, true, false, true) && !b.Matches(a, true, false, true) {
		c.softError(diagnostics.NewError(fmt.Sprintf("the branches of the ternary operator have different types %s and %s", tt, et)).
			WithCode(diagnostics.ErrTypeMismatch).
			WithPrimaryLabel(n.Else.Loc(), fmt.Sprintf("expected %s", tt)))
		return types.TypeUnresolved
	}
	return a
}

func (c *Checker) checkCast(n *ast.CastExpr) *types.Type {
	dst := c.resolveType(n.Type)
	src := c.checkExpr(n.X, nil)
	if dst.IsUnresolved() || src.IsUnresolved() {
		return types.TypeUnresolved
	}
	identity, err := oprules.Cast(dst, src)
	if err != nil {
		c.softError(diagnostics.NewError(err.Error()).
			WithCode(diagnostics.ErrInvalidCast).
			WithPrimaryLabel(n.Loc(), "invalid cast"))
		return types.TypeUnresolved
	}
	if identity {
		c.warn(diagnostics.NewWarning(fmt.Sprintf("the value already has the type %s", dst)).
			WithCode(diagnostics.WarnIdentityCast).
			WithPrimaryLabel(n.Loc(), "unnecessary cast").
			WithHelp("remove the cast"))
	}
	return dst
}

func (c *Checker) checkSizeof(n *ast.SizeofExpr) *types.Type {
	if n.Type != nil {
		if c.resolveType(n.Type).IsUnresolved() {
			return types.TypeUnresolved
		}
	} else if c.checkExpr(n.X, nil).IsUnresolved() {
		return types.TypeUnresolved
	}
	return types.TypeLong
}

func (c *Checker) checkStructInit(n *ast.StructInit) *types.Type {
	decl, scope := c.lookupStruct(n.Type)
	if decl == nil {
		t := c.resolveType(n.Type)
		c.checkExprs(n.Fields)
		if !t.IsUnresolved() {
			c.softError(diagnostics.NewError(fmt.Sprintf("%s is not a struct", t)).
				WithCode(diagnostics.ErrNotAStruct).
				WithPrimaryLabel(n.Type.Loc(), "not a struct"))
		}
		return types.TypeUnresolved
	}

	var man *manager.StructManifestation
	var valueTypes []*types.Type
	if decl.IsGeneric() && len(n.Type.TemplateArgs) == 0 {
		if n.Type.Module != "" {
			c.markImportUsed(n.Type.Module)
		}
		valueTypes = c.checkExprs(n.Fields)
		if anyUnresolved(valueTypes) {
			return types.TypeUnresolved
		}
		if man = c.inferStruct(decl, scope, n, valueTypes); man == nil {
			return types.TypeUnresolved
		}
	} else {
		t := c.resolveType(n.Type)
		if t.IsUnresolved() || !t.Is(types.TYPE_STRUCT) {
			c.checkExprs(n.Fields)
			return types.TypeUnresolved
		}
		man = c.ctx.Managers.Structs.Get(t)
	}

	fields := c.ctx.Arena.Get(man.BodyScope()).Fields()
	if len(n.Fields) > 0 && len(n.Fields) != len(fields) {
		if valueTypes == nil {
			c.checkExprs(n.Fields)
		}
		c.softError(diagnostics.NewError(fmt.Sprintf("struct %s has %d %s, but %d %s given", man.Type,
			len(fields), str.Pluralize("field", "fields", len(fields)), len(n.Fields), str.Pluralize("value was", "values were", len(n.Fields)))).
			WithCode(diagnostics.ErrWrongArgumentCount).
			WithPrimaryLabel(n.Loc(), "wrong number of values"))
		return man.Type
	}
	for i, value := range n.Fields {
		ft := fields[i].Type
		var vt *types.Type
		if valueTypes != nil {
			vt = valueTypes[i]
		} else {
			vt = c.checkExpr(value, ft)
		}
		if !c.assignable(ft, vt, value) {
			c.softError(diagnostics.NewError(fmt.Sprintf("field '%s' of %s expects %s, found %s", fields[i].Name, man.Type, ft, vt)).
				WithCode(diagnostics.ErrTypeMismatch).
				WithPrimaryLabel(value.Loc(), fmt.Sprintf("expected %s", ft)))
			continue
		}
		if _, special := c.specialMethods(ft); special != nil && c.isLvalue(value) {
			if cc := copyCtorOf(special); cc != nil {
				value.Result(c.manIdx).CalledCopyCtor = cc
			}
		}
	}
	return man.Type
}

// inferStruct derives the template types of a generic struct from its field values
func (c *Checker) inferStruct(decl *manager.Struct, scope *table.Scope, n *ast.StructInit, valueTypes []*types.Type) *manager.StructManifestation {
	fields := c.ctx.Arena.Get(decl.BaseScope).Fields()
	if len(fields) != len(valueTypes) {
		c.softError(diagnostics.NewError(fmt.Sprintf("cannot infer the template types of %s from %d values", decl.Name, len(valueTypes))).
			WithCode(diagnostics.ErrTemplateArgCount).
			WithPrimaryLabel(n.Loc(), "template types unknown").
			WithHelp("spell the template types out"))
		return nil
	}
	mapping := matcher.TypeMapping{}
	resolver := genericResolver(decl.TemplateTypes)
	for i, f := range fields {
		if !matcher.MatchRequestedToCandidateType(f.Type, valueTypes[i], mapping, resolver, false) {
			c.softError(diagnostics.NewError(fmt.Sprintf("field '%s' of %s expects %s, found %s", f.Name, decl.Name, f.Type, valueTypes[i])).
				WithCode(diagnostics.ErrTypeMismatch).
				WithPrimaryLabel(n.Fields[i].Loc(), fmt.Sprintf("expected %s", f.Type)))
			return nil
		}
	}
	return c.manifestInferred(decl, scope, mapping, n)
}

// manifestInferred creates the manifestation of decl for an inferred mapping
func (c *Checker) manifestInferred(decl *manager.Struct, scope *table.Scope, mapping matcher.TypeMapping, node ast.Node) *manager.StructManifestation {
	args := make([]*types.Type, len(decl.TemplateTypes))
	for i, g := range decl.TemplateTypes {
		t, ok := mapping[g.Name()]
		if !ok {
			c.softError(diagnostics.NewError(fmt.Sprintf("cannot infer the template type %s of %s", g.Name(), decl.Name)).
				WithCode(diagnostics.ErrTemplateArgCount).
				WithPrimaryLabel(node.Loc(), "template type unknown").
				WithHelp("spell the template types out"))
			return nil
		}
		args[i] = t
	}
	man, err := c.ctx.Managers.Structs.Match(scope, decl.Name, args, node)
	if err != nil {
		c.templateError(err, node.Loc())
		return nil
	}
	return man
}

func genericResolver(generics []*types.GenericType) matcher.ResolverFn {
	return func(name string) *types.GenericType {
		for _, g := range generics {
			if g.Name() == name {
				return g
			}
		}
		return nil
	}
}

func (c *Checker) checkArrayInit(n *ast.ArrayInit, expected *types.Type) *types.Type {
	var itemType *types.Type
	if expected != nil && expected.RemoveRef().IsArray() {
		itemType = expected.RemoveRef().Contained()
	}
	if len(n.Items) == 0 {
		if itemType == nil {
			c.softError(diagnostics.NewError("cannot infer the item type of an empty array").
				WithCode(diagnostics.ErrDynNotInferable).
				WithPrimaryLabel(n.Loc(), "item type unknown"))
			return types.TypeUnresolved
		}
		return expected.RemoveRef()
	}

	failed := false
	for i, item := range n.Items {
		t := c.checkExpr(item, itemType)
		if t.IsUnresolved() {
			failed = true
			continue
		}
		if itemType == nil || itemType.IsDyn() {
			itemType = t.RemoveRef()
			continue
		}
		if !c.assignable(itemType, t, item) {
			c.softError(diagnostics.NewError(fmt.Sprintf("the %s array item has the type %s, expected %s", numeric.NumericToOrdinal(i+1), t, itemType)).
				WithCode(diagnostics.ErrTypeMismatch).
				WithPrimaryLabel(item.Loc(), fmt.Sprintf("expected %s", itemType)))
			failed = true
		}
	}
	if failed || itemType == nil {
		return types.TypeUnresolved
	}
	return itemType.ToArr(len(n.Items))
}

func (c *Checker) checkLambda(n *ast.LambdaExpr) *types.Type {
	scope := c.childScope("lambda", n.Loc(), table.ScopeLambda)
	defer c.enterScope(scope)()

	params := make([]*types.Type, 0, len(n.Params))
	for _, p := range n.Params {
		t := c.resolveType(p.Type)
		sym := scope.LookupStrict(p.Name)
		if sym == nil {
			sym = c.declare(scope, p.Name, symbols.SymbolParameter, p, p.Loc())
		}
		sym.Type = t
		sym.MarkInitialized()
		params = append(params, t)
	}
	if anyUnresolved(params) {
		return types.TypeUnresolved
	}

	prevRet, prevFallthrough := c.ret, c.fallthroughLegal
	defer func() { c.ret, c.fallthroughLegal = prevRet, prevFallthrough }()
	c.fallthroughLegal = false

	if n.Value != nil {
		c.ret = &returnContext{Type: types.TypeDyn, IsLambda: true}
		t := c.checkExpr(n.Value, nil)
		switch {
		case t.IsUnresolved():
			return t
		case t.Is(types.TYPE_VOID):
			return types.NewProcedure(params)
		}
		return types.NewFunction(t.RemoveRef(), params)
	}

	var ret *types.Type
	if n.ReturnType != nil {
		ret = c.resolveType(n.ReturnType)
		if ret.IsUnresolved() {
			return ret
		}
		result := scope.LookupStrict("result")
		if result == nil {
			result, _ = scope.Insert("result", symbols.SymbolVariable, n)
		}
		result.Type = ret
	}
	c.ret = &returnContext{Type: ret, IsLambda: true}
	c.checkStmts(n.Body.Stmts)
	c.finishCallable("lambda", n.Loc(), n.Body, scope, ret != nil, false)

	for _, capture := range scope.Captures() {
		c.trace("  lambda captures %s (%s)", capture.Symbol.Name, capture.Mode)
	}
	if ret == nil {
		return types.NewProcedure(params)
	}
	return types.NewFunction(ret, params)
}

func (c *Checker) checkExprs(exprs []ast.Expression) []*types.Type {
	result := make([]*types.Type, len(exprs))
	for i, e := range exprs {
		result[i] = c.checkExpr(e, nil)
	}
	return result
}

// assignable reports whether a value of type src fits where dst is expected
// and records the implicit conversion on value
func (c *Checker) assignable(dst, src *types.Type, value ast.Expression) bool {
	if dst.IsUnresolved() || src.IsUnresolved() {
		return true
	}
	if conv, ok := manager.ClassifyConversion(dst, src, c.isUnsafe()); ok {
		if value != nil {
			value.Result(c.manIdx).Conversion = conv
		}
		return true
	}
	_, err := oprules.Binary(tokens.EQUALS_TOKEN, dst, src, oprules.Context{Unsafe: c.isUnsafe()})
	return err == nil
}

func (c *Checker) mismatch(loc *source.Location, expected, found *types.Type) {
	c.softError(diagnostics.NewError(fmt.Sprintf("type mismatch: expected %s, found %s", expected, found)).
		WithCode(diagnostics.ErrTypeMismatch).
		WithPrimaryLabel(loc, fmt.Sprintf("expected %s", expected)))
}

// isLvalue reports whether e denotes storage that can be assigned or addressed
func (c *Checker) isLvalue(e ast.Expression) bool {
	switch n := e.(type) {
	case *ast.IdentifierExpr:
		sym, ok := n.Result(c.manIdx).Entry.(*symbols.Symbol)
		return ok && sym.IsValue() && sym.Kind != symbols.SymbolEnumItem
	case *ast.SelectorExpr:
		sym, ok := n.Result(c.manIdx).Entry.(*symbols.Symbol)
		return ok && sym.IsField()
	case *ast.IndexExpr:
		return n.Result(c.manIdx).Callee == nil
	case *ast.UnaryExpr:
		return n.Op == tokens.DEREF_TOKEN
	}
	return false
}

// symbolOf returns the variable a plain identifier refers to
func (c *Checker) symbolOf(e ast.Expression) *symbols.Symbol {
	if id, ok := e.(*ast.IdentifierExpr); ok {
		if sym, ok := id.Result(c.manIdx).Entry.(*symbols.Symbol); ok {
			return sym
		}
	}
	return nil
}

func (c *Checker) describe(e ast.Expression) string {
	if sym, ok := e.Result(c.manIdx).Entry.(*symbols.Symbol); ok {
		return fmt.Sprintf("%s '%s'", sym.Kind, sym.Name)
	}
	return "expression"
}

package typechecker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spicelang/spice-sub000/internal/context_v2"
	"github.com/spicelang/spice-sub000/internal/diagnostics"
	"github.com/spicelang/spice-sub000/internal/frontend/ast"
	"github.com/spicelang/spice-sub000/internal/frontend/ast/asttest"
	"github.com/spicelang/spice-sub000/internal/semantics/synth"
	"github.com/spicelang/spice-sub000/internal/tokens"
	"github.com/spicelang/spice-sub000/internal/types"
)

type checked struct {
	ctx  *context_v2.CompilerContext
	mod  *context_v2.Module
	hard *diagnostics.HardError
}

// analyze prepares the file and runs check passes until no manifestation is left unchecked
func analyze(t *testing.T, file *ast.File) *checked {
	t.Helper()
	ctx := context_v2.New(nil, context_v2.MapLoader{"main": file})
	mod, err := ctx.LoadModule("main")
	require.NoError(t, err)

	c := New(ctx, mod)
	res := &checked{ctx: ctx, mod: mod}
	if res.hard = runUnit(c.Prepare); res.hard != nil {
		return res
	}
	for i := 0; i < 4; i++ {
		if res.hard = runUnit(c.Check); res.hard != nil {
			return res
		}
	}
	return res
}

func runUnit(unit func()) (hard *diagnostics.HardError) {
	defer func() {
		if r := recover(); r != nil {
			he, ok := diagnostics.AsHardError(r)
			if !ok {
				panic(r)
			}
			hard = he
		}
	}()
	unit()
	return nil
}

func (r *checked) errorCodes() []string {
	var codes []string
	for _, d := range r.ctx.Diagnostics.Diagnostics() {
		if d.Severity == diagnostics.Error {
			codes = append(codes, d.Code)
		}
	}
	return codes
}

func (r *checked) messages(code string) []string {
	var msgs []string
	for _, d := range r.ctx.Diagnostics.WithCode(code) {
		msgs = append(msgs, d.Message)
	}
	return msgs
}

func TestTypeMismatchIsSoft(t *testing.T) {
	b := asttest.New("main.spice")
	file := b.File(
		b.Func("main", b.T("int"), nil,
			b.Decl("a", b.T("int"), b.Str("hello")),
			b.Decl("ok", b.T("long"), b.Int(3)),
			b.Decl("flag", b.T("bool"), b.Double(1.5)),
			b.Ret(b.Int(0)),
		),
	)

	res := analyze(t, file)
	require.Nil(t, res.hard)
	assert.Equal(t, []string{
		"type mismatch: expected int, found string",
		"type mismatch: expected bool, found double",
	}, res.messages(diagnostics.ErrTypeMismatch))
	assert.Equal(t, 2, res.ctx.Diagnostics.ErrorCount())
}

func TestIntLiteralAdoptsExpectedType(t *testing.T) {
	b := asttest.New("main.spice")
	short := b.Int(7)
	big := b.Int(70000)
	file := b.File(
		b.Func("main", b.T("int"), nil,
			b.Decl("s", b.T("short"), short),
			b.Decl("t", b.T("short"), big),
			b.Ret(b.Int(0)),
		),
	)

	res := analyze(t, file)
	assert.Equal(t, "short", short.EvaluatedType(0).String())
	assert.Equal(t, "int", big.EvaluatedType(0).String())
	assert.Len(t, res.messages(diagnostics.ErrTypeMismatch), 1)
}

func TestGenericStructManifestations(t *testing.T) {
	b := asttest.New("main.spice")
	file := b.File(
		b.GenericType("T"),
		b.Struct("Pair", asttest.Types(b.T("T")),
			b.Field("first", b.T("T")),
			b.Field("second", b.T("T")),
		),
		b.Func("main", b.T("int"), nil,
			b.Decl("a", b.T("Pair", b.T("int")), nil),
			b.Decl("b", b.T("Pair", b.T("string")), nil),
			b.Decl("c", b.T("Pair", b.T("int")), nil),
			b.Ret(b.Int(0)),
		),
	)

	res := analyze(t, file)
	require.Nil(t, res.hard)
	assert.Zero(t, res.ctx.Diagnostics.ErrorCount())

	decl := res.ctx.Managers.Structs.Lookup(res.mod.Scope, "Pair")
	require.NotNil(t, decl)
	require.Len(t, decl.Manifestations, 2)
	assert.Equal(t, "Pair<int>", decl.Manifestations[0].Type.String())
	assert.Equal(t, "Pair<string>", decl.Manifestations[1].Type.String())

	for _, man := range decl.Manifestations {
		assert.True(t, man.IsChecked(), man.String())
	}
}

func TestStructInitInfersTemplateTypes(t *testing.T) {
	b := asttest.New("main.spice")
	init := b.StructInit(b.T("Pair"), b.Int(1), b.Int(2))
	file := b.File(
		b.GenericType("T"),
		b.Struct("Pair", asttest.Types(b.T("T")),
			b.Field("first", b.T("T")),
			b.Field("second", b.T("T")),
		),
		b.Func("main", b.T("int"), nil,
			b.Decl("p", nil, init),
			b.Ret(b.Sel(b.Ident("p"), "first")),
		),
	)

	res := analyze(t, file)
	require.Nil(t, res.hard)
	assert.Zero(t, res.ctx.Diagnostics.ErrorCount(), res.ctx.Diagnostics.EmitAllToString())
	assert.Equal(t, "Pair<int>", init.EvaluatedType(0).String())
}

func TestHeapFieldGetsDestructor(t *testing.T) {
	b := asttest.New("main.spice")
	decl := b.Decl("box", b.T("Box"), nil)
	file := b.File(
		b.Struct("Box", nil,
			b.Field("size", b.T("int")),
			b.Field("data", asttest.Ptr(b.QT("int", "heap"))),
		),
		b.Func("main", b.T("int"), nil,
			decl,
			b.Ret(b.Sel(b.Ident("box"), "size")),
		),
	)

	res := analyze(t, file)
	require.Nil(t, res.hard)

	box := res.ctx.Managers.Structs.Lookup(res.mod.Scope, "Box")
	require.NotNil(t, box)
	special := res.ctx.Synth.Get(box.Manifestations[0])
	require.NotNil(t, special)
	require.NotNil(t, special.Dtor)
	require.Len(t, special.Dtor.Preamble, 1)
	assert.Equal(t, synth.Dealloc, special.Dtor.Preamble[0].Kind)
	assert.Equal(t, synth.DeallocRoutine, special.Dtor.Preamble[0].Routine)
	assert.Equal(t, "data", special.Dtor.Preamble[0].Field.Name)

	require.NotNil(t, special.CopyCtor)
	assert.Equal(t, synth.CopyValue, special.CopyCtor.Preamble[0].Kind)
	assert.Equal(t, synth.DuplicateHeap, special.CopyCtor.Preamble[1].Kind)

	called := decl.Result(0).CalledDtor
	require.NotNil(t, called)
	assert.Equal(t, "Box.dtor()", called.Signature())
}

func TestFunctionNotFound(t *testing.T) {
	b := asttest.New("main.spice")
	file := b.File(
		b.Func("foo", b.T("int"), asttest.Params(b.Param("a", b.T("int")), b.Param("b", b.T("int"))),
			b.Ret(b.Bin(b.Ident("a"), tokens.PLUS_TOKEN, b.Ident("b"))),
		),
		b.Func("foo", b.T("double"), asttest.Params(b.Param("a", b.T("double")), b.Param("b", b.T("double"))),
			b.Ret(b.Bin(b.Ident("a"), tokens.PLUS_TOKEN, b.Ident("b"))),
		),
		b.Func("main", b.T("int"), nil,
			b.Ret(b.Call(b.Ident("foo"), b.Int(1), b.Double(2.5))),
		),
	)

	res := analyze(t, file)
	require.Nil(t, res.hard)
	assert.Equal(t, []string{"function foo(int,double) could not be found"}, res.messages(diagnostics.ErrFunctionNotFound))
}

func TestOverloadResolutionAndDefaults(t *testing.T) {
	b := asttest.New("main.spice")
	intCall := b.Call(b.Ident("describe"), b.Int(1))
	strCall := b.Call(b.Ident("describe"), b.Str("x"))
	defCall := b.Call(b.Ident("scale"), b.Int(2))
	file := b.File(
		b.Func("describe", b.T("int"), asttest.Params(b.Param("v", b.T("int"))), b.Ret(b.Ident("v"))),
		b.Func("describe", b.T("int"), asttest.Params(b.Param("_v", b.T("string"))), b.Ret(b.Int(0))),
		b.Func("scale", b.T("int"),
			asttest.Params(b.Param("v", b.T("int")), b.DefaultParam("factor", b.T("int"), b.Int(10))),
			b.Ret(b.Bin(b.Ident("v"), tokens.MUL_TOKEN, b.Ident("factor"))),
		),
		b.Func("main", b.T("int"), nil,
			b.Decl("a", b.T("int"), intCall),
			b.Decl("c", b.T("int"), strCall),
			b.Ret(b.Bin(b.Bin(b.Ident("a"), tokens.PLUS_TOKEN, b.Ident("c")), tokens.PLUS_TOKEN, defCall)),
		),
	)

	res := analyze(t, file)
	require.Nil(t, res.hard)
	assert.Zero(t, res.ctx.Diagnostics.ErrorCount(), res.ctx.Diagnostics.EmitAllToString())
	assert.Equal(t, "describe(int)", intCall.Result(0).Callee.Signature())
	assert.Equal(t, "describe(string)", strCall.Result(0).Callee.Signature())
	assert.Equal(t, "scale(int,int)", defCall.Result(0).Callee.Signature())
}

func TestGenericFunctionManifestations(t *testing.T) {
	b := asttest.New("main.spice")
	idDef := b.Generic("id", asttest.Types(b.T("T")), b.T("T"), asttest.Params(b.Param("v", b.T("T"))),
		b.Ret(b.Ident("v")),
	)
	file := b.File(
		b.GenericType("T"),
		idDef,
		b.Func("main", b.T("int"), nil,
			b.Decl("s", b.T("string"), b.Call(b.Ident("id"), b.Str("a"))),
			b.Decl("d", b.T("double"), b.CallT(b.Ident("id"), asttest.Types(b.T("double")), b.Double(1.5))),
			b.Ret(b.Call(b.Ident("id"), b.Int(1))),
		),
	)

	res := analyze(t, file)
	require.Nil(t, res.hard)
	assert.Zero(t, res.ctx.Diagnostics.ErrorCount(), res.ctx.Diagnostics.EmitAllToString())

	fns := res.ctx.Managers.Functions.Lookup(res.mod.Scope, "id", nil)
	require.Len(t, fns, 1)
	require.Len(t, fns[0].Manifestations, 3)
	var sigs []string
	for _, man := range fns[0].Manifestations {
		sigs = append(sigs, man.Signature())
		assert.True(t, man.IsChecked())
	}
	assert.Equal(t, []string{"id(string)", "id(double)", "id(int)"}, sigs)

	// the body records one result slot per manifestation
	ret := idDef.Body.Stmts[0].(*ast.ReturnStmt)
	assert.Equal(t, "string", ret.Value.Result(0).Type.String())
	assert.Equal(t, "double", ret.Value.Result(1).Type.String())
	assert.Equal(t, "int", ret.Value.Result(2).Type.String())
}

func TestGenericConditionViolation(t *testing.T) {
	b := asttest.New("main.spice")
	file := b.File(
		b.GenericType("N", b.T("int"), b.T("double")),
		b.Struct("Num", asttest.Types(b.T("N")), b.Field("v", b.T("N"))),
		b.Func("main", b.T("int"), nil,
			b.Decl("_ok", b.T("Num", b.T("int")), nil),
			b.Decl("_bad", b.T("Num", b.T("string")), nil),
			b.Ret(b.Int(0)),
		),
	)

	res := analyze(t, file)
	require.Nil(t, res.hard)
	assert.Len(t, res.ctx.Diagnostics.WithCode(diagnostics.ErrGenericCondition), 1)
}

func TestMissingReturn(t *testing.T) {
	b := asttest.New("main.spice")
	file := b.File(
		b.Func("pick", b.T("int"), asttest.Params(b.Param("c", b.T("bool"))),
			b.If(b.Ident("c"), b.Block(b.Ret(b.Int(1))), nil),
		),
		b.Func("assigned", b.T("int"), nil,
			b.Assign(b.Ident("result"), b.Int(2)),
		),
	)

	res := analyze(t, file)
	require.Nil(t, res.hard)
	assert.Equal(t, []string{"not all code paths of 'pick' return a value"}, res.messages(diagnostics.ErrMissingReturn))
}

func TestBareReturnNeedsAssignedResult(t *testing.T) {
	b := asttest.New("main.spice")
	file := b.File(
		b.Func("early", b.T("int"), asttest.Params(b.Param("c", b.T("bool"))),
			b.Assign(b.Ident("result"), b.Int(2)),
			b.If(b.Ident("c"), b.Block(b.Ret(nil)), nil),
		),
		b.Func("bare", b.T("int"), asttest.Params(b.Param("c", b.T("bool"))),
			b.If(b.Ident("c"), b.Block(b.Ret(nil)), nil),
			b.Ret(b.Int(0)),
		),
	)

	res := analyze(t, file)
	require.Nil(t, res.hard)
	assert.Equal(t, []string{"return without a value in a function whose result is not assigned"},
		res.messages(diagnostics.ErrInvalidReturn))
}

func TestRedeclaredFunctionLeavesNoScope(t *testing.T) {
	b := asttest.New("main.spice")
	file := b.File(
		b.Func("twice", b.T("int"), nil, b.Ret(b.Int(1))),
		b.Func("twice", b.T("int"), nil, b.Ret(b.Int(2))),
	)

	res := analyze(t, file)
	require.NotNil(t, res.hard)
	assert.Equal(t, diagnostics.ErrRedeclaredSymbol, res.hard.Diag.Code)

	var bodies []string
	for _, child := range res.mod.Scope.ChildScopes() {
		bodies = append(bodies, child.Name)
	}
	require.Len(t, bodies, 1)
	assert.Contains(t, bodies[0], "fct:twice:")
}

func TestUnreachableCodeWarning(t *testing.T) {
	b := asttest.New("main.spice")
	file := b.File(
		b.Func("main", b.T("int"), nil,
			b.Ret(b.Int(0)),
			b.Decl("_late", b.T("int"), b.Int(1)),
		),
	)

	res := analyze(t, file)
	assert.Zero(t, res.ctx.Diagnostics.ErrorCount())
	assert.Len(t, res.ctx.Diagnostics.WithCode(diagnostics.WarnUnreachableCode), 1)
}

func TestUseBeforeInit(t *testing.T) {
	b := asttest.New("main.spice")
	file := b.File(
		b.Func("main", b.T("int"), nil,
			b.Decl("a", b.T("int"), nil),
			b.Decl("b", b.T("int"), b.Ident("a")),
			b.Decl("c", b.T("int"), nil),
			b.Assign(b.Ident("c"), b.Int(1)),
			b.Ret(b.Bin(b.Ident("b"), tokens.PLUS_TOKEN, b.Ident("c"))),
		),
	)

	res := analyze(t, file)
	assert.Equal(t, []string{"variable 'a' is used before it is initialized"}, res.messages(diagnostics.ErrUseBeforeInit))
}

func TestConstantReassignment(t *testing.T) {
	b := asttest.New("main.spice")
	file := b.File(
		b.Func("main", b.T("int"), nil,
			b.ConstDecl("limit", b.T("int"), b.Int(10)),
			b.Assign(b.Ident("limit"), b.Int(11)),
			b.Ret(b.Ident("limit")),
		),
	)

	res := analyze(t, file)
	assert.Equal(t, []string{"cannot assign to constant 'limit'"}, res.messages(diagnostics.ErrConstantReassignment))
}

func TestUnusedVariablesAndParameters(t *testing.T) {
	b := asttest.New("main.spice")
	file := b.File(
		b.Func("work", b.T("int"), asttest.Params(b.Param("unused", b.T("int")), b.Param("_skip", b.T("int"))),
			b.Decl("tmp", b.T("int"), b.Int(1)),
			b.Ret(b.Int(0)),
		),
	)

	res := analyze(t, file)
	assert.Equal(t, []string{"parameter 'unused' is never used"}, res.messages(diagnostics.WarnUnusedParameter))
	assert.Equal(t, []string{"variable 'tmp' is declared but never used"}, res.messages(diagnostics.WarnUnusedVariable))
}

func TestLambdaCapturesAndType(t *testing.T) {
	b := asttest.New("main.spice")
	lambda := b.Lambda(b.T("int"), asttest.Params(b.Param("d", b.T("int"))),
		b.Assign(b.Ident("total"), b.Bin(b.Ident("total"), tokens.PLUS_TOKEN, b.Ident("d"))),
		b.Ret(b.Ident("total")),
	)
	file := b.File(
		b.Func("main", b.T("int"), nil,
			b.Decl("total", b.T("int"), b.Int(0)),
			b.Decl("add", nil, lambda),
			b.Ret(b.Call(b.Ident("add"), b.Int(5))),
		),
	)

	res := analyze(t, file)
	require.Nil(t, res.hard)
	assert.Zero(t, res.ctx.Diagnostics.ErrorCount(), res.ctx.Diagnostics.EmitAllToString())
	assert.Equal(t, "f<int>(int)", lambda.EvaluatedType(0).String())
}

func TestInterfaceNotImplemented(t *testing.T) {
	b := asttest.New("main.spice")
	square := b.Struct("Square", nil, b.Field("side", b.T("double")))
	square.Interfaces = asttest.Types(b.T("Shape"))
	circle := b.Struct("Circle", nil, b.Field("r", b.T("double")))
	circle.Interfaces = asttest.Types(b.T("Shape"))
	file := b.File(
		b.Interface("Shape", nil, b.Sig("area", b.T("double"))),
		square,
		circle,
		asttest.Public(b.Method(b.T("Circle"), "area", b.T("double"), nil,
			b.Ret(b.Bin(b.Sel(b.Ident("this"), "r"), tokens.MUL_TOKEN, b.Sel(b.Ident("this"), "r"))),
		)),
	)

	res := analyze(t, file)
	require.Nil(t, res.hard)
	assert.Equal(t, []string{"struct Square does not implement method 'area()' of interface Shape"},
		res.messages(diagnostics.ErrInterfaceNotImplemented))
}

func TestInfiniteSizeIsHard(t *testing.T) {
	b := asttest.New("main.spice")
	file := b.File(
		b.Struct("Node", nil,
			b.Field("value", b.T("int")),
			b.Field("next", b.T("Node")),
		),
	)

	res := analyze(t, file)
	require.NotNil(t, res.hard)
	assert.Equal(t, diagnostics.ErrInfiniteSize, res.hard.Diag.Code)
	assert.True(t, res.hard.Diag.Fatal)
}

func TestPointerFieldIsNotInfinite(t *testing.T) {
	b := asttest.New("main.spice")
	file := b.File(
		b.Struct("Node", nil,
			b.Field("value", b.T("int")),
			b.Field("next", asttest.Ptr(b.T("Node"))),
		),
	)

	res := analyze(t, file)
	assert.Nil(t, res.hard)
	assert.Zero(t, res.ctx.Diagnostics.ErrorCount())
}

func TestOperatorOverload(t *testing.T) {
	b := asttest.New("main.spice")
	sum := b.Bin(b.Ident("a"), tokens.PLUS_TOKEN, b.Ident("b"))
	file := b.File(
		b.Struct("Vec", nil, b.Field("x", b.T("int"))),
		b.Func("op.plus", b.T("Vec"), asttest.Params(b.Param("l", b.T("Vec")), b.Param("r", b.T("Vec"))),
			b.Ret(b.StructInit(b.T("Vec"), b.Bin(b.Sel(b.Ident("l"), "x"), tokens.PLUS_TOKEN, b.Sel(b.Ident("r"), "x")))),
		),
		b.Func("main", b.T("int"), nil,
			b.Decl("a", b.T("Vec"), b.StructInit(b.T("Vec"), b.Int(1))),
			b.Decl("b", b.T("Vec"), b.StructInit(b.T("Vec"), b.Int(2))),
			b.Decl("c", b.T("Vec"), sum),
			b.Ret(b.Sel(b.Ident("c"), "x")),
		),
	)

	res := analyze(t, file)
	require.Nil(t, res.hard)
	assert.Zero(t, res.ctx.Diagnostics.ErrorCount(), res.ctx.Diagnostics.EmitAllToString())
	require.NotNil(t, sum.Result(0).Callee)
	assert.Equal(t, "op.plus(Vec,Vec)", sum.Result(0).Callee.Signature())
	assert.Equal(t, "Vec", sum.EvaluatedType(0).String())
}

func TestInvalidOperation(t *testing.T) {
	b := asttest.New("main.spice")
	file := b.File(
		b.Func("main", b.T("int"), nil,
			b.Decl("s", b.T("string"), b.Str("a")),
			b.Ret(b.Bin(b.Ident("s"), tokens.MUL_TOKEN, b.Bool(true))),
		),
	)

	res := analyze(t, file)
	assert.Len(t, res.ctx.Diagnostics.WithCode(diagnostics.ErrInvalidOperation), 1)
	// the unresolved operand is not reported again by the return
	assert.Empty(t, res.ctx.Diagnostics.WithCode(diagnostics.ErrTypeMismatch))
}

func TestPointerArithmeticOutsideUnsafeIsHard(t *testing.T) {
	b := asttest.New("main.spice")
	file := b.File(
		b.Func("main", b.T("int"), nil,
			b.Decl("v", b.T("int"), b.Int(1)),
			b.Decl("p", asttest.Ptr(b.T("int")), b.Unary(tokens.ADDRESS_OF_TOKEN, b.Ident("v"))),
			b.Expr(b.Postfix(b.Ident("p"), tokens.PLUS_PLUS_TOKEN)),
			b.Ret(b.Int(0)),
		),
	)

	res := analyze(t, file)
	require.NotNil(t, res.hard)
	assert.Equal(t, diagnostics.ErrUnsafeOperation, res.hard.Diag.Code)
}

func TestPointerArithmeticInUnsafeBlock(t *testing.T) {
	b := asttest.New("main.spice")
	file := b.File(
		b.Func("main", b.T("int"), nil,
			b.Decl("v", b.T("int"), b.Int(1)),
			b.Decl("p", asttest.Ptr(b.T("int")), b.Unary(tokens.ADDRESS_OF_TOKEN, b.Ident("v"))),
			b.Unsafe(b.Expr(b.Postfix(b.Ident("p"), tokens.PLUS_PLUS_TOKEN))),
			b.Ret(b.Int(0)),
		),
	)

	res := analyze(t, file)
	assert.Nil(t, res.hard)
	assert.Zero(t, res.ctx.Diagnostics.ErrorCount(), res.ctx.Diagnostics.EmitAllToString())
}

func TestJumpsAndFallthrough(t *testing.T) {
	b := asttest.New("main.spice")
	file := b.File(
		b.Func("skip", nil, nil, b.Continue(1)),
		b.Func("main", b.T("int"), nil,
			b.Decl("i", b.T("int"), b.Int(0)),
			b.While(b.Bin(b.Ident("i"), tokens.LESS_TOKEN, b.Int(3)),
				b.Assign(b.Ident("i"), b.Bin(b.Ident("i"), tokens.PLUS_TOKEN, b.Int(1))),
				b.Break(2),
			),
			b.Switch(b.Ident("i"), nil,
				b.Case(asttest.Exprs(b.Int(1)), b.Fallthrough()),
				b.Case(asttest.Exprs(b.Int(2)), b.Fallthrough()),
			),
			b.Ret(b.Ident("i")),
		),
	)

	res := analyze(t, file)
	assert.Equal(t, []string{
		diagnostics.ErrInvalidContinue,
		diagnostics.ErrInvalidBreak,
		diagnostics.ErrInvalidFallthrough,
	}, res.errorCodes())
	assert.Equal(t, []string{"cannot break 2 loops, only 1 enclose this statement"}, res.messages(diagnostics.ErrInvalidBreak))
}

func TestIdentityCastAndDiscardedResult(t *testing.T) {
	b := asttest.New("main.spice")
	file := b.File(
		b.Func("answer", b.T("int"), nil, b.Ret(b.Int(42))),
		b.Func("main", b.T("int"), nil,
			b.Expr(b.Call(b.Ident("answer"))),
			b.Ret(b.Cast(b.T("int"), b.Int(1))),
		),
	)

	res := analyze(t, file)
	assert.Zero(t, res.ctx.Diagnostics.ErrorCount())
	assert.Equal(t, []string{"the result of answer() is discarded"}, res.messages(diagnostics.WarnDiscardedResult))
	assert.Equal(t, []string{"the value already has the type int"}, res.messages(diagnostics.WarnIdentityCast))
}

func TestMethodCallOnPointer(t *testing.T) {
	b := asttest.New("main.spice")
	call := b.Call(b.Sel(b.Ident("p"), "get"))
	file := b.File(
		b.Struct("Counter", nil, b.Field("n", b.T("int"))),
		b.Method(b.T("Counter"), "get", b.T("int"), nil, b.Ret(b.Sel(b.Ident("this"), "n"))),
		b.Func("main", b.T("int"), nil,
			b.Decl("c", b.T("Counter"), b.StructInit(b.T("Counter"), b.Int(3))),
			b.Decl("p", asttest.Ptr(b.T("Counter")), b.Unary(tokens.ADDRESS_OF_TOKEN, b.Ident("c"))),
			b.Ret(call),
		),
	)

	res := analyze(t, file)
	assert.Zero(t, res.ctx.Diagnostics.ErrorCount(), res.ctx.Diagnostics.EmitAllToString())
	assert.Equal(t, ast.CallMethod, call.Result(0).CallKind)
	assert.Equal(t, "Counter.get()", call.Result(0).Callee.Signature())
	assert.Equal(t, types.TypeInt, call.EvaluatedType(0))
}

func TestEnumItems(t *testing.T) {
	b := asttest.New("main.spice")
	item := b.Sel(b.Ident("Color"), "GREEN")
	file := b.File(
		b.Enum("Color", "RED", "GREEN"),
		b.Func("main", b.T("int"), nil,
			b.Decl("c", b.T("Color"), item),
			b.Decl("_d", b.T("Color"), b.Sel(b.Ident("Color"), "BLUE")),
			b.Ret(b.Int(0)),
		),
	)

	res := analyze(t, file)
	assert.Equal(t, "Color", item.EvaluatedType(0).Unqualified().String())
	assert.Equal(t, []string{"enum Color has no item 'BLUE'"}, res.messages(diagnostics.ErrFieldNotFound))
}

func TestLoopsAndExpressionForms(t *testing.T) {
	b := asttest.New("main.spice")
	loop := b.Foreach("", "v", nil, b.Ident("values"),
		b.AssignOp(b.Ident("sum"), tokens.PLUS_EQUALS_TOKEN, b.Cast(b.T("long"), b.Ident("v"))),
	)
	ternary := b.Ternary(b.Bin(b.Ident("limit"), tokens.GREATER_TOKEN, b.Int(5)), b.Char('a'), b.Char('b'))
	sizeT := b.SizeofT(b.T("Config"))
	sizeX := b.SizeofX(b.Ident("values"))
	cfg := b.Decl("cfg", b.T("Config"), nil)
	double := b.Lambda(b.T("int"), asttest.Params(b.Param("x", b.T("int"))),
		b.Ret(b.Bin(b.Ident("x"), tokens.MUL_TOKEN, b.Int(2))),
	)
	file := b.File(
		b.Global("limit", b.T("int"), b.Int(10)),
		b.Struct("Config", nil,
			b.DefaultField("depth", b.T("int"), b.Int(3)),
			b.Field("name", b.T("string")),
		),
		b.Func("apply", b.T("int"), asttest.Params(b.Param("fn", b.FuncT(b.T("int"), b.T("int"))), b.Param("v", b.T("int"))),
			b.Ret(b.Call(b.Ident("fn"), b.Ident("v"))),
		),
		b.Func("bump", nil, asttest.Params(b.Param("x", asttest.Ref(b.T("int")))),
			b.Assign(b.Ident("x"), b.Bin(b.Ident("x"), tokens.PLUS_TOKEN, b.Int(1))),
		),
		b.Func("main", b.T("int"), nil,
			b.Decl("values", asttest.Arr(b.T("int"), 3), b.Array(b.Int(1), b.Int(2), b.Int(3))),
			b.Decl("sum", b.T("long"), b.Long(0)),
			loop,
			b.Decl("count", b.T("int"), b.Int(0)),
			b.For(b.Decl("k", b.T("short"), b.Short(0)), b.Bin(b.Ident("k"), tokens.LESS_TOKEN, b.Short(3)),
				b.Expr(b.Postfix(b.Ident("k"), tokens.PLUS_PLUS_TOKEN)),
				b.Expr(b.Call(b.Ident("bump"), b.Ident("count"))),
			),
			b.Decl("_letter", b.T("char"), ternary),
			b.Decl("_size", b.T("long"), sizeT),
			b.Decl("_bytes", nil, sizeX),
			cfg,
			b.Decl("_depth", b.T("int"), b.Sel(b.Ident("cfg"), "depth")),
			b.Decl("_total", b.T("long"), b.Ident("sum")),
			b.Decl("double", nil, double),
			b.Ret(b.Call(b.Ident("apply"), b.Ident("double"), b.Ident("count"))),
		),
	)

	res := analyze(t, file)
	require.Nil(t, res.hard)
	assert.Zero(t, res.ctx.Diagnostics.ErrorCount(), res.ctx.Diagnostics.EmitAllToString())

	assert.Equal(t, types.TypeInt, loop.Result(0).Type)
	assert.Equal(t, types.TypeChar, ternary.EvaluatedType(0))
	assert.Equal(t, types.TypeLong, sizeT.EvaluatedType(0))
	assert.Equal(t, types.TypeLong, sizeX.EvaluatedType(0))
	assert.Equal(t, "f<int>(int)", double.EvaluatedType(0).String())

	require.NotNil(t, cfg.Result(0).Callee)
	assert.Equal(t, "Config.ctor()", cfg.Result(0).Callee.Signature())
	assert.Equal(t, ast.CallCtor, cfg.Result(0).CallKind)
}

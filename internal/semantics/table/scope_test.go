package table

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spicelang/spice-sub000/internal/semantics/symbols"
	"github.com/spicelang/spice-sub000/internal/types"
)

func declare(t *testing.T, s *Scope, name string, typ *types.Type) *symbols.Symbol {
	t.Helper()
	sym, err := s.Insert(name, symbols.SymbolVariable, nil)
	require.NoError(t, err)
	sym.Type = typ
	return sym
}

func TestInsertDuplicateIsRejected(t *testing.T) {
	root := NewArena().NewRoot("main.spice")
	declare(t, root, "x", types.TypeInt)

	_, err := root.Insert("x", symbols.SymbolVariable, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSymbolExists))

	_, err = root.Insert("x", symbols.SymbolFunction, nil)
	assert.True(t, errors.Is(err, ErrSymbolExists), "duplicate is rejected regardless of kind")
}

func TestLookupShadowing(t *testing.T) {
	root := NewArena().NewRoot("main.spice")
	outer := root.CreateChildScope("f()", ScopeFuncBody)
	inner := outer.CreateChildScope("if:3:1", ScopeIf)

	outerX := declare(t, outer, "x", types.TypeInt)
	innerX := declare(t, inner, "x", types.TypeString)

	assert.Same(t, innerX, inner.Lookup("x"))
	assert.Same(t, outerX, outer.Lookup("x"))
	assert.Nil(t, inner.LookupStrict("y"))
	assert.Nil(t, outer.Lookup("y"))
}

func TestLookupStrictStaysInScope(t *testing.T) {
	root := NewArena().NewRoot("main.spice")
	child := root.CreateChildScope("while:2:1", ScopeWhile)
	declare(t, root, "g", types.TypeBool)

	assert.NotNil(t, child.Lookup("g"))
	assert.Nil(t, child.LookupStrict("g"))
}

func TestSymbolsKeepDeclarationOrder(t *testing.T) {
	root := NewArena().NewRoot("main.spice")
	s := root.CreateChildScope("struct:Pair", ScopeStruct)
	for _, name := range []string{"z", "a", "m"} {
		sym, err := s.Insert(name, symbols.SymbolField, nil)
		require.NoError(t, err)
		sym.Type = types.TypeInt
	}

	var names []string
	for _, f := range s.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"z", "a", "m"}, names)
	assert.Equal(t, 2, s.LookupStrict("m").Order)
}

func TestLambdaCaptures(t *testing.T) {
	root := NewArena().NewRoot("main.spice")
	fn := root.CreateChildScope("f()", ScopeFuncBody)
	counter := declare(t, fn, "counter", types.TypeInt)
	limit := declare(t, fn, "limit", types.TypeInt)
	lambda := fn.CreateChildScope("lambda:4:1", ScopeLambda)
	block := lambda.CreateChildScope("if:5:1", ScopeIf)
	declare(t, lambda, "local", types.TypeInt)

	assert.Same(t, counter, block.Lookup("counter"))
	assert.Same(t, limit, block.Lookup("limit"))
	block.Lookup("local")

	captures := lambda.Captures()
	require.Len(t, captures, 2)
	assert.Equal(t, CaptureReadOnly, captures[0].Mode)

	block.MarkWritten(counter)
	assert.Equal(t, CaptureReadWrite, captures[0].Mode)
	assert.Equal(t, CaptureReadOnly, captures[1].Mode)
	assert.Empty(t, fn.Captures())
}

func TestCreateChildScopeIsIdempotent(t *testing.T) {
	root := NewArena().NewRoot("main.spice")
	a := root.CreateChildScope("if:1:1", ScopeIf)
	b := root.CreateChildScope("if:1:1", ScopeIf)
	assert.Same(t, a, b)
	assert.Len(t, root.ChildScopes(), 1)
}

func TestRenameChildScope(t *testing.T) {
	root := NewArena().NewRoot("main.spice")
	body := root.CreateChildScope("fct:1:1", ScopeFuncBody)

	require.NoError(t, root.RenameChildScope("fct:1:1", "fct:1:1<int>"))
	assert.Nil(t, root.GetChildScope("fct:1:1"))
	assert.Same(t, body, root.GetChildScope("fct:1:1<int>"))
	assert.Equal(t, "fct:1:1<int>", body.Name)

	err := root.RenameChildScope("missing", "x")
	assert.True(t, errors.Is(err, ErrScopeNotFound))
}

func TestCopyChildScopeIsDeep(t *testing.T) {
	arena := NewArena()
	root := arena.NewRoot("main.spice")
	body := root.CreateChildScope("fct", ScopeFuncBody)
	param := declare(t, body, "value", types.NewGeneric("T"))
	inner := body.CreateChildScope("if:2:1", ScopeIf)
	declare(t, inner, "tmp", types.TypeInt)

	clone, err := root.CopyChildScope("fct", "fct<int>")
	require.NoError(t, err)

	clonedParam := clone.LookupStrict("value")
	require.NotNil(t, clonedParam)
	assert.NotSame(t, param, clonedParam)
	assert.Equal(t, clone.ID, clonedParam.Scope)

	require.NoError(t, clonedParam.UpdateType(types.TypeInt, true))
	assert.Equal(t, "T", param.Type.String(), "original is untouched")

	clonedInner := clone.GetChildScope("if:2:1")
	require.NotNil(t, clonedInner)
	assert.NotEqual(t, inner.ID, clonedInner.ID)
	assert.Equal(t, clone.ID, clonedInner.Parent)
	assert.NotNil(t, clonedInner.Lookup("value"))

	_, err = root.CopyChildScope("fct", "fct<int>")
	assert.True(t, errors.Is(err, ErrScopeExists))
}

func TestRemovedScopeHandlesGoStale(t *testing.T) {
	arena := NewArena()
	root := arena.NewRoot("main.spice")
	child := root.CreateChildScope("block", ScopeAnonymous)
	grandChild := child.CreateChildScope("inner", ScopeAnonymous)
	oldID := child.ID

	root.RemoveChildScope("block")
	assert.Nil(t, arena.Get(oldID))
	assert.Nil(t, arena.Get(grandChild.ID))

	reused := root.CreateChildScope("other", ScopeAnonymous)
	assert.Nil(t, arena.Get(oldID), "slot reuse bumps the generation")
	assert.Same(t, reused, arena.Get(reused.ID))
}

func TestAnonymousSymbols(t *testing.T) {
	root := NewArena().NewRoot("main.spice")
	body := root.CreateChildScope("p()", ScopeProcBody)

	tmp := body.InsertAnonymous(nil)
	require.NotNil(t, tmp)
	assert.Equal(t, symbols.SymbolAnonymous, tmp.Kind)
	assert.NotNil(t, body.LookupStrict(tmp.Name))

	body.RemoveAnonymous(tmp.Name)
	assert.Nil(t, body.LookupStrict(tmp.Name))

	declare(t, body, "keep", types.TypeInt)
	body.RemoveAnonymous("keep")
	assert.NotNil(t, body.LookupStrict("keep"), "named symbols are never removed")
}

func TestLoopDepthAndCaseBranch(t *testing.T) {
	root := NewArena().NewRoot("main.spice")
	body := root.CreateChildScope("p()", ScopeProcBody)
	outer := body.CreateChildScope("while:1:1", ScopeWhile)
	inner := outer.CreateChildScope("for:2:1", ScopeFor)
	cond := inner.CreateChildScope("if:3:1", ScopeIf)
	lambda := cond.CreateChildScope("lambda:4:1", ScopeLambda)

	assert.Equal(t, 0, body.LoopDepth())
	assert.Equal(t, 2, cond.LoopDepth())
	assert.Equal(t, 0, lambda.LoopDepth(), "loops do not reach into lambdas")

	sw := body.CreateChildScope("case:5:1", ScopeCase)
	nested := sw.CreateChildScope("if:6:1", ScopeIf)
	assert.True(t, nested.IsInCaseBranch())
	assert.False(t, cond.IsInCaseBranch())

	unsafe := body.CreateChildScope("unsafe:7:1", ScopeUnsafe)
	assert.True(t, unsafe.CreateChildScope("if:8:1", ScopeIf).IsInUnsafe())
	assert.False(t, cond.IsInUnsafe())
	assert.Same(t, body, cond.EnclosingCallable())
}

func TestUnusedSymbols(t *testing.T) {
	root := NewArena().NewRoot("main.spice")
	body := root.CreateChildScope("p()", ScopeProcBody)
	used := declare(t, body, "used", types.TypeInt)
	used.Used = true
	declare(t, body, "_ignored", types.TypeInt)
	declare(t, body.CreateChildScope("if:1:1", ScopeIf), "nested", types.TypeInt)

	var names []string
	for _, sym := range body.UnusedSymbols() {
		names = append(names, sym.Name)
	}
	assert.Equal(t, []string{"nested"}, names)
}

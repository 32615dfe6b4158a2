package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spicelang/spice-sub000/internal/frontend/ast"
	"github.com/spicelang/spice-sub000/internal/semantics/manager"
	"github.com/spicelang/spice-sub000/internal/semantics/symbols"
	"github.com/spicelang/spice-sub000/internal/semantics/table"
	"github.com/spicelang/spice-sub000/internal/types"
)

type field struct {
	name string
	typ  *types.Type
	decl *ast.Field
}

type env struct {
	global *table.Scope
	m      *manager.Managers
	s      *Synthesizer
}

func newEnv() *env {
	arena := table.NewArena()
	m := manager.New(arena)
	return &env{global: arena.NewRoot("main.spice"), m: m, s: New(m)}
}

func (e *env) declare(t *testing.T, name string, fields ...field) *manager.StructManifestation {
	t.Helper()
	scopeName := name + ":1:1"
	body := e.global.CreateChildScope(scopeName, table.ScopeStruct)
	decl, err := e.m.Structs.Insert(e.global, &manager.Struct{Name: name, File: "main.spice", BaseScopeName: scopeName, BaseScope: body.ID})
	require.NoError(t, err)
	for _, f := range fields {
		var node ast.Node
		if f.decl != nil {
			node = f.decl
		}
		sym, err := body.Insert(f.name, symbols.SymbolField, node)
		require.NoError(t, err)
		sym.Type = f.typ
	}
	e.m.Structs.FieldsPrepared(decl)
	return decl.Manifestations[0]
}

func (e *env) method(t *testing.T, this *types.Type, name string, params ...manager.Param) {
	t.Helper()
	_, err := e.m.Functions.Insert(e.global, &manager.Function{Name: name, ThisType: this, Params: params})
	require.NoError(t, err)
}

func heapBytes() *types.Type {
	return types.TypeByte.ToPtr().WithQuals(types.QualHeap)
}

func TestHeapFieldGetsDestructor(t *testing.T) {
	e := newEnv()
	buf := e.declare(t, "Buffer", field{name: "data", typ: heapBytes()}, field{name: "size", typ: types.TypeInt})

	res, err := e.s.Synthesize(buf)
	require.NoError(t, err)

	require.NotNil(t, res.Dtor)
	require.Len(t, res.Dtor.Preamble, 1)
	assert.Equal(t, Dealloc, res.Dtor.Preamble[0].Kind)
	assert.Equal(t, DeallocRoutine, res.Dtor.Preamble[0].Routine)
	assert.Equal(t, "data", res.Dtor.Preamble[0].Field.Name)
	assert.True(t, res.Dtor.Function.Decl.IsImplicit)
	assert.Equal(t, "Buffer.dtor()", res.Dtor.Function.Signature())

	require.NotNil(t, res.CopyCtor)
	kinds := []ActionKind{res.CopyCtor.Preamble[0].Kind, res.CopyCtor.Preamble[1].Kind}
	assert.Equal(t, []ActionKind{DuplicateHeap, CopyValue}, kinds)
	assert.Equal(t, "Buffer.ctor(const Buffer&)", res.CopyCtor.Function.Signature())

	assert.Nil(t, res.Ctor)
	assert.False(t, e.s.IsTriviallyDestructible(buf.Type))

	again, err := e.s.Synthesize(buf)
	require.NoError(t, err)
	assert.Same(t, res, again)
}

func TestPrimitiveStructNeedsNothing(t *testing.T) {
	e := newEnv()
	point := e.declare(t, "Point", field{name: "x", typ: types.TypeInt}, field{name: "y", typ: types.TypeDouble.ToPtr()})

	res, err := e.s.Synthesize(point)
	require.NoError(t, err)
	assert.Nil(t, res.Ctor)
	assert.Nil(t, res.CopyCtor)
	assert.Nil(t, res.Dtor)
	assert.True(t, e.s.IsTriviallyDestructible(point.Type))
	assert.True(t, e.s.IsTriviallyDestructible(types.TypeString))
}

func TestDestructorVisitsFieldsInReverseOrder(t *testing.T) {
	e := newEnv()
	buf := e.declare(t, "Buffer", field{name: "data", typ: heapBytes()})
	outer := e.declare(t, "Outer",
		field{name: "a", typ: buf.Type},
		field{name: "n", typ: types.TypeInt},
		field{name: "b", typ: buf.Type})

	res, err := e.s.Synthesize(outer)
	require.NoError(t, err)
	require.NotNil(t, res.Dtor)

	var names []string
	for _, action := range res.Dtor.Preamble {
		assert.Equal(t, CallDtor, action.Kind)
		assert.Equal(t, "Buffer.dtor()", action.Callee.Signature())
		names = append(names, action.Field.Name)
	}
	assert.Equal(t, []string{"b", "a"}, names)

	require.NotNil(t, res.CopyCtor)
	assert.Equal(t, CallCopyCtor, res.CopyCtor.Preamble[0].Kind)
	assert.Equal(t, CopyValue, res.CopyCtor.Preamble[1].Kind)
	assert.NotNil(t, e.s.Get(buf), "field structs are settled first")
}

func TestUserDefinedMethodsSuppressSynthesis(t *testing.T) {
	e := newEnv()
	buf := e.declare(t, "Buffer", field{name: "data", typ: heapBytes()})
	e.method(t, buf.Type, DtorName)
	e.method(t, buf.Type, CtorName, manager.Param{Name: "other", Type: buf.Type.ToConstRef()})

	res, err := e.s.Synthesize(buf)
	require.NoError(t, err)
	assert.Nil(t, res.Dtor)
	assert.Nil(t, res.CopyCtor)
	assert.NotNil(t, res.UserDtor)
	assert.NotNil(t, res.UserCopyCtor)
	assert.False(t, e.s.IsTriviallyDestructible(buf.Type))
}

func TestDefaultValuesNeedConstructor(t *testing.T) {
	e := newEnv()
	decl := &ast.Field{Name: "count", Default: &ast.BasicLit{Kind: ast.INT, Value: "1"}}
	counter := e.declare(t, "Counter", field{name: "count", typ: types.TypeInt, decl: decl}, field{name: "step", typ: types.TypeInt})

	res, err := e.s.Synthesize(counter)
	require.NoError(t, err)
	require.NotNil(t, res.Ctor)
	require.Len(t, res.Ctor.Preamble, 1)
	assert.Equal(t, InitDefault, res.Ctor.Preamble[0].Kind)
	assert.Equal(t, "Counter.ctor()", res.Ctor.Function.Signature())
	assert.Nil(t, res.Dtor)

	wrapper := e.declare(t, "Wrapper", field{name: "c", typ: counter.Type})
	res, err = e.s.Synthesize(wrapper)
	require.NoError(t, err)
	require.NotNil(t, res.Ctor)
	assert.Equal(t, CallCtor, res.Ctor.Preamble[0].Kind)
	assert.Same(t, e.s.Get(counter).Ctor.Function, res.Ctor.Preamble[0].Callee)
}

func TestFieldWithoutNoArgConstructorBlocksDefaultConstructor(t *testing.T) {
	e := newEnv()
	conn := e.declare(t, "Conn", field{name: "port", typ: types.TypeInt})
	e.method(t, conn.Type, CtorName, manager.Param{Name: "port", Type: types.TypeInt})
	pool := e.declare(t, "Pool", field{name: "conn", typ: conn.Type})

	res, err := e.s.Synthesize(pool)
	require.NoError(t, err)
	assert.True(t, res.NotDefaultConstructible)
	assert.Nil(t, res.Ctor)
}

func TestVtableNeedsConstructorAndDestructor(t *testing.T) {
	e := newEnv()
	ifaceBody := e.global.CreateChildScope("Shape:1:1", table.ScopeInterface)
	shape, err := e.m.Interfaces.Insert(e.global, &manager.Interface{Name: "Shape", BaseScopeName: "Shape:1:1", BaseScope: ifaceBody.ID})
	require.NoError(t, err)
	square := e.declare(t, "Square", field{name: "side", typ: types.TypeDouble})
	e.m.Structs.SetInterfaces(square.Decl, []*types.Type{shape.BaseType})

	res, err := e.s.Synthesize(square)
	require.NoError(t, err)
	assert.NotNil(t, res.Ctor)
	assert.NotNil(t, res.Dtor)
	assert.Empty(t, res.Dtor.Preamble)
	assert.Nil(t, res.CopyCtor)
}

func TestMethodKindString(t *testing.T) {
	assert.Equal(t, "default constructor", DefaultCtor.String())
	assert.Equal(t, "copy constructor", CopyCtor.String())
	assert.Equal(t, "destructor", Dtor.String())
}

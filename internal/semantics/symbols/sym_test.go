package symbols

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spicelang/spice-sub000/internal/ids"
	"github.com/spicelang/spice-sub000/internal/types"
)

func TestUpdateTypeOnlyNarrowsDyn(t *testing.T) {
	sym := &Symbol{Name: "x", Kind: SymbolVariable, Type: types.TypeDyn}

	require.NoError(t, sym.UpdateType(types.TypeInt, false))
	assert.Same(t, types.TypeInt, sym.Type)

	err := sym.UpdateType(types.TypeString, false)
	assert.True(t, errors.Is(err, ErrTypeAlreadySet))
	assert.Same(t, types.TypeInt, sym.Type)

	require.NoError(t, sym.UpdateType(types.TypeString, true))
	assert.Same(t, types.TypeString, sym.Type)
}

func TestLifecycle(t *testing.T) {
	sym := &Symbol{Name: "x"}
	assert.False(t, sym.IsInitialized())
	sym.MarkInitialized()
	assert.True(t, sym.IsInitialized())
	assert.Equal(t, "initialized", sym.Lifecycle.String())
}

func TestConstness(t *testing.T) {
	assert.True(t, (&Symbol{Kind: SymbolConstant, Type: types.TypeInt}).IsConst())
	assert.True(t, (&Symbol{Kind: SymbolVariable, Type: types.TypeInt.WithQuals(types.QualConst)}).IsConst())
	assert.False(t, (&Symbol{Kind: SymbolVariable, Type: types.TypeInt}).IsConst())
}

func TestClone(t *testing.T) {
	sym := &Symbol{Name: "x", Kind: SymbolParameter, Type: types.TypeInt, Scope: ids.ScopeID{Index: 1, Gen: 1}}
	clone := sym.Clone(ids.ScopeID{Index: 2, Gen: 1})

	assert.NotSame(t, sym, clone)
	assert.Equal(t, uint32(2), clone.Scope.Index)
	assert.Equal(t, uint32(1), sym.Scope.Index)
	assert.True(t, clone.IsParam())
}

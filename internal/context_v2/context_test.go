package context_v2

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spicelang/spice-sub000/internal/config"
	"github.com/spicelang/spice-sub000/internal/frontend/ast"
	"github.com/spicelang/spice-sub000/internal/phase"
	"github.com/spicelang/spice-sub000/internal/semantics/symbols"
	"github.com/spicelang/spice-sub000/internal/types"
)

func newTestContext(files map[string]*ast.File) *CompilerContext {
	return New(config.Default(), MapLoader(files))
}

func TestNewContext(t *testing.T) {
	cfg := config.Default()
	cfg.Debug = true
	ctx := New(cfg, nil)

	require.NotNil(t, ctx)
	assert.NotNil(t, ctx.Arena)
	assert.NotNil(t, ctx.Managers)
	assert.NotNil(t, ctx.Synth)
	assert.True(t, ctx.Debug)
	assert.Equal(t, 0, ctx.ModuleCount())
}

func TestLoadModuleIsIdempotent(t *testing.T) {
	ctx := newTestContext(map[string]*ast.File{
		"app/main": {Path: "main.spice"},
	})

	first, err := ctx.LoadModule("app/main")
	require.NoError(t, err)
	second, err := ctx.LoadModule(" /app//main/ ")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "app/main", first.ImportPath)
	assert.Equal(t, phase.PhaseLoaded, first.Phase)
	assert.NotNil(t, first.Scope)

	byFile, ok := ctx.ModuleByFile("main.spice")
	require.True(t, ok)
	assert.Same(t, first, byFile)
}

func TestLoadModuleNotFound(t *testing.T) {
	ctx := newTestContext(map[string]*ast.File{})
	_, err := ctx.LoadModule("missing")
	assert.True(t, errors.Is(err, ErrModuleNotFound))
}

func TestModulePhaseTracking(t *testing.T) {
	ctx := newTestContext(map[string]*ast.File{"m": {Path: "m.spice"}})
	_, err := ctx.LoadModule("m")
	require.NoError(t, err)

	assert.False(t, ctx.CanProcessPhase("m", phase.PhaseChecked))
	assert.True(t, ctx.AdvanceModulePhase("m", phase.PhasePrepared))
	assert.True(t, ctx.AdvanceModulePhase("m", phase.PhaseChecked))
	assert.Equal(t, phase.PhaseChecked, ctx.GetModulePhase("m"))
	assert.Equal(t, phase.PhaseNotStarted, ctx.GetModulePhase("unknown"))
}

func TestCycleDetection(t *testing.T) {
	ctx := newTestContext(nil)

	require.NoError(t, ctx.AddDependency("a", "b"))
	require.NoError(t, ctx.AddDependency("b", "c"))
	require.NoError(t, ctx.AddDependency("a", "b"), "duplicate edges are ignored")
	assert.Len(t, ctx.DepGraph["a"], 1)

	err := ctx.AddDependency("c", "a")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCyclicImport))
	assert.Contains(t, err.Error(), "c -> a -> b -> c")

	assert.True(t, errors.Is(ctx.AddDependency("d", "d"), ErrCyclicImport))
}

func TestResolveImportRejectsCycles(t *testing.T) {
	ctx := newTestContext(map[string]*ast.File{
		"a": {Path: "a.spice"},
		"b": {Path: "b.spice"},
	})
	a, err := ctx.LoadModule("a")
	require.NoError(t, err)

	b, err := ctx.ResolveImport(a, "b")
	require.NoError(t, err)
	again, err := ctx.ResolveImport(a, "b")
	require.NoError(t, err)
	assert.Same(t, b, again)

	_, err = ctx.ResolveImport(b, "a")
	assert.True(t, errors.Is(err, ErrCyclicImport))
}

func TestTopologicalOrder(t *testing.T) {
	ctx := newTestContext(map[string]*ast.File{
		"main": {Path: "main.spice"},
		"util": {Path: "util.spice"},
		"math": {Path: "math.spice"},
		"io":   {Path: "io.spice"},
	})
	for _, p := range []string{"main", "util", "math", "io"} {
		_, err := ctx.LoadModule(p)
		require.NoError(t, err)
	}
	require.NoError(t, ctx.AddDependency("main", "util"))
	require.NoError(t, ctx.AddDependency("util", "math"))
	require.NoError(t, ctx.AddDependency("main", "io"))

	order := ctx.TopologicalOrder()
	require.Len(t, order, 4)
	index := make(map[string]int)
	for i, m := range order {
		index[m] = i
	}
	assert.Less(t, index["math"], index["util"])
	assert.Less(t, index["util"], index["main"])
	assert.Less(t, index["io"], index["main"])
}

func TestNormalizeImportPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{" myproject/utils ", "myproject/utils"},
		{"myproject//utils", "myproject/utils"},
		{"/myproject/utils/", "myproject/utils"},
		{`myproject\utils`, "myproject/utils"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeImportPath(tt.in))
	}
}

func TestNameRegistry(t *testing.T) {
	r := NewNameRegistry()
	sym := &symbols.Symbol{Name: "add", Kind: symbols.SymbolFunction}

	require.NoError(t, r.Register(&RegistryEntry{Name: "add", Symbol: sym, Type: types.TypeInt, IsPublic: true}))
	require.NoError(t, r.Register(&RegistryEntry{Name: "helper", Type: types.TypeInt}))
	assert.True(t, errors.Is(r.Register(&RegistryEntry{Name: "add"}), ErrAlreadyRegistered))

	entry, ok := r.Lookup("add")
	require.True(t, ok)
	assert.Same(t, sym, entry.Symbol)

	exported := r.Exported()
	require.Len(t, exported, 1)
	assert.Equal(t, "add", exported[0].Name)
	assert.Equal(t, 2, r.Len())
}

func TestFileLoader(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "util"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "util", "math.spice"), []byte("f<int> add(int a, int b) { return a + b; }"), 0o644))

	var parsed string
	loader := NewFileLoader(&config.Config{ProjectName: "demo", ProjectRoot: root, Extension: ".spice"},
		func(path, content string) (*ast.File, error) {
			parsed = content
			return &ast.File{}, nil
		})

	file, err := loader.Load("demo/util/math")
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(filepath.Join(root, "util", "math.spice")), file.Path)
	assert.Equal(t, parsed, file.Source)

	_, err = loader.Load("demo/util/missing")
	assert.True(t, errors.Is(err, ErrModuleNotFound))
}

package compiler

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spicelang/spice-sub000/internal/context_v2"
	"github.com/spicelang/spice-sub000/internal/diagnostics"
	"github.com/spicelang/spice-sub000/internal/frontend/ast/asttest"
)

func TestCompileWithoutLoader(t *testing.T) {
	_, err := Compile(&Options{Entries: []string{"main"}, Out: &bytes.Buffer{}})
	assert.ErrorIs(t, err, ErrNoLoader)
}

func TestCompileSuccess(t *testing.T) {
	b := asttest.New("main.spice")
	files := context_v2.MapLoader{
		"main": b.File(b.Func("main", b.T("int"), nil, b.Ret(b.Int(0)))),
	}

	var out bytes.Buffer
	res, err := Compile(&Options{Entries: []string{"main"}, Loader: files, Out: &out, Summary: true})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Zero(t, res.Errors)
	assert.Contains(t, out.String(), "COMPILATION SUMMARY")
	assert.Contains(t, out.String(), "main (Checked, 1 check passes, 1 manifestations)")
}

func TestCompileReportsDiagnostics(t *testing.T) {
	b := asttest.New("main.spice")
	files := context_v2.MapLoader{
		"main": b.File(b.Func("main", b.T("int"), nil,
			b.Decl("x", b.T("int"), b.Str("text")),
			b.Ret(b.Ident("x")),
		)),
	}

	var out bytes.Buffer
	res, err := Compile(&Options{Entries: []string{"main"}, Loader: files, Out: &out})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 1, res.Errors)
	assert.Contains(t, out.String(), diagnostics.ErrTypeMismatch)
	assert.Contains(t, out.String(), "type mismatch: expected int, found string")
	// output to a buffer is never colored
	assert.NotContains(t, out.String(), "\x1b[")
}

func TestCompileWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "spice.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("color: never\nwarnings:\n  as_errors: true\n"), 0o644))

	b := asttest.New("main.spice")
	files := context_v2.MapLoader{
		"main": b.File(b.Func("main", b.T("int"), nil,
			b.Decl("unused", b.T("int"), b.Int(1)),
			b.Ret(b.Int(0)),
		)),
	}

	res, err := Compile(&Options{ConfigPath: cfgPath, Entries: []string{"main"}, Loader: files, Out: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "never", res.Context.Config.Color)
	assert.Len(t, res.Context.Diagnostics.WithCode(diagnostics.WarnUnusedVariable), 1)
}

func TestCompileMissingConfigFile(t *testing.T) {
	_, err := Compile(&Options{
		ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
		Entries:    []string{"main"},
		Loader:     context_v2.MapLoader{},
	})
	assert.Error(t, err)
}

func TestCompileDebugTraces(t *testing.T) {
	b := asttest.New("main.spice")
	files := context_v2.MapLoader{
		"main": b.File(b.Func("main", b.T("int"), nil, b.Ret(b.Int(0)))),
	}

	var out bytes.Buffer
	res, err := Compile(&Options{Entries: []string{"main"}, Loader: files, Out: &out, Debug: true})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Context.Debug)
	assert.Contains(t, out.String(), "[Phase 2] Check")
}

package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spicelang/spice-sub000/internal/source"
)

func TestDiagnostic_PrimaryLabelStaysFirst(t *testing.T) {
	first := source.At("a.spice", 3, 1, 2)
	second := source.At("a.spice", 1, 1, 2)

	d := NewError("x is already declared").
		WithCode(ErrRedeclaredSymbol).
		WithPrimaryLabel(first, "redeclared here").
		WithSecondaryLabel(second, "previously declared here").
		WithPrimaryLabel(second, "ignored")

	require.Len(t, d.Labels, 2)
	assert.Equal(t, Primary, d.Labels[0].Style)
	assert.Equal(t, "redeclared here", d.Labels[0].Message)
	assert.Equal(t, "a.spice", d.FilePath)
	assert.Same(t, first, d.Location())
}

func TestDiagnostic_SecondaryWithoutPrimaryPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewError("x").WithSecondaryLabel(source.At("a.spice", 1, 1, 1), "context")
	})
}

func TestDiagnostic_String(t *testing.T) {
	d := NewWarning("unused variable 'x'").
		WithCode(WarnUnusedVariable).
		WithPrimaryLabel(source.At("m.spice", 4, 7, 1), "")
	assert.Equal(t, "m.spice:4:7: warning[W0002]: unused variable 'x'", d.String())

	assert.Equal(t, "error: plain", NewError("plain").String())
}

package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstPart(t *testing.T) {
	assert.Equal(t, "project", FirstPart("project/utils/math"))
	assert.Equal(t, "project", FirstPart("/project/utils/"))
	assert.Equal(t, "project", FirstPart(`project\utils`))
	assert.Equal(t, "main", FirstPart("main.spice"))
	assert.Equal(t, "", FirstPart("/"))
	assert.Equal(t, "", FirstPart(""))
}

func TestIsValidFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "main.spice")
	require.NoError(t, os.WriteFile(file, []byte("f<int> main() {}"), 0o644))

	assert.True(t, IsValidFile(file))
	assert.False(t, IsValidFile(dir))
	assert.False(t, IsValidFile(filepath.Join(dir, "missing.spice")))
}

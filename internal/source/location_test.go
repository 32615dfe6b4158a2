package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocationContains(t *testing.T) {
	loc := At("a.spice", 3, 5, 4)

	assert.True(t, loc.Contains(&Position{Line: 3, Column: 5}))
	assert.True(t, loc.Contains(&Position{Line: 3, Column: 9}))
	assert.False(t, loc.Contains(&Position{Line: 3, Column: 10}))
	assert.False(t, loc.Contains(&Position{Line: 2, Column: 7}))
}

func TestLocationKeyAndFile(t *testing.T) {
	loc := At("main.spice", 12, 1, 3)
	assert.Equal(t, "12:1", loc.Key())
	assert.Equal(t, "main.spice", loc.File())

	var missing *Location
	assert.Equal(t, "0:0", missing.Key())
	assert.Equal(t, "", missing.File())
	assert.Equal(t, "location(unknown)", missing.String())
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{}, SplitLines(""))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\r\nb\n"))
	assert.Equal(t, []string{"a", "", "c"}, SplitLines("a\n\nc"))
}

func TestPositionBefore(t *testing.T) {
	assert.True(t, Position{Line: 1, Column: 9}.Before(Position{Line: 2, Column: 1}))
	assert.True(t, Position{Line: 2, Column: 1}.Before(Position{Line: 2, Column: 2}))
	assert.False(t, Position{Line: 2, Column: 2}.Before(Position{Line: 2, Column: 2}))
}

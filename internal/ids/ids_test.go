package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeID(t *testing.T) {
	assert.False(t, NoScope.IsValid())
	assert.Equal(t, "scope(none)", NoScope.String())

	id := ScopeID{Index: 4, Gen: 2}
	assert.True(t, id.IsValid())
	assert.Equal(t, "scope(4#2)", id.String())
	assert.NotEqual(t, id, ScopeID{Index: 4, Gen: 3})
}

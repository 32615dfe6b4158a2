// Package ids holds the small handle types shared between the type model and
// the scope arena.
package ids

import "fmt"

// ScopeID addresses a scope in the arena. Gen guards against stale handles
// after a slot is reused. The zero value is "no scope".
type ScopeID struct {
	Index uint32
	Gen   uint32
}

var NoScope = ScopeID{}

func (id ScopeID) IsValid() bool {
	return id.Gen != 0
}

func (id ScopeID) String() string {
	if !id.IsValid() {
		return "scope(none)"
	}
	return fmt.Sprintf("scope(%d#%d)", id.Index, id.Gen)
}

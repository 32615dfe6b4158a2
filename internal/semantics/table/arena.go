package table

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/spicelang/spice-sub000/internal/ids"
	"github.com/spicelang/spice-sub000/internal/semantics/symbols"
)

type slot struct {
	gen   uint32
	scope *Scope
}

// Arena owns every scope of a compilation. Handles carry the slot generation,
// so a handle to a removed scope never resolves to its successor.
type Arena struct {
	slots []slot
	free  []uint32
}

func NewArena() *Arena {
	return &Arena{}
}

// NewRoot creates the global scope of a file
func (a *Arena) NewRoot(file string) *Scope {
	return a.alloc(ScopeGlobal, file, ids.NoScope, file)
}

// Get resolves a handle, nil when the scope was removed
func (a *Arena) Get(id ids.ScopeID) *Scope {
	if !id.IsValid() || int(id.Index) >= len(a.slots) {
		return nil
	}
	sl := a.slots[id.Index]
	if sl.gen != id.Gen || sl.scope == nil {
		return nil
	}
	return sl.scope
}

// Len returns the number of live scopes
func (a *Arena) Len() int {
	return len(a.slots) - len(a.free)
}

func (a *Arena) alloc(kind ScopeKind, name string, parent ids.ScopeID, file string) *Scope {
	var index uint32
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		index = uint32(len(a.slots))
		a.slots = append(a.slots, slot{})
	}
	a.slots[index].gen++

	scope := &Scope{
		ID:       ids.ScopeID{Index: index, Gen: a.slots[index].gen},
		Kind:     kind,
		Name:     name,
		Parent:   parent,
		File:     file,
		arena:    a,
		symbols:  linkedhashmap.New(),
		children: linkedhashmap.New(),
		captures: linkedhashmap.New(),
	}
	a.slots[index].scope = scope
	return scope
}

func (a *Arena) remove(id ids.ScopeID) {
	scope := a.Get(id)
	if scope == nil {
		return
	}
	for _, child := range scope.ChildScopes() {
		a.remove(child.ID)
	}
	a.slots[id.Index].scope = nil
	a.free = append(a.free, id.Index)
}

func (a *Arena) cloneInto(original *Scope, parent ids.ScopeID, name string) *Scope {
	clone := a.alloc(original.Kind, name, parent, original.File)
	clone.anonCount = original.anonCount

	for _, v := range original.symbols.Values() {
		sym := v.(*symbols.Symbol)
		clone.symbols.Put(sym.Name, sym.Clone(clone.ID))
	}
	for _, child := range original.ChildScopes() {
		childClone := a.cloneInto(child, clone.ID, child.Name)
		clone.children.Put(child.Name, childClone.ID)
	}
	return clone
}

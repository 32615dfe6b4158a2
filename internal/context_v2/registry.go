package context_v2

import (
	"errors"
	"fmt"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/spicelang/spice-sub000/internal/ids"
	"github.com/spicelang/spice-sub000/internal/semantics/symbols"
	"github.com/spicelang/spice-sub000/internal/types"
)

var ErrAlreadyRegistered = errors.New("already registered")

// RegistryEntry makes one declaration of a module reachable from importers
type RegistryEntry struct {
	Name     string
	Symbol   *symbols.Symbol
	Scope    ids.ScopeID
	Type     *types.Type
	IsPublic bool
}

// NameRegistry maps the names a module declares to their entries.
// Only the owning module writes it; importers read it.
type NameRegistry struct {
	entries *linkedhashmap.Map // string -> *RegistryEntry
}

func NewNameRegistry() *NameRegistry {
	return &NameRegistry{entries: linkedhashmap.New()}
}

// Register adds an entry. Names are unique per module.
func (r *NameRegistry) Register(entry *RegistryEntry) error {
	if _, exists := r.entries.Get(entry.Name); exists {
		return fmt.Errorf("%q: %w", entry.Name, ErrAlreadyRegistered)
	}
	r.entries.Put(entry.Name, entry)
	return nil
}

// Lookup returns the entry registered as name
func (r *NameRegistry) Lookup(name string) (*RegistryEntry, bool) {
	if v, ok := r.entries.Get(name); ok {
		return v.(*RegistryEntry), true
	}
	return nil, false
}

// Exported returns the public entries in registration order
func (r *NameRegistry) Exported() []*RegistryEntry {
	var result []*RegistryEntry
	for _, v := range r.entries.Values() {
		if entry := v.(*RegistryEntry); entry.IsPublic {
			result = append(result, entry)
		}
	}
	return result
}

func (r *NameRegistry) Len() int {
	return r.entries.Size()
}

package types

import "sync"

// Matches is the structural compatibility predicate. t is the expected type,
// other the candidate. With allowConformance, a struct is accepted where an
// interface it implements is expected, also behind pointers and references.
func (t *Type) Matches(other *Type, ignoreQuals, ignoreArraySize, allowConformance bool) bool {
	if t == other {
		return true
	}
	if !ignoreQuals && t.quals&identityQuals != other.quals&identityQuals {
		return false
	}

	if t.kind != other.kind {
		return allowConformance && t.kind == TYPE_INTERFACE && other.kind == TYPE_STRUCT && Implements(other, t)
	}

	switch t.kind {
	case TYPE_PTR, TYPE_REF:
		return t.contained.Matches(other.contained, ignoreQuals, ignoreArraySize, allowConformance)
	case TYPE_ARRAY:
		if !ignoreArraySize && t.arraySize != other.arraySize {
			return false
		}
		return t.contained.Matches(other.contained, ignoreQuals, ignoreArraySize, false)
	case TYPE_STRUCT, TYPE_INTERFACE, TYPE_ENUM, TYPE_GENERIC, TYPE_ALIAS, TYPE_IMPORT:
		if t.name != other.name {
			return false
		}
		if t.body.IsValid() && other.body.IsValid() && t.body != other.body {
			return false
		}
		return matchList(t.template, other.template, ignoreQuals)
	case TYPE_FUNCTION:
		if !t.ret.Matches(other.ret, ignoreQuals, false, false) {
			return false
		}
		return matchList(t.params, other.params, ignoreQuals)
	case TYPE_PROCEDURE:
		return matchList(t.params, other.params, ignoreQuals)
	}
	return true
}

func matchList(a, b []*Type, ignoreQuals bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Matches(b[i], ignoreQuals, false, false) {
			return false
		}
	}
	return true
}

var conformance = struct {
	sync.Mutex
	implements map[*Type][]*Type
}{implements: make(map[*Type][]*Type)}

// RegisterImplements records the interfaces a struct manifestation implements
func RegisterImplements(structType *Type, interfaces []*Type) {
	conformance.Lock()
	defer conformance.Unlock()
	conformance.implements[structType.Unqualified()] = interfaces
}

// ImplementedInterfaces returns the interfaces registered for a struct type
func ImplementedInterfaces(structType *Type) []*Type {
	conformance.Lock()
	defer conformance.Unlock()
	return conformance.implements[structType.Unqualified()]
}

// Implements reports whether structType was declared to implement iface
func Implements(structType, iface *Type) bool {
	for _, candidate := range ImplementedInterfaces(structType) {
		if candidate.Matches(iface, true, false, false) {
			return true
		}
	}
	return false
}

// CanWiden reports whether a value of type from converts implicitly to to without loss
func CanWiden(from, to *Type) bool {
	switch from.kind {
	case TYPE_SHORT:
		return to.IsOneOf(TYPE_INT, TYPE_LONG)
	case TYPE_INT:
		return to.kind == TYPE_LONG
	case TYPE_BYTE, TYPE_CHAR:
		return to.IsOneOf(TYPE_SHORT, TYPE_INT, TYPE_LONG)
	}
	return false
}

// GenericType is a named placeholder restricted to a closed set of types.
// No conditions, or a dyn condition, accepts every type.
type GenericType struct {
	Type       *Type
	Conditions []*Type
}

func NewGenericType(name string, conditions ...*Type) *GenericType {
	return &GenericType{Type: NewGeneric(name), Conditions: conditions}
}

func (g *GenericType) Name() string {
	return g.Type.name
}

// CheckConditions reports whether candidate satisfies one of the conditions
func (g *GenericType) CheckConditions(candidate *Type, ignoreQuals bool) bool {
	if len(g.Conditions) == 0 {
		return true
	}
	for _, cond := range g.Conditions {
		if cond.IsDyn() || cond.Matches(candidate, ignoreQuals, true, true) {
			return true
		}
	}
	return false
}

func (g *GenericType) String() string {
	if len(g.Conditions) == 0 {
		return g.Name()
	}
	return g.Name() + " " + joinConditions(g.Conditions)
}

func joinConditions(conds []*Type) string {
	s := ""
	for i, c := range conds {
		if i > 0 {
			s += "|"
		}
		s += c.String()
	}
	return s
}

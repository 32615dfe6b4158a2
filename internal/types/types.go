package types

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spicelang/spice-sub000/internal/ids"
)

// Type is the semantic representation of a qualified type.
//
// Types are immutable and interned: two structurally identical types are the
// same pointer. Every modifying method returns another interned type.
type Type struct {
	kind      TYPE_NAME
	quals     Qualifiers
	name      string // struct, interface, enum, generic, alias and import name
	contained *Type  // ptr, ref, array element; alias target
	arraySize int    // 0 when unknown
	template  []*Type
	params    []*Type // function and procedure types
	ret       *Type
	body      ids.ScopeID
	key       string
}

var registry = struct {
	sync.Mutex
	types map[string]*Type
}{types: make(map[string]*Type)}

func intern(t Type) *Type {
	t.quals &^= QualSigned
	t.key = t.signature()

	registry.Lock()
	defer registry.Unlock()
	if existing, ok := registry.types[t.key]; ok {
		return existing
	}
	p := &t
	registry.types[t.key] = p
	return p
}

func (t *Type) signature() string {
	var b strings.Builder
	b.WriteString(string(t.kind))
	fmt.Fprintf(&b, "|%d|%s|%d|%d.%d", t.quals, t.name, t.arraySize, t.body.Index, t.body.Gen)
	if t.contained != nil {
		b.WriteString("|c:" + t.contained.key)
	}
	for _, arg := range t.template {
		b.WriteString("|t:" + arg.key)
	}
	for _, param := range t.params {
		b.WriteString("|p:" + param.key)
	}
	if t.ret != nil {
		b.WriteString("|r:" + t.ret.key)
	}
	return b.String()
}

// NewPrimitive returns the built-in type of the given kind
func NewPrimitive(kind TYPE_NAME) *Type {
	if !isPrimitiveKind(kind) {
		panic("not a primitive kind: " + string(kind))
	}
	return intern(Type{kind: kind})
}

func NewStruct(name string, templateArgs []*Type, body ids.ScopeID) *Type {
	return intern(Type{kind: TYPE_STRUCT, name: name, template: templateArgs, body: body})
}

func NewInterface(name string, templateArgs []*Type, body ids.ScopeID) *Type {
	return intern(Type{kind: TYPE_INTERFACE, name: name, template: templateArgs, body: body})
}

func NewEnum(name string, body ids.ScopeID) *Type {
	return intern(Type{kind: TYPE_ENUM, name: name, body: body})
}

func NewGeneric(name string) *Type {
	return intern(Type{kind: TYPE_GENERIC, name: name})
}

func NewAlias(name string, target *Type) *Type {
	return intern(Type{kind: TYPE_ALIAS, name: name, contained: target})
}

// NewImport is the type of an import alias; body is the imported file's root scope
func NewImport(name string, body ids.ScopeID) *Type {
	return intern(Type{kind: TYPE_IMPORT, name: name, body: body})
}

func NewFunction(ret *Type, params []*Type) *Type {
	return intern(Type{kind: TYPE_FUNCTION, ret: ret, params: params})
}

func NewProcedure(params []*Type) *Type {
	return intern(Type{kind: TYPE_PROCEDURE, params: params})
}

func (t *Type) Kind() TYPE_NAME           { return t.kind }
func (t *Type) Qualifiers() Qualifiers    { return t.quals }
func (t *Type) Name() string              { return t.name }
func (t *Type) Contained() *Type          { return t.contained }
func (t *Type) ArraySize() int            { return t.arraySize }
func (t *Type) TemplateArgs() []*Type     { return t.template }
func (t *Type) ParamTypes() []*Type       { return t.params }
func (t *Type) ReturnType() *Type         { return t.ret }
func (t *Type) BodyScope() ids.ScopeID    { return t.body }
func (t *Type) Is(kind TYPE_NAME) bool    { return t.kind == kind }
func (t *Type) HasQual(q Qualifiers) bool { return t.quals.Has(q) }

func (t *Type) IsOneOf(kinds ...TYPE_NAME) bool {
	for _, k := range kinds {
		if t.kind == k {
			return true
		}
	}
	return false
}

func (t *Type) IsPtr() bool        { return t.kind == TYPE_PTR }
func (t *Type) IsRef() bool        { return t.kind == TYPE_REF }
func (t *Type) IsArray() bool      { return t.kind == TYPE_ARRAY }
func (t *Type) IsConst() bool      { return t.quals.Has(QualConst) }
func (t *Type) IsHeap() bool       { return t.quals.Has(QualHeap) }
func (t *Type) IsPublic() bool     { return t.quals.Has(QualPublic) }
func (t *Type) IsDyn() bool        { return t.kind == TYPE_DYN }
func (t *Type) IsUnresolved() bool { return t.kind == TYPE_UNRESOLVED }

// IsNumeric reports whether t is one of the arithmetic primitives
func (t *Type) IsNumeric() bool {
	return t.IsOneOf(TYPE_DOUBLE, TYPE_INT, TYPE_SHORT, TYPE_LONG)
}

// IsInteger reports whether t is one of the integral primitives
func (t *Type) IsInteger() bool {
	return t.IsOneOf(TYPE_INT, TYPE_SHORT, TYPE_LONG)
}

// IsCallable reports whether values of t can be called
func (t *Type) IsCallable() bool {
	return t.IsOneOf(TYPE_FUNCTION, TYPE_PROCEDURE)
}

// IsCharArray reports whether t is char[N]
func (t *Type) IsCharArray() bool {
	return t.kind == TYPE_ARRAY && t.contained.kind == TYPE_CHAR
}

func (t *Type) ToPtr() *Type {
	return intern(Type{kind: TYPE_PTR, contained: t})
}

func (t *Type) ToRef() *Type {
	if t.kind == TYPE_REF {
		return t
	}
	return intern(Type{kind: TYPE_REF, contained: t})
}

// ToArr wraps t in an array type. size 0 means unknown.
func (t *Type) ToArr(size int) *Type {
	return intern(Type{kind: TYPE_ARRAY, contained: t, arraySize: size})
}

func (t *Type) ToConstRef() *Type {
	return t.WithQuals(QualConst).ToRef()
}

// WithQuals adds qualifiers
func (t *Type) WithQuals(q Qualifiers) *Type {
	if t.quals.Has(q) {
		return t
	}
	c := *t
	c.quals |= q
	return intern(c)
}

// WithoutQuals removes qualifiers
func (t *Type) WithoutQuals(q Qualifiers) *Type {
	if t.quals&q == 0 {
		return t
	}
	c := *t
	c.quals &^= q
	return intern(c)
}

// Unqualified strips every qualifier
func (t *Type) Unqualified() *Type {
	return t.WithoutQuals(t.quals)
}

func (t *Type) WithTemplateArgs(args []*Type) *Type {
	c := *t
	c.template = args
	return intern(c)
}

func (t *Type) WithBodyScope(body ids.ScopeID) *Type {
	c := *t
	c.body = body
	return intern(c)
}

// RemoveRef returns the referenced type of a reference, t otherwise
func (t *Type) RemoveRef() *Type {
	if t.kind == TYPE_REF {
		return t.contained
	}
	return t
}

// AutoDeref removes references and pointers until a non-pointer type is reached
func (t *Type) AutoDeref() *Type {
	cur := t.RemoveRef()
	for cur.kind == TYPE_PTR {
		cur = cur.contained.RemoveRef()
	}
	return cur
}

// BaseType strips every pointer, reference and array layer
func (t *Type) BaseType() *Type {
	cur := t
	for cur.IsOneOf(TYPE_PTR, TYPE_REF, TYPE_ARRAY) {
		cur = cur.contained
	}
	return cur
}

// ReplaceBaseType rebuilds the pointer/reference/array chain of t around base
func (t *Type) ReplaceBaseType(base *Type) *Type {
	switch t.kind {
	case TYPE_PTR:
		return t.contained.ReplaceBaseType(base).ToPtr().WithQuals(t.quals)
	case TYPE_REF:
		return t.contained.ReplaceBaseType(base).ToRef().WithQuals(t.quals)
	case TYPE_ARRAY:
		return t.contained.ReplaceBaseType(base).ToArr(t.arraySize).WithQuals(t.quals)
	}
	return base.WithQuals(t.quals)
}

// HasAnyGenericParts reports whether a generic placeholder occurs anywhere in t
func (t *Type) HasAnyGenericParts() bool {
	if t.kind == TYPE_GENERIC {
		return true
	}
	if t.contained != nil && t.kind != TYPE_ALIAS && t.contained.HasAnyGenericParts() {
		return true
	}
	for _, arg := range t.template {
		if arg.HasAnyGenericParts() {
			return true
		}
	}
	for _, p := range t.params {
		if p.HasAnyGenericParts() {
			return true
		}
	}
	return t.ret != nil && t.ret.HasAnyGenericParts()
}

// IsSameContainerTypeAs reports whether t and other have the same base kind and name, ignoring template args
func (t *Type) IsSameContainerTypeAs(other *Type) bool {
	return t.kind == other.kind && t.name == other.name
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	prefix := ""
	if q := t.quals & identityQuals; q != 0 {
		prefix = q.String() + " "
	}
	switch t.kind {
	case TYPE_PTR:
		return prefix + t.contained.String() + "*"
	case TYPE_REF:
		return prefix + t.contained.String() + "&"
	case TYPE_ARRAY:
		if t.arraySize == 0 {
			return prefix + t.contained.String() + "[]"
		}
		return fmt.Sprintf("%s%s[%d]", prefix, t.contained.String(), t.arraySize)
	case TYPE_STRUCT, TYPE_INTERFACE:
		return prefix + t.name + templateString(t.template)
	case TYPE_ENUM, TYPE_GENERIC, TYPE_ALIAS, TYPE_IMPORT:
		return prefix + t.name
	case TYPE_FUNCTION:
		return prefix + "f<" + t.ret.String() + ">(" + joinTypes(t.params) + ")"
	case TYPE_PROCEDURE:
		return prefix + "p(" + joinTypes(t.params) + ")"
	}
	return prefix + string(t.kind)
}

func templateString(args []*Type) string {
	if len(args) == 0 {
		return ""
	}
	return "<" + joinTypes(args) + ">"
}

func joinTypes(ts []*Type) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.String()
	}
	return strings.Join(names, ",")
}

// TypesString renders a type list the way signatures are printed
func TypesString(ts []*Type) string {
	return joinTypes(ts)
}

package types

type TYPE_NAME string

const (
	TYPE_DOUBLE    TYPE_NAME = "double"
	TYPE_INT       TYPE_NAME = "int"
	TYPE_SHORT     TYPE_NAME = "short"
	TYPE_LONG      TYPE_NAME = "long"
	TYPE_BYTE      TYPE_NAME = "byte"
	TYPE_CHAR      TYPE_NAME = "char"
	TYPE_STRING    TYPE_NAME = "string"
	TYPE_BOOL      TYPE_NAME = "bool"
	TYPE_STRUCT    TYPE_NAME = "struct"
	TYPE_INTERFACE TYPE_NAME = "interface"
	TYPE_ENUM      TYPE_NAME = "enum"
	TYPE_GENERIC   TYPE_NAME = "generic"
	TYPE_ALIAS     TYPE_NAME = "alias"
	TYPE_FUNCTION  TYPE_NAME = "f"
	TYPE_PROCEDURE TYPE_NAME = "p"
	TYPE_PTR       TYPE_NAME = "ptr"
	TYPE_REF       TYPE_NAME = "ref"
	TYPE_ARRAY     TYPE_NAME = "array"
	TYPE_IMPORT    TYPE_NAME = "import"

	TYPE_DYN  TYPE_NAME = "dyn"  // Placeholder resolved by inference
	TYPE_VOID TYPE_NAME = "void" // Result of procedure calls, not spellable in source

	TYPE_UNRESOLVED TYPE_NAME = "<unresolved>" // Expression whose type could not be determined
)

// Qualifiers is a set of type qualifiers
type Qualifiers uint16

const (
	QualConst Qualifiers = 1 << iota
	QualSigned
	QualUnsigned
	QualInline
	QualPublic
	QualHeap
	QualComposition

	QualNone Qualifiers = 0
)

// Qualifiers that take part in type identity. The rest only describe the declaration.
const identityQuals = QualConst | QualUnsigned | QualHeap

var qualNames = []struct {
	q    Qualifiers
	name string
}{
	{QualConst, "const"},
	{QualSigned, "signed"},
	{QualUnsigned, "unsigned"},
	{QualInline, "inline"},
	{QualPublic, "public"},
	{QualHeap, "heap"},
	{QualComposition, "compose"},
}

// ParseQualifier maps a qualifier keyword to its flag
func ParseQualifier(name string) (Qualifiers, bool) {
	for _, qn := range qualNames {
		if qn.name == name {
			return qn.q, true
		}
	}
	return QualNone, false
}

func (q Qualifiers) Has(other Qualifiers) bool {
	return q&other == other
}

func (q Qualifiers) String() string {
	s := ""
	for _, qn := range qualNames {
		if q.Has(qn.q) {
			if s != "" {
				s += " "
			}
			s += qn.name
		}
	}
	return s
}

// Commonly used types (initialized in init())
var (
	TypeDouble     *Type
	TypeInt        *Type
	TypeShort      *Type
	TypeLong       *Type
	TypeByte       *Type
	TypeChar       *Type
	TypeString     *Type
	TypeBool       *Type
	TypeDyn        *Type
	TypeVoid       *Type
	TypeUnresolved *Type
)

func init() {
	TypeDouble = NewPrimitive(TYPE_DOUBLE)
	TypeInt = NewPrimitive(TYPE_INT)
	TypeShort = NewPrimitive(TYPE_SHORT)
	TypeLong = NewPrimitive(TYPE_LONG)
	TypeByte = NewPrimitive(TYPE_BYTE)
	TypeChar = NewPrimitive(TYPE_CHAR)
	TypeString = NewPrimitive(TYPE_STRING)
	TypeBool = NewPrimitive(TYPE_BOOL)
	TypeDyn = NewPrimitive(TYPE_DYN)
	TypeVoid = NewPrimitive(TYPE_VOID)
	TypeUnresolved = NewPrimitive(TYPE_UNRESOLVED)
}

// PrimitiveByName returns the built-in type spelled name
func PrimitiveByName(name string) (*Type, bool) {
	switch TYPE_NAME(name) {
	case TYPE_DOUBLE, TYPE_INT, TYPE_SHORT, TYPE_LONG, TYPE_BYTE, TYPE_CHAR, TYPE_STRING, TYPE_BOOL, TYPE_DYN:
		return NewPrimitive(TYPE_NAME(name)), true
	}
	return nil, false
}

func isPrimitiveKind(kind TYPE_NAME) bool {
	switch kind {
	case TYPE_DOUBLE, TYPE_INT, TYPE_SHORT, TYPE_LONG, TYPE_BYTE, TYPE_CHAR, TYPE_STRING, TYPE_BOOL,
		TYPE_DYN, TYPE_VOID, TYPE_UNRESOLVED:
		return true
	}
	return false
}

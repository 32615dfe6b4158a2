package tokens

type TOKEN string

const (
	//increment and decrement
	PLUS_PLUS_TOKEN   TOKEN = "++"
	MINUS_MINUS_TOKEN TOKEN = "--"
	//logical operators
	AND_TOKEN TOKEN = "&&"
	OR_TOKEN  TOKEN = "||"
	NOT_TOKEN TOKEN = "!"
	//bitwise operators
	BIT_AND_TOKEN TOKEN = "&"
	BIT_OR_TOKEN  TOKEN = "|"
	BIT_XOR_TOKEN TOKEN = "^"
	BIT_NOT_TOKEN TOKEN = "~"
	SHL_TOKEN     TOKEN = "<<"
	SHR_TOKEN     TOKEN = ">>"
	//arithmetic operators
	MINUS_TOKEN TOKEN = "-"
	PLUS_TOKEN  TOKEN = "+"
	MUL_TOKEN   TOKEN = "*"
	DIV_TOKEN   TOKEN = "/"
	MOD_TOKEN   TOKEN = "%"
	//comparison operators
	LESS_EQUAL_TOKEN    TOKEN = "<="
	GREATER_EQUAL_TOKEN TOKEN = ">="
	NOT_EQUAL_TOKEN     TOKEN = "!="
	DOUBLE_EQUAL_TOKEN  TOKEN = "=="
	LESS_TOKEN          TOKEN = "<"
	GREATER_TOKEN       TOKEN = ">"
	//assignment
	EQUALS_TOKEN         TOKEN = "="
	PLUS_EQUALS_TOKEN    TOKEN = "+="
	MINUS_EQUALS_TOKEN   TOKEN = "-="
	MUL_EQUALS_TOKEN     TOKEN = "*="
	DIV_EQUALS_TOKEN     TOKEN = "/="
	MOD_EQUALS_TOKEN     TOKEN = "%="
	SHL_EQUALS_TOKEN     TOKEN = "<<="
	SHR_EQUALS_TOKEN     TOKEN = ">>="
	BIT_AND_EQUALS_TOKEN TOKEN = "&="
	BIT_OR_EQUALS_TOKEN  TOKEN = "|="
	BIT_XOR_EQUALS_TOKEN TOKEN = "^="
	//pointer operators (prefix)
	ADDRESS_OF_TOKEN TOKEN = "&"
	DEREF_TOKEN      TOKEN = "*"
	//subscript
	SUBSCRIPT_TOKEN TOKEN = "[]"
)

// Prefix of the names operator overloads are declared under
const OverloadPrefix = "op."

var overloadNames = map[TOKEN]string{
	PLUS_TOKEN:         "plus",
	MINUS_TOKEN:        "minus",
	MUL_TOKEN:          "mul",
	DIV_TOKEN:          "div",
	DOUBLE_EQUAL_TOKEN: "equal",
	NOT_EQUAL_TOKEN:    "notequal",
	SHL_TOKEN:          "shl",
	SHR_TOKEN:          "shr",
	PLUS_EQUALS_TOKEN:  "plusequal",
	MINUS_EQUALS_TOKEN: "minusequal",
	MUL_EQUALS_TOKEN:   "mulequal",
	DIV_EQUALS_TOKEN:   "divequal",
	PLUS_PLUS_TOKEN:    "plusplus",
	MINUS_MINUS_TOKEN:  "minusminus",
	SUBSCRIPT_TOKEN:    "subscript",
}

// OverloadName returns the function name an overload of op is declared as, e.g. "op.plus"
func OverloadName(op TOKEN) (string, bool) {
	name, ok := overloadNames[op]
	if !ok {
		return "", false
	}
	return OverloadPrefix + name, true
}

// CompoundBase maps a compound assignment operator to its binary operator
func CompoundBase(op TOKEN) (TOKEN, bool) {
	switch op {
	case PLUS_EQUALS_TOKEN:
		return PLUS_TOKEN, true
	case MINUS_EQUALS_TOKEN:
		return MINUS_TOKEN, true
	case MUL_EQUALS_TOKEN:
		return MUL_TOKEN, true
	case DIV_EQUALS_TOKEN:
		return DIV_TOKEN, true
	case MOD_EQUALS_TOKEN:
		return MOD_TOKEN, true
	case SHL_EQUALS_TOKEN:
		return SHL_TOKEN, true
	case SHR_EQUALS_TOKEN:
		return SHR_TOKEN, true
	case BIT_AND_EQUALS_TOKEN:
		return BIT_AND_TOKEN, true
	case BIT_OR_EQUALS_TOKEN:
		return BIT_OR_TOKEN, true
	case BIT_XOR_EQUALS_TOKEN:
		return BIT_XOR_TOKEN, true
	}
	return "", false
}

// IsComparison reports whether op yields a bool from two operands of the same category
func IsComparison(op TOKEN) bool {
	switch op {
	case LESS_TOKEN, GREATER_TOKEN, LESS_EQUAL_TOKEN, GREATER_EQUAL_TOKEN, DOUBLE_EQUAL_TOKEN, NOT_EQUAL_TOKEN:
		return true
	}
	return false
}

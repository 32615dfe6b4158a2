package oprules

import (
	"github.com/spicelang/spice-sub000/internal/tokens"
	"github.com/spicelang/spice-sub000/internal/types"
)

// BinaryRule types lhs op rhs as Result
type BinaryRule struct {
	Lhs, Rhs types.TYPE_NAME
	Result   types.TYPE_NAME
}

// UnaryRule types op operand as Result
type UnaryRule struct {
	Operand types.TYPE_NAME
	Result  types.TYPE_NAME
}

const (
	DOUBLE = types.TYPE_DOUBLE
	INT    = types.TYPE_INT
	SHORT  = types.TYPE_SHORT
	LONG   = types.TYPE_LONG
	BYTE   = types.TYPE_BYTE
	CHAR   = types.TYPE_CHAR
	STRING = types.TYPE_STRING
	BOOL   = types.TYPE_BOOL
)

// Arithmetic promotes to the wider operand
var arithmeticRules = []BinaryRule{
	{DOUBLE, DOUBLE, DOUBLE},
	{DOUBLE, INT, DOUBLE},
	{DOUBLE, SHORT, DOUBLE},
	{DOUBLE, LONG, DOUBLE},
	{INT, DOUBLE, DOUBLE},
	{INT, INT, INT},
	{INT, SHORT, INT},
	{INT, LONG, LONG},
	{SHORT, DOUBLE, DOUBLE},
	{SHORT, INT, INT},
	{SHORT, SHORT, SHORT},
	{SHORT, LONG, LONG},
	{LONG, DOUBLE, DOUBLE},
	{LONG, INT, LONG},
	{LONG, SHORT, LONG},
	{LONG, LONG, LONG},
	{BYTE, BYTE, BYTE},
	{CHAR, CHAR, CHAR},
}

var plusRules = append([]BinaryRule{
	{STRING, STRING, STRING},
	{STRING, CHAR, STRING},
}, arithmeticRules...)

var integerRules = []BinaryRule{
	{INT, INT, INT},
	{INT, SHORT, INT},
	{INT, LONG, LONG},
	{SHORT, INT, INT},
	{SHORT, SHORT, SHORT},
	{SHORT, LONG, LONG},
	{LONG, INT, LONG},
	{LONG, SHORT, LONG},
	{LONG, LONG, LONG},
	{BYTE, BYTE, BYTE},
	{CHAR, CHAR, CHAR},
}

var bitwiseRules = append([]BinaryRule{
	{BOOL, BOOL, BOOL},
}, integerRules...)

// Shifts keep the type of the shifted operand
var shiftRules = []BinaryRule{
	{INT, INT, INT},
	{INT, SHORT, INT},
	{INT, LONG, INT},
	{SHORT, INT, SHORT},
	{SHORT, SHORT, SHORT},
	{SHORT, LONG, SHORT},
	{LONG, INT, LONG},
	{LONG, SHORT, LONG},
	{LONG, LONG, LONG},
	{BYTE, INT, BYTE},
	{BYTE, BYTE, BYTE},
}

var logicalRules = []BinaryRule{
	{BOOL, BOOL, BOOL},
}

var equalityRules = []BinaryRule{
	{DOUBLE, DOUBLE, BOOL},
	{DOUBLE, INT, BOOL},
	{DOUBLE, SHORT, BOOL},
	{DOUBLE, LONG, BOOL},
	{INT, DOUBLE, BOOL},
	{INT, INT, BOOL},
	{INT, SHORT, BOOL},
	{INT, LONG, BOOL},
	{INT, CHAR, BOOL},
	{SHORT, DOUBLE, BOOL},
	{SHORT, INT, BOOL},
	{SHORT, SHORT, BOOL},
	{SHORT, LONG, BOOL},
	{LONG, DOUBLE, BOOL},
	{LONG, INT, BOOL},
	{LONG, SHORT, BOOL},
	{LONG, LONG, BOOL},
	{BYTE, BYTE, BOOL},
	{CHAR, INT, BOOL},
	{CHAR, CHAR, BOOL},
	{STRING, STRING, BOOL},
	{BOOL, BOOL, BOOL},
}

var relationalRules = []BinaryRule{
	{DOUBLE, DOUBLE, BOOL},
	{DOUBLE, INT, BOOL},
	{DOUBLE, SHORT, BOOL},
	{DOUBLE, LONG, BOOL},
	{INT, DOUBLE, BOOL},
	{INT, INT, BOOL},
	{INT, SHORT, BOOL},
	{INT, LONG, BOOL},
	{SHORT, DOUBLE, BOOL},
	{SHORT, INT, BOOL},
	{SHORT, SHORT, BOOL},
	{SHORT, LONG, BOOL},
	{LONG, DOUBLE, BOOL},
	{LONG, INT, BOOL},
	{LONG, SHORT, BOOL},
	{LONG, LONG, BOOL},
	{BYTE, BYTE, BOOL},
	{CHAR, CHAR, BOOL},
}

// Assignment accepts the right side converted to the left side type
var assignRules = []BinaryRule{
	{DOUBLE, DOUBLE, DOUBLE},
	{INT, INT, INT},
	{INT, SHORT, INT},
	{INT, BYTE, INT},
	{INT, CHAR, INT},
	{SHORT, SHORT, SHORT},
	{SHORT, BYTE, SHORT},
	{LONG, LONG, LONG},
	{LONG, INT, LONG},
	{LONG, SHORT, LONG},
	{BYTE, BYTE, BYTE},
	{CHAR, CHAR, CHAR},
	{STRING, STRING, STRING},
	{BOOL, BOOL, BOOL},
}

var binaryTables = map[tokens.TOKEN][]BinaryRule{
	tokens.EQUALS_TOKEN:        assignRules,
	tokens.PLUS_TOKEN:          plusRules,
	tokens.MINUS_TOKEN:         arithmeticRules,
	tokens.MUL_TOKEN:           arithmeticRules,
	tokens.DIV_TOKEN:           arithmeticRules,
	tokens.MOD_TOKEN:           integerRules,
	tokens.BIT_AND_TOKEN:       bitwiseRules,
	tokens.BIT_OR_TOKEN:        bitwiseRules,
	tokens.BIT_XOR_TOKEN:       bitwiseRules,
	tokens.SHL_TOKEN:           shiftRules,
	tokens.SHR_TOKEN:           shiftRules,
	tokens.AND_TOKEN:           logicalRules,
	tokens.OR_TOKEN:            logicalRules,
	tokens.DOUBLE_EQUAL_TOKEN:  equalityRules,
	tokens.NOT_EQUAL_TOKEN:     equalityRules,
	tokens.LESS_TOKEN:          relationalRules,
	tokens.GREATER_TOKEN:       relationalRules,
	tokens.LESS_EQUAL_TOKEN:    relationalRules,
	tokens.GREATER_EQUAL_TOKEN: relationalRules,
}

var numericUnaryRules = []UnaryRule{
	{DOUBLE, DOUBLE},
	{INT, INT},
	{SHORT, SHORT},
	{LONG, LONG},
}

var incDecRules = []UnaryRule{
	{INT, INT},
	{SHORT, SHORT},
	{LONG, LONG},
	{BYTE, BYTE},
	{CHAR, CHAR},
}

var bitNotRules = []UnaryRule{
	{INT, INT},
	{SHORT, SHORT},
	{LONG, LONG},
	{BYTE, BYTE},
	{CHAR, CHAR},
}

var unaryTables = map[tokens.TOKEN][]UnaryRule{
	tokens.MINUS_TOKEN:       numericUnaryRules,
	tokens.NOT_TOKEN:         {{BOOL, BOOL}},
	tokens.BIT_NOT_TOKEN:     bitNotRules,
	tokens.PLUS_PLUS_TOKEN:   incDecRules,
	tokens.MINUS_MINUS_TOKEN: incDecRules,
}

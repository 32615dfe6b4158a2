// Package numeric validates numeric literals against the width of the type they end up in
package numeric

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Integer literal prefixes. 0h is the hexadecimal prefix of the language, 0x is accepted as well.
var bases = map[string]int{
	"0d": 10, "0D": 10,
	"0b": 2, "0B": 2,
	"0o": 8, "0O": 8,
	"0h": 16, "0H": 16,
	"0x": 16, "0X": 16,
}

// NumericValue is a parsed integer literal
type NumericValue interface {
	FitsInBitSize(bitSize int, signed bool) bool
	IsNegative() bool
	String() string
}

type smallValue int64

type bigValue struct{ v *big.Int }

// NewNumericValue parses an integer literal with an optional base prefix and
// '_' separators. Values beyond int64 keep their full precision.
func NewNumericValue(s string) (NumericValue, error) {
	digits, base, negative := split(s)
	if digits == "" {
		return nil, fmt.Errorf("invalid integer literal: %s", s)
	}
	if v, err := strconv.ParseInt(digits, base, 64); err == nil {
		if negative {
			v = -v
		}
		return smallValue(v), nil
	}
	v, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("invalid integer literal: %s", s)
	}
	if negative {
		v.Neg(v)
	}
	return bigValue{v}, nil
}

func split(s string) (digits string, base int, negative bool) {
	s = strings.ReplaceAll(s, "_", "")
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}
	base = 10
	if len(s) > 2 {
		if b, ok := bases[s[:2]]; ok {
			base = b
			s = s[2:]
		}
	}
	return s, base, negative
}

func (v smallValue) FitsInBitSize(bitSize int, signed bool) bool {
	if bitSize >= 64 {
		return signed || v >= 0
	}
	if signed {
		limit := int64(1) << (bitSize - 1)
		return int64(v) >= -limit && int64(v) < limit
	}
	return v >= 0 && int64(v) < int64(1)<<bitSize
}

func (v smallValue) IsNegative() bool { return v < 0 }
func (v smallValue) String() string   { return strconv.FormatInt(int64(v), 10) }

func (v bigValue) FitsInBitSize(bitSize int, signed bool) bool {
	return FitsInBitSize(v.v, bitSize, signed)
}

func (v bigValue) IsNegative() bool { return v.v.Sign() < 0 }
func (v bigValue) String() string   { return v.v.String() }

// FitsInBitSize checks if value is within the range of a bitSize wide integer
func FitsInBitSize(value *big.Int, bitSize int, signed bool) bool {
	one := big.NewInt(1)
	if signed {
		limit := new(big.Int).Lsh(one, uint(bitSize-1))
		min := new(big.Int).Neg(limit)
		return value.Cmp(min) >= 0 && value.Cmp(limit) < 0
	}
	if value.Sign() < 0 {
		return false
	}
	return value.Cmp(new(big.Int).Lsh(one, uint(bitSize))) < 0
}

// StringToFloat parses a double literal, '_' separators allowed
func StringToFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, "_", ""), 64)
}

// NumericToOrdinal renders 1 as 1st, 2 as 2nd, 11 as 11th and so on
func NumericToOrdinal(n int) string {
	if n <= 0 {
		return ""
	}
	switch n % 100 {
	case 11, 12, 13:
		return fmt.Sprintf("%dth", n)
	}
	switch n % 10 {
	case 1:
		return fmt.Sprintf("%dst", n)
	case 2:
		return fmt.Sprintf("%dnd", n)
	case 3:
		return fmt.Sprintf("%drd", n)
	}
	return fmt.Sprintf("%dth", n)
}

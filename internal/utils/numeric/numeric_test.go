package numeric

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNumericValue(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"42", "42"},
		{"-42", "-42"},
		{"1_000", "1000"},
		{"0d17", "17"},
		{"0b1010", "10"},
		{"0o17", "15"},
		{"0h1F", "31"},
		{"0xff", "255"},
		{"170141183460469231731687303715884105727", "170141183460469231731687303715884105727"},
	}

	for _, tt := range tests {
		v, err := NewNumericValue(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, v.String(), tt.input)
	}

	_, err := NewNumericValue("12abc")
	assert.Error(t, err)
	_, err = NewNumericValue("0x")
	assert.Error(t, err)
}

func TestFitsInBitSize(t *testing.T) {
	tests := []struct {
		input   string
		bitSize int
		signed  bool
		want    bool
	}{
		{"127", 8, true, true},
		{"128", 8, true, false},
		{"-128", 8, true, true},
		{"255", 8, false, true},
		{"256", 8, false, false},
		{"-1", 8, false, false},
		{"32767", 16, true, true},
		{"32768", 16, true, false},
		{"2147483647", 32, true, true},
		{"2147483648", 32, true, false},
		{"9223372036854775807", 64, true, true},
		{"9223372036854775808", 64, true, false},
		{"18446744073709551615", 64, false, true},
		{"18446744073709551616", 64, false, false},
	}

	for _, tt := range tests {
		v, err := NewNumericValue(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, v.FitsInBitSize(tt.bitSize, tt.signed), "%s in %d bits (signed=%v)", tt.input, tt.bitSize, tt.signed)
	}

	assert.True(t, FitsInBitSize(big.NewInt(-32768), 16, true))
	assert.False(t, FitsInBitSize(big.NewInt(-32769), 16, true))
}

func TestStringToFloat(t *testing.T) {
	v, err := StringToFloat("1_000.5")
	require.NoError(t, err)
	assert.Equal(t, 1000.5, v)

	_, err = StringToFloat("1.2.3")
	assert.Error(t, err)
}

func TestNumericToOrdinal(t *testing.T) {
	assert.Equal(t, "1st", NumericToOrdinal(1))
	assert.Equal(t, "2nd", NumericToOrdinal(2))
	assert.Equal(t, "3rd", NumericToOrdinal(3))
	assert.Equal(t, "4th", NumericToOrdinal(4))
	assert.Equal(t, "11th", NumericToOrdinal(11))
	assert.Equal(t, "12th", NumericToOrdinal(12))
	assert.Equal(t, "22nd", NumericToOrdinal(22))
	assert.Equal(t, "", NumericToOrdinal(0))
}

package colors

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripANSI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"\033[31merror\033[0m", "error"},
		{"\033[1;33mwarn\033[0m: x", "warn: x"},
		{"\033[38;5;208morange\033[0m", "orange"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripANSI(tt.in))
	}
}

func TestModeNeverWritesPlainText(t *testing.T) {
	SetMode(Never)
	defer SetMode(Auto)

	var buf bytes.Buffer
	RED.Fprintf(&buf, "value %d", 3)
	assert.Equal(t, "value 3", buf.String())
}

func TestModeAlwaysWrapsText(t *testing.T) {
	SetMode(Always)
	defer SetMode(Auto)

	assert.Equal(t, string(GREEN)+"ok"+string(RESET), GREEN.Sprint("ok"))
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

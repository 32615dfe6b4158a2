package colors

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/mattn/go-isatty"
)

// COLOR is an ANSI escape sequence used as a printing style
type COLOR string

const (
	RESET  COLOR = "\033[0m"
	RED    COLOR = "\033[31m"
	GREEN  COLOR = "\033[32m"
	YELLOW COLOR = "\033[33m"
	BLUE   COLOR = "\033[34m"
	PURPLE COLOR = "\033[35m"
	CYAN   COLOR = "\033[36m"
	WHITE  COLOR = "\033[37m"
	GREY   COLOR = "\033[90m"
	BOLD   COLOR = "\033[1m"

	BOLD_RED    COLOR = "\033[1;31m"
	BOLD_YELLOW COLOR = "\033[1;33m"
	BOLD_BLUE   COLOR = "\033[1;34m"

	ORANGE       COLOR = "\033[38;5;208m"
	BROWN        COLOR = "\033[38;5;130m"
	LIGHT_ORANGE COLOR = "\033[38;5;215m"
)

// Mode selects when escape sequences are written
type Mode int

const (
	Auto Mode = iota
	Always
	Never
)

var enabled atomic.Bool

func init() {
	enabled.Store(isTerminal(os.Stderr))
}

// SetMode configures coloring for all printers. Auto colors only when stderr is a terminal.
func SetMode(mode Mode) {
	switch mode {
	case Always:
		enabled.Store(true)
	case Never:
		enabled.Store(false)
	default:
		enabled.Store(isTerminal(os.Stderr))
	}
}

// Enabled reports whether escape sequences are currently emitted
func Enabled() bool {
	return enabled.Load()
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isTerminal(f)
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (c COLOR) wrap(s string) string {
	if !Enabled() {
		return s
	}
	return string(c) + s + string(RESET)
}

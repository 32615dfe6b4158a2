package diagnostics

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/cznic/mathutil"

	"github.com/spicelang/spice-sub000/colors"
	"github.com/spicelang/spice-sub000/internal/source"
)

// SourceCache caches file lines so snippets can be printed without re-reading files
type SourceCache struct {
	mu    sync.Mutex
	files map[string][]string
}

func NewSourceCache() *SourceCache {
	return &SourceCache{files: make(map[string][]string)}
}

// AddSource registers in-memory content for a path
func (sc *SourceCache) AddSource(filepath, content string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.files[filepath] = source.SplitLines(content)
}

// GetLine returns the 1-based line of a file, loading it from disk on first use
func (sc *SourceCache) GetLine(filepath string, line int) (string, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	lines, ok := sc.files[filepath]
	if !ok {
		var err error
		lines, err = source.GetSourceLines(filepath)
		if err != nil {
			return "", err
		}
		sc.files[filepath] = lines
	}
	if line < 1 || line > len(lines) {
		return "", fmt.Errorf("line %d out of range for %s", line, filepath)
	}
	return lines[line-1], nil
}

// Emitter renders diagnostics in a rustc-like layout
type Emitter struct {
	cache  *SourceCache
	writer io.Writer
}

// NewEmitter renders to w, taking source snippets from cache. A nil cache
// renders headers and labels only.
func NewEmitter(w io.Writer, cache *SourceCache) *Emitter {
	if cache == nil {
		cache = NewSourceCache()
	}
	return &Emitter{cache: cache, writer: w}
}

func (e *Emitter) Emit(diag *Diagnostic) {
	e.printHeader(diag)

	gutter := 1
	for _, label := range diag.Labels {
		if label.Location != nil && label.Location.Start != nil {
			gutter = mathutil.Max(gutter, len(fmt.Sprint(label.Location.Start.Line)))
		}
	}

	for _, label := range diag.Labels {
		e.printLabel(diag, label, gutter)
	}
	for _, note := range diag.Notes {
		fmt.Fprint(e.writer, strings.Repeat(" ", gutter))
		colors.GREY.Fprint(e.writer, " = ")
		fmt.Fprintln(e.writer, "note: "+note)
	}
	if diag.Help != "" {
		fmt.Fprint(e.writer, strings.Repeat(" ", gutter))
		colors.GREY.Fprint(e.writer, " = ")
		colors.GREEN.Fprintln(e.writer, "help: "+diag.Help)
	}
	fmt.Fprintln(e.writer)
}

func (e *Emitter) printHeader(diag *Diagnostic) {
	color := colors.BOLD_RED
	if diag.Severity == Warning {
		color = colors.BOLD_YELLOW
	} else if diag.Severity == Info {
		color = colors.BOLD_BLUE
	}

	color.Fprint(e.writer, diag.Severity.String())
	if diag.Code != "" {
		color.Fprintf(e.writer, "[%s]", diag.Code)
	}
	fmt.Fprint(e.writer, ": ")
	colors.BOLD.Fprintln(e.writer, diag.Message)
}

func (e *Emitter) printLabel(diag *Diagnostic, label Label, gutter int) {
	loc := label.Location
	if loc == nil || loc.Start == nil {
		return
	}
	file := loc.File()
	if file == "" {
		file = diag.FilePath
	}

	if label.Style == Primary {
		fmt.Fprint(e.writer, strings.Repeat(" ", gutter))
		colors.BLUE.Fprintf(e.writer, "--> %s:%d:%d\n", file, loc.Start.Line, loc.Start.Column)
	}

	line, err := e.cache.GetLine(file, loc.Start.Line)
	if err != nil {
		// No source available, print the label text only
		if label.Message != "" {
			fmt.Fprint(e.writer, strings.Repeat(" ", gutter))
			colors.GREY.Fprint(e.writer, " = ")
			fmt.Fprintln(e.writer, label.Message)
		}
		return
	}

	fmt.Fprint(e.writer, strings.Repeat(" ", gutter))
	colors.GREY.Fprintln(e.writer, " |")
	colors.GREY.Fprintf(e.writer, "%*d | ", gutter, loc.Start.Line)
	fmt.Fprintln(e.writer, line)

	start := mathutil.Clamp(loc.Start.Column, 1, len(line)+1)
	width := 1
	if loc.End != nil && loc.End.Line == loc.Start.Line {
		width = mathutil.Clamp(loc.End.Column-start, 1, len(line)+2-start)
	}

	mark, color := "^", colors.RED
	if label.Style == Secondary {
		mark, color = "-", colors.BLUE
	} else if diag.Severity == Warning {
		color = colors.YELLOW
	}

	fmt.Fprint(e.writer, strings.Repeat(" ", gutter))
	colors.GREY.Fprint(e.writer, " | ")
	fmt.Fprint(e.writer, strings.Repeat(" ", start-1))
	color.Fprintln(e.writer, strings.Repeat(mark, width)+" "+label.Message)
}

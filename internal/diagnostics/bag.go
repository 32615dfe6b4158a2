package diagnostics

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/emirpasic/gods/sets/hashset"

	"github.com/spicelang/spice-sub000/colors"
)

const (
	compileFailedMsg          = "\nCompilation failed with %d error(s)"
	andWarningMsg             = " and %d warning(s)"
	compileSuccessWithWarning = "\nCompilation succeeded with %d warning(s)\n"
)

// DiagnosticBag collects diagnostics during compilation
type DiagnosticBag struct {
	diagnostics []*Diagnostic
	mu          sync.Mutex
	errorCount  int
	warnCount   int
	sourceCache *SourceCache

	disabled         *hashset.Set
	warningsAsErrors bool
}

// NewDiagnosticBag creates an empty diagnostic bag
func NewDiagnosticBag() *DiagnosticBag {
	return &DiagnosticBag{
		diagnostics: make([]*Diagnostic, 0),
		sourceCache: NewSourceCache(),
		disabled:    hashset.New(),
	}
}

// SetWarningPolicy drops warnings with a disabled code and optionally promotes the rest to errors
func (db *DiagnosticBag) SetWarningPolicy(disabled []string, asErrors bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.disabled.Clear()
	for _, code := range disabled {
		db.disabled.Add(code)
	}
	db.warningsAsErrors = asErrors
}

// AddSourceContent adds source content for a file path (for in-memory compilation)
func (db *DiagnosticBag) AddSourceContent(filepath, content string) {
	db.sourceCache.AddSource(filepath, content)
}

// Add adds a diagnostic to the bag
func (db *DiagnosticBag) Add(diag *Diagnostic) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if diag.Severity == Warning {
		if db.disabled.Contains(diag.Code) {
			return
		}
		if db.warningsAsErrors {
			diag.Severity = Error
		}
	}

	db.diagnostics = append(db.diagnostics, diag)

	switch diag.Severity {
	case Error:
		db.errorCount++
	case Warning:
		db.warnCount++
	}
}

// SoftError records an error and lets the caller continue
func (db *DiagnosticBag) SoftError(diag *Diagnostic) {
	diag.Severity = Error
	db.Add(diag)
}

// HardError records an error and unwinds the current file
func (db *DiagnosticBag) HardError(diag *Diagnostic) {
	diag.Severity = Error
	db.Add(diag)
	Abort(diag)
}

// Warn records a warning
func (db *DiagnosticBag) Warn(diag *Diagnostic) {
	diag.Severity = Warning
	db.Add(diag)
}

// HasErrors returns true if there are any errors
func (db *DiagnosticBag) HasErrors() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.errorCount > 0
}

// ErrorCount returns the number of errors
func (db *DiagnosticBag) ErrorCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.errorCount
}

// WarningCount returns the number of warnings
func (db *DiagnosticBag) WarningCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.warnCount
}

// Diagnostics returns a copy of all diagnostics
func (db *DiagnosticBag) Diagnostics() []*Diagnostic {
	db.mu.Lock()
	defer db.mu.Unlock()
	result := make([]*Diagnostic, len(db.diagnostics))
	copy(result, db.diagnostics)
	return result
}

// WithCode returns the diagnostics carrying code
func (db *DiagnosticBag) WithCode(code string) []*Diagnostic {
	var result []*Diagnostic
	for _, diag := range db.Diagnostics() {
		if diag.Code == code {
			result = append(result, diag)
		}
	}
	return result
}

// EmitAll renders every diagnostic followed by a summary line
func (db *DiagnosticBag) EmitAll(w io.Writer) {
	emitter := NewEmitter(w, db.sourceCache)
	for _, diag := range db.Diagnostics() {
		emitter.Emit(diag)
	}
	db.printSummary(w)
}

// EmitAllToString emits all diagnostics to a string
func (db *DiagnosticBag) EmitAllToString() string {
	var buf bytes.Buffer
	db.EmitAll(&buf)
	return buf.String()
}

func (db *DiagnosticBag) printSummary(w io.Writer) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.errorCount > 0 {
		colors.RED.Fprintf(w, compileFailedMsg, db.errorCount)
		if db.warnCount > 0 {
			colors.RED.Fprintf(w, andWarningMsg, db.warnCount)
		}
		fmt.Fprintln(w)
	} else if db.warnCount > 0 {
		colors.ORANGE.Fprintf(w, compileSuccessWithWarning, db.warnCount)
	}
}

// Clear removes all diagnostics
func (db *DiagnosticBag) Clear() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.diagnostics = make([]*Diagnostic, 0)
	db.errorCount = 0
	db.warnCount = 0
}

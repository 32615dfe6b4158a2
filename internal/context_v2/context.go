// Package context_v2 provides the central compilation context.
//
// ARCHITECTURE:
// Each module (source file) progresses through the phases independently:
// it is loaded, prepared (declarations and signatures registered) and then
// checked, possibly several times when generic code it owns gets new
// manifestations. The context owns everything shared between modules:
// the scope arena, the managers with all manifestations, the synthesizer,
// the diagnostics and the dependency graph.
//
// DESIGN PRINCIPLES:
// 1. Import paths are semantic identifiers (not file system paths)
// 2. Resolving the same import twice yields the same module
// 3. Cycle detection rejects circular imports before they are followed
package context_v2

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/emirpasic/gods/sets/hashset"

	"github.com/spicelang/spice-sub000/internal/config"
	"github.com/spicelang/spice-sub000/internal/diagnostics"
	"github.com/spicelang/spice-sub000/internal/frontend/ast"
	"github.com/spicelang/spice-sub000/internal/phase"
	"github.com/spicelang/spice-sub000/internal/semantics/manager"
	"github.com/spicelang/spice-sub000/internal/semantics/synth"
	"github.com/spicelang/spice-sub000/internal/semantics/table"
	"github.com/spicelang/spice-sub000/internal/source"
)

var (
	ErrCyclicImport   = errors.New("circular import detected")
	ErrModuleNotFound = errors.New("module not found")
)

// Module represents a single compiled module with its semantic information
type Module struct {
	// Core data
	ImportPath string    // Logical import path (e.g., "myproject/utils/math")
	FilePath   string    // Physical file path, also the owner key of manifestations
	AST        *ast.File // Parsed syntax tree

	// Compilation state
	Phase       phase.ModulePhase
	CheckPasses int  // Check passes run so far
	Failed      bool // A hard error aborted this module

	// Semantic data
	Scope    *table.Scope  // Module-level (global) scope
	Imports  []*Import     // Resolved imports
	Registry *NameRegistry // Exported names

	// Source metadata
	Content string // Raw source code (for diagnostics)
}

// Import represents a resolved import statement
type Import struct {
	Path     string           // Import path as written in source
	Alias    string           // Alias the imported names are qualified with
	Location *source.Location // Source location for diagnostics
	Module   *Module
	IsUsed   bool
}

// CompilerContext is the central compilation state manager
type CompilerContext struct {
	// Module registry: import path -> Module
	// This is the authoritative source for all compiled modules
	Modules map[string]*Module
	byFile  map[string]*Module
	mu      sync.RWMutex // protects Modules and DepGraph

	// Shared semantic state
	Arena    *table.Arena
	Managers *manager.Managers
	Synth    *synth.Synthesizer

	// Diagnostics: centralized error collection
	Diagnostics *diagnostics.DiagnosticBag

	// Dependency graph: import path -> list of imported paths
	// Used for cycle detection and check ordering
	DepGraph map[string][]string

	Config *config.Config
	Loader Loader

	// Debug mode and the writer traces go to
	Debug    bool
	DebugOut io.Writer
}

// New creates a new compiler context. A nil config means config.Default().
func New(cfg *config.Config, loader Loader) *CompilerContext {
	if cfg == nil {
		cfg = config.Default()
	}
	arena := table.NewArena()
	managers := manager.New(arena)
	bag := diagnostics.NewDiagnosticBag()
	bag.SetWarningPolicy(cfg.Warnings.Disabled, cfg.Warnings.AsErrors)

	return &CompilerContext{
		Modules:     make(map[string]*Module),
		byFile:      make(map[string]*Module),
		Arena:       arena,
		Managers:    managers,
		Synth:       synth.New(managers),
		Diagnostics: bag,
		DepGraph:    make(map[string][]string),
		Config:      cfg,
		Loader:      loader,
		Debug:       cfg.Debug,
		DebugOut:    os.Stderr,
	}
}

// NormalizeImportPath normalizes an import path for semantic use
//
// Import paths are semantic identifiers, not file system paths. This function
// ensures consistent representation by:
// - Trimming leading/trailing whitespace
// - Trimming leading/trailing slashes
// - Collapsing multiple consecutive slashes into one
// - Using forward slashes only (no backslashes)
//
// Examples:
//   - " myproject/utils " -> "myproject/utils"
//   - "myproject//utils"  -> "myproject/utils"
//   - "/myproject/utils/" -> "myproject/utils"
//   - "myproject\utils"   -> "myproject/utils"
func NormalizeImportPath(importPath string) string {
	importPath = strings.TrimSpace(importPath)
	importPath = strings.ReplaceAll(importPath, "\\", "/")
	for strings.Contains(importPath, "//") {
		importPath = strings.ReplaceAll(importPath, "//", "/")
	}
	return strings.Trim(importPath, "/")
}

// LoadModule returns the module for importPath, loading it on first use
func (ctx *CompilerContext) LoadModule(importPath string) (*Module, error) {
	importPath = NormalizeImportPath(importPath)
	if module, ok := ctx.GetModule(importPath); ok {
		return module, nil
	}
	if ctx.Loader == nil {
		return nil, fmt.Errorf("%s: %w", importPath, ErrModuleNotFound)
	}
	file, err := ctx.Loader.Load(importPath)
	if err != nil {
		return nil, err
	}

	path := file.Path
	if path == "" {
		path = importPath
	}
	module := &Module{
		FilePath: path,
		AST:      file,
		Phase:    phase.PhaseLoaded,
		Scope:    ctx.Arena.NewRoot(path),
		Registry: NewNameRegistry(),
		Content:  file.Source,
	}
	if file.Source != "" {
		ctx.Diagnostics.AddSourceContent(path, file.Source)
	}
	ctx.addModule(importPath, module)
	return module, nil
}

// ResolveImport resolves an import of importer. It is idempotent and rejects cycles.
func (ctx *CompilerContext) ResolveImport(importer *Module, importPath string) (*Module, error) {
	importPath = NormalizeImportPath(importPath)
	if err := ctx.AddDependency(importer.ImportPath, importPath); err != nil {
		return nil, err
	}
	return ctx.LoadModule(importPath)
}

// addModule registers a module unless its import path is taken
func (ctx *CompilerContext) addModule(importPath string, module *Module) {
	if module == nil {
		panic(fmt.Sprintf("cannot add nil module for %q", importPath))
	}

	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	if _, exists := ctx.Modules[importPath]; exists {
		return
	}

	module.ImportPath = importPath
	ctx.Modules[importPath] = module
	ctx.byFile[module.FilePath] = module
}

// GetModule retrieves a module by import path
func (ctx *CompilerContext) GetModule(importPath string) (*Module, bool) {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	module, exists := ctx.Modules[importPath]
	return module, exists
}

// ModuleByFile retrieves a module by the file path manifestations are owned by
func (ctx *CompilerContext) ModuleByFile(filePath string) (*Module, bool) {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	module, exists := ctx.byFile[filePath]
	return module, exists
}

// GetModulePhase returns the current phase of a module
func (ctx *CompilerContext) GetModulePhase(importPath string) phase.ModulePhase {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	if module, exists := ctx.Modules[importPath]; exists {
		return module.Phase
	}
	return phase.PhaseNotStarted
}

// AdvanceModulePhase moves a module to target if it sits in target's prerequisite phase
func (ctx *CompilerContext) AdvanceModulePhase(importPath string, target phase.ModulePhase) bool {
	if !ctx.CanProcessPhase(importPath, target) {
		return false
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	module, exists := ctx.Modules[importPath]
	if !exists {
		return false
	}
	module.Phase = target
	return true
}

// CanProcessPhase reports whether a module may enter the required phase
func (ctx *CompilerContext) CanProcessPhase(importPath string, required phase.ModulePhase) bool {
	current := ctx.GetModulePhase(importPath)
	prerequisite, exists := phase.PhasePrerequisites[required]
	return exists && current == prerequisite
}

// AddDependency records that importer imports imported. The edge is refused
// with ErrCyclicImport when it would close a cycle.
func (ctx *CompilerContext) AddDependency(importer, imported string) error {
	importer = filepath.ToSlash(importer)
	imported = filepath.ToSlash(imported)

	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	if cycle := ctx.findCycle(imported, importer); cycle != nil {
		return fmt.Errorf("%w: %s", ErrCyclicImport, formatCycle(cycle))
	}

	for _, existing := range ctx.DepGraph[importer] {
		if existing == imported {
			return nil
		}
	}

	ctx.DepGraph[importer] = append(ctx.DepGraph[importer], imported)
	return nil
}

// findCycle looks for a path from -> ... -> to. Together with the new edge
// to -> from it closes a cycle, returned as to -> from -> ... -> to.
func (ctx *CompilerContext) findCycle(from, to string) []string {
	visited := hashset.New()
	var walk func(cur string, path []string) []string
	walk = func(cur string, path []string) []string {
		path = append(path, cur)
		if cur == to {
			return path
		}
		if visited.Contains(cur) {
			return nil
		}
		visited.Add(cur)
		for _, dep := range ctx.DepGraph[cur] {
			if found := walk(filepath.ToSlash(dep), path); found != nil {
				return found
			}
		}
		return nil
	}

	path := walk(from, nil)
	if path == nil {
		return nil
	}
	return append([]string{to}, path...)
}

// formatCycle formats a cycle path for error messages
func formatCycle(cycle []string) string {
	parts := make([]string, len(cycle))
	for i, path := range cycle {
		parts[i] = filepath.Base(path)
	}
	return strings.Join(parts, " -> ")
}

// HasErrors returns true if any errors have been reported
func (ctx *CompilerContext) HasErrors() bool {
	return ctx.Diagnostics.HasErrors()
}

// ModuleCount returns the number of modules in the context
func (ctx *CompilerContext) ModuleCount() int {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return len(ctx.Modules)
}

// TopologicalOrder returns the import paths with every module after its imports.
// Modules without an order between them are sorted by name.
func (ctx *CompilerContext) TopologicalOrder() []string {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()

	inDegree := make(map[string]int)
	for modulePath := range ctx.Modules {
		inDegree[modulePath] = 0
	}
	for importer, deps := range ctx.DepGraph {
		if _, ok := ctx.Modules[importer]; !ok {
			continue
		}
		for _, dep := range deps {
			if _, ok := ctx.Modules[dep]; ok {
				inDegree[importer]++
			}
		}
	}

	var queue []string
	for module, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, module)
		}
	}
	sort.Strings(queue)

	var sorted []string
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		sorted = append(sorted, current)

		var next []string
		for importer, deps := range ctx.DepGraph {
			for _, dep := range deps {
				if dep == current {
					if _, ok := inDegree[importer]; !ok {
						continue
					}
					inDegree[importer]--
					if inDegree[importer] == 0 {
						next = append(next, importer)
					}
				}
			}
		}
		sort.Strings(next)
		queue = append(queue, next...)
	}
	return sorted
}

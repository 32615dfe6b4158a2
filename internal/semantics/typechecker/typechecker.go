// Package typechecker resolves and checks the declarations of one module.
//
// Checking runs in two passes. Prepare registers every declaration of the
// module with the scope tree and the managers without looking into bodies.
// Check visits every manifestation the module owns that is not checked yet.
// Check is called again whenever new manifestations of the module show up.
package typechecker

import (
	"fmt"

	"github.com/spicelang/spice-sub000/colors"
	"github.com/spicelang/spice-sub000/internal/context_v2"
	"github.com/spicelang/spice-sub000/internal/diagnostics"
	"github.com/spicelang/spice-sub000/internal/frontend/ast"
	"github.com/spicelang/spice-sub000/internal/semantics/manager"
	"github.com/spicelang/spice-sub000/internal/semantics/matcher"
	"github.com/spicelang/spice-sub000/internal/semantics/table"
	"github.com/spicelang/spice-sub000/internal/source"
	"github.com/spicelang/spice-sub000/internal/types"
)

// returnContext describes the callable whose body is being checked
type returnContext struct {
	// Type is the declared return type, nil for procedures, dyn for expression lambdas
	Type     *types.Type
	IsLambda bool
}

// Checker holds the traversal state for one module
type Checker struct {
	ctx *context_v2.CompilerContext
	mod *context_v2.Module

	scope   *table.Scope
	manIdx  int
	mapping matcher.TypeMapping
	ret     *returnContext

	generics map[string]*types.GenericType
	funcs    map[*ast.FuncDef]*manager.Function
	structs  map[*ast.StructDef]*manager.Struct
	ifaces   map[*ast.InterfaceDef]*manager.Interface

	usedImports      map[string]bool
	globalsChecked   bool
	fallthroughLegal bool
}

// New creates the checker of mod
func New(ctx *context_v2.CompilerContext, mod *context_v2.Module) *Checker {
	return &Checker{
		ctx:         ctx,
		mod:         mod,
		scope:       mod.Scope,
		mapping:     matcher.TypeMapping{},
		generics:    make(map[string]*types.GenericType),
		funcs:       make(map[*ast.FuncDef]*manager.Function),
		structs:     make(map[*ast.StructDef]*manager.Struct),
		ifaces:      make(map[*ast.InterfaceDef]*manager.Interface),
		usedImports: make(map[string]bool),
	}
}

// Module returns the module this checker works on
func (c *Checker) Module() *context_v2.Module {
	return c.mod
}

// enterScope makes s the current scope and returns the function restoring
// the previous one, to be used as `defer c.enterScope(s)()`
func (c *Checker) enterScope(s *table.Scope) func() {
	prev := c.scope
	c.scope = s
	if c.ctx.Debug {
		colors.GREY.Fprintf(c.ctx.DebugOut, "  enter %s\n", s)
	}
	return func() {
		c.scope = prev
	}
}

// enterManifestation switches the result slot index and the type mapping
func (c *Checker) enterManifestation(idx int, mapping matcher.TypeMapping) func() {
	prevIdx, prevMapping := c.manIdx, c.mapping
	c.manIdx, c.mapping = idx, mapping
	return func() {
		c.manIdx, c.mapping = prevIdx, prevMapping
	}
}

func (c *Checker) childScope(prefix string, loc *source.Location, kind table.ScopeKind) *table.Scope {
	return c.scope.CreateChildScope(prefix+":"+loc.Key(), kind)
}

func (c *Checker) softError(d *diagnostics.Diagnostic) {
	c.ctx.Diagnostics.SoftError(d)
}

// hardError records d and unwinds the checking of the current module
func (c *Checker) hardError(d *diagnostics.Diagnostic) {
	c.ctx.Diagnostics.HardError(d)
}

// warn records d once per declaration; later manifestations repeat the same findings
func (c *Checker) warn(d *diagnostics.Diagnostic) {
	if c.manIdx == 0 {
		c.ctx.Diagnostics.Warn(d)
	}
}

// isUnsafe reports whether unsafe operations are allowed at the current position
func (c *Checker) isUnsafe() bool {
	return c.ctx.Config.AllowUnsafeEverywhere || c.scope.IsInUnsafe()
}

func (c *Checker) trace(format string, args ...any) {
	if c.ctx.Debug {
		colors.CYAN.Fprintf(c.ctx.DebugOut, format+"\n", args...)
	}
}

// substitute applies the mapping of the current manifestation
func (c *Checker) substitute(t *types.Type) *types.Type {
	if t == nil || len(c.mapping) == 0 {
		return t
	}
	return matcher.SubstantiateTypeWithTypeMapping(t, c.mapping, c.ctx.Managers.Bind)
}

// ReportUnusedImports warns about imports no expression or type referenced
func (c *Checker) ReportUnusedImports() {
	for _, imp := range c.mod.Imports {
		if imp.IsUsed || c.usedImports[imp.Alias] {
			continue
		}
		c.ctx.Diagnostics.Warn(
			diagnostics.NewWarning(fmt.Sprintf("import %q is never used", imp.Path)).
				WithCode(diagnostics.WarnUnusedImport).
				WithPrimaryLabel(imp.Location, "unused import").
				WithHelp("remove the import"),
		)
	}
}

func (c *Checker) markImportUsed(alias string) {
	c.usedImports[alias] = true
	for _, imp := range c.mod.Imports {
		if imp.Alias == alias {
			imp.IsUsed = true
		}
	}
}

// importedModule returns the module an import alias of this module names
func (c *Checker) importedModule(alias string) *context_v2.Module {
	for _, imp := range c.mod.Imports {
		if imp.Alias == alias {
			return imp.Module
		}
	}
	return nil
}

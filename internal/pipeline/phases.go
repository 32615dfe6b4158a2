package pipeline

import (
	"errors"
	"fmt"
	"path"

	"github.com/spicelang/spice-sub000/colors"
	"github.com/spicelang/spice-sub000/internal/context_v2"
	"github.com/spicelang/spice-sub000/internal/diagnostics"
	"github.com/spicelang/spice-sub000/internal/frontend/ast"
	"github.com/spicelang/spice-sub000/internal/phase"
	"github.com/spicelang/spice-sub000/internal/semantics/typechecker"
)

// prepare loads importPath and prepares it after everything it imports.
// It returns nil when the module cannot be used.
func (p *Pipeline) prepare(importPath string, importer *context_v2.Module, def *ast.ImportDef) *context_v2.Module {
	if p.aborted {
		return nil
	}

	var mod *context_v2.Module
	var err error
	if importer == nil {
		mod, err = p.ctx.LoadModule(importPath)
	} else {
		mod, err = p.ctx.ResolveImport(importer, importPath)
	}
	if err != nil {
		p.importError(err, importPath, importer, def)
		return nil
	}
	if _, seen := p.checkers[mod]; seen {
		return mod
	}

	checker := typechecker.New(p.ctx, mod)
	p.checkers[mod] = checker
	for _, imp := range mod.AST.Imports {
		alias := imp.Alias
		if alias == "" {
			alias = path.Base(context_v2.NormalizeImportPath(imp.Path))
		}
		dep := p.prepare(imp.Path, mod, imp)
		mod.Imports = append(mod.Imports, &context_v2.Import{
			Path:     imp.Path,
			Alias:    alias,
			Location: imp.Loc(),
			Module:   dep,
		})
	}

	if p.aborted {
		return nil
	}
	if p.skipForFailedImport(mod) {
		p.order = append(p.order, mod)
		return mod
	}
	p.runUnit(mod, checker.Prepare)
	p.order = append(p.order, mod)
	if mod.Failed {
		return mod
	}
	p.ctx.AdvanceModulePhase(mod.ImportPath, phase.PhasePrepared)
	if p.ctx.Debug {
		colors.PURPLE.Fprintf(p.ctx.DebugOut, "  ✓ %s\n", mod.ImportPath)
	}
	return mod
}

// importError reports an import that cannot be followed. A cycle is a hard
// error of the importer and aborts the compilation, a missing module is a
// soft error.
func (p *Pipeline) importError(err error, importPath string, importer *context_v2.Module, def *ast.ImportDef) {
	d := diagnostics.NewError(err.Error())
	if def != nil {
		d = d.WithPrimaryLabel(def.Loc(), "imported here")
	}
	if errors.Is(err, context_v2.ErrCyclicImport) {
		d = d.WithCode(diagnostics.ErrCyclicImport).
			WithHelp("move the shared declarations into a module both can import")
		p.runUnit(importer, func() { p.ctx.Diagnostics.HardError(d) })
		p.aborted = true
		return
	}
	p.ctx.Diagnostics.SoftError(d.WithCode(diagnostics.ErrModuleNotFound).
		WithNote(fmt.Sprintf("no module for import path %q", importPath)))
}

// check runs one check pass of mod
func (p *Pipeline) check(mod *context_v2.Module) {
	if p.aborted || mod.Failed || p.skipForFailedImport(mod) {
		return
	}
	if mod.CheckPasses >= p.ctx.Config.MaxRevisitPasses {
		p.ctx.Diagnostics.SoftError(diagnostics.NewError(fmt.Sprintf("module %s did not settle after %d check passes", mod.ImportPath, mod.CheckPasses)).
			WithCode(diagnostics.ErrRevisitLimitReached).
			WithHelp("raise max_revisit_passes or reduce recursive generic instantiation"))
		mod.Failed = true
		return
	}
	mod.CheckPasses++
	if p.ctx.Debug {
		colors.BLUE.Fprintf(p.ctx.DebugOut, "  check %s (pass %d)\n", mod.ImportPath, mod.CheckPasses)
	}
	p.runUnit(mod, p.checkers[mod].Check)
	if p.ctx.Debug {
		p.dumpManifestations(mod)
	}
}

// runUnit runs one unit of work on mod. A hard error unwinds to here and
// fails mod. Modules that do not import mod keep going.
func (p *Pipeline) runUnit(mod *context_v2.Module, unit func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		he, ok := diagnostics.AsHardError(r)
		if !ok {
			panic(r)
		}
		mod.Failed = true
		if p.ctx.Debug {
			colors.RED.Fprintf(p.ctx.DebugOut, "  ✗ %s: %s\n", mod.ImportPath, he.Diag.Message)
		}
	}()
	unit()
}

// skipForFailedImport fails mod without checking it when one of its imports
// failed. The import already reported why.
func (p *Pipeline) skipForFailedImport(mod *context_v2.Module) bool {
	for _, imp := range mod.Imports {
		if imp.Module == nil || !imp.Module.Failed {
			continue
		}
		mod.Failed = true
		if p.ctx.Debug {
			colors.GREY.Fprintf(p.ctx.DebugOut, "  skip %s, import %s failed\n", mod.ImportPath, imp.Module.ImportPath)
		}
		return true
	}
	return false
}

package pipeline

import (
	"errors"

	"github.com/emirpasic/gods/queues/arrayqueue"
	"github.com/emirpasic/gods/sets/hashset"

	"github.com/spicelang/spice-sub000/colors"
	"github.com/spicelang/spice-sub000/internal/context_v2"
	"github.com/spicelang/spice-sub000/internal/phase"
	"github.com/spicelang/spice-sub000/internal/semantics/manager"
	"github.com/spicelang/spice-sub000/internal/semantics/typechecker"
)

var (
	ErrCompilationFailed = errors.New("compilation failed with errors")
	ErrAborted           = errors.New("compilation aborted")
)

// Pipeline coordinates the compilation process.
//
// Every module is prepared once, imports first. Check passes are units of a
// FIFO work queue: each prepared module gets one, and every manifestation
// created for an already prepared module queues another pass of its owner.
// The queue drains once no pass creates new manifestations.
type Pipeline struct {
	ctx *context_v2.CompilerContext

	checkers map[*context_v2.Module]*typechecker.Checker
	order    []*context_v2.Module // modules in the order their preparation finished

	queue   *arrayqueue.Queue // modules waiting for a check pass
	pending *hashset.Set      // import paths currently in the queue

	aborted bool // a cyclic import stops everything
}

// New creates a new compilation pipeline
func New(ctx *context_v2.CompilerContext) *Pipeline {
	p := &Pipeline{
		ctx:      ctx,
		checkers: make(map[*context_v2.Module]*typechecker.Checker),
		queue:    arrayqueue.New(),
		pending:  hashset.New(),
	}
	ctx.Managers.OnNewManifestation(p.onNewManifestation)
	return p
}

// Run compiles the entry modules and everything they import
func (p *Pipeline) Run(entries ...string) error {
	if p.ctx.Debug {
		colors.CYAN.Fprintf(p.ctx.DebugOut, "\n[Phase 1] Prepare\n")
	}
	for _, entry := range entries {
		p.prepare(entry, nil, nil)
	}

	if p.ctx.Debug {
		colors.CYAN.Fprintf(p.ctx.DebugOut, "\n[Phase 2] Check\n")
	}
	for _, mod := range p.order {
		p.enqueue(mod)
	}
	for !p.aborted {
		v, ok := p.queue.Dequeue()
		if !ok {
			break
		}
		mod := v.(*context_v2.Module)
		p.pending.Remove(mod.ImportPath)
		p.check(mod)
	}
	if p.aborted {
		return ErrAborted
	}

	for _, mod := range p.order {
		if mod.Failed {
			continue
		}
		p.checkers[mod].ReportUnusedImports()
		p.ctx.AdvanceModulePhase(mod.ImportPath, phase.PhaseChecked)
		if p.ctx.Debug {
			colors.PURPLE.Fprintf(p.ctx.DebugOut, "  ✓ %s (%d passes)\n", mod.ImportPath, mod.CheckPasses)
		}
	}

	if p.ctx.HasErrors() {
		return ErrCompilationFailed
	}
	if p.ctx.Debug {
		colors.GREEN.Fprintf(p.ctx.DebugOut, "\n✓ Compilation successful! (%d modules)\n", p.ctx.ModuleCount())
	}
	return nil
}

// Checker returns the checker of an already prepared module
func (p *Pipeline) Checker(mod *context_v2.Module) *typechecker.Checker {
	return p.checkers[mod]
}

func (p *Pipeline) enqueue(mod *context_v2.Module) {
	if mod.Failed || p.pending.Contains(mod.ImportPath) {
		return
	}
	p.pending.Add(mod.ImportPath)
	p.queue.Enqueue(mod)
}

// onNewManifestation schedules another check pass of the owning module.
// Modules still being prepared get their first pass anyway.
func (p *Pipeline) onNewManifestation(man manager.Manifestation) {
	mod, ok := p.ctx.ModuleByFile(man.File())
	if !ok || mod.Phase < phase.PhasePrepared {
		return
	}
	if p.ctx.Debug {
		colors.GREY.Fprintf(p.ctx.DebugOut, "  new %s, revisit %s\n", man, mod.ImportPath)
	}
	p.enqueue(mod)
}

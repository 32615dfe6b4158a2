package pipeline

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"

	"github.com/spicelang/spice-sub000/colors"
	"github.com/spicelang/spice-sub000/internal/context_v2"
)

// manifestationDump is what debug mode prints per manifestation
type manifestationDump struct {
	Manifestation string
	Index         int
	Mapping       map[string]string
	Checked       bool
}

var dumpConfig = spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}

func (p *Pipeline) dumpManifestations(mod *context_v2.Module) {
	var dump []manifestationDump
	for _, man := range p.ctx.Managers.AllManifestations() {
		if man.File() != mod.FilePath {
			continue
		}
		mapping := make(map[string]string, len(man.Mapping()))
		for name, t := range man.Mapping() {
			mapping[name] = t.String()
		}
		dump = append(dump, manifestationDump{
			Manifestation: man.String(),
			Index:         man.Index(),
			Mapping:       mapping,
			Checked:       man.IsChecked(),
		})
	}
	dumpConfig.Fdump(p.ctx.DebugOut, dump)
}

// PrintSummary prints a summary of the compilation
func (p *Pipeline) PrintSummary(w io.Writer) {
	fmt.Fprintln(w)
	colors.CYAN.Fprintln(w, "═══════════════════════════════════════")
	colors.CYAN.Fprintln(w, "        COMPILATION SUMMARY")
	colors.CYAN.Fprintln(w, "═══════════════════════════════════════")

	fmt.Fprintf(w, "Total Modules: %d\n\n", p.ctx.ModuleCount())

	counts := make(map[string]int)
	for _, man := range p.ctx.Managers.AllManifestations() {
		counts[man.File()]++
	}

	// imports before importers
	for _, importPath := range p.ctx.TopologicalOrder() {
		mod, ok := p.ctx.GetModule(importPath)
		if !ok {
			continue
		}
		state := mod.Phase.String()
		if mod.Failed {
			state = "Failed"
		}
		fmt.Fprintf(w, " - %s (%s, %d check passes, %d manifestations)\n",
			mod.ImportPath, state, mod.CheckPasses, counts[mod.FilePath])
	}
}

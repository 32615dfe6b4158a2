package phase

// ModulePhase tracks the compilation phase of an individual module
//
// Phase progression must be sequential:
// - NotStarted -> Loaded -> Prepared -> Checked
//
// A module at PhasePrepared requires all its imports at least PhasePrepared,
// which the pipeline guarantees by preparing imports depth first. Checked
// is only reached once no check pass of the module is pending any more.
type ModulePhase int

const (
	PhaseNotStarted ModulePhase = iota // Module discovered but not processed
	PhaseLoaded                        // AST handed over by the loader
	PhasePrepared                      // Declarations, signatures and manifestations registered
	PhaseChecked                       // Every manifestation of the module type checked
)

// PhasePrerequisites maps each phase to its required predecessor phase
// This explicit mapping is safer than arithmetic and allows for non-linear phase progressions
var PhasePrerequisites = map[ModulePhase]ModulePhase{
	PhaseLoaded:   PhaseNotStarted,
	PhasePrepared: PhaseLoaded,
	PhaseChecked:  PhasePrepared,
}

func (p ModulePhase) String() string {
	switch p {
	case PhaseNotStarted:
		return "NotStarted"
	case PhaseLoaded:
		return "Loaded"
	case PhasePrepared:
		return "Prepared"
	case PhaseChecked:
		return "Checked"
	default:
		return "Unknown"
	}
}

package models

const (
	PhaseProd  = "prod"  // A1-A3
	PhaseMaint = "maint" // B4
	PhaseOp    = "op"    // B6
	PhaseEOL   = "eol"   // C3/C4
	PhaseRec   = "rec"   // D
)

// LifeCyclePhases lists all phases in report order.
var LifeCyclePhases = []string{PhaseProd, PhaseMaint, PhaseOp, PhaseEOL, PhaseRec}

var phaseLabels = map[string]string{
	PhaseProd:  "Production (A1-A3)",
	PhaseMaint: "Maintenance (B4)",
	PhaseOp:    "Operation (B6)",
	PhaseEOL:   "End of life (C3/C4)",
	PhaseRec:   "Recycling potential (D)",
}

func PhaseLabel(ident string) string {
	if l, ok := phaseLabels[ident]; ok {
		return l
	}
	return ident
}

func IsLifeCyclePhase(ident string) bool {
	_, ok := phaseLabels[ident]
	return ok
}

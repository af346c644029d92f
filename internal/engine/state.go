package engine

// State is the lifecycle state of one upgrade run.
type State int

const (
	StateIdle State = iota
	StatePlanSelected
	StateDDLPhase
	StateDMLPhase
	StateCommitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlanSelected:
		return "plan_selected"
	case StateDDLPhase:
		return "ddl_phase"
	case StateDMLPhase:
		return "dml_phase"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateFailed
}

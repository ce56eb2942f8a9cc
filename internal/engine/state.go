package engine

// State is the lifecycle stage of a run.
type State int

const (
	// StateInitializing is the state before Run is called.
	StateInitializing State = iota

	// StateStreaming reads input and submits batches.
	StateStreaming

	// StateDraining waits for the remaining batches after the input is
	// exhausted.
	StateDraining

	// StateFinalizing closes the output and runs finalizers.
	StateFinalizing

	// StateSucceeded means every output file is complete.
	StateSucceeded

	// StateRolledBack means the run failed and its files were removed.
	StateRolledBack
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateStreaming:
		return "streaming"
	case StateDraining:
		return "draining"
	case StateFinalizing:
		return "finalizing"
	case StateSucceeded:
		return "succeeded"
	case StateRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether s ends a run.
func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateRolledBack
}

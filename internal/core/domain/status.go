package domain

// RunPhase is the lifecycle phase of the batch scheduler.
type RunPhase string

const (
	// PhaseIdle means no run is active.
	PhaseIdle RunPhase = "idle"
	// PhaseRunning means a run is dispatching batches.
	PhaseRunning RunPhase = "running"
	// PhasePaused means a run is active but will not start another batch until resumed.
	PhasePaused RunPhase = "paused"
	// PhaseStopping means a stop was requested and the run is winding down.
	PhaseStopping RunPhase = "stopping"
)

// RunOutcome is the terminal state of a finished run.
type RunOutcome string

const (
	// OutcomeNone means no run has finished yet.
	OutcomeNone RunOutcome = ""
	// OutcomeCompleted means every batch was processed.
	OutcomeCompleted RunOutcome = "completed"
	// OutcomeCancelled means the run was stopped or its context was cancelled.
	OutcomeCancelled RunOutcome = "cancelled"
	// OutcomeFailed means the run hit an unexpected error.
	OutcomeFailed RunOutcome = "failed"
)

// RunState is a point-in-time view of the scheduler.
type RunState struct {
	RunID       string
	Phase       RunPhase
	Total       int
	Completed   int
	LastOutcome RunOutcome
}

// Running reports whether a run is active in any phase.
func (s RunState) Running() bool {
	return s.Phase != PhaseIdle
}

// Paused reports whether the active run is paused.
func (s RunState) Paused() bool {
	return s.Phase == PhasePaused
}

// Status is the snapshot returned to collaborators of the duration service.
type Status struct {
	Running     bool       `json:"is_calculating"`
	Paused      bool       `json:"is_paused"`
	Total       int        `json:"total_patterns"`
	Completed   int        `json:"calculated_patterns"`
	CacheSize   int        `json:"cache_size"`
	RunID       string     `json:"run_id,omitempty"`
	LastOutcome RunOutcome `json:"last_outcome,omitempty"`
}

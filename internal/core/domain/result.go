package domain

// ExecutionResult records the outcome of one phase in one environment.
// It is immutable once produced by the executor.
type ExecutionResult struct {
	// Environment is the matrix identifier the phase ran in.
	Environment string `json:"environment"`
	// Phase is the step this result belongs to.
	Phase Phase `json:"phase"`
	// ExitCode is the exit status of the external command. Zero for skipped phases.
	ExitCode int `json:"exit_code"`
	// Skipped is true when the phase did not run because an earlier fatal
	// phase (Install) failed. A skipped phase is not a failed phase.
	Skipped bool `json:"skipped,omitzero"`
	// ArtifactPaths lists files harvested during the phase, in collection order.
	ArtifactPaths []string `json:"artifact_paths,omitzero"`
}

// Failed reports whether the phase ran and exited non-zero.
func (r ExecutionResult) Failed() bool {
	return !r.Skipped && r.ExitCode != 0
}

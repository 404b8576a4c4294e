package domain

// DefaultParallelism bounds concurrent environment workers when the
// declaration does not specify a limit.
const DefaultParallelism = 5

// PhaseCommands holds the external collaborator command lines. The commands
// are opaque to the pipeline; only their exit codes matter. The provision
// command may contain the "{version}" placeholder, replaced with the matrix
// identifier being materialized.
type PhaseCommands struct {
	Provision []string
	Install   []string
	Lint      []string
	Test      []string
}

// ForPhase returns the command line for an execution phase.
func (c PhaseCommands) ForPhase(p Phase) []string {
	switch p {
	case PhaseInstall:
		return c.Install
	case PhaseLint:
		return c.Lint
	case PhaseTest:
		return c.Test
	default:
		return nil
	}
}

// ReportConfig configures the reporter collaborators. An empty CoverageURL
// disables the coverage submission; an empty Bucket disables artifact upload.
type ReportConfig struct {
	// CoverageURL is the HTTP endpoint of the coverage collaborator.
	CoverageURL string
	// Token is the bearer credential for the coverage collaborator.
	// It is a secret: sourced from the environment, never logged.
	Token string

	// Object storage settings for durable artifact persistence.
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// PipelineConfig is the immutable run declaration passed to every component
// at construction. There is no process-wide mutable state; everything a
// component needs to know about the run lives here.
type PipelineConfig struct {
	// Matrix is the ordered list of runtime version identifiers.
	Matrix []string
	// ManifestPath points at the dependency manifest whose content checksum
	// participates in cache fingerprinting.
	ManifestPath string
	// Commands are the external phase command lines.
	Commands PhaseCommands
	// Parallelism bounds concurrent environment workers.
	Parallelism int
	// ArtifactDir is the well-known directory test artifacts are copied into,
	// keyed by environment identifier to avoid collisions.
	ArtifactDir string
	// RuntimeDir is where provisioned runtimes are materialized.
	RuntimeDir string
	// NoCache forces cold provisioning, bypassing every cache lookup.
	NoCache bool
	// Report configures the external reporting collaborators.
	Report ReportConfig
}

// WorkerLimit returns the effective concurrency bound.
func (c PipelineConfig) WorkerLimit() int {
	if c.Parallelism > 0 {
		return c.Parallelism
	}
	return DefaultParallelism
}

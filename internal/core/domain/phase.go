package domain

// Phase is one ordered step executed per environment.
type Phase string

const (
	// PhaseInstall installs the project dependencies into the environment.
	PhaseInstall Phase = "Install"
	// PhaseLint runs static checks.
	PhaseLint Phase = "Lint"
	// PhaseTest runs the test suite and produces artifacts.
	PhaseTest Phase = "Test"
)

// Phases returns the fixed execution order. Install must succeed before
// Lint and Test run; the order is strict within one environment.
func Phases() []Phase {
	return []Phase{PhaseInstall, PhaseLint, PhaseTest}
}

// FatalToEnvironment reports whether a non-zero exit in this phase stops
// the remaining phases of its environment. Only Install is fatal; Lint and
// Test failures are recorded without aborting sibling work.
func (p Phase) FatalToEnvironment() bool {
	return p == PhaseInstall
}

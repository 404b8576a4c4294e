// Package domain contains the core domain models and business logic for the pipeline matrix.
package domain

// EnvStatus represents the lifecycle state of a matrix environment.
type EnvStatus string

const (
	// EnvRequested indicates the environment was declared in the matrix but not yet touched.
	EnvRequested EnvStatus = "Requested"
	// EnvProvisioning indicates the environment is currently being materialized.
	EnvProvisioning EnvStatus = "Provisioning"
	// EnvReady indicates the environment is usable for phase execution.
	EnvReady EnvStatus = "Ready"
	// EnvFailed indicates the environment could not be made Ready.
	EnvFailed EnvStatus = "Failed"
)

// IsTerminal checks if a status is a terminal state (Ready or Failed).
func (s EnvStatus) IsTerminal() bool {
	return s == EnvReady || s == EnvFailed
}

// EnvironmentSpec identifies one entry of the declared matrix.
type EnvironmentSpec struct {
	// Identifier is the runtime version string as declared in the matrix (e.g., "3.5").
	Identifier string
	// Status is driven solely by the provisioner.
	Status EnvStatus
}

// Environment is a provisioned runtime instance for one matrix identifier.
//
// Env holds variables in "KEY=VALUE" format suitable for process execution,
// typically a PATH pointing at the materialized runtime plus interpreter-specific
// variables. Root is the directory the runtime was materialized into.
type Environment struct {
	Spec EnvironmentSpec
	Env  []string
	Root string

	// CacheHit is true when the environment was restored from an exact
	// fingerprint match and no install work was performed.
	CacheHit bool

	// FailReason carries the provisioning error for Failed environments.
	// Empty for Ready environments.
	FailReason string
}

// Ready reports whether the environment can execute phases.
func (e Environment) Ready() bool {
	return e.Spec.Status == EnvReady
}

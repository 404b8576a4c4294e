package domain

import "sort"

// OverallStatus is the consolidated pass/fail verdict of a pipeline run.
type OverallStatus string

const (
	// StatusSuccess indicates every executed phase exited zero.
	StatusSuccess OverallStatus = "Success"
	// StatusFailure indicates at least one phase exited non-zero.
	StatusFailure OverallStatus = "Failure"
)

// EnvironmentResult groups the terminal state of one environment with its
// per-phase results.
type EnvironmentResult struct {
	Status EnvStatus               `json:"status"`
	Phases map[Phase]ExecutionResult `json:"phases"`
}

// PipelineOutcome is the aggregated, final verdict plus per-environment detail.
type PipelineOutcome struct {
	Overall        OverallStatus                `json:"overall"`
	PerEnvironment map[string]EnvironmentResult `json:"per_environment"`
}

// Result looks up the execution result for one environment and phase.
func (o PipelineOutcome) Result(env string, phase Phase) (ExecutionResult, bool) {
	er, ok := o.PerEnvironment[env]
	if !ok {
		return ExecutionResult{}, false
	}
	res, ok := er.Phases[phase]
	return res, ok
}

// Environments returns the environment identifiers in sorted order.
func (o PipelineOutcome) Environments() []string {
	ids := make([]string, 0, len(o.PerEnvironment))
	for id := range o.PerEnvironment {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Aggregate computes the PipelineOutcome from the provisioned environments and
// the sequence of execution results. It is a pure function: deterministic given
// its inputs, with no hidden state, and accepts results in any arrival order.
//
// The policy is "tolerant execution, strict aggregation": a Lint or Test
// failure never aborted sibling work, but any non-skipped phase exiting
// non-zero, or any environment that failed to provision, turns the overall
// verdict into Failure. An empty matrix aggregates to Success.
func Aggregate(envs []Environment, results []ExecutionResult) PipelineOutcome {
	outcome := PipelineOutcome{
		Overall:        StatusSuccess,
		PerEnvironment: make(map[string]EnvironmentResult, len(envs)),
	}

	for _, env := range envs {
		outcome.PerEnvironment[env.Spec.Identifier] = EnvironmentResult{
			Status: env.Spec.Status,
			Phases: make(map[Phase]ExecutionResult, len(Phases())),
		}
		if env.Spec.Status == EnvFailed {
			outcome.Overall = StatusFailure
		}
	}

	for _, res := range results {
		er, ok := outcome.PerEnvironment[res.Environment]
		if !ok {
			// Result for an undeclared environment. Record it rather than drop it.
			er = EnvironmentResult{Status: EnvReady, Phases: make(map[Phase]ExecutionResult, len(Phases()))}
			outcome.PerEnvironment[res.Environment] = er
		}
		er.Phases[res.Phase] = res

		if res.Failed() {
			outcome.Overall = StatusFailure
		}
	}

	return outcome
}

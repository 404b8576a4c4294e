// Package scheduler implements the matrix phase executor.
package scheduler

import (
	"context"
	"fmt"
	"path/filepath"

	"go.trai.ch/grid/internal/core/domain"
	"go.trai.ch/grid/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// scratchDirName is the per-environment directory phase commands write their
// artifacts into, exported to them as GRID_ARTIFACT_DIR.
const scratchDirName = "artifacts"

// Executor fans the phase sequence out across the provisioned environments.
//
// Concurrency is across environments, bounded by the declared parallelism.
// Within one environment the phases run strictly in order, and a non-zero
// Install exit skips the remaining phases of that environment only. Lint and
// Test failures are recorded without stopping anything: the run is tolerant
// in execution and strict in aggregation.
type Executor struct {
	runner    ports.CommandRunner
	collector ports.ArtifactCollector
	logger    ports.Logger
	telemetry ports.Telemetry
}

// New creates a new Executor.
func New(
	runner ports.CommandRunner,
	collector ports.ArtifactCollector,
	logger ports.Logger,
	telemetry ports.Telemetry,
) *Executor {
	return &Executor{
		runner:    runner,
		collector: collector,
		logger:    logger,
		telemetry: telemetry,
	}
}

// Run executes Install, Lint and Test in every environment and returns one
// result per environment and phase, including Skipped records. The error
// return is reserved for cancellation; phase failures live in the results.
func (e *Executor) Run(ctx context.Context, cfg domain.PipelineConfig, envs []domain.Environment) ([]domain.ExecutionResult, error) {
	perEnv := make([][]domain.ExecutionResult, len(envs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.WorkerLimit())

	for i, env := range envs {
		g.Go(func() error {
			results, err := e.runEnvironment(gctx, cfg, env)
			if err != nil {
				return err
			}
			perEnv[i] = results
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]domain.ExecutionResult, 0, len(envs)*len(domain.Phases()))
	for _, envResults := range perEnv {
		results = append(results, envResults...)
	}
	return results, nil
}

func (e *Executor) runEnvironment(ctx context.Context, cfg domain.PipelineConfig, env domain.Environment) ([]domain.ExecutionResult, error) {
	id := env.Spec.Identifier
	results := make([]domain.ExecutionResult, 0, len(domain.Phases()))

	// Environments that never became Ready get their phases recorded as
	// Skipped so the outcome still covers the full declared matrix.
	skipRemainder := !env.Ready()

	scratch := filepath.Join(env.Root, scratchDirName)
	phaseEnv := append(env.Env, "GRID_ARTIFACT_DIR="+scratch) //nolint:gocritic // fresh slice per environment

	for _, phase := range domain.Phases() {
		if skipRemainder {
			results = append(results, domain.ExecutionResult{Environment: id, Phase: phase, Skipped: true})
			continue
		}

		if phase == domain.PhaseInstall && env.CacheHit {
			results = append(results, e.cachedInstall(ctx, id))
			continue
		}

		res, err := e.runPhase(ctx, cfg, phase, id, phaseEnv)
		if err != nil {
			return nil, err
		}
		results = append(results, res)

		if res.Failed() && phase.FatalToEnvironment() {
			e.logger.Warn(fmt.Sprintf("%s failed in %s, skipping remaining phases", phase, id))
			skipRemainder = true
		}

		if phase == domain.PhaseTest && !res.Skipped {
			results[len(results)-1].ArtifactPaths = e.harvest(id, scratch, cfg.ArtifactDir)
		}
	}

	return results, nil
}

// cachedInstall records Install as already satisfied by the restored
// environment set. The fingerprint covers the dependency manifest, so an
// exact hit means the install command would be a no-op.
func (e *Executor) cachedInstall(ctx context.Context, id string) domain.ExecutionResult {
	_, vertex := e.telemetry.Record(ctx, fmt.Sprintf("%s %s", domain.PhaseInstall, id))
	vertex.Cached()
	vertex.Complete(nil)
	return domain.ExecutionResult{Environment: id, Phase: domain.PhaseInstall}
}

func (e *Executor) runPhase(ctx context.Context, cfg domain.PipelineConfig, phase domain.Phase, id string, phaseEnv []string) (domain.ExecutionResult, error) {
	vctx, vertex := e.telemetry.Record(ctx, fmt.Sprintf("%s %s", phase, id))

	code, err := e.runner.Run(vctx, ports.CommandSpec{
		Argv:   cfg.Commands.ForPhase(phase),
		Env:    phaseEnv,
		Stdout: vertex.Stdout(),
		Stderr: vertex.Stderr(),
	})
	if err != nil {
		vertex.Complete(err)
		if ctx.Err() != nil {
			return domain.ExecutionResult{}, ctx.Err()
		}
		// The command never ran. Record it as a failure of this phase.
		e.logger.Warn(fmt.Sprintf("%s could not run in %s: %v", phase, id, err))
		return domain.ExecutionResult{Environment: id, Phase: phase, ExitCode: -1}, nil
	}

	res := domain.ExecutionResult{Environment: id, Phase: phase, ExitCode: code}
	if res.Failed() {
		vertex.Complete(fmt.Errorf("%s exited with code %d", phase, code))
	} else {
		vertex.Complete(nil)
	}
	return res, nil
}

// harvest copies the environment's scratch artifacts into the well-known
// artifact directory. Harvest problems degrade to a warning; they never
// change the phase result.
func (e *Executor) harvest(id, scratch, artifactDir string) []string {
	paths, err := e.collector.Collect(id, scratch, artifactDir)
	if err != nil {
		e.logger.Warn(fmt.Sprintf("failed to collect artifacts for %s: %v", id, err))
		return nil
	}
	return paths
}

// Package app implements the application layer for grid.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"go.trai.ch/grid/internal/core/domain"
	"go.trai.ch/grid/internal/core/ports"
	"go.trai.ch/grid/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// RunOptions carries the per-invocation knobs from the CLI.
type RunOptions struct {
	// ConfigPath is the declaration file to load.
	ConfigPath string
	// NoCache forces cold provisioning.
	NoCache bool
	// ProvisionOnly stops after the environments are materialized.
	ProvisionOnly bool
}

// App represents the main application logic: load the declaration, provision
// the matrix, execute the phases, aggregate, render and report.
type App struct {
	configLoader ports.ConfigLoader
	provisioner  ports.Provisioner
	executor     *scheduler.Executor
	reporter     ports.Reporter
	logger       ports.Logger

	out io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	provisioner ports.Provisioner,
	executor *scheduler.Executor,
	reporter ports.Reporter,
	logger ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		provisioner:  provisioner,
		executor:     executor,
		reporter:     reporter,
		logger:       logger,
		out:          os.Stdout,
	}
}

// WithOutput redirects the rendered status output. Used by tests.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// Run executes the full pipeline. It returns domain.ErrPipelineFailed when
// the aggregated verdict is Failure; the CLI maps that to a non-zero exit.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	cfg, err := a.configLoader.Load(opts.ConfigPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load declaration")
	}
	cfg.NoCache = opts.NoCache

	envs, err := a.provisioner.ProvisionAll(ctx, *cfg)
	if err != nil {
		return zerr.Wrap(err, "provisioning failed")
	}

	if opts.ProvisionOnly {
		a.renderProvisioning(envs)
		for _, env := range envs {
			if !env.Ready() {
				return domain.ErrProvisionFailed
			}
		}
		return nil
	}

	results, err := a.executor.Run(ctx, *cfg, envs)
	if err != nil {
		return zerr.Wrap(err, "execution aborted")
	}

	outcome := domain.Aggregate(envs, results)
	a.renderOutcome(outcome, envs)

	// Reporting degrades: a publish failure is logged, never fatal, and it
	// never changes the verdict.
	if err := a.reporter.Publish(ctx, cfg.Report, outcome, cfg.ArtifactDir); err != nil {
		a.logger.Warn("failed to publish report: " + err.Error())
	}

	if outcome.Overall == domain.StatusFailure {
		return domain.ErrPipelineFailed
	}
	return nil
}

// renderOutcome prints the per-environment status table.
func (a *App) renderOutcome(outcome domain.PipelineOutcome, envs []domain.Environment) {
	cacheHits := make(map[string]bool, len(envs))
	for _, env := range envs {
		cacheHits[env.Spec.Identifier] = env.CacheHit
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ENVIRONMENT\tSTATUS\tINSTALL\tLINT\tTEST\tCACHE")

	for _, id := range outcome.Environments() {
		er := outcome.PerEnvironment[id]
		cache := "-"
		if cacheHits[id] {
			cache = "hit"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			id,
			string(er.Status),
			phaseCell(outcome, id, domain.PhaseInstall),
			phaseCell(outcome, id, domain.PhaseLint),
			phaseCell(outcome, id, domain.PhaseTest),
			cache,
		)
	}

	_ = w.Flush()
	fmt.Fprintln(a.out, strings.ToUpper(string(outcome.Overall)))
}

// renderProvisioning prints the environment statuses after a provision-only run.
func (a *App) renderProvisioning(envs []domain.Environment) {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ENVIRONMENT\tSTATUS\tDETAIL")
	for _, env := range envs {
		detail := env.Root
		if env.FailReason != "" {
			detail = env.FailReason
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", env.Spec.Identifier, string(env.Spec.Status), detail)
	}
	_ = w.Flush()
}

func phaseCell(outcome domain.PipelineOutcome, id string, phase domain.Phase) string {
	res, ok := outcome.Result(id, phase)
	if !ok {
		return "-"
	}
	switch {
	case res.Skipped:
		return "skipped"
	case res.ExitCode == 0:
		return "ok"
	default:
		return fmt.Sprintf("fail(%d)", res.ExitCode)
	}
}

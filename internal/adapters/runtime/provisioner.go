// Package runtime materializes matrix environments via an external
// provision command.
package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/grid/internal/core/domain"
	"go.trai.ch/grid/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const dirPerm = 0o750

// versionPlaceholder is replaced in the provision command with the matrix
// identifier being materialized.
const versionPlaceholder = "{version}"

// savedEnvironment is the cache payload record for one materialized runtime.
type savedEnvironment struct {
	Root string   `json:"root"`
	Env  []string `json:"env"`
}

type cachePayload map[string]savedEnvironment

// Provisioner implements ports.Provisioner. It runs the declared provision
// command once per matrix identifier, bounded by the configured parallelism,
// and short-circuits the whole set on an exact fingerprint hit.
type Provisioner struct {
	runner    ports.CommandRunner
	store     ports.CacheStore
	hasher    ports.ManifestHasher
	logger    ports.Logger
	telemetry ports.Telemetry
}

// New creates a new Provisioner.
func New(
	runner ports.CommandRunner,
	store ports.CacheStore,
	hasher ports.ManifestHasher,
	logger ports.Logger,
	telemetry ports.Telemetry,
) *Provisioner {
	return &Provisioner{
		runner:    runner,
		store:     store,
		hasher:    hasher,
		logger:    logger,
		telemetry: telemetry,
	}
}

// ProvisionAll materializes one environment per matrix identifier.
//
// Cache policy: an exact fingerprint hit restores the whole set with zero
// install work. A prefix match is only a restore hint logged for the
// operator; provisioning still runs in full. Store errors degrade to cold
// provisioning, they never fail the run.
func (p *Provisioner) ProvisionAll(ctx context.Context, cfg domain.PipelineConfig) ([]domain.Environment, error) {
	// An empty matrix is a valid declaration: nothing to materialize, and
	// the run aggregates to Success over an empty mapping.
	if len(cfg.Matrix) == 0 {
		p.logger.Info("matrix is empty, nothing to provision")
		return []domain.Environment{}, nil
	}
	if len(cfg.Commands.Provision) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrEmptyCommand, "no provision command declared"), "phase", "provision")
	}

	sum, err := p.hasher.ChecksumFile(cfg.ManifestPath)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrManifestUnreadable, err.Error()), "path", cfg.ManifestPath)
	}

	key := domain.Fingerprint(cfg.Matrix, sum)

	if !cfg.NoCache {
		if restored, ok := p.restoreExact(ctx, key, cfg.Matrix); ok {
			return restored, nil
		}
		p.hintPrefix(cfg.Matrix)
	}

	envs := make([]domain.Environment, len(cfg.Matrix))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.WorkerLimit())

	for i, id := range cfg.Matrix {
		g.Go(func() error {
			env, provErr := p.provisionOne(gctx, cfg, id)
			if provErr != nil {
				return provErr
			}
			envs[i] = env
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.saveSet(key, envs, cfg.NoCache)

	return envs, nil
}

// provisionOne materializes a single environment. Provisioning failures are
// terminal for this environment only; the returned error is reserved for
// context cancellation.
func (p *Provisioner) provisionOne(ctx context.Context, cfg domain.PipelineConfig, id string) (domain.Environment, error) {
	env := domain.Environment{
		Spec: domain.EnvironmentSpec{Identifier: id, Status: domain.EnvProvisioning},
	}

	vctx, vertex := p.telemetry.Record(ctx, "provision "+id)

	root := filepath.Join(cfg.RuntimeDir, id)
	if err := os.MkdirAll(root, dirPerm); err != nil {
		vertex.Complete(err)
		return failed(env, zerr.With(zerr.Wrap(err, "failed to create runtime root"), "identifier", id)), nil
	}

	env.Root = root
	env.Env = []string{
		"PATH=" + filepath.Join(root, "bin"),
		"GRID_RUNTIME_VERSION=" + id,
		"GRID_RUNTIME_ROOT=" + root,
	}

	code, err := p.runner.Run(vctx, ports.CommandSpec{
		Argv:   expandArgv(cfg.Commands.Provision, id),
		Env:    env.Env,
		Stdout: vertex.Stdout(),
		Stderr: vertex.Stderr(),
	})
	if err != nil {
		vertex.Complete(err)
		if ctx.Err() != nil {
			return env, ctx.Err()
		}
		return failed(env, zerr.With(zerr.Wrap(err, "provision command could not run"), "identifier", id)), nil
	}
	if code != 0 {
		failure := zerr.With(zerr.Wrap(domain.ErrProvisionFailed,
			fmt.Sprintf("provision command exited with code %d", code)), "identifier", id)
		vertex.Complete(failure)
		return failed(env, failure), nil
	}

	vertex.Complete(nil)
	env.Spec.Status = domain.EnvReady
	return env, nil
}

// restoreExact attempts to restore the full environment set from an exact
// fingerprint hit. Missing roots on disk invalidate the hit.
func (p *Provisioner) restoreExact(ctx context.Context, key string, matrix []string) ([]domain.Environment, bool) {
	entry, err := p.store.Get(key)
	if err != nil {
		p.logger.Warn("cache lookup failed, provisioning cold: " + err.Error())
		return nil, false
	}
	if entry == nil {
		return nil, false
	}

	var payload cachePayload
	if err := json.Unmarshal(entry.Payload, &payload); err != nil {
		p.logger.Warn("cache entry undecodable, provisioning cold: " + err.Error())
		return nil, false
	}

	envs := make([]domain.Environment, 0, len(matrix))
	for _, id := range matrix {
		saved, ok := payload[id]
		if !ok {
			p.logger.Warn("cache entry incomplete for " + id + ", provisioning cold")
			return nil, false
		}
		if _, err := os.Stat(saved.Root); err != nil {
			p.logger.Warn("cached runtime root missing for " + id + ", provisioning cold")
			return nil, false
		}
		envs = append(envs, domain.Environment{
			Spec:     domain.EnvironmentSpec{Identifier: id, Status: domain.EnvReady},
			Env:      saved.Env,
			Root:     saved.Root,
			CacheHit: true,
		})
	}

	for _, env := range envs {
		_, vertex := p.telemetry.Record(ctx, "provision "+env.Spec.Identifier)
		vertex.Cached()
		vertex.Complete(nil)
	}

	p.logger.Info("environment set restored from cache, skipping installation")
	return envs, true
}

// hintPrefix logs when an earlier run of the same matrix composition exists.
// The hint never replaces installation; the dependency set may have changed.
func (p *Provisioner) hintPrefix(matrix []string) {
	entry, err := p.store.GetPrefix(domain.MatrixPrefix(matrix))
	if err != nil {
		p.logger.Warn("cache prefix lookup failed: " + err.Error())
		return
	}
	if entry != nil {
		p.logger.Info("found prior run of this matrix composition, warm-starting installation")
	}
}

// saveSet records the fully Ready environment set under its fingerprint.
// Partial sets are never cached.
func (p *Provisioner) saveSet(key string, envs []domain.Environment, noCache bool) {
	if noCache {
		return
	}
	for _, env := range envs {
		if !env.Ready() {
			return
		}
	}

	payload := make(cachePayload, len(envs))
	for _, env := range envs {
		payload[env.Spec.Identifier] = savedEnvironment{Root: env.Root, Env: env.Env}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Warn("failed to encode cache payload: " + err.Error())
		return
	}

	if err := p.store.Put(domain.CacheEntry{Key: key, Payload: data, CreatedAt: time.Now()}); err != nil {
		p.logger.Warn("failed to persist cache entry: " + err.Error())
	}
}

func failed(env domain.Environment, reason error) domain.Environment {
	env.Spec.Status = domain.EnvFailed
	env.FailReason = reason.Error()
	return env
}

func expandArgv(argv []string, id string) []string {
	expanded := make([]string, len(argv))
	for i, arg := range argv {
		expanded[i] = strings.ReplaceAll(arg, versionPlaceholder, id)
	}
	return expanded
}

var _ ports.Provisioner = (*Provisioner)(nil)

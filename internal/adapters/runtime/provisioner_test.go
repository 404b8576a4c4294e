package runtime_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.trai.ch/grid/internal/adapters/runtime"
	"go.trai.ch/grid/internal/adapters/telemetry"
	"go.trai.ch/grid/internal/core/domain"
	"go.trai.ch/grid/internal/core/ports"
	"go.trai.ch/grid/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type recordingLogger struct {
	mu    sync.Mutex
	infos []string
	warns []string
}

func (l *recordingLogger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *recordingLogger) Warn(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) Error(_ error) {}

func testConfig(t *testing.T, matrix ...string) domain.PipelineConfig {
	t.Helper()
	return domain.PipelineConfig{
		Matrix:       matrix,
		ManifestPath: "requirements.txt",
		Commands: domain.PhaseCommands{
			Provision: []string{"provision-runtime", "{version}"},
			Install:   []string{"install-deps"},
			Lint:      []string{"lint"},
			Test:      []string{"run-tests"},
		},
		RuntimeDir: t.TempDir(),
	}
}

func newProvisioner(t *testing.T) (*gomock.Controller, *mocks.MockCommandRunner, *mocks.MockCacheStore, *mocks.MockManifestHasher, *recordingLogger, *runtime.Provisioner) {
	t.Helper()
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	store := mocks.NewMockCacheStore(ctrl)
	hasher := mocks.NewMockManifestHasher(ctrl)
	log := &recordingLogger{}
	prov := runtime.New(runner, store, hasher, log, telemetry.NewNoOp())
	return ctrl, runner, store, hasher, log, prov
}

func TestProvisionAll_CacheHitSkipsInstall(t *testing.T) {
	_, _, store, hasher, _, prov := newProvisioner(t)

	cfg := testConfig(t, "3.5", "3.6")
	key := domain.Fingerprint(cfg.Matrix, "aabbccdd")

	payload, err := json.Marshal(map[string]struct {
		Root string   `json:"root"`
		Env  []string `json:"env"`
	}{
		"3.5": {Root: cfg.RuntimeDir, Env: []string{"PATH=/envs/3.5/bin"}},
		"3.6": {Root: cfg.RuntimeDir, Env: []string{"PATH=/envs/3.6/bin"}},
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	hasher.EXPECT().ChecksumFile("requirements.txt").Return("aabbccdd", nil)
	store.EXPECT().Get(key).Return(&domain.CacheEntry{Key: key, Payload: payload}, nil)
	// No runner expectations: a cache hit must perform zero install work.

	envs, err := prov.ProvisionAll(context.Background(), cfg)
	if err != nil {
		t.Fatalf("ProvisionAll failed: %v", err)
	}
	if len(envs) != 2 {
		t.Fatalf("expected 2 environments, got %d", len(envs))
	}
	for _, env := range envs {
		if !env.Ready() {
			t.Errorf("environment %s not Ready: %s", env.Spec.Identifier, env.FailReason)
		}
		if !env.CacheHit {
			t.Errorf("environment %s not marked as cache hit", env.Spec.Identifier)
		}
	}
}

func TestProvisionAll_PartialFailureContinues(t *testing.T) {
	_, runner, store, hasher, _, prov := newProvisioner(t)

	cfg := testConfig(t, "3.3", "3.4", "3.5")

	hasher.EXPECT().ChecksumFile(gomock.Any()).Return("sum", nil)
	store.EXPECT().Get(gomock.Any()).Return(nil, nil)
	store.EXPECT().GetPrefix(gomock.Any()).Return(nil, nil)
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(3).DoAndReturn(
		func(_ context.Context, spec ports.CommandSpec) (int, error) {
			if strings.Contains(strings.Join(spec.Argv, " "), "3.4") {
				return 1, nil
			}
			return 0, nil
		})
	// No Put expectation: a partial set is never cached.

	envs, err := prov.ProvisionAll(context.Background(), cfg)
	if err != nil {
		t.Fatalf("ProvisionAll failed: %v", err)
	}

	byID := make(map[string]domain.Environment)
	for _, env := range envs {
		byID[env.Spec.Identifier] = env
	}

	if !byID["3.3"].Ready() || !byID["3.5"].Ready() {
		t.Error("siblings of a failed environment must still be provisioned")
	}
	if byID["3.4"].Spec.Status != domain.EnvFailed {
		t.Errorf("expected 3.4 Failed, got %s", byID["3.4"].Spec.Status)
	}
	if byID["3.4"].FailReason == "" {
		t.Error("failed environment must carry a fail reason")
	}
}

func TestProvisionAll_ReadySetIsCached(t *testing.T) {
	_, runner, store, hasher, _, prov := newProvisioner(t)

	cfg := testConfig(t, "3.5")
	key := domain.Fingerprint(cfg.Matrix, "sum")

	hasher.EXPECT().ChecksumFile(gomock.Any()).Return("sum", nil)
	store.EXPECT().Get(key).Return(nil, nil)
	store.EXPECT().GetPrefix(domain.MatrixPrefix(cfg.Matrix)).Return(nil, nil)
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(0, nil)
	store.EXPECT().Put(gomock.Any()).DoAndReturn(func(entry domain.CacheEntry) error {
		if entry.Key != key {
			t.Errorf("expected entry key %q, got %q", key, entry.Key)
		}
		return nil
	})

	envs, err := prov.ProvisionAll(context.Background(), cfg)
	if err != nil {
		t.Fatalf("ProvisionAll failed: %v", err)
	}
	if !envs[0].Ready() {
		t.Fatalf("environment not Ready: %s", envs[0].FailReason)
	}
	if envs[0].Root != filepath.Join(cfg.RuntimeDir, "3.5") {
		t.Errorf("unexpected runtime root %q", envs[0].Root)
	}
}

func TestProvisionAll_StoreErrorDegradesToCold(t *testing.T) {
	_, runner, store, hasher, log, prov := newProvisioner(t)

	cfg := testConfig(t, "3.5")

	hasher.EXPECT().ChecksumFile(gomock.Any()).Return("sum", nil)
	store.EXPECT().Get(gomock.Any()).Return(nil, errors.New("disk on fire"))
	store.EXPECT().GetPrefix(gomock.Any()).Return(nil, errors.New("disk still on fire"))
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(0, nil)
	store.EXPECT().Put(gomock.Any()).Return(errors.New("disk remains on fire"))

	envs, err := prov.ProvisionAll(context.Background(), cfg)
	if err != nil {
		t.Fatalf("cache store failures must not fail the run: %v", err)
	}
	if !envs[0].Ready() {
		t.Fatalf("environment not Ready: %s", envs[0].FailReason)
	}
	if len(log.warns) < 2 {
		t.Errorf("expected degradation warnings, got %v", log.warns)
	}
}

func TestProvisionAll_NoCacheBypassesStore(t *testing.T) {
	_, runner, _, hasher, _, prov := newProvisioner(t)

	cfg := testConfig(t, "3.5")
	cfg.NoCache = true

	hasher.EXPECT().ChecksumFile(gomock.Any()).Return("sum", nil)
	// No store expectations: --no-cache must not touch the store at all.
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, spec ports.CommandSpec) (int, error) {
			if spec.Argv[1] != "3.5" {
				t.Errorf("expected {version} expansion, got %v", spec.Argv)
			}
			return 0, nil
		})

	envs, err := prov.ProvisionAll(context.Background(), cfg)
	if err != nil {
		t.Fatalf("ProvisionAll failed: %v", err)
	}
	if !envs[0].Ready() {
		t.Fatalf("environment not Ready: %s", envs[0].FailReason)
	}
}

func TestProvisionAll_EmptyMatrixYieldsEmptySet(t *testing.T) {
	_, _, _, _, _, prov := newProvisioner(t)
	// No runner, store or hasher expectations: nothing to materialize.

	envs, err := prov.ProvisionAll(context.Background(), domain.PipelineConfig{})
	if err != nil {
		t.Fatalf("an empty matrix must not fail the run: %v", err)
	}
	if len(envs) != 0 {
		t.Fatalf("expected an empty environment set, got %v", envs)
	}
}

func TestProvisionAll_RestoredVerticesMarkedCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCacheStore(ctrl)
	hasher := mocks.NewMockManifestHasher(ctrl)
	tel := mocks.NewMockTelemetry(ctrl)
	prov := runtime.New(mocks.NewMockCommandRunner(ctrl), store, hasher, &recordingLogger{}, tel)

	cfg := testConfig(t, "3.5", "3.6")
	key := domain.Fingerprint(cfg.Matrix, "aabbccdd")

	payload, err := json.Marshal(map[string]struct {
		Root string   `json:"root"`
		Env  []string `json:"env"`
	}{
		"3.5": {Root: cfg.RuntimeDir},
		"3.6": {Root: cfg.RuntimeDir},
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	hasher.EXPECT().ChecksumFile(gomock.Any()).Return("aabbccdd", nil)
	store.EXPECT().Get(key).Return(&domain.CacheEntry{Key: key, Payload: payload}, nil)

	vertex := mocks.NewMockVertex(ctrl)
	vertex.EXPECT().Cached().Times(2)
	vertex.EXPECT().Complete(nil).Times(2)
	tel.EXPECT().Record(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(
		func(ctx context.Context, _ string) (context.Context, ports.Vertex) {
			return ctx, vertex
		})

	if _, err := prov.ProvisionAll(context.Background(), cfg); err != nil {
		t.Fatalf("ProvisionAll failed: %v", err)
	}
}

func TestProvisionAll_UnreadableManifest(t *testing.T) {
	_, _, _, hasher, _, prov := newProvisioner(t)

	hasher.EXPECT().ChecksumFile(gomock.Any()).Return("", errors.New("no such file"))

	_, err := prov.ProvisionAll(context.Background(), testConfig(t, "3.5"))
	if !errors.Is(err, domain.ErrManifestUnreadable) {
		t.Fatalf("expected ErrManifestUnreadable, got %v", err)
	}
}

package scheduler_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.trai.ch/grid/internal/adapters/telemetry"
	"go.trai.ch/grid/internal/core/domain"
	"go.trai.ch/grid/internal/core/ports"
	"go.trai.ch/grid/internal/core/ports/mocks"
	"go.trai.ch/grid/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

type quietLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *quietLogger) Info(string) {}
func (l *quietLogger) Warn(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}
func (l *quietLogger) Error(error) {}

func executionConfig() domain.PipelineConfig {
	return domain.PipelineConfig{
		Matrix: []string{"3.5"},
		Commands: domain.PhaseCommands{
			Provision: []string{"provision-runtime", "{version}"},
			Install:   []string{"install-deps"},
			Lint:      []string{"check-style"},
			Test:      []string{"run-tests"},
		},
		ArtifactDir: ".grid/artifacts",
		Parallelism: 2,
	}
}

func readyEnv(id string) domain.Environment {
	return domain.Environment{
		Spec: domain.EnvironmentSpec{Identifier: id, Status: domain.EnvReady},
		Env:  []string{"PATH=/envs/" + id + "/bin"},
		Root: "/envs/" + id,
	}
}

func newExecutor(t *testing.T) (*mocks.MockCommandRunner, *mocks.MockArtifactCollector, *quietLogger, *scheduler.Executor) {
	t.Helper()
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	collector := mocks.NewMockArtifactCollector(ctrl)
	log := &quietLogger{}
	return runner, collector, log, scheduler.New(runner, collector, log, telemetry.NewNoOp())
}

func resultFor(t *testing.T, results []domain.ExecutionResult, id string, phase domain.Phase) domain.ExecutionResult {
	t.Helper()
	for _, res := range results {
		if res.Environment == id && res.Phase == phase {
			return res
		}
	}
	t.Fatalf("no result for %s/%s in %v", id, phase, results)
	return domain.ExecutionResult{}
}

func TestRun_StrictPhaseOrder(t *testing.T) {
	runner, collector, _, exec := newExecutor(t)

	var order []string
	var mu sync.Mutex
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(3).DoAndReturn(
		func(_ context.Context, spec ports.CommandSpec) (int, error) {
			mu.Lock()
			order = append(order, spec.Argv[0])
			mu.Unlock()
			return 0, nil
		})
	collector.EXPECT().Collect("3.5", gomock.Any(), ".grid/artifacts").Return(nil, nil)

	results, err := exec.Run(context.Background(), executionConfig(), []domain.Environment{readyEnv("3.5")})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	want := []string{"install-deps", "check-style", "run-tests"}
	for i, argv0 := range want {
		if order[i] != argv0 {
			t.Fatalf("expected phase order %v, got %v", want, order)
		}
	}
}

func TestRun_CacheHitSkipsInstall(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	collector := mocks.NewMockArtifactCollector(ctrl)
	tel := mocks.NewMockTelemetry(ctrl)
	exec := scheduler.New(runner, collector, &quietLogger{}, tel)

	env := readyEnv("3.5")
	env.CacheHit = true

	installVertex := mocks.NewMockVertex(ctrl)
	installVertex.EXPECT().Cached()
	installVertex.EXPECT().Complete(nil)

	liveVertex := mocks.NewMockVertex(ctrl)
	liveVertex.EXPECT().Stdout().Return(io.Discard).AnyTimes()
	liveVertex.EXPECT().Stderr().Return(io.Discard).AnyTimes()
	liveVertex.EXPECT().Complete(nil).Times(2)

	tel.EXPECT().Record(gomock.Any(), gomock.Any()).Times(3).DoAndReturn(
		func(ctx context.Context, name string) (context.Context, ports.Vertex) {
			if strings.HasPrefix(name, string(domain.PhaseInstall)) {
				return ctx, installVertex
			}
			return ctx, liveVertex
		})

	var invoked []string
	var mu sync.Mutex
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(
		func(_ context.Context, spec ports.CommandSpec) (int, error) {
			mu.Lock()
			invoked = append(invoked, spec.Argv[0])
			mu.Unlock()
			return 0, nil
		})
	collector.EXPECT().Collect("3.5", gomock.Any(), gomock.Any()).Return(nil, nil)

	results, err := exec.Run(context.Background(), executionConfig(), []domain.Environment{env})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, argv0 := range invoked {
		if argv0 == "install-deps" {
			t.Fatal("install command ran despite a restored environment")
		}
	}

	install := resultFor(t, results, "3.5", domain.PhaseInstall)
	if install.Skipped || install.Failed() {
		t.Errorf("a restored environment must record Install as satisfied, got %+v", install)
	}
	if res := resultFor(t, results, "3.5", domain.PhaseTest); res.Skipped {
		t.Error("Test must still run in a restored environment")
	}
}

func TestRun_InstallFailureSkipsRemainder(t *testing.T) {
	runner, _, log, exec := newExecutor(t)

	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(1, nil)
	// No further runner calls and no artifact collection.

	results, err := exec.Run(context.Background(), executionConfig(), []domain.Environment{readyEnv("3.5")})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	install := resultFor(t, results, "3.5", domain.PhaseInstall)
	if !install.Failed() {
		t.Error("expected the Install result to be a failure")
	}
	for _, phase := range []domain.Phase{domain.PhaseLint, domain.PhaseTest} {
		if res := resultFor(t, results, "3.5", phase); !res.Skipped {
			t.Errorf("expected %s to be Skipped after Install failure", phase)
		}
	}
	if len(log.warns) == 0 {
		t.Error("expected a warning about the skipped remainder")
	}
}

func TestRun_LintFailureDoesNotStopTest(t *testing.T) {
	runner, collector, _, exec := newExecutor(t)

	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(3).DoAndReturn(
		func(_ context.Context, spec ports.CommandSpec) (int, error) {
			if spec.Argv[0] == "check-style" {
				return 2, nil
			}
			return 0, nil
		})
	collector.EXPECT().Collect("3.5", gomock.Any(), gomock.Any()).Return(nil, nil)

	results, err := exec.Run(context.Background(), executionConfig(), []domain.Environment{readyEnv("3.5")})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res := resultFor(t, results, "3.5", domain.PhaseLint); !res.Failed() {
		t.Error("expected the Lint failure to be recorded")
	}
	if res := resultFor(t, results, "3.5", domain.PhaseTest); res.Skipped {
		t.Error("a Lint failure must not skip Test")
	}
}

func TestRun_FailedEnvironmentIsFullySkipped(t *testing.T) {
	runner, collector, _, exec := newExecutor(t)

	failed := domain.Environment{
		Spec:       domain.EnvironmentSpec{Identifier: "3.3", Status: domain.EnvFailed},
		FailReason: "interpreter unavailable",
	}
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(3).DoAndReturn(
		func(_ context.Context, spec ports.CommandSpec) (int, error) {
			if !strings.Contains(strings.Join(spec.Env, " "), "3.5") {
				t.Errorf("only the Ready environment may execute, got env %v", spec.Env)
			}
			return 0, nil
		})
	collector.EXPECT().Collect("3.5", gomock.Any(), gomock.Any()).Return(nil, nil)

	results, err := exec.Run(context.Background(), executionConfig(),
		[]domain.Environment{failed, readyEnv("3.5")})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 6 {
		t.Fatalf("expected results for the full matrix, got %d", len(results))
	}
	for _, phase := range domain.Phases() {
		if res := resultFor(t, results, "3.3", phase); !res.Skipped {
			t.Errorf("expected %s Skipped for the failed environment", phase)
		}
	}
}

func TestRun_ArtifactsHarvestedAfterTest(t *testing.T) {
	runner, collector, _, exec := newExecutor(t)

	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(3).Return(0, nil)
	scratch := filepath.Join("/envs/3.5", "artifacts")
	collector.EXPECT().Collect("3.5", scratch, ".grid/artifacts").
		Return([]string{".grid/artifacts/3.5/coverage.xml"}, nil)

	results, err := exec.Run(context.Background(), executionConfig(), []domain.Environment{readyEnv("3.5")})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	test := resultFor(t, results, "3.5", domain.PhaseTest)
	if len(test.ArtifactPaths) != 1 {
		t.Fatalf("expected the harvested artifact on the Test result, got %v", test.ArtifactPaths)
	}
}

func TestRun_HarvestFailureIsNotFatal(t *testing.T) {
	runner, collector, log, exec := newExecutor(t)

	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(3).Return(0, nil)
	collector.EXPECT().Collect(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("disk full"))

	results, err := exec.Run(context.Background(), executionConfig(), []domain.Environment{readyEnv("3.5")})
	if err != nil {
		t.Fatalf("harvest failures must not fail the run: %v", err)
	}
	if res := resultFor(t, results, "3.5", domain.PhaseTest); res.Failed() {
		t.Error("harvest failures must not flip the Test result")
	}
	if len(log.warns) == 0 {
		t.Error("expected a harvest warning")
	}
}

func TestRun_Cancellation(t *testing.T) {
	runner, _, _, exec := newExecutor(t)

	ctx, cancel := context.WithCancel(context.Background())
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(
		func(runCtx context.Context, _ ports.CommandSpec) (int, error) {
			cancel()
			return -1, runCtx.Err()
		})

	_, err := exec.Run(ctx, executionConfig(), []domain.Environment{readyEnv("3.5")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

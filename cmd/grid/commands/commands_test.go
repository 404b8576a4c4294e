package commands_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/grid/cmd/grid/commands"
	"go.trai.ch/grid/internal/adapters/telemetry"
	"go.trai.ch/grid/internal/app"
	"go.trai.ch/grid/internal/core/domain"
	"go.trai.ch/grid/internal/core/ports/mocks"
	"go.trai.ch/grid/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

type nopLogger struct{}

func (nopLogger) Info(string) {}
func (nopLogger) Warn(string) {}
func (nopLogger) Error(error) {}

type cliFixture struct {
	loader      *mocks.MockConfigLoader
	provisioner *mocks.MockProvisioner
	reporter    *mocks.MockReporter
	cli         *commands.CLI
}

func newCLI(t *testing.T) *cliFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &cliFixture{
		loader:      mocks.NewMockConfigLoader(ctrl),
		provisioner: mocks.NewMockProvisioner(ctrl),
		reporter:    mocks.NewMockReporter(ctrl),
	}

	executor := scheduler.New(
		mocks.NewMockCommandRunner(ctrl),
		mocks.NewMockArtifactCollector(ctrl),
		nopLogger{},
		telemetry.NewNoOp(),
	)
	a := app.New(f.loader, f.provisioner, executor, f.reporter, nopLogger{}).
		WithOutput(&bytes.Buffer{})
	f.cli = commands.New(a)
	return f
}

func TestRunCommand_DefaultConfigPath(t *testing.T) {
	f := newCLI(t)

	f.loader.EXPECT().Load("grid.yaml").Return(&domain.PipelineConfig{
		Matrix:   []string{"3.5"},
		Commands: domain.PhaseCommands{Provision: []string{"p"}, Install: []string{"i"}, Lint: []string{"l"}, Test: []string{"t"}},
	}, nil)
	f.provisioner.EXPECT().ProvisionAll(gomock.Any(), gomock.Any()).Return(nil, nil)
	f.reporter.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	f.cli.SetArgs([]string{"run"})
	err := f.cli.Execute(context.Background())
	assert.NoError(t, err)
}

func TestRunCommand_ConfigFlag(t *testing.T) {
	f := newCLI(t)

	f.loader.EXPECT().Load("ci/grid.yaml").Return(&domain.PipelineConfig{
		Matrix:   []string{"3.5"},
		Commands: domain.PhaseCommands{Provision: []string{"p"}, Install: []string{"i"}, Lint: []string{"l"}, Test: []string{"t"}},
	}, nil)
	f.provisioner.EXPECT().ProvisionAll(gomock.Any(), gomock.Any()).Return(nil, nil)
	f.reporter.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	f.cli.SetArgs([]string{"run", "-c", "ci/grid.yaml"})
	err := f.cli.Execute(context.Background())
	assert.NoError(t, err)
}

func TestRunCommand_NoCacheFlag(t *testing.T) {
	f := newCLI(t)

	f.loader.EXPECT().Load(gomock.Any()).Return(&domain.PipelineConfig{
		Matrix:   []string{"3.5"},
		Commands: domain.PhaseCommands{Provision: []string{"p"}, Install: []string{"i"}, Lint: []string{"l"}, Test: []string{"t"}},
	}, nil)
	f.provisioner.EXPECT().ProvisionAll(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cfg domain.PipelineConfig) ([]domain.Environment, error) {
			assert.True(t, cfg.NoCache, "no-cache flag must reach the provisioner")
			return nil, nil
		})
	f.reporter.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	f.cli.SetArgs([]string{"run", "--no-cache"})
	err := f.cli.Execute(context.Background())
	assert.NoError(t, err)
}

func TestProvisionCommand_SkipsExecution(t *testing.T) {
	f := newCLI(t)

	f.loader.EXPECT().Load(gomock.Any()).Return(&domain.PipelineConfig{
		Matrix:   []string{"3.5"},
		Commands: domain.PhaseCommands{Provision: []string{"p"}, Install: []string{"i"}, Lint: []string{"l"}, Test: []string{"t"}},
	}, nil)
	f.provisioner.EXPECT().ProvisionAll(gomock.Any(), gomock.Any()).Return([]domain.Environment{
		{Spec: domain.EnvironmentSpec{Identifier: "3.5", Status: domain.EnvReady}},
	}, nil)
	// No reporter expectation: provisioning alone publishes nothing.

	f.cli.SetArgs([]string{"provision"})
	err := f.cli.Execute(context.Background())
	require.NoError(t, err)
}

func TestVersionCommand(t *testing.T) {
	f := newCLI(t)

	f.cli.SetArgs([]string{"version"})
	err := f.cli.Execute(context.Background())
	assert.NoError(t, err)
}

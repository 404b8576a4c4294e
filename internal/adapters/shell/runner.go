// Package shell provides the external command runner adapter.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/grid/internal/core/domain"
	"go.trai.ch/grid/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CommandRunner = (*Runner)(nil)

// Runner implements ports.CommandRunner using os/exec.
type Runner struct {
	logger ports.Logger
}

// NewRunner creates a new Runner.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{
		logger: logger,
	}
}

// Run executes the command described by spec and returns its exit code.
//
// The process environment merges with the following priority (low to high):
//  1. os.Environ() (system base)
//  2. spec.Env (provisioned runtime environment)
//
// PATH is special-cased: runtime paths are prepended to system paths so the
// provisioned interpreter wins over any system-wide installation.
//
// A non-zero exit is reported through the int return with a nil error; the
// error return is reserved for spawn failures and context cancellation.
func (r *Runner) Run(ctx context.Context, spec ports.CommandSpec) (int, error) {
	if len(spec.Argv) == 0 {
		return 0, domain.ErrEmptyCommand
	}

	name := spec.Argv[0]
	args := spec.Argv[1:]

	cmdEnv := resolveEnvironment(os.Environ(), spec.Env)

	// Resolve the executable against the merged PATH, not the parent's.
	executable := name
	if !filepath.IsAbs(name) {
		if lp, err := lookPath(name, cmdEnv); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, args...) //nolint:gosec // user provided command

	// exec.CommandContext sets Args[0] to the executable path; restore the
	// name as invoked.
	if len(cmd.Args) > 0 {
		cmd.Args[0] = name
	}

	if spec.Dir != "" {
		cmd.Dir = spec.Dir
	}
	cmd.Env = cmdEnv
	cmd.Stdout = r.orLog(spec.Stdout, false)
	cmd.Stderr = r.orLog(spec.Stderr, true)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			// The command ran and exited non-zero. That is a result, not an error.
			return exitErr.ExitCode(), nil
		}
		if ctx.Err() != nil {
			return -1, zerr.Wrap(ctx.Err(), "command cancelled")
		}
		return -1, zerr.With(zerr.Wrap(err, "failed to start command"), "command", name)
	}

	return 0, nil
}

// orLog falls back to streaming through the logger when the caller did not
// provide a writer, so command output is never silently dropped.
func (r *Runner) orLog(w io.Writer, stderr bool) io.Writer {
	if w != nil {
		return w
	}
	return &logWriter{logger: r.logger, stderr: stderr}
}

type logWriter struct {
	logger ports.Logger
	stderr bool
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	lines := strings.Split(strings.TrimSuffix(string(p), "\n"), "\n")
	for _, line := range lines {
		if w.stderr {
			w.logger.Warn(line)
		} else {
			w.logger.Info(line)
		}
	}
	return len(p), nil
}

// resolveEnvironment merges environment variables with the defined priority.
func resolveEnvironment(sysEnv, runtimeEnv []string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(runtimeEnv))
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if ok {
			envMap[k] = v
		}
	}

	for _, entry := range runtimeEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if k == "PATH" {
			if sysPath, exists := envMap["PATH"]; exists && sysPath != "" {
				envMap[k] = v + string(os.PathListSeparator) + sysPath
			} else {
				envMap[k] = v
			}
		} else {
			envMap[k] = v
		}
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

// lookPath searches for an executable in the directories named by the PATH
// entry of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}

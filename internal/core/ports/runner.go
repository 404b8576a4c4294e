// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"
)

// CommandSpec describes one external command invocation. The pipeline treats
// phase commands as opaque collaborators; only the exit code comes back.
type CommandSpec struct {
	// Argv is the command line. Argv[0] is resolved against the PATH of Env.
	Argv []string
	// Env contains environment variables in "KEY=VALUE" format, typically
	// produced by the provisioner for hermetic execution.
	Env []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Stdout and Stderr receive the command's output streams. Nil discards.
	Stdout io.Writer
	Stderr io.Writer
}

// CommandRunner executes external commands and reports their exit status.
//
// A non-zero exit is not an error: the exit code is returned and the error is
// nil. The error return is reserved for infrastructure failures: the process
// could not be started, or the context was cancelled while it ran.
//
//go:generate go run go.uber.org/mock/mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type CommandRunner interface {
	Run(ctx context.Context, spec CommandSpec) (int, error)
}

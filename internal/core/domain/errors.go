package domain

import "go.trai.ch/zerr"

var (
	// ErrPipelineFailed is returned when the aggregated outcome is Failure.
	// The CLI maps it to a non-zero exit code.
	ErrPipelineFailed = zerr.New("pipeline failed")

	// ErrProvisionFailed is returned when an environment could not be made Ready.
	ErrProvisionFailed = zerr.New("environment provisioning failed")

	// ErrEmptyCommand is returned when a phase has no command configured.
	ErrEmptyCommand = zerr.New("empty phase command")

	// ErrManifestUnreadable is returned when the dependency manifest cannot be checksummed.
	ErrManifestUnreadable = zerr.New("dependency manifest unreadable")
)

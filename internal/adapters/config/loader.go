// Package config provides the declaration loader for grid.
package config

import (
	"os"

	"go.trai.ch/grid/internal/core/domain"
	"go.trai.ch/grid/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the declaration file looked up in the working directory.
const DefaultFilename = "grid.yaml"

const (
	defaultManifest    = "requirements.txt"
	defaultArtifactDir = ".grid/artifacts"
	defaultRuntimeDir  = ".grid/runtimes"
)

// Environment variables holding the reporting secrets. Secrets never live in
// the declaration file.
const (
	tokenEnvVar     = "GRID_TOKEN"
	accessKeyEnvVar = "GRID_ACCESS_KEY"
	secretKeyEnvVar = "GRID_SECRET_KEY"
)

// Loader implements ports.ConfigLoader using a YAML declaration file.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a new Loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the declaration from the given path, applies defaults and
// validates it.
func (l *Loader) Load(path string) (*domain.PipelineConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read declaration file")
	}

	var file GridFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.Wrap(err, "failed to parse declaration file")
	}

	cfg := &domain.PipelineConfig{
		Matrix:       file.Matrix,
		ManifestPath: file.Manifest,
		Parallelism:  file.Parallelism,
		ArtifactDir:  file.ArtifactDir,
		RuntimeDir:   file.RuntimeDir,
		Commands: domain.PhaseCommands{
			Provision: file.Commands.Provision,
			Install:   file.Commands.Install,
			Lint:      file.Commands.Lint,
			Test:      file.Commands.Test,
		},
		Report: domain.ReportConfig{
			CoverageURL: file.Report.CoverageURL,
			Endpoint:    file.Report.Endpoint,
			AccessKey:   file.Report.AccessKey,
			SecretKey:   file.Report.SecretKey,
			Bucket:      file.Report.Bucket,
			Region:      file.Report.Region,
			UseSSL:      file.Report.UseSSL,
		},
	}

	applyDefaults(cfg)
	l.applySecrets(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *domain.PipelineConfig) {
	if cfg.ManifestPath == "" {
		cfg.ManifestPath = defaultManifest
	}
	if cfg.ArtifactDir == "" {
		cfg.ArtifactDir = defaultArtifactDir
	}
	if cfg.RuntimeDir == "" {
		cfg.RuntimeDir = defaultRuntimeDir
	}
}

func (l *Loader) applySecrets(cfg *domain.PipelineConfig) {
	cfg.Report.Token = os.Getenv(tokenEnvVar)
	if cfg.Report.CoverageURL != "" && cfg.Report.Token == "" {
		l.logger.Warn("coverage submission configured but " + tokenEnvVar + " is not set")
	}
	if v := os.Getenv(accessKeyEnvVar); v != "" {
		cfg.Report.AccessKey = v
	}
	if v := os.Getenv(secretKeyEnvVar); v != "" {
		cfg.Report.SecretKey = v
	}
}

func validate(cfg *domain.PipelineConfig) error {
	// An empty matrix is allowed; the run succeeds over an empty mapping.
	seen := make(map[string]bool, len(cfg.Matrix))
	for _, id := range cfg.Matrix {
		if id == "" {
			return zerr.New("matrix identifiers must be non-empty")
		}
		if seen[id] {
			return zerr.With(zerr.New("duplicate matrix identifier"), "identifier", id)
		}
		seen[id] = true
	}

	for phase, argv := range map[string][]string{
		"provision": cfg.Commands.Provision,
		"install":   cfg.Commands.Install,
		"lint":      cfg.Commands.Lint,
		"test":      cfg.Commands.Test,
	} {
		if len(argv) == 0 {
			return zerr.With(zerr.Wrap(domain.ErrEmptyCommand, "declaration is missing a phase command"), "phase", phase)
		}
	}

	if cfg.Parallelism < 0 {
		return zerr.With(zerr.New("parallelism must not be negative"), "parallelism", cfg.Parallelism)
	}

	return nil
}

var _ ports.ConfigLoader = (*Loader)(nil)

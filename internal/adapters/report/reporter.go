// Package report publishes run outcomes to external collaborators.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/grid/internal/core/domain"
	"go.trai.ch/grid/internal/core/ports"
	"go.trai.ch/zerr"
)

const requestTimeout = 30 * time.Second

// Reporter implements ports.Reporter. It uploads test artifacts to object
// storage and submits the coverage summary to the coverage service. Each
// collaborator is enabled independently by its declaration fields; with both
// disabled Publish is a no-op.
type Reporter struct {
	logger      ports.Logger
	client      *http.Client
	uploaderFor UploaderFactory
}

// New creates a Reporter with the default collaborators.
func New(logger ports.Logger) *Reporter {
	return NewWithCollaborators(logger, &http.Client{Timeout: requestTimeout}, NewMinioUploader)
}

// NewWithCollaborators creates a Reporter with injected collaborators.
func NewWithCollaborators(logger ports.Logger, client *http.Client, uploaderFor UploaderFactory) *Reporter {
	return &Reporter{
		logger:      logger,
		client:      client,
		uploaderFor: uploaderFor,
	}
}

// coverageSubmission is the payload POSTed to the coverage service.
type coverageSubmission struct {
	RunID    string                 `json:"run_id"`
	Outcome  domain.PipelineOutcome `json:"outcome"`
	SentAt   time.Time              `json:"sent_at"`
	Producer string                 `json:"producer"`
}

// Publish uploads artifacts and submits the outcome. Every run gets a fresh
// UUID so repeated runs never overwrite each other's artifacts.
func (r *Reporter) Publish(ctx context.Context, cfg domain.ReportConfig, outcome domain.PipelineOutcome, artifactDir string) error {
	runID := uuid.NewString()

	if cfg.Bucket != "" && cfg.Endpoint != "" {
		if err := r.uploadArtifacts(ctx, cfg, runID, artifactDir); err != nil {
			return err
		}
	}

	if cfg.CoverageURL != "" {
		if err := r.submitCoverage(ctx, cfg, runID, outcome); err != nil {
			return err
		}
	}

	return nil
}

func (r *Reporter) uploadArtifacts(ctx context.Context, cfg domain.ReportConfig, runID, artifactDir string) error {
	uploader, err := r.uploaderFor(cfg)
	if err != nil {
		return zerr.Wrap(err, "failed to initialize artifact storage")
	}

	if err := uploader.EnsureBucket(ctx, cfg.Bucket, cfg.Region); err != nil {
		return zerr.Wrap(err, "failed to ensure artifact bucket")
	}

	uploaded := 0
	err = filepath.WalkDir(artifactDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(artifactDir, path)
		if err != nil {
			return err
		}

		f, err := os.Open(path) //nolint:gosec // path comes from walking the artifact dir
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		info, err := f.Stat()
		if err != nil {
			return err
		}

		key := runID + "/" + filepath.ToSlash(rel)
		if err := uploader.Upload(ctx, cfg.Bucket, key, f, info.Size(), "application/octet-stream"); err != nil {
			return err
		}
		uploaded++
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// No artifacts were produced. Nothing to persist.
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to upload artifacts"), "run_id", runID)
	}

	r.logger.Info(fmt.Sprintf("uploaded %d artifacts to bucket %s (run %s)", uploaded, cfg.Bucket, runID))
	return nil
}

func (r *Reporter) submitCoverage(ctx context.Context, cfg domain.ReportConfig, runID string, outcome domain.PipelineOutcome) error {
	body, err := json.Marshal(coverageSubmission{
		RunID:    runID,
		Outcome:  outcome,
		SentAt:   time.Now().UTC(),
		Producer: "grid",
	})
	if err != nil {
		return zerr.Wrap(err, "failed to encode coverage submission")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.CoverageURL, bytes.NewReader(body))
	if err != nil {
		return zerr.Wrap(err, "failed to build coverage request")
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		// The wrapped error carries the URL but never the credential.
		return zerr.Wrap(err, "coverage submission failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return zerr.With(zerr.New("coverage service rejected the submission"), "status", resp.StatusCode)
	}

	r.logger.Info("coverage submitted (run " + runID + ")")
	return nil
}

var _ ports.Reporter = (*Reporter)(nil)

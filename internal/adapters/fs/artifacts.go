package fs

import (
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.trai.ch/grid/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	dirPerm  = 0o750
	filePerm = 0o644
)

var _ ports.ArtifactCollector = (*Collector)(nil)

// Collector copies harvested artifacts into the artifact directory.
type Collector struct{}

// NewCollector creates a new Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Collect copies every regular file under srcDir into destDir/envID,
// preserving relative paths. Destination paths are returned sorted so
// callers see a deterministic order regardless of walk order.
//
// A missing srcDir is not an error: a phase that produced no artifacts
// yields an empty result.
func (c *Collector) Collect(envID, srcDir, destDir string) ([]string, error) {
	if _, err := os.Stat(srcDir); err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to stat artifact source"), "dir", srcDir)
	}

	target := filepath.Join(destDir, envID)

	var collected []string
	err := filepath.WalkDir(srcDir, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		dest := filepath.Join(target, rel)
		if err := copyFile(path, dest); err != nil {
			return err
		}

		collected = append(collected, dest)
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to collect artifacts"), "env", envID)
	}

	sort.Strings(collected)
	return collected, nil
}

func copyFile(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), dirPerm); err != nil {
		return zerr.Wrap(err, "failed to create artifact directory")
	}

	in, err := os.Open(src) //nolint:gosec // Path comes from the walked source dir
	if err != nil {
		return zerr.Wrap(err, "failed to open artifact")
	}
	defer in.Close() //nolint:errcheck // Best effort close in defer

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //nolint:gosec // Dest is under the artifact dir
	if err != nil {
		return zerr.Wrap(err, "failed to create artifact copy")
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return zerr.Wrap(err, "failed to copy artifact")
	}

	return out.Close()
}

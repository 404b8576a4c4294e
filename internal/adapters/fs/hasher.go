// Package fs provides filesystem adapters: content checksums and artifact harvesting.
package fs

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/grid/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ManifestHasher = (*Hasher)(nil)

// Hasher computes content checksums for cache fingerprinting.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// ChecksumFile computes the XXHash of the file content, hex encoded.
// An unchanged manifest must always yield the same checksum; the fingerprint
// correctness of the whole cache layer rests on this.
func (h *Hasher) ChecksumFile(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}
